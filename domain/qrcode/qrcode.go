package qrcode

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"

	"github.com/prasetyowira/qrlink/constant"
	"github.com/prasetyowira/qrlink/domain/payload"
	"github.com/prasetyowira/qrlink/infrastructure/cache"
	"github.com/prasetyowira/qrlink/infrastructure/logger"
	"github.com/prasetyowira/qrlink/infrastructure/metrics"
)

// Output formats
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ErrRenderFailed wraps encoder failures
var ErrRenderFailed = errors.New("render failed")

// Style holds the module colors as #RRGGBB strings. Empty fields take the
// black-on-white defaults.
type Style struct {
	Foreground string
	Background string
}

// RenderOptions is what the encoder needs besides the content string
type RenderOptions struct {
	Foreground color.RGBA
	Background color.RGBA
	// Size is the edge length in pixels.
	Size int
}

// Encoder turns a content string into a QR image
type Encoder interface {
	SVG(content string, opts RenderOptions) (string, error)
	PNG(content string, opts RenderOptions) ([]byte, error)
}

// Result is a rendered QR code and the content it encodes
type Result struct {
	Kind    payload.Kind
	Content string
	SVG     string
	PNG     []byte
}

// Service validates, formats and renders QR payloads
type Service struct {
	encoder Encoder
	cache   *cache.NamespaceLRU
	metrics *metrics.Metrics
}

// NewService creates a QR code service
func NewService(encoder Encoder, lru *cache.NamespaceLRU, m *metrics.Metrics) *Service {
	logger.Debug("Creating QR code service", logger.LoggerInfo{
		ContextFunction: constant.CtxDomain,
		Data: map[string]interface{}{
			constant.DataService: "qrcode",
		},
	})

	return &Service{
		encoder: encoder,
		cache:   lru,
		metrics: m,
	}
}

// GenerateSVG renders p as an SVG at the preview size
func (s *Service) GenerateSVG(ctx context.Context, p payload.Payload, style Style) (*Result, error) {
	res, opts, err := s.prepare(ctx, constant.CtxGenerateSVG, p, style, constant.PreviewSize)
	if err != nil {
		return nil, err
	}

	key := cacheKey(res.Content, opts)
	if cached, ok := s.lookup(constant.SVGNamespace, key); ok {
		res.SVG = cached.(string)
	} else {
		svg, err := s.encoder.SVG(res.Content, opts)
		if err != nil {
			s.logRenderError(ctx, constant.CtxGenerateSVG, constant.ErrCodeRenderSVG, res, err)
			return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
		}
		s.store(constant.SVGNamespace, key, svg)
		res.SVG = svg
	}

	s.metrics.QRCodesGenerated.WithLabelValues(string(res.Kind), FormatSVG).Inc()
	logger.CtxInfo(ctx, "QR code generated", logger.LoggerInfo{
		ContextFunction: constant.CtxGenerateSVG,
		Data: map[string]interface{}{
			constant.DataKind:    res.Kind,
			constant.DataFormat:  FormatSVG,
			constant.DataContent: len(res.Content),
		},
	})

	return res, nil
}

// GeneratePNG renders p as a PNG with the given edge length
func (s *Service) GeneratePNG(ctx context.Context, p payload.Payload, style Style, size int) (*Result, error) {
	res, opts, err := s.prepare(ctx, constant.CtxGeneratePNG, p, style, size)
	if err != nil {
		return nil, err
	}

	key := cacheKey(res.Content, opts)
	if cached, ok := s.lookup(constant.PNGNamespace, key); ok {
		res.PNG = cached.([]byte)
	} else {
		png, err := s.encoder.PNG(res.Content, opts)
		if err != nil {
			s.logRenderError(ctx, constant.CtxGeneratePNG, constant.ErrCodeRenderPNG, res, err)
			return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
		}
		s.store(constant.PNGNamespace, key, png)
		res.PNG = png
	}

	s.metrics.QRCodesGenerated.WithLabelValues(string(res.Kind), FormatPNG).Inc()
	logger.CtxInfo(ctx, "QR code generated", logger.LoggerInfo{
		ContextFunction: constant.CtxGeneratePNG,
		Data: map[string]interface{}{
			constant.DataKind:    res.Kind,
			constant.DataFormat:  FormatPNG,
			constant.DataSize:    size,
			constant.DataContent: len(res.Content),
		},
	})

	return res, nil
}

// prepare formats the content string and validates the payload and style
// together.
func (s *Service) prepare(ctx context.Context, fn string, p payload.Payload, style Style, size int) (*Result, RenderOptions, error) {
	// Format first: it rejects nil and foreign payloads before any method
	// is called on them.
	content, err := payload.Format(p)
	if err != nil {
		logger.CtxWarn(ctx, "Unsupported payload", logger.LoggerInfo{
			ContextFunction: fn,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeUnknownKind,
				Message: err.Error(),
				Type:    constant.ErrTypeValidation,
			},
		})
		return nil, RenderOptions{}, err
	}

	payloadErr := p.Validate()
	opts, styleErr := style.options(size)
	ve := &payload.ValidationError{}
	ve.Merge(payloadErr)
	ve.Merge(styleErr)
	if err := ve.OrNil(); err != nil {
		code := constant.ErrCodeInvalidPayload
		if payloadErr == nil {
			code = constant.ErrCodeInvalidStyle
		}
		logger.CtxWarn(ctx, "Invalid QR code request", logger.LoggerInfo{
			ContextFunction: fn,
			Error: &logger.CustomError{
				Code:    code,
				Message: err.Error(),
				Type:    constant.ErrTypeValidation,
			},
			Data: map[string]interface{}{
				constant.DataKind:   p.Kind(),
				constant.DataFields: ve.Fields,
			},
		})
		return nil, RenderOptions{}, err
	}

	logger.CtxDebug(ctx, "Formatted QR payload", logger.LoggerInfo{
		ContextFunction: fn,
		Data: map[string]interface{}{
			constant.DataKind:    p.Kind(),
			constant.DataContent: len(content),
		},
	})

	return &Result{Kind: p.Kind(), Content: content}, opts, nil
}

func (s *Service) store(namespace, key string, value interface{}) {
	s.cache.Set(namespace, key, value)
	s.metrics.QRCodeCacheEntries.Set(float64(s.cache.Size()))
}

func (s *Service) lookup(namespace, key string) (interface{}, bool) {
	v, ok := s.cache.Get(namespace, key)
	if ok {
		s.metrics.QRCodeCache.WithLabelValues(metrics.CacheHit).Inc()
	} else {
		s.metrics.QRCodeCache.WithLabelValues(metrics.CacheMiss).Inc()
	}
	return v, ok
}

func (s *Service) logRenderError(ctx context.Context, fn, code string, res *Result, err error) {
	logger.CtxError(ctx, constant.MsgRenderFailedDetail, logger.LoggerInfo{
		ContextFunction: fn,
		Error: &logger.CustomError{
			Code:    code,
			Message: err.Error(),
			Type:    constant.ErrTypeRender,
		},
		Data: map[string]interface{}{
			constant.DataKind:    res.Kind,
			constant.DataContent: len(res.Content),
		},
	})
}

func cacheKey(content string, opts RenderOptions) string {
	return fmt.Sprintf("%d|%s|%s|%s", opts.Size, HexColor(opts.Foreground), HexColor(opts.Background), content)
}

// options resolves the style into encoder options
func (st Style) options(size int) (RenderOptions, error) {
	ve := &payload.ValidationError{}

	fg, ok := ParseHexColor(orDefault(st.Foreground, constant.DefaultForeground))
	if !ok {
		ve.Add("foreground", constant.MsgColorInvalid)
	}
	bg, ok := ParseHexColor(orDefault(st.Background, constant.DefaultBackground))
	if !ok {
		ve.Add("background", constant.MsgColorInvalid)
	}
	if size < constant.MinRasterSize || size > constant.MaxRasterSize {
		ve.Add("size", constant.MsgSizeOutOfRange)
	}

	return RenderOptions{Foreground: fg, Background: bg, Size: size}, ve.OrNil()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// ParseHexColor parses "#RRGGBB" (either case) into an opaque color.
func ParseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	b, err := hex.DecodeString(s[1:])
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 0xff}, true
}

// HexColor formats c as #rrggbb
func HexColor(c color.RGBA) string {
	return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B})
}
