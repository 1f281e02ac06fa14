package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prasetyowira/qrlink/constant"
	"github.com/prasetyowira/qrlink/domain/payload"
	"github.com/prasetyowira/qrlink/domain/qrcode"
	"github.com/prasetyowira/qrlink/domain/shortener"
	appLogger "github.com/prasetyowira/qrlink/infrastructure/logger"
)

// maxRequestBody bounds JSON request bodies
const maxRequestBody = 64 << 10

// QRCodeService renders QR payloads
type QRCodeService interface {
	GenerateSVG(ctx context.Context, p payload.Payload, style qrcode.Style) (*qrcode.Result, error)
	GeneratePNG(ctx context.Context, p payload.Payload, style qrcode.Style, size int) (*qrcode.Result, error)
}

// ShortenerService shortens URLs and lists the history
type ShortenerService interface {
	Shorten(ctx context.Context, longURL string) (*shortener.Link, error)
	RecentLinks(ctx context.Context, limit int) ([]*shortener.Link, error)
}

// Handler contains service dependencies for API handlers
type Handler struct {
	qr        QRCodeService
	shortener ShortenerService
	pngSize   int
}

// QRCodeRequest is the request object for the QR code endpoints. Which
// fields are read depends on Type.
type QRCodeRequest struct {
	Type string `json:"type"`

	URL string `json:"url"`

	SSID       string `json:"ssid"`
	Password   string `json:"password"`
	Encryption string `json:"encryption"`

	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Title        string `json:"title"`

	Message string `json:"message"`

	Foreground string `json:"foreground"`
	Background string `json:"background"`

	// Size is only used for PNG downloads
	Size int `json:"size"`
}

// QRCodeResponse is the response object for the SVG endpoint
type QRCodeResponse struct {
	Type    payload.Kind `json:"type"`
	Content string       `json:"content"`
	SVG     string       `json:"svg"`
}

// ShortenRequest is the request object for the Shorten endpoint
type ShortenRequest struct {
	URL string `json:"url"`
}

// ShortenResponse is the response object for the Shorten endpoint
type ShortenResponse struct {
	LongURL  string `json:"long_url"`
	ShortURL string `json:"short_url"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error  string               `json:"error"`
	Code   int                  `json:"code"`
	Fields []payload.FieldError `json:"fields,omitempty"`
}

// NewHandler creates a new API handler. pngSize is the edge length used
// when a PNG request does not name one.
func NewHandler(qr QRCodeService, sh ShortenerService, pngSize int) *Handler {
	return &Handler{
		qr:        qr,
		shortener: sh,
		pngSize:   pngSize,
	}
}

// toPayload builds the payload variant named by Type
func (req QRCodeRequest) toPayload() (payload.Payload, error) {
	kind, err := payload.ParseKind(req.Type)
	if err != nil {
		ve := &payload.ValidationError{}
		ve.Add("type", constant.MsgKindUnsupported)
		return nil, ve
	}

	switch kind {
	case payload.KindURL:
		return payload.URL{URL: req.URL}, nil
	case payload.KindWiFi:
		enc := payload.Encryption(req.Encryption)
		if enc == "" {
			enc = payload.EncryptionWPA
		}
		return payload.WiFi{SSID: req.SSID, Password: req.Password, Encryption: enc}, nil
	case payload.KindVCard:
		return payload.VCard{
			Name:         req.Name,
			Phone:        req.Phone,
			Email:        req.Email,
			Organization: req.Organization,
			Title:        req.Title,
		}, nil
	case payload.KindSMS:
		return payload.SMS{Phone: req.Phone, Message: req.Message}, nil
	}
	return nil, payload.ErrUnknownKind
}

func (req QRCodeRequest) style() qrcode.Style {
	return qrcode.Style{Foreground: req.Foreground, Background: req.Background}
}

// GenerateQRCode renders the request as an SVG preview
func (h *Handler) GenerateQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appLogger.CtxDebug(ctx, constant.MsgHandlingQRCodeRequest, appLogger.LoggerInfo{
		ContextFunction: constant.CtxGenerateQRCode,
	})

	var req QRCodeRequest
	if !decodeJSON(w, r, &req, constant.CtxGenerateQRCode) {
		return
	}

	p, err := req.toPayload()
	if err != nil {
		h.writeQRCodeError(w, r, constant.CtxGenerateQRCode, err)
		return
	}

	res, err := h.qr.GenerateSVG(ctx, p, req.style())
	if err != nil {
		h.writeQRCodeError(w, r, constant.CtxGenerateQRCode, err)
		return
	}

	WriteJSON(w, QRCodeResponse{
		Type:    res.Kind,
		Content: res.Content,
		SVG:     res.SVG,
	}, http.StatusOK)
}

// GenerateQRCodePNG renders the request as a downloadable PNG
func (h *Handler) GenerateQRCodePNG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appLogger.CtxDebug(ctx, constant.MsgHandlingQRCodeRequest, appLogger.LoggerInfo{
		ContextFunction: constant.CtxGenerateQRCodePNG,
	})

	var req QRCodeRequest
	if !decodeJSON(w, r, &req, constant.CtxGenerateQRCodePNG) {
		return
	}

	p, err := req.toPayload()
	if err != nil {
		h.writeQRCodeError(w, r, constant.CtxGenerateQRCodePNG, err)
		return
	}

	size := req.Size
	if size == 0 {
		size = h.pngSize
	}

	res, err := h.qr.GeneratePNG(ctx, p, req.style(), size)
	if err != nil {
		h.writeQRCodeError(w, r, constant.CtxGenerateQRCodePNG, err)
		return
	}

	w.Header().Set(constant.HeaderContentType, constant.ContentTypePNG)
	w.Header().Set(constant.HeaderContentDisposition, `attachment; filename="qrcode.png"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PNG)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.PNG)
}

func (h *Handler) writeQRCodeError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	var ve *payload.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteValidationError(w, ve)
	case errors.Is(err, payload.ErrUnknownKind):
		ve := &payload.ValidationError{}
		ve.Add("type", constant.MsgKindUnsupported)
		WriteValidationError(w, ve)
	default:
		appLogger.CtxError(r.Context(), "Error generating QR code", appLogger.LoggerInfo{
			ContextFunction: fn,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIServiceError,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})
		WriteJSONError(w, constant.MsgQRCodeFailed, http.StatusInternalServerError)
	}
}

// ShortenURL handles URL shortening
func (h *Handler) ShortenURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appLogger.CtxDebug(ctx, constant.MsgHandlingShortenURL, appLogger.LoggerInfo{
		ContextFunction: constant.CtxShortenURL,
	})

	var req ShortenRequest
	if !decodeJSON(w, r, &req, constant.CtxShortenURL) {
		return
	}

	link, err := h.shortener.Shorten(ctx, req.URL)
	if err != nil {
		var ve *payload.ValidationError
		if errors.As(err, &ve) {
			WriteValidationError(w, ve)
			return
		}

		status := http.StatusInternalServerError
		code := constant.ErrCodeAPIServiceError
		var upstream *shortener.UpstreamError
		if errors.As(err, &upstream) {
			status = http.StatusBadGateway
			code = constant.ErrCodeAPIUpstream
		}

		appLogger.CtxError(ctx, "Error shortening URL", appLogger.LoggerInfo{
			ContextFunction: constant.CtxShortenURL,
			Error: &appLogger.CustomError{
				Code:    code,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
			Data: map[string]interface{}{
				constant.DataLongURL: req.URL,
			},
		})

		WriteJSONError(w, shortener.UserMessage(err), status)
		return
	}

	WriteJSON(w, ShortenResponse{
		LongURL:  link.LongURL,
		ShortURL: link.ShortURL,
	}, http.StatusCreated)
}

// ListLinks returns the most recently shortened links
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			ve := &payload.ValidationError{}
			ve.Add("limit", constant.MsgLimitInvalid)
			WriteValidationError(w, ve)
			return
		}
		limit = n
	}

	links, err := h.shortener.RecentLinks(ctx, limit)
	if err != nil {
		appLogger.CtxError(ctx, "Error listing links", appLogger.LoggerInfo{
			ContextFunction: constant.CtxListLinks,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIServiceError,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})
		WriteJSONError(w, constant.MsgListLinksFailed, http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []*shortener.Link{}
	}

	WriteJSON(w, links, http.StatusOK)
}

// decodeJSON decodes the request body into dst, writing a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, fn string) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(dst); err != nil {
		appLogger.CtxWarn(r.Context(), "Error decoding request body", appLogger.LoggerInfo{
			ContextFunction: fn,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIDecodeRequest,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})

		WriteJSONError(w, constant.MsgInvalidRequestFormat, http.StatusBadRequest)
		return false
	}
	return true
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set(constant.HeaderContentType, constant.ContentTypeJSON)
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

// WriteJSONError writes a JSON error response
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, ErrorResponse{
		Error: message,
		Code:  statusCode,
	}, statusCode)
}

// WriteValidationError writes a 400 listing each invalid field
func WriteValidationError(w http.ResponseWriter, ve *payload.ValidationError) {
	WriteJSON(w, ErrorResponse{
		Error:  constant.MsgValidationFailed,
		Code:   http.StatusBadRequest,
		Fields: ve.Fields,
	}, http.StatusBadRequest)
}
