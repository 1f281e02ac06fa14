package qrcode

import (
	"bytes"
	"fmt"
	"strings"

	svgo "github.com/ajstarks/svgo"
	skip2 "github.com/skip2/go-qrcode"

	"github.com/prasetyowira/qrlink/domain/qrcode"
)

// Generator renders QR symbols with error correction level M and no quiet zone
type Generator struct {
	level skip2.RecoveryLevel
}

// NewGenerator creates a new QR code generator
func NewGenerator() *Generator {
	return &Generator{
		level: skip2.Medium,
	}
}

// SVG renders content as SVG markup. The viewBox is in module units and the
// width/height attributes carry opts.Size, so the symbol scales without
// resampling.
func (g *Generator) SVG(content string, opts qrcode.RenderOptions) (string, error) {
	bitmap, err := g.bitmap(content)
	if err != nil {
		return "", err
	}
	n := len(bitmap)

	var b bytes.Buffer
	canvas := svgo.New(&b)
	canvas.Startview(opts.Size, opts.Size, 0, 0, n, n)
	canvas.Rect(0, 0, n, n, "fill:"+qrcode.HexColor(opts.Background))
	canvas.Path(modulePath(bitmap), "fill:"+qrcode.HexColor(opts.Foreground), `shape-rendering="crispEdges"`)
	canvas.End()

	return b.String(), nil
}

// PNG renders content as an opts.Size square PNG
func (g *Generator) PNG(content string, opts qrcode.RenderOptions) ([]byte, error) {
	q, err := skip2.New(content, g.level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	q.ForegroundColor = opts.Foreground
	q.BackgroundColor = opts.Background

	png, err := q.PNG(opts.Size)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return png, nil
}

func (g *Generator) bitmap(content string) ([][]bool, error) {
	q, err := skip2.New(content, g.level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// modulePath joins horizontally adjacent dark modules into one rectangle
// per run, so neighbouring modules render without hairline gaps.
func modulePath(bitmap [][]bool) string {
	var sb strings.Builder
	for y, row := range bitmap {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			run := x - start
			fmt.Fprintf(&sb, "M%d %dh%dv1h-%dz", start, y, run, run)
		}
	}
	return sb.String()
}
