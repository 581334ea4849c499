// Package qr renders scan payloads as square black-on-white PNG codes.
package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
)

const (
	// Size is the output edge in pixels.
	Size = 300
	// QuietZone is the white margin in modules on every side.
	QuietZone = 2
)

// Render encodes content with medium error correction and returns a PNG.
// go-qrcode only offers a 4-module border, so the symbol is drawn borderless and
// padded here.
func Render(content string) ([]byte, error) {
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	code.DisableBorder = true
	code.ForegroundColor = color.Black
	code.BackgroundColor = color.White

	modules := symbolModules(code)
	total := modules + 2*QuietZone
	scale := Size / total
	if scale < 1 {
		scale = 1
	}

	symbol := code.Image(-scale)
	pad := QuietZone * scale
	edge := symbol.Bounds().Dx() + 2*pad

	canvas := imaging.New(edge, edge, color.White)
	canvas = imaging.Paste(canvas, symbol, image.Pt(pad, pad))
	if edge != Size {
		canvas = imaging.Resize(canvas, Size, Size, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("qr png: %w", err)
	}
	return buf.Bytes(), nil
}

// Modules returns the symbol width in modules, quiet zone excluded.
func Modules(content string) (int, error) {
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return 0, err
	}
	return symbolModules(code), nil
}

// symbolModules derives the width from the version so the symbol is encoded only once.
func symbolModules(code *qrcode.QRCode) int {
	return 17 + 4*code.VersionNumber
}
