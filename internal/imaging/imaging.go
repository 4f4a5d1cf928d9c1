package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"
)

const (
	// MaxEdge caps the longest edge of a stored product image.
	MaxEdge = 600
	// Quality is the JPEG re-encode quality.
	Quality = 60
	// MaxEncodedBytes is the ceiling for the encoded payload; the backing
	// store rejects documents around 800KB and has no separate binary storage.
	MaxEncodedBytes = 800 * 1024
)

// ErrTooLarge is returned when the downscaled image still exceeds the
// per-document payload ceiling.
var ErrTooLarge = errors.New("encoded image exceeds document size limit")

// Downscale decodes an uploaded image, scales it so the longest edge is at
// most MaxEdge pixels and re-encodes it as JPEG.
func Downscale(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > MaxEdge || h > MaxEdge {
		if w >= h {
			h = h * MaxEdge / w
			w = MaxEdge
		} else {
			w = w * MaxEdge / h
			h = MaxEdge
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	if buf.Len() > MaxEncodedBytes {
		return nil, ErrTooLarge
	}
	return buf.Bytes(), nil
}

// DataURL wraps an encoded JPEG as an embeddable base64 data URL, the textual
// representation persisted inside the product document.
func DataURL(encoded []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(encoded)
}

// Process runs the full pipeline for an uploaded file.
func Process(data []byte) (string, error) {
	encoded, err := Downscale(data)
	if err != nil {
		return "", err
	}
	return DataURL(encoded), nil
}
