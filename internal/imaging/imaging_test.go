package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestDownscaleLandscape(t *testing.T) {
	out, err := Downscale(encodePNG(t, 1200, 800))
	require.NoError(t, err)

	w, h := decodedSize(t, out)
	assert.Equal(t, 600, w)
	assert.Equal(t, 400, h)
}

func TestDownscalePortrait(t *testing.T) {
	out, err := Downscale(encodePNG(t, 300, 900))
	require.NoError(t, err)

	w, h := decodedSize(t, out)
	assert.Equal(t, 200, w)
	assert.Equal(t, 600, h)
}

func TestDownscaleKeepsSmallImages(t *testing.T) {
	out, err := Downscale(encodePNG(t, 200, 150))
	require.NoError(t, err)

	w, h := decodedSize(t, out)
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)
}

func TestDownscaleRejectsGarbage(t *testing.T) {
	_, err := Downscale([]byte("not an image"))
	assert.Error(t, err)
}

func TestProcessReturnsDataURL(t *testing.T) {
	url, err := Process(encodePNG(t, 100, 100))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}
