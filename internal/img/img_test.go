package img

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/jltorresm/otpgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngURI(t *testing.T) string {
	t.Helper()
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	src.Set(1, 1, color.White)
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, src))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestParseB64(t *testing.T) {
	im, err := ParseB64(pngURI(t))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), im.Bounds())
}

func TestParseB64Errors(t *testing.T) {
	tests := map[string]string{
		"not a uri":    "hello",
		"no marker":    "data:image/png,abc",
		"unknown type": "data:image/bmp;base64,AAAA",
		"bad base64":   "data:image/png;base64,!!!",
		"bad png":      "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("nope")),
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseB64(in)
			assert.Error(t, err)
		})
	}
}

func TestWritePNGFromTOTPKey(t *testing.T) {
	totp := otpgo.TOTP{}
	_, err := totp.Generate()
	require.NoError(t, err)
	qr, err := totp.KeyUri("operator", "usernotes-bot").QRCode()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WritePNG(buf, qr))
	im, err := png.Decode(buf)
	require.NoError(t, err)
	assert.Greater(t, im.Bounds().Dx(), 0)
}
