// Package img decodes images carried in data URIs, such as the QR codes
// produced for operator TOTP keys.
package img

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	uriPrefix    = "data:image/"
	base64Marker = ";base64,"

	imgTypePng  = "png"
	imgTypeJpeg = "jpeg"
	imgTypeGif  = "gif"
)

var decoders = map[string]func(io.Reader) (image.Image, error){
	imgTypePng:  png.Decode,
	imgTypeJpeg: jpeg.Decode,
	imgTypeGif:  gif.Decode,
}

// ParseB64 decodes a data:image/<type>;base64,<payload> URI.
func ParseB64(data string) (image.Image, error) {
	if !strings.HasPrefix(data, uriPrefix) {
		return nil, fmt.Errorf("not an image data uri")
	}
	idx := strings.Index(data, base64Marker)
	if idx < 0 {
		return nil, fmt.Errorf("no base64 substring found")
	}
	imageType := data[len(uriPrefix):idx]
	log.Debugf("[IMG] detected image of %s", imageType)

	decode, ok := decoders[imageType]
	if !ok {
		return nil, fmt.Errorf("unknown type %s", imageType)
	}

	decoded, err := base64.StdEncoding.DecodeString(data[idx+len(base64Marker):])
	if err != nil {
		return nil, fmt.Errorf("decode b64 failed: %w", err)
	}

	im, err := decode(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("%s parse failed: %w", imageType, err)
	}
	return im, nil
}

// WritePNG decodes a data URI and writes it to w as PNG.
func WritePNG(w io.Writer, data string) error {
	im, err := ParseB64(data)
	if err != nil {
		return err
	}
	if err := png.Encode(w, im); err != nil {
		return fmt.Errorf("encoding png failed: %w", err)
	}
	return nil
}
