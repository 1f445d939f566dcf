// internal/signature/signature.go
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

// MaxSize bounds the decoded image.
const MaxSize = 512 << 10

var (
	ErrEmpty        = errors.New("signature is empty")
	ErrInvalidURI   = errors.New("signature must be a base64 data URI")
	ErrUnsupported  = errors.New("signature image must be png or jpeg")
	ErrTooLarge     = errors.New("signature image is too large")
	ErrInvalidImage = errors.New("signature image cannot be decoded")
)

var mediaTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
}

// Payload is a validated signature image.
type Payload struct {
	MediaType string
	Data      []byte
	Width     int
	Height    int
}

// URI returns the canonical data URI stored on the contract.
func (p Payload) URI() string {
	return "data:" + p.MediaType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Parse validates a data:image/...;base64 payload produced by a signature pad.
func Parse(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Payload{}, ErrEmpty
	}

	header, encoded, ok := strings.Cut(raw, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return Payload{}, ErrInvalidURI
	}

	mediaType := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"))
	format, ok := mediaTypes[mediaType]
	if !ok {
		return Payload{}, ErrUnsupported
	}

	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxSize+3 {
		return Payload{}, ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if len(data) > MaxSize {
		return Payload{}, ErrTooLarge
	}

	cfg, decoded, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if decoded != format {
		return Payload{}, fmt.Errorf("%w: declared %s, got %s", ErrInvalidImage, format, decoded)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return Payload{}, ErrInvalidImage
	}

	return Payload{
		MediaType: "image/" + format,
		Data:      data,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}
