package thumbnail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Data URI constants
const (
	DataURIPrefix = "data:"
	Base64Marker  = ";base64"
	FileURIPrefix = "file://"
)

// Decoder turns a source image reference into pixel data.
type Decoder interface {
	Decode(ctx context.Context, source string) (image.Image, error)
}

// FileDecoder decodes local files, file:// URIs and base64 data: URIs.
// Supported formats: PNG, JPEG, GIF, WebP, BMP.
type FileDecoder struct{}

// NewFileDecoder creates a decoder for local sources
func NewFileDecoder() *FileDecoder {
	return &FileDecoder{}
}

// Decode reads and decodes source
func (d *FileDecoder) Decode(ctx context.Context, source string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptySource
	}

	var r io.Reader
	if strings.HasPrefix(source, DataURIPrefix) {
		data, err := decodeDataURI(source)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	} else {
		path := source
		if strings.HasPrefix(source, FileURIPrefix) {
			u, err := url.Parse(source)
			if err != nil {
				return nil, fmt.Errorf("invalid file URI: %w", err)
			}
			path = u.Path
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		defer f.Close()
		r = f
	}

	img, _, err := image.Decode(r)
	if err != nil {
		if err == image.ErrFormat {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedImage, err)
	}
	return img, nil
}

// decodeDataURI extracts the payload of a data: URI
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, DataURIPrefix), ",")
	if !ok {
		return nil, ErrUnsupportedURI
	}
	if strings.HasSuffix(meta, Base64Marker) {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedURI, err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURI, err)
	}
	return []byte(data), nil
}

// DecoderFunc adapts a function to the Decoder interface
type DecoderFunc func(ctx context.Context, source string) (image.Image, error)

// Decode calls f
func (f DecoderFunc) Decode(ctx context.Context, source string) (image.Image, error) {
	return f(ctx, source)
}
