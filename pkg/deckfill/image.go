package deckfill

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// ImageLoader turns the context value bound to a picture placeholder into an image
type ImageLoader interface {
	LoadImage(ctx context.Context, src any) (deck.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader
type ImageLoaderFunc func(ctx context.Context, src any) (deck.Image, error)

func (fn ImageLoaderFunc) LoadImage(ctx context.Context, src any) (deck.Image, error) {
	return fn(ctx, src)
}

// FileImageLoader loads images from file paths, data URIs, byte slices,
// readers and ready-made deck.Image values. Relative paths resolve against Dir
// when it is set.
type FileImageLoader struct {
	Dir string
}

// DefaultImageLoader resolves relative paths against the working directory
var DefaultImageLoader ImageLoader = FileImageLoader{}

// LoadImage implements ImageLoader
func (l FileImageLoader) LoadImage(ctx context.Context, src any) (deck.Image, error) {
	if err := ctx.Err(); err != nil {
		return deck.Image{}, err
	}
	switch v := src.(type) {
	case deck.Image:
		if len(v.Data) == 0 {
			return deck.Image{}, fmt.Errorf("%w: image has no data", ErrImageLoad)
		}
		if v.ContentType == "" {
			v.ContentType = http.DetectContentType(v.Data)
		}
		return v, nil
	case *deck.Image:
		if v == nil {
			return deck.Image{}, fmt.Errorf("%w: nil image", ErrImageLoad)
		}
		return l.LoadImage(ctx, *v)
	case []byte:
		return imageFromBytes(v, "")
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return deck.Image{}, fmt.Errorf("%w: %v", ErrImageLoad, err)
		}
		return imageFromBytes(data, "")
	case string:
		if strings.HasPrefix(v, "data:") {
			mimeType, data, err := parseDataURI(v)
			if err != nil {
				return deck.Image{}, fmt.Errorf("%w: %v", ErrImageLoad, err)
			}
			return deck.Image{Data: data, ContentType: mimeType}, nil
		}
		return l.loadFile(v)
	default:
		return deck.Image{}, fmt.Errorf("%w: %T", ErrUnsupportedImageSource, src)
	}
}

func (l FileImageLoader) loadFile(path string) (deck.Image, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return deck.Image{}, fmt.Errorf("%w: empty path", ErrImageLoad)
	}
	if l.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.Dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return deck.Image{}, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	return imageFromBytes(data, path)
}

// imageFromBytes determines the content type from the file extension and
// falls back to sniffing the data.
func imageFromBytes(data []byte, path string) (deck.Image, error) {
	if len(data) == 0 {
		return deck.Image{}, fmt.Errorf("%w: no image data", ErrImageLoad)
	}
	contentType := contentTypeForExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return deck.Image{}, fmt.Errorf("%w: content type %s is not an image", ErrImageLoad, contentType)
	}
	img := deck.Image{Data: data, ContentType: contentType}
	if path != "" {
		img.Name = filepath.Base(path)
	}
	return img, nil
}

func contentTypeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".svg":
		return "image/svg+xml"
	default:
		return ""
	}
}

// parseDataURI parses a base64 data URI and returns the MIME type and decoded data
func parseDataURI(dataURI string) (string, []byte, error) {
	// Format: data:[<mediatype>][;base64],<data>
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return "", nil, fmt.Errorf("invalid data URI format")
	}
	metadata, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("invalid data URI format")
	}
	if payload == "" {
		return "", nil, fmt.Errorf("no image data")
	}
	mimeType, ok := strings.CutSuffix(metadata, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("missing base64 marker")
	}

	switch mimeType {
	case "image/png", "image/jpeg", "image/bmp", "image/gif", "image/tiff", "image/svg+xml":
	default:
		return "", nil, fmt.Errorf("unsupported image type: %s", mimeType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	return mimeType, data, nil
}
