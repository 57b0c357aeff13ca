// Package imaging converts between captured frames, JPEG bytes and the data URL form photos are stored in.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const dataURLPrefix = "data:image/jpeg;base64,"

// ErrEmptyImage is returned when there are no image bytes to work with.
var ErrEmptyImage = errors.New("empty image")

// EncodeJPEG encodes a frame as JPEG at its native resolution.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode decodes JPEG, PNG, BMP or WebP bytes.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ToDataURL wraps JPEG bytes in a data URL.
func ToDataURL(jpegData []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(jpegData)
}

// FromDataURL returns the raw bytes of a base64 photo. Both full data URLs
// ("data:image/jpeg;base64,...") and bare base64 payloads are accepted.
func FromDataURL(s string) ([]byte, error) {
	payload := strings.TrimSpace(s)
	if _, after, found := strings.Cut(payload, ","); found {
		payload = after
	}
	if payload == "" {
		return nil, ErrEmptyImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 photo: %w", err)
	}
	return data, nil
}

// ResizeImage resizes an image to fit within maxSize (width or height) while keeping aspect ratio.
// The result is always JPEG.
func ResizeImage(data []byte, maxSize int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Check if resizing is needed.
	if width <= maxSize && height <= maxSize {
		// Re-encode as JPEG to ensure consistent format.
		return EncodeJPEG(img, 85)
	}

	// Calculate new dimensions.
	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = int(float64(height) * float64(maxSize) / float64(width))
	} else {
		newHeight = maxSize
		newWidth = int(float64(width) * float64(maxSize) / float64(height))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	out, err := EncodeJPEG(resized, 85)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return out, nil
}
