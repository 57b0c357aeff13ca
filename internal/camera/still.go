package camera

import (
	"context"
	"image"

	"github.com/kozaktomas/smart-attendance/internal/imaging"
)

// Still is a camera that always yields the same frame. It is used when a client
// captured the photo itself and uploads it with the intent.
type Still struct {
	exclusive

	img image.Image
}

// NewStill decodes data into a single-frame camera.
func NewStill(data []byte) (*Still, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	return &Still{img: img}, nil
}

// NewStillImage wraps an already decoded frame.
func NewStillImage(img image.Image) *Still {
	return &Still{img: img}
}

func (c *Still) Name() string {
	return "still"
}

func (c *Still) Open(ctx context.Context) (Stream, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	return newStream(&c.exclusive, func(ctx context.Context) (image.Image, error) {
		return c.img, nil
	}), nil
}
