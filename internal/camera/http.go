package camera

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/imaging"
)

// maxSnapshotSize bounds a single snapshot download (32MB).
const maxSnapshotSize = 32 << 20

// HTTPCamera reads still frames from an IP camera snapshot endpoint
// (e.g. http://camera.local/snapshot.jpg).
type HTTPCamera struct {
	exclusive

	url      string
	username string
	password string
	client   *http.Client
}

// NewHTTPCamera creates a snapshot camera. Username and password are sent as basic auth when set.
func NewHTTPCamera(url, username, password string) *HTTPCamera {
	return &HTTPCamera{
		url:      url,
		username: username,
		password: password,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPCamera) Name() string {
	return "http:" + c.url
}

// Open checks that the endpoint is reachable and that access is granted.
func (c *HTTPCamera) Open(ctx context.Context) (Stream, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}

	// The probe frame proves the feed is live; frames are grabbed again on demand.
	if _, err := c.snapshot(ctx); err != nil {
		c.release()
		return nil, err
	}
	return newStream(&c.exclusive, c.snapshot), nil
}

func (c *HTTPCamera) snapshot(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: could not create request: %v", ErrUnavailable, err)
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: snapshot endpoint returned %d", ErrPermissionDenied, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: snapshot endpoint returned %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotSize))
	if err != nil {
		return nil, fmt.Errorf("%w: could not read snapshot: %v", ErrNoFrame, err)
	}
	if len(body) == 0 {
		return nil, ErrNoFrame
	}

	img, err := imaging.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	return img, nil
}
