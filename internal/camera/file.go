package camera

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kozaktomas/smart-attendance/internal/imaging"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp"}

// FileCamera uses an image file, or the newest image in a directory, as the camera feed.
// A directory works with tools that keep dropping snapshots into a folder (motion, fswebcam).
type FileCamera struct {
	exclusive

	path string
}

// NewFileCamera creates a camera reading from path.
func NewFileCamera(path string) *FileCamera {
	return &FileCamera{path: path}
}

func (c *FileCamera) Name() string {
	return "file:" + c.path
}

func (c *FileCamera) Open(ctx context.Context) (Stream, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := c.acquire(); err != nil {
		return nil, err
	}

	isDir := info.IsDir()
	return newStream(&c.exclusive, func(ctx context.Context) (image.Image, error) {
		return c.read(isDir)
	}), nil
}

func (c *FileCamera) read(isDir bool) (image.Image, error) {
	path := c.path
	if isDir {
		newest, err := newestImage(c.path)
		if err != nil {
			return nil, err
		}
		path = newest
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}

	img, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	return img, nil
}

// newestImage returns the most recently modified image file in dir.
func newestImage(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var newest string
	var newestMod int64
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = e.Name()
			newestMod = mod
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w: no images in %s", ErrNoFrame, dir)
	}
	return filepath.Join(dir, newest), nil
}
