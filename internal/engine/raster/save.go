package raster

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ImageFormat is an output image encoding.
type ImageFormat string

// Supported image formats.
const (
	PNG  ImageFormat = "png"
	BMP  ImageFormat = "bmp"
	TIFF ImageFormat = "tiff"
	JPEG ImageFormat = "jpeg"
	GIF  ImageFormat = "gif"
)

// ParseImageFormat accepts a format name or file extension.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// Ext returns the file extension, without the dot.
func (f ImageFormat) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}

// Scale resizes img by factor using Lanczos resampling.
// A factor of 1 (or anything not positive) returns img unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return img
	}
	b := img.Bounds()
	w := uint(float64(b.Dx())*factor + 0.5)
	h := uint(float64(b.Dy())*factor + 0.5)
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return resize.Resize(w, h, img, resize.Lanczos3)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case GIF:
		return gif.Encode(w, img, nil)
	}
	return fmt.Errorf("unsupported image format %q", string(format))
}

// Save encodes img to path, scaling it first. Parent directories are created.
func Save(path string, img image.Image, format ImageFormat, scale float64) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	bw := bufio.NewWriter(file)
	if err := Encode(bw, Scale(img, scale), format); err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}
