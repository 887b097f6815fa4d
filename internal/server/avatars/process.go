// Package avatars turns uploaded pictures into stored avatars and keeps them
// in a blob store (the users table or an S3 bucket).
package avatars

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"regexp"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"golang.org/x/image/draw"
)

const (
	Width  = 250
	Height = 250

	// maxSourcePixels bounds the decoded size of an upload.
	maxSourcePixels = 40_000_000
)

var filenamePattern = regexp.MustCompile(`\.(jpg|jpeg|png)$`)

// AllowedFilename reports whether name has an accepted image extension.
// The match is case sensitive: "photo.JPG" is rejected.
func AllowedFilename(name string) bool {
	return filenamePattern.MatchString(name)
}

// Process decodes a JPEG or PNG, scales it to cover Width x Height, crops the
// center and returns the result encoded as PNG. Content that is not a
// decodable image yields an error wrapping common.ErrNotAnImage.
func Process(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNotAnImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxSourcePixels {
		return nil, fmt.Errorf("%w: unsupported dimensions %dx%d", common.ErrNotAnImage, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNotAnImage, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverRect(src.Bounds(), Width, Height), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// coverRect returns the largest centered sub-rectangle of b that has the
// aspect ratio w:h.
func coverRect(b image.Rectangle, w, h int) image.Rectangle {
	bw, bh := b.Dx(), b.Dy()

	cw, ch := bw, bw*h/w
	if ch > bh {
		cw, ch = bh*w/h, bh
	}
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}

	x0 := b.Min.X + (bw-cw)/2
	y0 := b.Min.Y + (bh-ch)/2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}
