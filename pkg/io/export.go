package io

import (
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/pixel"
)

// EncodeFormats lists the formats EncodeSprite writes.
var EncodeFormats = []string{FormatPNG, FormatWebP}

// FormatFor returns the output format implied by path's extension, or "" if
// the extension is not a supported output format.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".webp":
		return FormatWebP
	default:
		return ""
	}
}

// EncodeSprite writes buf to w as png or lossless webp.
func EncodeSprite(w io.Writer, buf *pixel.Buffer, format string) error {
	img := buf.NRGBA()
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "cannot encode %q (want one of %v)", format, EncodeFormats)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return nil
}

// SaveSprite writes buf to path, creating parent directories. The format
// comes from the extension.
func SaveSprite(buf *pixel.Buffer, path string) error {
	format := FormatFor(path)
	if format == "" {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported sprite extension %q", filepath.Ext(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create %s", path)
	}
	if err := EncodeSprite(f, buf, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
