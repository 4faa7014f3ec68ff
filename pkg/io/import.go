package io

import (
	"bufio"
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/pixel"
)

// Input formats recognised by DecodeImage.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

type decoder func(io.Reader) (image.Image, error)

var decoders = map[string]decoder{
	FormatPNG:  png.Decode,
	FormatJPEG: jpeg.Decode,
	FormatGIF:  gif.Decode,
	FormatBMP:  bmp.Decode,
	FormatWebP: webp.Decode,
	FormatTGA:  tga.Decode,
}

// Sniff returns the format whose magic bytes start header, falling back to
// tga.
func Sniff(header []byte) string {
	switch {
	case bytes.HasPrefix(header, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG
	case bytes.HasPrefix(header, []byte("\xff\xd8")):
		return FormatJPEG
	case bytes.HasPrefix(header, []byte("GIF87a")), bytes.HasPrefix(header, []byte("GIF89a")):
		return FormatGIF
	case bytes.HasPrefix(header, []byte("BM")):
		return FormatBMP
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WEBP")):
		return FormatWebP
	default:
		return FormatTGA
	}
}

// DecodeImage decodes r into a pixel buffer and reports the detected format.
func DecodeImage(r io.Reader) (*pixel.Buffer, string, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(12)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidImage, err, "read image header")
	}
	if len(header) == 0 {
		return nil, "", errors.New(errors.ErrCodeInvalidImage, "empty image")
	}

	format := Sniff(header)
	img, err := decoders[format](br)
	if err != nil {
		return nil, format, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode %s", format)
	}
	return pixel.FromImage(img), format, nil
}

// LoadImage reads and decodes the image at path.
func LoadImage(path string) (*pixel.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "open %s", path)
	}
	defer f.Close()

	buf, _, err := DecodeImage(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "load %s", path)
	}
	return buf, nil
}
