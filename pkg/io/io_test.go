package io

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/pixel"
)

func testSprite() *pixel.Buffer {
	buf := pixel.New(6, 5)
	buf.FillRect(pixel.Rect{X: 1, Y: 1, W: 4, H: 3}, 0x3A5A98)
	buf.SetColor(2, 2, 0xE3B590)
	return buf
}

func samePixels(t *testing.T, got, want *pixel.Buffer) {
	t.Helper()
	if got.Width != want.Width || got.Height != want.Height {
		t.Fatalf("size %dx%d, want %dx%d", got.Width, got.Height, want.Width, want.Height)
	}
	for y := range want.Height {
		for x := range want.Width {
			gc, gok := got.ColorAt(x, y)
			wc, wok := want.ColorAt(x, y)
			if gok != wok || (wok && gc != wc) {
				t.Fatalf("(%d,%d) = %s/%v, want %s/%v", x, y, gc, gok, wc, wok)
			}
		}
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"\x89PNG\r\n\x1a\nxxxx", FormatPNG},
		{"\xff\xd8\xff\xe0", FormatJPEG},
		{"GIF89a", FormatGIF},
		{"GIF87a", FormatGIF},
		{"BM\x00\x00", FormatBMP},
		{"RIFF\x10\x00\x00\x00WEBP", FormatWebP},
		{"RIFF\x10\x00\x00\x00WAVE", FormatTGA},
		{"\x00\x00\x02\x00", FormatTGA},
	}
	for _, tt := range tests {
		if got := Sniff([]byte(tt.header)); got != tt.want {
			t.Errorf("Sniff(%q) = %s, want %s", tt.header, got, tt.want)
		}
	}
}

func TestPNGRoundTrip(t *testing.T) {
	var b bytes.Buffer
	if err := EncodeSprite(&b, testSprite(), FormatPNG); err != nil {
		t.Fatal(err)
	}
	got, format, err := DecodeImage(&b)
	if err != nil {
		t.Fatal(err)
	}
	if format != FormatPNG {
		t.Errorf("format = %s", format)
	}
	samePixels(t, got, testSprite())
}

func TestWebPRoundTrip(t *testing.T) {
	var b bytes.Buffer
	if err := EncodeSprite(&b, testSprite(), FormatWebP); err != nil {
		t.Fatal(err)
	}
	got, format, err := DecodeImage(&b)
	if err != nil {
		t.Fatal(err)
	}
	if format != FormatWebP {
		t.Errorf("format = %s", format)
	}
	samePixels(t, got, testSprite())
}

func TestDecodeBMP(t *testing.T) {
	want := pixel.New(3, 2)
	want.FillRect(pixel.Rect{W: 3, H: 2}, 0x8A2A2A)
	want.SetColor(1, 1, 0x3F7A3A)
	var b bytes.Buffer
	if err := bmp.Encode(&b, want.NRGBA()); err != nil {
		t.Fatal(err)
	}
	got, format, err := DecodeImage(&b)
	if err != nil {
		t.Fatal(err)
	}
	if format != FormatBMP {
		t.Errorf("format = %s", format)
	}
	samePixels(t, got, want)
}

// tgaImage builds an uncompressed 32-bit top-left-origin TGA.
func tgaImage(w, h int, bgra []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	binary.Write(&b, binary.LittleEndian, uint16(w))
	binary.Write(&b, binary.LittleEndian, uint16(h))
	b.Write([]byte{32, 0x28})
	b.Write(bgra)
	return b.Bytes()
}

func TestDecodeTGA(t *testing.T) {
	data := tgaImage(2, 1, []byte{
		0x98, 0x5A, 0x3A, 0xFF,
		0x90, 0xB5, 0xE3, 0xFF,
	})
	got, format, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if format != FormatTGA {
		t.Errorf("format = %s", format)
	}
	for x, want := range []uint32{0x3A5A98, 0xE3B590} {
		if c, ok := got.ColorAt(x, 0); !ok || uint32(c) != want {
			t.Errorf("pixel %d = %s/%v, want %06x", x, c, ok, want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, err := DecodeImage(bytes.NewReader(nil)); !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("empty input: %v", err)
	}
	if _, _, err := DecodeImage(bytes.NewReader([]byte("\x89PNG\r\n\x1a\ngarbage"))); !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("truncated png: %v", err)
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	var b bytes.Buffer
	if err := EncodeSprite(&b, testSprite(), "gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "nested/b.webp", "C.PNG"} {
		path := filepath.Join(dir, name)
		if err := SaveSprite(testSprite(), path); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		got, err := LoadImage(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		samePixels(t, got, testSprite())
	}

	if err := SaveSprite(testSprite(), filepath.Join(dir, "x.gif")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("gif output: %v", err)
	}
	if _, err := LoadImage(filepath.Join(dir, "missing.png")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(bad); !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("bad file: %v", err)
	}
}

func TestFormatFor(t *testing.T) {
	for path, want := range map[string]string{"a.png": FormatPNG, "a.WEBP": FormatWebP, "a.jpg": "", "a": ""} {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %q, want %q", path, got, want)
		}
	}
}
