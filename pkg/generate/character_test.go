package generate

import (
	"bytes"
	"testing"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/rng"
	"github.com/matzehuels/spritestyle/pkg/style"
)

func armed() *style.Config {
	cfg := style.Default()
	cfg.Equipment["weapon"] = style.Equipment{Present: true, Type: ItemSword}
	cfg.Equipment["shield"] = style.Equipment{Present: true}
	cfg.Equipment["helmet"] = style.Equipment{Present: true}
	return cfg
}

func TestGenerateDeterministic(t *testing.T) {
	g := NewGenerator(nil, nil)
	for _, class := range Classes() {
		d := Descriptor{Class: class, Width: 32, Height: 48, Textures: true}
		a, err := g.Generate(armed(), d, rng.New(42))
		if err != nil {
			t.Fatal(err)
		}
		b, err := g.Generate(armed(), d, rng.New(42))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a.Pix, b.Pix) {
			t.Errorf("%s: same seed gave different pixels", class)
		}
	}
}

func TestGenerateDefaults(t *testing.T) {
	buf, err := NewGenerator(nil, nil).Generate(nil, Descriptor{}, rng.New(1))
	if err != nil {
		t.Fatal(err)
	}
	if buf.Width != DefaultWidth || buf.Height != DefaultHeight {
		t.Errorf("size = %dx%d", buf.Width, buf.Height)
	}
}

func TestGenerateErrors(t *testing.T) {
	g := NewGenerator(nil, nil)
	tests := []struct {
		name string
		d    Descriptor
	}{
		{"unknown class", Descriptor{Class: "bard"}},
		{"unknown item", Descriptor{Item: "lute"}},
		{"too small", Descriptor{Width: 4, Height: 4}},
		{"too large", Descriptor{Width: 1024, Height: 48}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(nil, tt.d, rng.New(1))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("got %v, want INVALID_INPUT", err)
			}
		})
	}

	bad := style.Default()
	bad.Style.ShadingMethod = "watercolor"
	if _, err := g.Generate(bad, Descriptor{}, rng.New(1)); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("bad style: got %v", err)
	}
}

func topRow(buf *pixel.Buffer) int {
	b, _ := buf.OpaqueBounds()
	return b.Y
}

func TestGenerateOutline(t *testing.T) {
	g := NewGenerator(nil, nil)
	for thickness := 1; thickness <= 3; thickness++ {
		cfg := armed()
		cfg.Style.OutlineColor = 0x101010
		cfg.Style.OutlineThickness = thickness
		buf, err := g.Generate(cfg, Descriptor{Class: ClassWarrior, Width: 32, Height: 48}, rng.New(9))
		if err != nil {
			t.Fatal(err)
		}
		y := topRow(buf)
		if y != 0 {
			t.Errorf("thickness %d: silhouette starts at row %d, want 0", thickness, y)
		}
		for x := range buf.Width {
			if c, ok := buf.ColorAt(x, y); ok && c != 0x101010 {
				t.Errorf("thickness %d: top row pixel %d = %s, want outline", thickness, x, c)
			}
		}
	}
}

func TestGenerateCenterFilled(t *testing.T) {
	g := NewGenerator(nil, nil)
	for _, class := range Classes() {
		buf, err := g.Generate(nil, Descriptor{Class: class, Width: 32, Height: 48}, rng.New(3))
		if err != nil {
			t.Fatal(err)
		}
		if !buf.Opaque(16, 24) {
			t.Errorf("%s: center pixel is transparent", class)
		}
	}
}

func TestGenerateItems(t *testing.T) {
	g := NewGenerator(nil, nil)
	for _, item := range Items() {
		buf, err := g.Generate(nil, Descriptor{Item: item, Width: 24, Height: 24, Textures: true}, rng.New(5))
		if err != nil {
			t.Fatal(err)
		}
		b, ok := buf.OpaqueBounds()
		if !ok {
			t.Fatalf("%s: empty sprite", item)
		}
		if b.X < 0 || b.Y < 0 || b.X+b.W > 24 || b.Y+b.H > 24 {
			t.Errorf("%s: bounds %+v", item, b)
		}
	}
}

func TestGenerateFlatColorBudget(t *testing.T) {
	cfg := style.Default()
	cfg.Style.ShadingMethod = style.ShadingFlat
	cfg.Style.HasHighlights = false
	buf, err := NewGenerator(nil, nil).Generate(cfg, Descriptor{Class: ClassMage, Width: 32, Height: 48}, rng.New(11))
	if err != nil {
		t.Fatal(err)
	}
	// cloth body, skin head and the outline
	if n := len(distinct(buf)); n > 3 {
		t.Errorf("flat mage uses %d colors, want at most 3", n)
	}
}

func TestGenerateStylePalette(t *testing.T) {
	cfg := style.Default()
	cfg.Style.ShadingMethod = style.ShadingFlat
	cfg.Style.HasHighlights = false
	cfg.Palette["cloth"] = colorspace.Palette{0x224466}
	buf, err := NewGenerator(nil, nil).Generate(cfg, Descriptor{Class: ClassMage, Width: 32, Height: 48}, rng.New(2))
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := buf.ColorAt(16, 24); c != 0x224466 {
		t.Errorf("torso = %s, want style cloth color", c)
	}
}

func TestGenerateStaff(t *testing.T) {
	cfg := style.Default()
	cfg.Equipment["weapon"] = style.Equipment{Present: true, Type: WeaponStaff}
	g := NewGenerator(nil, nil)
	staff, err := g.Generate(cfg, Descriptor{Class: ClassMage}, rng.New(4))
	if err != nil {
		t.Fatal(err)
	}
	bare, err := g.Generate(style.Default(), Descriptor{Class: ClassMage}, rng.New(4))
	if err != nil {
		t.Fatal(err)
	}
	if staff.OpaqueCount() <= bare.OpaqueCount() {
		t.Errorf("staff added no pixels: %d vs %d", staff.OpaqueCount(), bare.OpaqueCount())
	}
}
