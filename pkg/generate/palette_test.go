package generate

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/material"
	"github.com/matzehuels/spritestyle/pkg/rng"
	"github.com/matzehuels/spritestyle/pkg/storage"
	"github.com/matzehuels/spritestyle/pkg/style"
)

func TestPaletteManagerBuiltins(t *testing.T) {
	pm := NewPaletteManager()
	for _, name := range []string{"skin", "metal", "cloth", "leather", "wood", "glow", "accent"} {
		if p, ok := pm.Get(name); !ok || len(p) == 0 {
			t.Errorf("missing built-in palette %q", name)
		}
	}
	if !slices.IsSorted(pm.Names()) {
		t.Error("Names should be sorted")
	}
}

func TestPaletteManagerGetCopies(t *testing.T) {
	pm := NewPaletteManager()
	p, _ := pm.Get("skin")
	p[0] = 0x000001
	if q, _ := pm.Get("skin"); q[0] == 0x000001 {
		t.Error("Get returned the stored slice")
	}
}

func TestPaletteManagerSet(t *testing.T) {
	pm := NewPaletteManager()
	if err := pm.Set("robes", colorspace.Palette{0x552288}); err != nil {
		t.Fatal(err)
	}
	if p, _ := pm.Get("robes"); len(p) != 1 || p[0] != 0x552288 {
		t.Errorf("got %v", p)
	}
	if err := pm.Set("Bad Name", colorspace.Palette{0x1}); !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("bad name: %v", err)
	}
	if err := pm.Set("empty", nil); !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("empty palette: %v", err)
	}
}

func TestPaletteManagerClone(t *testing.T) {
	pm := NewPaletteManager()
	c := pm.Clone()
	if err := c.Set("skin", colorspace.Palette{0x010203}); err != nil {
		t.Fatal(err)
	}
	if p, _ := pm.Get("skin"); p[0] == 0x010203 {
		t.Error("clone shares state with the original")
	}
}

func TestPaletteManagerFromStyle(t *testing.T) {
	pm := NewPaletteManager()
	cfg := style.New()
	cfg.Palette["metal"] = colorspace.Palette{0xAABBCC}
	cfg.Palette["cloth"] = nil
	pm.FromStyle(cfg)
	if p, _ := pm.Get("metal"); len(p) != 1 || p[0] != 0xAABBCC {
		t.Errorf("metal = %v", p)
	}
	if p, _ := pm.Get("cloth"); len(p) == 0 {
		t.Error("empty style palette replaced a built-in")
	}
}

func TestPick(t *testing.T) {
	pm := &PaletteManager{palettes: map[string]colorspace.Palette{"cloth": {0x112233}}}
	r := rng.New(1)
	if c := pm.Pick(material.Cloth, r); c != 0x112233 {
		t.Errorf("cloth = %s", c)
	}
	if c := pm.Pick(material.Glow, r); c != 0x112233 {
		t.Errorf("missing palette should fall back to cloth, got %s", c)
	}
	empty := &PaletteManager{palettes: map[string]colorspace.Palette{}}
	if c := empty.Pick(material.Metal, r); c != FallbackColor {
		t.Errorf("got %s, want fallback", c)
	}

	builtin := NewPaletteManager()
	skin, _ := builtin.Get("skin")
	for range 20 {
		if c := builtin.Pick(material.Skin, r); !skin.Contains(c) {
			t.Fatalf("%s not in skin palette", c)
		}
	}
}

func TestVary(t *testing.T) {
	r := rng.New(5)
	if c := Vary(0x3A5A98, 0, r); c != 0x3A5A98 {
		t.Errorf("zero amount changed color to %s", c)
	}
	base := colorspace.Color(0x3A5A98)
	for range 50 {
		c := Vary(base, 0.1, r)
		if colorspace.Distance(base, c) > 100 {
			t.Fatalf("vary drifted too far: %s", c)
		}
	}
}

func TestPaletteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	pm := NewPaletteManager()
	if err := pm.Save(ctx, store, "metal"); err != nil {
		t.Fatal(err)
	}
	if err := pm.Save(ctx, store, "nope"); !errors.Is(err, errors.ErrCodePaletteNotFound) {
		t.Errorf("saving unknown palette: %v", err)
	}

	other := &PaletteManager{palettes: map[string]colorspace.Palette{}}
	if err := other.Load(ctx, store, "metal"); err != nil {
		t.Fatal(err)
	}
	want, _ := pm.Get("metal")
	if got, _ := other.Get("metal"); !slices.Equal(got, want) {
		t.Errorf("loaded %v, want %v", got, want)
	}
	if err := other.Load(ctx, store, "missing"); !errors.Is(err, errors.ErrCodePaletteNotFound) {
		t.Errorf("loading missing palette: %v", err)
	}
}
