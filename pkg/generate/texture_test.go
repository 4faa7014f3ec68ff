package generate

import (
	"testing"

	"github.com/matzehuels/spritestyle/pkg/material"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/rng"
	"github.com/matzehuels/spritestyle/pkg/style"
)

func textured(m material.Material, seed uint32) (*pixel.Buffer, Tones) {
	tones := GeneratePalette(0x7A4E26, m)
	buf := pixel.New(16, 16)
	r := pixel.Rect{X: 2, Y: 2, W: 12, H: 12}
	ApplyCelShade(buf, r, tones, style.LightTopLeft)
	NewTextureGenerator(rng.New(seed)).Apply(buf, pixel.Rect{W: 16, H: 16}, m, tones)
	return buf, tones
}

func TestTextureDeterministic(t *testing.T) {
	for _, m := range []material.Material{material.Cloth, material.Leather, material.Metal, material.Wood} {
		a, _ := textured(m, 7)
		b, _ := textured(m, 7)
		if !a.Equal(b) {
			t.Errorf("%s: same seed gave different pixels", m)
		}
	}
}

func TestTextureStaysOnRamp(t *testing.T) {
	for _, m := range []material.Material{material.Cloth, material.Leather, material.Metal, material.Wood} {
		buf, tones := textured(m, 42)
		levels := tones.Levels()
		for c := range distinct(buf) {
			found := false
			for _, l := range levels {
				found = found || l == c
			}
			if !found {
				t.Errorf("%s: color %s is not on the ramp", m, c)
			}
		}
	}
}

func TestTextureKeepsSilhouette(t *testing.T) {
	for _, m := range material.All() {
		buf, _ := textured(m, 3)
		if buf.Opaque(0, 0) || buf.Opaque(15, 15) || buf.OpaqueCount() != 144 {
			t.Errorf("%s: silhouette changed (%d opaque)", m, buf.OpaqueCount())
		}
	}
}

func TestTextureChangesSurface(t *testing.T) {
	tones := GeneratePalette(0x3A5A98, material.Cloth)
	buf := pixel.New(8, 8)
	ApplyFlat(buf, pixel.Rect{W: 8, H: 8}, tones)
	NewTextureGenerator(rng.New(1)).Cloth(buf, pixel.Rect{W: 8, H: 8}, tones)
	if got := distinct(buf); len(got) != 3 {
		t.Errorf("cloth weave on a flat fill should use 3 tones, got %d", len(got))
	}
}

func TestMask(t *testing.T) {
	g := NewTextureGenerator(rng.New(1))
	for _, v := range g.Mask(4, 4, 0) {
		if v {
			t.Fatal("density 0 set a cell")
		}
	}
	for _, v := range g.Mask(4, 4, 1) {
		if !v {
			t.Fatal("density 1 left a cell unset")
		}
	}
	if n := len(g.Mask(3, 5, 0.5)); n != 15 {
		t.Errorf("len = %d, want 15", n)
	}
	if n := len(g.Mask(-1, 5, 0.5)); n != 0 {
		t.Errorf("negative width len = %d", n)
	}
}
