package analysis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/style"
)

func quadrants() *pixel.Buffer {
	b := pixel.New(16, 16)
	b.FillRect(pixel.Rect{X: 0, Y: 0, W: 8, H: 8}, 0xE3B590)
	b.FillRect(pixel.Rect{X: 8, Y: 0, W: 8, H: 8}, 0xC8C8D0)
	b.FillRect(pixel.Rect{X: 0, Y: 8, W: 8, H: 8}, 0x404A80)
	b.FillRect(pixel.Rect{X: 8, Y: 8, W: 8, H: 8}, 0x7A4E26)
	return b
}

func TestAnalyzeReference(t *testing.T) {
	cfg := AnalyzeReference(quadrants(), Options{})

	wants := map[string]colorspace.Color{
		"skin":  0xE3B590,
		"metal": 0xC8C8D0,
		"armor": 0xC8C8D0,
		"cloth": 0x404A80,
		"wood":  0x7A4E26,
	}
	for k, c := range wants {
		if !cfg.Palette[k].Contains(c) {
			t.Errorf("palette[%s] = %v, want %v", k, cfg.Palette[k].Hex(), c)
		}
	}
	if cfg.Style.ColorCount != 4 {
		t.Errorf("ColorCount = %d, want 4", cfg.Style.ColorCount)
	}
	if len(cfg.Proportions) != 4 {
		t.Errorf("Proportions = %v", cfg.Proportions)
	}
	if !cfg.Equipment[SlotWeapon].Present {
		t.Error("opaque right quarter should flag a weapon")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAnalyzeReferenceMaxColors(t *testing.T) {
	cfg := AnalyzeReference(quadrants(), Options{MaxColors: 2})
	if n := len(cfg.Colors()); n > 2 {
		t.Errorf("colors = %d, want <= 2", n)
	}
}

func TestAnalyzeReferenceTransparent(t *testing.T) {
	cfg := AnalyzeReference(pixel.New(16, 16), Options{})
	if len(cfg.Palette) != 0 {
		t.Errorf("palette = %v, want empty", cfg.Palette)
	}
	if cfg.Style.ColorCount != 0 || cfg.Style.OutlineThickness != 0 {
		t.Errorf("style = %+v", cfg.Style)
	}
	if cfg.Proportions[ProportionHead] != 50 {
		t.Errorf("head = %v, want fallback 50", cfg.Proportions[ProportionHead])
	}
}

func TestAnalyzeMultipleErrors(t *testing.T) {
	if _, err := AnalyzeMultiple(nil, Options{}); !errors.Is(err, ErrNoReferences) {
		t.Errorf("err = %v, want ErrNoReferences", err)
	}
	if _, err := AnalyzeMultiple([]*pixel.Buffer{quadrants()}, Options{Merge: "vote"}); err == nil {
		t.Error("expected error for unknown merge strategy")
	}
}

func configWith(shading string, outline colorspace.Color, head float64, weapon bool, palette colorspace.Palette) *style.Config {
	c := style.New()
	c.Style.ShadingMethod = shading
	c.Style.OutlineColor = outline
	c.Proportions[ProportionHead] = head
	c.Equipment[SlotWeapon] = style.Equipment{Present: weapon, Type: DefaultWeaponType}
	c.Palette["cloth"] = palette
	return c
}

func TestMerge(t *testing.T) {
	configs := []*style.Config{
		configWith(style.ShadingFlat, 0x111111, 30, false, colorspace.Palette{0x404A80}),
		configWith(style.ShadingCel, 0x000000, 34, true, colorspace.Palette{0x404A80, 0x3A5A98}),
		configWith(style.ShadingCel, 0x000000, 35, false, colorspace.Palette{0x8A2A2A}),
	}

	first := Merge(configs, MergeFirst)
	if first.Style.ShadingMethod != style.ShadingFlat || first.Style.OutlineColor != 0x111111 {
		t.Errorf("first style = %+v", first.Style)
	}
	if got := first.Proportions[ProportionHead]; got != 33 {
		t.Errorf("head = %v, want 33", got)
	}
	if got := first.Palette["cloth"]; len(got) != 3 || got[0] != 0x404A80 {
		t.Errorf("cloth = %v, want 3 deduplicated colors", got.Hex())
	}
	if !first.Equipment[SlotWeapon].Present {
		t.Error("weapon present in one reference should survive")
	}

	majority := Merge(configs, MergeMajority)
	if majority.Style.ShadingMethod != style.ShadingCel || majority.Style.OutlineColor != 0x000000 {
		t.Errorf("majority style = %+v", majority.Style)
	}
}

func TestMergeDropsAbsentEquipment(t *testing.T) {
	configs := []*style.Config{
		configWith(style.ShadingFlat, 0, 30, false, nil),
		configWith(style.ShadingFlat, 0, 30, false, nil),
	}
	if _, ok := Merge(configs, MergeFirst).Equipment[SlotWeapon]; ok {
		t.Error("equipment absent everywhere should be dropped")
	}
}

func TestMajorityTieGoesToEarliest(t *testing.T) {
	configs := []*style.Config{
		configWith(style.ShadingGradient, 0, 30, false, nil),
		configWith(style.ShadingCel, 0, 30, false, nil),
	}
	if got := Merge(configs, MergeMajority).Style.ShadingMethod; got != style.ShadingGradient {
		t.Errorf("tie = %q, want %q", got, style.ShadingGradient)
	}
}

func ExampleAnalyzeReference() {
	buf := pixel.New(8, 8)
	buf.FillRect(pixel.Rect{W: 8, H: 8}, 0xC8C8D0)
	cfg := AnalyzeReference(buf, Options{MaxColors: 4})
	fmt.Println(cfg.Palette["metal"].Hex())
	fmt.Println(cfg.Style.ColorCount)
	// Output:
	// [#c8c8d0]
	// 1
}
