package material

import (
	"testing"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		c    colorspace.Color
		want Material
	}{
		{"skin tone", 0xE3B590, Skin},
		{"silver", 0xC8C8D0, Metal},
		{"white", 0xFFFFFF, Metal},
		{"yellow glow", 0xF0E020, Glow},
		{"cyan glow", 0x20F0F0, Glow},
		{"brown wood", 0x7A4E26, Wood},
		{"mid blue cloth", 0x404A80, Cloth},
		{"saturated red", 0xE01010, Accent},
		{"near black", 0x0A0A0A, Other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.c); got != tt.want {
				h, s, v := colorspace.ToHSV(tt.c)
				t.Errorf("Classify(%s) = %s, want %s (h=%.1f s=%.2f v=%.2f)", tt.c, got, tt.want, h, s, v)
			}
		})
	}
}

func TestClassifyPure(t *testing.T) {
	for _, c := range []colorspace.Color{0x123456, 0xE3B590, 0x808080} {
		if Classify(c) != Classify(c) {
			t.Errorf("Classify(%s) not deterministic", c)
		}
	}
}

func TestGroupByMaterial(t *testing.T) {
	p := colorspace.Palette{0xC8C8D0, 0xE3B590, 0xE01010}
	groups := GroupByMaterial(p)
	if len(groups["metal"]) != 1 || len(groups["armor"]) != 1 {
		t.Errorf("metal/armor buckets = %v / %v", groups["metal"], groups["armor"])
	}
	if len(groups["skin"]) != 1 || len(groups["accent"]) != 1 {
		t.Errorf("groups = %v", groups)
	}
	if _, ok := groups["cloth"]; ok {
		t.Error("empty buckets should be dropped")
	}
	if len(GroupByMaterial(nil)) != 0 {
		t.Error("empty palette should produce no groups")
	}
}

func TestParseAndText(t *testing.T) {
	for _, m := range All() {
		got, err := Parse(m.String())
		if err != nil || got != m {
			t.Errorf("Parse(%q) = %v, %v", m.String(), got, err)
		}
	}
	if m, err := Parse("armor"); err != nil || m != Metal {
		t.Errorf("Parse(armor) = %v, %v", m, err)
	}
	if _, err := Parse("plasma"); err == nil {
		t.Error("Parse(plasma) should fail")
	}
	var m Material
	if err := m.UnmarshalText([]byte("Leather")); err != nil || m != Leather {
		t.Errorf("UnmarshalText = %v, %v", m, err)
	}
}
