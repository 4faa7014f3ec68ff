package report

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/generate"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/qa"
	"github.com/matzehuels/spritestyle/pkg/rng"
	"github.com/matzehuels/spritestyle/pkg/style"
)

func testConfig() *style.Config {
	cfg := style.New()
	cfg.Palette["metal"] = colorspace.Palette{0xC8C8D0}
	cfg.Palette["skin"] = colorspace.Palette{0xE3B590, 0x222222}
	cfg.Proportions["head"] = 33
	cfg.Equipment["weapon"] = style.Equipment{Present: true, Type: "sword"}
	cfg.Equipment["shield"] = style.Equipment{Present: false}
	return cfg
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testConfig(), Options{})

	for _, want := range []string{
		"digraph Style",
		`"style" [label="style"`,
		`"style" -> "material:metal"`,
		`"material:skin" -> "material:skin:1"`,
		`fillcolor="#c8c8d0"`,
		`"equipment:weapon"`,
		"sword",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q", want)
		}
	}
	if strings.Contains(dot, "equipment:shield") {
		t.Error("absent equipment should be omitted")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testConfig(), Options{Detailed: true})

	for _, want := range []string{"shading: cel-shading", "outline: #000000 x1", "head: 33%"} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed ToDOT() missing %q", want)
		}
	}
}

func TestSwatchFontContrast(t *testing.T) {
	tests := []struct {
		c    colorspace.Color
		want string
	}{
		{colorspace.Black, "fontcolor=white"},
		{colorspace.White, "fontcolor=black"},
		{0x222222, "fontcolor=white"},
		{0xE3B590, "fontcolor=black"},
	}
	for _, tt := range tests {
		attrs := strings.Join(swatchAttrs(tt.c), ", ")
		if !strings.Contains(attrs, tt.want) {
			t.Errorf("swatchAttrs(%s) = %s, want %s", tt.c, attrs, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg><g/></svg>")); string(got) != "<svg><g/></svg>" {
		t.Errorf("input without viewBox should pass through, got %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testConfig(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output is not SVG")
	}
}

func TestRenderSVGInvalid(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("malformed DOT should fail")
	}
}

func validReport(t *testing.T) *qa.Report {
	t.Helper()
	buf, err := generate.NewGenerator(nil, nil).Generate(style.Default(), generate.Descriptor{}, rng.New(1))
	if err != nil {
		t.Fatal(err)
	}
	return qa.NewValidator(nil).Validate(buf, qa.Guide{})
}

func TestSummaryValid(t *testing.T) {
	r := validReport(t)
	if !r.Valid {
		t.Fatalf("fixture should be valid: %v", r.Issues)
	}
	rows := Summary(r)

	want := []string{"proportions", "colors", "outline", "shading", "clipping"}
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i, row := range rows {
		if row.Check != want[i] || row.Status != StatusOK {
			t.Errorf("row %d = %s/%s", i, row.Check, row.Status)
		}
	}
	if failed := Failed(rows); len(failed) != 0 {
		t.Errorf("Failed() = %v", failed)
	}
	if !strings.HasPrefix(rows[3].Detail, "cel-shading: ") || !strings.HasSuffix(rows[3].Detail, "(want 4-6)") {
		t.Errorf("shading detail = %q", rows[3].Detail)
	}
}

func TestSummaryEmptySprite(t *testing.T) {
	r := qa.NewValidator(nil).Validate(pixel.New(32, 48), qa.Guide{})
	rows := Summary(r)

	got := strings.Join(Failed(rows), ",")
	if got != "proportions,outline,shading,clipping" {
		t.Errorf("Failed() = %s", got)
	}
	text := Text(rows)
	if !strings.Contains(text, "    - ") || !strings.Contains(text, "clipping") {
		t.Errorf("Text() = %s", text)
	}
}

func TestSummaryItemSkipsShading(t *testing.T) {
	buf, err := generate.NewGenerator(nil, nil).Generate(nil, generate.Descriptor{Item: generate.ItemPotion, Width: 16, Height: 16}, rng.New(1))
	if err != nil {
		t.Fatal(err)
	}
	rows := Summary(qa.NewValidator(nil).Validate(buf, qa.Guide{Item: true}))
	if rows[3].Detail != "skipped" {
		t.Errorf("shading detail = %q, want skipped", rows[3].Detail)
	}
}
