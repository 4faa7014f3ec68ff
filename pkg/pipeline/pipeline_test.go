package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/pixel"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"webp", false},
		{"gif", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateMerge(t *testing.T) {
	tests := []struct {
		merge   string
		wantErr bool
	}{
		{"first", false},
		{"majority", false},
		{"average", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateMerge(tt.merge)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateMerge(%q) error = %v, wantErr %v", tt.merge, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.MaxColors != DefaultMaxColors {
		t.Errorf("MaxColors = %d, want %d", opts.MaxColors, DefaultMaxColors)
	}
	if opts.Merge != DefaultMergeStrategy {
		t.Errorf("Merge = %q, want %q", opts.Merge, DefaultMergeStrategy)
	}
	if opts.Class != DefaultClass || opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("generate defaults = %s %dx%d", opts.Class, opts.Width, opts.Height)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", opts.Seed, DefaultSeed)
	}
	if opts.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", opts.Format, DefaultFormat)
	}
	if opts.ValidateColors != DefaultValidateColors {
		t.Errorf("ValidateColors = %d, want %d", opts.ValidateColors, DefaultValidateColors)
	}
	if opts.Variations != DefaultVariations {
		t.Errorf("Variations = %d, want %d", opts.Variations, DefaultVariations)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent
	opts.Class = "nope"
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op, got %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown class", Options{Class: "knight"}, errors.ErrCodeInvalidInput},
		{"unknown item", Options{Item: "bow"}, errors.ErrCodeInvalidInput},
		{"too small", Options{Width: 4, Height: 4}, errors.ErrCodeInvalidInput},
		{"format", Options{Format: "gif"}, errors.ErrCodeInvalidFormat},
		{"merge", Options{Merge: "average"}, errors.ErrCodeInvalidInput},
		{"max colors", Options{MaxColors: 1000}, errors.ErrCodeInvalidInput},
		{"color variation", Options{ColorVariation: 1.5}, errors.ErrCodeInvalidInput},
		{"size variation", Options{SizeVariation: -0.5}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %s, want %s (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestNegativeVariationsAllowed(t *testing.T) {
	opts := Options{Variations: -1}
	if err := opts.ValidateForVary(); err != nil {
		t.Fatalf("ValidateForVary: %v", err)
	}
	if opts.Variations != -1 {
		t.Errorf("Variations = %d, want -1", opts.Variations)
	}
}

func TestKeyOpts(t *testing.T) {
	opts := Options{Class: "mage", Textures: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	sk := opts.SpriteKeyOpts()
	if sk.Class != "mage" || sk.Width != DefaultWidth || sk.Seed != DefaultSeed || !sk.Textures || sk.Format != FormatPNG {
		t.Errorf("SpriteKeyOpts = %+v", sk)
	}
	rk := opts.ReportKeyOpts("abc")
	if rk.StyleHash != "abc" || rk.MaxColors != DefaultValidateColors || !rk.Textured || rk.Item {
		t.Errorf("ReportKeyOpts = %+v", rk)
	}
	if g := opts.Guide(nil); !g.Textured || g.Item {
		t.Errorf("Guide = %+v", g)
	}

	vc := opts.VariationConfig()
	if vc.Seed != DefaultSeed || vc.ColorVariation != DefaultColorVariation {
		t.Errorf("VariationConfig = %+v", vc)
	}
}

func TestOptionsString(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{Options{Class: "rogue", Width: 32, Height: 48, Seed: 7}, "rogue 32x48 seed=7"},
		{Options{Class: "rogue", Item: "potion", Width: 16, Height: 16, Seed: 1}, "potion 16x16 seed=1"},
	}
	for _, tt := range tests {
		if got := tt.opts.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	data := `
class = "mage"
seed = 7
textures = true
variations = 2
color_variation = 0.2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if opts.Class != "mage" || opts.Seed != 7 || !opts.Textures || opts.Variations != 2 || opts.ColorVariation != 0.2 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Width != 0 {
		t.Errorf("LoadConfig should not apply defaults, Width = %d", opts.Width)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	if err := os.WriteFile(unknown, []byte("klass = \"mage\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("class = \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "missing.toml"), errors.ErrCodeFileNotFound},
		{"unknown key", unknown, errors.ErrCodeInvalidInput},
		{"syntax", broken, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestHashBuffers(t *testing.T) {
	a := pixel.New(2, 1)
	a.SetColor(0, 0, 0xFF0000)
	b := pixel.New(1, 2)
	copy(b.Pix, a.Pix)
	c := a.Clone()

	if HashBuffers(a) != HashBuffers(c) {
		t.Error("equal buffers should hash equal")
	}
	if HashBuffers(a) == HashBuffers(b) {
		t.Error("size should be part of the hash")
	}
	if HashBuffers(a, b) == HashBuffers(b, a) {
		t.Error("order should be part of the hash")
	}
	if HashBuffers(a, nil) != HashBuffers(a) {
		t.Error("nil buffers should be skipped")
	}
}
