package generate

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/material"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/rng"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// Character classes.
const (
	ClassWarrior  = "warrior"
	ClassMage     = "mage"
	ClassRogue    = "rogue"
	ClassVillager = "villager"
)

// Standalone items.
const (
	ItemSword  = "sword"
	ItemShield = "shield"
	ItemPotion = "potion"
)

// WeaponStaff is the equipment type drawn as a staff; any other weapon type
// is drawn as a sword.
const WeaponStaff = "staff"

// Default sprite size.
const (
	DefaultWidth  = 32
	DefaultHeight = 48
)

// Outfit assigns a material to each clothed body part.
type Outfit struct {
	Torso material.Material
	Arms  material.Material
	Legs  material.Material
}

var outfits = map[string]Outfit{
	ClassWarrior:  {Torso: material.Metal, Arms: material.Metal, Legs: material.Cloth},
	ClassMage:     {Torso: material.Cloth, Arms: material.Cloth, Legs: material.Cloth},
	ClassRogue:    {Torso: material.Leather, Arms: material.Leather, Legs: material.Cloth},
	ClassVillager: {Torso: material.Cloth, Arms: material.Skin, Legs: material.Leather},
}

var items = map[string]bool{ItemSword: true, ItemShield: true, ItemPotion: true}

// Classes returns the supported character classes, sorted.
func Classes() []string { return slices.Sorted(maps.Keys(outfits)) }

// TorsoMaterials returns the distinct torso materials across all classes.
func TorsoMaterials() []material.Material {
	var out []material.Material
	for _, class := range Classes() {
		if m := outfits[class].Torso; !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// Items returns the supported standalone items, sorted.
func Items() []string { return slices.Sorted(maps.Keys(items)) }

// Descriptor says what to draw. A non-empty Item draws that item alone
// instead of a character.
type Descriptor struct {
	Class    string `json:"class"`
	Item     string `json:"item,omitempty"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Textures bool   `json:"textures"`
}

// WithDefaults fills a missing class and size.
func (d Descriptor) WithDefaults() Descriptor {
	if d.Class == "" {
		d.Class = ClassWarrior
	}
	if d.Width == 0 {
		d.Width = DefaultWidth
	}
	if d.Height == 0 {
		d.Height = DefaultHeight
	}
	return d
}

// Validate checks the class, item and size.
func (d Descriptor) Validate() error {
	if err := errors.ValidateDimensions(d.Width, d.Height); err != nil {
		return err
	}
	if d.Item != "" {
		if !items[d.Item] {
			return errors.New(errors.ErrCodeInvalidInput, "unknown item %q (want one of %v)", d.Item, Items())
		}
		return nil
	}
	if _, ok := outfits[d.Class]; !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown class %q (want one of %v)", d.Class, Classes())
	}
	return nil
}

// Generator draws sprites from a style config.
type Generator struct {
	Palettes *PaletteManager
	Logger   *log.Logger
}

// NewGenerator returns a generator. Nil arguments get the built-in palettes
// and a discarding logger.
func NewGenerator(palettes *PaletteManager, logger *log.Logger) *Generator {
	if palettes == nil {
		palettes = NewPaletteManager()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Generator{Palettes: palettes, Logger: logger}
}

// Generate draws one sprite. The style's palettes override the generator's
// palettes of the same name for this call only. All random choices come from
// r, so equal seeds give equal pixels.
func (g *Generator) Generate(cfg *style.Config, d Descriptor, r *rng.Rand) (*pixel.Buffer, error) {
	d = d.WithDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = style.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "invalid style")
	}

	palettes := g.Palettes.Clone()
	palettes.FromStyle(cfg)
	p := &painter{
		buf:      pixel.New(d.Width, d.Height),
		st:       cfg.Style,
		palettes: palettes,
		rng:      r,
		tones:    make(map[material.Material]Tones),
	}
	if d.Textures {
		p.textures = NewTextureGenerator(r)
		p.textures.Method = cfg.Style.ShadingMethod
	}

	if d.Item != "" {
		p.item(d.Item)
	} else {
		p.character(Layout(d.Width, d.Height, cfg.Style.OutlineThickness), outfits[d.Class], d.Class, cfg.Equipment)
	}
	if cfg.Style.HasHighlights {
		for _, box := range p.lit {
			Highlight(p.buf, box, cfg.Style.HighlightColor, cfg.Style.LightDirection)
		}
	}
	p.buf.Outline(cfg.Style.OutlineColor, cfg.Style.OutlineThickness)

	g.Logger.Debug("generated sprite",
		"class", d.Class,
		"item", d.Item,
		"size", fmt.Sprintf("%dx%d", d.Width, d.Height),
		"shading", cfg.Style.ShadingMethod,
		"seed", r.Seed())
	return p.buf, nil
}

// painter holds the state of one Generate call.
type painter struct {
	buf      *pixel.Buffer
	st       style.Style
	palettes *PaletteManager
	rng      *rng.Rand
	textures *TextureGenerator
	tones    map[material.Material]Tones
	lit      []pixel.Rect
}

// ramp returns the tones for m, picking the base color on first use.
func (p *painter) ramp(m material.Material) Tones {
	t, ok := p.tones[m]
	if !ok {
		t = GeneratePalette(p.palettes.Pick(m, p.rng), m)
		p.tones[m] = t
	}
	return t
}

func (p *painter) fill(r pixel.Rect, m material.Material) {
	t := p.ramp(m)
	Shade(p.buf, r, t, p.st.ShadingMethod, p.st.LightDirection)
	if p.textures != nil {
		p.textures.Apply(p.buf, r, m, t)
	}
}

func (p *painter) disc(cx, cy, radius int, m material.Material) {
	t := p.ramp(m)
	tmp := pixel.New(2*radius+1, 2*radius+1)
	ShadeCircle(tmp, radius, radius, radius, t, p.st.ShadingMethod, p.st.LightDirection)
	if p.textures != nil {
		p.textures.Apply(tmp, pixel.Rect{W: tmp.Width, H: tmp.Height}, m, t)
	}
	p.stamp(tmp, cx-radius, cy-radius, tmp.Height)
}

// dome paints the upper half of a disc, including its middle row.
func (p *painter) dome(cx, cy, radius int, m material.Material) {
	tmp := pixel.New(2*radius+1, 2*radius+1)
	ShadeCircle(tmp, radius, radius, radius, p.ramp(m), p.st.ShadingMethod, p.st.LightDirection)
	p.stamp(tmp, cx-radius, cy-radius, radius+1)
}

// stamp copies the opaque pixels of src's first rows onto the sprite at
// (x0, y0).
func (p *painter) stamp(src *pixel.Buffer, x0, y0, rows int) {
	for y := 0; y < min(rows, src.Height); y++ {
		for x := 0; x < src.Width; x++ {
			if c, ok := src.ColorAt(x, y); ok {
				p.buf.SetColor(x0+x, y0+y, c)
			}
		}
	}
}

func (p *painter) character(pm *ProportionManager, o Outfit, class string, eq map[string]style.Equipment) {
	for _, side := range []Side{Left, Right} {
		p.fill(pm.LegBox(side), o.Legs)
	}
	torso := pm.TorsoBox()
	p.fill(torso, o.Torso)
	for _, side := range []Side{Left, Right} {
		p.fill(pm.ArmBox(side), o.Arms)
	}

	head := pm.HeadBox()
	radius := min(head.W, head.H) / 2
	cx, cy := head.X+head.W/2, head.Y+radius
	p.disc(cx, cy, radius, material.Skin)
	if eq["helmet"].Present && class == ClassWarrior && radius >= 2 {
		p.dome(cx, cy-1, radius-1, material.Metal)
		p.fill(pixel.Rect{X: cx - radius, Y: cy - 1, W: 2*radius + 1, H: 1}, material.Metal)
	}
	if eye := max(radius/3, 1); radius >= 3 {
		p.buf.SetColor(cx-eye, cy, p.st.OutlineColor)
		p.buf.SetColor(cx+eye, cy, p.st.OutlineColor)
	}
	p.lit = append(p.lit, pixel.Rect{X: cx - radius - 1, Y: cy - radius - 1, W: 2*radius + 3, H: 2*radius + 3}, torso)

	if eq["shield"].Present {
		box := pm.EquipmentBox(SlotShield)
		p.shield(box)
		p.lit = append(p.lit, box)
	}
	if w := eq["weapon"]; w.Present {
		box := pm.EquipmentBox(SlotWeapon)
		if w.Type == WeaponStaff {
			p.staff(box)
		} else {
			p.sword(box)
		}
		p.lit = append(p.lit, box)
	}
}

// sword draws a blade over a crossguard and grip inside box.
func (p *painter) sword(box pixel.Rect) {
	bladeH := max(box.H*2/3, 1)
	p.fill(pixel.Rect{X: box.X, Y: box.Y, W: box.W, H: bladeH}, material.Metal)
	guardY := box.Y + bladeH
	p.fill(pixel.Rect{X: box.X - 1, Y: guardY, W: box.W + 2, H: 1}, material.Wood)
	gripW := max(box.W/2, 1)
	p.fill(pixel.Rect{X: box.X + (box.W-gripW)/2, Y: guardY + 1, W: gripW, H: max(box.Y+box.H-guardY-1, 1)}, material.Wood)
}

// staff draws a wooden shaft topped by a glowing orb.
func (p *painter) staff(box pixel.Rect) {
	radius := max(box.W/2, 1)
	cx := box.X + box.W/2
	shaftW := max(box.W/3, 1)
	p.fill(pixel.Rect{X: cx - shaftW/2, Y: box.Y + radius, W: shaftW, H: max(box.H-radius, 1)}, material.Wood)
	p.disc(cx, box.Y+radius, radius, material.Glow)
}

// shield draws a round shield with a metal boss.
func (p *painter) shield(box pixel.Rect) {
	radius := max(min(box.W, box.H)/2, 1)
	cx, cy := box.X+box.W/2, box.Y+box.H/2
	p.disc(cx, cy, radius, material.Wood)
	if radius >= 3 {
		p.disc(cx, cy, radius/3, material.Metal)
	}
}

// potion draws a round flask with a neck and cork.
func (p *painter) potion(box pixel.Rect) {
	radius := max(min(box.W, box.H*2/3)/2, 1)
	cx, cy := box.X+box.W/2, box.Y+box.H-radius-1
	p.disc(cx, cy, radius, material.Glow)
	neckW := max(radius*2/3, 1)
	neckTop := max(cy-radius-radius, box.Y+1)
	p.fill(pixel.Rect{X: cx - neckW/2, Y: neckTop, W: neckW, H: cy - radius - neckTop + 1}, material.Metal)
	p.fill(pixel.Rect{X: cx - neckW/2, Y: neckTop - 1, W: neckW, H: 1}, material.Wood)
}

// item draws a standalone item centered in the padded canvas.
func (p *painter) item(name string) {
	pad := max(p.st.OutlineThickness, 0) + 1
	canvas := pixel.Rect{X: pad, Y: pad, W: p.buf.Width - 2*pad, H: p.buf.Height - 2*pad}
	switch name {
	case ItemSword:
		w := max(canvas.W/5, 2)
		p.sword(pixel.Rect{X: canvas.X + (canvas.W-w)/2, Y: canvas.Y, W: w, H: canvas.H})
	case ItemShield:
		p.shield(canvas)
	case ItemPotion:
		p.potion(canvas)
	}
	p.lit = append(p.lit, canvas)
}
