package generate

import (
	"fmt"
	"math"

	"github.com/matzehuels/spritestyle/pkg/pixel"
)

// Body ratios as fractions of total height.
const (
	HeadRatio  = 0.33
	TorsoRatio = 0.25
	ArmRatio   = 0.20
	LegRatio   = 0.20
)

// Widths as fractions of each region's own length.
const (
	HeadWidth  = 0.9
	TorsoWidth = 0.8
	ArmWidth   = 0.45
	LegWidth   = 0.55
)

// Overlaps between adjacent regions, in pixels.
const (
	TorsoOverlap = 2 // torso reaches up into the head
	ArmOverlap   = 2 // arms reach sideways into the torso
	LegOverlap   = 3 // legs start inside the torso
)

// EquipmentScale enlarges equipment boxes about their center.
const EquipmentScale = 1.2

// Proportion bands in percent of total height.
var (
	HeadBand  = Band{30, 36}
	TorsoBand = Band{22, 28}
	LimbBand  = Band{18, 22}
	SumBand   = Band{95, 100}
)

// Band is an inclusive percentage range.
type Band struct{ Min, Max float64 }

// Contains reports whether v lies in the band.
func (b Band) Contains(v float64) bool { return v >= b.Min && v <= b.Max }

// Side selects the left or right limb.
type Side int

const (
	Left Side = iota
	Right
)

// Equipment slots with a layout box.
const (
	SlotWeapon = "weapon"
	SlotShield = "shield"
	SlotHelmet = "helmet"
)

// Span is a vertical extent in fractional pixels.
type Span struct {
	Top    float64
	Length float64
}

// Bottom returns Top+Length.
func (s Span) Bottom() float64 { return s.Top + s.Length }

// ProportionManager lays out body regions for a sprite of a given size.
// Extents are kept as floats so the manager's own layout always passes its
// own validation; boxes are rounded only when converted to pixel rects.
type ProportionManager struct {
	Width  float64
	Height float64
	Origin pixel.Point
}

// NewProportionManager creates a layout for a width×height figure.
func NewProportionManager(width, height int) *ProportionManager {
	return &ProportionManager{Width: float64(width), Height: float64(height)}
}

// Layout returns the manager used for a sprite of the given size whose
// silhouette is surrounded by an outline of the given thickness. The figure is
// inset by the thickness on every side so the outline is never clipped.
func Layout(width, height, outline int) *ProportionManager {
	pad := max(outline, 0)
	pm := NewProportionManager(width-2*pad, height-2*pad)
	pm.Origin = pixel.Point{X: pad, Y: pad}
	return pm
}

// HeadSpan is [0, 0.33H).
func (pm *ProportionManager) HeadSpan() Span {
	return Span{0, HeadRatio * pm.Height}
}

// TorsoSpan follows the head, shifted up by TorsoOverlap.
func (pm *ProportionManager) TorsoSpan() Span {
	return Span{HeadRatio*pm.Height - TorsoOverlap, TorsoRatio * pm.Height}
}

// ArmSpan starts one pixel below the top of the torso.
func (pm *ProportionManager) ArmSpan() Span {
	return Span{pm.TorsoSpan().Top + 1, ArmRatio * pm.Height}
}

// LegSpan starts LegOverlap pixels above the bottom of the torso.
func (pm *ProportionManager) LegSpan() Span {
	return Span{pm.TorsoSpan().Bottom() - LegOverlap, LegRatio * pm.Height}
}

func (pm *ProportionManager) rect(x, y, w, h float64) pixel.Rect {
	return pixel.Rect{
		X: int(math.Round(x)) + pm.Origin.X,
		Y: int(math.Round(y)) + pm.Origin.Y,
		W: max(int(math.Round(w)), 1),
		H: max(int(math.Round(h)), 1),
	}
}

func (pm *ProportionManager) centerX() float64 { return pm.Width / 2 }

func (pm *ProportionManager) torsoX() (x, w float64) {
	s := pm.TorsoSpan()
	w = TorsoWidth * s.Length
	return pm.centerX() - w/2, w
}

// HeadBox returns the head bounds.
func (pm *ProportionManager) HeadBox() pixel.Rect {
	s := pm.HeadSpan()
	w := HeadWidth * s.Length
	return pm.rect(pm.centerX()-w/2, s.Top, w, s.Length)
}

// TorsoBox returns the torso bounds.
func (pm *ProportionManager) TorsoBox() pixel.Rect {
	s := pm.TorsoSpan()
	x, w := pm.torsoX()
	return pm.rect(x, s.Top, w, s.Length)
}

// ArmBox returns the bounds of one arm, hanging beside the torso. Arms are
// placed against the rounded torso box so they cover exactly ArmOverlap of
// its columns.
func (pm *ProportionManager) ArmBox(side Side) pixel.Rect {
	s := pm.ArmSpan()
	torso := pm.TorsoBox()
	arm := pm.rect(0, s.Top, ArmWidth*s.Length, s.Length)
	arm.X = torso.X - arm.W + ArmOverlap
	if side == Right {
		arm.X = torso.X + torso.W - ArmOverlap
	}
	return arm
}

// LegBox returns the bounds of one leg, below the torso.
func (pm *ProportionManager) LegBox(side Side) pixel.Rect {
	s := pm.LegSpan()
	w := LegWidth * s.Length
	x := pm.centerX() - w
	if side == Right {
		x = pm.centerX()
	}
	return pm.rect(x, s.Top, w, s.Length)
}

// EquipmentBox returns the oversized bounds for an equipment slot, or an
// empty rect for an unknown slot. Weapons are held in the right hand, shields
// on the left arm and helmets cover the upper head.
func (pm *ProportionManager) EquipmentBox(slot string) pixel.Rect {
	arm := pm.ArmSpan()
	aw := ArmWidth * arm.Length
	tx, tw := pm.torsoX()

	var x, y, w, h float64
	switch slot {
	case SlotWeapon:
		x = tx + tw - ArmOverlap + aw
		y = arm.Top - arm.Length/2
		w = max(aw/2, 2)
		h = arm.Length * 1.5
	case SlotShield:
		w = aw * 1.2
		x = tx - aw + ArmOverlap - w*0.6
		y = arm.Top + arm.Length*0.2
		h = arm.Length * 0.6
	case SlotHelmet:
		head := pm.HeadSpan()
		w = HeadWidth * head.Length
		x = pm.centerX() - w/2
		y = head.Top
		h = head.Length / 2
	default:
		return pixel.Rect{}
	}

	cx, cy := x+w/2, y+h/2
	w, h = w*EquipmentScale, h*EquipmentScale
	return pm.rect(cx-w/2, cy-h/2, w, h)
}

// FigureBounds returns the union of the head, torso and leg boxes.
func (pm *ProportionManager) FigureBounds() pixel.Rect {
	head, torso := pm.HeadBox(), pm.TorsoBox()
	legL, legR := pm.LegBox(Left), pm.LegBox(Right)
	x0 := min(head.X, torso.X, legL.X)
	y0 := min(head.Y, torso.Y)
	x1 := max(head.X+head.W, torso.X+torso.W, legR.X+legR.W)
	y1 := max(legL.Y+legL.H, legR.Y+legR.H, torso.Y+torso.H)
	return pixel.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// ProportionReport is the outcome of a proportion check.
type ProportionReport struct {
	Valid  bool               `json:"valid"`
	Issues []string           `json:"issues"`
	Ratios map[string]float64 `json:"ratios"`
}

// ValidateProportions recomputes the manager's ratios as percentages of its
// height and checks them against the bands.
func (pm *ProportionManager) ValidateProportions() ProportionReport {
	if pm.Height <= 0 {
		return ProportionReport{Issues: []string{"height must be positive"}, Ratios: map[string]float64{}}
	}
	pct := func(s Span) float64 { return s.Length / pm.Height * 100 }
	return ValidateRatios(pct(pm.HeadSpan()), pct(pm.TorsoSpan()), pct(pm.ArmSpan()), pct(pm.LegSpan()))
}

// ValidateRatios checks percentages against the head, torso, limb and sum
// bands.
func ValidateRatios(head, torso, arm, leg float64) ProportionReport {
	r := ProportionReport{
		Issues: []string{},
		Ratios: map[string]float64{"head": head, "torso": torso, "arms": arm, "legs": leg},
	}
	check := func(name string, v float64, b Band) {
		if !b.Contains(v) {
			r.Issues = append(r.Issues, fmt.Sprintf("%s is %.1f%% of height, want %.0f-%.0f%%", name, v, b.Min, b.Max))
		}
	}
	check("head", head, HeadBand)
	check("torso", torso, TorsoBand)
	check("arms", arm, LimbBand)
	check("legs", leg, LimbBand)
	if sum := head + torso + arm + leg; !SumBand.Contains(sum) {
		r.Issues = append(r.Issues, fmt.Sprintf("proportions sum to %.1f%%, want %.0f-%.0f%%", sum, SumBand.Min, SumBand.Max))
	}
	r.Valid = len(r.Issues) == 0
	return r
}

// ValidateMeasured checks proportions keyed head, torso, arms and legs, as
// stored in a style config.
func ValidateMeasured(p map[string]float64) ProportionReport {
	return ValidateRatios(p["head"], p["torso"], p["arms"], p["legs"])
}
