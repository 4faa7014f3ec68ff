package analysis

import (
	"math"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// DefaultRegionThreshold is the RGB distance under which a neighbour joins a
// growing region.
const DefaultRegionThreshold = 40.0

// Body region names.
const (
	RegionHead     = "head"
	RegionTorso    = "torso"
	RegionLeftArm  = "leftArm"
	RegionRightArm = "rightArm"
	RegionLeftLeg  = "leftLeg"
	RegionRightLeg = "rightLeg"
)

// Proportion keys stored in a style config.
const (
	ProportionHead  = "head"
	ProportionTorso = "torso"
	ProportionArms  = "arms"
	ProportionLegs  = "legs"
)

// Fallback measurements used when a region is missing.
const (
	DefaultHeadSize    = 8
	DefaultTorsoWidth  = 12
	DefaultTorsoHeight = 16
	DefaultLimbLength  = 12
	DefaultArmWidth    = 4
	DefaultLegWidth    = 6
)

// Regions holds the point sets produced by segmentation, keyed by region name.
type Regions map[string][]pixel.Point

// seed positions as fractions of width and height.
var regionSeeds = []struct {
	name string
	fx   float64
	fy   float64
}{
	{RegionHead, 0.5, 0.2},
	{RegionTorso, 0.5, 0.5},
	{RegionLeftArm, 0.25, 0.4},
	{RegionRightArm, 0.75, 0.4},
	{RegionLeftLeg, 0.4, 0.7},
	{RegionRightLeg, 0.6, 0.7},
}

// EdgeMap returns the Sobel gradient magnitude of the luminance image.
// Transparent pixels count as luminance 0. The one-pixel border is left at 0.
func EdgeMap(buf *pixel.Buffer) []float64 {
	w, h := buf.Width, buf.Height
	edges := make([]float64, w*h)
	if w < 3 || h < 3 {
		return edges
	}

	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c, ok := buf.ColorAt(x, y); ok {
				lum[y*w+x] = colorspace.Luminance(c)
			}
		}
	}

	at := func(x, y int) float64 { return lum[y*w+x] }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			edges[y*w+x] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return edges
}

// GrowRegion collects the 4-connected pixels reachable from seed whose color
// is within threshold of the seed color. It uses an explicit FIFO queue.
// A transparent or out-of-range seed yields no points.
func GrowRegion(buf *pixel.Buffer, seed pixel.Point, threshold float64) []pixel.Point {
	seedColor, ok := buf.ColorAt(seed.X, seed.Y)
	if !ok {
		return nil
	}

	visited := make([]bool, buf.Width*buf.Height)
	visited[seed.Y*buf.Width+seed.X] = true
	queue := []pixel.Point{seed}
	var region []pixel.Point

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		region = append(region, p)

		for _, n := range [4]pixel.Point{{X: p.X - 1, Y: p.Y}, {X: p.X + 1, Y: p.Y}, {X: p.X, Y: p.Y - 1}, {X: p.X, Y: p.Y + 1}} {
			if !buf.InBounds(n.X, n.Y) || visited[n.Y*buf.Width+n.X] {
				continue
			}
			visited[n.Y*buf.Width+n.X] = true
			c, ok := buf.ColorAt(n.X, n.Y)
			if !ok || colorspace.Distance(c, seedColor) > threshold {
				continue
			}
			queue = append(queue, n)
		}
	}
	return region
}

// Segment grows one region per body part from fixed fractional seeds.
// Parts whose seed lands on a transparent pixel are absent from the result.
func Segment(buf *pixel.Buffer, threshold float64) Regions {
	if threshold <= 0 {
		threshold = DefaultRegionThreshold
	}
	regions := make(Regions)
	for _, s := range regionSeeds {
		seed := pixel.Point{
			X: int(float64(buf.Width) * s.fx),
			Y: int(float64(buf.Height) * s.fy),
		}
		if pts := GrowRegion(buf, seed, threshold); len(pts) > 0 {
			regions[s.name] = pts
		}
	}
	return regions
}

// Bounds returns the bounding box of a point set.
func Bounds(points []pixel.Point) (pixel.Rect, bool) {
	if len(points) == 0 {
		return pixel.Rect{}, false
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X), max(maxY, p.Y)
	}
	return pixel.Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, true
}

// Measurements are pixel sizes derived from segmented regions.
type Measurements struct {
	HeadSize    int         `json:"headSize"`
	TorsoWidth  int         `json:"torsoWidth"`
	TorsoHeight int         `json:"torsoHeight"`
	ArmLength   int         `json:"armLength"`
	ArmWidth    int         `json:"armWidth"`
	LegLength   int         `json:"legLength"`
	LegWidth    int         `json:"legWidth"`
	Center      pixel.Point `json:"center"`
}

// Measure derives sizes from regions. Missing regions fall back to the
// Default* constants, and the center falls back to the buffer middle, so
// measurement never fails.
func Measure(regions Regions, width, height int) Measurements {
	m := Measurements{
		HeadSize:    DefaultHeadSize,
		TorsoWidth:  DefaultTorsoWidth,
		TorsoHeight: DefaultTorsoHeight,
		ArmLength:   DefaultLimbLength,
		ArmWidth:    DefaultArmWidth,
		LegLength:   DefaultLimbLength,
		LegWidth:    DefaultLegWidth,
		Center:      pixel.Point{X: width / 2, Y: height / 2},
	}
	if r, ok := Bounds(regions[RegionHead]); ok {
		m.HeadSize = max(r.W, r.H)
	}
	if r, ok := Bounds(regions[RegionTorso]); ok {
		m.TorsoWidth, m.TorsoHeight = r.W, r.H
		m.Center = r.Center()
	}
	if r, ok := firstBounds(regions, RegionLeftArm, RegionRightArm); ok {
		m.ArmLength, m.ArmWidth = r.H, r.W
	}
	if r, ok := firstBounds(regions, RegionLeftLeg, RegionRightLeg); ok {
		m.LegLength, m.LegWidth = r.H, r.W
	}
	return m
}

func firstBounds(regions Regions, names ...string) (pixel.Rect, bool) {
	for _, n := range names {
		if r, ok := Bounds(regions[n]); ok {
			return r, true
		}
	}
	return pixel.Rect{}, false
}

// Proportions expresses measurements as percentages of total height.
// A non-positive height yields an empty map.
func Proportions(m Measurements, height int) map[string]float64 {
	if height <= 0 {
		return map[string]float64{}
	}
	pct := func(v int) float64 { return round2(float64(v) / float64(height) * 100) }
	return map[string]float64{
		ProportionHead:  pct(m.HeadSize),
		ProportionTorso: pct(m.TorsoHeight),
		ProportionArms:  pct(m.ArmLength),
		ProportionLegs:  pct(m.LegLength),
	}
}

// Equipment slots.
const (
	SlotArmor  = "armor"
	SlotHelmet = "helmet"
	SlotWeapon = "weapon"
)

// DefaultWeaponType is reported for any detected weapon.
const DefaultWeaponType = "sword"

// DetectEquipment flags armor when a torso region exists, a helmet when a
// head region exists, and a weapon when any opaque pixel sits in the right
// quarter of the buffer.
func DetectEquipment(buf *pixel.Buffer, regions Regions) map[string]style.Equipment {
	eq := map[string]style.Equipment{
		SlotArmor:  {Present: len(regions[RegionTorso]) > 0},
		SlotHelmet: {Present: len(regions[RegionHead]) > 0},
		SlotWeapon: {},
	}
	for y := 0; y < buf.Height; y++ {
		for x := buf.Width * 3 / 4; x < buf.Width; x++ {
			if buf.Opaque(x, y) {
				eq[SlotWeapon] = style.Equipment{Present: true, Type: DefaultWeaponType}
				return eq
			}
		}
	}
	return eq
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
