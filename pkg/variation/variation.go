// Package variation derives reproducible variants from a base sprite.
//
// Each variant is a clone of the base with its colors jittered and its size
// rescaled by nearest-neighbour resampling. Variant i of a batch draws from
// its own generator seeded with Seed + i*1000, so a batch can be generated
// in parallel and any single variant can be regenerated on its own.
//
// Equipment and pose changes are extension points: [EquipmentStrategy] and
// [PoseStrategy] receive each variant after the built-in jitter. The default
// strategies return their input unchanged.
package variation

import (
	"context"
	"io"
	"math"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/rng"
)

// Variant size limits checked by ValidateVariation.
const (
	MinDimension = 16
	MaxDimension = 128
)

// Config controls how far variants drift from the base.
type Config struct {
	// ColorVariation scales every opaque pixel by a factor in
	// [1-ColorVariation, 1+ColorVariation], drawn per pixel.
	ColorVariation float64 `json:"colorVariation" toml:"color_variation"`
	// SizeVariation rescales the whole sprite by a factor in
	// [1-SizeVariation, 1+SizeVariation], drawn once per variant.
	SizeVariation      float64 `json:"sizeVariation" toml:"size_variation"`
	EquipmentVariation bool    `json:"equipmentVariation" toml:"equipment_variation"`
	PoseVariation      bool    `json:"poseVariation" toml:"pose_variation"`
	// Seed is the base seed of a batch.
	Seed uint32 `json:"seed" toml:"seed"`
}

// EquipmentStrategy swaps or alters equipment on a variant.
type EquipmentStrategy interface {
	VaryEquipment(buf *pixel.Buffer, r *rng.Rand) *pixel.Buffer
}

// PoseStrategy changes the pose of a variant.
type PoseStrategy interface {
	VaryPose(buf *pixel.Buffer, r *rng.Rand) *pixel.Buffer
}

// NoopEquipment leaves equipment unchanged.
type NoopEquipment struct{}

func (NoopEquipment) VaryEquipment(buf *pixel.Buffer, _ *rng.Rand) *pixel.Buffer { return buf }

// NoopPose leaves the pose unchanged.
type NoopPose struct{}

func (NoopPose) VaryPose(buf *pixel.Buffer, _ *rng.Rand) *pixel.Buffer { return buf }

// Manager produces variants.
type Manager struct {
	Equipment EquipmentStrategy
	Pose      PoseStrategy
	// Limit caps concurrent variant generation. Zero means GOMAXPROCS.
	Limit  int
	Logger *log.Logger
}

// NewManager returns a manager with no-op strategies.
func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{Equipment: NoopEquipment{}, Pose: NoopPose{}, Logger: logger}
}

// ApplyVariation returns a varied copy of base; base is not modified. Color
// jitter is drawn before the size factor, so r's sequence fixes the result.
func (m *Manager) ApplyVariation(base *pixel.Buffer, cfg Config, r *rng.Rand) *pixel.Buffer {
	out := base.Clone()
	if cfg.ColorVariation > 0 {
		out.Recolor(pixel.Rect{W: out.Width, H: out.Height}, func(_, _ int, c colorspace.Color) colorspace.Color {
			return colorspace.Scale(c, 1+r.Signed(cfg.ColorVariation))
		})
	}
	if cfg.SizeVariation > 0 {
		f := 1 + r.Signed(cfg.SizeVariation)
		w := int(math.Round(float64(out.Width) * f))
		h := int(math.Round(float64(out.Height) * f))
		out = out.Scale(w, h)
	}
	if cfg.EquipmentVariation && m.Equipment != nil {
		out = m.Equipment.VaryEquipment(out, r)
	}
	if cfg.PoseVariation && m.Pose != nil {
		out = m.Pose.VaryPose(out, r)
	}
	return out
}

// GenerateVariations returns count variants of base in index order.
// Variant i uses rng.New(cfg.Seed + i*1000).
func (m *Manager) GenerateVariations(ctx context.Context, base *pixel.Buffer, count int, cfg Config) ([]*pixel.Buffer, error) {
	if base == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "base sprite is nil")
	}
	if count <= 0 {
		return []*pixel.Buffer{}, nil
	}

	limit := m.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	out := make([]*pixel.Buffer, count)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	seeds := rng.New(cfg.Seed)
	for i := range count {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = m.ApplyVariation(base, cfg, seeds.Derive(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if m.Logger != nil {
		m.Logger.Debug("generated variations", "count", count, "seed", cfg.Seed)
	}
	return out, nil
}

// ValidateVariation checks that a variant exists and its size is within
// [MinDimension, MaxDimension] on both axes.
func ValidateVariation(buf *pixel.Buffer) error {
	if buf == nil {
		return errors.New(errors.ErrCodeInvalidInput, "variation is nil")
	}
	for _, d := range []int{buf.Width, buf.Height} {
		if d < MinDimension || d > MaxDimension {
			return errors.New(errors.ErrCodeInvalidInput, "variation size %dx%d outside %d-%d", buf.Width, buf.Height, MinDimension, MaxDimension)
		}
	}
	return nil
}
