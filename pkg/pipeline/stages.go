package pipeline

import (
	"bytes"
	"encoding/binary"

	"github.com/matzehuels/spritestyle/pkg/analysis"
	"github.com/matzehuels/spritestyle/pkg/cache"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/generate"
	spriteio "github.com/matzehuels/spritestyle/pkg/io"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/qa"
	"github.com/matzehuels/spritestyle/pkg/rng"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// Analyze extracts a style config from reference sprites without caching.
func Analyze(refs []*pixel.Buffer, opts Options) (*style.Config, error) {
	if len(refs) == 0 {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, analysis.ErrNoReferences, "analyze")
	}
	return analysis.AnalyzeMultiple(refs, analysis.Options{
		MaxColors: opts.MaxColors,
		Merge:     analysis.MergeStrategy(opts.Merge),
		Logger:    opts.Logger,
	})
}

// Generate draws the sprite described by opts without caching. The random
// stream is seeded from opts.Seed, so equal options give equal sprites.
func Generate(cfg *style.Config, opts Options) (*pixel.Buffer, error) {
	g := generate.NewGenerator(opts.Palettes, opts.Logger)
	return g.Generate(cfg, opts.Descriptor(), rng.New(opts.Seed))
}

// Validate runs the QA checks without caching.
func Validate(buf *pixel.Buffer, cfg *style.Config, opts Options) *qa.Report {
	v := qa.NewValidator(opts.Logger)
	v.MaxColors = opts.ValidateColors
	return v.Validate(buf, opts.Guide(cfg))
}

// Encode serializes a sprite in the given format.
func Encode(buf *pixel.Buffer, format string) ([]byte, error) {
	var out bytes.Buffer
	if err := spriteio.EncodeSprite(&out, buf, format); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// HashBuffers returns a content hash over the size and pixels of each
// buffer, in order.
func HashBuffers(bufs ...*pixel.Buffer) string {
	var data []byte
	for _, b := range bufs {
		if b == nil {
			continue
		}
		data = binary.BigEndian.AppendUint32(data, uint32(b.Width))
		data = binary.BigEndian.AppendUint32(data, uint32(b.Height))
		data = append(data, b.Pix...)
	}
	return cache.Hash(data)
}
