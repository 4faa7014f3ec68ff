package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritestyle/pkg/cache"
	spriteio "github.com/matzehuels/spritestyle/pkg/io"
	"github.com/matzehuels/spritestyle/pkg/observability"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/qa"
	"github.com/matzehuels/spritestyle/pkg/style"
	"github.com/matzehuels/spritestyle/pkg/variation"
)

// Cache key types reported to observability hooks.
const (
	keyTypeAnalysis = "analysis"
	keyTypeSprite   = "sprite"
	keyTypeReport   = "report"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete analyze → generate → validate → vary pipeline
// with caching. A negative opts.Variations skips the vary stage.
func (r *Runner) Execute(ctx context.Context, refs []*pixel.Buffer, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Analyze
	analyzeStart := time.Now()
	cfg, analyzeHit, err := r.AnalyzeWithCacheInfo(ctx, refs, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Style = cfg
	result.StyleHash = cfg.Hash()
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.Stats.References = len(refs)
	result.Stats.ColorCount = cfg.Style.ColorCount
	result.CacheInfo.AnalyzeHit = analyzeHit

	r.Logger.Info("analyzed references",
		"references", len(refs),
		"colors", cfg.Style.ColorCount,
		"shading", cfg.Style.ShadingMethod,
		"duration", result.Stats.AnalyzeTime)

	// Stage 2: Generate
	generateStart := time.Now()
	sprite, data, generateHit, err := r.GenerateWithCacheInfo(ctx, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Sprite = sprite
	result.SpriteData = data
	result.Stats.GenerateTime = time.Since(generateStart)
	result.CacheInfo.GenerateHit = generateHit

	r.Logger.Info("generated sprite",
		"sprite", opts.String(),
		"bytes", len(data),
		"duration", result.Stats.GenerateTime)

	// Stage 3: Validate
	validateStart := time.Now()
	report, validateHit, err := r.ValidateWithCacheInfo(ctx, sprite, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	result.Report = report
	result.Stats.ValidateTime = time.Since(validateStart)
	result.Stats.Issues = len(report.Issues)
	result.CacheInfo.ValidateHit = validateHit

	r.Logger.Info("validated sprite",
		"valid", report.Valid,
		"issues", len(report.Issues),
		"duration", result.Stats.ValidateTime)

	// Stage 4: Vary
	if opts.Variations > 0 {
		varyStart := time.Now()
		variants, err := r.Vary(ctx, sprite, opts)
		if err != nil {
			return nil, fmt.Errorf("vary: %w", err)
		}
		result.Variants = variants
		result.Stats.VaryTime = time.Since(varyStart)

		r.Logger.Info("generated variations",
			"count", len(variants),
			"duration", result.Stats.VaryTime)
	}

	return result, nil
}

// AnalyzeWithCacheInfo extracts a style config with caching and returns
// cache hit info. The cache key covers the pixels of every reference, in
// order, and the analysis options.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, refs []*pixel.Buffer, opts Options) (*style.Config, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, len(refs))
	start := time.Now()

	cacheKey := r.Keyer.AnalysisKey(HashBuffers(refs...), opts.AnalysisKeyOpts())

	// Try cache first (unless refresh requested)
	if data, hit := r.lookup(ctx, keyTypeAnalysis, cacheKey, opts.Refresh); hit {
		cfg, err := style.ReadJSON(bytes.NewReader(data))
		if err == nil {
			hooks.OnAnalyzeComplete(ctx, cfg.Style.ColorCount, time.Since(start), nil)
			return cfg, true, nil // Cache hit
		}
		r.Logger.Debug("discarding unreadable cached style", "error", err)
	}

	cfg, err := Analyze(refs, opts)
	if err != nil {
		hooks.OnAnalyzeComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}

	// Cache the result
	var buf bytes.Buffer
	if err := style.WriteJSON(cfg, &buf); err == nil {
		r.store(ctx, keyTypeAnalysis, cacheKey, buf.Bytes(), cache.TTLAnalysis)
	}

	hooks.OnAnalyzeComplete(ctx, cfg.Style.ColorCount, time.Since(start), nil)
	return cfg, false, nil // Cache miss
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, refs []*pixel.Buffer, opts Options) (*style.Config, error) {
	cfg, _, err := r.AnalyzeWithCacheInfo(ctx, refs, opts)
	return cfg, err
}

// GenerateWithCacheInfo draws a sprite with caching and returns it both
// decoded and encoded in opts.Format, plus cache hit info. A nil cfg means
// style.Default().
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, cfg *style.Config, opts Options) (*pixel.Buffer, []byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, nil, false, err
	}
	if cfg == nil {
		cfg = style.Default()
	}

	hooks := observability.Pipeline()
	what := opts.Class
	if opts.IsItem() {
		what = opts.Item
	}
	hooks.OnGenerateStart(ctx, what, opts.Width, opts.Height)
	start := time.Now()

	cacheKey := r.Keyer.SpriteKey(cfg.Hash(), opts.SpriteKeyOpts())

	// Custom palettes are not part of the key, so they bypass cache reads.
	if data, hit := r.lookup(ctx, keyTypeSprite, cacheKey, opts.Refresh || opts.Palettes != nil); hit {
		sprite, _, err := spriteio.DecodeImage(bytes.NewReader(data))
		if err == nil {
			hooks.OnGenerateComplete(ctx, what, time.Since(start), nil)
			return sprite, data, true, nil // Cache hit
		}
		r.Logger.Debug("discarding unreadable cached sprite", "error", err)
	}

	sprite, err := Generate(cfg, opts)
	if err != nil {
		hooks.OnGenerateComplete(ctx, what, time.Since(start), err)
		return nil, nil, false, err
	}
	data, err := Encode(sprite, opts.Format)
	if err != nil {
		hooks.OnGenerateComplete(ctx, what, time.Since(start), err)
		return nil, nil, false, err
	}

	if opts.Palettes == nil {
		r.store(ctx, keyTypeSprite, cacheKey, data, cache.TTLSprite)
	}

	hooks.OnGenerateComplete(ctx, what, time.Since(start), nil)
	return sprite, data, false, nil // Cache miss
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and
// returns only the decoded sprite.
func (r *Runner) Generate(ctx context.Context, cfg *style.Config, opts Options) (*pixel.Buffer, error) {
	sprite, _, _, err := r.GenerateWithCacheInfo(ctx, cfg, opts)
	return sprite, err
}

// ValidateWithCacheInfo runs the QA checks with caching and returns cache
// hit info. A cached report keeps the ID it was first issued with.
func (r *Runner) ValidateWithCacheInfo(ctx context.Context, sprite *pixel.Buffer, cfg *style.Config, opts Options) (*qa.Report, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, false, err
	}
	if cfg == nil {
		cfg = style.Default()
	}

	hooks := observability.Pipeline()
	start := time.Now()

	cacheKey := r.Keyer.ReportKey(HashBuffers(sprite), opts.ReportKeyOpts(cfg.Hash()))

	if data, hit := r.lookup(ctx, keyTypeReport, cacheKey, opts.Refresh); hit {
		var report qa.Report
		if err := json.Unmarshal(data, &report); err == nil {
			hooks.OnValidateComplete(ctx, report.Valid, len(report.Issues), time.Since(start))
			return &report, true, nil // Cache hit
		}
	}

	report := Validate(sprite, cfg, opts)

	if data, err := json.Marshal(report); err == nil {
		r.store(ctx, keyTypeReport, cacheKey, data, cache.TTLReport)
	}

	hooks.OnValidateComplete(ctx, report.Valid, len(report.Issues), time.Since(start))
	return report, false, nil // Cache miss
}

// Validate is a convenience wrapper that calls ValidateWithCacheInfo and discards the cache hit info.
func (r *Runner) Validate(ctx context.Context, sprite *pixel.Buffer, cfg *style.Config, opts Options) (*qa.Report, error) {
	report, _, err := r.ValidateWithCacheInfo(ctx, sprite, cfg, opts)
	return report, err
}

// Vary derives opts.Variations variants of sprite. Variants are cheap to
// recompute from the seed and are not cached. Variants whose size left the
// supported range are logged and kept.
func (r *Runner) Vary(ctx context.Context, sprite *pixel.Buffer, opts Options) ([]*pixel.Buffer, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForVary(); err != nil {
		return nil, err
	}

	start := time.Now()
	m := variation.NewManager(opts.Logger)
	variants, err := m.GenerateVariations(ctx, sprite, opts.Variations, opts.VariationConfig())
	observability.Pipeline().OnVaryComplete(ctx, len(variants), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	for i, v := range variants {
		if err := variation.ValidateVariation(v); err != nil {
			r.Logger.Warn("variant out of range", "index", i, "error", err)
		}
	}
	return variants, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads key unless skip is set, reporting the outcome to the cache
// hooks. Read errors count as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string, skip bool) ([]byte, bool) {
	if skip {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		if err != nil {
			r.Logger.Debug("cache read failed", "type", keyType, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	r.Logger.Debug("cache hit", "type", keyType)
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes key, logging failures instead of returning them.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
