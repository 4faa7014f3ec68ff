// Package pkg provides the core libraries for spritestyle.
//
// # Overview
//
// Spritestyle extracts a visual style from reference pixel-art sprites and
// generates new characters and items that follow it. The pkg directory is
// organized into three areas:
//
//  1. Domain logic: [pixel], [colorspace], [material], [style], [analysis],
//     [generate], [qa], [variation], [rng]
//  2. Infrastructure: [cache], [storage], [io], [httputil], [observability],
//     [errors], [buildinfo]
//  3. Orchestration: [pipeline] and [report]
//
// # Architecture
//
// The data flow through spritestyle:
//
//	Reference sprites (PNG, WebP, BMP, TGA, URLs)
//	         ↓
//	    [analysis] (palette, outline, shading, proportions)
//	         ↓
//	    [style] config (JSON or TOML)
//	         ↓
//	    [generate] (layered character or item drawing)
//	         ↓
//	    [qa] report  +  [variation] variants
//	         ↓
//	    PNG/WebP sprites, DOT/SVG style graphs
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	ref, _ := io.LoadImage("knight.png")
//	result, err := runner.Execute(ctx, []*pixel.Buffer{ref}, pipeline.Options{
//	    Class:      "mage",
//	    Variations: 4,
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("mage.png", result.SpriteData, 0o644)
//
// # Determinism
//
// Every random choice draws from an [rng.Rand] seeded by the caller, so the
// same style, descriptor and seed always produce the same pixels. Variants
// use independent streams derived from the base seed.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/analysis/... # Specific package
//	go test -run Example       # Examples only
package pkg
