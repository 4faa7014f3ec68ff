// Package generate draws sprites from a style config.
//
// Generation is split into four collaborators that all read the same
// [style.Config]:
//
//   - [ProportionManager] lays out head, torso, arms, legs and equipment boxes
//     from the sprite height using fixed body ratios.
//   - The shader functions ([GeneratePalette], [ApplyCelShade],
//     [ApplyGradient]) turn one base color into a five-tone ramp and paint
//     regions with it according to a light direction.
//   - [TextureGenerator] adds per-material surface detail.
//   - [PaletteManager] holds named palettes and picks base colors.
//
// [Generator] ties them together. Every random choice is drawn from the
// [rng.Rand] passed to [Generator.Generate], so the same seed and descriptor
// always produce byte-identical pixels.
//
// [style.Config]: github.com/matzehuels/spritestyle/pkg/style.Config
// [rng.Rand]: github.com/matzehuels/spritestyle/pkg/rng.Rand
package generate
