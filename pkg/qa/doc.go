// Package qa checks generated sprites against the style they were generated
// from.
//
// A [Validator] re-runs the analysis primitives on a finished sprite and
// compares the results with the [style.Config] used as a guide. Five checks
// contribute to a [Report]:
//
//   - proportions: the canonical layout still satisfies the ratio bands and
//     the silhouette spans the height the layout predicts
//   - color count: the number of distinct opaque colors stays within budget
//   - outline: outline-colored pixels cover at least half of the top and
//     bottom rows of the silhouette
//   - shading: the torso shows the number of tone levels the shading method
//     produces
//   - clipping: the sprite's center pixel is opaque
//
// A failed check is not an error. [Report.Valid] is false and every issue is
// listed in plain language, both per check and in [Report.Issues].
package qa
