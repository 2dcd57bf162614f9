package img2glyph

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/wbrown/img2glyph/imageutil"
)

// QuantizeTints reduces a tile tint grid to at most k distinct colors
// by k-means clustering over the observed tints, then snapping each
// tile to its nearest cluster center by Lab distance. Tints are
// returned unchanged when they already fit within k colors or when
// clustering fails.
//
// k-means initialization is randomized, so quantized output is not
// covered by the byte-for-byte determinism guarantee of the rest of
// the pipeline.
func QuantizeTints(tints [][]imageutil.RGB, k int) [][]imageutil.RGB {
	if k <= 0 {
		return tints
	}

	distinct := make(map[imageutil.RGB]struct{})
	var obs clusters.Observations
	for _, row := range tints {
		for _, c := range row {
			if _, seen := distinct[c]; seen {
				continue
			}
			distinct[c] = struct{}{}
			obs = append(obs, clusters.Coordinates{
				float64(c.R) / 255.0,
				float64(c.G) / 255.0,
				float64(c.B) / 255.0,
			})
		}
	}
	if len(distinct) <= k {
		return tints
	}

	km := kmeans.New()
	result, err := km.Partition(obs, k)
	if err != nil {
		return tints
	}

	palette := make([]colorful.Color, 0, len(result))
	for _, cl := range result {
		center := cl.Center
		palette = append(palette, colorful.Color{
			R: center[0], G: center[1], B: center[2],
		})
	}

	// Cache the snap per distinct input color; tint grids repeat
	// colors heavily on flat regions.
	snapped := make(map[imageutil.RGB]imageutil.RGB, len(distinct))
	out := make([][]imageutil.RGB, len(tints))
	for ty, row := range tints {
		out[ty] = make([]imageutil.RGB, len(row))
		for tx, c := range row {
			q, ok := snapped[c]
			if !ok {
				q = nearestPaletteColor(c, palette)
				snapped[c] = q
			}
			out[ty][tx] = q
		}
	}
	return out
}

func nearestPaletteColor(c imageutil.RGB, palette []colorful.Color) imageutil.RGB {
	target := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	best := palette[0]
	bestDist := math.MaxFloat64
	for _, p := range palette {
		d := target.DistanceLab(p)
		if d < bestDist {
			bestDist = d
			best = p
		}
	}
	r, g, b := best.Clamped().RGB255()
	return imageutil.RGB{R: r, G: g, B: b}
}
