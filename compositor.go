package img2glyph

import (
	"image"
	"runtime"
	"sync"

	"github.com/cenkalti/dominantcolor"

	"github.com/wbrown/img2glyph/imageutil"
)

// TintMode selects how a tile's tint color is sampled from the
// full-color source when colour output is enabled.
type TintMode int

const (
	// TintMean tints each glyph with the tile's mean RGB color.
	TintMean TintMode = iota

	// TintDominant tints each glyph with the tile's dominant color,
	// which keeps saturated accents that a mean would wash out.
	TintDominant
)

// CompositeOptions configures RenderTiles.
type CompositeOptions struct {
	// Color enables tinting; when false glyphs render as grayscale.
	Color bool

	// TintMode picks the tile color sampler. Ignored when Tints is set
	// or Color is false.
	TintMode TintMode

	// Tints overrides per-tile tint colors (e.g. after palette
	// quantization). Must match the selection grid dimensions.
	Tints [][]imageutil.RGB

	// Background is the canvas color before any tile is drawn.
	// The zero value is black.
	Background imageutil.RGB

	// Workers is the size of the row worker pool; <= 0 means one
	// worker per CPU.
	Workers int

	// Progress, if non-nil, is called after each completed row with
	// the running tile count. May be called from multiple goroutines.
	Progress func(done, total int)
}

// TileMeanColor computes the mean RGB color of the tile at (x0, y0)
// over the region a glyph of the given dimensions would be scored
// against, clipped at the source edges exactly like MeanAbsDiff.
func TileMeanColor(src *imageutil.RGBAImage, x0, y0, w, h int) imageutil.RGB {
	width, height := src.Width(), src.Height()
	var rSum, gSum, bSum, count int
	for j := 0; j < h; j++ {
		if y0+j >= height {
			break
		}
		for i := 0; i < w; i++ {
			if x0+i >= width {
				break
			}
			c := src.GetRGB(x0+i, y0+j)
			rSum += int(c.R)
			gSum += int(c.G)
			bSum += int(c.B)
			count++
		}
	}
	if count == 0 {
		panic("img2glyph: tile region has no samples inside the source")
	}
	return imageutil.RGB{
		R: uint8(rSum / count),
		G: uint8(gSum / count),
		B: uint8(bSum / count),
	}
}

// tileDominantColor finds the dominant color of the clipped tile region.
func tileDominantColor(src *imageutil.RGBAImage, x0, y0, w, h int) imageutil.RGB {
	width, height := src.Width(), src.Height()
	x1, y1 := x0+w, y0+h
	if x1 > width {
		x1 = width
	}
	if y1 > height {
		y1 = height
	}
	if x0 >= x1 || y0 >= y1 {
		panic("img2glyph: tile region has no samples inside the source")
	}
	c := dominantcolor.Find(src.RGBA.SubImage(image.Rect(x0, y0, x1, y1)))
	return imageutil.RGB{R: c.R, G: c.G, B: c.B}
}

// TileTints samples a tint color for every tile of the selection grid
// using the chosen mode. The sampling bounds per tile match the bounds
// the matcher scored that tile's glyph against.
func TileTints(a *GlyphAtlas, selections [][]int, src *imageutil.RGBAImage, mode TintMode) [][]imageutil.RGB {
	tints := make([][]imageutil.RGB, len(selections))
	for ty, row := range selections {
		tints[ty] = make([]imageutil.RGB, len(row))
		for tx, sel := range row {
			g := a.Glyphs[sel]
			x0, y0 := tx*a.CellWidth, ty*a.CellHeight
			switch mode {
			case TintDominant:
				tints[ty][tx] = tileDominantColor(src, x0, y0, g.Width, g.Height)
			default:
				tints[ty][tx] = TileMeanColor(src, x0, y0, g.Width, g.Height)
			}
		}
	}
	return tints
}

// RenderTiles composites the selected glyphs into a new canvas of the
// source's dimensions. Every tile draws into its own exclusive
// CellWidth x CellHeight rectangle (clipped at the image edges), so
// rows render concurrently without locking and the result is identical
// for any worker count.
//
// With colour enabled each glyph is tinted multiplicatively: the
// glyph's luminance acts as a mask over the tile's flat tint color, so
// bright glyph pixels carry the tint and the background stays
// suppressed. With colour disabled the luminance maps straight to gray.
func RenderTiles(a *GlyphAtlas, selections [][]int, src *imageutil.RGBAImage, opts CompositeOptions) *imageutil.RGBAImage {
	width, height := src.Width(), src.Height()
	target := imageutil.CreateSolidImage(width, height, opts.Background)

	tilesY := len(selections)
	if tilesY == 0 {
		return target
	}
	tilesX := len(selections[0])

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > tilesY {
		workers = tilesY
	}

	total := tilesX * tilesY
	var done int
	var doneMu sync.Mutex
	rows := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ty := range rows {
				for tx := 0; tx < tilesX; tx++ {
					g := a.Glyphs[selections[ty][tx]]
					x0, y0 := tx*a.CellWidth, ty*a.CellHeight
					if opts.Color {
						var tint imageutil.RGB
						if opts.Tints != nil {
							tint = opts.Tints[ty][tx]
						} else if opts.TintMode == TintDominant {
							tint = tileDominantColor(src, x0, y0, g.Width, g.Height)
						} else {
							tint = TileMeanColor(src, x0, y0, g.Width, g.Height)
						}
						drawGlyphTinted(target, a, g, x0, y0, tint)
					} else {
						drawGlyphGray(target, a, g, x0, y0)
					}
				}
				if opts.Progress != nil {
					doneMu.Lock()
					done += tilesX
					d := done
					doneMu.Unlock()
					opts.Progress(d, total)
				}
			}
		}()
	}
	for ty := 0; ty < tilesY; ty++ {
		rows <- ty
	}
	close(rows)
	wg.Wait()

	return target
}

// drawExtent clips a tile's draw rectangle to the cell size and the
// target bounds. Glyph bitmaps may be larger than the cell; drawing
// past the cell would invade a neighboring tile's rectangle.
func drawExtent(a *GlyphAtlas, target *imageutil.RGBAImage, g *GlyphBitmap, x0, y0 int) (int, int) {
	w := a.CellWidth
	if g.Width < w {
		w = g.Width
	}
	if x0+w > target.Width() {
		w = target.Width() - x0
	}
	h := a.CellHeight
	if g.Height < h {
		h = g.Height
	}
	if y0+h > target.Height() {
		h = target.Height() - y0
	}
	return w, h
}

func drawGlyphGray(target *imageutil.RGBAImage, a *GlyphAtlas, g *GlyphBitmap, x0, y0 int) {
	w, h := drawExtent(a, target, g, x0, y0)
	for j := 0; j < h; j++ {
		row := j * g.Width
		for i := 0; i < w; i++ {
			v := uint8(g.Pix[row+i]*255 + 0.5)
			target.SetRGB(x0+i, y0+j, imageutil.RGB{R: v, G: v, B: v})
		}
	}
}

func drawGlyphTinted(target *imageutil.RGBAImage, a *GlyphAtlas, g *GlyphBitmap, x0, y0 int, tint imageutil.RGB) {
	w, h := drawExtent(a, target, g, x0, y0)
	for j := 0; j < h; j++ {
		row := j * g.Width
		for i := 0; i < w; i++ {
			lum := g.Pix[row+i]
			target.SetRGB(x0+i, y0+j, imageutil.RGB{
				R: uint8(lum*float64(tint.R) + 0.5),
				G: uint8(lum*float64(tint.G) + 0.5),
				B: uint8(lum*float64(tint.B) + 0.5),
			})
		}
	}
}
