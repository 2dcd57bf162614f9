package img2glyph

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/wbrown/img2glyph/imageutil"
)

// MeanAbsDiff scores a glyph bitmap against the source region whose
// top-left corner is (x0, y0): the mean absolute luminance difference
// over all samples where glyph and source overlap. Samples past the
// right or bottom source edge are skipped symmetrically for both
// operands, so the same function scores interior and edge tiles.
//
// A region with no overlapping samples is a contract violation: the
// grid construction in MatchTiles never produces one, so hitting it
// means tile and glyph bound computations disagree.
func MeanAbsDiff(g *GlyphBitmap, gray *imageutil.GrayImage, x0, y0 int) float64 {
	width, height := gray.Width(), gray.Height()
	var sum float64
	var count int
	for j := 0; j < g.Height; j++ {
		if y0+j >= height {
			break
		}
		row := j * g.Width
		for i := 0; i < g.Width; i++ {
			if x0+i >= width {
				break
			}
			src := float64(gray.GetGray(x0+i, y0+j)) / 255.0
			sum += math.Abs(g.Pix[row+i] - src)
			count++
		}
	}
	if count == 0 {
		panic("img2glyph: tile region has no samples inside the source")
	}
	return sum / float64(count)
}

// SelectGlyph returns the index of the atlas bitmap that minimizes
// MeanAbsDiff against the tile at (x0, y0). Ties go to the earlier
// atlas entry, which makes selection deterministic for identical
// atlases and inputs.
func (a *GlyphAtlas) SelectGlyph(gray *imageutil.GrayImage, x0, y0 int) int {
	best := 0
	bestScore := math.MaxFloat64
	for idx, g := range a.Glyphs {
		score := MeanAbsDiff(g, gray, x0, y0)
		if score < bestScore {
			bestScore = score
			best = idx
		}
	}
	return best
}

// TileGrid returns the number of tile columns and rows covering a
// source of the given dimensions. Partial tiles at the right and bottom
// edges count, so the grid covers every source pixel with no gaps.
func (a *GlyphAtlas) TileGrid(width, height int) (tilesX, tilesY int) {
	tilesX = (width + a.CellWidth - 1) / a.CellWidth
	tilesY = (height + a.CellHeight - 1) / a.CellHeight
	return tilesX, tilesY
}

// MatchTiles partitions the grayscale source into the atlas's tile grid
// and selects the best glyph for every tile. Rows are distributed over
// a pool of workers; tiles share only read-only inputs and each result
// slot is written by exactly one worker, so no locking is needed.
//
// workers <= 0 means one worker per CPU. progress, if non-nil, is
// called after each completed row with the running tile count; it may
// be called from multiple goroutines.
func MatchTiles(a *GlyphAtlas, gray *imageutil.GrayImage, workers int, progress func(done, total int)) [][]int {
	tilesX, tilesY := a.TileGrid(gray.Width(), gray.Height())
	selections := make([][]int, tilesY)
	for ty := range selections {
		selections[ty] = make([]int, tilesX)
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > tilesY {
		workers = tilesY
	}

	total := tilesX * tilesY
	var done int64
	rows := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ty := range rows {
				y0 := ty * a.CellHeight
				for tx := 0; tx < tilesX; tx++ {
					selections[ty][tx] = a.SelectGlyph(gray, tx*a.CellWidth, y0)
				}
				if progress != nil {
					progress(int(atomic.AddInt64(&done, int64(tilesX))), total)
				}
			}
		}()
	}
	for ty := 0; ty < tilesY; ty++ {
		rows <- ty
	}
	close(rows)
	wg.Wait()

	return selections
}
