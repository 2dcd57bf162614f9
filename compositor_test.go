package img2glyph

import (
	"bytes"
	"testing"

	"github.com/wbrown/img2glyph/imageutil"
)

func TestTileMeanColor(t *testing.T) {
	src := imageutil.NewRGBAImage(2, 2)
	src.SetRGB(0, 0, imageutil.RGB{R: 100, G: 0, B: 0})
	src.SetRGB(1, 0, imageutil.RGB{R: 200, G: 0, B: 0})
	src.SetRGB(0, 1, imageutil.RGB{R: 0, G: 100, B: 0})
	src.SetRGB(1, 1, imageutil.RGB{R: 0, G: 0, B: 100})

	mean := TileMeanColor(src, 0, 0, 2, 2)
	want := imageutil.RGB{R: 75, G: 25, B: 25}
	if mean != want {
		t.Errorf("Expected %v, got %v", want, mean)
	}
}

func TestTileMeanColorEdgeClipped(t *testing.T) {
	src := imageutil.NewRGBAImage(3, 1)
	src.SetRGB(0, 0, imageutil.RGB{R: 10, G: 10, B: 10})
	src.SetRGB(1, 0, imageutil.RGB{R: 20, G: 20, B: 20})
	src.SetRGB(2, 0, imageutil.RGB{R: 90, G: 90, B: 90})

	// A 2x2 sampling window at x0=2 overlaps only the last pixel.
	mean := TileMeanColor(src, 2, 0, 2, 2)
	want := imageutil.RGB{R: 90, G: 90, B: 90}
	if mean != want {
		t.Errorf("Expected %v over clipped region, got %v", want, mean)
	}
}

func TestTileMeanColorOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic for a region with no samples")
		}
	}()
	src := imageutil.NewRGBAImage(2, 2)
	TileMeanColor(src, 4, 4, 2, 2)
}

// TestCanvasFullCoverage checks the canvas invariant: with a source
// whose dimensions are not multiples of the cell size, every target
// pixel is written by some tile and none keeps the background color.
func TestCanvasFullCoverage(t *testing.T) {
	mid := solidGlyph('o', 2, 2, 0.5)
	atlas := testAtlas(mid)

	src := imageutil.CreateSolidImage(5, 3, imageutil.RGB{R: 128, G: 128, B: 128})
	gray := imageutil.ToGrayscale(src)
	selections := MatchTiles(atlas, gray, 1, nil)

	// Background is magenta, which no grayscale glyph can produce.
	bg := imageutil.RGB{R: 255, G: 0, B: 255}
	out := RenderTiles(atlas, selections, src, CompositeOptions{
		Background: bg,
		Workers:    1,
	})

	if out.Width() != src.Width() || out.Height() != src.Height() {
		t.Fatalf("Target must match source dimensions: got %dx%d",
			out.Width(), out.Height())
	}
	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			if out.GetRGB(x, y) == bg {
				t.Errorf("Pixel (%d,%d) was never drawn", x, y)
			}
		}
	}
}

func TestRenderTilesGrayMapsLuminance(t *testing.T) {
	g := solidGlyph('X', 2, 2, 1.0)
	g.Pix = []float64{0, 0.25, 0.5, 1.0}
	atlas := testAtlas(g)

	src := imageutil.CreateSolidImage(2, 2, imageutil.RGB{})
	out := RenderTiles(atlas, [][]int{{0}}, src, CompositeOptions{Workers: 1})

	wants := []imageutil.RGB{
		{R: 0, G: 0, B: 0},
		{R: 64, G: 64, B: 64},
		{R: 128, G: 128, B: 128},
		{R: 255, G: 255, B: 255},
	}
	i := 0
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if out.GetRGB(x, y) != wants[i] {
				t.Errorf("Pixel (%d,%d): expected %v, got %v", x, y, wants[i], out.GetRGB(x, y))
			}
			i++
		}
	}
}

func TestRenderTilesMultiplicativeTint(t *testing.T) {
	g := solidGlyph('X', 2, 1, 1.0)
	g.Pix = []float64{1.0, 0.5}
	atlas := testAtlas(g)

	tint := imageutil.RGB{R: 100, G: 150, B: 200}
	src := imageutil.CreateSolidImage(2, 1, tint)
	out := RenderTiles(atlas, [][]int{{0}}, src, CompositeOptions{
		Color:   true,
		Workers: 1,
	})

	// Full luminance carries the tint unchanged
	if out.GetRGB(0, 0) != tint {
		t.Errorf("Expected %v at full luminance, got %v", tint, out.GetRGB(0, 0))
	}
	// Half luminance halves each channel (rounded)
	want := imageutil.RGB{R: 50, G: 75, B: 100}
	if out.GetRGB(1, 0) != want {
		t.Errorf("Expected %v at half luminance, got %v", want, out.GetRGB(1, 0))
	}
}

// TestColorDoesNotAffectSelection verifies that colour mode only
// changes tinting: the selection grid feeding the compositor is
// computed from luminance alone and is untouched by rendering in
// either mode.
func TestColorDoesNotAffectSelection(t *testing.T) {
	dark := solidGlyph('.', 2, 2, 0.1)
	bright := solidGlyph('#', 2, 2, 0.9)
	atlas := testAtlas(dark, bright)

	src := imageutil.CreateColorBarsImage(16, 8)
	gray := imageutil.ToGrayscale(src)

	selections := MatchTiles(atlas, gray, 1, nil)
	snapshot := make([][]int, len(selections))
	for ty := range selections {
		snapshot[ty] = append([]int(nil), selections[ty]...)
	}

	RenderTiles(atlas, selections, src, CompositeOptions{Color: false, Workers: 2})
	RenderTiles(atlas, selections, src, CompositeOptions{Color: true, Workers: 2})

	for ty := range selections {
		for tx := range selections[ty] {
			if selections[ty][tx] != snapshot[ty][tx] {
				t.Fatalf("Tile (%d,%d): selection changed by rendering", tx, ty)
			}
		}
	}

	again := MatchTiles(atlas, gray, 1, nil)
	for ty := range again {
		for tx := range again[ty] {
			if again[ty][tx] != snapshot[ty][tx] {
				t.Fatalf("Tile (%d,%d): selection not reproducible", tx, ty)
			}
		}
	}
}

func TestRenderTilesDeterministicAcrossWorkers(t *testing.T) {
	dark := solidGlyph('.', 3, 3, 0.2)
	bright := solidGlyph('#', 3, 3, 0.8)
	atlas := testAtlas(dark, bright)

	src := imageutil.CreateGradientImage(20, 11)
	gray := imageutil.ToGrayscale(src)
	selections := MatchTiles(atlas, gray, 1, nil)

	baseline := RenderTiles(atlas, selections, src, CompositeOptions{
		Color:   true,
		Workers: 1,
	})
	for _, workers := range []int{2, 5} {
		got := RenderTiles(atlas, selections, src, CompositeOptions{
			Color:   true,
			Workers: workers,
		})
		if !bytes.Equal(baseline.Pix, got.Pix) {
			t.Fatalf("Workers=%d: output differs from single-worker baseline", workers)
		}
	}
}

// TestDrawClippedToCell checks that a glyph larger than the cell never
// writes outside its tile's exclusive rectangle.
func TestDrawClippedToCell(t *testing.T) {
	big := solidGlyph('#', 4, 4, 1.0)
	small := solidGlyph('.', 2, 2, 1.0)
	atlas := testAtlas(big, small)
	if atlas.CellWidth != 2 || atlas.CellHeight != 2 {
		t.Fatalf("Expected 2x2 cell, got %dx%d", atlas.CellWidth, atlas.CellHeight)
	}

	// Force the big glyph into the top-left tile and the small
	// glyph's inverse (dark) everywhere else.
	selections := [][]int{
		{0, 3},
		{3, 3},
	}
	src := imageutil.CreateSolidImage(4, 4, imageutil.RGB{})
	out := RenderTiles(atlas, selections, src, CompositeOptions{Workers: 1})

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			inFirstTile := x < 2 && y < 2
			want := imageutil.RGB{}
			if inFirstTile {
				want = imageutil.RGB{R: 255, G: 255, B: 255}
			}
			if out.GetRGB(x, y) != want {
				t.Errorf("Pixel (%d,%d): expected %v, got %v — big glyph leaked outside its cell",
					x, y, want, out.GetRGB(x, y))
			}
		}
	}
}

func TestTileTintsDimensions(t *testing.T) {
	atlas := testAtlas(solidGlyph('X', 2, 2, 0.5))
	src := imageutil.CreateColorBarsImage(8, 6)
	gray := imageutil.ToGrayscale(src)
	selections := MatchTiles(atlas, gray, 1, nil)

	tints := TileTints(atlas, selections, src, TintMean)
	if len(tints) != len(selections) {
		t.Fatalf("Expected %d tint rows, got %d", len(selections), len(tints))
	}
	for ty := range tints {
		if len(tints[ty]) != len(selections[ty]) {
			t.Fatalf("Row %d: expected %d tints, got %d",
				ty, len(selections[ty]), len(tints[ty]))
		}
	}
}
