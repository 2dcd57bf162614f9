package img2glyph

import (
	"image"
	"io/ioutil"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// MaxLuminance is the luminance of a fully-inked glyph pixel. Glyph
// bitmaps store normalized samples in [0, MaxLuminance].
const MaxLuminance = 1.0

// GlyphBitmap is the rendered luminance pattern of a single character
// at a fixed font size. Samples are normalized to [0,1] and are never
// mutated after the bitmap is built; the atlas owns every bitmap and
// the matcher only reads them.
type GlyphBitmap struct {
	Char     rune
	Inverted bool
	Width    int
	Height   int
	Pix      []float64
}

// At returns the luminance sample at (x, y). The caller is responsible
// for staying inside the bitmap bounds.
func (g *GlyphBitmap) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// Invert returns the pointwise luminance-inverted counterpart of the
// bitmap. The character identity is unchanged; only the luminance values
// flip, so a bright-on-dark glyph also competes as dark-on-bright
// without re-rasterizing.
func (g *GlyphBitmap) Invert() *GlyphBitmap {
	inv := &GlyphBitmap{
		Char:     g.Char,
		Inverted: !g.Inverted,
		Width:    g.Width,
		Height:   g.Height,
		Pix:      make([]float64, len(g.Pix)),
	}
	for i, v := range g.Pix {
		inv.Pix[i] = MaxLuminance - v
	}
	return inv
}

// GlyphAtlas is the ordered bank of glyph bitmaps available for tile
// matching, each character followed by its inverted variant. CellWidth
// and CellHeight are the minimum bitmap dimensions across the whole
// atlas; the tile grid derives from them, which guarantees every tile
// is fully covered by the overlapping region of every candidate glyph.
type GlyphAtlas struct {
	Glyphs     []*GlyphBitmap
	CellWidth  int
	CellHeight int
}

// Len returns the number of bitmaps in the atlas, inverted variants
// included.
func (a *GlyphAtlas) Len() int {
	return len(a.Glyphs)
}

// LoadFont parses a TrueType font from a file.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	return f, nil
}

// ParseFont parses a TrueType font from raw bytes (e.g. embedded data).
func ParseFont(data []byte) (*truetype.Font, error) {
	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, &FontLoadError{Err: err}
	}
	return f, nil
}

// BuildAtlas renders every character of the repertoire at the given
// point size and returns the resulting atlas. Each rasterized bitmap is
// immediately followed by its inverted variant, so the atlas is twice
// the repertoire length. Inputs are not mutated.
func BuildAtlas(ttf *truetype.Font, repertoire []rune, fontSize float64) (*GlyphAtlas, error) {
	if len(repertoire) == 0 {
		return nil, &EmptyRepertoireError{}
	}

	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	atlas := &GlyphAtlas{
		Glyphs: make([]*GlyphBitmap, 0, 2*len(repertoire)),
	}
	for _, r := range repertoire {
		g := renderGlyph(ttf, face, r, fontSize)
		atlas.Glyphs = append(atlas.Glyphs, g, g.Invert())
	}

	atlas.CellWidth = atlas.Glyphs[0].Width
	atlas.CellHeight = atlas.Glyphs[0].Height
	for _, g := range atlas.Glyphs[1:] {
		if g.Width < atlas.CellWidth {
			atlas.CellWidth = g.Width
		}
		if g.Height < atlas.CellHeight {
			atlas.CellHeight = g.Height
		}
	}
	return atlas, nil
}

// renderGlyph rasterizes one character onto a zero-luminance background
// sized to the ceiling of its rendered bounding box.
//
// The glyph is drawn into an alpha image rather than a gray one: the
// anti-aliased coverage from the TrueType rasterizer maps directly onto
// the alpha channel, and coverage is exactly the luminance pattern the
// matcher wants. No thresholding is applied; the full coverage ramp is
// kept so the mean-absolute-difference score sees soft edges.
func renderGlyph(ttf *truetype.Font, face font.Face, r rune, fontSize float64) *GlyphBitmap {
	bounds, advance, ok := face.GlyphBounds(r)

	w := (bounds.Max.X - bounds.Min.X).Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()

	// Ink-free glyphs (space) and missing glyphs have an empty box.
	// Fall back to the advance width and line height so every bitmap
	// has positive dimensions and blank characters stay in the
	// repertoire as legitimate low-luminance candidates.
	if w < 1 {
		w = advance.Ceil()
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		m := face.Metrics()
		h = (m.Ascent + m.Descent).Ceil()
	}
	if h < 1 {
		h = 1
	}

	img := image.NewAlpha(image.Rect(0, 0, w, h))

	hasInk := ok && bounds.Max.X > bounds.Min.X && bounds.Max.Y > bounds.Min.Y
	if hasInk {
		ctx := freetype.NewContext()
		ctx.SetDPI(72)
		ctx.SetFont(ttf)
		ctx.SetFontSize(fontSize)
		ctx.SetClip(img.Bounds())
		ctx.SetDst(img)
		ctx.SetSrc(image.White)
		ctx.SetHinting(font.HintingFull)

		// Place the glyph's bounding box at the bitmap origin: the dot
		// sits on the baseline, offset so Min maps to (0,0).
		dot := fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y}
		ctx.DrawString(string(r), dot)
	}

	g := &GlyphBitmap{
		Char:   r,
		Width:  w,
		Height: h,
		Pix:    make([]float64, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Pix[y*w+x] = float64(img.AlphaAt(x, y).A) / 255.0
		}
	}
	return g
}
