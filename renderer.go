package img2glyph

import (
	"fmt"

	"github.com/golang/freetype/truetype"

	"github.com/wbrown/img2glyph/imageutil"
)

// Renderer encapsulates all state for glyph-mosaic conversion. This
// allows multiple independent renderers with different configurations
// and reuse of the expensive glyph atlas across conversions of
// different images with the same font settings.
type Renderer struct {
	// Configuration options
	FontSize    float64
	Charset     Charset
	Color       bool
	TintMode    TintMode
	PaletteSize int
	Workers     int
	Background  imageutil.RGB
	Sharpen     bool
	TargetWidth int
	Progress    func(done, total int)

	// Font and atlas state (private)
	font      *truetype.Font
	fontPath  string
	atlas     *GlyphAtlas
	atlasSize float64
	atlasSet  Charset
	customSet []rune
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// NewRenderer creates a new Renderer with the given options.
// Default values: FontSize=16, Charset=ascii-printable, Color=false,
// TintMode=TintMean, PaletteSize=0 (off), Workers=0 (one per CPU),
// Background=black, TargetWidth=0 (native size).
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		FontSize: 16,
		Charset:  CharsetASCIIPrintable,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithFontSize sets the point size glyphs are rasterized at.
func WithFontSize(size float64) RendererOption {
	return func(r *Renderer) {
		r.FontSize = size
	}
}

// WithCharset sets the named character repertoire.
func WithCharset(c Charset) RendererOption {
	return func(r *Renderer) {
		r.Charset = c
	}
}

// WithRunes sets a custom ordered repertoire, overriding Charset.
func WithRunes(runes []rune) RendererOption {
	return func(r *Renderer) {
		r.customSet = append([]rune(nil), runes...)
	}
}

// WithColor enables colour output: each glyph is tinted with its
// tile's sampled color. Tinting never changes which glyph is selected.
func WithColor(enabled bool) RendererOption {
	return func(r *Renderer) {
		r.Color = enabled
	}
}

// WithTintMode sets how tile tint colors are sampled.
func WithTintMode(mode TintMode) RendererOption {
	return func(r *Renderer) {
		r.TintMode = mode
	}
}

// WithPaletteSize enables tint quantization to at most n colors
// (0 disables).
func WithPaletteSize(n int) RendererOption {
	return func(r *Renderer) {
		r.PaletteSize = n
	}
}

// WithWorkers sets the tile worker pool size (0 = one per CPU).
func WithWorkers(n int) RendererOption {
	return func(r *Renderer) {
		r.Workers = n
	}
}

// WithBackground sets the canvas background color.
func WithBackground(c imageutil.RGB) RendererOption {
	return func(r *Renderer) {
		r.Background = c
	}
}

// WithSharpen enables a mild sharpening pass before matching.
func WithSharpen(enabled bool) RendererOption {
	return func(r *Renderer) {
		r.Sharpen = enabled
	}
}

// WithTargetWidth pre-resizes the source to the given pixel width,
// preserving aspect ratio (0 keeps the native size).
func WithTargetWidth(width int) RendererOption {
	return func(r *Renderer) {
		r.TargetWidth = width
	}
}

// WithProgress sets a callback reporting tile-matching progress, the
// dominant cost of a conversion. It may be invoked from multiple
// goroutines.
func WithProgress(fn func(done, total int)) RendererOption {
	return func(r *Renderer) {
		r.Progress = fn
	}
}

// LoadFont loads and parses a TrueType font from a file. Any cached
// atlas is discarded.
func (r *Renderer) LoadFont(path string) error {
	f, err := LoadFont(path)
	if err != nil {
		return err
	}
	r.font = f
	r.fontPath = path
	r.atlas = nil
	return nil
}

// LoadFontData parses a TrueType font from raw bytes. Any cached atlas
// is discarded.
func (r *Renderer) LoadFontData(data []byte) error {
	f, err := ParseFont(data)
	if err != nil {
		return err
	}
	r.font = f
	r.fontPath = ""
	r.atlas = nil
	return nil
}

// repertoire resolves the active rune sequence.
func (r *Renderer) repertoire() ([]rune, error) {
	if r.customSet != nil {
		if len(r.customSet) == 0 {
			return nil, &EmptyRepertoireError{}
		}
		return r.customSet, nil
	}
	runes, err := r.Charset.Runes()
	if err != nil {
		return nil, err
	}
	if len(runes) == 0 {
		return nil, &EmptyRepertoireError{Charset: string(r.Charset)}
	}
	return runes, nil
}

// Atlas returns the glyph atlas for the current font, size, and
// repertoire, building it on first use and caching it until the
// configuration changes.
func (r *Renderer) Atlas() (*GlyphAtlas, error) {
	if r.atlas != nil && r.atlasSize == r.FontSize && r.atlasSet == r.Charset {
		return r.atlas, nil
	}
	if r.font == nil {
		return nil, &FontLoadError{Err: fmt.Errorf("no font loaded")}
	}
	runes, err := r.repertoire()
	if err != nil {
		return nil, err
	}
	atlas, err := BuildAtlas(r.font, runes, r.FontSize)
	if err != nil {
		return nil, err
	}
	r.atlas = atlas
	r.atlasSize = r.FontSize
	r.atlasSet = r.Charset
	return atlas, nil
}

// Convert runs the full pipeline on a decoded source image and returns
// the glyph-mosaic canvas at the (possibly resized) source dimensions:
// grayscale view, per-tile glyph matching, optional tint sampling and
// quantization, and compositing.
func (r *Renderer) Convert(src *imageutil.RGBAImage) (*imageutil.RGBAImage, error) {
	atlas, err := r.Atlas()
	if err != nil {
		return nil, err
	}

	if r.TargetWidth > 0 && r.TargetWidth != src.Width() {
		src = imageutil.ResizeToWidth(src, r.TargetWidth, imageutil.InterpolationArea)
	}
	if r.Sharpen {
		src = imageutil.Sharpen(src)
	}

	gray := imageutil.ToGrayscale(src)
	selections := MatchTiles(atlas, gray, r.Workers, r.Progress)

	opts := CompositeOptions{
		Color:      r.Color,
		TintMode:   r.TintMode,
		Background: r.Background,
		Workers:    r.Workers,
	}
	if r.Color && r.PaletteSize > 0 {
		tints := TileTints(atlas, selections, src, r.TintMode)
		opts.Tints = QuantizeTints(tints, r.PaletteSize)
	}

	return RenderTiles(atlas, selections, src, opts), nil
}

// ConvertFile decodes the input image, converts it, and encodes the
// result to the output path. The output format follows the file
// extension (PNG, JPEG, or GIF).
func (r *Renderer) ConvertFile(inputPath, outputPath string) error {
	src, err := imageutil.LoadImage(inputPath)
	if err != nil {
		return err
	}
	out, err := r.Convert(src)
	if err != nil {
		return err
	}
	return imageutil.SaveImage(out.RGBA, outputPath)
}
