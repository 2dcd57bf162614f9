package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	pb "github.com/cheggaaa/pb/v3"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/wbrown/img2glyph"
	"github.com/wbrown/img2glyph/imageutil"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required)")
	outputFile := flag.String("output", "",
		"Path to save the output image (required)")
	fontPath := flag.String("font", "",
		"Path to the TTF font to render glyphs with (required)")
	fontSize := flag.Float64("size", 16,
		"Font point size for glyph rasterization")
	charset := flag.String("charset", "ascii-printable",
		"Character set: ascii-printable, block-elements, ascii+blocks, symbols")
	useColor := flag.Bool("color", false,
		"Tint glyphs with per-tile source colors")
	tintMethod := flag.String("tint", "mean",
		"Tint sampling method: mean or dominant")
	paletteSize := flag.Int("palette", 0,
		"Quantize tints to at most N colors, 0 to disable")
	targetWidth := flag.Int("width", 0,
		"Pre-resize the source to this pixel width, 0 keeps native size")
	workers := flag.Int("workers", 0,
		"Tile worker pool size, 0 for one per CPU")
	background := flag.String("bg", "#000000",
		"Canvas background color as a hex string")
	sharpen := flag.Bool("sharpen", false,
		"Apply a mild sharpening pass before matching")
	quiet := flag.Bool("quiet", false,
		"Suppress the progress bar")
	flag.Parse()

	if *inputFile == "" || *outputFile == "" || *fontPath == "" {
		fmt.Println("Please provide -input, -output, and -font")
		flag.PrintDefaults()
		os.Exit(1)
	}

	bg, err := colorful.Hex(*background)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid background color %q: %v\n", *background, err)
		os.Exit(1)
	}
	bgR, bgG, bgB := bg.RGB255()

	var tintMode img2glyph.TintMode
	switch strings.ToLower(*tintMethod) {
	case "mean":
		tintMode = img2glyph.TintMean
	case "dominant":
		tintMode = img2glyph.TintDominant
	default:
		fmt.Fprintf(os.Stderr, "Invalid tint method %q, options are mean, dominant\n", *tintMethod)
		os.Exit(1)
	}

	opts := []img2glyph.RendererOption{
		img2glyph.WithFontSize(*fontSize),
		img2glyph.WithCharset(img2glyph.Charset(*charset)),
		img2glyph.WithColor(*useColor),
		img2glyph.WithTintMode(tintMode),
		img2glyph.WithPaletteSize(*paletteSize),
		img2glyph.WithWorkers(*workers),
		img2glyph.WithBackground(imageutil.RGB{R: bgR, G: bgG, B: bgB}),
		img2glyph.WithSharpen(*sharpen),
		img2glyph.WithTargetWidth(*targetWidth),
	}

	var bar *pb.ProgressBar
	var barOnce sync.Once
	if !*quiet {
		opts = append(opts, img2glyph.WithProgress(func(done, total int) {
			barOnce.Do(func() {
				bar = pb.StartNew(total)
			})
			bar.SetCurrent(int64(done))
		}))
	}

	renderer := img2glyph.NewRenderer(opts...)
	if err := renderer.LoadFont(*fontPath); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := renderer.ConvertFile(*inputFile, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Conversion failed: %v\n", err)
		os.Exit(1)
	}
	if bar != nil {
		bar.Finish()
	}

	fmt.Printf("Wrote %s\n", *outputFile)
}
