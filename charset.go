package img2glyph

import "fmt"

// Charset names a fixed character repertoire used to build a glyph atlas.
// The repertoire is an ordered sequence of code points; order matters
// because glyph selection breaks score ties by atlas order.
type Charset string

const (
	// CharsetASCIIPrintable covers the printable ASCII range, space
	// through tilde.
	CharsetASCIIPrintable Charset = "ascii-printable"

	// CharsetBlockElements covers the Unicode Block Elements range
	// (half blocks, quadrants, and shades).
	CharsetBlockElements Charset = "block-elements"

	// CharsetASCIIBlocks is the ASCII printable range followed by the
	// block elements.
	CharsetASCIIBlocks Charset = "ascii+blocks"

	// CharsetSymbols is a small set of punctuation and geometric
	// symbols with a wide spread of ink coverage.
	CharsetSymbols Charset = "symbols"
)

// blockElements covers the Unicode Block Elements range: partial
// blocks, quadrants, and the shade characters.
var blockElements = []rune{
	' ', '▀', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█',
	'▌', '▍', '▎', '▏', '▐', '░', '▒', '▓',
	'▔', '▕', '▖', '▗', '▘', '▙', '▚', '▛', '▜', '▝', '▞', '▟',
}

// symbolChars is ordered roughly dark-to-light so that tie-breaks on
// flat regions prefer sparser glyphs.
var symbolChars = []rune{
	' ', '.', ':', '-', '=', '+', '*', 'o', 'x', '%', '#', '@',
	'■', '□', '▪', '▫', '●', '○', '◆', '◇', '★', '☆',
}

// Runes returns the ordered code points of the character set, or an
// error for an unknown set name. Deduplication is not performed; a
// repertoire is used exactly as declared.
func (c Charset) Runes() ([]rune, error) {
	switch c {
	case CharsetASCIIPrintable:
		return asciiPrintable(), nil
	case CharsetBlockElements:
		rs := make([]rune, len(blockElements))
		copy(rs, blockElements)
		return rs, nil
	case CharsetASCIIBlocks:
		rs := asciiPrintable()
		rs = append(rs, blockElements...)
		return rs, nil
	case CharsetSymbols:
		rs := make([]rune, len(symbolChars))
		copy(rs, symbolChars)
		return rs, nil
	}
	return nil, fmt.Errorf("unknown character set %q", string(c))
}

// Charsets lists the available character set names.
func Charsets() []Charset {
	return []Charset{
		CharsetASCIIPrintable,
		CharsetBlockElements,
		CharsetASCIIBlocks,
		CharsetSymbols,
	}
}

func asciiPrintable() []rune {
	rs := make([]rune, 0, 95)
	for r := rune(32); r <= rune(126); r++ {
		rs = append(rs, r)
	}
	return rs
}
