package img2glyph

import "fmt"

// FontLoadError indicates that a font resource could not be read or
// parsed. It is fatal and occurs before any tile work begins.
type FontLoadError struct {
	Path string
	Err  error
}

func (e *FontLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("font load failed: %v", e.Err)
	}
	return fmt.Sprintf("font load failed for %s: %v", e.Path, e.Err)
}

func (e *FontLoadError) Unwrap() error {
	return e.Err
}

// EmptyRepertoireError indicates that the chosen character set resolved
// to no characters, leaving nothing to build an atlas from.
type EmptyRepertoireError struct {
	Charset string
}

func (e *EmptyRepertoireError) Error() string {
	if e.Charset == "" {
		return "empty character repertoire"
	}
	return fmt.Sprintf("character set %q resolved to no characters", e.Charset)
}
