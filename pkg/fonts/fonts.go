// Package fonts provides the font files built into chartkit.
//
// The Go font family is compiled into the binary through
// golang.org/x/image/font/gofont, so text rendering works without any
// system fonts installed. Parsed fonts are cached after first use.
package fonts

import (
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the family name of the default built-in font.
const FontFamily = "Go"

// MonoFamily is the family name of the built-in monospace font.
const MonoFamily = "Go Mono"

// style indexes: regular, bold, italic, bold italic.
var builtin = map[string][4][]byte{
	"go":      {goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF},
	"go mono": {gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF},
}

func styleIndex(bold, italic bool) int {
	i := 0
	if bold {
		i |= 1
	}
	if italic {
		i |= 2
	}
	return i
}

// IsBuiltin reports whether family names a built-in font.
func IsBuiltin(family string) bool {
	_, ok := builtin[strings.ToLower(family)]
	return ok
}

// Source returns the TTF data of a built-in font.
func Source(family string, bold, italic bool) ([]byte, bool) {
	f, ok := builtin[strings.ToLower(family)]
	if !ok {
		return nil, false
	}
	return f[styleIndex(bold, italic)], true
}

// Families returns the names of the built-in families.
func Families() []string {
	return []string{FontFamily, MonoFamily}
}

// Cache for parsed built-in fonts (computed once on first access).
var (
	parsedMu sync.Mutex
	parsed   = map[string]*truetype.Font{}
)

// Parsed returns a built-in font parsed with truetype.
func Parsed(family string, bold, italic bool) (*truetype.Font, bool) {
	data, ok := Source(family, bold, italic)
	if !ok {
		return nil, false
	}
	key := strings.ToLower(family) + string(rune('0'+styleIndex(bold, italic)))

	parsedMu.Lock()
	defer parsedMu.Unlock()
	if f, ok := parsed[key]; ok {
		return f, true
	}
	f, err := truetype.Parse(data)
	if err != nil {
		// The embedded fonts are known-good.
		panic(err)
	}
	parsed[key] = f
	return f, true
}
