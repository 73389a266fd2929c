package colors

import (
	"math"
	"strings"

	"github.com/matzehuels/chartkit/pkg/errors"
)

// Entry is a named palette color.
type Entry struct {
	Name  string
	Color Color
}

// Palette is an ordered list of named colors.
type Palette struct {
	name    string
	entries []Entry
	index   map[string]int
}

// NewPalette builds a palette. Names are matched case-insensitively; when
// two entries share a name the first one wins.
func NewPalette(name string, entries ...Entry) *Palette {
	p := &Palette{
		name:    name,
		entries: append([]Entry(nil), entries...),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range p.entries {
		key := strings.ToLower(e.Name)
		if _, ok := p.index[key]; !ok {
			p.index[key] = i
		}
	}
	return p
}

// Name returns the palette name.
func (p *Palette) Name() string { return p.name }

// Len returns the number of colors.
func (p *Palette) Len() int { return len(p.entries) }

// At returns the color at index i modulo the palette length.
// Negative indices count from the end.
func (p *Palette) At(i int) Color {
	n := len(p.entries)
	if n == 0 {
		return Transparent
	}
	i %= n
	if i < 0 {
		i += n
	}
	return p.entries[i].Color
}

// Get returns the color with the given name.
func (p *Palette) Get(name string) (Color, error) {
	i, ok := p.index[strings.ToLower(name)]
	if !ok {
		return Color{}, errors.New(errors.ErrCodeArgument, "palette %s has no color %q", p.name, name)
	}
	return p.entries[i].Color, nil
}

// MustGet is like Get but panics on error.
func (p *Palette) MustGet(name string) Color {
	c, err := p.Get(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Names returns the color names in order.
func (p *Palette) Names() []string {
	names := make([]string, len(p.entries))
	for i, e := range p.entries {
		names[i] = e.Name
	}
	return names
}

// Colors returns the colors in order.
func (p *Palette) Colors() []Color {
	cs := make([]Color, len(p.entries))
	for i, e := range p.entries {
		cs[i] = e.Color
	}
	return cs
}

// Nearest returns the index of the palette color closest to c by squared
// distance in linear RGB. Ties go to the lowest index. Returns -1 for an
// empty palette.
func (p *Palette) Nearest(c Color) int {
	r, g, b := c.Linear()
	best, bestDist := -1, math.Inf(1)
	for i, e := range p.entries {
		er, eg, eb := e.Color.Linear()
		d := (r-er)*(r-er) + (g-eg)*(g-eg) + (b-eb)*(b-eb)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Quantize replaces c by its nearest palette color, keeping c's alpha.
func (p *Palette) Quantize(c Color) Color {
	i := p.Nearest(c)
	if i < 0 {
		return c
	}
	return p.entries[i].Color.WithAlpha(c.A)
}

func hexPalette(name string, pairs ...string) *Palette {
	entries := make([]Entry, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		entries = append(entries, Entry{Name: pairs[i], Color: MustParse(pairs[i+1])})
	}
	return NewPalette(name, entries...)
}

// Tab10 is the ten-color categorical palette used by most plotting tools.
var Tab10 = hexPalette("tab10",
	"blue", "#1f77b4",
	"orange", "#ff7f0e",
	"green", "#2ca02c",
	"red", "#d62728",
	"purple", "#9467bd",
	"brown", "#8c564b",
	"pink", "#e377c2",
	"grey", "#7f7f7f",
	"olive", "#bcbd22",
	"cyan", "#17becf",
)

// Paired is the twelve-color ColorBrewer paired palette.
var Paired = hexPalette("paired",
	"lightblue", "#a6cee3",
	"blue", "#1f78b4",
	"lightgreen", "#b2df8a",
	"green", "#33a02c",
	"lightred", "#fb9a99",
	"red", "#e31a1c",
	"lightorange", "#fdbf6f",
	"orange", "#ff7f00",
	"lightpurple", "#cab2d6",
	"purple", "#6a3d9a",
	"yellow", "#ffff99",
	"brown", "#b15928",
)

// Heraldic holds the tinctures used for flags and coats of arms.
var Heraldic = hexPalette("heraldic",
	"Or", "#fcdd09",
	"Argent", "#ffffff",
	"Gules", "#da121a",
	"Azure", "#0f47af",
	"Vert", "#009200",
	"Purpure", "#9116a1",
	"Sable", "#000000",
	"Tenne", "#804000",
	"Sanguine", "#a0271b",
	"Murrey", "#8b004b",
	"Cendree", "#a2a2a2",
	"Carnation", "#f2a772",
	"Bleu-celeste", "#5ab5ff",
)
