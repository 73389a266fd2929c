package text

import (
	"image"
	"image/color"
	"strings"

	"github.com/matzehuels/chartkit/pkg/colors"
)

// Style is a set of markup styles.
type Style uint8

// Markup styles.
const (
	Bold Style = 1 << iota
	Italic
	Link
)

// Run is a piece of marked-up text in one style.
type Run struct {
	Text  string
	Style Style
}

// ParseMarkup splits s into styled runs. "**" toggles bold, "//" toggles
// italic, "[[" opens and "]]" closes a link, and a backslash makes the
// next character literal. Empty runs are dropped.
func ParseMarkup(s string) []Run {
	var runs []Run
	var b strings.Builder
	var st Style
	flush := func() {
		if b.Len() > 0 {
			runs = append(runs, Run{Text: b.String(), Style: st})
			b.Reset()
		}
	}
	for i := 0; i < len(s); {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			i++
			// Copy one whole UTF-8 sequence.
			j := i + 1
			for j < len(s) && s[j]&0xc0 == 0x80 {
				j++
			}
			b.WriteString(s[i:j])
			i = j
		case strings.HasPrefix(s[i:], "**"):
			flush()
			st ^= Bold
			i += 2
		case strings.HasPrefix(s[i:], "//"):
			flush()
			st ^= Italic
			i += 2
		case strings.HasPrefix(s[i:], "[["):
			flush()
			st |= Link
			i += 2
		case strings.HasPrefix(s[i:], "]]"):
			flush()
			st &^= Link
			i += 2
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	flush()
	return runs
}

// MarkupOptions configures Markup.
type MarkupOptions struct {
	Options
	// LinkColor colors links; nil uses the text color.
	LinkColor color.Color
	// Underline underlines links.
	Underline bool
}

// Markup renders marked-up text, using the bold and italic variants of
// opts.Font for styled runs. Lines wrap at opts.MaxWidth.
func Markup(s string, opts MarkupOptions) (*image.NRGBA, error) {
	r := newRenderer(opts.Options)
	def, err := r.style(r.font, r.fg, colors.Transparent, false)
	if err != nil {
		return nil, err
	}
	link := r.fg
	if opts.LinkColor != nil {
		link = colors.Convert(opts.LinkColor)
	}

	styles := map[Style]*style{}
	var frags []frag
	for _, run := range ParseMarkup(s) {
		st, ok := styles[run.Style]
		if !ok {
			f := r.font
			if run.Style&Bold != 0 {
				f = f.Bolded()
			}
			if run.Style&Italic != 0 {
				f = f.Italicized()
			}
			fg, underline := r.fg, false
			if run.Style&Link != 0 {
				fg, underline = link, opts.Underline
			}
			if st, err = r.style(f, fg, colors.Transparent, underline); err != nil {
				return nil, err
			}
			styles[run.Style] = st
		}
		frags = append(frags, frag{text: run.Text, st: st})
	}
	return r.render(frags, def, false)
}
