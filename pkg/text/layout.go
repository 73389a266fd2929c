package text

import (
	"image"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/raster"
)

const softHyphen = "\u00ad"

// style is how a fragment of text is drawn.
type style struct {
	face      font.Face
	fg        colors.Color
	bg        colors.Color
	underline bool
}

// frag is a run of text in one style. Text may contain soft hyphens,
// which are only drawn when a line breaks there.
type frag struct {
	text string
	st   *style
}

// item is a word preceded by the width of the whitespace before it.
type item struct {
	word []frag
	gap  fixed.Int26_6
}

type paragraph struct {
	items []item
	st    *style
}

type line struct {
	items   []item
	st      *style
	justify bool
}

func visible(s string) string { return strings.ReplaceAll(s, softHyphen, "") }

func measure(fr frag) fixed.Int26_6 {
	return font.MeasureString(fr.st.face, visible(fr.text))
}

func wordWidth(w []frag) fixed.Int26_6 {
	var total fixed.Int26_6
	for _, fr := range w {
		total += measure(fr)
	}
	return total
}

func wordText(w []frag) string {
	var b strings.Builder
	for _, fr := range w {
		b.WriteString(fr.text)
	}
	return b.String()
}

// paragraphs splits styled fragments on newlines and then into words.
// def styles empty paragraphs.
func paragraphs(frags []frag, def *style) []paragraph {
	var out []paragraph
	var cur []frag
	for _, fr := range frags {
		parts := strings.Split(fr.text, "\n")
		for i, p := range parts {
			if i > 0 {
				out = append(out, paragraph{items: tokenize(cur), st: def})
				cur = nil
			}
			if p != "" {
				cur = append(cur, frag{text: p, st: fr.st})
			}
		}
	}
	return append(out, paragraph{items: tokenize(cur), st: def})
}

// tokenize splits fragments into words at spaces. A word may span several
// fragments when the style changes inside it.
func tokenize(frags []frag) []item {
	var items []item
	var cur []frag
	var gap fixed.Int26_6
	for _, fr := range frags {
		text := strings.ReplaceAll(fr.text, "\t", " ")
		for i, p := range strings.Split(text, " ") {
			if i > 0 {
				if len(cur) > 0 {
					items = append(items, item{word: cur, gap: gap})
					cur, gap = nil, 0
				}
				gap += font.MeasureString(fr.st.face, " ")
			}
			if p != "" {
				cur = append(cur, frag{text: p, st: fr.st})
			}
		}
	}
	if len(cur) > 0 {
		items = append(items, item{word: cur, gap: gap})
	}
	return items
}

// wrap breaks a paragraph into lines no wider than maxWidth (no limit when
// zero). Wrapped lines drop their leading whitespace. Words wider than a
// whole line are hyphenated when possible and overflow otherwise.
func wrap(p paragraph, maxWidth fixed.Int26_6, hyph Hyphenator) []line {
	items := append([]item(nil), p.items...)
	var lines []line
	var cur []item
	var curW fixed.Int26_6
	emit := func() {
		lines = append(lines, line{items: cur, st: p.st})
		cur, curW = nil, 0
	}

	for idx := 0; idx < len(items); {
		it := items[idx]
		if len(cur) == 0 && len(lines) > 0 {
			it.gap = 0
		}
		w := wordWidth(it.word)
		if maxWidth <= 0 || curW+it.gap+w <= maxWidth {
			cur = append(cur, it)
			curW += it.gap + w
			idx++
			continue
		}
		if hyph != nil {
			if left, right, ok := hyphenate(it.word, maxWidth-curW-it.gap, hyph); ok {
				cur = append(cur, item{word: left, gap: it.gap})
				emit()
				items[idx] = item{word: right}
				continue
			}
		}
		if len(cur) == 0 {
			cur = append(cur, it)
			idx++
		}
		emit()
	}
	if len(cur) > 0 || len(lines) == 0 {
		emit()
	}
	return lines
}

// hyphenate splits word at the last break point whose left part, with a
// hyphen appended, fits in room.
func hyphenate(word []frag, room fixed.Int26_6, hyph Hyphenator) (left, right []frag, ok bool) {
	raw := wordText(word)
	breaks := hyph.Breaks(raw)
	sort.Ints(breaks)
	for i := len(breaks) - 1; i >= 0; i-- {
		b := breaks[i]
		if b <= 0 || b >= len(raw) {
			continue
		}
		l, r := splitWord(word, b)
		if visible(wordText(l)) == "" || visible(wordText(r)) == "" {
			continue
		}
		last := l[len(l)-1]
		l[len(l)-1] = frag{text: last.text + "-", st: last.st}
		if wordWidth(l) <= room {
			return l, r, true
		}
	}
	return nil, nil, false
}

// splitWord splits a word at a byte offset into its concatenated text.
func splitWord(word []frag, off int) (left, right []frag) {
	pos := 0
	for _, fr := range word {
		end := pos + len(fr.text)
		switch {
		case end <= off:
			left = append(left, fr)
		case pos >= off:
			right = append(right, fr)
		default:
			left = append(left, frag{text: fr.text[:off-pos], st: fr.st})
			right = append(right, frag{text: fr.text[off-pos:], st: fr.st})
		}
		pos = end
	}
	return left, right
}

type placed struct {
	fr  frag
	x   fixed.Int26_6
	adv fixed.Int26_6
}

// draw renders a line onto a transparent image. With beard the line is as
// tall as the font's ascent plus descent; otherwise it is cropped to the
// ink. Justified lines are stretched to target pixels.
func (l line) draw(beard bool, target int) *image.NRGBA {
	var natural fixed.Int26_6
	for _, it := range l.items {
		natural += it.gap + wordWidth(it.word)
	}
	gaps := len(l.items) - 1
	var extra fixed.Int26_6
	if l.justify && target > 0 && gaps > 0 && fixed.I(target) > natural {
		extra = fixed.I(target) - natural
	}

	var ps []placed
	var x fixed.Int26_6
	for i, it := range l.items {
		x += it.gap
		if i > 0 && extra > 0 {
			n := fixed.Int26_6(gaps)
			g := fixed.Int26_6(i - 1)
			x += extra*(g+1)/n - extra*g/n
		}
		for _, fr := range it.word {
			adv := measure(fr)
			ps = append(ps, placed{fr: fr, x: x, adv: adv})
			x += adv
		}
	}
	width := x.Ceil()
	if l.justify && extra > 0 {
		width = max(width, target)
	}

	asc, desc := 0, 0
	underline := false
	metric := func(st *style) {
		m := st.face.Metrics()
		asc = max(asc, m.Ascent.Ceil())
		desc = max(desc, m.Descent.Ceil())
	}
	if len(ps) == 0 {
		metric(l.st)
	}
	for _, p := range ps {
		metric(p.fr.st)
		underline = underline || p.fr.st.underline
	}
	top, bottom := -asc, desc
	if !beard {
		var ink fixed.Rectangle26_6
		for _, p := range ps {
			b, _ := font.BoundString(p.fr.st.face, visible(p.fr.text))
			if b.Empty() {
				continue
			}
			ink = ink.Union(b)
		}
		if !ink.Empty() {
			top, bottom = ink.Min.Y.Floor(), ink.Max.Y.Ceil()
		}
	}
	thick := max(1, asc/12)
	ulOffset := max(1, desc/3)
	if underline {
		bottom = max(bottom, ulOffset+thick)
	}

	img := raster.New(width, bottom-top, nil)
	baseline := -top
	for _, p := range ps {
		st := p.fr.st
		x0, x1 := p.x.Floor(), (p.x + p.adv).Ceil()
		if st.bg.A != 0 {
			raster.FillRect(img, image.Rect(x0, 0, x1, img.Rect.Dy()), st.bg)
		}
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(st.fg),
			Face: st.face,
			Dot:  fixed.Point26_6{X: p.x, Y: fixed.I(baseline)},
		}
		d.DrawString(visible(p.fr.text))
		if st.underline {
			y := baseline + ulOffset
			raster.FillRect(img, image.Rect(x0, y, x1, y+thick), st.fg)
		}
	}
	return img
}
