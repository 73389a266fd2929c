// Package text renders text to images: plain, wrapped, size-bounded,
// justified, multi-style and lightweight markup.
//
// Fonts are described by [Font] and loaded through a [Loader]; the default
// [FontCache] knows the built-in Go fonts, extra font directories from the
// configuration and the system font paths.
//
// Lines are laid out with greedy word wrapping. Without Options.BeardLine
// each line is cropped to its ink, which makes single labels tight; with it
// every line has the font's full ascent and descent so stacked lines share
// a regular rhythm.
package text

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/raster"
)

// Options configures text rendering.
type Options struct {
	// Font is the font; zero fields come from the configuration.
	Font Font
	// Loader loads faces; nil means DefaultLoader().
	Loader Loader
	// FG is the text color (default black); BG the background (default
	// transparent).
	FG, BG color.Color
	// Padding surrounds the text.
	Padding raster.Insets
	// Align positions lines horizontally: 0 left, 0.5 centre, 1 right.
	Align float64
	// BeardLine gives every line the font's full ascent and descent.
	BeardLine bool
	// MaxWidth wraps lines, padding included; zero disables wrapping.
	MaxWidth int
	// LineSpacing is extra space between lines in pixels.
	LineSpacing int
	// Hyphenator allows words to break across lines.
	Hyphenator Hyphenator
	Config     *config.Config
}

// renderer resolves options once per call and caches faces.
type renderer struct {
	opts   Options
	cfg    *config.Config
	loader Loader
	font   Font
	fg, bg colors.Color
	faces  map[Font]font.Face
}

func newRenderer(opts Options) *renderer {
	cfg := config.Or(opts.Config)
	r := &renderer{
		opts:   opts,
		cfg:    cfg,
		loader: opts.Loader,
		font:   opts.Font.resolve(cfg),
		fg:     colors.Black,
		faces:  make(map[Font]font.Face),
	}
	if r.loader == nil {
		r.loader = DefaultLoader()
	}
	if opts.FG != nil {
		r.fg = colors.Convert(opts.FG)
	}
	if opts.BG != nil {
		r.bg = colors.Convert(opts.BG)
	}
	return r
}

func (r *renderer) face(f Font) (font.Face, error) {
	f = f.resolve(r.cfg)
	if face, ok := r.faces[f]; ok {
		return face, nil
	}
	face, err := r.loader.Face(f)
	if err != nil {
		return nil, err
	}
	r.faces[f] = face
	return face, nil
}

func (r *renderer) style(f Font, fg, bg colors.Color, underline bool) (*style, error) {
	face, err := r.face(f)
	if err != nil {
		return nil, err
	}
	return &style{face: face, fg: fg, bg: bg, underline: underline}, nil
}

// render lays out fragments. When justify is set, every line except the
// last of each paragraph is stretched to the wrap width.
func (r *renderer) render(frags []frag, def *style, justify bool) (*image.NRGBA, error) {
	o := r.opts
	width := 0
	if o.MaxWidth > 0 {
		width = max(1, o.MaxWidth-o.Padding.Horizontal())
	}

	var imgs []image.Image
	for _, p := range paragraphs(frags, def) {
		lines := wrap(p, fixed.I(width), o.Hyphenator)
		for i, l := range lines {
			l.justify = justify && i < len(lines)-1
			if len(imgs) > 0 && o.LineSpacing > 0 {
				imgs = append(imgs, raster.New(0, o.LineSpacing, nil))
			}
			imgs = append(imgs, l.draw(o.BeardLine, width))
		}
	}
	// One alignment, shared by every line.
	col, err := raster.Column(imgs, raster.RowOptions{Align: []float64{o.Align}})
	if err != nil {
		return nil, err
	}
	padded := raster.Pad(col, o.Padding, nil)
	if r.bg.A == 0 {
		return padded, nil
	}
	s := raster.Size(padded)
	out := raster.New(s.X, s.Y, r.bg)
	raster.Paste(out, padded, image.Point{})
	return out, nil
}

// Render draws text. Lines are separated by "\n" and wrapped at
// opts.MaxWidth.
func Render(s string, opts Options) (*image.NRGBA, error) {
	r := newRenderer(opts)
	st, err := r.style(r.font, r.fg, colors.Transparent, false)
	if err != nil {
		return nil, err
	}
	return r.render([]frag{{text: s, st: st}}, st, false)
}

// Bounded draws text at the largest integer size up to maxSize whose
// rendering fits in box. It fails with ARGUMENT_ERROR when even size 1
// does not fit.
func Bounded(s string, box image.Point, maxSize float64, opts Options) (*image.NRGBA, error) {
	hi := int(math.Floor(maxSize))
	if hi < 1 {
		return nil, errors.New(errors.ErrCodeArgument, "maximum font size must be at least 1, got %v", maxSize)
	}
	try := func(size int) (*image.NRGBA, bool, error) {
		o := opts
		o.Font = opts.Font.WithSize(float64(size))
		img, err := Render(s, o)
		if err != nil {
			return nil, false, err
		}
		sz := raster.Size(img)
		return img, sz.X <= box.X && sz.Y <= box.Y, nil
	}
	return search(hi, try, func() error {
		return errors.New(errors.ErrCodeArgument, "text %q does not fit in %dx%d", s, box.X, box.Y)
	})
}

// Justified draws text wrapped at width with every line but the last of a
// paragraph stretched to the full width. The size is the largest integer
// size up to opts.Font.Size whose rendering is at most maxHeight tall;
// maxHeight <= 0 means no limit.
func Justified(s string, width, maxHeight int, opts Options) (*image.NRGBA, error) {
	if width <= 0 {
		return nil, errors.New(errors.ErrCodeArgument, "width must be positive, got %d", width)
	}
	cfg := config.Or(opts.Config)
	hi := int(math.Floor(opts.Font.resolve(cfg).Size))
	try := func(size int) (*image.NRGBA, bool, error) {
		o := opts
		o.Font = opts.Font.WithSize(float64(size))
		o.MaxWidth = width
		r := newRenderer(o)
		st, err := r.style(r.font, r.fg, colors.Transparent, false)
		if err != nil {
			return nil, false, err
		}
		img, err := r.render([]frag{{text: s, st: st}}, st, true)
		if err != nil {
			return nil, false, err
		}
		sz := raster.Size(img)
		fits := sz.X <= width && (maxHeight <= 0 || sz.Y <= maxHeight)
		if fits {
			img = raster.PadTo(img, width, sz.Y, raster.Align{X: opts.Align}, r.bg)
		}
		return img, fits, nil
	}
	if hi < 1 {
		return nil, errors.New(errors.ErrCodeArgument, "font size must be at least 1")
	}
	return search(hi, try, func() error {
		return errors.New(errors.ErrCodeArgument, "text does not fit in width %d and height %d", width, maxHeight)
	})
}

// search finds the largest size in [1, hi] for which try fits, assuming
// fitting is monotonic in size.
func search(hi int, try func(int) (*image.NRGBA, bool, error), tooBig func() error) (*image.NRGBA, error) {
	best, ok, err := try(1)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, tooBig()
	}
	if hi == 1 {
		return best, nil
	}
	img, ok, err := try(hi)
	if err != nil {
		return nil, err
	}
	if ok {
		return img, nil
	}
	lo := 1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		img, ok, err := try(mid)
		if err != nil {
			return nil, err
		}
		if ok {
			lo, best = mid, img
		} else {
			hi = mid
		}
	}
	return best, nil
}

func broadcast[T any](name string, v []T, n int, def T) ([]T, error) {
	out := make([]T, n)
	switch len(v) {
	case 0:
		for i := range out {
			out[i] = def
		}
	case 1:
		for i := range out {
			out[i] = v[0]
		}
	case n:
		copy(out, v)
	default:
		return nil, errors.New(errors.ErrCodeArgument, "got %d %s for %d texts", len(v), name, n)
	}
	return out, nil
}

// Multi draws several texts in sequence, each with its own font and
// colors, sharing one baseline. fonts, fgs and bgs hold either one entry
// per text, a single entry applied to all, or none for the defaults from
// opts.
func Multi(texts []string, fonts []Font, fgs, bgs []color.Color, opts Options) (*image.NRGBA, error) {
	n := len(texts)
	r := newRenderer(opts)
	fs, err := broadcast("fonts", fonts, n, r.font)
	if err != nil {
		return nil, err
	}
	fgc, err := broadcast("foreground colors", fgs, n, color.Color(r.fg))
	if err != nil {
		return nil, err
	}
	bgc, err := broadcast[color.Color]("background colors", bgs, n, nil)
	if err != nil {
		return nil, err
	}

	def, err := r.style(r.font, r.fg, colors.Transparent, false)
	if err != nil {
		return nil, err
	}
	frags := make([]frag, 0, n)
	for i, s := range texts {
		fg, bg := colors.Black, colors.Transparent
		if fgc[i] != nil {
			fg = colors.Convert(fgc[i])
		}
		if bgc[i] != nil {
			bg = colors.Convert(bgc[i])
		}
		st, err := r.style(fs[i], fg, bg, false)
		if err != nil {
			return nil, err
		}
		frags = append(frags, frag{text: s, st: st})
	}
	return r.render(frags, def, false)
}
