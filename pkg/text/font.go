package text

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/fonts"
)

// Font describes a font: family, size in pixels and style.
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// WithSize returns f at another size.
func (f Font) WithSize(size float64) Font {
	f.Size = size
	return f
}

// WithStyle returns f with the given style.
func (f Font) WithStyle(bold, italic bool) Font {
	f.Bold, f.Italic = bold, italic
	return f
}

// Bolded returns the bold variant of f.
func (f Font) Bolded() Font { return f.WithStyle(true, f.Italic) }

// Italicized returns the italic variant of f.
func (f Font) Italicized() Font { return f.WithStyle(f.Bold, true) }

// resolve fills unset fields from the configuration.
func (f Font) resolve(cfg *config.Config) Font {
	if f.Family == "" {
		f.Family = cfg.Font.Family
		if f.Family == "" {
			f.Family = fonts.FontFamily
		}
	}
	if f.Size == 0 {
		f.Size = cfg.Font.Size
		if f.Size == 0 {
			f.Size = 16
		}
	}
	return f
}

// Loader creates font faces.
type Loader interface {
	Face(f Font) (font.Face, error)
}

// fontKey identifies a parsed font by family and style.
type fontKey struct {
	family string
	bold   bool
	italic bool
}

// FontCache loads fonts by family name and caches the parsed result.
// Built-in families come from package fonts; other families are looked up
// in the extra directories, then in the system font directories. Unknown
// families fall back to the built-in Go font.
//
// Faces are not safe for concurrent use, so Face returns a new one on every
// call; only the parsed fonts are shared.
type FontCache struct {
	mu     sync.RWMutex
	dirs   []string
	fonts  map[fontKey]*truetype.Font
	logger *log.Logger
}

// NewFontCache creates a FontCache searching dirs before the system paths.
func NewFontCache(dirs []string, logger *log.Logger) *FontCache {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FontCache{
		dirs:   append([]string(nil), dirs...),
		fonts:  make(map[fontKey]*truetype.Font),
		logger: logger,
	}
}

var (
	defaultLoader     *FontCache
	defaultLoaderOnce sync.Once
)

// DefaultLoader returns the process-wide FontCache, configured from
// config.Current() on first use.
func DefaultLoader() *FontCache {
	defaultLoaderOnce.Do(func() {
		cfg := config.Current()
		defaultLoader = NewFontCache(cfg.FontDirs, cfg.Log())
	})
	return defaultLoader
}

// Face returns a new face for f. The size must be positive.
func (c *FontCache) Face(f Font) (font.Face, error) {
	if f.Size <= 0 {
		return nil, errors.New(errors.ErrCodeArgument, "font size must be positive, got %v", f.Size)
	}
	tt, err := c.Font(f.Family, f.Bold, f.Italic)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(tt, &truetype.Options{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// Font returns the parsed font for a family and style.
func (c *FontCache) Font(family string, bold, italic bool) (*truetype.Font, error) {
	key := fontKey{family: strings.ToLower(family), bold: bold, italic: italic}

	c.mu.RLock()
	if f, ok := c.fonts[key]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	f, err := c.load(family, bold, italic)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.fonts[key] = f
	c.mu.Unlock()
	return f, nil
}

func (c *FontCache) load(family string, bold, italic bool) (*truetype.Font, error) {
	if f, ok := fonts.Parsed(family, bold, italic); ok {
		return f, nil
	}

	path := c.find(family, bold, italic)
	if path == "" {
		c.logger.Debug("font not found, using built-in", "family", family, "bold", bold, "italic", italic)
		f, _ := fonts.Parsed(fonts.FontFamily, bold, italic)
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not read font %s", path)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "could not parse font %s", path)
	}
	c.logger.Debug("loaded font", "family", family, "path", path)
	return f, nil
}

// find returns the path of a font file for family, or "".
func (c *FontCache) find(family string, bold, italic bool) string {
	if strings.EqualFold(filepath.Ext(family), ".ttf") {
		if _, err := os.Stat(family); err == nil {
			return family
		}
	}
	for _, name := range candidates(family, bold, italic) {
		for _, dir := range c.dirs {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	for _, name := range candidates(family, bold, italic) {
		if path, err := findfont.Find(name); err == nil {
			return path
		}
	}
	return ""
}

// candidates lists plausible file names for a family and style, covering
// the "Family-Bold.ttf", "Family Bold.ttf" and Windows "familybd.ttf"
// conventions.
func candidates(family string, bold, italic bool) []string {
	joined := strings.ReplaceAll(family, " ", "")
	var suffixes []string
	switch {
	case bold && italic:
		suffixes = []string{"-BoldItalic", " Bold Italic", "bi", "z"}
	case bold:
		suffixes = []string{"-Bold", " Bold", "bd", "b"}
	case italic:
		suffixes = []string{"-Italic", " Italic", "i"}
	default:
		suffixes = []string{"", "-Regular", " Regular"}
	}
	var out []string
	for _, s := range suffixes {
		for _, base := range []string{family, joined, strings.ToLower(joined)} {
			if name := base + s + ".ttf"; !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}
