package chart

import (
	"encoding/csv"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/raster"
)

// Reserved region names.
const (
	Sea     = "Sea"
	Borders = "Borders"
)

// Lookup names the regions of an index map by color.
type Lookup map[colors.Color]string

// Colors returns the colors of the named region.
func (l Lookup) Colors(name string) []colors.Color {
	var out []colors.Color
	for c, n := range l {
		if n == name {
			out = append(out, c)
		}
	}
	return out
}

// LookupPath returns the lookup file stored next to an index map: the same
// path with a .csv extension, or .yaml/.yml when only those exist.
func LookupPath(indexPath string) string {
	base := strings.TrimSuffix(indexPath, filepath.Ext(indexPath))
	for _, ext := range []string{".yaml", ".yml"} {
		if _, err := os.Stat(base + ext); err == nil {
			if _, err := os.Stat(base + ".csv"); err != nil {
				return base + ext
			}
		}
	}
	return base + ".csv"
}

// LoadLookup reads a lookup file. CSV files hold color,name rows with an
// optional header; YAML files map colors to names.
func LoadLookup(path string) (Lookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not open lookup %s", path)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAMLLookup(f, path)
	}
	return decodeCSVLookup(f, path)
}

func decodeCSVLookup(r io.Reader, path string) (Lookup, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	l := Lookup{}
	for line := 0; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not read lookup %s", path)
		}
		if len(rec) < 2 {
			return nil, errors.New(errors.ErrCodeDataShape, "%s:%d: want color,name", path, line+1)
		}
		c, err := colors.Parse(strings.TrimSpace(rec[0]))
		if err != nil {
			if line == 0 {
				continue
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s:%d", path, line+1)
		}
		if err := l.add(c, strings.TrimSpace(rec[1])); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func decodeYAMLLookup(r io.Reader, path string) (Lookup, error) {
	var raw map[string]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not read lookup %s", path)
	}
	l := Lookup{}
	for k, name := range raw {
		c, err := colors.Parse(k)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", path)
		}
		if err := l.add(c, name); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l Lookup) add(c colors.Color, name string) error {
	if prev, ok := l[c]; ok && prev != name {
		return errors.New(errors.ErrCodeDataShape, "color %s names both %q and %q", c, prev, name)
	}
	l[c] = name
	return nil
}

// MapOptions configures MapChart and RenderMap.
type MapOptions struct {
	// Lookup overrides the lookup file next to the index map.
	Lookup Lookup
	// Fill returns a region's fill, or nil to leave it alone.
	Fill func(name string) raster.Fill
	// Label returns an image centred on a region's centroid, given the
	// region's bounding box size. nil images are skipped.
	Label func(name string, w, h int) image.Image
	// ResizePatterns stretches image fills to each region's bounding box.
	ResizePatterns bool
	// Background fills Sea and LineColor fills Borders unless Fill says
	// otherwise. They default to white and black.
	Background, LineColor color.Color
	// DefaultFill paints named regions that have no fill.
	DefaultFill raster.Fill
	// Regions lists names the caller expects; missing ones are reported
	// through Warn and the log.
	Regions []string
	Warn    func(error)
	Config  *config.Config
}

// region accumulates the pixels of one index color.
type region struct {
	name       string
	color      colors.Color
	count      int
	sumX, sumY int
	bounds     image.Rectangle
	paint      *image.NRGBA
}

func (r *region) add(x, y int) {
	p := image.Rect(x, y, x+1, y+1)
	if r.count == 0 {
		r.bounds = p
	} else {
		r.bounds = r.bounds.Union(p)
	}
	r.count++
	r.sumX += x
	r.sumY += y
}

func (r *region) centroid() (float64, float64) {
	n := float64(r.count)
	return float64(r.sumX)/n + 0.5, float64(r.sumY)/n + 0.5
}

// MapChart loads the index map at indexPath with its lookup and renders it.
func MapChart(indexPath string, opts MapOptions) (*image.NRGBA, error) {
	index, err := raster.Load(indexPath)
	if err != nil {
		return nil, err
	}
	lookup := opts.Lookup
	if lookup == nil {
		if lookup, err = LoadLookup(LookupPath(indexPath)); err != nil {
			return nil, err
		}
	}
	return RenderMap(index, lookup, opts)
}

// RenderMap repaints the regions of an index map. The result has the
// index map's size. Transparent pixels and colors missing from the lookup
// are kept.
func RenderMap(index image.Image, lookup Lookup, opts MapOptions) (*image.NRGBA, error) {
	if index == nil {
		return nil, errors.New(errors.ErrCodeArgument, "map chart needs an index image")
	}
	out := raster.Clone(index)
	b := out.Rect

	byColor := map[colors.Color]*region{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := raster.At(out, x, y)
			if c.A == 0 {
				continue
			}
			r, ok := byColor[c]
			if !ok {
				name, named := lookup[c]
				if !named {
					continue
				}
				r = &region{name: name, color: c}
				byColor[c] = r
			}
			r.add(x, y)
		}
	}

	regions := make([]*region, 0, len(byColor))
	present := map[string]bool{}
	for _, r := range byColor {
		regions = append(regions, r)
		present[r.name] = true
	}
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].name != regions[j].name {
			return regions[i].name < regions[j].name
		}
		return regions[i].color.Hex() < regions[j].color.Hex()
	})

	logger := config.Or(opts.Config).Log()
	for _, name := range opts.Regions {
		if present[name] {
			continue
		}
		err := errors.New(errors.ErrCodeUnknownRegion, "region %q is not in the map", name)
		logger.Warn("unknown region", "region", name)
		if opts.Warn != nil {
			opts.Warn(err)
		}
	}

	for _, r := range regions {
		f := mapFill(r.name, opts)
		if f == nil {
			continue
		}
		r.paint = raster.PaintFill(f, r.bounds.Size())
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := raster.At(out, x, y)
			if c.A == 0 {
				continue
			}
			r := byColor[c]
			if r == nil || r.paint == nil {
				continue
			}
			out.SetNRGBA(x, y, r.paint.NRGBAAt(x-r.bounds.Min.X, y-r.bounds.Min.Y))
		}
	}

	if opts.Label != nil {
		for _, r := range regions {
			if r.name == Sea || r.name == Borders {
				continue
			}
			size := r.bounds.Size()
			img := opts.Label(r.name, size.X, size.Y)
			if img == nil {
				continue
			}
			cx, cy := r.centroid()
			s := raster.Size(img)
			pos := image.Pt(int(math.Round(cx-float64(s.X)/2)), int(math.Round(cy-float64(s.Y)/2)))
			raster.Paste(out, img, pos)
		}
	}
	return out, nil
}

// mapFill resolves the fill of a region, falling back to the reserved
// defaults and DefaultFill.
func mapFill(name string, opts MapOptions) raster.Fill {
	var f raster.Fill
	if opts.Fill != nil {
		f = opts.Fill(name)
	}
	if f == nil {
		switch name {
		case Sea:
			f = raster.Solid(orColor(opts.Background, colors.White))
		case Borders:
			f = raster.Solid(orColor(opts.LineColor, colors.Black))
		default:
			f = opts.DefaultFill
		}
	}
	if opts.ResizePatterns {
		switch x := f.(type) {
		case raster.ImageFill:
			x.Stretch = true
			return x
		case *raster.ImageFill:
			return raster.ImageFill{Image: x.Image, Stretch: true}
		}
	}
	return f
}

func orColor(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}
