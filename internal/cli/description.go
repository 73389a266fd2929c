package cli

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/chartkit/pkg/calendar"
	"github.com/matzehuels/chartkit/pkg/chart"
	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/legend"
	"github.com/matzehuels/chartkit/pkg/raster"
	"github.com/matzehuels/chartkit/pkg/text"
)

// Chart kinds understood by the render command.
const (
	kindBar    = "bar"
	kindMap    = "map"
	kindLegend = "legend"
	kindMonth  = "month"
)

// description is a chart read from a TOML or YAML file. Relative paths in
// it are resolved against the file's directory.
type description struct {
	Kind   string   `toml:"kind" yaml:"kind"`
	Output string   `toml:"output" yaml:"output"`
	Font   fontDesc `toml:"font" yaml:"font"`
	FG     string   `toml:"fg" yaml:"fg"`
	BG     string   `toml:"bg" yaml:"bg"`

	Bar    *barDesc    `toml:"bar" yaml:"bar"`
	Map    *mapDesc    `toml:"map" yaml:"map"`
	Legend *legendDesc `toml:"legend" yaml:"legend"`
	Month  *monthDesc  `toml:"month" yaml:"month"`

	dir string
}

type fontDesc struct {
	Family string  `toml:"family" yaml:"family"`
	Size   float64 `toml:"size" yaml:"size"`
	Bold   bool    `toml:"bold" yaml:"bold"`
}

type barDesc struct {
	Data          string   `toml:"data" yaml:"data"`
	Type          string   `toml:"type" yaml:"type"`
	Horizontal    bool     `toml:"horizontal" yaml:"horizontal"`
	BarWidth      int      `toml:"bar_width" yaml:"bar_width"`
	ChartLength   int      `toml:"chart_length" yaml:"chart_length"`
	Spacing       int      `toml:"spacing" yaml:"spacing"`
	Colors        []string `toml:"colors" yaml:"colors"`
	YMin          *float64 `toml:"ymin" yaml:"ymin"`
	YMax          *float64 `toml:"ymax" yaml:"ymax"`
	GridInterval  float64  `toml:"grid_interval" yaml:"grid_interval"`
	TickInterval  float64  `toml:"tick_interval" yaml:"tick_interval"`
	LabelInterval float64  `toml:"label_interval" yaml:"label_interval"`
	LabelFormat   string   `toml:"label_format" yaml:"label_format"`
	ValueLabels   string   `toml:"value_labels" yaml:"value_labels"`
	ValueFormat   string   `toml:"value_format" yaml:"value_format"`
	RowLabels     string   `toml:"row_labels" yaml:"row_labels"`
	XLabel        string   `toml:"x_label" yaml:"x_label"`
	YLabel        string   `toml:"y_label" yaml:"y_label"`
	Legend        *placed  `toml:"legend" yaml:"legend"`
}

type placed struct {
	X float64 `toml:"x" yaml:"x"`
	Y float64 `toml:"y" yaml:"y"`
}

type mapDesc struct {
	Index          string            `toml:"index" yaml:"index"`
	Lookup         string            `toml:"lookup" yaml:"lookup"`
	Background     string            `toml:"background" yaml:"background"`
	LineColor      string            `toml:"line_color" yaml:"line_color"`
	DefaultFill    string            `toml:"default_fill" yaml:"default_fill"`
	ResizePatterns bool              `toml:"resize_patterns" yaml:"resize_patterns"`
	Labels         bool              `toml:"labels" yaml:"labels"`
	Fills          map[string]string `toml:"fills" yaml:"fills"`
}

type legendDesc struct {
	Colors     []string `toml:"colors" yaml:"colors"`
	Labels     []string `toml:"labels" yaml:"labels"`
	Header     string   `toml:"header" yaml:"header"`
	Footer     string   `toml:"footer" yaml:"footer"`
	BoxSize    int      `toml:"box_size" yaml:"box_size"`
	Padding    int      `toml:"padding" yaml:"padding"`
	Spacing    int      `toml:"spacing" yaml:"spacing"`
	RowSpacing int      `toml:"row_spacing" yaml:"row_spacing"`
	NoBorder   bool     `toml:"no_border" yaml:"no_border"`
	NoPadding  bool     `toml:"no_padding" yaml:"no_padding"`
}

type monthDesc struct {
	Year          int               `toml:"year" yaml:"year"`
	Month         int               `toml:"month" yaml:"month"`
	Calendar      string            `toml:"calendar" yaml:"calendar"`
	CellWidth     int               `toml:"cell_width" yaml:"cell_width"`
	CellHeight    int               `toml:"cell_height" yaml:"cell_height"`
	DayStart      int               `toml:"day_start" yaml:"day_start"`
	WeekdayLabels bool              `toml:"weekday_labels" yaml:"weekday_labels"`
	Title         string            `toml:"title" yaml:"title"`
	TitleBG       string            `toml:"title_bg" yaml:"title_bg"`
	Highlight     map[string]string `toml:"highlight" yaml:"highlight"`
}

// loadDescription reads a chart description, choosing the format by
// extension.
func loadDescription(path string) (*description, error) {
	d := &description{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, d)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not read %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not open %s", path)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not read %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "chart descriptions must be .toml, .yaml or .yml, got %s", path)
	}
	d.dir = filepath.Dir(path)
	return d, d.validate()
}

func (d *description) validate() error {
	sections := map[string]bool{kindBar: d.Bar != nil, kindMap: d.Map != nil, kindLegend: d.Legend != nil, kindMonth: d.Month != nil}
	has, ok := sections[d.Kind]
	switch {
	case !ok:
		return errors.New(errors.ErrCodeInvalidInput, "unknown chart kind %q", d.Kind)
	case !has:
		return errors.New(errors.ErrCodeInvalidInput, "%s chart needs a [%s] section", d.Kind, d.Kind)
	}
	return nil
}

// path resolves p against the description's directory.
func (d *description) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.dir, p)
}

func (d *description) font() text.Font {
	return text.Font{Family: d.Font.Family, Size: d.Font.Size, Bold: d.Font.Bold}
}

// render draws the described chart.
func (d *description) render(cfg *config.Config) (*image.NRGBA, error) {
	fg, err := optColor(d.FG)
	if err != nil {
		return nil, err
	}
	bg, err := optColor(d.BG)
	if err != nil {
		return nil, err
	}
	switch d.Kind {
	case kindBar:
		return d.renderBar(fg, bg, cfg)
	case kindMap:
		return d.renderMap(fg, cfg)
	case kindLegend:
		return d.renderLegend(fg, bg, cfg)
	case kindMonth:
		return d.renderMonth(fg, bg, cfg)
	}
	return nil, d.validate()
}

func (d *description) renderBar(fg, bg color.Color, cfg *config.Config) (*image.NRGBA, error) {
	b := d.Bar
	table, err := readTable(d.path(b.Data))
	if err != nil {
		return nil, err
	}
	typ := chart.Grouped
	if b.Type != "" {
		if typ, err = chart.ParseBarType(b.Type); err != nil {
			return nil, err
		}
	}
	cs, err := parseColors(b.Colors)
	if err != nil {
		return nil, err
	}
	opts := chart.BarOptions{
		BarWidth:      b.BarWidth,
		ChartLength:   b.ChartLength,
		Type:          typ,
		Horizontal:    b.Horizontal,
		Spacing:       b.Spacing,
		Colors:        chart.Colors(cs...),
		YMin:          b.YMin,
		YMax:          b.YMax,
		GridInterval:  b.GridInterval,
		TickInterval:  b.TickInterval,
		LabelInterval: b.LabelInterval,
		LabelFormat:   sprintf(b.LabelFormat),
		XLabel:        b.XLabel,
		YLabel:        b.YLabel,
		Font:          d.font(),
		FG:            fg,
		BG:            bg,
		Config:        cfg,
	}
	if b.ValueLabels != "" {
		pos, err := chart.ParsePosition(b.ValueLabels)
		if err != nil {
			return nil, err
		}
		opts.CellLabels = map[chart.Position]chart.CellLabelFunc{pos: chart.ValueLabels(sprintf(b.ValueFormat))}
	}
	if b.RowLabels != "" {
		pos, err := chart.ParsePosition(b.RowLabels)
		if err != nil {
			return nil, err
		}
		opts.RowLabels = map[chart.Position]chart.RowLabelFunc{pos: chart.RowNames(table)}
	}
	if b.Legend != nil {
		opts.Legend = &chart.LegendOptions{X: b.Legend.X, Y: b.Legend.Y, Options: legend.Options{Padding: 2, Spacing: 4}}
	}
	return chart.BarChart(table, opts)
}

func (d *description) renderMap(fg color.Color, cfg *config.Config) (*image.NRGBA, error) {
	m := d.Map
	opts := chart.MapOptions{ResizePatterns: m.ResizePatterns, Config: cfg}
	var err error
	if opts.Background, err = optColor(m.Background); err != nil {
		return nil, err
	}
	if opts.LineColor, err = optColor(m.LineColor); err != nil {
		return nil, err
	}
	if m.DefaultFill != "" {
		if opts.DefaultFill, err = d.fill(m.DefaultFill); err != nil {
			return nil, err
		}
	}
	if m.Lookup != "" {
		if opts.Lookup, err = chart.LoadLookup(d.path(m.Lookup)); err != nil {
			return nil, err
		}
	}
	fills := make(map[string]raster.Fill, len(m.Fills))
	for name, spec := range m.Fills {
		f, err := d.fill(spec)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "fill for %s", name)
		}
		fills[name] = f
		opts.Regions = append(opts.Regions, name)
	}
	opts.Fill = func(name string) raster.Fill { return fills[name] }
	if m.Labels {
		topts := text.Options{Font: d.font(), FG: fg, Config: cfg}
		size := d.Font.Size
		if size == 0 {
			size = config.Or(cfg).Font.Size
		}
		opts.Label = func(name string, w, h int) image.Image {
			img, err := text.Bounded(name, image.Pt(w, h), size, topts)
			if err != nil {
				return nil
			}
			return img
		}
	}
	return chart.MapChart(d.path(m.Index), opts)
}

// fill parses a fill: an image file becomes a pattern, anything else a
// color.
func (d *description) fill(spec string) (raster.Fill, error) {
	if _, err := raster.FormatOf(spec); err == nil {
		img, err := raster.Load(d.path(spec))
		if err != nil {
			return nil, err
		}
		return raster.ImageFill{Image: img}, nil
	}
	c, err := colors.Parse(spec)
	if err != nil {
		return nil, err
	}
	return raster.Solid(c), nil
}

func (d *description) renderLegend(fg, bg color.Color, cfg *config.Config) (*image.NRGBA, error) {
	l := d.Legend
	cs, err := parseColors(l.Colors)
	if err != nil {
		return nil, err
	}
	swatches := make([]legend.Swatch, len(cs))
	for i, c := range cs {
		swatches[i] = legend.ColorSwatch(c)
	}
	opts := legend.Options{
		Font:       d.font(),
		FG:         fg,
		BG:         bg,
		Header:     l.Header,
		Footer:     l.Footer,
		NoBorder:   l.NoBorder,
		Padding:    l.Padding,
		NoPadding:  l.NoPadding,
		Spacing:    l.Spacing,
		RowSpacing: l.RowSpacing,
		Config:     cfg,
	}
	if l.BoxSize > 0 {
		opts.BoxSizes = []legend.BoxSize{legend.Square(l.BoxSize)}
	}
	return legend.Generate(swatches, l.Labels, opts)
}

func (d *description) renderMonth(fg, bg color.Color, cfg *config.Config) (*image.NRGBA, error) {
	m := d.Month
	cal, err := parseCalendar(m.Calendar)
	if err != nil {
		return nil, err
	}
	highlight := make(map[calendar.Date]raster.Fill, len(m.Highlight))
	for day, spec := range m.Highlight {
		date, err := parseDate(day)
		if err != nil {
			return nil, err
		}
		c, err := colors.Parse(spec)
		if err != nil {
			return nil, err
		}
		highlight[date] = raster.Solid(c)
	}
	titleBG, err := optColor(m.TitleBG)
	if err != nil {
		return nil, err
	}
	return chart.MonthChart(calendar.Date{Year: m.Year, Month: m.Month, Day: 1}, chart.MonthOptions{
		CellWidth:     m.CellWidth,
		CellHeight:    m.CellHeight,
		DayStart:      m.DayStart,
		DayBG:         func(d calendar.Date) raster.Fill { return highlight[d] },
		MonthLabel:    m.Title,
		MonthBG:       titleBG,
		WeekdayLabels: m.WeekdayLabels,
		Font:          d.font(),
		FG:            fg,
		BG:            bg,
		Config:        cfg,
		Calendar:      cal,
	})
}

// sprintf turns a printf verb into a value formatter; empty means the
// chart's default.
func sprintf(format string) func(float64) string {
	if format == "" {
		return nil
	}
	return func(v float64) string { return fmt.Sprintf(format, v) }
}

func parseCalendar(name string) (calendar.Calendar, error) {
	switch strings.ToLower(name) {
	case "", "gregorian":
		return calendar.Gregorian, nil
	case "julian":
		return calendar.Julian, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown calendar %q", name)
}

// parseDate reads a YYYY-MM-DD date.
func parseDate(s string) (calendar.Date, error) {
	var d calendar.Date
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &d.Year, &d.Month, &d.Day); err != nil {
		return d, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid date %q", s)
	}
	return d, nil
}

func optColor(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	c, err := colors.Parse(s)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func parseColors(specs []string) ([]color.Color, error) {
	out := make([]color.Color, len(specs))
	for i, s := range specs {
		c, err := colors.Parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// readTable reads a CSV table. The first row names the columns after a
// corner cell and the first column names the rows.
func readTable(path string) (chart.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return chart.Table{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not open %s", path)
	}
	defer f.Close()
	return decodeTable(f, path)
}

func decodeTable(r io.Reader, name string) (chart.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return chart.Table{}, errors.Wrap(errors.ErrCodeDataShape, err, "could not read %s", name)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return chart.Table{}, errors.New(errors.ErrCodeDataShape, "%s needs a header row and at least one data row", name)
	}
	t := chart.Table{Columns: records[0][1:]}
	for i, rec := range records[1:] {
		t.Rows = append(t.Rows, rec[0])
		row := make([]float64, len(rec)-1)
		for j, cell := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return chart.Table{}, errors.Wrap(errors.ErrCodeDataShape, err, "%s: row %d column %d", name, i+2, j+2)
			}
			row[j] = v
		}
		t.Values = append(t.Values, row)
	}
	return t, t.Validate()
}
