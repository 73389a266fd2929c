package cli

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/chartkit/pkg/calendar"
	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/observability"
	"github.com/matzehuels/chartkit/pkg/raster"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const barDescription = `kind = "bar"

[bar]
data = "data.csv"
bar_width = 10
chart_length = 100
ymax = 5
colors = ["red", "blue"]
`

func TestRenderBar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "year,a,b\n2000,3,1\n2001,1,2\n")
	path := writeFile(t, dir, "chart.toml", barDescription)

	if _, err := run(t, "render", path); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	img, err := raster.Load(filepath.Join(dir, "chart.png"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if got := raster.Size(img); got != image.Pt(40, 100) {
		t.Errorf("got size %v, want 40x100", got)
	}
	if got := raster.At(img, 5, 99); got != colors.RGB(255, 0, 0) {
		t.Errorf("first bar = %v, want red", got)
	}
}

func TestRenderOutputFlag(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "year,a\n2000,3\n")
	path := writeFile(t, dir, "chart.toml", barDescription)
	out := filepath.Join(dir, "out.jpg")

	if _, err := run(t, "render", path, "-o", out); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRenderFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "year,a,b\n2000,3\n")
	path := writeFile(t, dir, "chart.toml", barDescription)

	_, err := run(t, "render", path)
	if !errors.Is(err, errors.ErrCodeDataShape) {
		t.Fatalf("render error = %v, want DATA_SHAPE", err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") || strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("unexpected output %s", e.Name())
		}
	}
}

type recordingRenderHooks struct {
	kinds    []string
	width    int
	height   int
	complete int
	err      error
}

func (h *recordingRenderHooks) OnRenderStart(_ context.Context, kind string) {
	h.kinds = append(h.kinds, kind)
}

func (h *recordingRenderHooks) OnRenderComplete(_ context.Context, _ string, w, hgt int, _ time.Duration, err error) {
	h.complete++
	h.width, h.height, h.err = w, hgt, err
}

func TestRenderEmitsHooks(t *testing.T) {
	hooks := &recordingRenderHooks{}
	observability.SetRenderHooks(hooks)
	t.Cleanup(observability.Reset)

	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "year,a,b\n2000,3,1\n2001,1,2\n")
	path := writeFile(t, dir, "chart.toml", barDescription)
	if _, err := run(t, "render", path); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(hooks.kinds) != 1 || hooks.kinds[0] != kindBar || hooks.complete != 1 {
		t.Fatalf("hooks saw %v starts and %d completions", hooks.kinds, hooks.complete)
	}
	if hooks.width != 40 || hooks.height != 100 || hooks.err != nil {
		t.Errorf("completion = %dx%d, %v", hooks.width, hooks.height, hooks.err)
	}
}

func TestRenderMap(t *testing.T) {
	dir := t.TempDir()
	index := raster.New(20, 10, colors.White)
	raster.FillRect(index, image.Rect(0, 0, 10, 10), colors.RGB(255, 0, 0))
	raster.FillRect(index, image.Rect(10, 0, 20, 10), colors.RGB(0, 0, 255))
	if err := raster.Save(index, filepath.Join(dir, "index.png"), 0); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "index.csv", "color,name\n#ff0000,A\n#0000ff,B\n")
	path := writeFile(t, dir, "map.yaml", `kind: map
output: rendered.png
map:
  index: index.png
  fills:
    A: "#00ff00"
    Atlantis: black
`)

	if _, err := run(t, "render", path); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	img, err := raster.Load(filepath.Join(dir, "rendered.png"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if got := raster.At(img, 5, 5); got != colors.RGB(0, 255, 0) {
		t.Errorf("A = %v, want green", got)
	}
	if got := raster.At(img, 15, 5); got != colors.RGB(0, 0, 255) {
		t.Errorf("B = %v, want its index color", got)
	}
}

func TestLoadDescription(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		data    string
		wantErr bool
	}{
		{"toml month", "m.toml", "kind = 'month'\n[month]\nyear = 2021\nmonth = 2\n", false},
		{"yaml legend", "l.yml", "kind: legend\nlegend:\n  colors: [red]\n  labels: [A]\n", false},
		{"unknown kind", "x.toml", "kind = 'pie'\n", true},
		{"missing section", "x2.toml", "kind = 'bar'\n", true},
		{"unknown toml key", "x3.toml", "kind = 'month'\nsize = 3\n[month]\n", true},
		{"unknown yaml key", "x4.yaml", "kind: month\nmonth:\n  colour: red\n", true},
		{"bad extension", "x.json", "{}", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.data)
			d, err := loadDescription(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadDescription() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && d.dir != dir {
				t.Errorf("dir = %q, want %q", d.dir, dir)
			}
		})
	}
}

func TestDecodeTable(t *testing.T) {
	table, err := decodeTable(strings.NewReader("year, a, b\n2000, 1, 2.5\n2001, -1, 0\n"), "t.csv")
	if err != nil {
		t.Fatalf("decodeTable() failed: %v", err)
	}
	if len(table.Rows) != 2 || table.Rows[1] != "2001" || table.Columns[1] != "b" {
		t.Errorf("names = %v / %v", table.Rows, table.Columns)
	}
	if table.Values[0][1] != 2.5 || table.Values[1][0] != -1 {
		t.Errorf("values = %v", table.Values)
	}

	for _, bad := range []string{"year,a\n", "year,a\n2000,x\n", "year,a,b\n2000,1\n"} {
		if _, err := decodeTable(strings.NewReader(bad), "t.csv"); !errors.Is(err, errors.ErrCodeDataShape) {
			t.Errorf("decodeTable(%q) error = %v, want DATA_SHAPE", bad, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("1582-10-15")
	if err != nil || d != (calendar.Date{Year: 1582, Month: 10, Day: 15}) {
		t.Errorf("parseDate() = %v, %v", d, err)
	}
	if _, err := parseDate("yesterday"); err == nil {
		t.Error("expected an error")
	}
}

func TestParseCalendar(t *testing.T) {
	if cal, err := parseCalendar("Julian"); err != nil || cal.Name() != calendar.Julian.Name() {
		t.Errorf("parseCalendar(Julian) = %v, %v", cal, err)
	}
	if _, err := parseCalendar("mayan"); err == nil {
		t.Error("expected an error")
	}
}

func TestOutputPath(t *testing.T) {
	d := &description{dir: "/charts"}
	if got := outputPath("/charts/a.toml", "", d); got != "/charts/a.png" {
		t.Errorf("default output = %q", got)
	}
	d.Output = "out/a.jpg"
	if got := outputPath("/charts/a.toml", "", d); got != filepath.Join("/charts", "out/a.jpg") {
		t.Errorf("description output = %q", got)
	}
	if got := outputPath("/charts/a.toml", "x.png", d); got != "x.png" {
		t.Errorf("flag output = %q", got)
	}
}
