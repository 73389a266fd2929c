package raster

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/errors"
)

var (
	red   = colors.RGB(255, 0, 0)
	green = colors.RGB(0, 255, 0)
	blue  = colors.RGB(0, 0, 255)
)

func solid(w, h int, c colors.Color) *image.NRGBA { return New(w, h, c) }

func TestNew(t *testing.T) {
	img := New(3, 2, red)
	if Size(img) != image.Pt(3, 2) {
		t.Fatalf("Size = %v, want 3x2", Size(img))
	}
	if At(img, 2, 1) != red {
		t.Errorf("At(2,1) = %v, want red", At(img, 2, 1))
	}
	if At(New(1, 1, nil), 0, 0) != colors.Transparent {
		t.Error("nil background is not transparent")
	}
}

func TestCloneNormalizesOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 8, 7))
	src.SetNRGBA(5, 5, red.NRGBA())
	got := Clone(src)
	if got.Rect.Min != (image.Point{}) || Size(got) != image.Pt(3, 2) {
		t.Fatalf("Clone bounds = %v", got.Rect)
	}
	if At(got, 0, 0) != red {
		t.Errorf("At(0,0) = %v, want red", At(got, 0, 0))
	}
}

func TestPasteExactOverTransparent(t *testing.T) {
	src := New(1, 1, colors.RGBA(200, 100, 50, 3))
	dst := New(1, 1, nil)
	Paste(dst, src, image.Point{})
	if At(dst, 0, 0) != colors.RGBA(200, 100, 50, 3) {
		t.Errorf("paste over transparent = %v", At(dst, 0, 0))
	}
}

func TestRow(t *testing.T) {
	a := solid(2, 4, red)
	b := solid(3, 2, blue)
	got, err := Row([]image.Image{a, b}, RowOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if Size(got) != image.Pt(5, 4) {
		t.Fatalf("Size = %v, want 5x4", Size(got))
	}
	// b is centred vertically: rows 1 and 2.
	if At(got, 2, 0) != colors.Transparent || At(got, 2, 1) != blue || At(got, 4, 2) != blue || At(got, 2, 3) != colors.Transparent {
		t.Error("second image not centred")
	}

	top, err := Row([]image.Image{a, b}, RowOptions{Align: []float64{0}})
	if err != nil {
		t.Fatal(err)
	}
	if At(top, 2, 0) != blue || At(top, 2, 2) != colors.Transparent {
		t.Error("Align 0 did not top-align")
	}
}

func TestRowPadding(t *testing.T) {
	got, err := Row([]image.Image{solid(2, 2, red), nil, solid(2, 2, blue)}, RowOptions{Padding: image.Pt(1, 2), BG: green})
	if err != nil {
		t.Fatal(err)
	}
	// Each cell is its image plus padding on both sides; nil is zero-size.
	if want := image.Pt(4+2+4, 6); Size(got) != want {
		t.Fatalf("Size = %v, want %v", Size(got), want)
	}
	if At(got, 0, 0) != green || At(got, 1, 2) != red || At(got, 7, 2) != blue {
		t.Error("unexpected pixel layout")
	}
}

func TestRowIdempotent(t *testing.T) {
	s := []image.Image{
		solid(2, 3, colors.RGBA(10, 20, 30, 40)),
		solid(4, 1, colors.RGBA(200, 100, 50, 3)),
		solid(1, 5, blue),
	}
	inner, err := Row(s, RowOptions{})
	if err != nil {
		t.Fatal(err)
	}
	outer, err := Row([]image.Image{inner}, RowOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(inner, outer) {
		t.Error("Row([Row(S)]) != Row(S)")
	}
}

func TestRowErrors(t *testing.T) {
	imgs := []image.Image{solid(1, 1, red), solid(1, 1, red), solid(1, 1, red)}
	_, err := Row(imgs, RowOptions{Align: []float64{0, 1}})
	if !errors.Is(err, errors.ErrCodeArgument) {
		t.Errorf("mismatched alignments error = %v, want ARGUMENT_ERROR", err)
	}
	if _, err := Column(imgs, RowOptions{Align: []float64{1.5}}); !errors.Is(err, errors.ErrCodeArgument) {
		t.Errorf("alignment out of range error = %v, want ARGUMENT_ERROR", err)
	}

	empty, err := Row(nil, RowOptions{})
	if err != nil || Size(empty) != (image.Point{}) {
		t.Errorf("Row(nil) = %v, %v; want empty image", Size(empty), err)
	}
}

func TestRowEqual(t *testing.T) {
	got, err := Row([]image.Image{solid(2, 4, red), solid(1, 2, blue)}, RowOptions{Equal: true, BG: green, Align: []float64{1}})
	if err != nil {
		t.Fatal(err)
	}
	if Size(got) != image.Pt(3, 4) {
		t.Fatalf("Size = %v, want 3x4", Size(got))
	}
	// The short image keeps its size and is padded above.
	for y, want := range []colors.Color{green, green, blue, blue} {
		if c := At(got, 2, y); c != want {
			t.Errorf("pixel (2,%d) = %v, want %v", y, c, want)
		}
	}

	col, err := Column([]image.Image{solid(4, 1, red), solid(2, 1, blue)}, RowOptions{Equal: true, BG: green, Align: []float64{0}})
	if err != nil {
		t.Fatal(err)
	}
	if Size(col) != image.Pt(4, 2) {
		t.Fatalf("Column size = %v, want 4x2", Size(col))
	}
	if c := At(col, 1, 1); c != blue {
		t.Errorf("pixel (1,1) = %v, want blue", c)
	}
	if c := At(col, 3, 1); c != green {
		t.Errorf("pixel (3,1) = %v, want green padding", c)
	}
}

func TestColumn(t *testing.T) {
	got, err := Column([]image.Image{solid(4, 1, red), solid(2, 2, blue)}, RowOptions{Align: []float64{1}})
	if err != nil {
		t.Fatal(err)
	}
	if Size(got) != image.Pt(4, 3) {
		t.Fatalf("Size = %v, want 4x3", Size(got))
	}
	if At(got, 3, 1) != blue || At(got, 1, 1) != colors.Transparent {
		t.Error("second image not right-aligned")
	}
}

func TestArray(t *testing.T) {
	rows := [][]image.Image{
		{solid(2, 1, red), nil},
		{solid(1, 3, green), solid(4, 2, blue)},
	}
	l, err := ArrayLayout(rows, ArrayOptions{XAlign: []float64{0}, YAlign: []float64{0}})
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != image.Pt(6, 4) {
		t.Fatalf("layout size = %v, want 6x4", l.Size)
	}
	if l.Cells[1][1] != image.Rect(2, 1, 6, 4) {
		t.Errorf("cell[1][1] = %v", l.Cells[1][1])
	}

	got, err := Array(rows, ArrayOptions{XAlign: []float64{0}, YAlign: []float64{0}})
	if err != nil {
		t.Fatal(err)
	}
	if At(got, 0, 0) != red || At(got, 3, 0) != colors.Transparent || At(got, 0, 3) != green || At(got, 5, 2) != blue {
		t.Error("unexpected pixel layout")
	}
}

func TestPadAndCrop(t *testing.T) {
	img := solid(4, 2, red)

	padded := Pad(img, Insets{1, 2, 3, 4}, blue)
	if Size(padded) != image.Pt(8, 8) || At(padded, 1, 2) != red || At(padded, 0, 0) != blue {
		t.Errorf("Pad = %v", Size(padded))
	}
	if !Equal(Trim(padded, Insets{1, 2, 3, 4}), img) {
		t.Error("Trim(Pad(img)) != img")
	}

	if got := PadTo(img, 2, 6, Center, nil); Size(got) != image.Pt(4, 6) {
		t.Errorf("PadTo never crops: got %v", Size(got))
	}
	if got := PadToAspect(img, 1, 1, Center, nil); Size(got) != image.Pt(4, 4) {
		t.Errorf("PadToAspect = %v, want 4x4", Size(got))
	}
	if got := CropToAspect(img, 1, 1, Center); Size(got) != image.Pt(2, 2) {
		t.Errorf("CropToAspect = %v, want 2x2", Size(got))
	}
	if got := Crop(img, image.Rect(3, 1, 10, 10)); Size(got) != image.Pt(1, 1) {
		t.Errorf("Crop clipped = %v, want 1x1", Size(got))
	}
}

func TestResizeFixedAspect(t *testing.T) {
	img := solid(100, 40, red)
	tests := []struct {
		spec ResizeSpec
		want image.Point
	}{
		{ResizeSpec{Width: 50}, image.Pt(50, 20)},
		{ResizeSpec{Height: 10}, image.Pt(25, 10)},
		{ResizeSpec{Scale: 0.5}, image.Pt(50, 20)},
		{ResizeSpec{Scale: 0.001}, image.Pt(1, 1)},
	}
	for _, tt := range tests {
		got, err := ResizeFixedAspect(img, tt.spec)
		if err != nil {
			t.Errorf("ResizeFixedAspect(%+v) error: %v", tt.spec, err)
			continue
		}
		if Size(got) != tt.want {
			t.Errorf("ResizeFixedAspect(%+v) = %v, want %v", tt.spec, Size(got), tt.want)
		}
	}

	for _, bad := range []ResizeSpec{{}, {Width: 10, Height: 10}, {Width: 1, Scale: 2}} {
		if _, err := ResizeFixedAspect(img, bad); !errors.Is(err, errors.ErrCodeArgument) {
			t.Errorf("ResizeFixedAspect(%+v) error = %v, want ARGUMENT_ERROR", bad, err)
		}
	}
}

func TestResizeSolid(t *testing.T) {
	got := Resize(solid(10, 10, red), 3, 7)
	if Size(got) != image.Pt(3, 7) || At(got, 1, 3) != red {
		t.Errorf("Resize = %v at %v", Size(got), At(got, 1, 3))
	}
	if got := CroppedResize(solid(10, 20, red), 5, 5, Center); Size(got) != image.Pt(5, 5) {
		t.Errorf("CroppedResize = %v", Size(got))
	}
}

func TestPin(t *testing.T) {
	base := solid(10, 10, red)
	got, off := Pin(base, solid(4, 4, blue), image.Pt(-2, -2), TopLeft, nil)
	if Size(got) != image.Pt(12, 12) || off != image.Pt(2, 2) {
		t.Fatalf("Pin = %v, offset %v", Size(got), off)
	}
	if At(got, 0, 0) != blue || At(got, 11, 11) != red || At(got, 11, 0) != colors.Transparent {
		t.Error("unexpected pixels after Pin")
	}

	// Anchoring the centre of the image on a point inside the base does
	// not grow the canvas.
	got, off = Pin(base, solid(2, 2, blue), image.Pt(5, 5), Center, nil)
	if Size(got) != image.Pt(10, 10) || off != (image.Point{}) || At(got, 4, 4) != blue {
		t.Error("centre pin grew the canvas")
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(solid(4, 4, red), nil)
	c.Pin(solid(2, 2, blue), image.Pt(0, 0), BottomRight)
	c.Pin(solid(1, 1, green), image.Pt(0, 0), TopLeft)
	if c.Origin() != image.Pt(2, 2) {
		t.Errorf("Origin = %v, want (2,2)", c.Origin())
	}
	if c.Bounds() != image.Rect(-2, -2, 4, 4) {
		t.Errorf("Bounds = %v", c.Bounds())
	}
	if At(c.Image(), 2, 2) != green || At(c.Image(), 0, 0) != blue {
		t.Error("unexpected pixels")
	}
}

func TestPlace(t *testing.T) {
	got := Place(solid(10, 10, red), solid(2, 2, blue), BottomRight, Uniform(1))
	if Size(got) != image.Pt(10, 10) || At(got, 8, 8) != blue || At(got, 9, 9) != red {
		t.Error("Place did not respect padding")
	}
}

func TestOverlayMask(t *testing.T) {
	mask := New(2, 1, nil)
	mask.SetNRGBA(0, 0, colors.RGBA(0, 0, 0, 128).NRGBA())
	mask.SetNRGBA(1, 0, colors.RGBA(0, 0, 0, 127).NRGBA())
	got := Overlay(solid(3, 1, red), solid(2, 1, blue), image.Pt(1, 0), mask)
	if At(got, 1, 0) != blue || At(got, 2, 0) != red {
		t.Error("mask threshold not applied")
	}
}

func TestBlend(t *testing.T) {
	a, b := solid(2, 2, red), solid(2, 2, blue)
	if _, err := Blend(a, solid(3, 2, blue), 0.5); !errors.Is(err, errors.ErrCodeSizeMismatch) {
		t.Errorf("Blend size mismatch error = %v", err)
	}
	got0, _ := Blend(a, b, 0)
	got1, _ := Blend(a, b, 1)
	if !Equal(got0, a) || !Equal(got1, b) {
		t.Error("Blend endpoints are not exact")
	}
}

func TestColorOps(t *testing.T) {
	img := solid(2, 1, colors.RGBA(255, 0, 0, 100))
	if got := ReplaceColor(img, red, blue, true); At(got, 0, 0) != colors.RGBA(0, 0, 255, 100) {
		t.Errorf("ReplaceColor ignoreAlpha = %v", At(got, 0, 0))
	}
	if got := ReplaceColor(img, red, blue, false); At(got, 0, 0) != colors.RGBA(255, 0, 0, 100) {
		t.Errorf("ReplaceColor exact = %v", At(got, 0, 0))
	}
	if got := RemoveTransparency(New(1, 1, nil), green); At(got, 0, 0) != green {
		t.Errorf("RemoveTransparency = %v", At(got, 0, 0))
	}
	got := ToPalette(solid(1, 1, colors.RGBA(214, 39, 40, 9)), colors.Tab10)
	if At(got, 0, 0) != colors.Tab10.MustGet("red").WithAlpha(9) {
		t.Errorf("ToPalette = %v", At(got, 0, 0))
	}
}

func TestPatternTiles(t *testing.T) {
	tileImg := New(2, 1, nil)
	tileImg.SetNRGBA(0, 0, red.NRGBA())
	tileImg.SetNRGBA(1, 0, blue.NRGBA())
	got := NewPattern(tileImg).Paint(image.Pt(5, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 5; x++ {
			want := red
			if x%2 == 1 {
				want = blue
			}
			if At(got, x, y) != want {
				t.Errorf("At(%d,%d) = %v, want %v", x, y, At(got, x, y), want)
			}
		}
	}
	if rot := NewPattern(tileImg).Rotated(45).Paint(image.Pt(7, 3)); Size(rot) != image.Pt(7, 3) {
		t.Errorf("rotated pattern size = %v", Size(rot))
	}
}

func TestFillOf(t *testing.T) {
	f, err := FillOf("#00ff00")
	if err != nil {
		t.Fatal(err)
	}
	if At(f.Paint(image.Pt(1, 1)), 0, 0) != green {
		t.Error("color fill")
	}
	if f, _ := FillOf(solid(1, 1, red)); f == nil {
		t.Error("image fill is nil")
	}
	if f, err := FillOf(nil); f != nil || err != nil {
		t.Error("nil fill")
	}
	if _, err := FillOf("nope"); !errors.Is(err, errors.ErrCodeArgument) {
		t.Errorf("FillOf(bad) error = %v", err)
	}
	stretched := ImageFill{Image: solid(1, 1, red), Stretch: true}.Paint(image.Pt(4, 3))
	if Size(stretched) != image.Pt(4, 3) {
		t.Errorf("stretched size = %v", Size(stretched))
	}
}

func TestTransforms(t *testing.T) {
	img := New(3, 1, nil)
	img.SetNRGBA(0, 0, red.NRGBA())
	if got := Transpose(img); Size(got) != image.Pt(1, 3) || At(got, 0, 0) != red {
		t.Error("Transpose")
	}
	if got := FlipH(img); At(got, 2, 0) != red {
		t.Error("FlipH")
	}
	if got := Rotate90(img); Size(got) != image.Pt(1, 3) || At(got, 0, 2) != red {
		t.Error("Rotate90")
	}
	if got := Rotate270(img); At(got, 0, 0) != red {
		t.Error("Rotate270")
	}
}

func TestAddShadow(t *testing.T) {
	shadow := colors.RGB(10, 10, 10)
	got := AddShadow(solid(10, 10, red), ShadowOptions{Color: shadow, Offset: image.Pt(3, 3)})
	if Size(got) != image.Pt(13, 13) {
		t.Fatalf("Size = %v, want 13x13", Size(got))
	}
	if At(got, 0, 0) != red || At(got, 12, 12) != shadow || At(got, 12, 0) != colors.Transparent {
		t.Error("unexpected shadow layout")
	}

	blurred := AddShadow(solid(10, 10, red), ShadowOptions{Color: shadow, Blur: 2, Grow: 1})
	if s := Size(blurred); s.X <= 10 || s.Y <= 10 {
		t.Errorf("blurred shadow did not grow canvas: %v", s)
	}
}

func TestAddGrid(t *testing.T) {
	got := AddGrid(solid(10, 10, red), GridOptions{Cols: 2, Rows: 2, Color: blue})
	if At(got, 0, 3) != blue || At(got, 5, 3) != blue || At(got, 9, 3) != blue || At(got, 3, 3) != red {
		t.Error("grid lines missing")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	img := solid(3, 2, colors.RGBA(1, 2, 3, 200))
	path := filepath.Join(dir, "out.png")
	if err := Save(img, path, 0); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(got, img) {
		t.Error("PNG round trip changed pixels")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (no temp files)", len(entries))
	}

	if err := Save(img, filepath.Join(dir, "out.xyz"), 0); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Save(.xyz) error = %v", err)
	}
	if err := Save(img, filepath.Join(dir, "out.jpg"), 0); err != nil {
		t.Errorf("Save(.jpg) error = %v", err)
	}
}

func TestSavePublishFailure(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory in the way makes the final rename fail.
	blocked := filepath.Join(dir, "out.png")
	if err := os.MkdirAll(filepath.Join(blocked, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}
	err := Save(solid(2, 2, red), blocked, 0)
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Fatalf("Save() error = %v, want INTERNAL_ERROR", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the blocking directory", len(entries))
	}
}

func TestDecodeFailure(t *testing.T) {
	if _, _, err := DecodeBytes([]byte("not an image")); !errors.Is(err, errors.ErrCodeDecode) {
		t.Errorf("DecodeBytes error = %v, want DECODE_FAILURE", err)
	}
}
