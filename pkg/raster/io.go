package raster

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/chartkit/pkg/errors"
)

// DefaultJPEGQuality is used when Save or Encode get a quality of zero.
const DefaultJPEGQuality = 75

// Decode reads a PNG, JPEG, GIF (first frame), BMP, TIFF or WebP image.
// It returns the image and the format name.
func Decode(r io.Reader) (*image.NRGBA, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeDecode, err, "could not decode image")
	}
	return Clone(img), format, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (*image.NRGBA, string, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads and decodes the image file at path.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not open %s", path)
	}
	defer f.Close()
	img, _, err := Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "could not load %s", path)
	}
	return img, nil
}

// FormatOf returns the image format implied by a file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".gif":
		return "gif", nil
	case ".bmp":
		return "bmp", nil
	case ".tif", ".tiff":
		return "tiff", nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported output format: %q", filepath.Ext(path))
}

// Encode writes img in the given format. quality only affects JPEG; zero
// means DefaultJPEGQuality.
func Encode(w io.Writer, img image.Image, format string, quality int) error {
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	var err error
	switch format {
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		err = enc.Encode(w, img)
	case "jpeg", "jpg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case "gif":
		err = gif.Encode(w, img, nil)
	case "bmp":
		err = bmp.Encode(w, img)
	case "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported output format: %s", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "could not encode %s", format)
	}
	return nil
}

// Save encodes img to path, choosing the format from the extension. The
// file is written to a temporary name in the same directory and renamed
// into place, so readers never see a partial image.
func Save(img image.Image, path string, quality int) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	out, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "could not create temporary destination for %q", name)
	}
	canRename := false
	defer func() {
		if defErr := out.Sync(); defErr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeInternal, defErr, "could not flush temporary destination %q", name)
		}
		if defErr := out.Close(); defErr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeInternal, defErr, "could not close temporary destination %q", name)
		}
		if canRename && err == nil {
			if defErr := os.Rename(out.Name(), path); defErr != nil {
				err = errors.Wrap(errors.ErrCodeInternal, defErr, "could not rename destination file %q", name)
			}
		}
		if err != nil {
			os.Remove(out.Name())
		}
	}()

	if err = Encode(out, img, format, quality); err != nil {
		return err
	}
	canRename = true
	return nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
