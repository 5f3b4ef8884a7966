package attachment

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // decoder registration
	"io"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/draw"
)

const (
	// MaxImageEdge is the long-edge limit images are downscaled to before merging.
	MaxImageEdge = 1400
	// JPEGQuality is used when re-encoding downscaled images.
	JPEGQuality = 85
)

// Merger turns several uploads into a single file.
type Merger interface {
	Merge(ctx context.Context, files []File) (File, error)
}

// PDFMerger concatenates PDFs page for page and places each image centered on an A4 page.
type PDFMerger struct {
	conf *pdfmodel.Configuration
}

func NewPDFMerger() *PDFMerger {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &PDFMerger{conf: conf}
}

func (m *PDFMerger) Merge(ctx context.Context, files []File) (File, error) {
	if len(files) == 0 {
		return File{}, fmt.Errorf("nothing to merge")
	}
	if len(files) == 1 {
		return files[0], nil
	}

	parts := make([]io.ReadSeeker, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return File{}, err
		}
		switch {
		case f.IsPDF():
			parts = append(parts, bytes.NewReader(f.Data))
		case f.IsImage():
			page, err := m.imagePage(f)
			if err != nil {
				return File{}, fmt.Errorf("failed to convert %s: %w", f.Name, err)
			}
			parts = append(parts, bytes.NewReader(page))
		default:
			return File{}, fmt.Errorf("unsupported file %s (%s)", f.Name, f.Kind())
		}
	}

	var out bytes.Buffer
	if err := api.MergeRaw(parts, &out, false, m.conf); err != nil {
		return File{}, fmt.Errorf("failed to merge pdf: %w", err)
	}

	return File{Name: mergedName(files[0].Name), Data: out.Bytes()}, nil
}

// imagePage renders one image as a single A4 page.
func (m *PDFMerger) imagePage(f File) ([]byte, error) {
	scaled, err := Downscale(f.Data, MaxImageEdge, JPEGQuality)
	if err != nil {
		return nil, err
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Center
	imp.Scale = 0.9

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, []io.Reader{bytes.NewReader(scaled)}, imp, m.conf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Downscale decodes an image, shrinks it so the long edge is at most maxEdge,
// flattens transparency onto white and re-encodes it as JPEG.
func Downscale(data []byte, maxEdge, quality int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if long := max(w, h); long > maxEdge {
		w = w * maxEdge / long
		h = h * maxEdge / long
	}
	w, h = max(w, 1), max(h, 1)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return out.Bytes(), nil
}

func mergedName(first string) string {
	base := strings.TrimSuffix(filepath.Base(first), filepath.Ext(first))
	if base == "" || base == "." {
		base = "operacion"
	}
	return base + "-combinado.pdf"
}
