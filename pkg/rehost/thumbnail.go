package rehost

import (
	"bytes"
	"image/jpeg"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/pkg/errors"
)

// Thumbnails are rendered at 1.5x the PDF's native 72 DPI.
const (
	thumbnailDPI     = 108
	thumbnailQuality = 85
)

// PDFRenderer rasterizes PDF pages through a pdfium WebAssembly instance.
// Rendering is serialized through a single instance; the import pipeline is
// strictly sequential anyway.
type PDFRenderer struct {
	pool     pdfium.Pool
	instance pdfium.Pdfium
}

func NewPDFRenderer() (*PDFRenderer, error) {
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize pdfium")
	}

	instance, err := pool.GetInstance(30 * time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire pdfium instance")
	}

	return &PDFRenderer{pool: pool, instance: instance}, nil
}

// FirstPageJPEG renders page 1 of the given PDF to a JPEG.
func (r *PDFRenderer) FirstPageJPEG(data []byte) ([]byte, error) {
	doc, err := r.instance.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF")
	}
	defer r.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document}) //nolint:errcheck

	render, err := r.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: thumbnailDPI,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    0,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render PDF page")
	}
	defer render.Cleanup()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, render.Result.Image, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, errors.Wrap(err, "failed to encode thumbnail")
	}

	return buf.Bytes(), nil
}

// Close releases the pdfium instance and pool.
func (r *PDFRenderer) Close() error {
	if err := r.instance.Close(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
