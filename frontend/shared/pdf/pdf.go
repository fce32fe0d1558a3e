// Package pdf holds the gofpdf setup shared by labels and reports.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"almoxarifado/models"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Number formats v with pt-BR grouping and up to three decimals.
func Number(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// Document wraps a gofpdf document with a UTF-8 to cp1252 translator so
// accented names print with the core fonts.
type Document struct {
	*gofpdf.Fpdf
	tr func(string) string
}

// T translates UTF-8 text for the core fonts.
func (d *Document) T(s string) string {
	return d.tr(s)
}

// New starts a document. orientation is "P" or "L".
func New(orientation, title string) *Document {
	f := gofpdf.New(orientation, "mm", "A4", "")
	f.SetTitle(title, true)
	f.SetAutoPageBreak(true, 15)
	return &Document{Fpdf: f, tr: f.UnicodeTranslatorFromDescriptor("")}
}

// Header registers a page header with the hospital name, optional logo and
// a footer with page numbers.
func (d *Document) Header(cfg models.SystemConfig, logoFile, title string, printedAt time.Time) {
	logoType := imageType(logoFile)
	d.SetHeaderFunc(func() {
		x := 10.0
		if logoType != "" {
			d.ImageOptions(logoFile, 10, 8, 0, 14, false, gofpdf.ImageOptions{ImageType: logoType, ReadDpi: true}, 0, "")
			x = 40
		}
		d.SetXY(x, 8)
		d.SetFont("Helvetica", "B", 14)
		d.CellFormat(0, 7, d.T(cfg.HospitalName), "", 1, "L", false, 0, "")
		d.SetX(x)
		d.SetFont("Helvetica", "", 11)
		d.CellFormat(0, 6, d.T(title), "", 1, "L", false, 0, "")
		d.SetX(x)
		d.SetFont("Helvetica", "", 8)
		d.CellFormat(0, 5, d.T("Emitido em "+printedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
		d.Ln(4)
	})
	d.SetFooterFunc(func() {
		d.SetY(-12)
		d.SetFont("Helvetica", "I", 8)
		footer := cfg.FooterText
		if cfg.FooterCompany != "" {
			footer += " - " + cfg.FooterCompany
		}
		d.CellFormat(0, 5, d.T(footer), "", 0, "L", false, 0, "")
		d.CellFormat(0, 5, fmt.Sprintf("%d/{nb}", d.PageNo()), "", 0, "R", false, 0, "")
	})
	d.AliasNbPages("")
}

// Bytes renders the document.
func (d *Document) Bytes() ([]byte, error) {
	var out bytes.Buffer
	if err := d.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// imageType returns the gofpdf image type for a logo file, or "" when it
// cannot be embedded (missing file or SVG).
func imageType(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	}
	return ""
}

// Code128PNG encodes value as a Code 128 barcode scaled to width x height.
func Code128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	bounds := scaled.Bounds()
	normalized := image.NewNRGBA(bounds)
	draw.Draw(normalized, bounds, scaled, bounds.Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, normalized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
