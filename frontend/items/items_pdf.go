package items

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/pdf"
	"almoxarifado/infrastructure/store"
)

// LabelCode is the value encoded on item labels.
func LabelCode(barcode, lot string) string {
	return strings.TrimSpace(barcode) + "-" + strings.TrimSpace(lot)
}

// renderItemLabelPDF lays out a 100x60 mm label and returns the PDF and the encoded value.
func renderItemLabelPDF(item store.ItemView, printedAt time.Time) ([]byte, string, error) {
	code := LabelCode(item.Barcode, item.Lot)
	barcodePNG, err := pdf.Code128PNG(code, 1000, 240)
	if err != nil {
		return nil, "", fmt.Errorf("encode barcode %q: %w", code, err)
	}

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: 60, Ht: 100},
	})
	doc.SetTitle("Item label", false)
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(4, 4, 4)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 6, tr(truncate(item.Name, 42)), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	doc.CellFormat(0, 5, tr("Lote: "+item.Lot+"   Validade: "+html.Date(item.ExpiryDate)), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 5, tr("Almoxarifado: "+item.WarehouseName), "", 1, "L", false, 0, "")

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	name := fmt.Sprintf("item-barcode-%d", item.ID)
	doc.RegisterImageOptionsReader(name, opt, bytes.NewReader(barcodePNG))
	doc.ImageOptions(name, 6, 24, 88, 21, false, opt, 0, "")

	doc.SetY(46)
	doc.SetFont("Courier", "B", 10)
	doc.CellFormat(0, 5, tr(code), "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 6)
	doc.CellFormat(0, 3, "Impresso em "+printedAt.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, "", err
	}
	return out.Bytes(), code, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
