package items

import (
	"bytes"
	"testing"
	"time"

	"almoxarifado/infrastructure/store"
)

func TestRenderItemLabelPDF_GeneratesPDF(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2027, 5, 31, 0, 0, 0, 0, time.UTC)
	pdf, code, err := renderItemLabelPDF(store.ItemView{
		ID:            4,
		Barcode:       "7891234567890",
		Name:          "Luva de procedimento tamanho M com descrição bem longa",
		Lot:           "L2026A",
		ExpiryDate:    &expiry,
		WarehouseName: "Central",
	}, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("renderItemLabelPDF returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("expected pdf bytes")
	}
	if code != "7891234567890-L2026A" {
		t.Fatalf("expected code 7891234567890-L2026A, got %q", code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("ab/c d-1"); got != "ab_c_d-1" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
}
