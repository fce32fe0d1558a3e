package exports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"almoxarifado/infrastructure/store"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

func writeStockCSV(w io.Writer, items []store.ItemView, today time.Time) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"warehouse", "barcode", "name", "brand", "category", "lot", "expiry", "unit", "min_stock", "balance", "status", "expiry_status"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, it := range items {
		record := []string{
			it.WarehouseName,
			it.Barcode,
			it.Name,
			it.Brand,
			it.CategoryName,
			it.Lot,
			formatDate(it.ExpiryDate),
			it.Unit,
			formatQty(it.MinStock),
			formatQty(it.Balance),
			it.Status(),
			it.ExpiryStatus(today),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeMovementCSV(w io.Writer, rows []store.MovementView) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"id", "created_at", "kind", "barcode", "item", "lot", "quantity", "unit", "warehouse", "sector", "user", "invoice_ref", "note"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, m := range rows {
		record := []string{
			strconv.FormatInt(m.ID, 10),
			m.CreatedAt.Local().Format(dateTimeLayout),
			m.Kind,
			m.Barcode,
			m.ItemName,
			m.Lot,
			formatQty(m.Quantity),
			m.Unit,
			m.WarehouseName,
			m.SectorName,
			m.UserName,
			m.InvoiceRef,
			m.Note,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
