package reports

import (
	"fmt"
	"time"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/pdf"
	"almoxarifado/infrastructure/reporting"
	"almoxarifado/models"
)

type column struct {
	title string
	width float64
	align string
}

var stockColumns = []column{
	{"Almoxarifado", 38, "L"},
	{"Código", 30, "L"},
	{"Item", 70, "L"},
	{"Lote", 24, "L"},
	{"Validade", 22, "C"},
	{"Un.", 14, "C"},
	{"Mínimo", 22, "R"},
	{"Saldo", 22, "R"},
	{"Situação", 25, "C"},
}

var movementColumns = []column{
	{"Data", 30, "L"},
	{"Tipo", 22, "L"},
	{"Item", 66, "L"},
	{"Lote", 22, "L"},
	{"Qtd.", 22, "R"},
	{"Almoxarifado", 36, "L"},
	{"Setor", 36, "L"},
	{"Usuário", 33, "L"},
}

var statusLabels = map[string]string{
	models.StockZero:     "Zerado",
	models.StockOK:       "OK",
	models.StockLow:      "Baixo",
	models.StockCritical: "Crítico",
}

var kindLabels = map[string]string{
	models.MovementEntry:      "Entrada",
	models.MovementExit:       "Saída",
	models.MovementAdjustment: "Ajuste",
}

func tableHeader(d *pdf.Document, cols []column) {
	d.SetFont("Helvetica", "B", 8)
	d.SetFillColor(230, 230, 230)
	for _, c := range cols {
		d.CellFormat(c.width, 6, d.T(c.title), "1", 0, "C", true, 0, "")
	}
	d.Ln(-1)
	d.SetFont("Helvetica", "", 8)
}

func tableRow(d *pdf.Document, cols []column, values ...string) {
	for i, c := range cols {
		d.CellFormat(c.width, 5, d.T(fit(values[i], c.width)), "1", 0, c.align, false, 0, "")
	}
	d.Ln(-1)
}

// fit trims text to roughly what an 8pt Helvetica cell of width mm holds.
func fit(s string, width float64) string {
	limit := int(width / 1.6)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}

func renderStockReportPDF(cfg models.SystemConfig, logoFile string, rep reporting.StockReport) ([]byte, error) {
	d := pdf.New("L", "Relatório de estoque")
	d.Header(cfg, logoFile, "Relatório de estoque", rep.GeneratedAt)
	d.AddPage()
	tableHeader(d, stockColumns)
	for _, it := range rep.Items {
		tableRow(d, stockColumns,
			it.WarehouseName,
			it.Barcode,
			it.Name,
			it.Lot,
			html.Date(it.ExpiryDate),
			it.Unit,
			pdf.Number(it.MinStock),
			pdf.Number(it.Balance),
			statusLabels[it.Status()],
		)
	}
	d.Ln(4)
	d.SetFont("Helvetica", "B", 9)
	d.CellFormat(0, 5, d.T(fmt.Sprintf("Itens: %d   Abaixo do mínimo: %d   Vencidos: %d", len(rep.Items), rep.BelowMinimum, rep.Expired)), "", 1, "L", false, 0, "")
	return d.Bytes()
}

func renderMovementReportPDF(cfg models.SystemConfig, logoFile string, rep reporting.MovementReport) ([]byte, error) {
	last := rep.To.AddDate(0, 0, -1)
	title := "Relatório de movimentações " + rep.From.Format("02/01/2006") + " a " + last.Format("02/01/2006")
	d := pdf.New("L", title)
	d.Header(cfg, logoFile, title, rep.GeneratedAt)
	d.AddPage()
	tableHeader(d, movementColumns)
	for _, m := range rep.Rows {
		qty := m.Quantity
		if m.Kind == models.MovementExit {
			qty = -qty
		}
		tableRow(d, movementColumns,
			m.CreatedAt.In(time.Local).Format("02/01/2006 15:04"),
			kindLabels[m.Kind],
			m.ItemName,
			m.Lot,
			pdf.Number(qty),
			m.WarehouseName,
			m.SectorName,
			m.UserName,
		)
	}
	if rep.Truncated {
		d.SetFont("Helvetica", "I", 8)
		d.CellFormat(0, 5, d.T(fmt.Sprintf("Exibindo as %d movimentações mais recentes do período.", len(rep.Rows))), "", 1, "L", false, 0, "")
	}
	d.Ln(4)
	d.SetFont("Helvetica", "B", 9)
	d.CellFormat(0, 5, d.T("Totais do período"), "", 1, "L", false, 0, "")
	d.SetFont("Helvetica", "", 9)
	if len(rep.Totals) == 0 {
		d.CellFormat(0, 5, d.T("Nenhuma movimentação."), "", 1, "L", false, 0, "")
	}
	for _, t := range rep.Totals {
		d.CellFormat(0, 5, d.T(fmt.Sprintf("%s: %d lançamentos, quantidade %s", kindLabels[t.Kind], t.Count, pdf.Number(t.Quantity))), "", 1, "L", false, 0, "")
	}
	return d.Bytes()
}
