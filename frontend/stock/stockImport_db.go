package stock

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/store"
	"almoxarifado/infrastructure/validation"
	"almoxarifado/models"
)

// MaxImportBytes caps an uploaded item sheet.
const MaxImportBytes = 5 << 20

const maxMessages = 10

var requiredColumns = []string{"barcode", "name", "unit", "lot"}

// ImportItemsCSV creates one item per row. Rows are committed one by one, so a
// bad row is counted and reported without undoing the others. Rows matching an
// existing barcode and lot in the same warehouse are skipped.
func ImportItemsCSV(ctx context.Context, st *store.Store, actor access.Principal, warehouseID *int64, reader io.Reader) (ImportSummary, error) {
	summary := ImportSummary{}
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return summary, validation.Field("file", "is empty or not a CSV file")
	}
	cols, err := columnIndex(header)
	if err != nil {
		return summary, err
	}

	categories, err := categoryIDs(ctx, st, actor)
	if err != nil {
		return summary, err
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			line := 0
			if errors.As(err, &perr) {
				line = perr.Line
			}
			summary.fail(line, err)
			continue
		}
		line, _ := r.FieldPos(0)
		if blank(record) {
			continue
		}
		in, err := rowInput(record, cols, categories)
		if err != nil {
			summary.fail(line, err)
			continue
		}
		in.WarehouseID = warehouseID
		if _, err := st.CreateItem(ctx, actor, in); err != nil {
			switch {
			case errors.Is(err, models.ErrDuplicate):
				summary.Skipped++
			case errors.Is(err, models.ErrPermissionDenied):
				return summary, err
			default:
				summary.fail(line, err)
			}
			continue
		}
		summary.Inserted++
	}
	return summary, nil
}

func (s *ImportSummary) fail(line int, err error) {
	s.Errors++
	if len(s.Messages) < maxMessages {
		s.Messages = append(s.Messages, fmt.Sprintf("line %d: %v", line, err))
	}
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, validation.Field("file", "must have the columns "+strings.Join(requiredColumns, ","))
		}
	}
	return cols, nil
}

func categoryIDs(ctx context.Context, st *store.Store, actor access.Principal) (map[string]int64, error) {
	rows, err := st.ListCategories(ctx, access.Resolve(actor))
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, c := range rows {
		out[strings.ToLower(c.Name)] = c.ID
	}
	return out, nil
}

func rowInput(record []string, cols map[string]int, categories map[string]int64) (store.ItemInput, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	in := store.ItemInput{
		Barcode:     get("barcode"),
		Name:        get("name"),
		Unit:        get("unit"),
		Lot:         get("lot"),
		Brand:       get("brand"),
		Description: get("description"),
	}
	if raw := get("min_stock"); raw != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil || v < 0 {
			return in, fmt.Errorf("min_stock %q is not a non-negative number", raw)
		}
		in.MinStock = v
	}
	if raw := get("expiry_date"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return in, err
		}
		in.ExpiryDate = &d
	}
	if name := get("category"); name != "" {
		id, ok := categories[strings.ToLower(name)]
		if !ok {
			return in, fmt.Errorf("unknown category %q", name)
		}
		in.CategoryID = &id
	}
	return in, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("expiry_date %q must be YYYY-MM-DD or DD/MM/YYYY", raw)
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
