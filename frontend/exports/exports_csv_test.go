package exports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

func TestWriteStockCSV(t *testing.T) {
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	expiry := today.AddDate(0, 0, -1)
	items := []store.ItemView{
		{WarehouseName: "Central", Barcode: "789", Name: "Gaze, estéril", Lot: "L1", ExpiryDate: &expiry, Unit: "PCT", MinStock: 10, Balance: 2.5},
		{WarehouseName: "Central", Barcode: "790", Name: "Luva", Lot: "L2", Unit: "CX", MinStock: 0, Balance: 4},
	}

	var buf bytes.Buffer
	require.NoError(t, writeStockCSV(&buf, items, today))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "warehouse", records[0][0])
	assert.Equal(t, "Gaze, estéril", records[1][2])
	assert.Equal(t, "2026-05-09", records[1][6])
	assert.Equal(t, "2.5", records[1][9])
	assert.Equal(t, models.StockStatus(2.5, 10), records[1][10])
	assert.Equal(t, models.ExpiryExpired, records[1][11])
	assert.Equal(t, "", records[2][6])
}

func TestWriteMovementCSV(t *testing.T) {
	rows := []store.MovementView{
		{ID: 7, Kind: models.MovementExit, Quantity: 3, ItemName: "Luva", SectorName: "UTI", UserName: "ana", Note: "turno \"noite\"", CreatedAt: time.Now()},
	}

	var buf bytes.Buffer
	require.NoError(t, writeMovementCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "7", records[1][0])
	assert.Equal(t, models.MovementExit, records[1][2])
	assert.Equal(t, "3", records[1][6])
	assert.Equal(t, "UTI", records[1][9])
	assert.Equal(t, `turno "noite"`, records[1][12])
}

func TestWriteMovementCSVEmptyHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMovementCSV(&buf, nil))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
