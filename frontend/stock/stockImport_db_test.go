package stock

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/argon"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

type importEnv struct {
	store *store.Store
	super access.Principal
	main  models.Warehouse
}

func openStockImportTestStore(t *testing.T) importEnv {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "stock-import-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.ApplyEmbeddedMigrations(ctx, db))

	st := store.New(db, nil, store.WithHashParams(argon.FastParams))
	_, err = st.BootstrapSuperAdmin(ctx, "Root", "root", "Root12345")
	require.NoError(t, err)
	root, err := st.FindLoginUser(ctx, "root")
	require.NoError(t, err)
	super := access.FromUser(root)

	main, err := st.CreateWarehouse(ctx, super, store.WarehouseInput{Name: "Central"})
	require.NoError(t, err)
	_, err = st.CreateCategory(ctx, super, store.CategoryInput{Name: "Curativos"})
	require.NoError(t, err)
	return importEnv{store: st, super: super, main: main}
}

func TestImportItemsCSV(t *testing.T) {
	env := openStockImportTestStore(t)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"Barcode,Name,Unit,Lot,min_stock,expiry_date,category",
		"789001,Gaze,PCT,L1,10,2027-01-31,curativos",
		"789002,Luva,CX,L9,\"2,5\",31/12/2026,",
		"",
		"789003,,UN,L1,,,",
		"789004,Seringa,UN,L1,abc,,",
		"789005,Atadura,UN,L1,,,Inexistente",
		"789001,Gaze,PCT,L1,10,,",
	}, "\n")

	summary, err := ImportItemsCSV(ctx, env.store, env.super, &env.main.ID, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 3, summary.Errors)
	require.Len(t, summary.Messages, 3)
	assert.True(t, strings.HasPrefix(summary.Messages[0], "line 5:"), summary.Messages[0])

	page, err := env.store.ListItems(ctx, access.All(), store.ItemFilter{Query: "Luva"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, 2.5, page.Rows[0].MinStock)
	require.NotNil(t, page.Rows[0].ExpiryDate)
	assert.Equal(t, "2026-12-31", page.Rows[0].ExpiryDate.Format("2006-01-02"))

	page, err = env.store.ListItems(ctx, access.All(), store.ItemFilter{Query: "Gaze"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Curativos", page.Rows[0].CategoryName)
}

func TestImportItemsCSVRejectsBadHeader(t *testing.T) {
	env := openStockImportTestStore(t)

	_, err := ImportItemsCSV(context.Background(), env.store, env.super, &env.main.ID, strings.NewReader("sku,description\nA,B\n"))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = ImportItemsCSV(context.Background(), env.store, env.super, &env.main.ID, strings.NewReader(""))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestImportItemsCSVNeedsWarehouseForUnrestrictedUser(t *testing.T) {
	env := openStockImportTestStore(t)

	summary, err := ImportItemsCSV(context.Background(), env.store, env.super, nil, strings.NewReader("barcode,name,unit,lot\n1,Gaze,UN,L1\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 1, summary.Errors)
}

func TestImportItemsCSVViewerDenied(t *testing.T) {
	env := openStockImportTestStore(t)
	viewer := access.Principal{UserID: 99, Level: models.LevelViewer, WarehouseID: &env.main.ID}

	_, err := ImportItemsCSV(context.Background(), env.store, viewer, nil, strings.NewReader("barcode,name,unit,lot\n1,Gaze,UN,L1\n"))
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
}
