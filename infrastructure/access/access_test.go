package access

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	"almoxarifado/models"
)

func ptr(v int64) *int64 { return &v }

func TestResolveUnrestrictedLevels(t *testing.T) {
	for _, level := range []string{models.LevelSuperAdmin, models.LevelAdmin} {
		s := Resolve(Principal{Level: level})
		assert.True(t, s.Unrestricted(), level)
		assert.True(t, s.Allows(1), level)
		assert.True(t, s.Allows(99), level)
	}
}

func TestResolveScopedLevels(t *testing.T) {
	for _, level := range []string{models.LevelLocalAdmin, models.LevelStockClerk, models.LevelViewer} {
		s := Resolve(Principal{Level: level, WarehouseID: ptr(3)})
		assert.False(t, s.Unrestricted(), level)
		assert.True(t, s.Allows(3), level)
		assert.False(t, s.Allows(4), level)
	}
}

func TestResolveScopedWithoutHomeMatchesNothing(t *testing.T) {
	s := Resolve(Principal{Level: models.LevelStockClerk})
	assert.True(t, s.Empty())
	assert.False(t, s.Allows(1))

	unknown := Resolve(Principal{Level: "root", WarehouseID: nil})
	assert.True(t, unknown.Empty())
}

func TestNarrowOnlyAppliesToUnrestricted(t *testing.T) {
	wide := Resolve(Principal{Level: models.LevelAdmin})
	narrowed := wide.Narrow(ptr(7))
	id, ok := narrowed.WarehouseID()
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
	assert.False(t, narrowed.Allows(8))

	assert.True(t, wide.Narrow(nil).Unrestricted())

	scoped := Resolve(Principal{Level: models.LevelViewer, WarehouseID: ptr(2)})
	widened := scoped.Narrow(ptr(9))
	assert.True(t, widened.Allows(2))
	assert.False(t, widened.Allows(9))

	empty := Resolve(Principal{Level: models.LevelViewer})
	assert.True(t, empty.Narrow(ptr(9)).Empty())
}

func TestApplyAppendsPredicate(t *testing.T) {
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })
	db := bun.NewDB(sqldb, sqlitedialect.New())

	query := func(s Scope) string {
		q := db.NewSelect().Model((*models.Item)(nil))
		return s.Apply(q, "i.warehouse_id").String()
	}

	assert.NotContains(t, query(All()), "WHERE")
	assert.Contains(t, query(Warehouse(5)), `WHERE ("i"."warehouse_id" = 5)`)
	assert.Contains(t, query(Scope{}), "WHERE (1 = 0)")
}

func TestCapabilitiesFor(t *testing.T) {
	admin := CapabilitiesFor(models.LevelAdmin)
	assert.True(t, admin.ViewAll)
	assert.True(t, admin.ManageSystem)

	local := CapabilitiesFor(models.LevelLocalAdmin)
	assert.Equal(t, Capabilities{ManageUsers: true, ManageStock: true}, local)

	clerk := CapabilitiesFor(models.LevelStockClerk)
	assert.True(t, clerk.Has(CapManageStock))
	assert.False(t, clerk.Has(CapManageUsers))

	viewer := CapabilitiesFor(models.LevelViewer)
	assert.Equal(t, Capabilities{}, viewer)
	assert.True(t, viewer.Has(CapAuthenticated))
	assert.False(t, viewer.Has(CapManageStock))
}

func TestCanAssignLevel(t *testing.T) {
	super := Principal{Level: models.LevelSuperAdmin}
	admin := Principal{Level: models.LevelAdmin}
	local := Principal{Level: models.LevelLocalAdmin, WarehouseID: ptr(1)}
	clerk := Principal{Level: models.LevelStockClerk, WarehouseID: ptr(1)}

	assert.True(t, super.CanAssignLevel(models.LevelSuperAdmin))
	assert.False(t, admin.CanAssignLevel(models.LevelSuperAdmin))
	assert.True(t, admin.CanAssignLevel(models.LevelAdmin))
	assert.False(t, local.CanAssignLevel(models.LevelAdmin))
	assert.True(t, local.CanAssignLevel(models.LevelStockClerk))
	assert.False(t, clerk.CanAssignLevel(models.LevelViewer))
	assert.False(t, super.CanAssignLevel("owner"))
}

func TestCanManageUserIn(t *testing.T) {
	local := Principal{Level: models.LevelLocalAdmin, WarehouseID: ptr(1)}
	assert.True(t, local.CanManageUserIn(ptr(1)))
	assert.False(t, local.CanManageUserIn(ptr(2)))
	assert.False(t, local.CanManageUserIn(nil))

	admin := Principal{Level: models.LevelAdmin}
	assert.True(t, admin.CanManageUserIn(nil))
}
