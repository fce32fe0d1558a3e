package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/sqlite"
)

func openAuditTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "audit-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.ApplyEmbeddedMigrations(context.Background(), db))
	return db
}

func TestWriteAndRecent(t *testing.T) {
	db := openAuditTestDB(t)
	svc := NewService()
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO users (id, name, username, password_hash, access_level, active)
VALUES (1, 'Ana', 'ana', 'hash', 'super_admin', 1)`); err != nil {
			return err
		}
		if err := svc.Write(ctx, tx, 1, ActionCreate, EntityWarehouse, 5, nil, map[string]string{"name": "Central"}); err != nil {
			return err
		}
		if err := svc.Write(ctx, tx, 1, ActionUpdate, EntityWarehouse, 5, map[string]string{"name": "Central"}, map[string]string{"name": "Main"}); err != nil {
			return err
		}
		return svc.Write(ctx, tx, 1, ActionDelete, EntitySector, 9, map[string]string{"name": "UTI"}, nil)
	})
	require.NoError(t, err)

	var all []Entry
	require.NoError(t, db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		all, err = svc.Recent(ctx, tx, Filter{})
		return err
	}))
	require.Len(t, all, 3)
	assert.Equal(t, ActionDelete, all[0].Action)
	assert.Equal(t, "ana", all[0].Actor)
	assert.Empty(t, all[0].AfterJSON)

	var warehouse []Entry
	require.NoError(t, db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		warehouse, err = svc.Recent(ctx, tx, Filter{EntityType: EntityWarehouse, EntityID: "5", Limit: 1})
		return err
	}))
	require.Len(t, warehouse, 1)
	assert.Equal(t, ActionUpdate, warehouse[0].Action)
	assert.JSONEq(t, `{"name":"Main"}`, warehouse[0].AfterJSON)
}

func TestRecentUnknownActor(t *testing.T) {
	db := openAuditTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return NewService().Write(ctx, tx, 0, ActionBackup, EntityConfig, 1, nil, nil)
	}))

	var rows []Entry
	require.NoError(t, db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		rows, err = NewService().Recent(ctx, tx, Filter{EntityType: EntityConfig})
		return err
	}))
	require.Len(t, rows, 1)
	assert.Equal(t, "-", rows[0].Actor)
}
