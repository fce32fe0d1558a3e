package auditlog

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/sqlite"
)

// LoadAuditPageData reads the newest audit rows, optionally for one entity.
// Unknown entity types are ignored rather than matching nothing.
func LoadAuditPageData(ctx context.Context, db *sqlite.DB, svc *audit.Service, entityType, entityID string) (PageData, error) {
	data := PageData{Rows: make([]audit.Entry, 0)}
	for _, et := range audit.EntityTypes() {
		data.EntityTypes = append(data.EntityTypes, html.Option{Value: et, Label: et})
		if et == entityType {
			data.EntityType = et
		}
	}
	if data.EntityType != "" {
		data.EntityID = strings.TrimSpace(entityID)
	}

	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		rows, err := svc.Recent(ctx, tx, audit.Filter{EntityType: data.EntityType, EntityID: data.EntityID})
		if err != nil {
			return err
		}
		data.Rows = rows
		return nil
	})
	return data, err
}
