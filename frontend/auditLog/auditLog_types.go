package auditlog

import (
	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/audit"
)

type PageData struct {
	EntityType  string
	EntityID    string
	EntityTypes []html.Option
	Rows        []audit.Entry
}
