package adminusers

import (
	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

type PageData struct {
	Users      []store.UserView
	Warehouses []html.Option
	Levels     []html.Option
	ActorID    int64
}

type FormPageData struct {
	User       models.User
	Warehouses []html.Option
	Levels     []html.Option
}
