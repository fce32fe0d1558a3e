package items

import (
	"context"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/store"
)

// loadOptions returns the warehouse and category choices visible to p.
func loadOptions(ctx context.Context, st *store.Store, p access.Principal) ([]html.Option, []html.Option, error) {
	scope := access.Resolve(p)
	warehouses, err := st.ListWarehouses(ctx, scope, false)
	if err != nil {
		return nil, nil, err
	}
	categories, err := st.ListCategories(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	wopts := make([]html.Option, 0, len(warehouses))
	for _, w := range warehouses {
		wopts = append(wopts, html.Option{Value: html.ID(w.ID), Label: w.Name})
	}
	copts := make([]html.Option, 0, len(categories))
	for _, c := range categories {
		copts = append(copts, html.Option{Value: html.ID(c.ID), Label: c.Name})
	}
	return wopts, copts, nil
}

func inputFromView(v store.ItemView) store.ItemInput {
	wid := v.WarehouseID
	return store.ItemInput{
		Barcode:     v.Barcode,
		Name:        v.Name,
		Description: v.Description,
		Brand:       v.Brand,
		Unit:        v.Unit,
		MinStock:    v.MinStock,
		Lot:         v.Lot,
		ExpiryDate:  v.ExpiryDate,
		CategoryID:  v.CategoryID,
		WarehouseID: &wid,
	}
}
