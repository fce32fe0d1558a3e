package html

import "almoxarifado/models"

var stockLabels = map[string]string{
	models.StockZero:     "Out of stock",
	models.StockCritical: "Critical",
	models.StockLow:      "Low",
	models.StockOK:       "OK",
}

var expiryLabels = map[string]string{
	models.ExpiryExpired: "Expired",
	models.ExpirySoon:    "Expiring soon",
	models.ExpiryOK:      "Valid",
}

var kindLabels = map[string]string{
	models.MovementEntry:      "Entry",
	models.MovementExit:       "Exit",
	models.MovementAdjustment: "Adjustment",
}

var levelLabels = map[string]string{
	models.LevelSuperAdmin: "Super admin",
	models.LevelAdmin:      "Admin",
	models.LevelLocalAdmin: "Local admin",
	models.LevelStockClerk: "Stock clerk",
	models.LevelViewer:     "Viewer",
}

func StockBadge(b *Writer, status string) {
	Badge(b, status, stockLabels[status])
}

func ExpiryBadge(b *Writer, status string) {
	if status == models.ExpiryNone {
		b.Raw("-")
		return
	}
	Badge(b, status, expiryLabels[status])
}

func KindLabel(kind string) string {
	if l, ok := kindLabels[kind]; ok {
		return l
	}
	return kind
}

func LevelLabel(level string) string {
	if l, ok := levelLabels[level]; ok {
		return l
	}
	return level
}
