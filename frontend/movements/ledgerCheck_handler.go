package movements

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"almoxarifado/frontend/shared/form"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/ledger"
)

type ledgerReport struct {
	CheckedAt time.Time      `json:"checked_at"`
	Items     []ledger.Check `json:"items"`
}

// LedgerCheckQueryHandler reports items whose cached balance drifted from
// their movement sum. With ?item_id= it checks that one item and always
// returns its row.
func LedgerCheckQueryHandler(engine *ledger.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := form.QueryID(r, "item_id")
		report := ledgerReport{CheckedAt: time.Now().UTC(), Items: []ledger.Check{}}
		if itemID != nil {
			check, err := engine.VerifyLedger(r.Context(), *itemID)
			if err != nil {
				respond.JSONError(w, err)
				return
			}
			report.Items = append(report.Items, check)
			respond.JSON(w, http.StatusOK, report)
			return
		}

		rows, err := engine.Inconsistencies(r.Context())
		if err != nil {
			respond.JSONError(w, err)
			return
		}
		if len(rows) > 0 {
			log.Ctx(r.Context()).Warn().Int("items", len(rows)).Msg("ledger drift detected")
			report.Items = rows
		}
		respond.JSON(w, http.StatusOK, report)
	}
}
