package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/uptrace/bun"

	"almoxarifado/models"
)

const tolerance = 1e-9

// Check compares an item's cached balance with its movement sum.
type Check struct {
	ItemID     int64   `bun:"item_id" json:"item_id"`
	Balance    float64 `bun:"balance" json:"balance"`
	LedgerSum  float64 `bun:"ledger_sum" json:"ledger_sum"`
	Consistent bool    `bun:"-" json:"consistent"`
}

const ledgerSumQuery = `
SELECT i.id AS item_id,
       i.balance AS balance,
       COALESCE(SUM(CASE WHEN m.kind = 'exit' THEN -m.quantity ELSE m.quantity END), 0) AS ledger_sum
FROM items i
LEFT JOIN movements m ON m.item_id = i.id
%s
GROUP BY i.id, i.balance
ORDER BY i.id`

// VerifyLedger recomputes one item's balance from its movements.
func (e *Engine) VerifyLedger(ctx context.Context, itemID int64) (Check, error) {
	var rows []Check
	err := e.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(fmt.Sprintf(ledgerSumQuery, "WHERE i.id = ?"), itemID).Scan(ctx, &rows)
	})
	if errors.Is(err, sql.ErrNoRows) || (err == nil && len(rows) == 0) {
		return Check{}, models.ErrItemNotFound
	}
	if err != nil {
		return Check{}, fmt.Errorf("verify ledger: %w", err)
	}
	c := rows[0]
	c.Consistent = math.Abs(c.Balance-c.LedgerSum) < tolerance
	return c, nil
}

// Inconsistencies returns every item whose balance disagrees with its movements.
func (e *Engine) Inconsistencies(ctx context.Context) ([]Check, error) {
	var rows []Check
	err := e.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(fmt.Sprintf(ledgerSumQuery, "")).Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("verify ledger: %w", err)
	}
	out := make([]Check, 0)
	for _, c := range rows {
		if math.Abs(c.Balance-c.LedgerSum) >= tolerance {
			out = append(out, c)
		}
	}
	return out, nil
}
