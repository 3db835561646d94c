package shop

import (
	"context"

	"github.com/shopspring/decimal"
)

type Statistics struct {
	Users          int             `json:"users"`
	Products       int             `json:"products"`
	ActiveProducts int             `json:"active_products"`
	Orders         int             `json:"orders"`
	TotalSales     decimal.Decimal `json:"total_sales"` // shipped and completed orders
}

func (e *Engine) AdminStatistics(_ context.Context, s *Session) (Statistics, error) {
	defer lock(s)()
	if _, err := requireAdmin(s); err != nil {
		return Statistics{}, err
	}
	return Statistics{
		Users:          e.accounts.Count(),
		Products:       e.catalog.Count(),
		ActiveProducts: e.catalog.CountActive(),
		Orders:         e.ledger.Count(),
		TotalSales:     e.ledger.TotalSales(),
	}, nil
}
