package shop

import (
	"context"
	"fmt"

	"marketplace/internal/records"
)

// AdminSnapshot copies the whole marketplace state for export.
func (e *Engine) AdminSnapshot(_ context.Context, s *Session) (records.Snapshot, error) {
	defer lock(s)()
	if _, err := requireAdmin(s); err != nil {
		return records.Snapshot{}, err
	}
	return e.stores().Snapshot(), nil
}

func (e *Engine) stores() Stores {
	return Stores{Catalog: e.catalog, Accounts: e.accounts, Orders: e.ledger, Complaints: e.complaints}
}

// Snapshot copies every store. Each store is read consistently on its own;
// the snapshot as a whole is not taken under one lock.
func (st Stores) Snapshot() records.Snapshot {
	return records.Snapshot{
		Accounts:   st.Accounts.All(),
		Products:   st.Catalog.ListAll(),
		Orders:     st.Orders.All(),
		Complaints: st.Complaints.All(),
	}
}

// LoadStores builds stores holding the records of snap. Listing flags and
// order states are restored as recorded.
func LoadStores(snap records.Snapshot) (Stores, error) {
	st := NewStores()
	for _, a := range snap.Accounts {
		if err := st.Accounts.Create(a); err != nil {
			return Stores{}, fmt.Errorf("load account: %w", err)
		}
	}
	for _, p := range snap.Products {
		if err := st.Catalog.Create(p); err != nil {
			return Stores{}, fmt.Errorf("load product: %w", err)
		}
		if !p.Active {
			if err := st.Catalog.SetActive(p.ID, false); err != nil {
				return Stores{}, fmt.Errorf("load product: %w", err)
			}
		}
	}
	for _, o := range snap.Orders {
		st.Orders.Append(o)
	}
	for _, c := range snap.Complaints {
		st.Complaints.Append(c)
	}
	return st, nil
}
