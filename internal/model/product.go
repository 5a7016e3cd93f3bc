package model

import "time"

// Product is one catalog entry, keyed by its GTIN. Quantity reflects the
// last committed count (or the initial stock load).
type Product struct {
	GTIN       string     `db:"gtin" json:"gtin"`
	Name       string     `db:"name" json:"name"`
	Category   string     `db:"category" json:"category"`
	Batch      string     `db:"batch" json:"batch,omitempty"`
	BestBefore *time.Time `db:"best_before" json:"best_before,omitempty"`
	Quantity   int        `db:"quantity" json:"quantity"`
	Unit       string     `db:"unit" json:"unit,omitempty"`
}
