// Package storage persists customers, usage readings, generated bills
// and detected anomalies. The analytical core never touches this
// package; handlers assemble observation series from it and store the
// structured results the core returns.
package storage

import (
	"context"
	"time"

	"hydrospark/core/anomaly"
	"hydrospark/core/series"
)

// Customer is a billed account
type Customer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	LocationID   int64     `json:"location_id"`
	CustomerType string    `json:"customer_type"`
	CycleNumber  int       `json:"cycle_number"`
	CreatedAt    time.Time `json:"created_at"`
}

// UsageReading is one stored metered reading. One reading per customer
// per date.
type UsageReading struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Date       time.Time `json:"date"`
	UsageCCF   float64   `json:"usage_ccf"`
	CreatedAt  time.Time `json:"created_at"`
}

// BillRecord is a persisted generated bill
type BillRecord struct {
	ID          string    `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	PeriodStart time.Time `json:"billing_period_start"`
	PeriodEnd   time.Time `json:"billing_period_end"`
	TotalUsage  float64   `json:"total_usage"`
	UsageCharge float64   `json:"usage_charge"`
	Fees        float64   `json:"fees"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Store is the persistence boundary used by the API layer
type Store interface {
	// GetCustomer fetches a customer by id
	GetCustomer(ctx context.Context, id int64) (*Customer, error)

	// CreateCustomer inserts a customer and fills in its id
	CreateCustomer(ctx context.Context, c *Customer) error

	// AddUsage inserts one reading; a second reading for the same
	// customer and date is a conflict
	AddUsage(ctx context.Context, r *UsageReading) error

	// GetUsage returns a customer's readings in [from, to], date ascending
	GetUsage(ctx context.Context, customerID int64, from, to time.Time) ([]UsageReading, error)

	// BillExists reports whether a bill covers the given period already
	BillExists(ctx context.Context, customerID int64, periodStart, periodEnd time.Time) (bool, error)

	// SaveBill persists a generated bill
	SaveBill(ctx context.Context, b *BillRecord) error

	// ListBills returns a customer's bills, newest first
	ListBills(ctx context.Context, customerID int64) ([]*BillRecord, error)

	// SaveAnomalies persists a detection run's flagged readings
	SaveAnomalies(ctx context.Context, customerID int64, records []anomaly.Record) error
}

// ToSeries converts stored readings into the core's observation series.
func ToSeries(readings []UsageReading) series.Series {
	out := make(series.Series, len(readings))
	for i, r := range readings {
		out[i] = series.Observation{Date: r.Date, Quantity: r.UsageCCF}
	}
	return out
}
