package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hydrospark/core/anomaly"
	"hydrospark/internal/errors"
)

// DB is the subset of pgxpool.Pool the store needs; tests substitute it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store over pgx
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a postgres-backed store
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema holds the table definitions; applied by the server at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS customers (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	address       TEXT NOT NULL,
	location_id   BIGINT NOT NULL UNIQUE,
	customer_type TEXT NOT NULL,
	cycle_number  INT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS usage_readings (
	id          BIGSERIAL PRIMARY KEY,
	customer_id BIGINT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
	date        DATE NOT NULL,
	usage_ccf   DOUBLE PRECISION NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (customer_id, date)
);

CREATE TABLE IF NOT EXISTS bills (
	id                   UUID PRIMARY KEY,
	customer_id          BIGINT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
	billing_period_start DATE NOT NULL,
	billing_period_end   DATE NOT NULL,
	total_usage          DOUBLE PRECISION NOT NULL,
	usage_charge         DOUBLE PRECISION NOT NULL,
	fees                 DOUBLE PRECISION NOT NULL,
	total_amount         DOUBLE PRECISION NOT NULL,
	status               TEXT NOT NULL,
	generated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (customer_id, billing_period_start, billing_period_end)
);

CREATE TABLE IF NOT EXISTS anomalies (
	id                BIGSERIAL PRIMARY KEY,
	customer_id       BIGINT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
	date              DATE NOT NULL,
	usage_ccf         DOUBLE PRECISION NOT NULL,
	average_usage     DOUBLE PRECISION NOT NULL,
	std_deviation     DOUBLE PRECISION NOT NULL,
	sigma_value       DOUBLE PRECISION NOT NULL,
	deviation_percent DOUBLE PRECISION NOT NULL,
	reviewed          BOOLEAN NOT NULL DEFAULT false,
	detected_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return errors.Storage("failed to apply schema", err)
	}
	return nil
}

// GetCustomer fetches a customer by id
func (s *PostgresStore) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	query := `
		SELECT id, name, address, location_id, customer_type, cycle_number, created_at
		FROM customers
		WHERE id = $1
	`
	var c Customer
	err := s.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Address, &c.LocationID, &c.CustomerType, &c.CycleNumber, &c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("customer", itoa(id))
	}
	if err != nil {
		return nil, errors.Storage("failed to fetch customer", err)
	}
	return &c, nil
}

// CreateCustomer inserts a customer and fills in its id
func (s *PostgresStore) CreateCustomer(ctx context.Context, c *Customer) error {
	query := `
		INSERT INTO customers (name, address, location_id, customer_type, cycle_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query,
		c.Name, c.Address, c.LocationID, c.CustomerType, c.CycleNumber,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return errors.Storage("failed to create customer", err)
	}
	return nil
}

// AddUsage inserts one reading
func (s *PostgresStore) AddUsage(ctx context.Context, r *UsageReading) error {
	query := `
		INSERT INTO usage_readings (customer_id, date, usage_ccf)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, date) DO NOTHING
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query, r.CustomerID, r.Date, r.UsageCCF).
		Scan(&r.ID, &r.CreatedAt)
	if err == pgx.ErrNoRows {
		return errors.Conflict("a reading already exists for this customer and date")
	}
	if err != nil {
		return errors.Storage("failed to add usage reading", err)
	}
	return nil
}

// GetUsage returns a customer's readings in [from, to], date ascending
func (s *PostgresStore) GetUsage(ctx context.Context, customerID int64, from, to time.Time) ([]UsageReading, error) {
	query := `
		SELECT id, customer_id, date, usage_ccf, created_at
		FROM usage_readings
		WHERE customer_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`
	rows, err := s.db.Query(ctx, query, customerID, from, to)
	if err != nil {
		return nil, errors.Storage("failed to query usage readings", err)
	}
	defer rows.Close()

	var readings []UsageReading
	for rows.Next() {
		var r UsageReading
		if err := rows.Scan(&r.ID, &r.CustomerID, &r.Date, &r.UsageCCF, &r.CreatedAt); err != nil {
			return nil, errors.Storage("failed to scan usage reading", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("error iterating usage readings", err)
	}
	return readings, nil
}

// BillExists reports whether a bill covers the given period already
func (s *PostgresStore) BillExists(ctx context.Context, customerID int64, periodStart, periodEnd time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bills
			WHERE customer_id = $1 AND billing_period_start = $2 AND billing_period_end = $3
		)
	`
	var exists bool
	if err := s.db.QueryRow(ctx, query, customerID, periodStart, periodEnd).Scan(&exists); err != nil {
		return false, errors.Storage("failed to check for existing bill", err)
	}
	return exists, nil
}

// SaveBill persists a generated bill
func (s *PostgresStore) SaveBill(ctx context.Context, b *BillRecord) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	query := `
		INSERT INTO bills (id, customer_id, billing_period_start, billing_period_end,
			total_usage, usage_charge, fees, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING generated_at
	`
	err := s.db.QueryRow(ctx, query,
		b.ID, b.CustomerID, b.PeriodStart, b.PeriodEnd,
		b.TotalUsage, b.UsageCharge, b.Fees, b.TotalAmount, b.Status,
	).Scan(&b.GeneratedAt)
	if err != nil {
		return errors.Storage("failed to save bill", err)
	}
	return nil
}

// ListBills returns a customer's bills, newest first
func (s *PostgresStore) ListBills(ctx context.Context, customerID int64) ([]*BillRecord, error) {
	query := `
		SELECT id, customer_id, billing_period_start, billing_period_end,
			total_usage, usage_charge, fees, total_amount, status, generated_at
		FROM bills
		WHERE customer_id = $1
		ORDER BY generated_at DESC
	`
	rows, err := s.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, errors.Storage("failed to query bills", err)
	}
	defer rows.Close()

	var bills []*BillRecord
	for rows.Next() {
		var b BillRecord
		err := rows.Scan(
			&b.ID, &b.CustomerID, &b.PeriodStart, &b.PeriodEnd,
			&b.TotalUsage, &b.UsageCharge, &b.Fees, &b.TotalAmount, &b.Status, &b.GeneratedAt,
		)
		if err != nil {
			return nil, errors.Storage("failed to scan bill", err)
		}
		bills = append(bills, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("error iterating bills", err)
	}
	return bills, nil
}

// SaveAnomalies persists a detection run's flagged readings
func (s *PostgresStore) SaveAnomalies(ctx context.Context, customerID int64, records []anomaly.Record) error {
	query := `
		INSERT INTO anomalies (customer_id, date, usage_ccf, average_usage,
			std_deviation, sigma_value, deviation_percent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, r := range records {
		_, err := s.db.Exec(ctx, query,
			customerID, r.Date, r.Usage, r.AverageUsage,
			r.StdDeviation, r.SigmaValue, r.DeviationPercent,
		)
		if err != nil {
			return errors.Storage("failed to save anomaly", err)
		}
	}
	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
