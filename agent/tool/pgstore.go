package tool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/techflow/careflow/agent/contract"
)

type customerRow struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	contractx.CustomerProfile
}

type statusEvent struct {
	bun.BaseModel `bun:"table:customer_status_events,alias:se"`

	ID         int64     `bun:"id,pk,autoincrement"`
	CustomerID string    `bun:"customer_id,notnull"`
	Action     string    `bun:"action,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

// PgStore backs the customer directory and status log with Postgres. The
// customers table is read-mostly; status updates are plain row appends, so
// no cross-run coordination is needed.
type PgStore struct {
	db *bun.DB
}

func NewPgStore(dsn string) (*PgStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &PgStore{db: db}, nil
}

func (s *PgStore) LookupByEmail(ctx context.Context, email string) (*contractx.CustomerProfile, error) {
	row := new(customerRow)
	err := s.db.NewSelect().
		Model(row).
		Where("lower(c.email) = lower(?)", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("customer lookup: %w", err)
	}
	profile := row.CustomerProfile
	profile.Email = strings.ToLower(profile.Email)
	profile.Tier = strings.ToLower(profile.Tier)
	return &profile, nil
}

func (s *PgStore) Append(ctx context.Context, customerID, action string, at time.Time) error {
	event := &statusEvent{
		CustomerID: customerID,
		Action:     action,
		CreatedAt:  at.UTC(),
	}
	if _, err := s.db.NewInsert().Model(event).Exec(ctx); err != nil {
		return fmt.Errorf("append status event: %w", err)
	}
	return nil
}

func (s *PgStore) Close() error {
	return s.db.Close()
}

var (
	_ CustomerDirectory = (*PgStore)(nil)
	_ StatusWriter      = (*PgStore)(nil)
)
