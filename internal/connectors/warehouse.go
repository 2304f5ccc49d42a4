package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"guestsync/internal/config"

	_ "github.com/lib/pq"
)

// LedgerRow is the warehouse shape of a sync ledger entry. The id is the
// source entry id, so re-exports upsert instead of duplicating.
type LedgerRow struct {
	ID           string
	TenantID     string
	DeviceID     string
	ContactEmail string
	Status       string
	CRMContactID string
	ErrorDetail  string
	Timestamp    time.Time
}

// WarehouseExporter pushes ledger entries to the reporting Postgres.
type WarehouseExporter interface {
	UpsertEntries(ctx context.Context, rows []LedgerRow) (int, error)
}

type pgWarehouse struct {
	dsn string
}

func NewWarehouseExporter(cfg *config.Config) WarehouseExporter {
	return &pgWarehouse{dsn: cfg.LedgerPGDSN}
}

func (w *pgWarehouse) UpsertEntries(ctx context.Context, rows []LedgerRow) (int, error) {
	if w.dsn == "" {
		return 0, fmt.Errorf("ledger warehouse is not configured")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	db, err := sql.Open("postgres", w.dsn)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to ping postgres: %v", err)
	}

	const query = `INSERT INTO sync_ledger
		(id, tenant_id, device_id, contact_email, status, crm_contact_id, error_detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
		tenant_id = $2, device_id = $3, contact_email = $4, status = $5,
		crm_contact_id = $6, error_detail = $7, created_at = $8`

	count := 0
	for _, row := range rows {
		_, err := db.ExecContext(ctx, query,
			row.ID, row.TenantID, row.DeviceID, row.ContactEmail,
			row.Status, row.CRMContactID, row.ErrorDetail, row.Timestamp)
		if err != nil {
			continue
		}
		count++
	}
	return count, nil
}
