package ledger

import (
	"context"
	"sync"
	"time"

	"guestsync/internal/connectors"

	"go.uber.org/zap"
)

type LedgerService interface {
	Append(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, tenantID string, limit int64) ([]Entry, error)
	AlreadySynced(ctx context.Context, tenantID, email string) (bool, error)
	MarkSynced(ctx context.Context, tenantID, email string) error
	Export(ctx context.Context) (int, error)
	Stream() *Broadcaster
}

type LedgerServiceImpl struct {
	Repo        LedgerRepository
	Markers     MarkerRepository
	Warehouse   connectors.WarehouseExporter
	Logger      *zap.Logger
	broadcaster *Broadcaster

	mu        sync.Mutex
	watermark time.Time
}

func NewLedgerService(repo LedgerRepository, markers MarkerRepository, warehouse connectors.WarehouseExporter, logger *zap.Logger) LedgerService {
	return &LedgerServiceImpl{
		Repo:        repo,
		Markers:     markers,
		Warehouse:   warehouse,
		Logger:      logger,
		broadcaster: NewBroadcaster(),
	}
}

// Append writes the entry and fans it out to live stream subscribers.
// Broadcasting never fails the write.
func (s *LedgerServiceImpl) Append(ctx context.Context, entry *Entry) error {
	if err := s.Repo.Append(ctx, entry); err != nil {
		return err
	}
	s.broadcaster.Publish(*entry)
	return nil
}

func (s *LedgerServiceImpl) Recent(ctx context.Context, tenantID string, limit int64) ([]Entry, error) {
	return s.Repo.Recent(ctx, tenantID, limit)
}

func (s *LedgerServiceImpl) AlreadySynced(ctx context.Context, tenantID, email string) (bool, error) {
	return s.Markers.Exists(ctx, tenantID, email)
}

func (s *LedgerServiceImpl) MarkSynced(ctx context.Context, tenantID, email string) error {
	return s.Markers.Create(ctx, tenantID, email)
}

// Export pushes entries newer than the watermark to the reporting warehouse.
// The upsert keyed by entry id makes re-runs after a partial failure safe.
func (s *LedgerServiceImpl) Export(ctx context.Context) (int, error) {
	s.mu.Lock()
	since := s.watermark
	s.mu.Unlock()

	entries, err := s.Repo.Since(ctx, since)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	rows := make([]connectors.LedgerRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, connectors.LedgerRow{
			ID:           e.ID.Hex(),
			TenantID:     e.TenantID,
			DeviceID:     e.DeviceID,
			ContactEmail: e.ContactEmail,
			Status:       e.Status,
			CRMContactID: e.CRMContactID,
			ErrorDetail:  e.ErrorDetail,
			Timestamp:    e.Timestamp,
		})
	}

	count, err := s.Warehouse.UpsertEntries(ctx, rows)
	if err != nil {
		return count, err
	}

	s.mu.Lock()
	s.watermark = entries[len(entries)-1].Timestamp
	s.mu.Unlock()

	s.Logger.Info("ledger exported", zap.Int("entries", count))
	return count, nil
}

func (s *LedgerServiceImpl) Stream() *Broadcaster {
	return s.broadcaster
}
