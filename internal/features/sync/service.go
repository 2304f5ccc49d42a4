package sync

import (
	"context"
	"strings"
	"time"

	"guestsync/internal/connectors"
	"guestsync/internal/features/ledger"
	"guestsync/internal/features/mapping"
	"guestsync/internal/features/tenant"
	"guestsync/pkg/tagrules"

	"go.uber.org/zap"
)

// defaultContactTag is attached to every synced contact so CRM users can
// tell portal-sourced contacts apart from manually entered ones.
const defaultContactTag = "device-network"

const contactSource = "wifi captive portal"

// batchPacing spaces out CRM calls during batch replays to stay inside the
// provider's rate limits.
const batchPacing = 200 * time.Millisecond

type SyncService interface {
	ProcessContact(ctx context.Context, event ContactEvent) Result
	ProcessBatch(ctx context.Context, events []ContactEvent) BatchSummary
}

type SyncServiceImpl struct {
	Mappings mapping.MappingService
	Tenants  tenant.ConnectionService
	Ledger   ledger.LedgerService
	CRM      connectors.CRMClient
	Logger   *zap.Logger
}

func NewSyncService(mappings mapping.MappingService, tenants tenant.ConnectionService, ledgerSvc ledger.LedgerService, crm connectors.CRMClient, logger *zap.Logger) SyncService {
	return &SyncServiceImpl{
		Mappings: mappings,
		Tenants:  tenants,
		Ledger:   ledgerSvc,
		CRM:      crm,
		Logger:   logger,
	}
}

// ProcessContact runs one event through the decision pipeline. Checks run
// strictly in order and the first failing one terminates the run. Every
// terminal outcome is returned as a structured Result; nothing escapes as a
// panic or raw error.
func (s *SyncServiceImpl) ProcessContact(ctx context.Context, event ContactEvent) Result {
	// 1. Validate. Nothing to log against yet, so no ledger entry.
	deviceID := strings.TrimSpace(event.DeviceID)
	email := strings.TrimSpace(strings.ToLower(event.Email))
	if deviceID == "" || email == "" {
		return Result{Status: ledger.StatusError, Reason: ErrMissingField.Error()}
	}

	// 2. Opt-in. Absent or ambiguous consent means no sync.
	if ClassifyOptIn(event.OptIn) != OptInGranted {
		return s.record(ctx, &ledger.Entry{
			DeviceID:     deviceID,
			ContactEmail: email,
			Status:       ledger.StatusSkipped,
		}, Result{Status: ledger.StatusSkipped, Reason: "not opted in"})
	}

	// 3. Resolve mapping. An unmapped device is a configuration gap, not a
	// fault; logged without tenant context.
	m, err := s.Mappings.Resolve(ctx, deviceID)
	if err != nil {
		return s.record(ctx, &ledger.Entry{
			DeviceID:     deviceID,
			ContactEmail: email,
			Status:       ledger.StatusError,
			ErrorDetail:  err.Error(),
		}, Result{Status: ledger.StatusError, Reason: err.Error()})
	}
	if m == nil {
		return s.record(ctx, &ledger.Entry{
			DeviceID:     deviceID,
			ContactEmail: email,
			Status:       ledger.StatusSkipped,
			ErrorDetail:  ErrUnmappedDevice.Error(),
		}, Result{Status: ledger.StatusSkipped, Reason: ErrUnmappedDevice.Error()})
	}

	// 4. Resolve tenant connection.
	conn, err := s.Tenants.Get(ctx, m.TenantID)
	if err != nil || conn == nil || !conn.Active {
		return s.record(ctx, &ledger.Entry{
			TenantID:     m.TenantID,
			DeviceID:     m.DeviceID,
			ContactEmail: email,
			Status:       ledger.StatusError,
			ErrorDetail:  ErrInactiveTenant.Error(),
		}, Result{Status: ledger.StatusError, Reason: ErrInactiveTenant.Error(), GHLLocationID: m.TenantID})
	}

	// 5. Idempotence. At most one CRM contact per (tenant, email), even
	// under retried webhook delivery.
	synced, err := s.Ledger.AlreadySynced(ctx, conn.TenantID, email)
	if err != nil {
		return s.record(ctx, &ledger.Entry{
			TenantID:     conn.TenantID,
			DeviceID:     m.DeviceID,
			ContactEmail: email,
			Status:       ledger.StatusError,
			ErrorDetail:  err.Error(),
		}, Result{Status: ledger.StatusError, Reason: err.Error(), GHLLocationID: conn.TenantID})
	}
	if synced {
		return s.record(ctx, &ledger.Entry{
			TenantID:     conn.TenantID,
			DeviceID:     m.DeviceID,
			ContactEmail: email,
			Status:       ledger.StatusSkipped,
			ErrorDetail:  ErrAlreadySynced.Error(),
		}, Result{Status: ledger.StatusSkipped, Reason: ErrAlreadySynced.Error(), GHLLocationID: conn.TenantID})
	}

	// 6. Credential refresh, lazy and synchronous.
	token, err := s.Tenants.EnsureValidToken(ctx, conn)
	if err != nil {
		return s.record(ctx, &ledger.Entry{
			TenantID:     conn.TenantID,
			DeviceID:     m.DeviceID,
			ContactEmail: email,
			Status:       ledger.StatusError,
			ErrorDetail:  err.Error(),
		}, Result{Status: ledger.StatusError, Reason: err.Error(), GHLLocationID: conn.TenantID})
	}

	// 7. Name parsing.
	given, family := splitName(event.Name)

	// 8. CRM forward. At most one attempt; resubmitting the whole event is
	// the caller's recovery path and is safe because of step 5.
	contactID, err := s.CRM.CreateContact(ctx, token, connectors.ContactRequest{
		LocationID: conn.TenantID,
		Email:      email,
		FirstName:  given,
		LastName:   family,
		Phone:      strings.TrimSpace(event.Phone),
		Source:     contactSource,
		Tags:       s.buildTags(ctx, conn, m, event),
	})
	if err != nil {
		s.Logger.Error("crm contact creation failed",
			zap.String("tenant_id", conn.TenantID),
			zap.Error(err))
		return s.record(ctx, &ledger.Entry{
			TenantID:     conn.TenantID,
			DeviceID:     m.DeviceID,
			ContactEmail: email,
			Status:       ledger.StatusError,
			ErrorDetail:  err.Error(),
		}, Result{Status: ledger.StatusError, Reason: err.Error(), GHLLocationID: conn.TenantID})
	}

	// 9. Record success.
	if err := s.Ledger.MarkSynced(ctx, conn.TenantID, email); err != nil {
		s.Logger.Error("failed to write idempotence marker",
			zap.String("tenant_id", conn.TenantID),
			zap.Error(err))
	}

	s.Logger.Info("contact synced",
		zap.String("tenant_id", conn.TenantID),
		zap.String("device_id", m.DeviceID))

	return s.record(ctx, &ledger.Entry{
		TenantID:     conn.TenantID,
		DeviceID:     m.DeviceID,
		ContactEmail: email,
		Status:       ledger.StatusSuccess,
		CRMContactID: contactID,
	}, Result{
		Status:        ledger.StatusSuccess,
		GHLContactID:  contactID,
		GHLLocationID: conn.TenantID,
	})
}

// ProcessBatch replays a sequence of events one at a time. A failing event
// never aborts the batch, and a fixed pacing delay between events keeps
// batch replays inside CRM rate limits.
func (s *SyncServiceImpl) ProcessBatch(ctx context.Context, events []ContactEvent) BatchSummary {
	summary := BatchSummary{Total: len(events)}

	for i, event := range events {
		result := s.ProcessContact(ctx, event)
		switch result.Status {
		case ledger.StatusSuccess:
			summary.Success++
		case ledger.StatusSkipped:
			summary.Skipped++
		default:
			summary.Errors++
		}

		if i < len(events)-1 {
			time.Sleep(batchPacing)
		}
	}
	return summary
}

// record appends the ledger entry for a terminal outcome. Ledger failures
// are logged, never surfaced; the caller still gets its result.
func (s *SyncServiceImpl) record(ctx context.Context, entry *ledger.Entry, result Result) Result {
	if err := s.Ledger.Append(ctx, entry); err != nil {
		s.Logger.Error("failed to append ledger entry",
			zap.String("tenant_id", entry.TenantID),
			zap.Error(err))
	}
	return result
}

// buildTags assembles the contact tag set: the fixed network tag, the
// mapping's sub-venue label if present, and whatever the tenant's tag
// script adds. Script failures are logged and otherwise ignored.
func (s *SyncServiceImpl) buildTags(ctx context.Context, conn *tenant.Connection, m *mapping.Mapping, event ContactEvent) []string {
	tags := []string{defaultContactTag}
	if m.SubVenueLabel != "" {
		tags = append(tags, m.SubVenueLabel)
	}

	if conn.TagScript != "" {
		extra, err := tagrules.Evaluate(ctx, conn.TagScript, tagrules.Event{
			DeviceID: m.DeviceID,
			Email:    event.Email,
			Name:     event.Name,
			Phone:    event.Phone,
			Label:    m.SubVenueLabel,
		})
		if err != nil {
			s.Logger.Warn("tag script failed",
				zap.String("tenant_id", conn.TenantID),
				zap.Error(err))
		} else {
			tags = append(tags, extra...)
		}
	}
	return tags
}

// splitName treats the first whitespace-delimited token as the given name
// and the rest as the family name.
func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
