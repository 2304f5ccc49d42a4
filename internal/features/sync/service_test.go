package sync

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"guestsync/internal/connectors"
	"guestsync/internal/features/ledger"
	"guestsync/internal/features/mapping"
	"guestsync/internal/features/tenant"
	"guestsync/pkg/normalize"

	"go.uber.org/zap"
)

type fakeMappings struct {
	byDevice map[string]*mapping.Mapping
}

func (f *fakeMappings) CreateOrUpdate(ctx context.Context, rawDeviceID, tenantID, label, sourceName string) error {
	return nil
}

func (f *fakeMappings) BulkMap(ctx context.Context, tenantID string, rawDeviceIDs []string, label, sourceName string) (int, error) {
	return 0, nil
}

func (f *fakeMappings) Resolve(ctx context.Context, rawDeviceID string) (*mapping.Mapping, error) {
	deviceID, err := normalize.DeviceID(rawDeviceID)
	if err != nil {
		return nil, err
	}
	return f.byDevice[deviceID], nil
}

func (f *fakeMappings) ListByTenant(ctx context.Context, tenantID string) ([]mapping.Mapping, error) {
	return nil, nil
}

func (f *fakeMappings) Onboard(ctx context.Context, tenantID, email, locationName string) (*mapping.OnboardResult, error) {
	return nil, nil
}

func (f *fakeMappings) ImportSpreadsheet(ctx context.Context, tenantID string, file io.Reader) (int, error) {
	return 0, nil
}

type fakeTenants struct {
	conns      map[string]*tenant.Connection
	refreshErr error
}

func (f *fakeTenants) Authorize(ctx context.Context, code string) (*tenant.Connection, error) {
	return nil, nil
}

func (f *fakeTenants) Uninstall(ctx context.Context, tenantID string) error { return nil }

func (f *fakeTenants) Get(ctx context.Context, tenantID string) (*tenant.Connection, error) {
	conn, ok := f.conns[tenantID]
	if !ok {
		return nil, errors.New("not found")
	}
	return conn, nil
}

func (f *fakeTenants) SetTagScript(ctx context.Context, tenantID, script string) error { return nil }

func (f *fakeTenants) EnsureValidToken(ctx context.Context, conn *tenant.Connection) (string, error) {
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return conn.AccessToken, nil
}

type fakeLedger struct {
	entries []ledger.Entry
	markers map[string]bool
	stream  *ledger.Broadcaster
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{markers: map[string]bool{}, stream: ledger.NewBroadcaster()}
}

func (f *fakeLedger) Append(ctx context.Context, entry *ledger.Entry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLedger) Recent(ctx context.Context, tenantID string, limit int64) ([]ledger.Entry, error) {
	return f.entries, nil
}

func (f *fakeLedger) AlreadySynced(ctx context.Context, tenantID, email string) (bool, error) {
	return f.markers[tenantID+"|"+email], nil
}

func (f *fakeLedger) MarkSynced(ctx context.Context, tenantID, email string) error {
	f.markers[tenantID+"|"+email] = true
	return nil
}

func (f *fakeLedger) Export(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeLedger) Stream() *ledger.Broadcaster { return f.stream }

type fakeContactCRM struct {
	createCalls int
	createErr   error
	lastRequest connectors.ContactRequest
}

func (f *fakeContactCRM) ExchangeCode(ctx context.Context, code string) (*connectors.TokenPair, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeContactCRM) RefreshToken(ctx context.Context, refreshToken string) (*connectors.TokenPair, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeContactCRM) CreateContact(ctx context.Context, accessToken string, req connectors.ContactRequest) (string, error) {
	f.createCalls++
	f.lastRequest = req
	if f.createErr != nil {
		return "", f.createErr
	}
	return "crm-contact-1", nil
}

func newTestService(mappings *fakeMappings, tenants *fakeTenants, led *fakeLedger, crm *fakeContactCRM) SyncService {
	return NewSyncService(mappings, tenants, led, crm, zap.NewNop())
}

func activeConnection(tenantID string) *tenant.Connection {
	return &tenant.Connection{
		TenantID:       tenantID,
		AccessToken:    "token",
		RefreshToken:   "refresh",
		TokenExpiresAt: time.Now().Add(time.Hour),
		Active:         true,
	}
}

func mappedFixture() (*fakeMappings, *fakeTenants, *fakeLedger, *fakeContactCRM) {
	mappings := &fakeMappings{byDevice: map[string]*mapping.Mapping{
		"00:18:0a:27:29:76": {DeviceID: "00:18:0a:27:29:76", TenantID: "loc-1", SubVenueLabel: "rooftop_bar"},
	}}
	tenants := &fakeTenants{conns: map[string]*tenant.Connection{
		"loc-1": activeConnection("loc-1"),
	}}
	return mappings, tenants, newFakeLedger(), &fakeContactCRM{}
}

func TestProcessContactSuccess(t *testing.T) {
	mappings, tenants, led, crm := mappedFixture()
	svc := newTestService(mappings, tenants, led, crm)

	result := svc.ProcessContact(context.Background(), ContactEvent{
		DeviceID: "00-18-0A-27-29-76",
		Email:    "G@X.com",
		Name:     "Ada Mary Lovelace",
		Phone:    "+441234567890",
		OptIn:    true,
	})

	if result.Status != "success" {
		t.Fatalf("result = %+v, want success", result)
	}
	if result.GHLContactID != "crm-contact-1" || result.GHLLocationID != "loc-1" {
		t.Errorf("result ids = %+v", result)
	}

	req := crm.lastRequest
	if req.FirstName != "Ada" || req.LastName != "Mary Lovelace" {
		t.Errorf("name split = %q/%q", req.FirstName, req.LastName)
	}
	if req.Email != "g@x.com" {
		t.Errorf("email = %q, want lowercased", req.Email)
	}
	if len(req.Tags) != 2 || req.Tags[0] != "device-network" || req.Tags[1] != "rooftop_bar" {
		t.Errorf("tags = %v", req.Tags)
	}

	if len(led.entries) != 1 || led.entries[0].Status != ledger.StatusSuccess {
		t.Errorf("ledger entries = %+v", led.entries)
	}
	if !led.markers["loc-1|g@x.com"] {
		t.Error("idempotence marker not written")
	}
}

func TestProcessContactIdempotence(t *testing.T) {
	mappings, tenants, led, crm := mappedFixture()
	svc := newTestService(mappings, tenants, led, crm)

	event := ContactEvent{DeviceID: "00:18:0a:27:29:76", Email: "g@x.com", OptIn: "yes"}

	first := svc.ProcessContact(context.Background(), event)
	second := svc.ProcessContact(context.Background(), event)

	if first.Status != "success" {
		t.Fatalf("first = %+v, want success", first)
	}
	if second.Status != "skipped" || second.Reason != "already synced" {
		t.Fatalf("second = %+v, want skipped: already synced", second)
	}
	if crm.createCalls != 1 {
		t.Errorf("CRM calls = %d, want 1", crm.createCalls)
	}

	successes := 0
	for _, e := range led.entries {
		if e.Status == ledger.StatusSuccess {
			successes++
		}
	}
	if successes != 1 {
		t.Errorf("success entries = %d, want 1", successes)
	}
	if len(led.markers) != 1 {
		t.Errorf("markers = %d, want 1", len(led.markers))
	}
}

func TestProcessContactTerminalOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		event      ContactEvent
		setup      func(*fakeMappings, *fakeTenants, *fakeLedger, *fakeContactCRM)
		wantStatus string
		wantReason string
		wantLedger int
	}{
		{
			name:       "Missing Device",
			event:      ContactEvent{Email: "g@x.com", OptIn: true},
			wantStatus: "error",
			wantReason: "missing field",
			wantLedger: 0,
		},
		{
			name:       "Missing Email",
			event:      ContactEvent{DeviceID: "00:18:0a:27:29:76", OptIn: true},
			wantStatus: "error",
			wantReason: "missing field",
			wantLedger: 0,
		},
		{
			name:       "Opt In Absent",
			event:      ContactEvent{DeviceID: "00:18:0a:27:29:76", Email: "g@x.com"},
			wantStatus: "skipped",
			wantReason: "not opted in",
			wantLedger: 1,
		},
		{
			name:       "Unmapped Device",
			event:      ContactEvent{DeviceID: "00-18-0A-27-29-99", Email: "g@x.com", OptIn: true},
			wantStatus: "skipped",
			wantReason: "unmapped device",
			wantLedger: 1,
		},
		{
			name:  "Inactive Tenant",
			event: ContactEvent{DeviceID: "00:18:0a:27:29:76", Email: "g@x.com", OptIn: true},
			setup: func(m *fakeMappings, tn *fakeTenants, l *fakeLedger, c *fakeContactCRM) {
				tn.conns["loc-1"].Active = false
			},
			wantStatus: "error",
			wantReason: "inactive or missing connection",
			wantLedger: 1,
		},
		{
			name:  "Token Refresh Failure",
			event: ContactEvent{DeviceID: "00:18:0a:27:29:76", Email: "g@x.com", OptIn: true},
			setup: func(m *fakeMappings, tn *fakeTenants, l *fakeLedger, c *fakeContactCRM) {
				tn.refreshErr = tenant.ErrTokenRefreshFailed
			},
			wantStatus: "error",
			wantReason: "token refresh failed",
			wantLedger: 1,
		},
		{
			name:  "CRM Failure",
			event: ContactEvent{DeviceID: "00:18:0a:27:29:76", Email: "g@x.com", OptIn: true},
			setup: func(m *fakeMappings, tn *fakeTenants, l *fakeLedger, c *fakeContactCRM) {
				c.createErr = errors.New("crm call failed: contact endpoint returned 502")
			},
			wantStatus: "error",
			wantReason: "crm call failed: contact endpoint returned 502",
			wantLedger: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mappings, tenants, led, crm := mappedFixture()
			if tt.setup != nil {
				tt.setup(mappings, tenants, led, crm)
			}
			svc := newTestService(mappings, tenants, led, crm)

			result := svc.ProcessContact(context.Background(), tt.event)
			if result.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", result.Status, tt.wantStatus)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", result.Reason, tt.wantReason)
			}
			if len(led.entries) != tt.wantLedger {
				t.Errorf("ledger entries = %d, want %d", len(led.entries), tt.wantLedger)
			}
		})
	}
}

func TestProcessContactTagScript(t *testing.T) {
	mappings, tenants, led, crm := mappedFixture()
	tenants.conns["loc-1"].TagScript = `tags = ["vip"]`
	svc := newTestService(mappings, tenants, led, crm)

	result := svc.ProcessContact(context.Background(), ContactEvent{
		DeviceID: "00:18:0a:27:29:76",
		Email:    "g@x.com",
		OptIn:    true,
	})
	if result.Status != "success" {
		t.Fatalf("result = %+v", result)
	}

	tags := crm.lastRequest.Tags
	if len(tags) != 3 || tags[2] != "vip" {
		t.Errorf("tags = %v, want script tag appended", tags)
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	mappings, tenants, led, crm := mappedFixture()
	svc := newTestService(mappings, tenants, led, crm)

	events := []ContactEvent{
		{DeviceID: "00:18:0a:27:29:76", Email: "a@x.com", OptIn: true},
		{DeviceID: "", Email: "b@x.com", OptIn: true},                     // error: missing field
		{DeviceID: "00:18:0a:27:29:99", Email: "c@x.com", OptIn: true},    // skipped: unmapped
		{DeviceID: "00:18:0a:27:29:76", Email: "d@x.com", OptIn: "false"}, // skipped: not opted in
	}

	summary := svc.ProcessBatch(context.Background(), events)
	if summary.Total != 4 || summary.Success != 1 || summary.Skipped != 2 || summary.Errors != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if crm.createCalls != 1 {
		t.Errorf("CRM calls = %d, want 1", crm.createCalls)
	}
	// Validation failure writes no ledger entry; the other three outcomes do
	if len(led.entries) != 3 {
		t.Errorf("ledger entries = %d, want 3", len(led.entries))
	}
}
