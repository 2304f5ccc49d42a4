package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"guestsync/internal/connectors"

	"go.uber.org/zap"
)

type fakeConnectionRepo struct {
	conns map[string]*Connection
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{conns: map[string]*Connection{}}
}

func (r *fakeConnectionRepo) Upsert(ctx context.Context, conn *Connection) error {
	copied := *conn
	r.conns[conn.TenantID] = &copied
	return nil
}

func (r *fakeConnectionRepo) Get(ctx context.Context, tenantID string) (*Connection, error) {
	conn, ok := r.conns[tenantID]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *conn
	return &copied, nil
}

func (r *fakeConnectionRepo) UpdateTokens(ctx context.Context, tenantID, accessToken, refreshToken string, expiresAt time.Time) error {
	conn, ok := r.conns[tenantID]
	if !ok {
		return errors.New("not found")
	}
	conn.AccessToken = accessToken
	conn.RefreshToken = refreshToken
	conn.TokenExpiresAt = expiresAt
	return nil
}

func (r *fakeConnectionRepo) Deactivate(ctx context.Context, tenantID string) error {
	if conn, ok := r.conns[tenantID]; ok {
		conn.Active = false
	}
	return nil
}

func (r *fakeConnectionRepo) SetTagScript(ctx context.Context, tenantID, script string) error {
	if conn, ok := r.conns[tenantID]; ok {
		conn.TagScript = script
	}
	return nil
}

func (r *fakeConnectionRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeCRM struct {
	refreshCalls int
	refreshErr   error
	pair         *connectors.TokenPair
}

func (c *fakeCRM) ExchangeCode(ctx context.Context, code string) (*connectors.TokenPair, error) {
	return c.pair, nil
}

func (c *fakeCRM) RefreshToken(ctx context.Context, refreshToken string) (*connectors.TokenPair, error) {
	c.refreshCalls++
	if c.refreshErr != nil {
		return nil, c.refreshErr
	}
	return c.pair, nil
}

func (c *fakeCRM) CreateContact(ctx context.Context, accessToken string, req connectors.ContactRequest) (string, error) {
	return "", errors.New("not implemented")
}

func TestEnsureValidTokenFreshToken(t *testing.T) {
	repo := newFakeConnectionRepo()
	crm := &fakeCRM{}
	svc := NewConnectionService(repo, crm, zap.NewNop())

	conn := &Connection{
		TenantID:       "loc-1",
		AccessToken:    "stored-token",
		RefreshToken:   "stored-refresh",
		TokenExpiresAt: time.Now().Add(time.Hour),
		Active:         true,
	}

	token, err := svc.EnsureValidToken(context.Background(), conn)
	if err != nil {
		t.Fatalf("EnsureValidToken() error = %v", err)
	}
	if token != "stored-token" {
		t.Errorf("token = %q, want stored token", token)
	}
	if crm.refreshCalls != 0 {
		t.Errorf("refresh calls = %d, want 0", crm.refreshCalls)
	}
}

func TestEnsureValidTokenExpiringSoon(t *testing.T) {
	repo := newFakeConnectionRepo()
	conn := &Connection{
		TenantID:       "loc-1",
		AccessToken:    "stale-token",
		RefreshToken:   "stored-refresh",
		TokenExpiresAt: time.Now().Add(2 * time.Minute),
		Active:         true,
	}
	_ = repo.Upsert(context.Background(), conn)

	crm := &fakeCRM{
		pair: &connectors.TokenPair{
			AccessToken:  "fresh-token",
			RefreshToken: "rotated-refresh",
			ExpiresIn:    86400,
		},
	}
	svc := NewConnectionService(repo, crm, zap.NewNop())

	token, err := svc.EnsureValidToken(context.Background(), conn)
	if err != nil {
		t.Fatalf("EnsureValidToken() error = %v", err)
	}
	if token != "fresh-token" {
		t.Errorf("token = %q, want refreshed token", token)
	}
	if crm.refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want 1", crm.refreshCalls)
	}

	stored, _ := repo.Get(context.Background(), "loc-1")
	if stored.AccessToken != "fresh-token" || stored.RefreshToken != "rotated-refresh" {
		t.Errorf("rotated pair not persisted: %+v", stored)
	}
}

func TestEnsureValidTokenRefreshFailure(t *testing.T) {
	repo := newFakeConnectionRepo()
	conn := &Connection{
		TenantID:       "loc-1",
		RefreshToken:   "stored-refresh",
		TokenExpiresAt: time.Now().Add(time.Minute),
		Active:         true,
	}
	_ = repo.Upsert(context.Background(), conn)

	crm := &fakeCRM{refreshErr: errors.New("upstream 500")}
	svc := NewConnectionService(repo, crm, zap.NewNop())

	_, err := svc.EnsureValidToken(context.Background(), conn)
	if !errors.Is(err, ErrTokenRefreshFailed) {
		t.Errorf("error = %v, want ErrTokenRefreshFailed", err)
	}
}
