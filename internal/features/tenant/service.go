package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guestsync/internal/connectors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrTokenRefreshFailed marks a failed refresh exchange. The in-flight sync
// aborts with an error outcome; the next inbound event retries naturally.
var ErrTokenRefreshFailed = errors.New("token refresh failed")

// tokenSkew is how close to expiry a stored token is still trusted.
const tokenSkew = 5 * time.Minute

type ConnectionService interface {
	Authorize(ctx context.Context, code string) (*Connection, error)
	Uninstall(ctx context.Context, tenantID string) error
	Get(ctx context.Context, tenantID string) (*Connection, error)
	SetTagScript(ctx context.Context, tenantID, script string) error
	EnsureValidToken(ctx context.Context, conn *Connection) (string, error)
}

type ConnectionServiceImpl struct {
	Repo   ConnectionRepository
	CRM    connectors.CRMClient
	Logger *zap.Logger

	// refreshGroup collapses concurrent refreshes for the same tenant.
	// Correctness does not depend on it; it only avoids burning refresh
	// tokens when events for one tenant arrive close together.
	refreshGroup singleflight.Group
}

func NewConnectionService(repo ConnectionRepository, crm connectors.CRMClient, logger *zap.Logger) ConnectionService {
	return &ConnectionServiceImpl{
		Repo:   repo,
		CRM:    crm,
		Logger: logger,
	}
}

// Authorize exchanges an authorization code for tokens and activates the
// tenant connection. Re-authorizing an uninstalled tenant reactivates it.
func (s *ConnectionServiceImpl) Authorize(ctx context.Context, code string) (*Connection, error) {
	pair, err := s.CRM.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if pair.LocationID == "" {
		return nil, fmt.Errorf("token exchange returned no location id")
	}

	conn := &Connection{
		TenantID:       pair.LocationID,
		AccessToken:    pair.AccessToken,
		RefreshToken:   pair.RefreshToken,
		TokenExpiresAt: time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second),
		Active:         true,
	}

	if err := s.Repo.Upsert(ctx, conn); err != nil {
		return nil, err
	}

	s.Logger.Info("tenant authorized", zap.String("tenant_id", conn.TenantID))
	return conn, nil
}

func (s *ConnectionServiceImpl) Uninstall(ctx context.Context, tenantID string) error {
	if err := s.Repo.Deactivate(ctx, tenantID); err != nil {
		return err
	}
	s.Logger.Info("tenant uninstalled", zap.String("tenant_id", tenantID))
	return nil
}

func (s *ConnectionServiceImpl) Get(ctx context.Context, tenantID string) (*Connection, error) {
	return s.Repo.Get(ctx, tenantID)
}

func (s *ConnectionServiceImpl) SetTagScript(ctx context.Context, tenantID, script string) error {
	return s.Repo.SetTagScript(ctx, tenantID, script)
}

// EnsureValidToken returns a usable access token for the connection. Tokens
// expiring more than the skew window from now are returned unchanged;
// otherwise a synchronous refresh exchange runs, the rotated pair is
// persisted, and the new access token is returned. There is no background
// refresh loop, so idle tenants never spend refresh calls.
func (s *ConnectionServiceImpl) EnsureValidToken(ctx context.Context, conn *Connection) (string, error) {
	if time.Until(conn.TokenExpiresAt) > tokenSkew {
		return conn.AccessToken, nil
	}

	token, err, _ := s.refreshGroup.Do(conn.TenantID, func() (interface{}, error) {
		pair, err := s.CRM.RefreshToken(ctx, conn.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTokenRefreshFailed, err)
		}

		expiresAt := time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second)
		if err := s.Repo.UpdateTokens(ctx, conn.TenantID, pair.AccessToken, pair.RefreshToken, expiresAt); err != nil {
			return "", fmt.Errorf("%w: persisting rotated tokens: %v", ErrTokenRefreshFailed, err)
		}

		s.Logger.Info("access token refreshed", zap.String("tenant_id", conn.TenantID))
		return pair.AccessToken, nil
	})
	if err != nil {
		s.Logger.Error("token refresh failed",
			zap.String("tenant_id", conn.TenantID),
			zap.Error(err))
		return "", err
	}
	return token.(string), nil
}
