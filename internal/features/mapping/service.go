package mapping

import (
	"context"
	"fmt"
	"io"

	"guestsync/internal/connectors"
	"guestsync/internal/features/venue"
	"guestsync/pkg/normalize"

	"go.uber.org/zap"
)

type MappingService interface {
	CreateOrUpdate(ctx context.Context, rawDeviceID, tenantID, label, sourceName string) error
	BulkMap(ctx context.Context, tenantID string, rawDeviceIDs []string, label, sourceName string) (int, error)
	Resolve(ctx context.Context, rawDeviceID string) (*Mapping, error)
	ListByTenant(ctx context.Context, tenantID string) ([]Mapping, error)
	Onboard(ctx context.Context, tenantID, email, locationName string) (*OnboardResult, error)
	ImportSpreadsheet(ctx context.Context, tenantID string, file io.Reader) (int, error)
}

type MappingServiceImpl struct {
	Repo      MappingRepository
	Directory connectors.VenueDirectory
	Logger    *zap.Logger
}

func NewMappingService(repo MappingRepository, directory connectors.VenueDirectory, logger *zap.Logger) MappingService {
	return &MappingServiceImpl{
		Repo:      repo,
		Directory: directory,
		Logger:    logger,
	}
}

func (s *MappingServiceImpl) CreateOrUpdate(ctx context.Context, rawDeviceID, tenantID, label, sourceName string) error {
	deviceID, err := normalize.DeviceID(rawDeviceID)
	if err != nil {
		return err
	}
	return s.Repo.Upsert(ctx, &Mapping{
		DeviceID:      deviceID,
		TenantID:      tenantID,
		SubVenueLabel: label,
		SourceName:    sourceName,
	})
}

// BulkMap maps every usable id in the list to the tenant and reports how
// many it accepted. Ids that strip down to fewer than 11 hex characters are
// skipped outright; directory inventories occasionally carry truncated MACs
// and a whole onboarding run must not fail on one bad row.
func (s *MappingServiceImpl) BulkMap(ctx context.Context, tenantID string, rawDeviceIDs []string, label, sourceName string) (int, error) {
	count := 0
	for _, raw := range rawDeviceIDs {
		deviceID, err := normalize.DeviceID(raw)
		if err != nil {
			stripped := normalize.StripDeviceID(raw)
			if len(stripped) < 11 {
				s.Logger.Warn("skipping malformed device id",
					zap.String("raw", raw),
					zap.String("tenant_id", tenantID))
				continue
			}
			// Close enough to keep; stored as-is so a later inventory
			// correction can overwrite it.
			deviceID = stripped
		}

		err = s.Repo.Upsert(ctx, &Mapping{
			DeviceID:      deviceID,
			TenantID:      tenantID,
			SubVenueLabel: label,
			SourceName:    sourceName,
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Resolve is the hot-path lookup used on every inbound event.
func (s *MappingServiceImpl) Resolve(ctx context.Context, rawDeviceID string) (*Mapping, error) {
	deviceID, err := normalize.DeviceID(rawDeviceID)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByDeviceID(ctx, deviceID)
}

func (s *MappingServiceImpl) ListByTenant(ctx context.Context, tenantID string) ([]Mapping, error) {
	return s.Repo.ListByTenant(ctx, tenantID)
}

// Onboard resolves the (email, location name) pair against the venue
// directory and maps every matched venue's devices to the tenant. A group
// match maps each venue under its own label so multi-venue accounts can tag
// contacts per venue.
func (s *MappingServiceImpl) Onboard(ctx context.Context, tenantID, email, locationName string) (*OnboardResult, error) {
	venues, err := s.Directory.VenuesByOwner(ctx, email)
	if err != nil {
		return nil, err
	}

	match := venue.Match(email, locationName, venues)
	switch match.Kind {
	case venue.MatchNone:
		return &OnboardResult{Matched: false}, nil

	case venue.MatchSingle:
		v := match.Venues[0]
		mapped, err := s.BulkMap(ctx, tenantID, v.DeviceIDs, "", v.DisplayName)
		if err != nil {
			return nil, err
		}
		s.Logger.Info("venue onboarded",
			zap.String("tenant_id", tenantID),
			zap.String("venue", v.DisplayName),
			zap.Int("mapped", mapped))
		return &OnboardResult{
			Matched: true,
			Venues:  []string{v.DisplayName},
			Mapped:  mapped,
		}, nil

	case venue.MatchGroup:
		result := &OnboardResult{Matched: true, GroupName: match.GroupName}
		for _, v := range match.Venues {
			mapped, err := s.BulkMap(ctx, tenantID, v.DeviceIDs, normalize.Label(v.DisplayName), v.DisplayName)
			if err != nil {
				return nil, err
			}
			result.Venues = append(result.Venues, v.DisplayName)
			result.Mapped += mapped
		}
		s.Logger.Info("venue group onboarded",
			zap.String("tenant_id", tenantID),
			zap.String("group", match.GroupName),
			zap.Int("mapped", result.Mapped))
		return result, nil
	}

	return nil, fmt.Errorf("unexpected match kind %d", match.Kind)
}
