package service

import (
	"context"
	"fmt"

	"salonbook/internal/domain"
	"salonbook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CatalogService validates services before they reach storage, so an
// invalid duration can never reach the slot generator.
type CatalogService struct {
	catalog domain.ServiceCatalog
	logger  *zerolog.Logger
}

func NewCatalogService(catalog domain.ServiceCatalog, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		logger:  logger,
	}
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	return s.catalog.GetService(ctx, id)
}

func (s *CatalogService) ListServices(ctx context.Context, providerID string) ([]*models.Service, error) {
	return s.catalog.ListServices(ctx, providerID)
}

func (s *CatalogService) SaveService(ctx context.Context, svc *models.Service) error {
	if err := svc.Validate(); err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	if err := s.catalog.UpsertService(ctx, svc); err != nil {
		return err
	}
	s.logger.Info().Str("service_id", svc.ID).Str("provider_id", svc.ProviderID).Msg("service saved")
	return nil
}

func (s *CatalogService) DeactivateService(ctx context.Context, id string) error {
	return s.catalog.DeactivateService(ctx, id)
}
