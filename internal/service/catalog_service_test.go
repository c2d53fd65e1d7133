package service

import (
	"context"
	"path/filepath"
	"testing"

	"salonbook/internal/database"
	"salonbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalog(t *testing.T) *CatalogService {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "catalog_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zerolog.Nop()
	return NewCatalogService(db, &logger)
}

func TestSaveService_AssignsID(t *testing.T) {
	catalog := setupCatalog(t)
	ctx := context.Background()

	svc := &models.Service{
		ProviderID:      "prov-1",
		Name:            "Manicure",
		DurationMinutes: 45,
		Price:           1800,
		Active:          true,
	}
	require.NoError(t, catalog.SaveService(ctx, svc))
	assert.NotEmpty(t, svc.ID)

	got, err := catalog.GetService(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Manicure", got.Name)
}

func TestSaveService_RejectsInvalid(t *testing.T) {
	catalog := setupCatalog(t)

	err := catalog.SaveService(context.Background(), &models.Service{
		ProviderID: "prov-1",
		Name:       "Broken",
	})
	assert.Error(t, err, "zero duration never reaches storage")
}

func TestDeactivateService_HidesFromList(t *testing.T) {
	catalog := setupCatalog(t)
	ctx := context.Background()

	svc := &models.Service{ProviderID: "prov-1", Name: "Haircut", DurationMinutes: 60, Active: true}
	require.NoError(t, catalog.SaveService(ctx, svc))
	require.NoError(t, catalog.DeactivateService(ctx, svc.ID))

	list, err := catalog.ListServices(ctx, "prov-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
