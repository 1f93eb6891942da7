package service_test

import (
	"context"
	"testing"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/service"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCatalogService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewCatalogService(
		repository.NewSegmentRepository(db),
		repository.NewVehicleRepository(db),
		zap.NewNop(),
	)
	ctx := context.Background()

	testutil.CreateTestVehicle(t, db, "Civic", "Carros")
	motos := testutil.CreateTestVehicle(t, db, "CG 160", "Motos")
	testutil.CreateTestVehicle(t, db, "Biz 125", "Motos")

	segments, err := svc.ListSegments(ctx)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "Carros", segments[0].Name)
	assert.Equal(t, "Motos", segments[1].Name)

	res, err := svc.ListVehicles(ctx, 1, 10, &repository.VehicleFilters{SegmentID: motos.SegmentID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	vehicles := res.Data.([]domain.VehicleDTO)
	require.Len(t, vehicles, 2)
	assert.Equal(t, "Biz 125", vehicles[0].Model)
	require.NotNil(t, vehicles[0].Segment)
	assert.Equal(t, "Motos", vehicles[0].Segment.Name)
}
