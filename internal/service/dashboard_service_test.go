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

func TestDashboardService_GetStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewDashboardService(
		repository.NewPersonRepository(db),
		repository.NewCustomerRepository(db),
		zap.NewNop(),
	)
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		stats, err := svc.GetStats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalCustomers)
		assert.Zero(t, stats.TotalLeads)
		assert.NotNil(t, stats.ByStatus)
		assert.Empty(t, stats.ByStatus)
	})

	a := testutil.CreateTestCustomer(t, db, "Ana", "11111111111")
	testutil.CreateTestCustomer(t, db, "Bia", "22222222222")
	testutil.CreateTestPerson(t, db, "Lead 1", "LEAD-1")
	testutil.CreateTestStaffUser(t, db, "Bruno", "33333333333", domain.StaffProfileSalesperson)
	require.NoError(t, repository.NewCustomerRepository(db).UpdateStatus(ctx, a.PersonID, domain.CustomerStatusSold))

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Equal(t, int64(2), stats.TotalLeads)
	assert.ElementsMatch(t, []domain.CountByValue{
		{Value: string(domain.CustomerStatusNewContact), Count: 1},
		{Value: string(domain.CustomerStatusSold), Count: 1},
	}, stats.ByStatus)
	assert.Equal(t, []domain.CountByValue{
		{Value: string(domain.ClassificationUnclassified), Count: 2},
	}, stats.ByClassification)
}
