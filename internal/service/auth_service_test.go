package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/auth"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/service"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setPassword(t *testing.T, db *gorm.DB, personID uint, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.StaffUser{}).
		Where("person_id = ?", personID).
		Update("password_hash", string(hash)).Error)
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	validator := auth.NewJWTValidator("secret")
	svc := service.NewAuthService(
		repository.NewPersonRepository(db),
		repository.NewStaffUserRepository(db),
		validator,
		time.Hour,
		zap.NewNop(),
	)
	ctx := context.Background()

	staff := testutil.CreateTestStaffUser(t, db, "Bruno Costa", "98765432100", domain.StaffProfileAdmin)
	setPassword(t, db, staff.PersonID, "senha_padrao_123")
	sentinel := testutil.CreateTestStaffUser(t, db, "Sistema / CNH", "00000000000", domain.StaffProfileSystem)
	setPassword(t, db, sentinel.PersonID, "sistema")
	testutil.CreateTestCustomer(t, db, "Ana Silva", "12345678900")

	t.Run("valid credentials with formatted tax id", func(t *testing.T) {
		res, err := svc.Login(ctx, &domain.LoginRequest{TaxID: "987.654.321-00", Password: "senha_padrao_123"})
		require.NoError(t, err)
		assert.Equal(t, staff.PersonID, res.User.PersonID)

		user, err := validator.ValidateToken(res.Token)
		require.NoError(t, err)
		assert.Equal(t, staff.PersonID, user.PersonID)
		assert.True(t, user.IsAdmin())
	})

	tests := []struct {
		name string
		req  domain.LoginRequest
	}{
		{name: "wrong password", req: domain.LoginRequest{TaxID: "98765432100", Password: "nope"}},
		{name: "unknown tax id", req: domain.LoginRequest{TaxID: "55555555555", Password: "senha_padrao_123"}},
		{name: "customer is not staff", req: domain.LoginRequest{TaxID: "12345678900", Password: "x"}},
		{name: "no digits", req: domain.LoginRequest{TaxID: "abc", Password: "x"}},
		{name: "system sentinel", req: domain.LoginRequest{TaxID: "00000000000", Password: "sistema"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &tt.req)
			assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		})
	}
}
