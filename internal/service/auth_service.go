package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/auth"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/mapper"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/taxid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultTokenTTL is how long an issued bearer token stays valid
const DefaultTokenTTL = 12 * time.Hour

// AuthService exchanges staff credentials for bearer tokens
type AuthService struct {
	personRepo *repository.PersonRepository
	staffRepo  *repository.StaffUserRepository
	validator  *auth.JWTValidator
	ttl        time.Duration
	logger     *zap.Logger
}

func NewAuthService(
	personRepo *repository.PersonRepository,
	staffRepo *repository.StaffUserRepository,
	validator *auth.JWTValidator,
	ttl time.Duration,
	logger *zap.Logger,
) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		personRepo: personRepo,
		staffRepo:  staffRepo,
		validator:  validator,
		ttl:        ttl,
		logger:     logger,
	}
}

// Login verifies the bcrypt hash of a staff user. The system sentinel never
// logs in interactively.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	canonical := taxid.Normalize(req.TaxID)
	if canonical == "" {
		return nil, ErrInvalidCredentials
	}

	person, err := s.personRepo.GetByTaxID(ctx, canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up person: %w", err)
	}

	staff, err := s.staffRepo.GetByID(ctx, person.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up staff user: %w", err)
	}
	if staff.Profile == domain.StaffProfileSystem {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Failed staff login", zap.Uint("person_id", person.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.validator.IssueToken(&auth.UserContext{
		PersonID: person.ID,
		Name:     person.Name,
		Profile:  staff.Profile,
	}, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("Staff user logged in",
		zap.Uint("person_id", person.ID),
		zap.String("profile", string(staff.Profile)),
	)

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.ttl).UTC(),
		User:      mapper.ToStaffUserDTO(staff),
	}, nil
}
