package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrNoSecret     = errors.New("bearer authentication is not configured")
)

// Issuer is written to and required in every token
const Issuer = "dealerconnect"

// Claims are the bearer token claims; Subject carries the staff person ID
type Claims struct {
	Name    string              `json:"name"`
	Profile domain.StaffProfile `json:"profile"`
	jwt.RegisteredClaims
}

// JWTValidator issues and validates HS256 tokens signed with a shared secret
type JWTValidator struct {
	secret []byte
	now    func() time.Time
}

// NewJWTValidator creates a new JWT validator. An empty secret rejects every token.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret), now: time.Now}
}

// IssueToken signs a token for a staff user valid for ttl
func (v *JWTValidator) IssueToken(user *UserContext, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}
	now := v.now()
	claims := Claims{
		Name:    user.Name,
		Profile: user.Profile,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   strconv.FormatUint(uint64(user.PersonID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// ValidateToken validates a token and returns the caller it identifies
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, ErrNoSecret
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	personID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || personID == 0 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return &UserContext{
		PersonID: uint(personID),
		Name:     claims.Name,
		Profile:  claims.Profile,
		AuthType: AuthTypeJWT,
	}, nil
}
