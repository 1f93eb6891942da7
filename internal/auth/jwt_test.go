package auth_test

import (
	"testing"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/auth"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := auth.NewJWTValidator("test-secret")
	token, err := v.IssueToken(&auth.UserContext{
		PersonID: 42,
		Name:     "Bruno Costa",
		Profile:  domain.StaffProfileSalesperson,
	}, time.Hour)
	require.NoError(t, err)

	user, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), user.PersonID)
	assert.Equal(t, "Bruno Costa", user.Name)
	assert.Equal(t, domain.StaffProfileSalesperson, user.Profile)
	assert.Equal(t, auth.AuthTypeJWT, user.AuthType)
	assert.False(t, user.IsAdmin())
}

func TestJWTValidator_Rejects(t *testing.T) {
	v := auth.NewJWTValidator("test-secret")
	user := &auth.UserContext{PersonID: 1, Name: "Admin", Profile: domain.StaffProfileAdmin}

	expired, err := v.IssueToken(user, -time.Minute)
	require.NoError(t, err)

	otherSecret, err := auth.NewJWTValidator("other-secret").IssueToken(user, time.Hour)
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    auth.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "expired", token: expired, want: auth.ErrExpiredToken},
		{name: "signed with another secret", token: otherSecret, want: auth.ErrInvalidToken},
		{name: "wrong issuer", token: wrongIssuer, want: auth.ErrInvalidToken},
		{name: "missing subject", token: noSubject, want: auth.ErrInvalidToken},
		{name: "garbage", token: "not.a.token", want: auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestJWTValidator_NoSecret(t *testing.T) {
	v := auth.NewJWTValidator("")
	_, err := v.IssueToken(&auth.UserContext{PersonID: 1}, time.Hour)
	assert.ErrorIs(t, err, auth.ErrNoSecret)

	_, err = v.ValidateToken("anything")
	assert.ErrorIs(t, err, auth.ErrNoSecret)
}
