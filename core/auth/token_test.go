package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, secret string, ttl time.Duration) *TokenService {
	svc, err := NewTokenService([]byte(secret), ttl, "Darasa")
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := NewTokenService(nil, time.Hour, "Darasa")
	assert.Equal(t, ErrEmptySecret, err)
}

func TestTokenService_IssueVerify(t *testing.T) {
	svc := newTestService(t, "secret", time.Hour)

	ids := []Identity{
		{ID: "u1", Role: RoleStudent, Email: "s1@test.cd", FirstName: "Hero", LastName: "Mbuyi"},
		{ID: "u2", Role: RoleFaculty, Email: "prof@test.cd", FirstName: "Jean", LastName: "Kasa"},
		{ID: "u3", Role: RoleAdmin},
	}
	for _, id := range ids {
		t.Run(string(id.Role), func(t *testing.T) {
			token, err := svc.Issue(id)
			require.NoError(t, err)

			res := svc.Verify(token)
			require.True(t, res.OK(), "status = %v", res.Status)
			assert.Equal(t, Principal{
				ID:        id.ID,
				Role:      id.Role,
				Email:     id.Email,
				FirstName: id.FirstName,
				LastName:  id.LastName,
			}, res.Principal)
		})
	}
}

func TestTokenService_IssueWithoutID(t *testing.T) {
	svc := newTestService(t, "secret", time.Hour)
	_, err := svc.Issue(Identity{Role: RoleAdmin})
	assert.Equal(t, ErrNoSubject, err)
}

func TestTokenService_Verify(t *testing.T) {
	svc := newTestService(t, "secret", time.Hour)
	id := Identity{ID: "u1", Role: RoleStudent, Email: "s1@test.cd"}

	otherSvc := newTestService(t, "other-secret", time.Hour)
	foreignToken, err := otherSvc.Issue(id)
	require.NoError(t, err)

	// generate an expired token
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := svc.Issue(id)
	require.NoError(t, err)
	svc.now = time.Now // reset

	badRoleToken, err := svc.Issue(Identity{ID: "u1", Role: Role("janitor")})
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             RoleAdmin,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Role:             RoleAdmin,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  VerifyStatus
	}{
		{name: "empty", token: "", want: TokenInvalid},
		{name: "garbage", token: "lmaooolol", want: TokenInvalid},
		{name: "jwt-looking garbage", token: "not.a.jwt", want: TokenInvalid},
		{name: "wrong secret", token: foreignToken, want: TokenInvalid},
		{name: "expired", token: expiredToken, want: TokenExpired},
		{name: "unknown role", token: badRoleToken, want: TokenInvalid},
		{name: "alg none", token: noneToken, want: TokenInvalid},
		{name: "no expiry", token: noExpToken, want: TokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res VerifyResult
			assert.NotPanics(t, func() { res = svc.Verify(tt.token) })
			assert.Equal(t, tt.want, res.Status)
			assert.False(t, res.OK())
			assert.Equal(t, Principal{}, res.Principal)
		})
	}
}
