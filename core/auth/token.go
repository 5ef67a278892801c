package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var (
	signingMethod = jwt.SigningMethodHS256

	ErrEmptySecret = errors.New("token secret is required")
	ErrNoSubject   = errors.New("token identity has no ID")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Role      Role   `json:"role"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type VerifyStatus int

const (
	TokenInvalid VerifyStatus = iota
	TokenExpired
	TokenValid
)

func (s VerifyStatus) String() string {
	switch s {
	case TokenValid:
		return "valid"
	case TokenExpired:
		return "expired"
	default:
		return "invalid"
	}
}

// VerifyResult is the outcome of TokenService.Verify. Principal is only set when Status is TokenValid.
type VerifyResult struct {
	Status    VerifyStatus
	Principal Principal
}

// OK collapses the result into "authenticated or not".
func (r VerifyResult) OK() bool { return r.Status == TokenValid }

// TokenService mints and verifies identity tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration, issuer string) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue generates a signed token for the given identity, valid for the service's TTL.
func (s *TokenService) Issue(id Identity) (string, error) {
	if id.ID == "" {
		return "", ErrNoSubject
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role:      id.Role,
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
	}

	ss, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify never fails loudly: every way a token can be bad ends up as TokenInvalid or TokenExpired.
func (s *TokenService) Verify(token string) (res VerifyResult) {
	defer func() {
		if r := recover(); r != nil {
			res = VerifyResult{Status: TokenInvalid}
		}
	}()

	if token == "" {
		return VerifyResult{Status: TokenInvalid}
	}

	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return VerifyResult{Status: TokenExpired}
		}
		return VerifyResult{Status: TokenInvalid}
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return VerifyResult{Status: TokenInvalid}
	}

	return VerifyResult{
		Status: TokenValid,
		Principal: Principal{
			ID:        claims.Subject,
			Role:      claims.Role,
			Email:     claims.Email,
			FirstName: claims.FirstName,
			LastName:  claims.LastName,
		},
	}
}
