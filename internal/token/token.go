package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	// ErrInvalidToken covers every decode failure the caller must not be
	// able to distinguish: malformed input, bad signature, wrong algorithm,
	// missing or past expiry.
	ErrInvalidToken = errors.New("could not validate credentials")
	// ErrWrongKind is returned when a token of one kind is presented where
	// the other is expected.
	ErrWrongKind = errors.New("invalid token type")
)

var methods = map[string]*jwt.SigningMethodHMAC{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	UserID    uint
	ExpiresAt time.Time
	IsRefresh bool
}

// Service signs and verifies bearer tokens with a single shared secret.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(secret []byte, algorithm string, accessTTL, refreshTTL time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: empty signing secret")
	}
	method, ok := methods[algorithm]
	if !ok {
		return nil, fmt.Errorf("token: unsupported algorithm %q", algorithm)
	}
	return &Service{
		secret:     secret,
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// Issue builds a signed token for userID expiring at now plus the TTL of the
// requested kind. Refresh tokens carry an is_refresh claim, access tokens
// omit it.
func (s *Service) Issue(userID uint, kind Kind, now time.Time) (string, error) {
	ttl := s.accessTTL
	if kind == KindRefresh {
		ttl = s.refreshTTL
	}

	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(ttl).UTC().Unix(),
	}
	if kind == KindRefresh {
		claims["is_refresh"] = true
	}

	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Verify checks signature, expiry and kind, in that order. Any signature or
// expiry failure collapses into ErrInvalidToken; a kind mismatch yields
// ErrWrongKind.
func (s *Service) Verify(raw string, expected Kind, now time.Time) (*Claims, error) {
	parsed, err := jwt.Parse(raw,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	isRefresh, _ := mapClaims["is_refresh"].(bool)
	if expected == KindRefresh && !isRefresh {
		return nil, ErrWrongKind
	}
	if expected == KindAccess && isRefresh {
		return nil, ErrWrongKind
	}

	claims := &Claims{
		ExpiresAt: exp.Time,
		IsRefresh: isRefresh,
	}
	if id, ok := mapClaims["user_id"].(float64); ok {
		claims.UserID = uint(id)
	}

	return claims, nil
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }
