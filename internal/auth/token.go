package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mtyhostal/apiserver/config"
	"github.com/mtyhostal/apiserver/types"
)

// DefaultTokenTTL is used when the configured TTL is zero.
const DefaultTokenTTL = time.Hour

// ErrInvalidToken is returned for any credential that does not verify:
// bad signature, malformed structure, or expired. Callers must not learn
// which; the distinction stays inside this package.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the request-scoped result of verifying a bearer token.
// It lives in the request context only; no session state is kept.
type Identity struct {
	UserID int
	Email  string
	Role   types.Role
}

// Claims is the JWT payload: subject id, email, role, a unique token id
// and the registered expiry.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs time-boxed bearer tokens with a symmetric key.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer constructs an Issuer from injected configuration.
func NewIssuer(cfg config.JWTConfig) *Issuer {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the issuer's clock. Used by tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue signs a token for the user: HS256, expiry = now + TTL, with a fresh
// token id (jti) for traceability. Tokens are never persisted; validity is
// computed from signature and expiry alone.
func (i *Issuer) Issue(user types.User) (string, error) {
	now := i.now()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verifier validates bearer tokens against the server's symmetric key.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier constructs a Verifier from injected configuration.
func NewVerifier(cfg config.JWTConfig) *Verifier {
	return &Verifier{
		secret: []byte(cfg.Secret),
		now:    time.Now,
	}
}

// WithClock overrides the verifier's clock. Used by tests.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// Verify validates a raw bearer string and returns the identity it encodes.
// Expiry is strict: no leeway, no grace period. All failures collapse into
// ErrInvalidToken.
func (v *Verifier) Verify(raw string) (Identity, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return Identity{}, ErrInvalidToken
	}
	role, err := types.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID: userID,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
