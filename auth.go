package main

// auth.go covers identity tokens, session cookies and the admin guard.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	sessionCookieName = "token"
	userIDCookieName  = "userId"
	sessionTTL        = 24 * time.Hour
	idTokenTTL        = time.Hour

	idTokenIssuer = "portfolio-identity"
	sessionIssuer = "portfolio-session"
)

type Identity struct {
	UID   string
	Email string
}

// IdentityProvider verifies who is calling. The built-in implementation is
// TokenProvider; anything that speaks ID tokens and session cookies fits.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (Identity, error)
	CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	VerifySessionCookie(ctx context.Context, cookie string, checkRevoked bool) (Identity, error)
	RevokeSession(ctx context.Context, cookie string) error
}

type identityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenProvider issues HS256 JWTs. ID tokens and session cookies use separate
// keys so one can never stand in for the other.
type TokenProvider struct {
	idKey      []byte
	sessionKey []byte
	revoked    *cache.Cache
	now        func() time.Time
}

func NewTokenProvider(idTokenSecret, sessionSecret string) *TokenProvider {
	return &TokenProvider{
		idKey:      []byte(idTokenSecret),
		sessionKey: []byte(sessionSecret),
		revoked:    cache.New(sessionTTL, 10*time.Minute),
		now:        time.Now,
	}
}

// IssueIDToken mints a short-lived ID token for an already authenticated user.
func (p *TokenProvider) IssueIDToken(uid, email string) (string, error) {
	return p.sign(p.idKey, idTokenIssuer, uid, email, idTokenTTL)
}

func (p *TokenProvider) VerifyIDToken(_ context.Context, idToken string) (Identity, error) {
	claims, err := p.parse(p.idKey, idTokenIssuer, idToken)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UID: claims.Subject, Email: claims.Email}, nil
}

func (p *TokenProvider) CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	id, err := p.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return p.sign(p.sessionKey, sessionIssuer, id.UID, id.Email, expiresIn)
}

func (p *TokenProvider) VerifySessionCookie(_ context.Context, cookie string, checkRevoked bool) (Identity, error) {
	claims, err := p.parse(p.sessionKey, sessionIssuer, cookie)
	if err != nil {
		return Identity{}, err
	}
	if checkRevoked {
		if _, found := p.revoked.Get(claims.ID); found {
			return Identity{}, errors.New("session cookie has been revoked")
		}
	}
	return Identity{UID: claims.Subject, Email: claims.Email}, nil
}

// RevokeSession remembers the cookie's id until the cookie would have expired
// anyway.
func (p *TokenProvider) RevokeSession(_ context.Context, cookie string) error {
	claims, err := p.parse(p.sessionKey, sessionIssuer, cookie)
	if err != nil {
		return err
	}
	ttl := claims.ExpiresAt.Time.Sub(p.now())
	if ttl <= 0 {
		return nil
	}
	p.revoked.Set(claims.ID, struct{}{}, ttl)
	return nil
}

func (p *TokenProvider) sign(key []byte, issuer, uid, email string, ttl time.Duration) (string, error) {
	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (p *TokenProvider) parse(key []byte, issuer, raw string) (*identityClaims, error) {
	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

type sessionCtxKey struct{}

// WithSessionToken stores the caller's session cookie for the guard.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, token)
}

func sessionToken(ctx context.Context) string {
	token, _ := ctx.Value(sessionCtxKey{}).(string)
	return token
}

// Guard admits exactly one identity: the configured admin email.
type Guard struct {
	idp        IdentityProvider
	adminEmail string
}

func NewGuard(idp IdentityProvider, adminEmail string) *Guard {
	return &Guard{idp: idp, adminEmail: adminEmail}
}

func (g *Guard) Authorize(ctx context.Context) (Identity, error) {
	token := sessionToken(ctx)
	if token == "" {
		return Identity{}, fmt.Errorf("%w: no token found", ErrUnauthorized)
	}
	id, err := g.idp.VerifySessionCookie(ctx, token, true)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !g.IsAdmin(id) {
		return Identity{}, fmt.Errorf("%w: invalid user", ErrUnauthorized)
	}
	return id, nil
}

func (g *Guard) IsAdmin(id Identity) bool {
	return g.adminEmail != "" && id.Email == g.adminEmail
}
