// Package browsercontext identifies the browser a request comes from. Each
// browser gets a random context id carried in an HS256-signed cookie; the id
// scopes everything the browser would otherwise keep in its own storage.
package browsercontext

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	contextKey = "browser_context_id"
	issuer     = "newsroom-console"
)

// Options configures the context cookie.
type Options struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

// Signer issues and verifies context cookies.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner builds a signer for the given secret.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token for the context id.
func (s *Signer) Issue(id string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies the token and returns the context id it carries.
func (s *Signer) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid context token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid context id: %w", err)
	}
	return claims.Subject, nil
}

// Middleware resolves the browser context of the request, minting a new one
// when the cookie is missing, expired or tampered with.
func Middleware(opts Options) gin.HandlerFunc {
	signer := NewSigner(opts.Secret, opts.TTL)
	name := opts.CookieName
	if name == "" {
		name = "nr_ctx"
	}

	return func(c *gin.Context) {
		var id string
		if raw, err := c.Cookie(name); err == nil && raw != "" {
			if parsed, err := signer.Parse(raw); err == nil {
				id = parsed
			}
		}

		if id == "" {
			id = uuid.NewString()
			token, err := signer.Issue(id)
			if err != nil {
				_ = c.Error(err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     name,
				Value:    token,
				Path:     "/",
				MaxAge:   int(signer.ttl.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Set(contextKey, id)
		c.Next()
	}
}

// Value returns the context id stored on the gin context.
func Value(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// Set stores a context id on the gin context; tests and the CLI use it to
// bypass the cookie.
func Set(c *gin.Context, id string) {
	c.Set(contextKey, id)
}
