// Package auth verifies bearer tokens and carries the resulting session
// through the request context.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// ErrUnauthenticated is returned when a token is missing or invalid.
var ErrUnauthenticated = errors.New("unauthenticated")

// Claims is the token body. The subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 tokens signed with a shared secret.
type Authenticator struct {
	secret []byte
	logger *logrus.Logger
}

// New constructs an Authenticator.
func New(secret string, logger *logrus.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), logger: logger}
}

// IssueToken signs a token for userID. The service itself never hands out
// tokens; cmd/token calls this for operators.
func (a *Authenticator) IssueToken(userID string, role model.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and resolves its session.
func (a *Authenticator) Parse(raw string) (model.Session, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return model.Session{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return model.Session{UserID: claims.Subject, Role: role}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// session in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		session, err := a.Parse(strings.TrimSpace(raw))
		if err != nil {
			a.logger.WithContext(r.Context()).WithError(err).Debug("rejected token")
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireRole admits only sessions holding one of roles. It must run after
// Middleware.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			for _, role := range roles {
				if session.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "insufficient role")
		})
	}
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by Middleware.
func SessionFrom(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(model.Session)
	return s, ok
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}
