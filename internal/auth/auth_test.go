package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth() *Authenticator {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New("test-secret", l)
}

func TestIssueAndParse(t *testing.T) {
	a := newAuth()

	token, err := a.IssueToken("user-1", model.RoleOrganizer, time.Hour)
	require.NoError(t, err)

	s, err := a.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, model.Session{UserID: "user-1", Role: model.RoleOrganizer}, s)
}

func TestParse_Rejects(t *testing.T) {
	a := newAuth()

	expired, err := a.IssueToken("user-1", model.RoleAttendee, -time.Minute)
	require.NoError(t, err)

	foreign, err := New("other-secret", a.logger).IssueToken("user-1", model.RoleAttendee, time.Hour)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "superuser",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "admin"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":    expired,
		"foreign":    foreign,
		"bad role":   badRole,
		"no subject": noSubject,
		"garbage":    "not.a.token",
	} {
		_, err := a.Parse(token)
		assert.ErrorIs(t, err, ErrUnauthenticated, name)
	}
}

func TestParse_EmptyRoleIsAttendee(t *testing.T) {
	a := newAuth()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	s, err := a.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAttendee, s.Role)
}

func TestMiddleware(t *testing.T) {
	a := newAuth()
	var seen model.Session
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := a.IssueToken("user-7", model.RoleAdmin, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-7", seen.UserID)
	assert.Equal(t, model.RoleAdmin, seen.Role)
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(model.RoleOrganizer, model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		session *model.Session
		want    int
	}{
		{nil, http.StatusUnauthorized},
		{&model.Session{UserID: "u", Role: model.RoleAttendee}, http.StatusForbidden},
		{&model.Session{UserID: "u", Role: model.RoleOrganizer}, http.StatusNoContent},
		{&model.Session{UserID: "u", Role: model.RoleAdmin}, http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.session != nil {
			req = req.WithContext(WithSession(req.Context(), *tt.session))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code)
	}
}
