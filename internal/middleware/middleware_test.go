package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecobot/internal/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoSession() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(SessionID(r.Context())))
	})
}

func TestSession_IssuesCookie(t *testing.T) {
	w := httptest.NewRecorder()
	Session(echoSession()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookie, c.Name)
	assert.Zero(t, c.MaxAge)
	assert.True(t, c.HttpOnly)
	_, err := uuid.Parse(c.Value)
	assert.NoError(t, err)
	assert.Equal(t, c.Value, w.Body.String())
}

func TestSession_ReusesValidCookie(t *testing.T) {
	id := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})

	w := httptest.NewRecorder()
	Session(echoSession()).ServeHTTP(w, r)

	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, id, w.Body.String())
}

func TestSession_ReplacesForgedCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "../../etc"})

	w := httptest.NewRecorder()
	Session(echoSession()).ServeHTTP(w, r)

	require.Len(t, w.Result().Cookies(), 1)
	assert.NotEqual(t, "../../etc", w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogger(logger.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/about", nil))
	assert.Contains(t, buf.String(), "GET /about -> 418")
}
