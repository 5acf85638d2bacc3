package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSessionCfg = SessionConfig{CookieName: "cohortmap_session", TTL: time.Hour}

func resolveSession(req *http.Request) string {
	var got string
	Session(testSessionCfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionIDFromContext(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestSession_Resolution(t *testing.T) {
	headerID := uuid.NewString()
	cookieID := uuid.NewString()

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"none", "", "", ""},
		{"header", headerID, "", headerID},
		{"cookie", "", cookieID, cookieID},
		{"header wins", headerID, cookieID, headerID},
		{"default", "default", "", "default"},
		{"forged id dropped", "../../etc/passwd", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(SessionHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: testSessionCfg.CookieName, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, resolveSession(req))
		})
	}
}

func TestSetAndClearSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	SetSessionCookie(w, testSessionCfg, "abc")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "abc", cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)

	w = httptest.NewRecorder()
	ClearSessionCookie(w, testSessionCfg)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

//Personal.AI order the ending
