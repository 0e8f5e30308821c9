package security_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/payment-relay/internal/security"
)

func serve(t *testing.T, h security.Headers, tlsConn bool) http.Header {
	t.Helper()
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	if tlsConn {
		req.TLS = &tls.ConnectionState{}
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr.Result().Header
}

func TestHeadersBaseline(t *testing.T) {
	headers := serve(t, security.Headers{Enable: true}, false)
	require.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	require.Equal(t, "no-referrer", headers.Get("Referrer-Policy"))
	require.Empty(t, headers.Get("Strict-Transport-Security"))
}

func TestHeadersDisabled(t *testing.T) {
	headers := serve(t, security.Headers{}, false)
	require.Empty(t, headers.Get("X-Content-Type-Options"))
}

func TestHeadersHSTSOnlyOverTLS(t *testing.T) {
	h := security.Headers{Enable: true, EnableHSTS: true}
	require.Empty(t, serve(t, h, false).Get("Strict-Transport-Security"))
	require.Equal(t, "max-age=31536000; includeSubDomains", serve(t, h, true).Get("Strict-Transport-Security"))
}
