package phonepe_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/payment-relay/internal/common"
	"github.com/noah-isme/payment-relay/internal/phonepe"
)

func testPayload() phonepe.PayPayload {
	return phonepe.PayPayload{
		MerchantID:            "MERCHANT1",
		MerchantTransactionID: "MT1700000000000ABCD1234",
		MerchantUserID:        "MUIDDEADBEEF",
		Amount:                1000,
		RedirectURL:           "https://relay.example/callback/MT1700000000000ABCD1234",
		RedirectMode:          "POST",
		CallbackURL:           "https://relay.example/callback/MT1700000000000ABCD1234",
		MobileNumber:          "9123456789",
		PaymentInstrument:     phonepe.PaymentInstrument{Type: phonepe.InstrumentTypePayPage},
	}
}

func newClient(baseURL string) *phonepe.Client {
	return &phonepe.Client{
		MerchantID: "MERCHANT1",
		SaltKey:    "test-salt",
		SaltIndex:  1,
		BaseURL:    baseURL,
		HTTP:       phonepe.HTTPClient(2 * time.Second),
		Logger:     zerolog.Nop(),
	}
}

func TestEncodePayloadRoundTrip(t *testing.T) {
	t.Parallel()

	payload := testPayload()
	encoded, err := phonepe.EncodePayload(payload)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	expected, err := json.Marshal(payload)
	require.NoError(t, err)
	require.Equal(t, expected, decoded)
}

func TestEncodePayloadKeyOrder(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(testPayload())
	require.NoError(t, err)

	// The gateway verifies the signature over these exact bytes, so the key
	// order is a contract, not a serialization accident.
	require.Regexp(t,
		`^\{"merchantId":.*"merchantTransactionId":.*"merchantUserId":.*"amount":.*"redirectUrl":.*"redirectMode":.*"callbackUrl":.*"mobileNumber":.*"paymentInstrument":`,
		string(raw))
}

func TestPaySuccess(t *testing.T) {
	t.Parallel()

	var gotVerify string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/pg/v1/pay", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotVerify = r.Header.Get("X-VERIFY")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"code": "PAYMENT_INITIATED",
			"message": "created",
			"data": {
				"merchantTransactionId": "MT1700000000000ABCD1234",
				"transactionId": "T2409151821",
				"instrumentResponse": {
					"type": "PAY_PAGE",
					"redirectInfo": {"url": "https://pay.example/redirect/abc", "method": "GET"}
				}
			}
		}`))
	}))
	defer srv.Close()

	client := newClient(srv.URL)
	result, err := client.Pay(context.Background(), testPayload())
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/redirect/abc", result.RedirectURL)
	require.Equal(t, "T2409151821", result.GatewayTransactionID)

	var envelope struct {
		Request string `json:"request"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &envelope))
	expected, err := phonepe.EncodePayload(testPayload())
	require.NoError(t, err)
	require.Equal(t, expected, envelope.Request)
	require.Equal(t, phonepe.SignPay(expected, "test-salt", 1), gotVerify)
}

func TestPayRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "code": "X", "message": "declined"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Pay(context.Background(), testPayload())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodePaymentRejected, appErr.Code)
	require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	require.Equal(t, "declined", appErr.Message)
	require.Equal(t, "X", appErr.Details["upstreamCode"])
}

func TestPayMalformedSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"instrumentResponse": {}}}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Pay(context.Background(), testPayload())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeMalformedUpstreamSuccess, appErr.Code)
	require.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
}

func TestPayNonJSONBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream proxy error</html>"))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Pay(context.Background(), testPayload())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeUpstreamProtocol, appErr.Code)
	require.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
}

func TestPayUnreachableGateway(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := newClient(srv.URL).Pay(context.Background(), testPayload())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeUpstreamUnavailable, appErr.Code)
}

func TestPayTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := newClient(srv.URL)
	client.HTTP = phonepe.HTTPClient(50 * time.Millisecond)

	_, err := client.Pay(context.Background(), testPayload())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeUpstreamUnavailable, appErr.Code)
}

func TestPayMissingCredentials(t *testing.T) {
	t.Parallel()

	client := &phonepe.Client{Logger: zerolog.Nop()}
	_, err := client.Pay(context.Background(), testPayload())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeServerMisconfigured, appErr.Code)
}

func TestStatusSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/pg/v1/status/MERCHANT1/MT123", r.URL.Path)
		require.Equal(t, "MERCHANT1", r.Header.Get("X-MERCHANT-ID"))
		require.Equal(t, phonepe.SignStatus("MERCHANT1", "MT123", "test-salt", 1), r.Header.Get("X-VERIFY"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"code": "PAYMENT_SUCCESS",
			"message": "completed",
			"data": {
				"merchantId": "MERCHANT1",
				"merchantTransactionId": "MT123",
				"transactionId": "T1",
				"amount": 1000,
				"state": "COMPLETED",
				"responseCode": "SUCCESS"
			}
		}`))
	}))
	defer srv.Close()

	result, err := newClient(srv.URL).Status(context.Background(), "MT123")
	require.NoError(t, err)
	require.Equal(t, "COMPLETED", result.State)
	require.Equal(t, int64(1000), result.Data.Amount)
}

func TestStatusMissingState(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "code": "PAYMENT_SUCCESS", "data": {}}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Status(context.Background(), "MT123")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeMalformedUpstreamSuccess, appErr.Code)
}

func TestStatusRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "code": "TRANSACTION_NOT_FOUND", "message": "no such transaction"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Status(context.Background(), "MT404")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodePaymentRejected, appErr.Code)
	require.Equal(t, "TRANSACTION_NOT_FOUND", appErr.Details["upstreamCode"])
}

func TestErrorsNeverRaw(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := newClient(srv.URL).Pay(context.Background(), testPayload())
	require.Error(t, err)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr), "transport errors must be translated, got %T", err)
}
