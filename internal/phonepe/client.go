package phonepe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/payment-relay/internal/common"
	"github.com/noah-isme/payment-relay/internal/obs"
)

// Client talks to the PhonePe payment gateway. Each call makes exactly one
// upstream attempt; transient failures surface to the caller for the payer's
// client to re-initiate.
type Client struct {
	MerchantID string
	SaltKey    string
	SaltIndex  int
	BaseURL    string
	Production bool
	HTTP       *http.Client
	Logger     zerolog.Logger
}

// HTTPClient returns an HTTP client configured for gateway calls.
func HTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(&http.Transport{}),
	}
}

func (c *Client) host() string {
	host := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if host != "" {
		return host
	}
	if c.Production {
		return "https://api.phonepe.com/apis/hermes"
	}
	return "https://api-preprod.phonepe.com/apis/pg-sandbox"
}

func (c *Client) configured() error {
	if strings.TrimSpace(c.MerchantID) == "" || strings.TrimSpace(c.SaltKey) == "" {
		return common.NewAppError(common.CodeServerMisconfigured, "gateway credentials not configured", http.StatusInternalServerError, nil)
	}
	return nil
}

// EncodePayload serializes the payload and base64-encodes the exact bytes
// the signature covers.
func EncodePayload(p PayPayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Pay submits a signed pay request and translates the gateway's reply.
func (c *Client) Pay(ctx context.Context, payload PayPayload) (PayResult, error) {
	if err := c.configured(); err != nil {
		return PayResult{}, err
	}

	encoded, err := EncodePayload(payload)
	if err != nil {
		return PayResult{}, common.NewAppError(common.CodeServerMisconfigured, "unable to encode payload", http.StatusInternalServerError, err)
	}
	signature := SignPay(encoded, c.SaltKey, c.SaltIndex)

	body, err := json.Marshal(map[string]string{"request": encoded})
	if err != nil {
		return PayResult{}, common.NewAppError(common.CodeServerMisconfigured, "unable to encode request body", http.StatusInternalServerError, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host()+payPath, bytes.NewReader(body))
	if err != nil {
		return PayResult{}, common.NewAppError(common.CodeUpstreamUnavailable, "unable to build gateway request", http.StatusBadGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-VERIFY", signature)

	var parsed payResponse
	if err := c.do(req, "pay", &parsed); err != nil {
		return PayResult{}, err
	}

	if !parsed.Success || parsed.Data == nil {
		return PayResult{}, common.NewAppError(common.CodePaymentRejected, rejectMessage(parsed.Message), http.StatusBadRequest, nil).
			WithDetail("upstreamCode", parsed.Code)
	}
	inst := parsed.Data.InstrumentResponse
	if inst == nil || inst.RedirectInfo == nil || strings.TrimSpace(inst.RedirectInfo.URL) == "" {
		// Success flag with no redirect URL is a gateway contract violation,
		// kept distinct from a rejection so monitoring can flag drift.
		return PayResult{}, common.NewAppError(common.CodeMalformedUpstreamSuccess, "gateway reported success without a redirect url", http.StatusBadGateway, nil).
			WithDetail("upstreamCode", parsed.Code)
	}

	return PayResult{
		GatewayTransactionID: parsed.Data.TransactionID,
		RedirectURL:          inst.RedirectInfo.URL,
		Code:                 parsed.Code,
		Message:              parsed.Message,
	}, nil
}

// Status queries the gateway for the state of a transaction.
func (c *Client) Status(ctx context.Context, merchantTransactionID string) (StatusResult, error) {
	if err := c.configured(); err != nil {
		return StatusResult{}, err
	}

	path := fmt.Sprintf("%s/%s/%s", statusPathBase, c.MerchantID, merchantTransactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host()+path, nil)
	if err != nil {
		return StatusResult{}, common.NewAppError(common.CodeUpstreamUnavailable, "unable to build gateway request", http.StatusBadGateway, err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-VERIFY", SignStatus(c.MerchantID, merchantTransactionID, c.SaltKey, c.SaltIndex))
	req.Header.Set("X-MERCHANT-ID", c.MerchantID)

	var parsed statusResponse
	if err := c.do(req, "status", &parsed); err != nil {
		return StatusResult{}, err
	}

	if !parsed.Success || parsed.Data == nil {
		return StatusResult{}, common.NewAppError(common.CodePaymentRejected, rejectMessage(parsed.Message), http.StatusBadRequest, nil).
			WithDetail("upstreamCode", parsed.Code)
	}
	if strings.TrimSpace(parsed.Data.State) == "" {
		return StatusResult{}, common.NewAppError(common.CodeMalformedUpstreamSuccess, "gateway reported success without a transaction state", http.StatusBadGateway, nil).
			WithDetail("upstreamCode", parsed.Code)
	}

	return StatusResult{
		State:   parsed.Data.State,
		Code:    parsed.Code,
		Message: parsed.Message,
		Data:    parsed.Data,
	}, nil
}

// do executes one gateway request and decodes the JSON reply into out.
// Transport failures and non-JSON bodies are translated here so raw network
// errors never escape to handlers.
func (c *Client) do(req *http.Request, operation string, out any) error {
	client := c.HTTP
	if client == nil {
		client = HTTPClient(0)
	}
	start := time.Now()
	resp, err := client.Do(req)
	if obs.UpstreamRequestLatency != nil {
		obs.UpstreamRequestLatency.WithLabelValues(operation).Observe(obs.DurationMillis(time.Since(start)))
	}
	if err != nil {
		c.countUpstream(operation, "unavailable")
		if errors.Is(err, context.DeadlineExceeded) {
			return common.NewAppError(common.CodeUpstreamUnavailable, "gateway request timed out", http.StatusBadGateway, err)
		}
		return common.NewAppError(common.CodeUpstreamUnavailable, "gateway unreachable", http.StatusBadGateway, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countUpstream(operation, "unavailable")
		return common.NewAppError(common.CodeUpstreamUnavailable, "unable to read gateway response", http.StatusBadGateway, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.countUpstream(operation, "protocol_error")
		c.Logger.Warn().
			Str("operation", operation).
			Int("upstream_status", resp.StatusCode).
			Int("body_bytes", len(raw)).
			Msg("gateway returned non-JSON body")
		return common.NewAppError(common.CodeUpstreamProtocol, "gateway returned an unparseable response", http.StatusBadGateway, err).
			WithDetail("upstreamStatus", resp.StatusCode)
	}
	c.countUpstream(operation, "ok")
	return nil
}

func (c *Client) countUpstream(operation, result string) {
	if obs.UpstreamRequestTotal != nil {
		obs.UpstreamRequestTotal.WithLabelValues(operation, result).Inc()
	}
}

func rejectMessage(message string) string {
	if strings.TrimSpace(message) == "" {
		return "payment rejected by gateway"
	}
	return message
}
