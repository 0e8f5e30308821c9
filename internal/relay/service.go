package relay

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/payment-relay/internal/common"
	"github.com/noah-isme/payment-relay/internal/phonepe"
)

// Gateway abstracts the upstream payment gateway for the service.
type Gateway interface {
	Pay(ctx context.Context, payload phonepe.PayPayload) (phonepe.PayResult, error)
	Status(ctx context.Context, merchantTransactionID string) (phonepe.StatusResult, error)
}

// Service orchestrates payment initiation and status checks. It holds no
// mutable state beyond configuration; every request is independent.
type Service struct {
	Gateway         Gateway
	MerchantID      string
	CallbackBaseURL string
	AmountCeiling   float64
	CallbackVerify  bool
	Logger          zerolog.Logger

	validate *validator.Validate
}

// NewService wires a relay service. AmountCeiling must be positive.
func NewService(gw Gateway, merchantID, callbackBaseURL string, ceiling float64, verifyCallbacks bool, logger zerolog.Logger) (*Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("relay: gateway is required")
	}
	if strings.TrimSpace(merchantID) == "" || strings.TrimSpace(callbackBaseURL) == "" {
		return nil, fmt.Errorf("relay: merchant id and callback base url are required")
	}
	if ceiling <= 0 {
		return nil, fmt.Errorf("relay: amount ceiling must be positive")
	}
	return &Service{
		Gateway:         gw,
		MerchantID:      merchantID,
		CallbackBaseURL: strings.TrimRight(callbackBaseURL, "/"),
		AmountCeiling:   ceiling,
		CallbackVerify:  verifyCallbacks,
		Logger:          logger,
		validate:        newValidator(),
	}, nil
}

// InitiateResult is returned to the client after a successful initiation.
type InitiateResult struct {
	TransactionID string
	RedirectURL   string
}

// NewTransactionID generates a merchant transaction id. The millisecond
// timestamp keeps ids roughly ordered; the random suffix keeps them distinct
// under sub-millisecond request rates.
func NewTransactionID() string {
	return fmt.Sprintf("MT%d%s", time.Now().UnixMilli(), randomSuffix())
}

func newMerchantUserID() string {
	return "MUID" + randomSuffix()
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// MinorUnits converts a major-unit amount to integer minor units, rounding
// to the nearest integer with halves away from zero over the float product.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Initiate validates the intent, builds and signs the gateway payload,
// submits it and translates the result. Failed upstream calls carry the
// locally generated transaction id for correlation.
func (s *Service) Initiate(ctx context.Context, intent Intent) (InitiateResult, error) {
	if err := s.validateIntent(intent); err != nil {
		return InitiateResult{}, err
	}

	txnID := NewTransactionID()
	callbackURL := fmt.Sprintf("%s/callback/%s", s.CallbackBaseURL, txnID)
	payload := phonepe.PayPayload{
		MerchantID:            s.MerchantID,
		MerchantTransactionID: txnID,
		MerchantUserID:        newMerchantUserID(),
		Amount:                MinorUnits(intent.Amount),
		RedirectURL:           callbackURL,
		RedirectMode:          "POST",
		CallbackURL:           callbackURL,
		MobileNumber:          intent.Mobile,
		PaymentInstrument:     phonepe.PaymentInstrument{Type: phonepe.InstrumentTypePayPage},
	}

	s.Logger.Info().
		Str("transaction_id", txnID).
		Int64("amount_minor", payload.Amount).
		Msg("initiating payment")

	result, err := s.Gateway.Pay(ctx, payload)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			appErr.WithDetail("transactionId", txnID)
		}
		return InitiateResult{}, err
	}

	return InitiateResult{TransactionID: txnID, RedirectURL: result.RedirectURL}, nil
}

// Status polls the gateway for a transaction's state.
func (s *Service) Status(ctx context.Context, transactionID string) (phonepe.StatusResult, error) {
	if strings.TrimSpace(transactionID) == "" {
		return phonepe.StatusResult{}, common.NewAppError(common.CodeValidationFailed, "transaction id is required", http.StatusBadRequest, nil)
	}
	return s.Gateway.Status(ctx, transactionID)
}

// CrossVerify runs a best-effort status check after a callback. Outcomes are
// only logged; a lookup failure must never fail the callback acknowledgment.
func (s *Service) CrossVerify(ctx context.Context, transactionID string) {
	if !s.CallbackVerify {
		return
	}
	result, err := s.Status(ctx, transactionID)
	if err != nil {
		s.Logger.Warn().Err(err).
			Str("transaction_id", transactionID).
			Msg("callback cross-verification failed")
		return
	}
	s.Logger.Info().
		Str("transaction_id", transactionID).
		Str("state", result.State).
		Msg("callback cross-verified")
}
