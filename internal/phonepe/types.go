package phonepe

// PayPayload is the request object serialized, base64-encoded and signed for
// the pay endpoint. Field order is part of the external contract: the
// gateway's signature verification covers the exact serialized bytes, and
// encoding/json emits struct fields in declaration order. Do not reorder.
type PayPayload struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl"`
	RedirectMode          string            `json:"redirectMode"`
	CallbackURL           string            `json:"callbackUrl"`
	MobileNumber          string            `json:"mobileNumber"`
	PaymentInstrument     PaymentInstrument `json:"paymentInstrument"`
}

// PaymentInstrument selects the gateway flow. PAY_PAGE is the hosted
// checkout page.
type PaymentInstrument struct {
	Type string `json:"type"`
}

// InstrumentTypePayPage is the hosted-page flow selector.
const InstrumentTypePayPage = "PAY_PAGE"

// payResponse mirrors the gateway's reply to a pay request.
type payResponse struct {
	Success bool             `json:"success"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Data    *payResponseData `json:"data"`
}

type payResponseData struct {
	MerchantTransactionID string              `json:"merchantTransactionId"`
	TransactionID         string              `json:"transactionId"`
	InstrumentResponse    *instrumentResponse `json:"instrumentResponse"`
}

type instrumentResponse struct {
	Type         string        `json:"type"`
	RedirectInfo *redirectInfo `json:"redirectInfo"`
}

type redirectInfo struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

// PayResult is the translated outcome of a successful pay call.
type PayResult struct {
	GatewayTransactionID string
	RedirectURL          string
	Code                 string
	Message              string
}

// statusResponse mirrors the gateway's reply to a status query.
type statusResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    *StatusData `json:"data"`
}

// StatusData carries the transaction state reported by the gateway.
type StatusData struct {
	MerchantID            string `json:"merchantId"`
	MerchantTransactionID string `json:"merchantTransactionId"`
	TransactionID         string `json:"transactionId"`
	Amount                int64  `json:"amount"`
	State                 string `json:"state"`
	ResponseCode          string `json:"responseCode"`
}

// StatusResult is the translated outcome of a status call.
type StatusResult struct {
	State   string
	Code    string
	Message string
	Data    *StatusData
}
