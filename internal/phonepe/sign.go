package phonepe

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	payPath        = "/pg/v1/pay"
	statusPathBase = "/pg/v1/status"

	// signatureSeparator joins the hash and the salt-key index in X-VERIFY.
	signatureSeparator = "###"
)

// SignPay computes the X-VERIFY value for a pay request:
// hex(sha256(base64Payload + "/pg/v1/pay" + saltKey)) + "###" + saltIndex.
// The concatenation order is the gateway's verification contract.
func SignPay(base64Payload, saltKey string, saltIndex int) string {
	sum := sha256.Sum256([]byte(base64Payload + payPath + saltKey))
	return hex.EncodeToString(sum[:]) + signatureSeparator + strconv.Itoa(saltIndex)
}

// SignStatus computes the X-VERIFY value for a status query. The status
// canonical string has no payload component since the query carries no body:
// hex(sha256("/pg/v1/status/" + merchantID + "/" + transactionID + saltKey)).
func SignStatus(merchantID, transactionID, saltKey string, saltIndex int) string {
	sum := sha256.Sum256([]byte(statusPathBase + "/" + merchantID + "/" + transactionID + saltKey))
	return hex.EncodeToString(sum[:]) + signatureSeparator + strconv.Itoa(saltIndex)
}
