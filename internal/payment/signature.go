package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the gateway callback signature: hex(HMAC-SHA256(secret, remoteOrderID + "|" + remotePaymentID)).
func Sign(secret, remoteOrderID, remotePaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(remoteOrderID + "|" + remotePaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature compares in constant time for equal-length inputs.
func ValidSignature(secret, remoteOrderID, remotePaymentID, signature string) bool {
	expected := Sign(secret, remoteOrderID, remotePaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
