// Package signature checks payment callbacks issued by the gateway.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier validates gateway signatures over order and payment references.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier keyed with the gateway shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign returns hex(HMAC-SHA256(secret, orderRef + "|" + paymentRef)).
func (v *Verifier) Sign(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the supplied signature with the expected one in constant time.
func (v *Verifier) Verify(orderRef, paymentRef, signature string) bool {
	if len(v.secret) == 0 || signature == "" {
		return false
	}
	return hmac.Equal([]byte(v.Sign(orderRef, paymentRef)), []byte(signature))
}
