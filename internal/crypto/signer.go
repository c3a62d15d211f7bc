package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/remessas-global/payment-screening/internal/domain"
)

// AuditSigner signs audit entries with HMAC-SHA256 so that a retrieved
// entry can be proven untampered. The signature covers the identifying
// fields of the screening outcome; it is written once at append time and
// verified whenever the audit log is served.
type AuditSigner struct {
	secret []byte
}

// NewAuditSigner creates a signer from a base64-encoded secret.
func NewAuditSigner(secretBase64 string) (*AuditSigner, error) {
	if secretBase64 == "" {
		return nil, errors.New("audit HMAC secret is required")
	}

	secret, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HMAC secret: %w", err)
	}

	return &AuditSigner{secret: secret}, nil
}

// Sign returns the hex-encoded HMAC signature for an audit entry.
// The entry's own Signature field is not part of the signed payload.
func (s *AuditSigner) Sign(entry domain.AuditEntry) string {
	payload := strings.Join([]string{
		entry.TransactionID,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		string(entry.Decision),
		strconv.Itoa(entry.RiskScore),
	}, "|")

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares it to the one the entry
// carries, in constant time.
func (s *AuditSigner) Verify(entry domain.AuditEntry) bool {
	expected := s.Sign(entry)
	return hmac.Equal([]byte(expected), []byte(entry.Signature))
}
