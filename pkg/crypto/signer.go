package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
)

var ErrInvalidSignature = errors.New("invalid signature")

// Signer attests score results with HMAC-SHA256 so a consumer holding the
// same key can check a result was issued by this service.
type Signer struct {
	secretKey []byte
	logger    *slog.Logger
}

func NewSigner(secretKey string, logger *slog.Logger) *Signer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Signer{
		secretKey: []byte(secretKey),
		logger:    logger,
	}
}

func (s *Signer) Sign(data []byte) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Signer) Verify(data []byte, signature string) error {
	expected := s.Sign(data)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		s.logger.Warn("Signature verification failed", slog.Int("signature_len", len(signature)))
		return ErrInvalidSignature
	}
	return nil
}

func scorePayload(requestID, source string, score float64, loanAmount int64, riskLevel string, issuedAt int64) []byte {
	return fmt.Appendf(nil, "%s:%s:%.2f:%d:%s:%d", requestID, source, score, loanAmount, riskLevel, issuedAt)
}

// SignScore signs the fields of a score response that a consumer relies on.
func (s *Signer) SignScore(requestID, source string, score float64, loanAmount int64, riskLevel string, issuedAt int64) string {
	return s.Sign(scorePayload(requestID, source, score, loanAmount, riskLevel, issuedAt))
}

func (s *Signer) VerifyScore(requestID, source string, score float64, loanAmount int64, riskLevel string, issuedAt int64, signature string) error {
	return s.Verify(scorePayload(requestID, source, score, loanAmount, riskLevel, issuedAt), signature)
}
