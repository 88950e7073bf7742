package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"greenpoints/config"
	"greenpoints/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	otpDigits     = 6
	otpSaltSize   = 16
	hashSeparator = "$"
)

var otpUpperBound = big.NewInt(1_000_000)

// otpHasher derives a keyed BLAKE2b-256 digest over salt||otp.
type otpHasher struct {
	key []byte
}

// NewOTPHasher builds the hasher keyed with the configured OTP secret.
func NewOTPHasher(cfg *config.Config) (service.OTPHasher, error) {
	if cfg.SecretKey.OTP == "" {
		return nil, errors.New("otp secret must be provided")
	}

	key := []byte(cfg.SecretKey.OTP)
	if len(key) > blake2b.Size {
		// blake2b keys are capped at 64 bytes; longer secrets are folded.
		sum := blake2b.Sum512(key)
		key = sum[:]
	}

	return &otpHasher{key: key}, nil
}

func (h *otpHasher) GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpUpperBound)
	if err != nil {
		return "", errors.Wrap(err, "failed to draw otp")
	}

	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func (h *otpHasher) NewSalt() ([]byte, error) {
	salt := make([]byte, otpSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to draw salt")
	}

	return salt, nil
}

// Hash returns hex(salt)$hex(digest).
func (h *otpHasher) Hash(otp string, salt []byte) string {
	return hex.EncodeToString(salt) + hashSeparator + hex.EncodeToString(h.digest(otp, salt))
}

func (h *otpHasher) Verify(candidate, stored string) bool {
	saltHex, digestHex, ok := strings.Cut(stored, hashSeparator)
	if !ok {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}

	want, err := hex.DecodeString(digestHex)
	if err != nil || len(want) != blake2b.Size256 {
		return false
	}

	return subtle.ConstantTimeCompare(h.digest(candidate, salt), want) == 1
}

func (h *otpHasher) digest(otp string, salt []byte) []byte {
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// Only returned for keys over 64 bytes, which the constructor rules out.
		panic(err)
	}
	mac.Write(salt)
	mac.Write([]byte(otp))

	return mac.Sum(nil)
}
