package service

// OTPHasher generates one-time passwords and the salted keyed digest stored for them.
type OTPHasher interface {
	// GenerateOTP returns six decimal digits, zero padded.
	GenerateOTP() (string, error)

	// NewSalt returns fresh random salt for one challenge.
	NewSalt() ([]byte, error)

	// Hash returns a self-contained encoding of salt and digest.
	Hash(otp string, salt []byte) string

	// Verify recomputes the digest from the stored salt in constant time.
	// A malformed stored value never verifies.
	Verify(candidate, stored string) bool
}
