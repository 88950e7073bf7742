package service

// QRCodeService renders transaction codes as scannable QR images.
type QRCodeService interface {
	// GenerateCodeQR returns a PNG whose payload carries code.
	GenerateCodeQR(code string) ([]byte, error)

	// ParseCodeQR extracts the transaction code from a scanned payload.
	ParseCodeQR(qrData string) (string, error)
}
