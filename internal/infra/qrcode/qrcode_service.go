package qrcode

import (
	"encoding/json"
	"strings"

	"greenpoints/config"
	"greenpoints/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const (
	payloadTypeRedeem = "redeem"
	defaultSize       = 256
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// Payload is the JSON carried inside a redeem QR code.
type Payload struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	var level qrcode.RecoveryLevel
	switch strings.ToUpper(errorCorrectionLevel) {
	case "L":
		level = qrcode.Low
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// NewFromConfig reads the optional qrcode section.
func NewFromConfig(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		return NewQRCodeService(defaultSize, "M")
	}

	return NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func (s *qrcodeService) GenerateCodeQR(code string) ([]byte, error) {
	if code == "" {
		return nil, errors.New("empty transaction code")
	}

	jsonData, err := json.Marshal(Payload{Type: payloadTypeRedeem, Code: code})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal QR code data")
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParseCodeQR accepts the JSON payload or, for hand-typed scans, the bare code.
func (s *qrcodeService) ParseCodeQR(qrData string) (string, error) {
	qrData = strings.TrimSpace(qrData)
	if qrData == "" {
		return "", errors.New("empty QR code data")
	}

	if !strings.HasPrefix(qrData, "{") {
		return qrData, nil
	}

	var data Payload
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal QR code data")
	}

	if data.Type != payloadTypeRedeem {
		return "", errors.Errorf("invalid QR code type: %s", data.Type)
	}
	if data.Code == "" {
		return "", errors.New("QR code carries no transaction code")
	}

	return data.Code, nil
}
