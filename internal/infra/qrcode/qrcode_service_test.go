package qrcode

import (
	"encoding/json"
	"testing"

	"greenpoints/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, service)
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	assert.NotNil(t, NewFromConfig(&config.Config{}))
	assert.NotNil(t, NewFromConfig(&config.Config{QRCode: &config.QRCodeConfig{Size: 128, ErrorCorrectionLevel: "H"}}))
}

func TestQRCodeService_GenerateCodeQR(t *testing.T) {
	service := NewQRCodeService(256, "M")

	qrBytes, err := service.GenerateCodeQR("ABCD2345")
	require.NoError(t, err)
	require.NotEmpty(t, qrBytes)

	// PNG magic number
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, qrBytes[:4])
}

func TestQRCodeService_GenerateCodeQR_Empty(t *testing.T) {
	service := NewQRCodeService(256, "M")

	_, err := service.GenerateCodeQR("")
	assert.Error(t, err)
}

func TestQRCodeService_ParseCodeQR(t *testing.T) {
	service := NewQRCodeService(256, "M")

	valid, err := json.Marshal(Payload{Type: "redeem", Code: "ABCD2345"})
	require.NoError(t, err)

	wrongType, err := json.Marshal(Payload{Type: "subscription", Code: "ABCD2345"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{"json payload", string(valid), "ABCD2345", false},
		{"bare code", " QWE050 ", "QWE050", false},
		{"wrong type", string(wrongType), "", true},
		{"missing code", `{"type":"redeem"}`, "", true},
		{"broken json", `{"type":`, "", true},
		{"empty", "  ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ParseCodeQR(tt.data)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
