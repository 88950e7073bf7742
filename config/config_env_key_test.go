package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"database": map[string]any{
			"driver":        "sqlite",
			"slowThreshold": "200ms",
		},
		"secretKey": map[string]any{
			"session": "",
			"otp":     "",
		},
		"otp": map[string]any{
			"maxAttempts": 5,
		},
		"admin": map[string]any{
			"emails": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "DATABASE_SLOWTHRESHOLD", want: "database.slowThreshold"},
		{envKey: "SECRETKEY_OTP", want: "secretKey.otp"},
		{envKey: "SECRETKEY_SESSION", want: "secretKey.session"},
		{envKey: "OTP_MAXATTEMPTS", want: "otp.maxAttempts"},
		{envKey: "ADMIN_EMAILS", want: "admin.emails"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
		{envKey: "__LEADING", want: "leading"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
