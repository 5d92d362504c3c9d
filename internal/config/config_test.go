package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]string{
		"JWT_SECRET":          "jwt",
		"RAZORPAY_KEY_SECRET": "rzp",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, "greencart", cfg.ServiceName)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestFromViper_Normalizes(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]string{
		"JWT_SECRET":          "jwt",
		"RAZORPAY_KEY_SECRET": "rzp",
		"DB_DRIVER":           "Postgres",
		"CURRENCY":            "inr",
	}))
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "INR", cfg.Currency)
}

func TestFromViper_MissingSecrets(t *testing.T) {
	_, err := FromViper(newViper(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "RAZORPAY_KEY_SECRET is required")
}

func TestFromViper_UnknownDriver(t *testing.T) {
	_, err := FromViper(newViper(map[string]string{
		"JWT_SECRET":          "jwt",
		"RAZORPAY_KEY_SECRET": "rzp",
		"DB_DRIVER":           "mongo",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported DB_DRIVER "mongo"`)
}

func TestWarnings(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]string{
		"JWT_SECRET":          "jwt",
		"RAZORPAY_KEY_SECRET": "rzp",
	}))
	require.NoError(t, err)

	warnings := cfg.Warnings()
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "RAZORPAY_WEBHOOK_SECRET")

	cfg.RazorpayWebhookSecret = "whsec"
	cfg.RazorpayKeyID = "rzp_key"
	cfg.SellerPassword = "pw"
	assert.Empty(t, cfg.Warnings())
}
