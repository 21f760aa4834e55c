package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "STORAGE", "MONGO_URI", "KAFKA_BROKERS", "KAFKA_GROUP_ID", "RETRY_BACKOFF", "SERVICE_FEE_BPS", "BLACKOUT_HORIZON"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, int64(1000), cfg.ServiceFeeBps)
	assert.Equal(t, 2*365*24*time.Hour, cfg.BlackoutHorizon)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "rentbook-kyc", cfg.KafkaGroupID)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("STORAGE", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RETRY_BACKOFF", "2s, 1m")
	t.Setenv("SERVICE_FEE_BPS", "1250")
	t.Setenv("KAFKA_KYC_TOPIC", "identity.kyc.v1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMongo, cfg.Storage)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []time.Duration{2 * time.Second, time.Minute}, cfg.RetryBackoff)
	assert.Equal(t, int64(1250), cfg.ServiceFeeBps)
	assert.Equal(t, "identity.kyc.v1", cfg.KafkaKYCTopic)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"mongo without uri": {"STORAGE": "mongo", "MONGO_URI": ""},
		"unknown storage":   {"STORAGE": "redis"},
		"bad duration":      {"IDEMP_TTL": "soon"},
		"bad backoff":       {"RETRY_BACKOFF": "1s,x"},
		"fee out of range":  {"SERVICE_FEE_BPS": "20000"},
		"fee not a number":  {"SERVICE_FEE_BPS": "ten"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMongoRequiresURI(t *testing.T) {
	t.Setenv("STORAGE", "mongo")
	t.Setenv("MONGO_URI", "")
	_, err := Load()
	assert.ErrorIs(t, err, ErrMongoURIRequired)
}
