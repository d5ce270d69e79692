package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeAll, cfg.RunMode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BlobBackendLocal, cfg.Blob.Backend)
	assert.False(t, cfg.UsesRedis())
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 500*time.Millisecond, cfg.UploadTiming().StaggerDelay)
	assert.Equal(t, 200*time.Millisecond, cfg.UploadTiming().TickInterval)
	assert.Equal(t, 10, cfg.UploadTiming().ProgressStep)
	assert.Equal(t, 30*time.Minute, cfg.StaleAfter())
	assert.Equal(t, 30*time.Minute, cfg.UploadIdleAfter())
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("RUN_MODE", "Worker")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("UPLOAD_STAGGER_MS", "50")
	t.Setenv("UPLOAD_TICK_MS", "20")
	t.Setenv("UPLOAD_IDLE_MIN", "5")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("BILLING_SIGNUP_CREDITS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeWorker, cfg.RunMode)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 50*time.Millisecond, cfg.UploadTiming().StaggerDelay)
	assert.Equal(t, 20*time.Millisecond, cfg.UploadTiming().TickInterval)
	assert.Equal(t, 5*time.Minute, cfg.UploadIdleAfter())
	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, int64(25), cfg.Billing.SignupCredits)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docprocess.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7070
blob:
  backend: minio
minio:
  endpoint: localhost:9000
  bucket: pdfs
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7171")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7171, cfg.Port, "environment wins over the file")
	assert.Equal(t, BlobBackendMinio, cfg.Blob.Backend)
	assert.Equal(t, "pdfs", cfg.Minio.Bucket)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad run mode", func(c *Config) { c.RunMode = "batch" }, "run_mode"},
		{"bad port", func(c *Config) { c.Port = 0 }, "port"},
		{"no database", func(c *Config) { c.Database.URL = "" }, "database.url"},
		{"minio without endpoint", func(c *Config) { c.Blob.Backend = BlobBackendMinio }, "minio.endpoint"},
		{"unknown blob backend", func(c *Config) { c.Blob.Backend = "gcs" }, "blob.backend"},
		{"kafka without topic", func(c *Config) { c.Kafka.Brokers = []string{"k:9092"}; c.Kafka.Topic = "" }, "kafka.topic"},
		{"zero tick", func(c *Config) { c.Upload.TickMS = 0 }, "upload.tick_ms"},
		{"step too large", func(c *Config) { c.Upload.Step = 101 }, "upload.step"},
		{"no idle timeout", func(c *Config) { c.Upload.IdleMin = 0 }, "upload.idle_min"},
		{"negative signup credits", func(c *Config) { c.Billing.SignupCredits = -1 }, "signup_credits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	cfg.Port = -1
	cfg.JWT.Secret = ""

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "jwt.secret")
}
