package report_emitter

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPublishConfig() PublishConfig {
	return PublishConfig{
		Endpoint:  "localhost:9000",
		Bucket:    "assets",
		Prefix:    "scans",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	}
}

func TestNewPublisher_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PublishConfig)
		want   string
	}{
		{"missing endpoint", func(c *PublishConfig) { c.Endpoint = " " }, "endpoint is required"},
		{"missing access key", func(c *PublishConfig) { c.AccessKey = "" }, "access key and secret key are required"},
		{"missing secret key", func(c *PublishConfig) { c.SecretKey = "" }, "access key and secret key are required"},
		{"missing bucket", func(c *PublishConfig) { c.Bucket = "" }, "bucket is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validPublishConfig()
			tt.mutate(&cfg)
			_, err := NewPublisher(cfg, zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewPublisher_DefaultsRegion(t *testing.T) {
	p, err := NewPublisher(validPublishConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", p.region)
	assert.Equal(t, "assets", p.bucket)
}

func TestPublish_RequiresRunID(t *testing.T) {
	p, err := NewPublisher(validPublishConfig(), zerolog.Nop())
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), "  ", "scan.json")
	assert.EqualError(t, err, "run_id is required")
}

func TestPublishConfig_Enabled(t *testing.T) {
	assert.False(t, PublishConfig{}.Enabled())
	assert.False(t, PublishConfig{Prefix: "scans", UseSSL: true}.Enabled())
	assert.True(t, PublishConfig{Bucket: "assets"}.Enabled())
	assert.True(t, validPublishConfig().Enabled())
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "scans/run-1/scan.json", ObjectKey("scans", "run-1", "/tmp/out/scan.json"))
	assert.Equal(t, "scans/nested/run-1/assets.csv", ObjectKey("/scans/nested/", "run-1", "assets.csv"))
	assert.Equal(t, "run-1/scan.db", ObjectKey("", "run-1", "out/scan.db"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("a.json"))
	assert.Equal(t, "application/yaml", contentType("a.YML"))
	assert.Equal(t, "text/csv", contentType("a.csv"))
	assert.Equal(t, "application/vnd.sqlite3", contentType("a.db"))
	assert.Equal(t, "application/octet-stream", contentType("a.bin"))
}
