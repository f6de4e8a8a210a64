package report_emitter

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// PublishConfig points at the S3-compatible bucket that receives scan artifacts.
type PublishConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether publishing was configured at all.
func (c PublishConfig) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" || strings.TrimSpace(c.Bucket) != ""
}

// Publisher uploads written artifacts under <prefix>/<run id>/.
type Publisher struct {
	client   *minio.Client
	bucket   string
	region   string
	prefix   string
	logger   zerolog.Logger
	initOnce sync.Once
	initErr  error
}

// NewPublisher validates cfg and builds the bucket client. No request is made
// until the first Publish.
func NewPublisher(cfg PublishConfig, logger zerolog.Logger) (*Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("publish endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("publish access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("publish bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &Publisher{
		client: client,
		bucket: bucket,
		region: region,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

func (p *Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			p.initErr = err
			return
		}
		if exists {
			return
		}
		p.initErr = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region})
	})
	return p.initErr
}

// Publish uploads each file and returns the object keys in the order given.
func (p *Publisher) Publish(ctx context.Context, runID string, paths ...string) ([]string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, fmt.Errorf("run_id is required")
	}
	if err := p.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	keys := make([]string, 0, len(paths))
	for _, file := range paths {
		key := ObjectKey(p.prefix, runID, file)
		info, err := p.client.FPutObject(ctx, p.bucket, key, file, minio.PutObjectOptions{
			ContentType: contentType(file),
		})
		if err != nil {
			return keys, fmt.Errorf("failed to upload %s: %w", file, err)
		}
		p.logger.Info().
			Str("bucket", p.bucket).
			Str("key", key).
			Int64("size", info.Size).
			Msg("published artifact")
		keys = append(keys, key)
	}
	return keys, nil
}

// ObjectKey places the base name of file under prefix and runID.
func ObjectKey(prefix, runID, file string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	return path.Join(prefix, strings.TrimSpace(runID), filepath.Base(file))
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".csv":
		return "text/csv"
	case ".db", ".sqlite", ".sqlite3":
		return "application/vnd.sqlite3"
	}
	return "application/octet-stream"
}
