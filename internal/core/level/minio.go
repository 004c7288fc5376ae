package level

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig locates the bucket that holds saved levels.
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
}

// bucket is the slice of the object store the level store needs.
type bucket interface {
	ensure(ctx context.Context) error
	put(ctx context.Context, key string, data []byte) error
	get(ctx context.Context, key string) ([]byte, error)
}

// MinIOStore keeps levels as objects in an S3-compatible bucket.
type MinIOStore struct {
	bucket bucket
	prefix string
}

func NewMinIOStore(cfg MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinIOStore{
		bucket: &minioBucket{client: client, name: cfg.Bucket, region: cfg.Region},
		prefix: cfg.Prefix,
	}, nil
}

func (s *MinIOStore) key(name string) string {
	return path.Join(s.prefix, name+fileExt)
}

func (s *MinIOStore) Save(ctx context.Context, name string, l Level) error {
	if err := checkName(name); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, l); err != nil {
		return err
	}
	if err := s.bucket.ensure(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	if err := s.bucket.put(ctx, s.key(name), buf.Bytes()); err != nil {
		return fmt.Errorf("save level %q: %w", name, err)
	}
	return nil
}

func (s *MinIOStore) Load(ctx context.Context, name string) (Level, error) {
	if err := checkName(name); err != nil {
		return Level{}, err
	}
	data, err := s.bucket.get(ctx, s.key(name))
	if err != nil {
		if isNoSuchKey(err) {
			return Level{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return Level{}, fmt.Errorf("load level %q: %w", name, err)
	}
	return Decode(bytes.NewReader(data))
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

type minioBucket struct {
	client *minio.Client
	name   string
	region string
}

func (b *minioBucket) ensure(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.name)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := b.client.MakeBucket(ctx, b.name, minio.MakeBucketOptions{Region: b.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", b.name, err)
	}
	return nil
}

func (b *minioBucket) put(ctx context.Context, key string, data []byte) error {
	_, err := b.client.PutObject(ctx, b.name, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (b *minioBucket) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.name, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}
