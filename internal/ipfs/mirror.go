package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MirrorConfig holds connection settings for the S3-compatible pin mirror.
type MirrorConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Mirror is a thin wrapper around a MinIO bucket used as a local pin cache.
// Objects are keyed by CID; content addressing makes them immutable, so a
// blind overwrite on Put is safe.
type Mirror struct {
	client *minio.Client
	bucket string
}

// NewMirror creates the mirror client and ensures the bucket exists.
func NewMirror(cfg *MirrorConfig) (*Mirror, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("mirror config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	m := &Mirror{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, m.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return m, nil
}

// Put stores the JSON form of v under its CID.
func (m *Mirror) Put(ctx context.Context, c string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = m.client.PutObject(ctx, m.bucket, c, bytes.NewReader(b), int64(len(b)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

// Get reads the blob stored under c into out.
func (m *Mirror) Get(ctx context.Context, c string, out any) error {
	obj, err := m.client.GetObject(ctx, m.bucket, c, minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()
	if _, err := obj.Stat(); err != nil {
		return err
	}
	return json.NewDecoder(obj).Decode(out)
}
