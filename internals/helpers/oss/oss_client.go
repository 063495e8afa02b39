package helper

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"kplt_backend/internals/configs"
)

/* =======================================================================
   ObjectStore — abstraksi blob storage
   Di-inject eksplisit ke service/controller supaya bisa dites tanpa OSS
   beneran (lihat internals/testutil/blobmock).
======================================================================= */

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

type ObjectStore interface {
	// Put menolak overwrite: key yang sudah ada → error.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// SignURL membuat URL download sementara. downloadName opsional
	// (isi → response-content-disposition attachment).
	SignURL(ctx context.Context, key string, expiry time.Duration, downloadName string) (string, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

/* =======================================================================
   Implementasi Aliyun OSS
======================================================================= */

type OSSObjectStore struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	BucketName string
}

func NewOSSObjectStoreFromEnv() (*OSSObjectStore, error) {
	endpoint := configs.OSSEndpoint
	ak := configs.OSSAccessKey
	sk := configs.OSSSecretKey
	bucketName := configs.OSSBucket
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	client, err := oss.New(endpoint, ak, sk)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	// Verifikasi ringan lokasi bucket (AccessDenied → lanjut saja)
	if loc, err := client.GetBucketLocation(bucketName); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 && se.Code == "AccessDenied" {
			log.Printf("[OSS] warn: skip location check due to AccessDenied (bucket=%s). Continuing.", bucketName)
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Printf("[OSS] bucket %s location: %s", bucketName, loc)
	}

	return &OSSObjectStore{Client: client, Bucket: bkt, BucketName: bucketName}, nil
}

func (s *OSSObjectStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		// Key unik per upload → aman di-cache lama
		oss.CacheControl("public, max-age=31536000, immutable"),
		// Re-upload key sama DITOLAK, bukan ditimpa diam-diam
		oss.ForbidOverWrite(true),
	}
	return s.Bucket.PutObject(key, r, opts...)
}

func (s *OSSObjectStore) Delete(ctx context.Context, key string) error {
	return s.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (s *OSSObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.Bucket.IsObjectExist(key, oss.WithContext(ctx))
}

func (s *OSSObjectStore) SignURL(ctx context.Context, key string, expiry time.Duration, downloadName string) (string, error) {
	sec := int64(expiry / time.Second)
	if sec <= 0 {
		return "", fmt.Errorf("expiry harus > 0")
	}
	opts := []oss.Option{}
	if strings.TrimSpace(downloadName) != "" {
		opts = append(opts, oss.ResponseContentDisposition(fmt.Sprintf("attachment; filename=%q", downloadName)))
	}
	return s.Bucket.SignURL(key, oss.HTTPGet, sec, opts...)
}

func (s *OSSObjectStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	out := []ObjectInfo{}
	marker := ""
	for {
		res, err := s.Bucket.ListObjects(
			oss.Prefix(prefix),
			oss.Marker(marker),
			oss.MaxKeys(1000),
			oss.WithContext(ctx),
		)
		if err != nil {
			return nil, err
		}
		for _, obj := range res.Objects {
			out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
		}
		if !res.IsTruncated {
			break
		}
		marker = res.NextMarker
	}
	return out, nil
}

// IsNotFound: object tidak ada di OSS.
func IsNotFound(err error) bool {
	if e, ok := err.(oss.ServiceError); ok {
		return e.StatusCode == 404
	}
	return false
}
