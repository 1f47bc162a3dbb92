package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewMinioClient(endpoint, accessKeyID, secretAccessKey, region string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
		Region: region,
	})
}

// UploadBytesToMinio writes an in-memory object. Payload archives are JSON,
// so that is the default when no content type is given.
func UploadBytesToMinio(ctx context.Context, minioCli *minio.Client, bucket, objectKey string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/json"
	}
	_, err := minioCli.PutObject(
		ctx,
		bucket,
		strings.TrimPrefix(objectKey, "/"),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return fmt.Errorf("put object to minio failed: %w", err)
	}
	return nil
}
