package s3

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
)

// API bundles common S3 operations.
type API interface {
	PutObject(*s3.PutObjectInput) (*s3.PutObjectOutput, error)
}

// PutObject stores the raw bytes under key in the bucket with a public-read
// ACL and returns the canonical object URL.
func PutObject(
	api API,
	bucket, region, key, contentType string,
	raw []byte,
) (string, error) {
	_, err := api.PutObject(&s3.PutObjectInput{
		ACL:           aws.String(s3.ObjectCannedACLPublicRead),
		Body:          bytes.NewReader(raw),
		Bucket:        aws.String(bucket),
		ContentLength: aws.Int64(int64(len(raw))),
		ContentType:   aws.String(contentType),
		Key:           aws.String(key),
	})
	if err != nil {
		return "", err
	}

	return ObjectURL(bucket, region, key), nil
}

// ObjectURL returns the canonical URL of the object at key.
func ObjectURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
