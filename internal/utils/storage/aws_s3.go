package storage

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/internal/utils"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	AllowImage = []string{".jpg", ".jpeg", ".png", ".webp", ".heic"}

	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrStorageNotReady    = errors.New("proof storage is not configured")
)

type (
	AwsS3 interface {
		// UploadFile stores file under folder/name and returns the object key.
		UploadFile(ctx context.Context, name string, file *multipart.FileHeader, folder string, allowed ...string) (string, error)
		GetPublicLinkKey(objectKey string) string
	}

	// ObjectPutter is the subset of the S3 client used for uploads.
	ObjectPutter interface {
		PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	}

	awsS3 struct {
		client ObjectPutter
		bucket string
		region string
	}
)

func NewAwsS3() AwsS3 {
	region := utils.GetConfig("AWS_S3_REGION")
	bucket := utils.GetConfig("AWS_S3_BUCKET")

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if key := utils.GetConfig("AWS_ACCESS_KEY"); key != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, utils.GetConfig("AWS_SECRET_KEY"), ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return &awsS3{bucket: bucket, region: region}
	}
	return NewAwsS3WithClient(s3.NewFromConfig(cfg), bucket, region)
}

func NewAwsS3WithClient(client ObjectPutter, bucket, region string) AwsS3 {
	return &awsS3{client: client, bucket: bucket, region: region}
}

func (a *awsS3) UploadFile(ctx context.Context, name string, file *multipart.FileHeader, folder string, allowed ...string) (string, error) {
	if a.client == nil || a.bucket == "" {
		return "", fmt.Errorf("%w: %v", domain.ErrUnavailable, ErrStorageNotReady)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(allowed) > 0 && !contains(allowed, ext) {
		return "", fmt.Errorf("%w: %v %s", domain.ErrInvalidRequest, ErrFileTypeNotAllowed, ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		head := make([]byte, 512)
		n, _ := src.Read(head)
		contentType = http.DetectContentType(head[:n])
		if seeker, ok := src.(interface {
			Seek(int64, int) (int64, error)
		}); ok {
			if _, err := seeker.Seek(0, 0); err != nil {
				return "", err
			}
		}
	}

	objectKey := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), name, ext)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(objectKey),
		Body:          src,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(file.Size),
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		return "", fmt.Errorf("%w: upload %s: %v", domain.ErrUnavailable, objectKey, err)
	}
	return objectKey, nil
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	if objectKey == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, objectKey)
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
