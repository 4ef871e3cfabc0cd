package r2

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Client holds the necessary configuration for interacting with
// Cloudflare R2, where uploaded course material files are kept.
type Client struct {
	s3Client   *s3.Client
	bucketName string
}

// NewClient creates and configures a new R2 client instance using
// environment variables. It returns (nil, nil) if the R2 environment
// variables are not fully configured, allowing the application to run
// with object storage disabled (files then live only as extracted text
// in the database).
func NewClient() (*Client, error) {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	bucketName := os.Getenv("R2_BUCKET_NAME")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	secretAccessKey := os.Getenv("R2_SECRET_ACCESS_KEY")

	if accountID == "" || bucketName == "" || accessKeyID == "" || secretAccessKey == "" {
		log.Println("WARN: Cloudflare R2 environment variables not fully configured (CLOUDFLARE_ACCOUNT_ID, R2_BUCKET_NAME, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY). File storage will be skipped.")
		return nil, nil
	}

	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	log.Printf("INFO: R2 client initialized for bucket '%s'", bucketName)
	return &Client{
		s3Client:   s3.NewFromConfig(cfg),
		bucketName: bucketName,
	}, nil
}

// ObjectKey builds the storage key for a project file:
// "projects/<projectID>/files/<fileID>/<filename>".
func ObjectKey(projectID, fileID uuid.UUID, filename string) string {
	return fmt.Sprintf("projects/%s/files/%s/%s", projectID, fileID, filename)
}

// UploadFile uploads content under the given object key. The bucket is
// private; files are served through the API, not directly.
func (c *Client) UploadFile(ctx context.Context, objectKey, filename string, content io.Reader) error {
	if c == nil || c.s3Client == nil {
		return fmt.Errorf("R2 client not initialized")
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to R2 (key: %s): %w", objectKey, err)
	}

	log.Printf("INFO: Uploaded file to R2: %s", objectKey)
	return nil
}

// DeleteFile removes an object from the bucket. Deleting a key that no
// longer exists is not an error.
func (c *Client) DeleteFile(ctx context.Context, objectKey string) error {
	if c == nil || c.s3Client == nil {
		return fmt.Errorf("R2 client not initialized")
	}

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from R2 (key: %s): %w", objectKey, err)
	}
	return nil
}
