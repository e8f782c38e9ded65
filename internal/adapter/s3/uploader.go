// package s3 uploads captured images to S3 using the ambient AWS
// credential chain. Credential problems surface as domain errors; they
// never cross into the protocol layer.
package s3

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"gitlab.com/camfleet.net/internal/config"
	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
)

var _ secondary.ObjectStore = (*Uploader)(nil)

// Uploader implements the object-storage collaborator on S3.
type Uploader struct {
	client  *s3.Client
	region  string
	baseDir string
	logger  primary.Logger
}

// NewUploader builds an S3 client from the default credential chain.
// Construction never fails on missing credentials; CheckCredentials
// reports that at call time.
func NewUploader(ctx context.Context, cfg *config.AwsConfig, baseDir string, logger primary.Logger) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &Uploader{
		client:  s3.NewFromConfig(awsCfg),
		region:  cfg.Region,
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// CheckCredentials verifies the ambient credentials by listing buckets.
func (u *Uploader) CheckCredentials(ctx context.Context) error {
	if _, err := u.client.ListBuckets(ctx, &s3.ListBucketsInput{}); err != nil {
		return fmt.Errorf("AWS credentials check failed: %w", err)
	}
	return nil
}

// ensureBucket creates the bucket if it does not already exist.
func (u *Uploader) ensureBucket(ctx context.Context, bucket string) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit LocationConstraint.
	if u.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(u.region),
		}
	}

	if _, err := u.client.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}

	u.logger.Info("Created bucket", "bucket", bucket)
	return nil
}

// UploadImages uploads the named files into bucket, keyed as
// <hostnamePrefix>/<filename>. It returns the success count and
// per-item error strings.
func (u *Uploader) UploadImages(ctx context.Context, files []string, bucket, hostnamePrefix string) (int, []string, error) {
	if err := u.ensureBucket(ctx, bucket); err != nil {
		return 0, nil, err
	}

	uploaded := 0
	var uploadErrors []string
	for _, name := range files {
		if err := u.uploadFile(ctx, name, bucket, hostnamePrefix); err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("Failed to upload %s: %v", name, err))
			continue
		}
		uploaded++
	}
	return uploaded, uploadErrors, nil
}

func (u *Uploader) uploadFile(ctx context.Context, name, bucket, prefix string) error {
	f, err := os.Open(filepath.Join(u.baseDir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	key := name
	if prefix != "" {
		key = prefix + "/" + name
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return err
	}

	u.logger.Info("Uploaded image", "key", key, "bucket", bucket)
	return nil
}
