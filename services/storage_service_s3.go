package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appConfig "github.com/gino-rizzo/ginos-pizza-api/config"
)

// S3StorageService stores PDFs in an S3 bucket, using the folder name as a
// key prefix. The file "ID" is the object key.
type S3StorageService struct {
	client *s3.Client
	bucket string
}

func newS3StorageService(ctx context.Context, cfg *appConfig.Config) (*S3StorageService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3StorageService{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.AWSS3Bucket,
	}, nil
}

func s3Key(folder, name string) string {
	return folder + "/" + name
}

// Upload writes the PDF under <folder>/<name> and returns the object key
func (s *S3StorageService) Upload(ctx context.Context, folder, name string, content []byte) (string, error) {
	key := s3Key(folder, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return key, nil
}

// Move copies the object to the destination folder and deletes the source.
// S3 has no rename, so this is copy-then-delete.
func (s *S3StorageService) Move(ctx context.Context, fileID, fromFolder, toFolder string) error {
	name := fileID
	if len(fromFolder)+1 < len(fileID) {
		name = fileID[len(fromFolder)+1:]
	}
	destKey := s3Key(toFolder, name)

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + fileID),
		Key:        aws.String(destKey),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to copy %s to %s: %w", fileID, destKey, err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileID),
	}); err != nil {
		return fmt.Errorf("failed to delete %s after copy: %w", fileID, err)
	}
	return nil
}

// Find heads the object under <folder>/<name>; nil means not present
func (s *S3StorageService) Find(ctx context.Context, folder, name string) (*StoredFile, error) {
	key := s3Key(folder, name)
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to head %s: %w", key, err)
	}

	var modified time.Time
	if head.LastModified != nil {
		modified = *head.LastModified
	}
	return &StoredFile{ID: key, Name: name, ModifiedAt: modified}, nil
}

// Delete removes the object; a missing key is not an error
func (s *S3StorageService) Delete(ctx context.Context, fileID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("failed to delete %s from S3: %w", fileID, err)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
