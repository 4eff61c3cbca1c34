// Package voicestore uploads voice-note audio to S3-compatible object
// storage. Only the object key travels with the journal entry; audio bytes
// never go through the table store.
package voicestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured is returned by New when the object-storage settings are
// incomplete; voice notes are then simply unavailable.
var ErrNotConfigured = errors.New("voice storage not configured")

// Config holds the object-storage connection settings.
type Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store uploads voice notes for journal entries.
type Store struct {
	client putObjectAPI
	bucket string
}

// New builds the uploader. MinIO-style endpoints need path-style addressing.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, ErrNotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "")))
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Upload stores the audio file and returns the object key to keep on the
// entry. Keys are namespaced per user and dated so listings stay browsable.
func (s *Store) Upload(ctx context.Context, userID, entryID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open voice note: %w", err)
	}
	defer f.Close()

	key := objectKey(userID, entryID, path)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(path)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload voice note: %w", err)
	}
	return key, nil
}

func objectKey(userID, entryID, path string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("voice/%s/%d/%02d/%s%s",
		userID, d.Year(), d.Month(), entryID, filepath.Ext(path))
}

func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m4a":
		return "audio/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
