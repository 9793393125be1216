package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/routegen-dev/routegen/pkg/router"
)

// S3API is the subset of the S3 client the publisher uses. *s3.Client
// satisfies it; tests can substitute a fake.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads route table artifacts to an S3 bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	client := s3.NewFromConfig(cfg)
//	pub := upload.NewPublisher(client, "my-bucket", "tables/")
//	err := pub.PublishTable(ctx, src, table)
type Publisher struct {
	client S3API
	bucket string
	prefix string
}

// NewPublisher creates a publisher for the given bucket and key prefix.
func NewPublisher(client S3API, bucket, prefix string) *Publisher {
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Artifact is one object to upload.
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
}

// Manifest describes a published table. It is stored next to the source as
// manifest.json.
type Manifest struct {
	// Digest is the hex sha256 of the generated source.
	Digest string `json:"digest"`

	// GeneratedAt is the upload time in RFC 3339 UTC.
	GeneratedAt string `json:"generatedAt"`

	// MaxParamDepth mirrors the table's maximum dynamic-parameter depth.
	MaxParamDepth int `json:"maxParamDepth"`

	// Modules maps content ids to their source modules.
	Modules map[string]router.ModuleRef `json:"modules"`

	// MetaPages lists pages exporting the optional Meta hook.
	MetaPages []string `json:"metaPages,omitempty"`
}

// PublishTable uploads the generated source and its manifest.
func (p *Publisher) PublishTable(ctx context.Context, src []byte, table *router.RouterTable) error {
	sum := sha256.Sum256(src)
	manifest := Manifest{
		Digest:        hex.EncodeToString(sum[:]),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		MaxParamDepth: table.MaxParamDepth,
		Modules:       table.Modules,
		MetaPages:     table.MetaPages,
	}
	manifestBody, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	artifacts := []Artifact{
		{Name: "routes_gen.go", ContentType: "text/x-go", Body: src},
		{Name: "manifest.json", ContentType: "application/json", Body: manifestBody},
	}
	return p.Publish(ctx, artifacts)
}

// PublishDir uploads every regular file under dir, preserving relative
// paths below the configured prefix. Missing directories are not an
// error; deploys without public assets are common.
func (p *Publisher) PublishDir(ctx context.Context, dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	var artifacts []Artifact
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		artifacts = append(artifacts, Artifact{
			Name:        filepath.ToSlash(rel),
			ContentType: contentType,
			Body:        body,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := p.Publish(ctx, artifacts); err != nil {
		return 0, err
	}
	return len(artifacts), nil
}

// Publish uploads the given artifacts under the configured prefix.
func (p *Publisher) Publish(ctx context.Context, artifacts []Artifact) error {
	for _, a := range artifacts {
		key := p.prefix + a.Name
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(a.Body),
			ContentType: aws.String(a.ContentType),
			Metadata: map[string]string{
				"upload-time": time.Now().UTC().Format(time.RFC3339),
			},
		})
		if err != nil {
			return fmt.Errorf("uploading %s: %w", key, err)
		}
	}
	return nil
}
