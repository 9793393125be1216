package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/routegen-dev/routegen/pkg/router"
)

type putCall struct {
	Bucket      string
	Key         string
	ContentType string
	Body        []byte
	Metadata    map[string]string
}

type fakeS3 struct {
	calls []putCall
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, putCall{
		Bucket:      deref(params.Bucket),
		Key:         deref(params.Key),
		ContentType: deref(params.ContentType),
		Body:        body,
		Metadata:    params.Metadata,
	})
	return &s3.PutObjectOutput{}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func TestPublish(t *testing.T) {
	fake := &fakeS3{}
	pub := NewPublisher(fake, "tables", "v1/")

	artifacts := []Artifact{
		{Name: "a.txt", ContentType: "text/plain", Body: []byte("one")},
		{Name: "b.txt", ContentType: "text/plain", Body: []byte("two")},
	}
	if err := pub.Publish(context.Background(), artifacts); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(fake.calls))
	}
	first := fake.calls[0]
	if first.Bucket != "tables" {
		t.Errorf("bucket = %q, want %q", first.Bucket, "tables")
	}
	if first.Key != "v1/a.txt" {
		t.Errorf("key = %q, want %q", first.Key, "v1/a.txt")
	}
	if string(first.Body) != "one" {
		t.Errorf("body = %q, want %q", first.Body, "one")
	}
	if first.Metadata["upload-time"] == "" {
		t.Error("expected upload-time metadata")
	}
	if fake.calls[1].Key != "v1/b.txt" {
		t.Errorf("second key = %q, want %q", fake.calls[1].Key, "v1/b.txt")
	}
}

func TestPublishError(t *testing.T) {
	wantErr := errors.New("access denied")
	fake := &fakeS3{err: wantErr}
	pub := NewPublisher(fake, "tables", "")

	err := pub.Publish(context.Background(), []Artifact{{Name: "a", Body: []byte("x")}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
	if !strings.Contains(err.Error(), "a") {
		t.Errorf("error %q should name the key", err)
	}
}

func TestPublishDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "css"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("body{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "favicon.ico"), []byte{0}, 0644); err != nil {
		t.Fatal(err)
	}

	fake := &fakeS3{}
	pub := NewPublisher(fake, "tables", "site/")

	n, err := pub.PublishDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("PublishDir() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("uploaded %d files, want 2", n)
	}

	keys := make(map[string]string)
	for _, c := range fake.calls {
		keys[c.Key] = c.ContentType
	}
	ct, ok := keys["site/css/site.css"]
	if !ok {
		t.Fatalf("missing css upload, got keys %v", keys)
	}
	if !strings.HasPrefix(ct, "text/css") {
		t.Errorf("css content type = %q", ct)
	}
	if _, ok := keys["site/favicon.ico"]; !ok {
		t.Errorf("missing favicon upload, got keys %v", keys)
	}
}

func TestPublishDirMissing(t *testing.T) {
	fake := &fakeS3{}
	pub := NewPublisher(fake, "tables", "")

	n, err := pub.PublishDir(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("PublishDir() error = %v", err)
	}
	if n != 0 || len(fake.calls) != 0 {
		t.Errorf("expected no uploads, got n=%d calls=%d", n, len(fake.calls))
	}
}

func TestPublishTable(t *testing.T) {
	fake := &fakeS3{}
	pub := NewPublisher(fake, "tables", "app/")

	src := []byte("package routes\n")
	table := &router.RouterTable{
		Modules: map[string]router.ModuleRef{
			"abc123": {Location: "about", Role: "page"},
		},
		MaxParamDepth: 2,
		MetaPages:     []string{"."},
	}
	if err := pub.PublishTable(context.Background(), src, table); err != nil {
		t.Fatalf("PublishTable() error = %v", err)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(fake.calls))
	}
	if fake.calls[0].Key != "app/routes_gen.go" {
		t.Errorf("source key = %q", fake.calls[0].Key)
	}
	if fake.calls[1].Key != "app/manifest.json" {
		t.Errorf("manifest key = %q", fake.calls[1].Key)
	}

	var manifest Manifest
	if err := json.Unmarshal(fake.calls[1].Body, &manifest); err != nil {
		t.Fatalf("manifest not valid JSON: %v", err)
	}
	sum := sha256.Sum256(src)
	if manifest.Digest != hex.EncodeToString(sum[:]) {
		t.Errorf("digest = %q", manifest.Digest)
	}
	if manifest.MaxParamDepth != 2 {
		t.Errorf("maxParamDepth = %d, want 2", manifest.MaxParamDepth)
	}
	if got := manifest.Modules["abc123"]; got.Location != "about" || got.Role != "page" {
		t.Errorf("modules[abc123] = %+v", got)
	}
	if len(manifest.MetaPages) != 1 || manifest.MetaPages[0] != "." {
		t.Errorf("metaPages = %v", manifest.MetaPages)
	}
}
