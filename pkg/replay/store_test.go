package replay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"duel-1.replay", true},
		{"match", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b.replay", false},
		{`a\b.replay`, false},
		{"nul\x00.replay", false},
	}
	for _, tt := range tests {
		err := ValidateName(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateName(%q) error = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "replays")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "b.replay", []byte{1, 2}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, "a.replay", []byte{3}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	names, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"a.replay", "b.replay"}; !reflect.DeepEqual(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}

	data, err := store.Load(ctx, "b.replay")
	if err != nil || !bytes.Equal(data, []byte{1, 2}) {
		t.Errorf("Load() = %v, %v", data, err)
	}

	if err := store.Save(ctx, "b.replay", []byte{9}); err != nil {
		t.Fatalf("overwrite Save() error = %v", err)
	}
	if data, _ := store.Load(ctx, "b.replay"); !bytes.Equal(data, []byte{9}) {
		t.Errorf("Load() after overwrite = %v", data)
	}

	if _, err := store.Load(ctx, "missing.replay"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
	if err := store.Save(ctx, "../escape.replay", nil); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Save(../) error = %v, want ErrInvalidName", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.Save(cancelled, "c.replay", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() with cancelled ctx error = %v", err)
	}
}

// fakeS3 implements S3API in memory.
type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
	err     error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	prefix := aws.ToString(in.Bucket) + "/"
	var contents []types.Object
	for k := range f.objects {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		key := strings.TrimPrefix(k, prefix)
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			contents = append(contents, types.Object{Key: aws.String(key)})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func TestS3Store(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake, "bucket", "replays/")
	ctx := context.Background()

	if err := store.Save(ctx, "m2.replay", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, "m1.replay", []byte{4}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	fake.objects["bucket/other/x.replay"] = []byte{0}
	fake.objects["bucket/replays/readme.md"] = []byte{0}

	put := fake.puts[0]
	if aws.ToString(put.Key) != "replays/m2.replay" {
		t.Errorf("PutObject key = %q", aws.ToString(put.Key))
	}
	if aws.ToInt64(put.ContentLength) != 3 {
		t.Errorf("PutObject ContentLength = %d, want 3", aws.ToInt64(put.ContentLength))
	}

	names, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"m1.replay", "m2.replay"}; !reflect.DeepEqual(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}

	data, err := store.Load(ctx, "m2.replay")
	if err != nil || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("Load() = %v, %v", data, err)
	}
	if _, err := store.Load(ctx, "nope.replay"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}

	fake.err = errors.New("access denied")
	if err := store.Save(ctx, "m3.replay", nil); err == nil || !errors.Is(err, fake.err) {
		t.Errorf("Save() error = %v, want wrapped access denied", err)
	}
}

func TestNewS3Client(t *testing.T) {
	c := NewS3Client(S3Config{
		Region:          "eu-west-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	opts := c.Options()
	if opts.Region != "eu-west-1" {
		t.Errorf("Region = %q", opts.Region)
	}
	if aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("BaseEndpoint = %q", aws.ToString(opts.BaseEndpoint))
	}
	if !opts.UsePathStyle {
		t.Error("UsePathStyle = false")
	}
	creds, err := opts.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if creds.AccessKeyID != "key" {
		t.Errorf("AccessKeyID = %q", creds.AccessKeyID)
	}

	// s3.New drops anonymous credentials to nil; either means unsigned.
	anon := NewS3Client(S3Config{Region: "us-east-1"})
	if c := anon.Options().Credentials; c != nil {
		if _, ok := c.(aws.AnonymousCredentials); !ok {
			t.Errorf("Credentials = %T, want none or AnonymousCredentials", c)
		}
	}
}

// captureHTTP records the last request and answers 200 with an empty body.
type captureHTTP struct {
	req *http.Request
}

func (c *captureHTTP) Do(req *http.Request) (*http.Response, error) {
	c.req = req
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}, nil
}

func TestNewS3ClientSigning(t *testing.T) {
	tests := []struct {
		name   string
		cfg    S3Config
		signed bool
	}{
		{"anonymous", S3Config{Region: "us-east-1"}, false},
		{"static keys", S3Config{Region: "us-east-1", AccessKeyID: "key", SecretAccessKey: "secret"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := &captureHTTP{}
			client := s3.New(NewS3Client(tt.cfg).Options(), func(o *s3.Options) {
				o.HTTPClient = capture
			})
			_, _ = client.PutObject(context.Background(), &s3.PutObjectInput{
				Bucket: aws.String("replays"),
				Key:    aws.String("a.replay"),
				Body:   strings.NewReader("data"),
			})
			if capture.req == nil {
				t.Fatal("no request sent")
			}
			auth := capture.req.Header.Get("Authorization")
			if signed := auth != ""; signed != tt.signed {
				t.Errorf("Authorization = %q, signed = %v, want %v", auth, signed, tt.signed)
			}
		})
	}
}
