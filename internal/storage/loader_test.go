package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeGetter struct {
	body  string
	etag  string
	err   error
	calls int
	last  *s3.GetObjectInput
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(f.body)),
		ETag: aws.String(`"` + f.etag + `"`),
	}, nil
}

type notModified struct{}

func (notModified) Error() string     { return "not modified" }
func (notModified) ErrorCode() string { return "NotModified" }

func TestLoader_Fetch(t *testing.T) {
	getter := &fakeGetter{body: `{"balanced_model":"flux-pro"}`, etag: "abc"}
	l := NewLoader(LoaderConfig{Client: getter, Bucket: "b", Key: "catalog.json", CacheTTL: time.Nanosecond})

	res, err := l.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(res.Data) != getter.body || res.ETag != "abc" {
		t.Errorf("Fetch() = %q etag %q", res.Data, res.ETag)
	}
	if getter.last.IfNoneMatch != nil {
		t.Error("first fetch should not be conditional")
	}

	time.Sleep(time.Millisecond)
	getter.err = notModified{}
	res, err = l.Fetch(context.Background())
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if !res.NotChanged {
		t.Error("expected NotChanged on etag match")
	}
	if getter.last.IfNoneMatch == nil || *getter.last.IfNoneMatch != `"abc"` {
		t.Errorf("IfNoneMatch = %v, want quoted etag", getter.last.IfNoneMatch)
	}
}

func TestLoader_CachesWithinTTL(t *testing.T) {
	getter := &fakeGetter{body: `{}`, etag: "x"}
	l := NewLoader(LoaderConfig{Client: getter, Key: "k", CacheTTL: time.Hour})

	_, _ = l.Fetch(context.Background())
	res, err := l.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !res.NotChanged || getter.calls != 1 {
		t.Errorf("calls = %d, NotChanged = %v; want 1, true", getter.calls, res.NotChanged)
	}
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		getter  ObjectGetter
		wantErr error
	}{
		{"not configured", nil, ErrObjectNotFound},
		{"missing key", &fakeGetter{err: &types.NoSuchKey{}}, ErrObjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(LoaderConfig{Client: tt.getter, Key: "k"})
			_, err := l.Fetch(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	l := NewLoader(LoaderConfig{Client: &fakeGetter{body: "not json"}, Key: "k"})
	if _, err := l.Fetch(context.Background()); err == nil {
		t.Error("Fetch() should reject invalid JSON")
	}
}
