package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	raw, _ := io.ReadAll(params.Body)
	f.body = string(raw)
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func TestUpload(t *testing.T) {
	putter := &fakePutter{}
	u := newObjectUploader(putter, "snapshots", "https://cdn.example.com/")

	res, err := u.Upload(context.Background(), "tournaments/spring-cup-1/snapshot.json", "application/json", strings.NewReader(`{"ok":true}`))
	require.NoError(t, err)

	assert.Equal(t, "snapshots", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "tournaments/spring-cup-1/snapshot.json", aws.ToString(putter.input.Key))
	assert.Equal(t, "application/json", aws.ToString(putter.input.ContentType))
	assert.Equal(t, `{"ok":true}`, putter.body)
	assert.Equal(t, "abc123", res.ETag)
	assert.Equal(t, "https://cdn.example.com/tournaments/spring-cup-1/snapshot.json", res.Location)
}

func TestUpload_Error(t *testing.T) {
	u := newObjectUploader(&fakePutter{err: errors.New("denied")}, "b", "https://cdn.example.com")
	_, err := u.Upload(context.Background(), "k", "text/plain", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key: k")
}

func TestGetPublicURL(t *testing.T) {
	u := newObjectUploader(nil, "b", "https://cdn.example.com/base")
	assert.Equal(t, "https://cdn.example.com/base/a/b%20c.json", u.GetPublicURL("/a/b c.json"))
	assert.Equal(t, "", u.GetPublicURL(""))

	empty := newObjectUploader(nil, "b", "")
	assert.Equal(t, "", empty.GetPublicURL("a"))
}

func TestNewCloudflareR2Uploader_RequiresAllFields(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "a"})
	assert.Error(t, err)
}
