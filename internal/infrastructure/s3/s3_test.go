package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fakePutObject struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutObject) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	raw, _ := io.ReadAll(params.Body)
	f.body = string(raw)
	return &s3.PutObjectOutput{}, f.err
}

func TestUploader(t *testing.T) {
	t.Parallel()

	api := &fakePutObject{}
	u := NewUploader(api, &Config{Bucket: "analytics", Prefix: "dbt-artifacts"})

	key, err := u.Upload(t.Context(), "run-1/artifacts.tar.gz", strings.NewReader("payload"), "application/gzip")
	require.NoError(t, err)
	require.Equal(t, "dbt-artifacts/run-1/artifacts.tar.gz", key)
	require.Equal(t, "analytics", aws.ToString(api.input.Bucket))
	require.Equal(t, "payload", api.body)
}

func TestUploaderError(t *testing.T) {
	t.Parallel()

	api := &fakePutObject{err: errors.New("access denied")}
	_, err := NewUploader(api, &Config{Bucket: "analytics"}).
		Upload(t.Context(), "x", strings.NewReader(""), "text/plain")
	require.ErrorContains(t, err, "s3://analytics/x")
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Config{}.Validate())
	require.Error(t, Config{Bucket: "b", Url: "http://minio:9000", Region: "us-east-1"}.Validate())
	require.NoError(t, Config{
		Bucket: "b", Url: "http://minio:9000", Region: "us-east-1",
		AccessKeyId: "id", SecretAccessKey: "secret",
	}.Validate())
}

func TestAwsLogMode(t *testing.T) {
	t.Parallel()

	debug := zap.New(zapcore.NewNopCore()).WithOptions(zap.IncreaseLevel(zapcore.DebugLevel))
	require.True(t, getDefaultAwsLogMode(debug).IsRetries())
}
