package storage_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/storage"
	"github.com/Builder-Lawyers/orbiter-backend/internal/testinfra"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

var (
	bucketOnce sync.Once
	s3Cfg      = storage.Config{Backend: "s3", Bucket: "orbiter-kv-test", Prefix: "kv/"}
)

func s3Namespace(t *testing.T, name string) *storage.S3Namespace {
	t.Helper()
	client := storage.NewS3Client(testinfra.AWS("s3"))
	bucketOnce.Do(func() {
		_, err := client.CreateBucket(context.Background(), &s3.CreateBucketInput{Bucket: aws.String(s3Cfg.Bucket)})
		require.NoError(t, err)
	})
	return storage.NewS3Namespace(client, s3Cfg, name)
}

func TestS3NamespaceGetPutDelete(t *testing.T) {
	ns := s3Namespace(t, storage.NamespaceSites)
	ctx := context.Background()

	_, err := ns.Get(ctx, "absent")
	require.ErrorIs(t, err, errs.ErrKeyNotFound)

	require.NoError(t, ns.Put(ctx, "my-site", []byte("bafy")))
	got, err := ns.Get(ctx, "my-site")
	require.NoError(t, err)
	require.Equal(t, "bafy", string(got))

	require.NoError(t, ns.Delete(ctx, "my-site"))
	_, err = ns.Get(ctx, "my-site")
	require.ErrorIs(t, err, errs.ErrKeyNotFound)
}

func TestS3NamespacePutIfAbsent(t *testing.T) {
	ns := s3Namespace(t, storage.NamespaceMappings)
	ctx := context.Background()

	created, err := ns.PutIfAbsent(ctx, "claim.example.com", []byte(`{"subdomain":"a"}`))
	require.NoError(t, err)
	require.True(t, created)

	created, err = ns.PutIfAbsent(ctx, "claim.example.com", []byte(`{"subdomain":"b"}`))
	require.NoError(t, err)
	require.False(t, created)

	got, err := ns.Get(ctx, "claim.example.com")
	require.NoError(t, err)
	require.JSONEq(t, `{"subdomain":"a"}`, string(got))
}
