package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrelab/firespread/pkg/gis/gistest"
)

// memStore collects uploads in memory.
type memStore struct {
	objects map[string][]byte
	failKey string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) PutObject(_ context.Context, key string, body io.Reader, _ int64) error {
	if key == m.failKey {
		return &StoreError{Op: "PutObject", Bucket: "test", Key: key, Err: ErrAccessDenied}
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return err
	}
	m.objects[key] = buf.Bytes()
	return nil
}

func (m *memStore) Close() error { return nil }

func TestUploader_Publish(t *testing.T) {
	store := newMemStore()
	session := &gistest.Session{}
	u := NewUploader(store, UploaderConfig{Prefix: "runs/demo", WorkDir: t.TempDir()})

	res, err := u.Publish(context.Background(), session, []string{"fire_2", "fire_3"})
	require.NoError(t, err)

	assert.Equal(t, []string{"runs/demo/fire_2.tif", "runs/demo/fire_3.tif"}, res.Keys)
	assert.Equal(t, []byte("fire_2"), store.objects["runs/demo/fire_2.tif"])
	assert.Equal(t, int64(len("fire_2")+len("fire_3")), res.Bytes)
	assert.Equal(t, 2, session.CountOf(gistest.OpExport))
}

func TestUploader_NoPrefix(t *testing.T) {
	store := newMemStore()
	u := NewUploader(store, UploaderConfig{WorkDir: t.TempDir()})

	res, err := u.Publish(context.Background(), &gistest.Session{}, []string{"fire_8"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fire_8.tif"}, res.Keys)
}

func TestUploader_StopsOnUploadFailure(t *testing.T) {
	store := newMemStore()
	store.failKey = "fire_3.tif"
	session := &gistest.Session{}
	u := NewUploader(store, UploaderConfig{WorkDir: t.TempDir()})

	res, err := u.Publish(context.Background(), session, []string{"fire_2", "fire_3", "fire_4"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// The completed prefix is kept, nothing past the failure is attempted.
	assert.Equal(t, []string{"fire_2.tif"}, res.Keys)
	assert.Equal(t, 2, session.CountOf(gistest.OpExport))
}

func TestUploader_StopsOnExportFailure(t *testing.T) {
	store := newMemStore()
	session := &gistest.Session{FailOp: gistest.OpExport, FailAt: 1}
	u := NewUploader(store, UploaderConfig{WorkDir: t.TempDir()})

	res, err := u.Publish(context.Background(), session, []string{"fire_2"})
	require.Error(t, err)
	assert.Empty(t, res.Keys)
	assert.Empty(t, store.objects)
}

func TestUploader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := NewUploader(newMemStore(), UploaderConfig{WorkDir: t.TempDir(), RateLimit: 1})
	_, err := u.Publish(ctx, &gistest.Session{}, []string{"fire_2"})
	require.Error(t, err)
}

func TestS3Config_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     S3Config
		wantErr bool
	}{
		{name: "valid", cfg: S3Config{Bucket: "b"}},
		{name: "missing bucket", cfg: S3Config{}, wantErr: true},
		{name: "key without secret", cfg: S3Config{Bucket: "b", AccessKeyID: "k"}, wantErr: true},
		{name: "secret without key", cfg: S3Config{Bucket: "b", SecretAccessKey: "s"}, wantErr: true},
		{name: "both credentials", cfg: S3Config{Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				var ce *ConfigError
				require.Error(t, err)
				assert.True(t, errors.As(err, &ce))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveRegion(t *testing.T) {
	assert.Equal(t, "eu-west-1", resolveRegion("", "eu-west-1"))
	assert.Equal(t, DefaultAWSRegion, resolveRegion("", ""))
	assert.Equal(t, "", resolveRegion("http://localhost:9000", ""))
}
