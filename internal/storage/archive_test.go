package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/config"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	objects map[string][]byte
	err     error
}

func (f *fakeStore) ListObjects(context.Context, string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStore) GetObject(_ context.Context, key string) ([]byte, error) {
	return f.objects[key], nil
}

func (f *fakeStore) UploadObject(_ context.Context, key string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.objects[key] = data
	return nil
}

func TestObjectArchiver_Archive(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{}}
	a := storage.NewObjectArchiver(store, "/raw/")

	key, err := a.Archive(context.Background(), "run-1", `C:\exports\retail.csv`, []byte("a,b\n1,2\n"))
	require.NoError(t, err)

	assert.Regexp(t, `^raw/\d{4}/\d{2}/\d{2}/run-1-retail\.csv$`, key)
	assert.Equal(t, []byte("a,b\n1,2\n"), store.objects[key])
}

func TestObjectArchiver_DefaultPrefixAndErrors(t *testing.T) {
	boom := errors.New("bucket gone")
	a := storage.NewObjectArchiver(&fakeStore{objects: map[string][]byte{}, err: boom}, "")

	assert.Regexp(t, `^uploads/.+/run-2-data\.csv$`, a.Key("run-2", "data.csv"))

	_, err := a.Archive(context.Background(), "run-2", "data.csv", nil)
	assert.ErrorIs(t, err, boom)
}

func TestNewArchiver(t *testing.T) {
	a, err := storage.NewArchiver(config.ArchiveConfig{Enabled: false})
	require.NoError(t, err)
	key, err := a.Archive(context.Background(), "r", "f.csv", []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, key)

	_, err = storage.NewArchiver(config.ArchiveConfig{Enabled: true, Endpoint: "s3.local"})
	assert.Error(t, err)
}
