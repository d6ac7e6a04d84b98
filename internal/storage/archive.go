package storage

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/config"
)

const defaultArchivePrefix = "uploads"

// Archiver keeps a copy of every raw upload, keyed by ingest run.
type Archiver interface {
	Archive(ctx context.Context, runID, filename string, data []byte) (string, error)
}

// ObjectArchiver writes uploads to object storage under
// <prefix>/<yyyy>/<mm>/<dd>/<runID>-<filename>.
type ObjectArchiver struct {
	store  ObjectStorage
	prefix string
	now    func() time.Time
}

func NewObjectArchiver(store ObjectStorage, prefix string) *ObjectArchiver {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultArchivePrefix
	}
	return &ObjectArchiver{store: store, prefix: prefix, now: time.Now}
}

// NewArchiver returns an ObjectArchiver over S3 when archiving is enabled
// and a no-op archiver otherwise.
func NewArchiver(cfg config.ArchiveConfig) (Archiver, error) {
	if !cfg.Enabled {
		return NoopArchiver{}, nil
	}
	client, err := NewS3Client(S3ConfigFromArchive(cfg))
	if err != nil {
		return nil, err
	}
	return NewObjectArchiver(client, cfg.Prefix), nil
}

func (a *ObjectArchiver) Archive(ctx context.Context, runID, filename string, data []byte) (string, error) {
	key := a.Key(runID, filename)
	if err := a.store.UploadObject(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// Key builds the object key for an upload.
func (a *ObjectArchiver) Key(runID, filename string) string {
	day := a.now().UTC().Format("2006/01/02")
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "upload.csv"
	}
	return path.Join(a.prefix, day, runID+"-"+name)
}

type NoopArchiver struct{}

func (NoopArchiver) Archive(context.Context, string, string, []byte) (string, error) {
	return "", nil
}

var (
	_ Archiver = (*ObjectArchiver)(nil)
	_ Archiver = NoopArchiver{}
)
