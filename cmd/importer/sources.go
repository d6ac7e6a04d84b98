package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/drive"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/pipeline/inventory_csv"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/storage"
	"github.com/urfave/cli/v2"
)

// importer is the part of InventoryService the sources feed.
type importer interface {
	Import(ctx context.Context, source string, r io.Reader) (*domain.IngestResult, error)
}

func runImport(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}
	svc := depsFrom(c).inventory
	for _, path := range c.Args().Slice() {
		res, err := importFile(c.Context, svc, path)
		if err != nil {
			return err
		}
		logResult(res)
	}
	return nil
}

func importFile(ctx context.Context, svc importer, path string) (*domain.IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return importNamed(ctx, svc, filepath.Base(path), f)
}

// importNamed converts spreadsheets to CSV and rejects anything else that
// is not a CSV file.
func importNamed(ctx context.Context, svc importer, name string, r io.Reader) (*domain.IngestResult, error) {
	switch {
	case inventory_csv.IsSpreadsheet(name):
		var converted bytes.Buffer
		if err := inventory_csv.ConvertXLSXToCSV(r, &converted); err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", name, err)
		}
		return svc.Import(ctx, name, &converted)
	case strings.EqualFold(filepath.Ext(name), ".csv"):
		return svc.Import(ctx, name, r)
	default:
		return nil, fmt.Errorf("%s: %w", name, domain.ErrInvalidFileType)
	}
}

func runFetch(c *cli.Context) error {
	client, err := storage.NewS3Client(storage.S3Config{
		Endpoint:  c.String("s3-endpoint"),
		AccessKey: c.String("s3-access-key"),
		SecretKey: c.String("s3-secret-key"),
		Bucket:    c.String("s3-bucket"),
		Region:    c.String("s3-region"),
		UseSSL:    c.Bool("s3-use-ssl"),
	})
	if err != nil {
		return err
	}

	results, err := fetchObjects(c.Context, client, depsFrom(c).inventory, c.String("prefix"), c.String("key"))
	for _, res := range results {
		logResult(res)
	}
	return err
}

func fetchObjects(ctx context.Context, client storage.ObjectStorage, svc importer, prefix, override string) ([]*domain.IngestResult, error) {
	keys, err := objectKeys(ctx, client, prefix, override)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.IngestResult, 0, len(keys))
	for _, key := range keys {
		data, err := client.GetObject(ctx, key)
		if err != nil {
			return results, err
		}
		res, err := importNamed(ctx, svc, key, bytes.NewReader(data))
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func objectKeys(ctx context.Context, client storage.ObjectStorage, prefix, override string) ([]string, error) {
	if override != "" {
		return []string{resolveObjectKey(prefix, override)}, nil
	}

	listPrefix := strings.TrimSpace(prefix)
	objects, err := client.ListObjects(ctx, listPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", listPrefix, err)
	}

	var keys []string
	for _, obj := range objects {
		if strings.EqualFold(filepath.Ext(obj.Key), ".csv") || inventory_csv.IsSpreadsheet(obj.Key) {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no CSV or XLSX files found for prefix %s", prefix)
	}

	sort.Strings(keys)
	return keys, nil
}

func resolveObjectKey(prefix, override string) string {
	if prefix == "" {
		return strings.TrimPrefix(override, "/")
	}

	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	overrideTrimmed := strings.TrimPrefix(strings.TrimSpace(override), "/")

	if strings.HasPrefix(overrideTrimmed, prefixTrimmed) {
		return overrideTrimmed
	}
	return fmt.Sprintf("%s/%s", prefixTrimmed, overrideTrimmed)
}

func runDrive(c *cli.Context) error {
	srv, err := drive.NewService(c.Context, c.String("credentials"))
	if err != nil {
		return err
	}

	folderID := c.String("folder-id")
	if folderID == "" {
		folderID, err = srv.FindFolderByPath(c.Context, c.String("folder-path"))
		if err != nil {
			return err
		}
	}

	svc := depsFrom(c).inventory
	n, err := drive.NewDownloader(srv).EachCSV(c.Context, folderID, func(ctx context.Context, name string, r io.Reader) error {
		res, err := svc.Import(ctx, "drive:"+name, r)
		if err != nil {
			return err
		}
		logResult(res)
		return nil
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no inventory files found in drive folder %s", folderID)
	}
	return nil
}
