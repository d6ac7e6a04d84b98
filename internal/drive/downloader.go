package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/pipeline/inventory_csv"
	"github.com/rs/zerolog/log"
)

// FileSource is the part of Service the Downloader needs.
type FileSource interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, file *File, w io.Writer) error
}

// CSVHandler receives each inventory file of a folder as CSV.
type CSVHandler func(ctx context.Context, name string, csv io.Reader) error

// Downloader walks a Drive folder and hands every CSV, XLSX or Google Sheet
// in it to a CSVHandler, in name order.
type Downloader struct {
	source FileSource
}

func NewDownloader(source FileSource) *Downloader {
	return &Downloader{source: source}
}

// EachCSV returns the number of files handled. It stops at the first
// download, conversion or handler error.
func (d *Downloader) EachCSV(ctx context.Context, folderID string, fn CSVHandler) (int, error) {
	files, err := d.source.ListFiles(ctx, folderID)
	if err != nil {
		return 0, err
	}

	handled := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return handled, err
		}

		kind := fileKind(f)
		if kind == "" {
			log.Debug().Str("file", f.Name).Str("mime", f.MimeType).Msg("Skipping non-inventory drive file")
			continue
		}

		var raw bytes.Buffer
		if err := d.source.DownloadFile(ctx, f, &raw); err != nil {
			return handled, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}

		name := f.Name
		content := io.Reader(&raw)
		if kind == "xlsx" {
			var converted bytes.Buffer
			if err := inventory_csv.ConvertXLSXToCSV(&raw, &converted); err != nil {
				return handled, fmt.Errorf("failed to convert %s to csv: %w", f.Name, err)
			}
			name = strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) + ".csv"
			content = &converted
		}

		if err := fn(ctx, name, content); err != nil {
			return handled, fmt.Errorf("%s: %w", f.Name, err)
		}
		handled++
	}

	return handled, nil
}

func fileKind(f *File) string {
	switch {
	case f.IsNativeSheet():
		return "csv"
	case strings.EqualFold(filepath.Ext(f.Name), ".csv"):
		return "csv"
	case inventory_csv.IsSpreadsheet(f.Name):
		return "xlsx"
	default:
		return ""
	}
}
