// Package journal exposes the operations the command line dispatches to:
// adding entries, listing them, counting and renaming tags, and moving the
// whole database in and out of CSV.
package journal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/diarydek/diarydek/internal/config"
	"github.com/diarydek/diarydek/internal/domain"
	"github.com/diarydek/diarydek/internal/query"
	"github.com/diarydek/diarydek/internal/store"
	"github.com/diarydek/diarydek/internal/transcode"
)

type Journal struct {
	store *store.Store
	log   *slog.Logger
}

// Open opens the database named by cfg, creating it and its directory if needed
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w: %w", domain.ErrStorage, err)
	}

	s, err := store.New(ctx, path, logger)
	if err != nil {
		return nil, err
	}
	return &Journal{store: s, log: logger}, nil
}

func (j *Journal) Close() error {
	return j.store.Close()
}

// AddEntry records a new entry
func (j *Journal) AddEntry(ctx context.Context, stamp domain.Stamp, body string, tags []string) (*domain.Entry, error) {
	return j.store.AddEntry(ctx, stamp, body, tags)
}

// ListEntries returns the entries matching the filters, in insertion order.
// More than one tag is rejected before the database is read.
func (j *Journal) ListEntries(ctx context.Context, text string, tags []string, since *domain.Stamp) ([]domain.Listed, error) {
	f := query.Filter{Text: text, Tags: tags, Since: since}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	snap, err := j.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	j.log.Debug("listing", "text", text, "tags", tags, "since", since, "entries", len(snap.Entries))
	return query.Match(snap, f)
}

// TagCounts returns every tag with the number of entries it labels
func (j *Journal) TagCounts(ctx context.Context) ([]domain.TagCount, error) {
	return j.store.TagCounts(ctx)
}

// RenameTag renames a tag in place; see store.Store.RenameTag
func (j *Journal) RenameTag(ctx context.Context, oldText, newText string) error {
	return j.store.RenameTag(ctx, oldText, newText)
}

// Rows returns the exchange rows for the whole database
func (j *Journal) Rows(ctx context.Context) ([]transcode.Row, error) {
	snap, err := j.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return transcode.Rows(snap), nil
}

// ExportCSV writes the whole database as CSV
func (j *Journal) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := j.Rows(ctx)
	if err != nil {
		return err
	}
	return transcode.WriteCSV(w, rows)
}

// ExportXLSX writes the whole database as a spreadsheet
func (j *Journal) ExportXLSX(ctx context.Context, w io.Writer) error {
	rows, err := j.Rows(ctx)
	if err != nil {
		return err
	}
	return transcode.WriteXLSX(w, rows)
}

// ImportCSV adds every row of r as a new entry and returns how many were added.
// Entries are never deduplicated, so importing twice doubles them. If any row
// is malformed nothing is imported.
func (j *Journal) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	rows, err := transcode.ReadCSV(r)
	if err != nil {
		return 0, err
	}

	batch := make([]store.NewEntry, 0, len(rows))
	for i, row := range rows {
		stamp, body, tags, err := row.Entry()
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
		batch = append(batch, store.NewEntry{Stamp: stamp, Body: body, Tags: tags})
	}

	added, err := j.store.AddEntries(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	j.log.Debug("imported entries", "count", len(added))
	return len(added), nil
}
