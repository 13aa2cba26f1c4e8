package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/diarydek/diarydek/internal/domain"
)

// NewEntry is the input for adding an entry
type NewEntry struct {
	Stamp domain.Stamp
	Body  string
	Tags  []string
}

// AddEntry creates an entry and links it to its tags, creating missing tags.
// Duplicate tag texts collapse to one association; empty ones are ignored.
func (s *Store) AddEntry(ctx context.Context, stamp domain.Stamp, body string, tags []string) (*domain.Entry, error) {
	added, err := s.AddEntries(ctx, []NewEntry{{Stamp: stamp, Body: body, Tags: tags}})
	if err != nil {
		return nil, err
	}
	return &added[0], nil
}

// AddEntries adds all entries in one transaction; either all are stored or none.
// Bodies are stored with CRLF folded to LF, which is what a CSV reader hands
// back for a quoted field.
func (s *Store) AddEntries(ctx context.Context, in []NewEntry) ([]domain.Entry, error) {
	in = append([]NewEntry(nil), in...)
	for i, e := range in {
		in[i].Body = NormalizeBody(e.Body)
		if e.Stamp.IsZero() {
			return nil, fmt.Errorf("%w: missing", domain.ErrBadTimestamp)
		}
		for _, t := range e.Tags {
			if t == "" {
				continue
			}
			if err := ValidateTag(t); err != nil {
				return nil, err
			}
		}
	}

	created := make(map[string]string)
	added := make([]domain.Entry, 0, len(in))
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, e := range in {
			entry, err := s.insertEntry(ctx, tx, e, created)
			if err != nil {
				return err
			}
			added = append(added, *entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.remember(created)
	for _, e := range added {
		s.log.Debug("added entry", "id", e.ID, "stamp", e.Stamp.Raw)
	}
	return added, nil
}

// NormalizeBody rewrites CRLF line endings as LF
func NormalizeBody(body string) string {
	return strings.ReplaceAll(body, "\r\n", "\n")
}

func (s *Store) insertEntry(ctx context.Context, tx *sql.Tx, e NewEntry, created map[string]string) (*domain.Entry, error) {
	id, err := s.newEntryID()
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO entries (id, stamp, body) VALUES (?, ?, ?)",
		id, e.Stamp.Raw, e.Body,
	)
	if err != nil {
		return nil, storageErr("insert entry", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr("insert entry", err)
	}

	seen := make(map[string]bool, len(e.Tags))
	for _, text := range e.Tags {
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true

		tagID, err := s.resolveTag(ctx, tx, text, created)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO entry_tags (entry_id, tag_id) VALUES (?, ?)",
			id, tagID,
		); err != nil {
			return nil, storageErr("link entry tag", err)
		}
	}

	return &domain.Entry{ID: id, Seq: seq, Stamp: e.Stamp, Body: e.Body}, nil
}

// AllEntries returns every entry in insertion order
func (s *Store) AllEntries(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT seq, id, stamp, body FROM entries ORDER BY seq")
	if err != nil {
		return nil, storageErr("list entries", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var (
			e   domain.Entry
			raw string
		)
		if err := rows.Scan(&e.Seq, &e.ID, &raw, &e.Body); err != nil {
			return nil, storageErr("scan entry", err)
		}
		if e.Stamp, err = domain.ParseStamp(raw); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TagsFor returns the texts of all tags linked to an entry
func (s *Store) TagsFor(ctx context.Context, entryID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name
		FROM entry_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE et.entry_id = ?
		ORDER BY et.seq
	`, entryID)
	if err != nil {
		return nil, storageErr("get entry tags", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storageErr("scan tag", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// Associations returns every entry-tag link in insertion order
func (s *Store) Associations(ctx context.Context) ([]domain.Association, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT entry_id, tag_id FROM entry_tags ORDER BY seq")
	if err != nil {
		return nil, storageErr("list entry tags", err)
	}
	defer rows.Close()

	var links []domain.Association
	for rows.Next() {
		var a domain.Association
		if err := rows.Scan(&a.EntryID, &a.TagID); err != nil {
			return nil, storageErr("scan entry tag", err)
		}
		links = append(links, a)
	}
	return links, rows.Err()
}

// Snapshot reads the three tables
func (s *Store) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.AllEntries(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.Associations(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{Tags: tags, Entries: entries, Associations: links}, nil
}
