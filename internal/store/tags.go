package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/diarydek/diarydek/internal/domain"
)

func (s *Store) loadTagIndex(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM tags")
	if err != nil {
		return storageErr("load tags", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return storageErr("scan tag", err)
		}
		s.tags[name] = id
	}
	return rows.Err()
}

// ValidateTag reports whether text may be stored as a tag
func ValidateTag(text string) error {
	if text == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidTag)
	}
	if strings.Contains(text, ",") {
		return fmt.Errorf("%w: %q contains a comma", domain.ErrInvalidTag, text)
	}
	return nil
}

// ResolveTag returns the ID of the tag with the given text, creating it if needed
func (s *Store) ResolveTag(ctx context.Context, text string) (string, error) {
	if err := ValidateTag(text); err != nil {
		return "", err
	}
	created := make(map[string]string)
	id, err := s.resolveTag(ctx, s.db, text, created)
	if err != nil {
		return "", err
	}
	s.remember(created)
	return id, nil
}

// resolveTag looks text up in the index, then in tags created earlier in the
// same transaction, and inserts it otherwise. New tags are recorded in created
// and only enter the index once the caller has committed.
func (s *Store) resolveTag(ctx context.Context, q querier, text string, created map[string]string) (string, error) {
	if id, ok := s.tags[text]; ok {
		return id, nil
	}
	if id, ok := created[text]; ok {
		return id, nil
	}

	id := uuid.New().String()
	if _, err := q.ExecContext(ctx, "INSERT INTO tags (id, name) VALUES (?, ?)", id, text); err != nil {
		return "", storageErr("insert tag", err)
	}
	created[text] = id
	return id, nil
}

func (s *Store) remember(created map[string]string) {
	for text, id := range created {
		s.tags[text] = id
		s.log.Debug("created tag", "tag", text, "id", id)
	}
}

// ListTags returns all tags in creation order
func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM tags ORDER BY seq")
	if err != nil {
		return nil, storageErr("list tags", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Text); err != nil {
			return nil, storageErr("scan tag", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// TagCounts returns every tag with the number of entries it labels
func (s *Store) TagCounts(ctx context.Context) ([]domain.TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name, COUNT(et.entry_id)
		FROM tags t
		LEFT JOIN entry_tags et ON et.tag_id = t.id
		GROUP BY t.seq, t.name
		ORDER BY t.seq
	`)
	if err != nil {
		return nil, storageErr("count tags", err)
	}
	defer rows.Close()

	var counts []domain.TagCount
	for rows.Next() {
		var c domain.TagCount
		if err := rows.Scan(&c.Text, &c.Count); err != nil {
			return nil, storageErr("scan tag count", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// RenameTag rewrites a tag's text in place. The tag keeps its ID, so its
// associations are untouched. Renaming onto another existing tag is refused.
func (s *Store) RenameTag(ctx context.Context, oldText, newText string) error {
	id, ok := s.tags[oldText]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrTagNotFound, oldText)
	}
	if oldText == newText {
		return nil
	}
	if err := ValidateTag(newText); err != nil {
		return err
	}
	if _, exists := s.tags[newText]; exists {
		return fmt.Errorf("%w: %q", domain.ErrTagExists, newText)
	}

	if _, err := s.db.ExecContext(ctx, "UPDATE tags SET name = ? WHERE id = ?", newText, id); err != nil {
		return storageErr("rename tag", err)
	}
	delete(s.tags, oldText)
	s.tags[newText] = id

	s.log.Debug("renamed tag", "from", oldText, "to", newText, "id", id)
	return nil
}
