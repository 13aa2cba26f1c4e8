// Package transcode converts the journal to and from its flat exchange format:
// one row per entry holding the timestamp, the body and the comma-joined tags.
package transcode

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/diarydek/diarydek/internal/domain"
)

// FieldCount is the number of fields in every exchange row
const FieldCount = 3

// Row is one exchange row
type Row struct {
	Stamp string
	Body  string
	Tags  string
}

// RowError reports a malformed row. It satisfies errors.Is(err, domain.ErrMalformedRow).
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, domain.ErrMalformedRow, e.Reason)
}

func (e *RowError) Is(target error) bool {
	return target == domain.ErrMalformedRow
}

// Rows flattens a snapshot, one row per entry in storage order
func Rows(snap *domain.Snapshot) []Row {
	byEntry := snap.EntryTags()
	rows := make([]Row, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		rows = append(rows, Row{
			Stamp: e.Stamp.Raw,
			Body:  e.Body,
			Tags:  strings.Join(byEntry[e.ID], ","),
		})
	}
	return rows
}

// SplitTags splits a tags field. An empty field yields no tags.
func SplitTags(field string) []string {
	if field == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(field, ",") {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// WriteCSV writes rows without a header
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	for _, r := range rows {
		if err := cw.Write([]string{r.Stamp, r.Body, r.Tags}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses every row of r. Each row must have exactly three fields and
// a valid timestamp; the first offending row is reported as a *RowError.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &RowError{Line: perr.StartLine, Reason: perr.Err.Error()}
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(record) != FieldCount {
			return nil, &RowError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", FieldCount, len(record))}
		}
		if _, err := domain.ParseStamp(record[0]); err != nil {
			return nil, &RowError{Line: line, Reason: err.Error()}
		}
		rows = append(rows, Row{Stamp: record[0], Body: record[1], Tags: record[2]})
	}
	return rows, nil
}

// Entry converts a row back into its timestamp, body and tags
func (r Row) Entry() (domain.Stamp, string, []string, error) {
	s, err := domain.ParseStamp(r.Stamp)
	if err != nil {
		return domain.Stamp{}, "", nil, err
	}
	return s, r.Body, SplitTags(r.Tags), nil
}
