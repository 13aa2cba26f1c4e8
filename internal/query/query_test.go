package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarydek/diarydek/internal/domain"
)

func mustStamp(t *testing.T, raw string) domain.Stamp {
	t.Helper()
	s, err := domain.ParseStamp(raw)
	require.NoError(t, err)
	return s
}

// fixture: hiking (outdoors, fitness), book (no tags), run (fitness)
func fixture(t *testing.T) *domain.Snapshot {
	return &domain.Snapshot{
		Tags: []domain.Tag{
			{ID: "t1", Text: "outdoors"},
			{ID: "t2", Text: "fitness"},
		},
		Entries: []domain.Entry{
			{ID: "e1", Seq: 1, Stamp: mustStamp(t, "2024-01-03"), Body: "Went hiking"},
			{ID: "e2", Seq: 2, Stamp: mustStamp(t, "2024-01-02"), Body: "Read a book"},
			{ID: "e3", Seq: 3, Stamp: mustStamp(t, "2024-01-02 18:30:00.25"), Body: "Ran by the book shop"},
		},
		Associations: []domain.Association{
			{EntryID: "e1", TagID: "t1"},
			{EntryID: "e1", TagID: "t2"},
			{EntryID: "e3", TagID: "t2"},
		},
	}
}

func ids(listed []domain.Listed) []string {
	out := make([]string, len(listed))
	for i, l := range listed {
		out[i] = l.ID
	}
	return out
}

func TestMatch(t *testing.T) {
	since := mustStamp(t, "2024-01-02")
	sinceEvening := mustStamp(t, "2024-01-02 18:30:00")

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter keeps insertion order", Filter{}, []string{"e1", "e2", "e3"}},
		{"text", Filter{Text: "book"}, []string{"e2", "e3"}},
		{"text is case-sensitive", Filter{Text: "Book"}, nil},
		{"tag", Filter{Tags: []string{"outdoors"}}, []string{"e1"}},
		{"tag exact match", Filter{Tags: []string{"fit"}}, nil},
		{"text or tag", Filter{Text: "Read", Tags: []string{"outdoors"}}, []string{"e1", "e2"}},
		{"since excludes boundary", Filter{Since: &since}, []string{"e1", "e3"}},
		{"since applies to text match", Filter{Text: "book", Since: &since}, []string{"e3"}},
		{"since at second precision", Filter{Since: &sinceEvening}, []string{"e1"}},
		{"empty tag list is no filter", Filter{Tags: []string{}}, []string{"e1", "e2", "e3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(fixture(t), tt.filter)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestMatchCarriesTags(t *testing.T) {
	got, err := Match(fixture(t), Filter{Tags: []string{"fitness"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"outdoors", "fitness"}, got[0].Tags)
	assert.Equal(t, []string{"fitness"}, got[1].Tags)
}

func TestTooManyTagFilters(t *testing.T) {
	f := Filter{Tags: []string{"a", "b"}}
	assert.ErrorIs(t, f.Validate(), domain.ErrTooManyTagFilters)

	_, err := Match(fixture(t), f)
	assert.ErrorIs(t, err, domain.ErrTooManyTagFilters)
}
