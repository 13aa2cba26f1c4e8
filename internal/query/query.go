// Package query evaluates listing filters over a snapshot of the journal.
package query

import (
	"fmt"
	"strings"

	"github.com/diarydek/diarydek/internal/domain"
)

// Filter restricts a listing. The zero value matches everything.
type Filter struct {
	// Text must occur literally in the entry body
	Text string
	// Tags holds at most one tag the entry must carry
	Tags []string
	// Since, if set, is an exclusive lower bound on the entry stamp
	Since *domain.Stamp
}

// Validate rejects filters that cannot be evaluated
func (f Filter) Validate() error {
	if len(f.Tags) > 1 {
		return fmt.Errorf("%w, but got: %v", domain.ErrTooManyTagFilters, f.Tags)
	}
	return nil
}

func (f Filter) tag() string {
	if len(f.Tags) == 1 {
		return f.Tags[0]
	}
	return ""
}

// Match returns the entries of snap selected by f, in snapshot order.
//
// An entry is selected when no text or tag is given, when its body contains
// the text, or when one of its tags equals the tag. Independently of that,
// a set Since drops every entry not strictly later than it.
func Match(snap *domain.Snapshot, f Filter) ([]domain.Listed, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	tag := f.tag()
	byEntry := snap.EntryTags()

	var out []domain.Listed
	for _, e := range snap.Entries {
		tags := byEntry[e.ID]
		if !selected(e, tags, f.Text, tag) {
			continue
		}
		if f.Since != nil && !e.Stamp.After(*f.Since) {
			continue
		}
		out = append(out, domain.Listed{Entry: e, Tags: tags})
	}
	return out, nil
}

func selected(e domain.Entry, tags []string, text, tag string) bool {
	if text == "" && tag == "" {
		return true
	}
	if text != "" && strings.Contains(e.Body, text) {
		return true
	}
	if tag != "" {
		for _, t := range tags {
			if t == tag {
				return true
			}
		}
	}
	return false
}
