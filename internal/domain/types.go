package domain

// Entry is one journal record
type Entry struct {
	ID    string `json:"id"`
	Seq   int64  `json:"seq"`
	Stamp Stamp  `json:"stamp"`
	Body  string `json:"body"`
}

// Tag is a deduplicated label attachable to any number of entries
type Tag struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Association links one entry to one tag
type Association struct {
	EntryID string `json:"entry_id"`
	TagID   string `json:"tag_id"`
}

// TagCount is a tag together with the number of entries it labels
type TagCount struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// Listed is an entry with the texts of its tags, as returned by listing
type Listed struct {
	Entry
	Tags []string `json:"tags,omitempty"`
}

// Snapshot is a full read of the three tables, in storage order
type Snapshot struct {
	Tags         []Tag
	Entries      []Entry
	Associations []Association
}

// TagText returns a lookup from tag ID to tag text
func (s *Snapshot) TagText() map[string]string {
	m := make(map[string]string, len(s.Tags))
	for _, t := range s.Tags {
		m[t.ID] = t.Text
	}
	return m
}

// EntryTags groups tag texts by entry ID, keeping association order
func (s *Snapshot) EntryTags() map[string][]string {
	names := s.TagText()
	m := make(map[string][]string)
	for _, a := range s.Associations {
		m[a.EntryID] = append(m[a.EntryID], names[a.TagID])
	}
	return m
}
