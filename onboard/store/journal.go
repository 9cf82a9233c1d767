package store

import (
	"time"

	"github.com/asdine/storm/v3"

	. "github.com/CodedInternet/gobraille/onboard/errors"
)

// RenderRecord is one entry in the render history.
type RenderRecord struct {
	ID          int    `storm:"increment"` // pk
	Text        string `json:"text"`
	Target      string `json:"target"`
	Transitions string `json:"transitions"`
	Line        string `json:"line,omitempty"`
	Sent        bool   `json:"sent"`
	Acked       bool   `json:"acked"`
	// characters the transcoder could not handle and glyphs without a code
	DroppedChars  int       `json:"dropped_chars"`
	DroppedGlyphs int       `json:"dropped_glyphs"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `storm:"index" json:"created_at"`
}

// Journal keeps the render history in the device database.
type Journal struct {
	db *storm.DB
}

func NewJournal(db *storm.DB) (*Journal, error) {
	if err := db.Init(&RenderRecord{}); err != nil {
		return nil, Wrap(err, "unable to init render journal")
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Record(rec *RenderRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return j.db.Save(rec)
}

// Recent returns up to n records, newest first.
func (j *Journal) Recent(n int) (recs []RenderRecord, err error) {
	if n <= 0 {
		return []RenderRecord{}, nil
	}
	err = j.db.All(&recs, storm.Limit(n), storm.Reverse())
	if err == storm.ErrNotFound {
		return []RenderRecord{}, nil
	}
	return
}
