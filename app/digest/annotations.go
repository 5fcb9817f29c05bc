package digest

import (
	"log/slog"
)

// Persister stores annotation changes outside the session.
type Persister interface {
	SaveAnnotation(articleID string, annotation Annotation) error
}

// Annotations tracks saved/liked/read state per article for one session.
// It is not safe for concurrent use.
type Annotations struct {
	records   map[string]Annotation
	persister Persister
}

func NewAnnotations(persister Persister) *Annotations {
	return &Annotations{
		records:   make(map[string]Annotation),
		persister: persister,
	}
}

// Load replaces the current records, e.g. with previously persisted ones.
func (a *Annotations) Load(records map[string]Annotation) {
	a.records = make(map[string]Annotation, len(records))
	for id, record := range records {
		if !record.IsZero() {
			a.records[id] = record
		}
	}
}

func (a *Annotations) Get(articleID string) Annotation {
	return a.records[articleID]
}

func (a *Annotations) Len() int {
	return len(a.records)
}

func (a *Annotations) ToggleSaved(articleID string) (Annotation, Notification) {
	record := a.records[articleID]
	record.Saved = !record.Saved
	a.store(articleID, record)

	if record.Saved {
		return record, Success("Article saved")
	}
	return record, Success("Article removed from saved")
}

func (a *Annotations) ToggleLiked(articleID string) (Annotation, Notification) {
	record := a.records[articleID]
	record.Liked = !record.Liked
	a.store(articleID, record)

	if record.Liked {
		return record, Success("Article liked")
	}
	return record, Success("Article unliked")
}

func (a *Annotations) ToggleRead(articleID string) (Annotation, Notification) {
	record := a.records[articleID]
	record.Read = !record.Read
	a.store(articleID, record)

	if record.Read {
		return record, Success("Article marked as read")
	}
	return record, Success("Article marked as unread")
}

func (a *Annotations) store(articleID string, record Annotation) {
	if record.IsZero() {
		delete(a.records, articleID)
	} else {
		a.records[articleID] = record
	}

	if a.persister == nil {
		return
	}
	if err := a.persister.SaveAnnotation(articleID, record); err != nil {
		slog.Error("Failed to persist annotation", "article_id", articleID, "error", err)
	}
}
