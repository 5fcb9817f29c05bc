package digest

import (
	"errors"
	"testing"
)

type mockPersister struct {
	saved map[string]Annotation
	err   error
}

func (m *mockPersister) SaveAnnotation(articleID string, annotation Annotation) error {
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = make(map[string]Annotation)
	}
	m.saved[articleID] = annotation
	return nil
}

func TestAnnotations_ToggleMessages(t *testing.T) {
	annotations := NewAnnotations(nil)

	tests := []struct {
		name   string
		toggle func(string) (Annotation, Notification)
		on     string
		off    string
	}{
		{"saved", annotations.ToggleSaved, "Article saved", "Article removed from saved"},
		{"liked", annotations.ToggleLiked, "Article liked", "Article unliked"},
		{"read", annotations.ToggleRead, "Article marked as read", "Article marked as unread"},
	}

	for _, tt := range tests {
		_, notification := tt.toggle("a1")
		if notification.Message != tt.on {
			t.Errorf("%s: expected '%s', got '%s'", tt.name, tt.on, notification.Message)
		}
		if notification.Level != NotificationSuccess {
			t.Errorf("%s: expected success level, got %s", tt.name, notification.Level)
		}

		_, notification = tt.toggle("a1")
		if notification.Message != tt.off {
			t.Errorf("%s: expected '%s', got '%s'", tt.name, tt.off, notification.Message)
		}
	}
}

func TestAnnotations_DoubleToggleRestores(t *testing.T) {
	annotations := NewAnnotations(nil)
	annotations.ToggleLiked("keep")

	before := annotations.Get("keep")

	annotations.ToggleSaved("keep")
	annotations.ToggleSaved("keep")
	annotations.ToggleRead("keep")
	annotations.ToggleRead("keep")
	annotations.ToggleLiked("keep")
	annotations.ToggleLiked("keep")

	if annotations.Get("keep") != before {
		t.Errorf("Expected %+v, got %+v", before, annotations.Get("keep"))
	}
}

func TestAnnotations_IndependentDimensions(t *testing.T) {
	annotations := NewAnnotations(nil)

	annotations.ToggleSaved("a")
	annotations.ToggleLiked("a")
	record, _ := annotations.ToggleRead("a")

	if !record.Saved || !record.Liked || !record.Read {
		t.Errorf("Expected all flags set, got %+v", record)
	}

	record, _ = annotations.ToggleLiked("a")
	if !record.Saved || record.Liked || !record.Read {
		t.Errorf("Expected only liked cleared, got %+v", record)
	}
}

func TestAnnotations_ZeroRecordsAreDropped(t *testing.T) {
	annotations := NewAnnotations(nil)

	annotations.ToggleSaved("a")
	annotations.ToggleSaved("a")

	if annotations.Len() != 0 {
		t.Errorf("Expected no records, got %d", annotations.Len())
	}
}

func TestAnnotations_Persists(t *testing.T) {
	persister := &mockPersister{}
	annotations := NewAnnotations(persister)

	annotations.ToggleSaved("a")
	annotations.ToggleRead("a")

	if got := persister.saved["a"]; !got.Saved || !got.Read {
		t.Errorf("Expected persisted saved+read, got %+v", got)
	}
}

func TestAnnotations_PersistFailureKeepsToggle(t *testing.T) {
	persister := &mockPersister{err: errors.New("disk full")}
	annotations := NewAnnotations(persister)

	record, notification := annotations.ToggleSaved("a")

	if !record.Saved || !annotations.Get("a").Saved {
		t.Error("Expected toggle to apply despite persistence failure")
	}
	if notification.Message != "Article saved" {
		t.Errorf("Expected 'Article saved', got '%s'", notification.Message)
	}
}

func TestAnnotations_Load(t *testing.T) {
	annotations := NewAnnotations(nil)
	annotations.Load(map[string]Annotation{
		"a": {Saved: true},
		"b": {},
	})

	if !annotations.Get("a").Saved {
		t.Error("Expected 'a' to be saved")
	}
	if annotations.Len() != 1 {
		t.Errorf("Expected 1 record, got %d", annotations.Len())
	}
}
