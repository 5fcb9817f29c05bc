package database

import (
	"fmt"

	"github.com/lysyi3m/news-digest/app/digest"
)

// AnnotationRepository stores per-user article annotations
type AnnotationRepository struct {
	db *DB
}

func NewAnnotationRepository(db *DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

// LoadAnnotations returns every non-empty annotation recorded for the user, keyed by article ID
func (r *AnnotationRepository) LoadAnnotations(userID string) (map[string]digest.Annotation, error) {
	rows, err := r.db.Query(`
		SELECT article_id, saved, liked, read
		FROM annotations
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotations: %w", err)
	}
	defer rows.Close()

	annotations := make(map[string]digest.Annotation)
	for rows.Next() {
		var articleID string
		var annotation digest.Annotation
		if err := rows.Scan(&articleID, &annotation.Saved, &annotation.Liked, &annotation.Read); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		if !annotation.IsZero() {
			annotations[articleID] = annotation
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate annotations: %w", err)
	}

	return annotations, nil
}

// SaveAnnotation upserts the record, or removes it once every flag is cleared
func (r *AnnotationRepository) SaveAnnotation(userID, articleID string, annotation digest.Annotation) error {
	if annotation.IsZero() {
		if _, err := r.db.Exec(`DELETE FROM annotations WHERE user_id = ? AND article_id = ?`, userID, articleID); err != nil {
			return fmt.Errorf("failed to delete annotation: %w", err)
		}
		return nil
	}

	_, err := r.db.Exec(`
		INSERT INTO annotations (user_id, article_id, saved, liked, read, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, article_id) DO UPDATE SET
			saved = excluded.saved,
			liked = excluded.liked,
			read = excluded.read,
			updated_at = excluded.updated_at
	`, userID, articleID, annotation.Saved, annotation.Liked, annotation.Read)
	if err != nil {
		return fmt.Errorf("failed to upsert annotation: %w", err)
	}

	return nil
}
