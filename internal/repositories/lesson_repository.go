package repositories

import (
	"context"

	"ayah/internal/models"
)

// LessonRepository gives read access to the lesson catalog.
type LessonRepository interface {
	GetAll(ctx context.Context) ([]models.Lesson, error)
	GetByID(ctx context.Context, id string) (*models.Lesson, error)
}
