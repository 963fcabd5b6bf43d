package repositories

import (
	"context"

	"ayah/internal/models"
)

// StaticLessonRepository serves the compiled-in catalog.
type StaticLessonRepository struct {
	lessons []models.Lesson
	byID    map[string]int
}

// NewStaticLessonRepository copies lessons; later duplicates of an id are ignored.
func NewStaticLessonRepository(lessons []models.Lesson) *StaticLessonRepository {
	r := &StaticLessonRepository{
		lessons: make([]models.Lesson, 0, len(lessons)),
		byID:    make(map[string]int, len(lessons)),
	}
	for _, l := range lessons {
		if _, dup := r.byID[l.ID]; dup {
			continue
		}
		r.byID[l.ID] = len(r.lessons)
		r.lessons = append(r.lessons, l)
	}
	return r
}

// GetAll returns the catalog in declaration order.
func (r *StaticLessonRepository) GetAll(_ context.Context) ([]models.Lesson, error) {
	out := make([]models.Lesson, len(r.lessons))
	copy(out, r.lessons)
	return out, nil
}

// GetByID returns a lesson by its id.
func (r *StaticLessonRepository) GetByID(_ context.Context, id string) (*models.Lesson, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, ErrLessonNotFound
	}
	lesson := r.lessons[i]
	return &lesson, nil
}
