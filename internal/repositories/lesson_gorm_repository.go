package repositories

import (
	"context"
	"errors"
	"fmt"

	"ayah/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMLessonRepository reads the catalog from the database. The table is written only by Seed
// at startup.
type GORMLessonRepository struct {
	db *gorm.DB
}

// NewGORMLessonRepository creates a new instance of GORMLessonRepository.
func NewGORMLessonRepository(db *gorm.DB) *GORMLessonRepository {
	return &GORMLessonRepository{
		db: db,
	}
}

// Seed upserts the configured catalog.
func (r *GORMLessonRepository) Seed(ctx context.Context, lessons []models.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&lessons).Error
	if err != nil {
		return fmt.Errorf("failed to seed lessons: %w", err)
	}
	return nil
}

// GetAll retrieves all lessons ordered by id.
func (r *GORMLessonRepository) GetAll(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := r.db.WithContext(ctx).Order("id").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to get all lessons: %w", err)
	}
	return lessons, nil
}

// GetByID retrieves a single lesson.
func (r *GORMLessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson by ID %s: %w", id, err)
	}
	return &lesson, nil
}
