package services

import (
	"context"
	"fmt"

	"ayah/internal/cart"
	"ayah/internal/models"
	"ayah/internal/repositories"
)

// CheckoutPath is where a purchase sends the client.
const CheckoutPath = "/checkout"

// LessonView is a lesson rendered in one language.
type LessonView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Duration    string   `json:"duration,omitempty"`
	Level       string   `json:"level,omitempty"`
	Materials   []string `json:"materials,omitempty"`
}

// CatalogService handles business logic related to lessons.
type CatalogService struct {
	repo          repositories.LessonRepository
	showMaterials bool
}

// NewCatalogService creates a new CatalogService. Materials are only listed when showMaterials
// is set.
func NewCatalogService(repo repositories.LessonRepository, showMaterials bool) *CatalogService {
	return &CatalogService{
		repo:          repo,
		showMaterials: showMaterials,
	}
}

func (s *CatalogService) view(l models.Lesson, lang models.Lang) LessonView {
	v := LessonView{
		ID:          l.ID,
		Title:       l.Title(lang),
		Description: l.Description(lang),
		Price:       l.Price,
		Duration:    l.Duration,
		Level:       l.Level,
	}
	if s.showMaterials {
		v.Materials = l.Materials
	}
	return v
}

// ListLessons returns every lesson localized to lang.
func (s *CatalogService) ListLessons(ctx context.Context, lang models.Lang) ([]LessonView, error) {
	lessons, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	views := make([]LessonView, 0, len(lessons))
	for _, l := range lessons {
		views = append(views, s.view(l, lang))
	}
	return views, nil
}

// GetLesson returns one lesson localized to lang.
func (s *CatalogService) GetLesson(ctx context.Context, lang models.Lang, id string) (*LessonView, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*lesson, lang)
	return &v, nil
}

// Purchase puts one unit of the lesson in c under its localized title and returns the path the
// client should go to next.
func (s *CatalogService) Purchase(ctx context.Context, lang models.Lang, c *cart.Store, id string) (string, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	err = c.AddItem(models.CartItem{
		ID:       lesson.ID,
		Name:     lesson.Title(lang),
		Price:    lesson.Price,
		Quantity: 1,
		Type:     models.ItemTypeLesson,
	})
	if err != nil {
		return "", err
	}
	return CheckoutPath, nil
}
