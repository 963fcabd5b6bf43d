package services_test

import (
	"context"
	"testing"

	"ayah/internal/cart"
	"ayah/internal/models"
	"ayah/internal/repositories"
	"ayah/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLessonRepository is a mock implementation of repositories.LessonRepository
type MockLessonRepository struct {
	mock.Mock
}

func (m *MockLessonRepository) GetAll(ctx context.Context) ([]models.Lesson, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Lesson), args.Error(1)
}

func (m *MockLessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

var juzAmma = models.Lesson{
	ID:            "juz-amma",
	TitleEn:       "Juz' Amma",
	TitleAr:       "جزء عمّ",
	DescriptionEn: "Memorize Juz' Amma",
	DescriptionAr: "حفظ جزء عمّ",
	Price:         60,
	Duration:      "12 weeks",
	Materials:     []string{"workbook.pdf"},
}

func TestCatalogService_ListLessons(t *testing.T) {
	mockRepo := new(MockLessonRepository)
	service := services.NewCatalogService(mockRepo, false)

	mockRepo.On("GetAll", mock.Anything).Return([]models.Lesson{juzAmma}, nil).Twice()

	views, err := service.ListLessons(context.Background(), models.LangEnglish)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Juz' Amma", views[0].Title)
	assert.Equal(t, "Memorize Juz' Amma", views[0].Description)
	assert.Nil(t, views[0].Materials)

	views, err = service.ListLessons(context.Background(), models.LangArabic)
	require.NoError(t, err)
	assert.Equal(t, "جزء عمّ", views[0].Title)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_GetLessonShowsMaterialsWhenEnabled(t *testing.T) {
	mockRepo := new(MockLessonRepository)
	service := services.NewCatalogService(mockRepo, true)

	mockRepo.On("GetByID", mock.Anything, "juz-amma").Return(&juzAmma, nil).Once()
	mockRepo.On("GetByID", mock.Anything, "missing").Return(nil, repositories.ErrLessonNotFound).Once()

	view, err := service.GetLesson(context.Background(), models.LangEnglish, "juz-amma")
	require.NoError(t, err)
	assert.Equal(t, []string{"workbook.pdf"}, view.Materials)

	_, err = service.GetLesson(context.Background(), models.LangEnglish, "missing")
	assert.ErrorIs(t, err, repositories.ErrLessonNotFound)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_Purchase(t *testing.T) {
	service := services.NewCatalogService(repositories.NewStaticLessonRepository([]models.Lesson{juzAmma}), false)
	c := cart.NewStore()

	redirect, err := service.Purchase(context.Background(), models.LangArabic, c, "juz-amma")
	require.NoError(t, err)
	assert.Equal(t, services.CheckoutPath, redirect)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "جزء عمّ", items[0].Name)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, models.ItemTypeLesson, items[0].Type)
	assert.Equal(t, "60", c.TotalPrice().String())

	_, err = service.Purchase(context.Background(), models.LangArabic, c, "juz-amma")
	require.NoError(t, err)
	assert.Equal(t, 2, c.TotalItems())

	_, err = service.Purchase(context.Background(), models.LangEnglish, c, "nope")
	assert.ErrorIs(t, err, repositories.ErrLessonNotFound)

	c.Lock()
	_, err = service.Purchase(context.Background(), models.LangEnglish, c, "juz-amma")
	assert.ErrorIs(t, err, cart.ErrCartLocked)
}
