package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/cache"
	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

const categoryListCacheKey = "categories:list"

// CategoryService manages ticket categories. The full list is read-through
// cached because every list and dashboard view needs it.
type CategoryService struct {
	categories repository.CategoryRepository
	cache      *cache.Client
	ttl        time.Duration
	logger     *zap.Logger
}

// NewCategoryService constructs the service. cache may be nil.
func NewCategoryService(categories repository.CategoryRepository, cache *cache.Client, ttl time.Duration, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, cache: cache, ttl: ttl, logger: orNop(logger)}
}

// CategoryInput carries create and update fields. Nil fields are unset.
type CategoryInput struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
}

// List returns every category ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	if s.cache.GetJSON(ctx, categoryListCacheKey, &cached) {
		return cached, nil
	}
	categories, err := s.categories.List(ctx, "name")
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, categoryListCacheKey, categories, s.ttl)
	return categories, nil
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "category")
	}
	return category, nil
}

// Create validates input, applies defaults and stores the category.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	input = normalizeCategoryInput(input)
	if input.Name == nil || *input.Name == "" {
		return nil, apperrors.NewFieldError("name", "name is required")
	}
	if err := validateCategoryColor(input.Color); err != nil {
		return nil, err
	}

	category := &domain.Category{
		Name:  *input.Name,
		Color: domain.DefaultCategoryColor,
		Icon:  domain.DefaultCategoryIcon,
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.Color != nil && *input.Color != "" {
		category.Color = *input.Color
	}
	if input.Icon != nil && *input.Icon != "" {
		category.Icon = *input.Icon
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, mapRepoError(err, "category")
	}
	s.invalidate(ctx)
	return category, nil
}

// Update applies a partial update.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	input = normalizeCategoryInput(input)
	if input.Name != nil && *input.Name == "" {
		return nil, apperrors.NewFieldError("name", "name cannot be empty")
	}
	if err := validateCategoryColor(input.Color); err != nil {
		return nil, err
	}
	if input.Color != nil && *input.Color == "" {
		input.Color = nil
	}
	if input.Icon != nil && *input.Icon == "" {
		input.Icon = nil
	}

	category, err := s.categories.Update(ctx, id, domain.CategoryPatch{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
	})
	if err != nil {
		return nil, mapRepoError(err, "category")
	}
	s.invalidate(ctx)
	return category, nil
}

// Delete removes a category. Tickets that referenced it become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return mapRepoError(err, "category")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, categoryListCacheKey)
}

func normalizeCategoryInput(input CategoryInput) CategoryInput {
	return CategoryInput{
		Name:        trimmedPtr(input.Name),
		Description: trimmedPtr(input.Description),
		Color:       trimmedPtr(input.Color),
		Icon:        trimmedPtr(input.Icon),
	}
}

func validateCategoryColor(color *string) error {
	if color == nil || *color == "" {
		return nil
	}
	if !domain.ValidColor(*color) {
		return apperrors.NewValidationError("color must have the form #RRGGBB", map[string]any{"field": "color", "value": *color})
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
