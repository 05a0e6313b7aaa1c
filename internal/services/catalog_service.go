package services

import (
	"context"
	"strings"
	"time"

	"furnitureshop/internal/apperr"
	"furnitureshop/internal/models"
	"furnitureshop/internal/repositories"
)

// CatalogService exposes the product categories.
type CatalogService struct {
	repo    repositories.CategoryRepository
	timeout time.Duration
}

func NewCatalogService(repo repositories.CategoryRepository, timeout time.Duration) *CatalogService {
	return &CatalogService{repo: repo, timeout: timeout}
}

// ListCategories returns the active categories ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.GetAll(ctx, true)
}

// GetCategory returns an active category; inactive ones are not found.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, apperr.NotFound("category", id)
	}
	return category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return apperr.ValidationFields(map[string]string{"Name": "name is required"})
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Create(ctx, category)
}
