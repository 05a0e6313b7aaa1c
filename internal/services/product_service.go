package services

import (
	"context"
	"strings"
	"time"

	"furnitureshop/internal/apperr"
	"furnitureshop/internal/models"
	"furnitureshop/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo    repositories.ProductRepository
	timeout time.Duration
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, timeout time.Duration) *ProductService {
	return &ProductService{
		repo:    repo,
		timeout: timeout,
	}
}

// GetAllProducts retrieves the products currently offered for sale.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.GetAll(ctx, true)
}

// GetProductByID retrieves a product offered for sale. Unavailable products
// are reported as not found.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, apperr.NotFound("product", id)
	}
	return product, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Create(ctx, product)
}

// UpdateProduct validates and overwrites an existing product. Order items
// keep the price they were placed at.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}
	stored, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	*product = *stored
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Delete(ctx, id)
}

func validateProduct(p *models.Product) error {
	fields := map[string]string{}
	if strings.TrimSpace(p.Name) == "" {
		fields["Name"] = "name is required"
	}
	if p.CategoryID == "" {
		fields["CategoryID"] = "category_id is required"
	}
	if !p.Price.IsPositive() {
		fields["Price"] = "price must be greater than zero"
	} else if p.Price.GreaterThan(models.MaxMoney) {
		fields["Price"] = "price must be at most " + models.MaxMoney.StringFixed(2)
	} else if !p.Price.Equal(p.Price.Round(2)) {
		fields["Price"] = "price must have at most two decimal places"
	}
	if p.Stock < 0 {
		fields["Stock"] = "stock cannot be negative"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}
