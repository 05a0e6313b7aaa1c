package repositories

import (
	"context"
	"errors"
	"time"

	"furnitureshop/internal/apperr"
	"furnitureshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) GetAll(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	var categories []models.Category
	q := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&categories).Error; err != nil {
		return nil, storageErr(err, "list categories")
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category", id)
		}
		return nil, storageErr(err, "get category")
	}
	return &category, nil
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict(err, "category %q already exists", category.Name)
		}
		return storageErr(err, "create category")
	}
	return nil
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves products, newest first.
func (r *GORMProductRepository) GetAll(ctx context.Context, availableOnly bool) ([]models.Product, error) {
	var products []models.Product
	q := r.db.WithContext(ctx).Preload("Category").Order("created_at DESC")
	if availableOnly {
		q = q.Where("is_available = ?", true)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, storageErr(err, "list products")
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", id)
		}
		return nil, storageErr(err, "get product")
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperr.Validation("category %s does not exist", product.CategoryID)
		}
		return storageErr(err, "create product")
	}
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", product.CategoryID).Error; err != nil {
		return storageErr(err, "get product category")
	}
	product.Category = &category
	return nil
}

// Update overwrites the mutable fields of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Product{ID: product.ID}).
		Select("category_id", "name", "description", "price", "stock", "is_available", "updated_at").
		Updates(product)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return apperr.Validation("category %s does not exist", product.CategoryID)
		}
		return storageErr(res.Error, "update product")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product", product.ID)
	}
	return nil
}

// Delete removes a product and any cart lines pointing at it. Products
// referenced by an order item are protected; the foreign key on
// order_items catches a reference created concurrently with the check.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product", id)
			}
			return err
		}

		var references int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&references).Error; err != nil {
			return err
		}
		if references > 0 {
			return apperr.DeletionProtected("product", id)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return apperr.DeletionProtected("product", id)
			}
			return err
		}
		return nil
	})
	return storageErr(err, "delete product")
}
