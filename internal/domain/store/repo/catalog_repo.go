package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/model"
)

type CategoryRepo interface {
	CreateCategory(ctx context.Context, c *model.Category) error
	GetCategoryByID(ctx context.Context, id uuid.UUID) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type ProductFilter struct {
	CategoryID *uuid.UUID
	FlashSale  *bool
}

type ProductRepo interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, error)
	PageProducts(ctx context.Context, f ProductFilter, page, perPage int) (model.Page[model.Product], error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	// DeleteProduct removes the product with its images and returns the
	// deleted image rows so their files can be cleaned up.
	DeleteProduct(ctx context.Context, id uuid.UUID) ([]model.ProductImage, error)
}

type ImageRepo interface {
	CreateImage(ctx context.Context, img *model.ProductImage) error
	GetImageByID(ctx context.Context, id uuid.UUID) (model.ProductImage, error)
	ListImagesByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
}
