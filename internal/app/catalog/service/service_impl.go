package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/storage"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/transport/http/dto"
	"github.com/mohamedaliSwe/mimi-style/internal/app/validation"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/model"
	repo "github.com/mohamedaliSwe/mimi-style/internal/domain/store/repo"
	"go.uber.org/zap"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
)

var (
	errInvalidCategory  = customErrors.NewInvalidArgument("Invalid category")
	errCategoryNotFound = customErrors.NewNotFound("Category not found")
	errProductNotFound  = customErrors.NewNotFound("Product not found")
	errImageNotFound    = customErrors.NewNotFound("Image not found")
)

type Service interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, in dto.CategoryDTO) (model.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in dto.CategoryDTO) (model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CategoryProducts(ctx context.Context, id uuid.UUID, q dto.PageQuery) (model.Page[model.Product], error)

	ListProducts(ctx context.Context) ([]model.Product, error)
	FlashSaleProducts(ctx context.Context) ([]model.Product, error)
	ProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	CreateProduct(ctx context.Context, in dto.CreateProductDTO) (model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in dto.UpdateProductDTO) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	UploadImage(ctx context.Context, productID uuid.UUID, filename string, r io.Reader) (model.ProductImage, error)
	GetImage(ctx context.Context, id uuid.UUID) (model.ProductImage, error)
	ProductImages(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	categories repo.CategoryRepo
	products   repo.ProductRepo
	images     repo.ImageRepo
	files      storage.FileStore
	v          *validator.Validate
	log        *zap.Logger
}

func New(
	cr repo.CategoryRepo,
	pr repo.ProductRepo,
	ir repo.ImageRepo,
	files storage.FileStore,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &catalogService{categories: cr, products: pr, images: ir, files: files, v: v, log: log}
}

// notFoundAs swaps a repository NotFound for a client-facing error.
func notFoundAs(err, with error) error {
	if errors.Is(err, customErrors.ErrNotFound) {
		return with
	}
	return err
}

/* ───────────────────────────── categories ───────────────────────────── */

func (c *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return c.categories.ListCategories(ctx)
}

func categoryName(v *validator.Validate, in dto.CategoryDTO) (string, error) {
	in.Name = strings.ToLower(strings.TrimSpace(in.Name))
	if err := validation.Struct(v, in); err != nil {
		return "", err
	}
	return in.Name, nil
}

func (c *catalogService) CreateCategory(ctx context.Context, in dto.CategoryDTO) (model.Category, error) {
	name, err := categoryName(c.v, in)
	if err != nil {
		return model.Category{}, err
	}

	cat := model.Category{Name: name}
	if err := c.categories.CreateCategory(ctx, &cat); err != nil {
		return model.Category{}, err
	}
	return cat, nil
}

func (c *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error) {
	cat, err := c.categories.GetCategoryByID(ctx, id)
	return cat, notFoundAs(err, errInvalidCategory)
}

func (c *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in dto.CategoryDTO) (model.Category, error) {
	cat, err := c.GetCategory(ctx, id)
	if err != nil {
		return model.Category{}, err
	}
	if cat.Name, err = categoryName(c.v, in); err != nil {
		return model.Category{}, err
	}

	if err := c.categories.UpdateCategory(ctx, &cat); err != nil {
		return model.Category{}, notFoundAs(err, errInvalidCategory)
	}
	return cat, nil
}

func (c *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return notFoundAs(c.categories.DeleteCategory(ctx, id), errInvalidCategory)
}

func (c *catalogService) CategoryProducts(ctx context.Context, id uuid.UUID, q dto.PageQuery) (model.Page[model.Product], error) {
	if err := validation.Struct(c.v, q); err != nil {
		return model.Page[model.Product]{}, err
	}
	if _, err := c.GetCategory(ctx, id); err != nil {
		return model.Page[model.Product]{}, err
	}

	if q.Page == 0 {
		q.Page = defaultPage
	}
	if q.PerPage == 0 {
		q.PerPage = defaultPerPage
	}
	return c.products.PageProducts(ctx, repo.ProductFilter{CategoryID: &id}, q.Page, q.PerPage)
}

/* ───────────────────────────── products ───────────────────────────── */

func (c *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return c.products.ListProducts(ctx, repo.ProductFilter{})
}

func (c *catalogService) FlashSaleProducts(ctx context.Context) ([]model.Product, error) {
	flash := true
	return c.products.ListProducts(ctx, repo.ProductFilter{FlashSale: &flash})
}

func (c *catalogService) ProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	if _, err := c.categories.GetCategoryByID(ctx, categoryID); err != nil {
		return nil, notFoundAs(err, errCategoryNotFound)
	}
	return c.products.ListProducts(ctx, repo.ProductFilter{CategoryID: &categoryID})
}

func (c *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	p, err := c.products.GetProductByID(ctx, id)
	return p, notFoundAs(err, errProductNotFound)
}

func (c *catalogService) category(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errCategoryNotFound
	}
	if _, err := c.categories.GetCategoryByID(ctx, id); err != nil {
		return uuid.Nil, notFoundAs(err, errCategoryNotFound)
	}
	return id, nil
}

func (c *catalogService) CreateProduct(ctx context.Context, in dto.CreateProductDTO) (model.Product, error) {
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(c.v, in); err != nil {
		return model.Product{}, err
	}

	categoryID, err := c.category(ctx, in.CategoryID)
	if err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		ProductName:   in.ProductName,
		Description:   in.Description,
		CurrentPrice:  in.CurrentPrice,
		PreviousPrice: in.PreviousPrice,
		InStock:       in.InStock,
		FlashSale:     in.FlashSale,
		CategoryID:    categoryID,
	}
	if err := c.products.CreateProduct(ctx, &p); err != nil {
		return model.Product{}, err
	}
	return c.GetProduct(ctx, p.ID)
}

func (c *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in dto.UpdateProductDTO) (model.Product, error) {
	if err := validation.Struct(c.v, in); err != nil {
		return model.Product{}, err
	}

	p, err := c.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	if in.ProductName != nil {
		name := strings.TrimSpace(*in.ProductName)
		if name == "" {
			return model.Product{}, customErrors.NewMissingField("product_name")
		}
		p.ProductName = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.CurrentPrice != nil {
		p.CurrentPrice = *in.CurrentPrice
	}
	if in.PreviousPrice != nil {
		p.PreviousPrice = in.PreviousPrice
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if in.FlashSale != nil {
		p.FlashSale = *in.FlashSale
	}
	if in.CategoryID != nil {
		if p.CategoryID, err = c.category(ctx, *in.CategoryID); err != nil {
			return model.Product{}, err
		}
	}

	if err := c.products.UpdateProduct(ctx, &p); err != nil {
		return model.Product{}, notFoundAs(err, errProductNotFound)
	}
	return c.GetProduct(ctx, id)
}

// DeleteProduct removes the product rows first and then its stored files.
func (c *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	images, err := c.products.DeleteProduct(ctx, id)
	if err != nil {
		return notFoundAs(err, errProductNotFound)
	}
	for _, img := range images {
		c.removeFile(ctx, img.ImageURL)
	}
	return nil
}

/* ───────────────────────────── images ───────────────────────────── */

func (c *catalogService) UploadImage(ctx context.Context, productID uuid.UUID, filename string, r io.Reader) (model.ProductImage, error) {
	if _, err := c.products.GetProductByID(ctx, productID); err != nil {
		return model.ProductImage{}, notFoundAs(err, errProductNotFound)
	}

	stored, err := c.files.Save(ctx, filename, r, storage.ImageExtensions)
	if err != nil {
		return model.ProductImage{}, err
	}

	img := model.ProductImage{ProductID: productID, ImageURL: stored}
	if err := c.images.CreateImage(ctx, &img); err != nil {
		c.removeFile(ctx, stored)
		return model.ProductImage{}, err
	}
	return img, nil
}

func (c *catalogService) GetImage(ctx context.Context, id uuid.UUID) (model.ProductImage, error) {
	img, err := c.images.GetImageByID(ctx, id)
	return img, notFoundAs(err, errImageNotFound)
}

func (c *catalogService) ProductImages(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error) {
	if _, err := c.products.GetProductByID(ctx, productID); err != nil {
		return nil, notFoundAs(err, errProductNotFound)
	}
	return c.images.ListImagesByProduct(ctx, productID)
}

func (c *catalogService) DeleteImage(ctx context.Context, id uuid.UUID) error {
	img, err := c.GetImage(ctx, id)
	if err != nil {
		return err
	}
	if err := c.images.DeleteImage(ctx, id); err != nil {
		return notFoundAs(err, errImageNotFound)
	}
	c.removeFile(ctx, img.ImageURL)
	return nil
}

func (c *catalogService) removeFile(ctx context.Context, path string) {
	if err := c.files.Delete(ctx, path); err != nil {
		c.log.Warn("delete stored file", zap.String("path", path), zap.Error(err))
	}
}
