package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/model"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/repo"
	"gorm.io/gorm"
)

var (
	errCategoryExists = customErrors.NewAlreadyExists("name", "Category already exists")
	errProductExists  = customErrors.NewAlreadyExists("product_name", "Product with this name already exists")
	errCategoryInUse  = customErrors.NewInvalidArgument("Category still has products")
)

type PostgresCatalogRepo struct {
	db *gorm.DB
}

func NewPostgresCatalogRepo(db *gorm.DB) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{db: db}
}

func (p *PostgresCatalogRepo) CreateCategory(ctx context.Context, c *model.Category) error {
	if err := p.db.WithContext(ctx).Create(c).Error; err != nil {
		if _, ok := uniqueViolation(err, "categories"); ok {
			return errCategoryExists
		}
		return customErrors.WrapInternal(err, "CreateCategory")
	}
	return nil
}

func (p *PostgresCatalogRepo) GetCategoryByID(ctx context.Context, id uuid.UUID) (model.Category, error) {
	var c model.Category
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&c)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Category{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Category{}, customErrors.WrapInternal(err, "GetCategoryByID")
	}
	return c, nil
}

func (p *PostgresCatalogRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := p.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListCategories")
	}
	return out, nil
}

func (p *PostgresCatalogRepo) UpdateCategory(ctx context.Context, c *model.Category) error {
	res := p.db.WithContext(ctx).Model(c).Update("name", c.Name)
	if err := res.Error; err != nil {
		if _, ok := uniqueViolation(err, "categories"); ok {
			return errCategoryExists
		}
		return customErrors.WrapInternal(err, "UpdateCategory")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (p *PostgresCatalogRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Product{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errCategoryInUse
		}
		res := tx.Delete(&model.Category{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, customErrors.ErrNotFound), errors.Is(err, errCategoryInUse):
		return err
	case foreignKeyViolation(err):
		return errCategoryInUse
	default:
		return customErrors.WrapInternal(err, "DeleteCategory")
	}
}

func (p *PostgresCatalogRepo) CreateProduct(ctx context.Context, pr *model.Product) error {
	if err := p.db.WithContext(ctx).Omit("Category", "Images", "CartItems").Create(pr).Error; err != nil {
		if _, ok := uniqueViolation(err, "products"); ok {
			return errProductExists
		}
		if foreignKeyViolation(err) {
			return customErrors.NewNotFound("Category not found")
		}
		return customErrors.WrapInternal(err, "CreateProduct")
	}
	return nil
}

func (p *PostgresCatalogRepo) products(ctx context.Context, f repo.ProductFilter) *gorm.DB {
	q := p.db.WithContext(ctx).Model(&model.Product{})
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.FlashSale != nil {
		q = q.Where("flash_sale = ?", *f.FlashSale)
	}
	return q
}

func (p *PostgresCatalogRepo) GetProductByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	var pr model.Product
	res := p.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Where("id = ?", id).
		First(&pr)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Product{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Product{}, customErrors.WrapInternal(err, "GetProductByID")
	}
	return pr, nil
}

func (p *PostgresCatalogRepo) ListProducts(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	var out []model.Product
	err := p.products(ctx, f).
		Preload("Category").
		Preload("Images").
		Order("created_at").
		Find(&out).Error
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListProducts")
	}
	return out, nil
}

func (p *PostgresCatalogRepo) PageProducts(ctx context.Context, f repo.ProductFilter, page, perPage int) (model.Page[model.Product], error) {
	out := model.Page[model.Product]{Page: page, PerPage: perPage}
	if err := p.products(ctx, f).Count(&out.Total).Error; err != nil {
		return out, customErrors.WrapInternal(err, "PageProducts")
	}
	err := p.products(ctx, f).
		Preload("Category").
		Preload("Images").
		Order("created_at").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&out.Items).Error
	if err != nil {
		return out, customErrors.WrapInternal(err, "PageProducts")
	}
	return out, nil
}

func (p *PostgresCatalogRepo) UpdateProduct(ctx context.Context, pr *model.Product) error {
	res := p.db.WithContext(ctx).
		Model(pr).
		Select("ProductName", "Description", "CurrentPrice", "PreviousPrice", "InStock", "FlashSale", "CategoryID").
		Updates(pr)
	if err := res.Error; err != nil {
		if _, ok := uniqueViolation(err, "products"); ok {
			return errProductExists
		}
		return customErrors.WrapInternal(err, "UpdateProduct")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (p *PostgresCatalogRepo) DeleteProduct(ctx context.Context, id uuid.UUID) ([]model.ProductImage, error) {
	var images []model.ProductImage
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Find(&images).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return images, nil
	case errors.Is(err, customErrors.ErrNotFound):
		return nil, err
	default:
		return nil, customErrors.WrapInternal(err, "DeleteProduct")
	}
}

func (p *PostgresCatalogRepo) CreateImage(ctx context.Context, img *model.ProductImage) error {
	if err := p.db.WithContext(ctx).Create(img).Error; err != nil {
		if foreignKeyViolation(err) {
			return customErrors.NewNotFound("Product not found")
		}
		return customErrors.WrapInternal(err, "CreateImage")
	}
	return nil
}

func (p *PostgresCatalogRepo) GetImageByID(ctx context.Context, id uuid.UUID) (model.ProductImage, error) {
	var img model.ProductImage
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&img)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.ProductImage{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.ProductImage{}, customErrors.WrapInternal(err, "GetImageByID")
	}
	return img, nil
}

func (p *PostgresCatalogRepo) ListImagesByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error) {
	var out []model.ProductImage
	if err := p.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at").Find(&out).Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListImagesByProduct")
	}
	return out, nil
}

func (p *PostgresCatalogRepo) DeleteImage(ctx context.Context, id uuid.UUID) error {
	res := p.db.WithContext(ctx).Delete(&model.ProductImage{}, "id = ?", id)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteImage")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}
