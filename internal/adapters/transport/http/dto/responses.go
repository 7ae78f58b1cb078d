package dto

import (
	"time"

	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/model"
)

type UserResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Telephone  string    `json:"telephone"`
	Address    string    `json:"address"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		Telephone:  u.Telephone,
		Address:    u.Address,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
}

func NewTokenResponse(p model.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(p.AccessTTL.Seconds()),
		UserID:       p.UserId.String(),
	}
}

type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCategoryResponse(c model.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID.String(), Name: c.Name, CreatedAt: c.CreatedAt}
}

type ImageResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

func NewImageResponse(i model.ProductImage) ImageResponse {
	return ImageResponse{
		ID:        i.ID.String(),
		ProductID: i.ProductID.String(),
		ImageURL:  i.ImageURL,
		CreatedAt: i.CreatedAt,
	}
}

type ProductResponse struct {
	ID            string          `json:"id"`
	ProductName   string          `json:"product_name"`
	Description   string          `json:"description"`
	CurrentPrice  float64         `json:"current_price"`
	PreviousPrice *float64        `json:"previous_price"`
	InStock       int             `json:"in_stock"`
	FlashSale     bool            `json:"flash_sale"`
	CategoryID    string          `json:"category_id"`
	Category      string          `json:"category,omitempty"`
	Images        []ImageResponse `json:"images"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func NewProductResponse(p model.Product) ProductResponse {
	images := make([]ImageResponse, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, NewImageResponse(img))
	}
	return ProductResponse{
		ID:            p.ID.String(),
		ProductName:   p.ProductName,
		Description:   p.Description,
		CurrentPrice:  p.CurrentPrice,
		PreviousPrice: p.PreviousPrice,
		InStock:       p.InStock,
		FlashSale:     p.FlashSale,
		CategoryID:    p.CategoryID.String(),
		Category:      p.Category.Name,
		Images:        images,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func NewProductList(ps []model.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProductResponse(p))
	}
	return out
}

type ProductPageResponse struct {
	Total    int64             `json:"total"`
	Pages    int               `json:"pages"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
	Products []ProductResponse `json:"products"`
}

func NewProductPageResponse(p model.Page[model.Product]) ProductPageResponse {
	return ProductPageResponse{
		Total:    p.Total,
		Pages:    p.Pages(),
		Page:     p.Page,
		PerPage:  p.PerPage,
		Products: NewProductList(p.Items),
	}
}
