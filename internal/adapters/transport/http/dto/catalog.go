package dto

type CategoryDTO struct {
	Name string `json:"name" validate:"required,max=50"`
}

type CreateProductDTO struct {
	ProductName   string   `json:"product_name" validate:"required,max=100"`
	Description   string   `json:"description" validate:"max=500"`
	CurrentPrice  float64  `json:"current_price" validate:"gte=0"`
	PreviousPrice *float64 `json:"previous_price" validate:"omitempty,gte=0"`
	InStock       int      `json:"in_stock" validate:"gte=0"`
	FlashSale     bool     `json:"flash_sale"`
	CategoryID    string   `json:"category_id" validate:"required,uuid"`
}

// UpdateProductDTO is a partial update; nil fields are left unchanged.
type UpdateProductDTO struct {
	ProductName   *string  `json:"product_name" validate:"omitempty,min=1,max=100"`
	Description   *string  `json:"description" validate:"omitempty,max=500"`
	CurrentPrice  *float64 `json:"current_price" validate:"omitempty,gte=0"`
	PreviousPrice *float64 `json:"previous_price" validate:"omitempty,gte=0"`
	InStock       *int     `json:"in_stock" validate:"omitempty,gte=0"`
	FlashSale     *bool    `json:"flash_sale"`
	CategoryID    *string  `json:"category_id" validate:"omitempty,uuid"`
}

type PageQuery struct {
	Page    int `form:"page" validate:"gte=0"`
	PerPage int `form:"per_page" validate:"gte=0,lte=100"`
}
