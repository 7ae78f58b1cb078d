package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email                    string    `gorm:"size:100;uniqueIndex;not null"`
	Username                 string    `gorm:"size:100;uniqueIndex;not null"`
	Telephone                string    `gorm:"size:100;uniqueIndex;not null"`
	Address                  string    `gorm:"size:300"`
	PasswordHash             string    `gorm:"size:255;not null"`
	Role                     string    `gorm:"size:50;not null"`
	IsVerified               bool      `gorm:"not null"`
	VerificationToken        *string   `gorm:"size:255;uniqueIndex"`
	VerificationTokenExpires *time.Time
	ResetToken               *string `gorm:"size:255;uniqueIndex"`
	ResetTokenExpires        *time.Time
	CartItems                []CartItem `gorm:"constraint:OnDelete:CASCADE"`
	Orders                   []Order    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u User) Roles() []string {
	if u.Role == "" {
		return []string{RoleCustomer}
	}
	return []string{u.Role}
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null;default:1"`
	CreatedAt time.Time
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity   int       `gorm:"not null"`
	Price      float64   `gorm:"not null"`
	Status     string    `gorm:"size:50;not null;default:pending"`
	PaymentID  string    `gorm:"size:255"`
	ReceiptURL string    `gorm:"size:1000"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:50;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductName   string    `gorm:"size:100;uniqueIndex;not null"`
	Description   string    `gorm:"type:text"`
	CurrentPrice  float64   `gorm:"not null"`
	PreviousPrice *float64
	InStock       int            `gorm:"not null"`
	FlashSale     bool           `gorm:"not null;index"`
	CategoryID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Category      Category       `gorm:"constraint:OnDelete:RESTRICT"`
	Images        []ProductImage `gorm:"constraint:OnDelete:CASCADE"`
	CartItems     []CartItem     `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	ImageURL  string    `gorm:"size:1000;not null"`
	CreatedAt time.Time
}

func (i *ProductImage) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	UserId       uuid.UUID
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

func (p Page[T]) Pages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}
