package transport

import (
	"fmt"

	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/util"
)

type CreateProductRequest struct {
	Title   string   `json:"title"   validate:"required,max=120"`
	Content *string  `json:"content"`
	Price   *float64 `json:"price"   validate:"omitempty,price"`
	Public  *bool    `json:"public"`
}

// UpdateProductRequest serves both PUT and PATCH. PUT additionally requires a title.
type UpdateProductRequest struct {
	Title   *string  `json:"title"   validate:"omitempty,min=1,max=120"`
	Content *string  `json:"content"`
	Price   *float64 `json:"price"   validate:"omitempty,price"`
	Public  *bool    `json:"public"`
}

type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email,max=254"`
	Username  string `json:"username"   validate:"required,min=1,max=30"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name"  validate:"max=150"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserPublic struct {
	ID            uint   `json:"id"`
	Username      string `json:"username"`
	TotalProducts int64  `json:"total_products"`
}

type ProductResponse struct {
	ID         uint        `json:"id"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Price      string      `json:"price"`
	Public     bool        `json:"public"`
	SalePrice  string      `json:"sale_price"`
	MyDiscount string      `json:"my_discount"`
	Owner      *UserPublic `json:"owner"`
}

type ProductListResponse struct {
	Data []ProductResponse `json:"data"`
	Meta util.PageMeta     `json:"meta"`
}

type DeleteProductResponse struct {
	Message        string          `json:"message"`
	DeletedProduct ProductResponse `json:"deleted_product"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// NewProductResponse renders p. counts maps owner ids to their product totals.
func NewProductResponse(p *models.Product, counts map[uint]int64) ProductResponse {
	out := ProductResponse{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		Price:      fmt.Sprintf("%.2f", p.Price),
		Public:     p.Public,
		SalePrice:  p.SalePrice(),
		MyDiscount: p.Discount(),
	}
	if p.User != nil {
		out.Owner = &UserPublic{
			ID:            p.User.ID,
			Username:      p.User.Username,
			TotalProducts: counts[p.User.ID],
		}
	}
	return out
}

func NewProductList(items []models.Product, counts map[uint]int64, meta util.PageMeta) ProductListResponse {
	data := make([]ProductResponse, 0, len(items))
	for i := range items {
		data = append(data, NewProductResponse(&items[i], counts))
	}
	return ProductListResponse{Data: data, Meta: meta}
}

// OwnerIDs collects the distinct owner ids of items.
func OwnerIDs(items []models.Product) []uint {
	seen := make(map[uint]struct{})
	ids := make([]uint, 0)
	for _, p := range items {
		if p.UserID == nil {
			continue
		}
		if _, ok := seen[*p.UserID]; ok {
			continue
		}
		seen[*p.UserID] = struct{}{}
		ids = append(ids, *p.UserID)
	}
	return ids
}
