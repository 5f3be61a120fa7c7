package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	PermViewProduct   = "products.view_product"
	PermAddProduct    = "products.add_product"
	PermChangeProduct = "products.change_product"
	PermDeleteProduct = "products.delete_product"
)

// DefaultPermissions are seeded by migrations.
var DefaultPermissions = []Permission{
	{Codename: PermViewProduct, Name: "Can view product"},
	{Codename: PermAddProduct, Name: "Can add product"},
	{Codename: PermChangeProduct, Name: "Can change product"},
	{Codename: PermDeleteProduct, Name: "Can delete product"},
}

type User struct {
	ID           uint         `gorm:"primaryKey;autoIncrement"       json:"id"`
	Email        string       `gorm:"uniqueIndex;size:254;not null"  json:"email"`
	Username     string       `gorm:"uniqueIndex;size:30;not null"   json:"username"`
	FirstName    string       `gorm:"size:150"                       json:"first_name"`
	LastName     string       `gorm:"size:150"                       json:"last_name"`
	PasswordHash string       `gorm:"not null"                       json:"-"`
	IsStaff      bool         `gorm:"not null;default:false"         json:"is_staff"`
	IsActive     bool         `gorm:"not null;default:false"         json:"is_active"`
	IsSuperuser  bool         `gorm:"not null;default:false"         json:"is_superuser"`
	DateJoined   time.Time    `gorm:"not null"                       json:"date_joined"`
	Permissions  []Permission `gorm:"many2many:user_permissions;"    json:"-"`
}

func (u *User) String() string {
	return u.Email
}

type Permission struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"        json:"id"`
	Codename string `gorm:"uniqueIndex;size:100;not null"   json:"codename"`
	Name     string `gorm:"size:255"                        json:"name"`
}

// Public has no gorm default: gorm omits zero values of defaulted columns on
// insert, so a false flag would be stored as the default.
type Product struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"          json:"id"`
	Title     string    `gorm:"size:120;not null"                 json:"title"`
	Content   string    `gorm:"type:text"                         json:"content"`
	Price     float64   `gorm:"type:decimal(15,2);not null"       json:"price"`
	Public    bool      `gorm:"not null;index"                    json:"public"`
	UserID    *uint     `gorm:"index"                             json:"user_id"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Folded copies of Title and Content. Text search compares against these
	// so that case folding does not depend on the database's LOWER().
	TitleFolded   string `gorm:"type:text;not null;default:''" json:"-"`
	ContentFolded string `gorm:"type:text;not null;default:''" json:"-"`
}

// FoldText is the case folding shared by in-memory and database search.
func FoldText(s string) string {
	return strings.ToLower(s)
}

// Fold refreshes TitleFolded and ContentFolded.
func (p *Product) Fold() {
	p.TitleFolded = FoldText(p.Title)
	p.ContentFolded = FoldText(p.Content)
}

func (p *Product) BeforeSave(*gorm.DB) error {
	p.Fold()
	return nil
}

const saleRatio = 0.6

func (p *Product) SalePrice() string {
	return fmt.Sprintf("%.2f", p.Price*saleRatio)
}

func (p *Product) Discount() string {
	return "80"
}

func (p *Product) OwnedBy(userID uint) bool {
	return p.UserID != nil && *p.UserID == userID
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"                  json:"id"`
	TokenHash string `gorm:"uniqueIndex;size:64;not null" json:"-"`
	JTI       string `gorm:"uniqueIndex;size:64;not null" json:"jti"`
	UserID    uint   `gorm:"index;not null"              json:"user_id"`
	ExpiresAt int64  `gorm:"not null"                    json:"expires_at"`
	Revoked   bool   `gorm:"not null;default:false"      json:"revoked"`
}
