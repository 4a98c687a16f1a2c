package models

import "time"

// Product represents a product in the catalog.
// Price is kept as a decimal string so no float rounding ever touches it.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:varchar(500)"`
	Price       string    `json:"price" gorm:"type:varchar(16);not null"`
	Category    string    `json:"category" gorm:"index;type:varchar(100);not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Price       string `json:"price" validate:"required,price"`
	Category    string `json:"category" validate:"required,max=100"`
}

// ProductPatch holds the fields of PATCH /products/:id. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Price       *string `json:"price" validate:"omitempty,price"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=100"`
}

// Apply copies every present field onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
}
