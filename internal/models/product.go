package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Product represents an inventory item.
// It deliberately does not embed gorm.Model: deletes are permanent.
type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Price     float64   `json:"price" gorm:"not null"`
	Stock     int       `json:"stock" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// TableName pins the table name regardless of naming strategy.
func (Product) TableName() string {
	return "products"
}

// ProductFields is a candidate product as received from a client.
// A nil field means the value was not supplied.
type ProductFields struct {
	Name  *string  `json:"name" validate:"required,notblank"`
	Price *float64 `json:"price" validate:"required,gte=0"`
	Stock *int     `json:"stock" validate:"required,gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// fieldMessages maps a struct field to the message reported when any of its rules fail.
var fieldMessages = map[string]string{
	"Name":  "name is required",
	"Price": "price must be greater than or equal to 0",
	"Stock": "stock must be greater than or equal to 0",
}

// Validate reports every violated rule. An empty slice means the fields are valid.
func (f ProductFields) Validate() []string {
	errs := []string{}
	err := validate.Struct(f)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return append(errs, err.Error())
	}
	for _, name := range []string{"Name", "Price", "Stock"} {
		for _, e := range verrs {
			if e.StructField() == name {
				errs = append(errs, fieldMessages[name])
				break
			}
		}
	}
	return errs
}

// Validate checks the current field values of p.
func (p Product) Validate() []string {
	return p.Fields().Validate()
}

// Fields returns p's values as a fully populated ProductFields.
func (p Product) Fields() ProductFields {
	name, price, stock := p.Name, p.Price, p.Stock
	return ProductFields{Name: &name, Price: &price, Stock: &stock}
}

// NewProduct builds a product from validated fields, stamping both timestamps with now.
func NewProduct(f ProductFields, now time.Time) *Product {
	p := &Product{CreatedAt: now, UpdatedAt: now}
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Price != nil {
		p.Price = *f.Price
	}
	if f.Stock != nil {
		p.Stock = *f.Stock
	}
	return p
}
