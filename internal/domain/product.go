package domain

import "time"

// ProductCategory values accepted by the catalogue.
var ProductCategories = []string{"electronics", "clothing", "books", "food", "other"}

type Product struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Price       float64   `bson:"price" json:"price"`
	Category    string    `bson:"category" json:"category"`
	Stock       int       `bson:"stock" json:"stock"`
	Image       string    `bson:"image" json:"image"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

func ValidCategory(c string) bool {
	for _, v := range ProductCategories {
		if v == c {
			return true
		}
	}
	return false
}
