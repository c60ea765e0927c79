package domain

import "time"

// CartItem keeps a denormalized snapshot of the product (name, price, image)
// captured when the item was added. The snapshot may go stale relative to the
// catalogue; checkout re-reads live product data and never trusts these fields.
type CartItem struct {
	ProductID string    `bson:"product_id" json:"productId"`
	Name      string    `bson:"name" json:"name"`
	Price     float64   `bson:"price" json:"price"`
	Image     string    `bson:"image" json:"image"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"addedAt"`
}

// Cart is the single mutable cart owned by a user. Carts are created lazily on
// first access and emptied rather than deleted.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	UserID    string     `bson:"user_id" json:"userId"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

// ItemCount returns the total quantity across all items.
func (c *Cart) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// FindItem returns the index of the item for productID, or -1.
func (c *Cart) FindItem(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
