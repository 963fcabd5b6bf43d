package models

// ItemType classifies a cart line item.
type ItemType string

const (
	ItemTypeLesson ItemType = "lesson"
)

// CartItem is one purchasable line in a cart.
type CartItem struct {
	ID       string   `json:"id" validate:"required,max=64"`
	Name     string   `json:"name" validate:"required,max=200"`
	Price    float64  `json:"price" validate:"gte=0"`
	Quantity int      `json:"quantity" validate:"gte=1,lte=99"`
	Type     ItemType `json:"type" validate:"required,oneof=lesson"`
}
