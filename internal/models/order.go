package models

import "time"

// OrderItem is the subset of a cart item copied into an order.
type OrderItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is the client-local record written at checkout. It is overwritten by the next checkout
// and never reconciled with a server.
type Order struct {
	OrderID    string      `json:"orderId"`
	Email      string      `json:"email"`
	Items      []OrderItem `json:"items"`
	TotalPrice float64     `json:"totalPrice"`
	Timestamp  time.Time   `json:"timestamp"`
}
