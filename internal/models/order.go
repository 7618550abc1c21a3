// internal/models/order.go
package models

// OrderItem is one line of an order-placement request.
type OrderItem struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// OrderRequest is the payload POSTed to the order service.
type OrderRequest struct {
	Products []OrderItem `json:"products"`
}

// Order is the order service's representation of a placed order.
type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"userId"`
	Products  []OrderItem `json:"products,omitempty"`
	CreatedAt string      `json:"createdAt,omitempty"`
	UpdatedAt string      `json:"updatedAt,omitempty"`
}
