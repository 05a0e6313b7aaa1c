package handlers

import (
	"time"

	"furnitureshop/internal/models"
)

type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

// ProductResponse renders money with exactly two fractional digits, as do
// the cart and order responses.
type ProductResponse struct {
	ID           string    `json:"id"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	Stock        int       `json:"stock"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newProductResponse(p models.Product) ProductResponse {
	var categoryName string
	if p.Category != nil {
		categoryName = p.Category.Name
	}
	return ProductResponse{
		ID:           p.ID,
		CategoryID:   p.CategoryID,
		CategoryName: categoryName,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		Stock:        p.Stock,
		IsAvailable:  p.IsAvailable,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type CartItemResponse struct {
	ID             string `json:"id"`
	ProductID      string `json:"product"`
	ProductName    string `json:"product_name"`
	ProductPrice   string `json:"product_price"`
	Quantity       int    `json:"quantity"`
	TotalItemPrice string `json:"total_item_price"`
}

func newCartItemResponse(i models.CartItem) CartItemResponse {
	resp := CartItemResponse{
		ID:             i.ID,
		ProductID:      i.ProductID,
		Quantity:       i.Quantity,
		TotalItemPrice: i.SubTotal().StringFixed(2),
	}
	if i.Product != nil {
		resp.ProductName = i.Product.Name
		resp.ProductPrice = i.Product.Price.StringFixed(2)
	}
	return resp
}

type CartResponse struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user"`
	Items          []CartItemResponse `json:"items"`
	TotalCartPrice string             `json:"total_cart_price"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func newCartResponse(c models.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, newCartItemResponse(item))
	}
	return CartResponse{
		ID:             c.ID,
		UserID:         c.UserID,
		Items:          items,
		TotalCartPrice: c.Total().StringFixed(2),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

type OrderItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	LineTotal string `json:"line_total"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user"`
	Status          models.OrderStatus  `json:"status"`
	TotalPrice      string              `json:"total_price"`
	ShippingAddress string              `json:"shipping_address,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func newOrderResponse(o models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
			LineTotal: item.LineTotal().StringFixed(2),
		})
	}
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		TotalPrice:      o.TotalPrice.StringFixed(2),
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
