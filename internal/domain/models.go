package domain

import "time"

type Order struct {
	ID         int        `json:"order_id"`
	UserID     int        `json:"user_id"`
	TotalPrice int        `json:"total_price"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

type OrderItem struct {
	ID        int        `json:"order_item_id"`
	OrderID   int        `json:"order_id"`
	ProductID int        `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Price     int        `json:"price"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type Product struct {
	ID        int        `json:"product_id"`
	Name      string     `json:"name"`
	Price     int        `json:"price"`
	Stock     int        `json:"stock"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// ProductSnapshot is what the order command path sees of a product when
// validating items; the full row stays owned by the product service.
type ProductSnapshot struct {
	ID    int    `json:"product_id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	Stock int    `json:"stock"`
}

type User struct {
	ID        int        `json:"user_id"`
	FirstName string     `json:"firstname"`
	LastName  string     `json:"lastname"`
	Email     string     `json:"email"`
	Password  string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
