package domain

type CreateOrderItemRequest struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
	Quantity  int `json:"quantity" validate:"required,min=1"`
	Price     int `json:"price" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	UserID int                      `json:"user_id" validate:"required,min=1"`
	Items  []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest replaces the order's item set. Items are matched against
// the stored set by product_id; the service derives per-product quantity
// deltas from that diff.
type UpdateOrderRequest struct {
	OrderID int                      `json:"order_id" validate:"required,min=1"`
	UserID  int                      `json:"user_id" validate:"required,min=1"`
	Items   []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateProductRequest struct {
	Name  string `json:"name" validate:"required"`
	Price int    `json:"price" validate:"required,min=1"`
	Stock int    `json:"stock" validate:"min=0"`
}

type UpdateProductRequest struct {
	ProductID int    `json:"product_id" validate:"required,min=1"`
	Name      string `json:"name" validate:"required"`
	Price     int    `json:"price" validate:"required,min=1"`
	Stock     int    `json:"stock" validate:"min=0"`
}

type CreateUserRequest struct {
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	UserID    int    `json:"user_id" validate:"required,min=1"`
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

const (
	MinPageSize = 1
	MaxPageSize = 100
)

// FindAllRequest is the shared pagination contract: page is 1-based,
// page_size is clamped to [MinPageSize, MaxPageSize], search is a substring
// filter on the entity's text column.
type FindAllRequest struct {
	Search   string `json:"search"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

func (r *FindAllRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < MinPageSize {
		r.PageSize = MinPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
}

func (r FindAllRequest) Offset() int { return (r.Page - 1) * r.PageSize }
