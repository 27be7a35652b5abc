package models

// Inbound request bodies.

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	AdminCode   string `json:"admin_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	AltContact  string `json:"alt_contact,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type STKPushRequest struct {
	PhoneNumber string `json:"phone_number"`
	Amount      int    `json:"amount"`
	UserEmail   string `json:"user_email,omitempty"`
}

type CreateProduct struct {
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Description string `json:"description,omitempty"`
}

type UpdateProductStock struct {
	Stock int `json:"stock"`
}

type ItemRequest struct {
	ItemName  string `json:"item_name"`
	UserEmail string `json:"user_email"`
}

type FulfillRequest struct {
	RequestID string `json:"request_id"`
	ItemName  string `json:"item_name"`
	UserEmail string `json:"user_email"`
}

type CreateFeedback struct {
	UserEmail string `json:"user_email"`
	Message   string `json:"message"`
}

type CreateNotification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// Product is the stable external shape of a catalog item. Price is always
// surfaced as a string.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       string  `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Description *string `json:"description"`
}

// ProductDoc is the search index document for a product.
type ProductDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int    `json:"price"`
}
