package orders

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Address is snapshotted onto the order at creation.
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	ID              string
	Number          string // unique, URL-safe
	UserID          string
	Status          Status
	PaymentStatus   PaymentStatus
	TotalCents      int
	ShippingAddress Address
	BillingAddress  Address
	PaymentMethod   string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Item captures the unit price at order creation; later catalog price
// changes never touch existing orders.
type Item struct {
	ID             string
	OrderID        string
	ProductID      string
	Qty            int
	UnitPriceCents int
	LineTotalCents int
}
