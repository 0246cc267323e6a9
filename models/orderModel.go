package models

import "gorm.io/gorm"

const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"

	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusFailed  = "FAILED"
)

type Order struct {
	gorm.Model
	UserID    int     `json:"userId"`
	AddressID int     `json:"addressId"`
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Shipping  float64 `json:"shipping"`
	Discount  float64 `json:"discount"`
	Total     float64 `json:"total"`
	CouponID  *uint   `json:"couponId"`
	// CouponCode is a snapshot of the applied code at order time.
	CouponCode string `json:"couponCode"`
	// GatewayOrderID joins asynchronous payment notifications back to this order.
	GatewayOrderID   string      `json:"gatewayOrderId" gorm:"index"`
	GatewayPaymentID string      `json:"gatewayPaymentId"`
	Status           string      `json:"status"`
	PaymentStatus    string      `json:"paymentStatus"`
	OrderItems       []OrderItem `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	gorm.Model
	OrderID   int    `json:"orderId"`
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	// Price is the unit price snapshot taken at order time.
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	LineTotal float64 `json:"lineTotal"`
}
