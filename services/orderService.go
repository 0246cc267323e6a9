package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/loomline/loomline-api/models"
	"github.com/loomline/loomline-api/payments"
)

const totalTolerance = 0.01

// PaymentGateway is the slice of the gateway client order intake needs.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*payments.GatewayOrder, error)
	KeyID() string
}

type OrderService struct {
	db      *gorm.DB
	gateway PaymentGateway
}

func NewOrderService(db *gorm.DB, gateway PaymentGateway) *OrderService {
	return &OrderService{db: db, gateway: gateway}
}

type OrderItemInput struct {
	ProductID uint   `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type CreateOrderInput struct {
	AddressID      uint             `json:"addressId" binding:"required"`
	Items          []OrderItemInput `json:"items" binding:"required"`
	CouponID       *uint            `json:"couponId"`
	CouponCode     string           `json:"couponCode"`
	DiscountAmount float64          `json:"discountAmount"`
	Subtotal       float64          `json:"subtotal"`
	Tax            float64          `json:"tax"`
	Shipping       float64          `json:"shipping"`
	Total          float64          `json:"total"`
}

// PaymentIntent is what the storefront needs to open the gateway checkout.
type PaymentIntent struct {
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	PublicKey      string `json:"publicKey"`
}

// Create persists a PENDING/PENDING order with its items and initiates the
// matching gateway order. Both happen inside one transaction: a gateway
// failure rolls the local records back. The reverse case, gateway order
// created but local commit failed, leaves an orphaned gateway order that is
// never paid against, which is acceptable since no money has moved.
//
// Inventory, sales counters and coupon usage are untouched here; those are
// applied by reconciliation once payment is confirmed.
func (s *OrderService) Create(ctx context.Context, userID uint, in CreateOrderInput) (*models.Order, *PaymentIntent, error) {
	if len(in.Items) == 0 {
		return nil, nil, ErrEmptyOrder
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, nil, ErrEmptyOrder
		}
	}

	// Never trust a client-supplied address id without checking ownership.
	var address models.Address
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", in.AddressID, userID).First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrInvalidAddress
	}
	if err != nil {
		return nil, nil, err
	}

	orderItems, subtotal, err := s.buildItems(ctx, in.Items)
	if err != nil {
		return nil, nil, err
	}
	if math.Abs(subtotal-in.Subtotal) > totalTolerance {
		return nil, nil, ErrTotalMismatch
	}

	discount, couponCode, err := s.resolveCoupon(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	if discount > subtotal {
		discount = subtotal
	}

	total := round2(subtotal + in.Tax + in.Shipping - discount)
	if math.Abs(total-in.Total) > totalTolerance {
		return nil, nil, ErrTotalMismatch
	}

	currency := os.Getenv("PAYMENT_CURRENCY")
	if currency == "" {
		currency = "INR"
	}
	// Gateways take the amount in minor units; round, never truncate.
	amountMinor := int64(math.Round(total * 100))

	order := models.Order{
		UserID:        int(userID),
		AddressID:     int(in.AddressID),
		Subtotal:      round2(subtotal),
		Tax:           round2(in.Tax),
		Shipping:      round2(in.Shipping),
		Discount:      round2(discount),
		Total:         total,
		CouponID:      in.CouponID,
		CouponCode:    couponCode,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		OrderItems:    orderItems,
	}

	var intent PaymentIntent
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		receipt := fmt.Sprintf("order_%d_%s", order.ID, uuid.NewString()[:8])
		gatewayOrder, err := s.gateway.CreateOrder(ctx, amountMinor, currency, receipt)
		if err != nil {
			return err
		}

		if err := tx.Model(&order).Update("gateway_order_id", gatewayOrder.ID).Error; err != nil {
			log.Errorf("Order %d created but gateway order %s not saved: %v", order.ID, gatewayOrder.ID, err)
			return err
		}
		order.GatewayOrderID = gatewayOrder.ID

		intent = PaymentIntent{
			GatewayOrderID: gatewayOrder.ID,
			Amount:         amountMinor,
			Currency:       currency,
			PublicKey:      s.gateway.KeyID(),
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &order, &intent, nil
}

// buildItems snapshots unit prices from the live products. Line totals are
// frozen here and never recomputed from product prices later.
func (s *OrderService) buildItems(ctx context.Context, inputs []OrderItemInput) ([]models.OrderItem, float64, error) {
	items := make([]models.OrderItem, 0, len(inputs))
	var subtotal float64
	for _, in := range inputs {
		var product models.Product
		err := s.db.WithContext(ctx).First(&product, in.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProductNotFound
		}
		if err != nil {
			return nil, 0, err
		}

		lineTotal := round2(product.Price * float64(in.Quantity))
		items = append(items, models.OrderItem{
			ProductID: int(product.ID),
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  in.Quantity,
			Size:      in.Size,
			Color:     in.Color,
			LineTotal: lineTotal,
		})
		subtotal += lineTotal
	}
	return items, round2(subtotal), nil
}

// resolveCoupon re-checks only existence and activity, trusting the
// evaluator's recent result for the rest. A discount without a coupon, or an
// id/code pair that no longer resolves, is rejected.
func (s *OrderService) resolveCoupon(ctx context.Context, in CreateOrderInput) (float64, string, error) {
	if in.CouponID == nil {
		if in.DiscountAmount > 0 {
			return 0, "", ErrCouponInvalid
		}
		return 0, "", nil
	}

	var coupon models.Coupon
	err := s.db.WithContext(ctx).First(&coupon, *in.CouponID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, "", ErrCouponInvalid
	}
	if err != nil {
		return 0, "", err
	}
	if !coupon.IsActive {
		return 0, "", ErrCouponInvalid
	}
	if in.CouponCode != "" && in.CouponCode != coupon.Code {
		return 0, "", ErrCouponInvalid
	}

	return in.DiscountAmount, coupon.Code, nil
}
