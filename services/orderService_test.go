package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"gorm.io/gorm"

	"github.com/loomline/loomline-api/models"
	"github.com/loomline/loomline-api/payments"
)

type fakeGateway struct {
	lastAmount   int64
	lastCurrency string
	fail         bool
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (*payments.GatewayOrder, error) {
	if f.fail {
		return nil, errors.New("gateway unreachable")
	}
	f.lastAmount = amountMinor
	f.lastCurrency = currency
	return &payments.GatewayOrder{ID: "order_gwtest", Amount: amountMinor, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (f *fakeGateway) KeyID() string { return "rzp_test_key" }

func seedIntakeFixtures(t *testing.T, db *gorm.DB) (models.Address, models.Product) {
	t.Helper()
	address := models.Address{UserID: 1, Fullname: "Asha N", Line1: "12 Mill Road", City: "Pune", Country: "IN"}
	if err := db.Create(&address).Error; err != nil {
		t.Fatalf("failed to seed address: %v", err)
	}
	product := models.Product{Brand: "Loomline", Name: "Linen Shirt", Price: 499.5, Inventory: 20}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return address, product
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending order with snapshot prices and a gateway order", func(t *testing.T) {
		db := newTestDB(t)
		address, product := seedIntakeFixtures(t, db)
		gateway := &fakeGateway{}

		input := CreateOrderInput{
			AddressID: address.ID,
			Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 2, Size: "M", Color: "indigo"}},
			Subtotal:  999,
			Tax:       10,
			Shipping:  5,
			Total:     1014,
		}

		order, intent, err := NewOrderService(db, gateway).Create(ctx, 1, input)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if order.Status != models.OrderStatusPending || order.PaymentStatus != models.PaymentStatusPending {
			t.Errorf("expected PENDING/PENDING, got %s/%s", order.Status, order.PaymentStatus)
		}
		if order.GatewayOrderID != "order_gwtest" {
			t.Errorf("expected gateway reference stored, got %q", order.GatewayOrderID)
		}
		if got := order.Subtotal + order.Tax + order.Shipping - order.Discount; math.Abs(got-order.Total) > 0.01 {
			t.Errorf("total invariant broken: %.2f != %.2f", got, order.Total)
		}
		if intent.Amount != 101400 {
			t.Errorf("expected 101400 minor units, got %d", intent.Amount)
		}
		if intent.PublicKey != "rzp_test_key" {
			t.Errorf("unexpected public key %q", intent.PublicKey)
		}

		var items []models.OrderItem
		db.Where("order_id = ?", order.ID).Find(&items)
		if len(items) != 1 {
			t.Fatalf("expected 1 order item, got %d", len(items))
		}
		if items[0].Price != 499.5 || items[0].LineTotal != 999 {
			t.Errorf("bad price snapshot: price=%.2f lineTotal=%.2f", items[0].Price, items[0].LineTotal)
		}

		// Intake never touches inventory; that is reconciliation's job.
		var reloaded models.Product
		db.First(&reloaded, product.ID)
		if reloaded.Inventory != 20 || reloaded.TimesSold != 0 {
			t.Errorf("inventory mutated at intake: inventory=%d timesSold=%d", reloaded.Inventory, reloaded.TimesSold)
		}
	})

	t.Run("rejects an address belonging to another user", func(t *testing.T) {
		db := newTestDB(t)
		address, product := seedIntakeFixtures(t, db)

		input := CreateOrderInput{
			AddressID: address.ID,
			Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			Subtotal:  499.5,
			Total:     499.5,
		}

		_, _, err := NewOrderService(db, &fakeGateway{}).Create(ctx, 99, input)
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress, got %v", err)
		}
	})

	t.Run("rejects a client total that disagrees with snapshot prices", func(t *testing.T) {
		db := newTestDB(t)
		address, product := seedIntakeFixtures(t, db)

		input := CreateOrderInput{
			AddressID: address.ID,
			Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			Subtotal:  1,
			Total:     1,
		}

		_, _, err := NewOrderService(db, &fakeGateway{}).Create(ctx, 1, input)
		if !errors.Is(err, ErrTotalMismatch) {
			t.Errorf("expected ErrTotalMismatch, got %v", err)
		}
	})

	t.Run("rejects a discount without a coupon", func(t *testing.T) {
		db := newTestDB(t)
		address, product := seedIntakeFixtures(t, db)

		input := CreateOrderInput{
			AddressID:      address.ID,
			Items:          []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			DiscountAmount: 50,
			Subtotal:       499.5,
			Total:          449.5,
		}

		_, _, err := NewOrderService(db, &fakeGateway{}).Create(ctx, 1, input)
		if !errors.Is(err, ErrCouponInvalid) {
			t.Errorf("expected ErrCouponInvalid, got %v", err)
		}
	})

	t.Run("applies a validated coupon discount to the stored order", func(t *testing.T) {
		db := newTestDB(t)
		address, product := seedIntakeFixtures(t, db)
		coupon := models.Coupon{Code: "SAVE50", DiscountType: models.DiscountTypeFixed, DiscountValue: 50, IsActive: true}
		if err := db.Create(&coupon).Error; err != nil {
			t.Fatalf("failed to seed coupon: %v", err)
		}

		input := CreateOrderInput{
			AddressID:      address.ID,
			Items:          []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			CouponID:       &coupon.ID,
			CouponCode:     "SAVE50",
			DiscountAmount: 50,
			Subtotal:       499.5,
			Tax:            0,
			Shipping:       0,
			Total:          449.5,
		}

		order, _, err := NewOrderService(db, &fakeGateway{}).Create(ctx, 1, input)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if order.Discount != 50 || order.CouponCode != "SAVE50" {
			t.Errorf("expected discount 50 with code snapshot, got %.2f %q", order.Discount, order.CouponCode)
		}
	})

	t.Run("gateway failure leaves no partial order behind", func(t *testing.T) {
		db := newTestDB(t)
		address, product := seedIntakeFixtures(t, db)

		input := CreateOrderInput{
			AddressID: address.ID,
			Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			Subtotal:  499.5,
			Total:     499.5,
		}

		_, _, err := NewOrderService(db, &fakeGateway{fail: true}).Create(ctx, 1, input)
		if err == nil {
			t.Fatal("expected gateway error")
		}

		var orderCount, itemCount int64
		db.Model(&models.Order{}).Count(&orderCount)
		db.Model(&models.OrderItem{}).Count(&itemCount)
		if orderCount != 0 || itemCount != 0 {
			t.Errorf("expected rollback, found %d orders and %d items", orderCount, itemCount)
		}
	})

	t.Run("rejects empty carts and non-positive quantities", func(t *testing.T) {
		db := newTestDB(t)
		address, product := seedIntakeFixtures(t, db)
		svc := NewOrderService(db, &fakeGateway{})

		_, _, err := svc.Create(ctx, 1, CreateOrderInput{AddressID: address.ID})
		if !errors.Is(err, ErrEmptyOrder) {
			t.Errorf("expected ErrEmptyOrder, got %v", err)
		}

		_, _, err = svc.Create(ctx, 1, CreateOrderInput{
			AddressID: address.ID,
			Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 0}},
		})
		if !errors.Is(err, ErrEmptyOrder) {
			t.Errorf("expected ErrEmptyOrder, got %v", err)
		}
	})
}
