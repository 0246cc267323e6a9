package services

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/loomline/loomline-api/models"
)

// ReconcileService applies the real-world outcome of a payment to the local
// order exactly once. Both notification channels, the asynchronous gateway
// webhook and the synchronous client verify call, converge on this one state
// machine after their channel-specific signature checks.
type ReconcileService struct {
	db *gorm.DB
}

func NewReconcileService(db *gorm.DB) *ReconcileService {
	return &ReconcileService{db: db}
}

// MarkPaid transitions the order for gatewayOrderID to PROCESSING/PAID and
// applies the payment side effects: one coupon usage record plus usage-counter
// increment, and per item an inventory decrement and times-sold increment.
//
// The transition is guarded by a conditional update on payment_status, so
// duplicate deliveries and the webhook/verify race collapse into a single
// winner; losers get ErrAlreadyProcessed. All side effects share the
// transition's transaction: a partial failure rolls everything back and the
// caller is expected to let the gateway retry into this same path.
func (s *ReconcileService) MarkPaid(ctx context.Context, gatewayOrderID, paymentID string) (*models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("OrderItems").Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if order.PaymentStatus == models.PaymentStatusFailed {
			// Success after failure is out-of-order delivery. Both outcomes
			// are terminal; flag it for manual review instead of recovering.
			log.Warnf("Anomalous success notification for failed order %d (gateway order %s)", order.ID, gatewayOrderID)
			return ErrAlreadyProcessed
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", order.ID, models.PaymentStatusPending).
			Updates(map[string]any{
				"status":             models.OrderStatusProcessing,
				"payment_status":     models.PaymentStatusPaid,
				"gateway_payment_id": paymentID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}
		order.Status = models.OrderStatusProcessing
		order.PaymentStatus = models.PaymentStatusPaid
		order.GatewayPaymentID = paymentID

		if order.CouponID != nil {
			// The counter is the cap's enforcement point: several pending
			// orders can each validate under the limit, so the increment is
			// conditional and never pushes used_count past usage_limit. An
			// over-cap confirmation still completes; it is logged for manual
			// remediation and records no usage row.
			res := tx.Model(&models.Coupon{}).
				Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", *order.CouponID).
				UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				log.Warnf("Order %d confirmed with coupon %d already at its usage limit", order.ID, *order.CouponID)
			} else {
				usage := models.CouponUsage{
					UserID:   order.UserID,
					CouponID: int(*order.CouponID),
					OrderID:  int(order.ID),
				}
				if err := tx.Create(&usage).Error; err != nil {
					return err
				}
			}
		}

		for _, item := range order.OrderItems {
			// Relative adjustments, never read-compute-write, so concurrent
			// orders on the same product stay correct.
			err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Updates(map[string]any{
					"inventory":  gorm.Expr("inventory - ?", item.Quantity),
					"times_sold": gorm.Expr("times_sold + ?", item.Quantity),
				}).Error
			if err != nil {
				return err
			}
		}

		// The paid cart is done; clear it.
		if err := tx.Where("user_id = ?", order.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		return nil
	})

	switch {
	case errors.Is(err, ErrAlreadyProcessed):
		log.Infof("Order %d already reconciled, ignoring duplicate notification %s", order.ID, paymentID)
		return &order, ErrAlreadyProcessed
	case errors.Is(err, ErrOrderNotFound):
		return nil, ErrOrderNotFound
	case err != nil:
		log.Errorf("Reconciliation failed for gateway order %s (order %d): %v", gatewayOrderID, order.ID, err)
		return nil, err
	}

	log.Infof("Order %d marked paid (payment %s)", order.ID, paymentID)
	return &order, nil
}

// MarkFailed transitions a still-pending order to CANCELLED/FAILED. A failure
// notification arriving after a success is out-of-order delivery: it is
// logged as anomalous and the paid state is never downgraded.
func (s *ReconcileService) MarkFailed(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		log.Warnf("Anomalous failure notification for already paid order %d (gateway order %s)", order.ID, gatewayOrderID)
		return &order, ErrAlreadyProcessed
	}
	if order.PaymentStatus == models.PaymentStatusFailed {
		return &order, ErrAlreadyProcessed
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, models.PaymentStatusPending).
		Updates(map[string]any{
			"status":         models.OrderStatusCancelled,
			"payment_status": models.PaymentStatusFailed,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Raced with another notification; whatever won stands.
		return &order, ErrAlreadyProcessed
	}

	order.Status = models.OrderStatusCancelled
	order.PaymentStatus = models.PaymentStatusFailed
	log.Infof("Order %d marked failed", order.ID)
	return &order, nil
}
