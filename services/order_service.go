package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/beanline/beanline-api/config"
	"github.com/beanline/beanline-api/models"
	"gorm.io/gorm"
)

// allowedTransitions maps a requested status to the statuses it may be
// reached from. Anything not listed here is rejected with
// InvalidTransitionError; completed and cancelled are terminal.
var allowedTransitions = map[string][]string{
	models.StatusAccepted:   {models.StatusPending},
	models.StatusInProgress: {models.StatusAccepted},
	models.StatusReady:      {models.StatusInProgress},
	models.StatusCompleted:  {models.StatusReady},
	models.StatusCancelled:  {models.StatusPending, models.StatusAccepted, models.StatusInProgress},
}

// ValidTransition reports whether an order may move from one status to
// another
func ValidTransition(from, to string) bool {
	for _, allowed := range allowedTransitions[to] {
		if allowed == from {
			return true
		}
	}
	return false
}

// OrderItemInput is one requested line of a new order
type OrderItemInput struct {
	MenuItemID    uint   `json:"menu_item_id"`
	Quantity      int    `json:"quantity"`
	Customization string `json:"customization"`
}

// CreateOrderInput carries everything needed to create an order
type CreateOrderInput struct {
	CafeID        uint
	CustomerID    uint
	Items         []OrderItemInput
	OrderType     string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Notes         string
}

// TransitionParams carries the per-transition extras: an estimate when
// accepting, an optional reason when cancelling
type TransitionParams struct {
	EstimatedMinutes int
	Reason           string
}

// OrderStats aggregates a café's order counts and revenue over a range
type OrderStats struct {
	TotalOrders     int64   `json:"total_orders"`
	CompletedOrders int64   `json:"completed_orders"`
	CancelledOrders int64   `json:"cancelled_orders"`
	Revenue         float64 `json:"revenue"`
}

// OrderService is the order lifecycle engine. Every order mutation
// goes through it; it enforces the state machine, keeps queue
// positions dense, and fans out realtime events after each committed
// change.
type OrderService struct {
	queue *QueueService
}

// NewOrderService creates a new OrderService
func NewOrderService() *OrderService {
	return &OrderService{queue: NewQueueService()}
}

// CreateOrder validates the item list, snapshots menu prices, and
// creates the order with its items atomically. The new order starts as
// pending with no queue position; café staff are notified.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, &ValidationError{Field: "items", Message: "order must contain at least one item"}
	}
	for i, item := range input.Items {
		if item.Quantity < 1 {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be at least 1",
			}
		}
	}
	if input.OrderType == "" {
		input.OrderType = models.OrderTypePickup
	}
	switch input.OrderType {
	case models.OrderTypePickup, models.OrderTypeDineIn, models.OrderTypeDelivery:
	default:
		return nil, &ValidationError{Field: "order_type", Message: fmt.Sprintf("unknown order type %q", input.OrderType)}
	}

	db := config.GetDB()
	if err := requireCafe(db, input.CafeID); err != nil {
		return nil, err
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		// Snapshot price and prep time from the live menu so later
		// menu edits never change this order
		items := make([]models.OrderItem, 0, len(input.Items))
		var total float64
		for i, itemInput := range input.Items {
			var menuItem models.MenuItem
			if err := tx.First(&menuItem, itemInput.MenuItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ValidationError{
						Field:   fmt.Sprintf("items[%d].menu_item_id", i),
						Message: fmt.Sprintf("menu item %d does not exist", itemInput.MenuItemID),
					}
				}
				return &StoreError{Op: "load menu item", Err: err}
			}
			if menuItem.CafeID != input.CafeID {
				return &ValidationError{
					Field:   fmt.Sprintf("items[%d].menu_item_id", i),
					Message: fmt.Sprintf("menu item %d does not belong to cafe %d", itemInput.MenuItemID, input.CafeID),
				}
			}
			if !menuItem.IsAvailable {
				return &ValidationError{
					Field:   fmt.Sprintf("items[%d].menu_item_id", i),
					Message: fmt.Sprintf("menu item %q is not available", menuItem.Name),
				}
			}
			if menuItem.Price <= 0 {
				return &ValidationError{
					Field:   fmt.Sprintf("items[%d].menu_item_id", i),
					Message: fmt.Sprintf("menu item %q has no valid price", menuItem.Name),
				}
			}

			items = append(items, models.OrderItem{
				MenuItemID:      menuItem.ID,
				Quantity:        itemInput.Quantity,
				UnitPrice:       menuItem.Price,
				PreparationTime: menuItem.PreparationTime,
				Customization:   itemInput.Customization,
			})
			total += menuItem.Price * float64(itemInput.Quantity)
		}

		order = models.Order{
			CafeID:        input.CafeID,
			CustomerID:    input.CustomerID,
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			CustomerEmail: input.CustomerEmail,
			OrderType:     input.OrderType,
			Status:        models.StatusPending,
			TotalAmount:   total,
			Notes:         input.Notes,
			Items:         items,
		}

		// Order and items are written in one transaction, all or nothing
		if err := tx.Create(&order).Error; err != nil {
			return &StoreError{Op: "create order", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.GetOrder(order.ID)
	if err != nil {
		return nil, err
	}

	if notifier := GetNotifier(); notifier != nil {
		notifier.OrderCreated(created)
	}
	return created, nil
}

// TransitionOrder moves an order to a new status, applying the side
// effects of the transition, renumbering the café's queue, and fanning
// out realtime events. Illegal transitions are rejected with
// InvalidTransitionError and leave the order untouched.
func (s *OrderService) TransitionOrder(orderID uint, newStatus string, params TransitionParams) (*models.Order, error) {
	if _, known := allowedTransitions[newStatus]; !known {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)}
	}

	db := config.GetDB()
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if !ValidTransition(order.Status, newStatus) {
		return nil, &InvalidTransitionError{CurrentStatus: order.Status, RequestedStatus: newStatus}
	}

	updates := map[string]interface{}{"status": newStatus}
	now := time.Now()

	switch newStatus {
	case models.StatusAccepted:
		// The estimate is the sole input the wait-time path has for
		// this order, so acceptance requires it explicitly
		if params.EstimatedMinutes <= 0 {
			return nil, &ValidationError{Field: "estimated_minutes", Message: "acceptance requires a positive minutes estimate"}
		}
		readyTime := now.Add(time.Duration(params.EstimatedMinutes) * time.Minute)
		updates["estimated_ready_time"] = readyTime

		var activeCount int64
		if err := db.Model(&models.Order{}).
			Where("cafe_id = ? AND status IN ?", order.CafeID, models.ActiveStatuses).
			Count(&activeCount).Error; err != nil {
			return nil, &StoreError{Op: "count active orders", Err: err}
		}
		updates["queue_position"] = int(activeCount) + 1

	case models.StatusInProgress:
		// Position unchanged here; the renumber pass below keeps the
		// queue dense

	case models.StatusReady, models.StatusCompleted:
		updates["queue_position"] = nil

	case models.StatusCancelled:
		updates["queue_position"] = nil
		updates["cancelled_at"] = now
		if params.Reason != "" {
			notes := order.Notes
			if notes != "" {
				notes += "\n"
			}
			updates["notes"] = notes + "Cancelled: " + params.Reason
		}
	}

	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return nil, &StoreError{Op: "update order status", Err: err}
	}

	// Every transition changes queue membership or eligibility, so the
	// dense 1..N numbering is recomputed for the whole café
	if err := s.queue.Renumber(order.CafeID); err != nil {
		return nil, err
	}

	updated, err := s.GetOrder(order.ID)
	if err != nil {
		return nil, err
	}

	if notifier := GetNotifier(); notifier != nil {
		notifier.OrderUpdated(updated)
		// Publish failures never roll back the committed transition;
		// a missing snapshot just means watchers poll it instead
		if snapshot, snapErr := s.queue.Snapshot(order.CafeID); snapErr == nil {
			notifier.QueueUpdated(order.CafeID, snapshot)
		}
	}

	return updated, nil
}

// GetOrder returns an order with its items and customer loaded
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Items").Preload("Customer").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: orderID}
		}
		return nil, &StoreError{Op: "load order", Err: err}
	}
	return &order, nil
}

// ListCafeOrders returns a café's orders, newest first, optionally
// filtered by status
func (s *OrderService) ListCafeOrders(cafeID uint, statuses []string, limit int) ([]models.Order, error) {
	db := config.GetDB()
	if err := requireCafe(db, cafeID); err != nil {
		return nil, err
	}

	query := db.Preload("Items").Preload("Customer").
		Where("cafe_id = ?", cafeID).
		Order("created_at desc")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, &StoreError{Op: "list cafe orders", Err: err}
	}
	return orders, nil
}

// ListCustomerOrders returns a customer's own orders, newest first,
// optionally filtered by status
func (s *OrderService) ListCustomerOrders(customerID uint, statuses []string, limit int) ([]models.Order, error) {
	db := config.GetDB()
	query := db.Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at desc")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, &StoreError{Op: "list customer orders", Err: err}
	}
	return orders, nil
}

// GetOrderStats aggregates order counts and completed revenue for a
// café over a date range
func (s *OrderService) GetOrderStats(cafeID uint, from, to time.Time) (*OrderStats, error) {
	db := config.GetDB()
	if err := requireCafe(db, cafeID); err != nil {
		return nil, err
	}

	base := db.Model(&models.Order{}).
		Where("cafe_id = ? AND created_at >= ? AND created_at < ?", cafeID, from, to)

	stats := &OrderStats{}
	if err := base.Session(&gorm.Session{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, &StoreError{Op: "count orders", Err: err}
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", models.StatusCompleted).
		Count(&stats.CompletedOrders).Error; err != nil {
		return nil, &StoreError{Op: "count completed orders", Err: err}
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", models.StatusCancelled).
		Count(&stats.CancelledOrders).Error; err != nil {
		return nil, &StoreError{Op: "count cancelled orders", Err: err}
	}

	var revenue *float64
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", models.StatusCompleted).
		Select("SUM(total_amount)").
		Scan(&revenue).Error; err != nil {
		return nil, &StoreError{Op: "sum revenue", Err: err}
	}
	if revenue != nil {
		stats.Revenue = *revenue
	}

	return stats, nil
}
