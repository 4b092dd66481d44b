package services

import (
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/beanline/beanline-api/config"
	"github.com/beanline/beanline-api/models"
	"gorm.io/gorm"
)

// QueueEntry is one row of a café's authenticated queue view
type QueueEntry struct {
	OrderID            uint       `json:"order_id"`
	CustomerName       string     `json:"customer_name"`
	Status             string     `json:"status"`
	EstimatedReadyTime *time.Time `json:"estimated_ready_time"`
	QueuePosition      int        `json:"queue_position"`
	ItemCount          int        `json:"item_count"`
}

// PublicQueueEntry is the anonymized queue view served to
// unauthenticated watchers. No contact information is exposed and the
// customer name is masked.
type PublicQueueEntry struct {
	OrderID            uint       `json:"order_id"`
	CustomerName       string     `json:"customer_name"`
	Status             string     `json:"status"`
	EstimatedReadyTime *time.Time `json:"estimated_ready_time"`
	QueuePosition      int        `json:"queue_position"`
	ItemCount          int        `json:"item_count"`
}

// QueueInfo summarizes a café's queue for wait-time display
type QueueInfo struct {
	QueueLength              int `json:"queue_length"`
	EstimatedWaitTimeMinutes int `json:"estimated_wait_time_minutes"`
	CurrentlyServingPosition int `json:"currently_serving_position"`
}

// QueueSnapshot is the payload broadcast to public queue watchers:
// the anonymized queue plus the recomputed wait-time summary
type QueueSnapshot struct {
	Queue []PublicQueueEntry `json:"queue"`
	Info  QueueInfo          `json:"info"`
}

// QueueService derives the per-café queue projection from stored
// orders. Queue positions are never written by clients; they are
// recomputed here after every lifecycle transition.
type QueueService struct{}

// NewQueueService creates a new QueueService
func NewQueueService() *QueueService {
	return &QueueService{}
}

// queueLocks serializes renumbering per café. Two transitions for the
// same café must not interleave partial position writes.
var queueLocks sync.Map

func cafeQueueLock(cafeID uint) *sync.Mutex {
	lock, _ := queueLocks.LoadOrStore(cafeID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// activeOrders loads a café's accepted/in-progress orders sorted into
// queue order: by existing position, with any stragglers lacking a
// position ranked last by creation time.
func (s *QueueService) activeOrders(db *gorm.DB, cafeID uint, preloadItems bool) ([]models.Order, error) {
	query := db.Where("cafe_id = ? AND status IN ?", cafeID, models.ActiveStatuses)
	if preloadItems {
		query = query.Preload("Items").Preload("Customer")
	} else {
		query = query.Preload("Customer")
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, &StoreError{Op: "list active orders", Err: err}
	}

	// Sort in Go rather than SQL: NULL ordering differs between
	// postgres and sqlite, and the queue is small
	sort.SliceStable(orders, func(i, j int) bool {
		pi, pj := orders[i].QueuePosition, orders[j].QueuePosition
		switch {
		case pi != nil && pj != nil:
			return *pi < *pj
		case pi != nil:
			return true
		case pj != nil:
			return false
		default:
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
	})

	return orders, nil
}

// Renumber recomputes queue_position for every active order of the
// café as its dense 1-based rank. It is a full renumbering pass, not
// an in-place decrement, and is idempotent: running it twice with no
// intervening transition yields identical positions.
func (s *QueueService) Renumber(cafeID uint) error {
	lock := cafeQueueLock(cafeID)
	lock.Lock()
	defer lock.Unlock()

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		orders, err := s.activeOrders(tx, cafeID, false)
		if err != nil {
			return err
		}

		for i := range orders {
			position := i + 1
			if orders[i].QueuePosition != nil && *orders[i].QueuePosition == position {
				continue
			}
			if err := tx.Model(&models.Order{}).
				Where("id = ?", orders[i].ID).
				Update("queue_position", position).Error; err != nil {
				return &StoreError{Op: "renumber queue", Err: err}
			}
		}
		return nil
	})

	if err != nil {
		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			return err
		}
		return &StoreError{Op: "renumber queue", Err: err}
	}
	return nil
}

// GetQueue returns the café's current queue in position order
func (s *QueueService) GetQueue(cafeID uint) ([]QueueEntry, error) {
	db := config.GetDB()
	if err := requireCafe(db, cafeID); err != nil {
		return nil, err
	}

	orders, err := s.activeOrders(db, cafeID, true)
	if err != nil {
		return nil, err
	}

	entries := make([]QueueEntry, 0, len(orders))
	for i := range orders {
		order := &orders[i]
		entries = append(entries, QueueEntry{
			OrderID:            order.ID,
			CustomerName:       displayName(order),
			Status:             order.Status,
			EstimatedReadyTime: order.EstimatedReadyTime,
			QueuePosition:      positionOf(order),
			ItemCount:          len(order.Items),
		})
	}
	return entries, nil
}

// GetPublicQueue returns the anonymized queue view for unauthenticated
// watchers
func (s *QueueService) GetPublicQueue(cafeID uint) ([]PublicQueueEntry, error) {
	queue, err := s.GetQueue(cafeID)
	if err != nil {
		return nil, err
	}

	entries := make([]PublicQueueEntry, 0, len(queue))
	for _, entry := range queue {
		entries = append(entries, PublicQueueEntry{
			OrderID:            entry.OrderID,
			CustomerName:       AnonymizeName(entry.CustomerName),
			Status:             entry.Status,
			EstimatedReadyTime: entry.EstimatedReadyTime,
			QueuePosition:      entry.QueuePosition,
			ItemCount:          entry.ItemCount,
		})
	}
	return entries, nil
}

// GetQueueInfo computes the wait-time summary for a café.
//
// The estimate has two paths: normally the last-queued order's
// estimated ready time is the queue's horizon; orders accepted before
// estimates were mandatory lack one, so the fallback averages total
// preparation time across the queue. The fallback stays until no such
// legacy orders remain.
func (s *QueueService) GetQueueInfo(cafeID uint) (*QueueInfo, error) {
	db := config.GetDB()
	if err := requireCafe(db, cafeID); err != nil {
		return nil, err
	}

	orders, err := s.activeOrders(db, cafeID, true)
	if err != nil {
		return nil, err
	}

	info := &QueueInfo{QueueLength: len(orders)}
	if len(orders) == 0 {
		return info, nil
	}

	info.CurrentlyServingPosition = positionOf(&orders[0])

	last := &orders[len(orders)-1]
	if last.EstimatedReadyTime != nil {
		remaining := time.Until(*last.EstimatedReadyTime)
		minutes := int(math.Ceil(remaining.Minutes()))
		if minutes < 0 {
			minutes = 0
		}
		info.EstimatedWaitTimeMinutes = minutes
		return info, nil
	}

	// Fallback: average total prep time across all queued orders
	var totalPrep float64
	for i := range orders {
		for _, item := range orders[i].Items {
			totalPrep += float64(item.PreparationTime * item.Quantity)
		}
	}
	info.EstimatedWaitTimeMinutes = int(math.Ceil(totalPrep / float64(len(orders))))
	return info, nil
}

// Snapshot bundles the public queue with fresh wait-time info for
// realtime broadcast
func (s *QueueService) Snapshot(cafeID uint) (*QueueSnapshot, error) {
	queue, err := s.GetPublicQueue(cafeID)
	if err != nil {
		return nil, err
	}
	info, err := s.GetQueueInfo(cafeID)
	if err != nil {
		return nil, err
	}
	return &QueueSnapshot{Queue: queue, Info: *info}, nil
}

// AnonymizeName masks a customer name down to its first character for
// the public queue view
func AnonymizeName(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return "***"
	}
	return string(runes[0]) + "***"
}

// displayName picks the contact name given at order time, falling back
// to the customer's profile name
func displayName(order *models.Order) string {
	if order.CustomerName != "" {
		return order.CustomerName
	}
	return order.Customer.Name
}

// positionOf returns the order's queue position, or 0 if unset
func positionOf(order *models.Order) int {
	if order.QueuePosition == nil {
		return 0
	}
	return *order.QueuePosition
}

// requireCafe returns NotFoundError if the café does not exist
func requireCafe(db *gorm.DB, cafeID uint) error {
	var cafe models.Cafe
	if err := db.Select("id").First(&cafe, cafeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "cafe", ID: cafeID}
		}
		return &StoreError{Op: "load cafe", Err: err}
	}
	return nil
}
