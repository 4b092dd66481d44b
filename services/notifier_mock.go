package services

import (
	"sync"

	"github.com/beanline/beanline-api/models"
)

// MockNotifier is a mock implementation of Notifier for testing. It
// records every event so tests can assert on the fan-out.
type MockNotifier struct {
	mu             sync.Mutex
	CreatedOrders  []*models.Order
	UpdatedOrders  []*models.Order
	QueueSnapshots map[uint][]*QueueSnapshot
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		QueueSnapshots: make(map[uint][]*QueueSnapshot),
	}
}

// SetAsMockForTesting sets this mock as the global notifier instance for testing
func (m *MockNotifier) SetAsMockForTesting() {
	SetNotifier(m)
}

// OrderCreated records an order:new event
func (m *MockNotifier) OrderCreated(order *models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatedOrders = append(m.CreatedOrders, order)
}

// OrderUpdated records an order:updated event
func (m *MockNotifier) OrderUpdated(order *models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdatedOrders = append(m.UpdatedOrders, order)
}

// QueueUpdated records a queue:updated snapshot for the café
func (m *MockNotifier) QueueUpdated(cafeID uint, snapshot *QueueSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueueSnapshots[cafeID] = append(m.QueueSnapshots[cafeID], snapshot)
}

// LastQueueSnapshot returns the most recent queue snapshot published
// for the café, or nil if none was published
func (m *MockNotifier) LastQueueSnapshot(cafeID uint) *QueueSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshots := m.QueueSnapshots[cafeID]
	if len(snapshots) == 0 {
		return nil
	}
	return snapshots[len(snapshots)-1]
}
