package services

import (
	"log"

	"github.com/beanline/beanline-api/models"
	"github.com/beanline/beanline-api/realtime"
)

// Realtime event names
const (
	EventOrderNew     = "order:new"
	EventOrderUpdated = "order:updated"
	EventQueueUpdated = "queue:updated"
)

// Notifier fans lifecycle and queue events out to connected clients.
// Delivery is best-effort: a failed publish is logged and swallowed,
// because the state change has already committed and must not be
// rolled back over a lost notification. Clients reconcile by polling.
type Notifier interface {
	// OrderCreated announces a new order to the café's staff channel
	OrderCreated(order *models.Order)

	// OrderUpdated announces a status change to the order's owner and
	// the café's staff channel
	OrderUpdated(order *models.Order)

	// QueueUpdated pushes a fresh queue snapshot to public watchers
	QueueUpdated(cafeID uint, snapshot *QueueSnapshot)
}

// HubNotifier implements Notifier on top of a realtime publisher
// (the in-process hub, or the Redis bridge when one is configured)
type HubNotifier struct {
	publisher realtime.Publisher
}

var notifierInstance Notifier

// InitNotifier initializes the notifier with a realtime publisher
func InitNotifier(publisher realtime.Publisher) Notifier {
	notifierInstance = &HubNotifier{publisher: publisher}
	return notifierInstance
}

// GetNotifier returns the initialized notifier instance
func GetNotifier() Notifier {
	return notifierInstance
}

// SetNotifier sets the notifier instance (primarily for testing)
func SetNotifier(n Notifier) {
	notifierInstance = n
}

// OrderCreated announces a new order to the café's staff channel
func (n *HubNotifier) OrderCreated(order *models.Order) {
	n.publish(realtime.CafeStaff(order.CafeID), EventOrderNew, order)
}

// OrderUpdated announces a status change to the order's owner and the
// café's staff channel
func (n *HubNotifier) OrderUpdated(order *models.Order) {
	n.publish(realtime.OrderOwner(order.CustomerID), EventOrderUpdated, order)
	n.publish(realtime.CafeStaff(order.CafeID), EventOrderUpdated, order)
}

// QueueUpdated pushes a fresh queue snapshot to public watchers
func (n *HubNotifier) QueueUpdated(cafeID uint, snapshot *QueueSnapshot) {
	n.publish(realtime.PublicQueue(cafeID), EventQueueUpdated, snapshot)
}

func (n *HubNotifier) publish(topic realtime.Topic, event string, data interface{}) {
	if err := n.publisher.Publish(topic, event, data); err != nil {
		pubErr := &PublishError{Topic: topic.String(), Err: err}
		log.Printf("notifier: %v", pubErr)
	}
}
