package service

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"branchstock/internal/model"
	"branchstock/internal/repository"
	"branchstock/internal/ws"
)

// Notifier fans alerts out to their recipients and pushes them over the
// websocket hub. Fan-out is best-effort by contract: every failure is logged
// and swallowed so it can never fail the operation that triggered it.
type Notifier interface {
	NotifyLowStock(itemID, locationID uuid.UUID, itemName, locationName string, quantity, threshold int, actor *model.User)
	NotifyTransferShipped(t *model.StockTransfer, actor *model.User)
	NotifyTransferCompleted(t *model.StockTransfer, actor *model.User)
	NotifyTransferDispute(t *model.StockTransfer, actor *model.User)

	ListForUser(userID uuid.UUID, limit int) ([]model.NotificationResponse, error)
	MarkRead(notificationID, userID uuid.UUID) error
	UnreadCount(userID uuid.UUID) (int64, error)
}

type notifier struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	hub           *ws.Hub
	log           *zap.Logger
}

func NewNotifier(notifications repository.NotificationRepository, users repository.UserRepository, hub *ws.Hub, log *zap.Logger) Notifier {
	return &notifier{notifications: notifications, users: users, hub: hub, log: log}
}

// recipientsFor collects admins plus, when branchID is set, the branch staff.
func (n *notifier) recipientsFor(branchID *uuid.UUID, exclude uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{exclude: true}
	var ids []uuid.UUID

	admins, err := n.users.FindAdmins()
	if err != nil {
		n.log.Warn("notification recipient lookup failed", zap.Error(err))
	}
	for _, u := range admins {
		if !seen[u.ID] {
			seen[u.ID] = true
			ids = append(ids, u.ID)
		}
	}

	if branchID != nil {
		staff, err := n.users.FindByLocation(*branchID)
		if err != nil {
			n.log.Warn("branch staff lookup failed", zap.Error(err))
		}
		for _, u := range staff {
			if !seen[u.ID] {
				seen[u.ID] = true
				ids = append(ids, u.ID)
			}
		}
	}
	return ids
}

func (n *notifier) deliver(notification *model.Notification, recipientIDs []uuid.UUID) {
	if len(recipientIDs) == 0 {
		return
	}
	if err := n.notifications.Create(notification, recipientIDs); err != nil {
		n.log.Warn("notification create failed",
			zap.String("type", string(notification.Type)), zap.Error(err))
		return
	}

	if n.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event":        "notification",
		"notification": notification,
	})
	if err != nil {
		return
	}
	// Non-blocking: a saturated hub drops the push, the stored notification
	// still reaches the recipient on the next listing.
	select {
	case n.hub.Send <- ws.Direct{UserIDs: recipientIDs, Payload: payload}:
	default:
		n.log.Warn("ws push dropped, hub saturated")
	}
}

func (n *notifier) NotifyLowStock(itemID, locationID uuid.UUID, itemName, locationName string, quantity, threshold int, actor *model.User) {
	notification := &model.Notification{
		SenderID:  &actor.ID,
		Title:     "Low stock alert",
		Message:   fmt.Sprintf("%s at %s is down to %d (threshold %d)", itemName, locationName, quantity, threshold),
		Type:      model.NotifyLowStock,
		RelatedID: &itemID,
	}
	n.deliver(notification, n.recipientsFor(&locationID, actor.ID))
}

func (n *notifier) NotifyTransferShipped(t *model.StockTransfer, actor *model.User) {
	notification := &model.Notification{
		SenderID:  &actor.ID,
		Title:     "Incoming stock transfer",
		Message:   fmt.Sprintf("Transfer %s shipped: %d units on the way", t.Reference, t.ShippedQuantity),
		Type:      model.NotifyTransferShipped,
		RelatedID: &t.ID,
	}
	n.deliver(notification, n.recipientsFor(&t.DestinationLocationID, actor.ID))
}

func (n *notifier) NotifyTransferCompleted(t *model.StockTransfer, actor *model.User) {
	notification := &model.Notification{
		SenderID:  &actor.ID,
		Title:     "Transfer completed",
		Message:   fmt.Sprintf("Transfer %s received in full (%d units)", t.Reference, t.ReceivedQuantity),
		Type:      model.NotifyTransferCompleted,
		RelatedID: &t.ID,
	}
	n.deliver(notification, n.recipientsFor(&t.SourceLocationID, actor.ID))
}

func (n *notifier) NotifyTransferDispute(t *model.StockTransfer, actor *model.User) {
	notification := &model.Notification{
		SenderID: &actor.ID,
		Title:    "Transfer shortfall",
		Message: fmt.Sprintf("Transfer %s closed short: %d shipped, %d received, %d disputed",
			t.Reference, t.ShippedQuantity, t.ReceivedQuantity, t.DisputeQuantity),
		Type:      model.NotifyDispute,
		RelatedID: &t.ID,
	}
	// Shortfalls go to admins only; the branches already know their side.
	n.deliver(notification, n.recipientsFor(nil, actor.ID))
}

func (n *notifier) ListForUser(userID uuid.UUID, limit int) ([]model.NotificationResponse, error) {
	notifications, err := n.notifications.ListForUser(userID, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(notifications))
	for i, notif := range notifications {
		ids[i] = notif.ID
	}
	read, err := n.notifications.ReadIDsForUser(userID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.NotificationResponse, len(notifications))
	for i, notif := range notifications {
		out[i] = model.NotificationResponse{Notification: notif, IsRead: read[notif.ID]}
	}
	return out, nil
}

func (n *notifier) MarkRead(notificationID, userID uuid.UUID) error {
	ok, err := n.notifications.IsRecipient(notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return n.notifications.MarkRead(notificationID, userID)
}

func (n *notifier) UnreadCount(userID uuid.UUID) (int64, error) {
	return n.notifications.UnreadCount(userID)
}
