package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/careernest/Backend-CareerNest/src/models"
	"github.com/careernest/Backend-CareerNest/src/repositories"
)

// In-memory stand-ins for the Mongo repositories. They mimic the store
// contracts closely enough for the engines to run unchanged.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		r.users[u.Id] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.users[id], nil
}

type fakeConnectionRepo struct {
	connections []*models.Connection
}

func (r *fakeConnectionRepo) Create(_ context.Context, conn *models.Connection) (*models.Connection, error) {
	now := time.Now()
	conn.Id = primitive.NewObjectID()
	conn.CreatedAt = now
	conn.UpdatedAt = now
	r.connections = append(r.connections, conn)
	return conn, nil
}

func (r *fakeConnectionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Connection, error) {
	for _, c := range r.connections {
		if c.Id == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) GetBetweenUsers(_ context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	for _, c := range r.connections {
		if (c.SenderId == a && c.ReceiverId == b) || (c.SenderId == b && c.ReceiverId == a) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.ConnectionStatus) (*models.Connection, error) {
	for _, c := range r.connections {
		if c.Id == id {
			c.Status = status
			c.UpdatedAt = time.Now()
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) Revive(_ context.Context, id, senderID, receiverID primitive.ObjectID, message string) (*models.Connection, error) {
	for _, c := range r.connections {
		if c.Id == id {
			now := time.Now()
			c.Status = models.ConnectionStatusPending
			c.SenderId = senderID
			c.ReceiverId = receiverID
			c.Message = message
			c.CreatedAt = now
			c.UpdatedAt = now
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	for i, c := range r.connections {
		if c.Id == id {
			r.connections = append(r.connections[:i], r.connections[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeConnectionRepo) matching(pred func(*models.Connection) bool) []models.Connection {
	var out []models.Connection
	for _, c := range r.connections {
		if pred(c) {
			out = append(out, *c)
		}
	}
	return out
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (r *fakeConnectionRepo) ListByUser(_ context.Context, userID primitive.ObjectID, status models.ConnectionStatus, page, limit int) ([]models.Connection, error) {
	return paginate(r.matching(func(c *models.Connection) bool {
		return c.Status == status && c.Involves(userID)
	}), page, limit), nil
}

func (r *fakeConnectionRepo) ListByReceiver(_ context.Context, userID primitive.ObjectID, status models.ConnectionStatus, page, limit int) ([]models.Connection, error) {
	return paginate(r.matching(func(c *models.Connection) bool {
		return c.Status == status && c.ReceiverId == userID
	}), page, limit), nil
}

func (r *fakeConnectionRepo) ListBySender(_ context.Context, userID primitive.ObjectID, status models.ConnectionStatus, page, limit int) ([]models.Connection, error) {
	return paginate(r.matching(func(c *models.Connection) bool {
		return c.Status == status && c.SenderId == userID
	}), page, limit), nil
}

func (r *fakeConnectionRepo) CountByUser(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus) (int64, error) {
	list, _ := r.ListByUser(ctx, userID, status, 1, len(r.connections)+1)
	return int64(len(list)), nil
}

func (r *fakeConnectionRepo) CountByReceiver(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus) (int64, error) {
	list, _ := r.ListByReceiver(ctx, userID, status, 1, len(r.connections)+1)
	return int64(len(list)), nil
}

func (r *fakeConnectionRepo) CountBySender(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus) (int64, error) {
	list, _ := r.ListBySender(ctx, userID, status, 1, len(r.connections)+1)
	return int64(len(list)), nil
}

func (r *fakeConnectionRepo) StatsByUser(_ context.Context, userID primitive.ObjectID) (map[models.ConnectionStatus]int64, error) {
	stats := make(map[models.ConnectionStatus]int64)
	for _, c := range r.connections {
		if c.Involves(userID) {
			stats[c.Status]++
		}
	}
	return stats, nil
}

type fakeMessageRepo struct {
	messages []*models.Message
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *models.Message) (*models.Message, error) {
	now := time.Now()
	msg.Id = primitive.NewObjectID()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	r.messages = append(r.messages, msg)
	return msg, nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Message, error) {
	for _, m := range r.messages {
		if m.Id == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) between(a, b primitive.ObjectID) []*models.Message {
	var out []*models.Message
	for _, m := range r.messages {
		if (m.SenderId == a && m.ReceiverId == b) || (m.SenderId == b && m.ReceiverId == a) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeMessageRepo) ListBetweenUsers(_ context.Context, a, b primitive.ObjectID, page, limit int) ([]models.Message, error) {
	pageItems := paginate(r.between(a, b), page, limit)
	out := make([]models.Message, 0, len(pageItems))
	for _, m := range pageItems {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMessageRepo) CountBetweenUsers(_ context.Context, a, b primitive.ObjectID) (int64, error) {
	return int64(len(r.between(a, b))), nil
}

func (r *fakeMessageRepo) LastBetweenUsers(_ context.Context, a, b primitive.ObjectID) (*models.Message, error) {
	msgs := r.between(a, b)
	if len(msgs) == 0 {
		return nil, nil
	}
	copied := *msgs[0]
	return &copied, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, id primitive.ObjectID) (*models.Message, error) {
	for _, m := range r.messages {
		if m.Id == id {
			m.IsRead = true
			m.UpdatedAt = time.Now()
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) MarkManyRead(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	idSet := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	var modified int64
	for _, m := range r.messages {
		if _, ok := idSet[m.Id]; ok && !m.IsRead {
			m.IsRead = true
			modified++
		}
	}
	return modified, nil
}

func (r *fakeMessageRepo) MarkAllRead(_ context.Context, receiverID, senderID primitive.ObjectID) (int64, error) {
	var modified int64
	for _, m := range r.messages {
		if m.ReceiverId == receiverID && m.SenderId == senderID && !m.IsRead {
			m.IsRead = true
			modified++
		}
	}
	return modified, nil
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, receiverID primitive.ObjectID) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ReceiverId == receiverID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) CountUnreadFrom(_ context.Context, receiverID, senderID primitive.ObjectID) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ReceiverId == receiverID && m.SenderId == senderID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	for i, m := range r.messages {
		if m.Id == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeMessageRepo) Search(_ context.Context, userID primitive.ObjectID, text string, page, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.messages {
		if m.SenderId != userID && m.ReceiverId != userID {
			continue
		}
		if strings.Contains(strings.ToLower(m.Text), strings.ToLower(text)) {
			out = append(out, *m)
		}
	}
	return paginate(out, page, limit), nil
}

type fakeNotificationRepo struct {
	notifications []*models.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	now := time.Now()
	n.Id = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now
	r.notifications = append(r.notifications, n)
	return n, nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	for _, n := range r.notifications {
		if n.Id == id {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) matches(n *models.Notification, userID primitive.ObjectID, filter repositories.NotificationFilter) bool {
	if n.UserId != userID {
		return false
	}
	if filter.Type != nil && n.Type != *filter.Type {
		return false
	}
	if filter.IsRead != nil && n.IsRead != *filter.IsRead {
		return false
	}
	return true
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID primitive.ObjectID, filter repositories.NotificationFilter, page, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.notifications {
		if r.matches(n, userID, filter) {
			out = append(out, *n)
		}
	}
	return paginate(out, page, limit), nil
}

func (r *fakeNotificationRepo) CountByUser(ctx context.Context, userID primitive.ObjectID, filter repositories.NotificationFilter) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if r.matches(n, userID, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserId == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	for _, n := range r.notifications {
		if n.Id == id {
			n.IsRead = true
			n.UpdatedAt = time.Now()
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var modified int64
	for _, n := range r.notifications {
		if n.UserId == userID && !n.IsRead {
			n.IsRead = true
			modified++
		}
	}
	return modified, nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	for i, n := range r.notifications {
		if n.Id == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeNotificationRepo) deleteWhere(pred func(*models.Notification) bool) int64 {
	var kept []*models.Notification
	var deleted int64
	for _, n := range r.notifications {
		if pred(n) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return deleted
}

func (r *fakeNotificationRepo) DeleteRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	return r.deleteWhere(func(n *models.Notification) bool {
		return n.UserId == userID && n.IsRead
	}), nil
}

func (r *fakeNotificationRepo) DeleteAll(_ context.Context, userID primitive.ObjectID) (int64, error) {
	return r.deleteWhere(func(n *models.Notification) bool {
		return n.UserId == userID
	}), nil
}

func (r *fakeNotificationRepo) DeleteOldRead(_ context.Context, olderThan time.Time) (int64, error) {
	return r.deleteWhere(func(n *models.Notification) bool {
		return n.IsRead && n.CreatedAt.Before(olderThan)
	}), nil
}

func (r *fakeNotificationRepo) StatsByUser(_ context.Context, userID primitive.ObjectID) ([]repositories.TypeStat, error) {
	byType := make(map[models.NotificationType]*repositories.TypeStat)
	for _, n := range r.notifications {
		if n.UserId != userID {
			continue
		}
		stat, ok := byType[n.Type]
		if !ok {
			stat = &repositories.TypeStat{Type: n.Type}
			byType[n.Type] = stat
		}
		stat.Total++
		if !n.IsRead {
			stat.Unread++
		}
	}
	out := make([]repositories.TypeStat, 0, len(byType))
	for _, stat := range byType {
		out = append(out, *stat)
	}
	return out, nil
}

// fakeDelivery records every push for assertion.
type fakeDelivery struct {
	mu     sync.Mutex
	pushes []push
}

type push struct {
	userID  string
	room    string
	event   string
	payload any
}

func (d *fakeDelivery) PushToUser(userID, event string, payload any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushes = append(d.pushes, push{userID: userID, event: event, payload: payload})
}

func (d *fakeDelivery) PushToRoom(room, event string, payload any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushes = append(d.pushes, push{room: room, event: event, payload: payload})
}

func (d *fakeDelivery) IsOnline(string) bool { return false }

func (d *fakeDelivery) eventsFor(userID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, p := range d.pushes {
		if p.userID == userID {
			out = append(out, p.event)
		}
	}
	return out
}
