package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/careernest/Backend-CareerNest/src/models"
)

// NotificationFilter narrows notification listings. Nil fields are ignored.
type NotificationFilter struct {
	Type   *models.NotificationType
	IsRead *bool
}

// TypeStat is one row of the per-type notification aggregation.
type TypeStat struct {
	Type   models.NotificationType `bson:"_id"`
	Total  int64                   `bson:"total"`
	Unread int64                   `bson:"unread"`
}

// NotificationRepository is the store contract for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, filter NotificationFilter, page, limit int) ([]models.Notification, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID, filter NotificationFilter) (int64, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteAll(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteOldRead(ctx context.Context, olderThan time.Time) (int64, error)
	StatsByUser(ctx context.Context, userID primitive.ObjectID) ([]TypeStat, error)
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection("notifications")}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	now := time.Now()
	n.Id = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *mongoNotificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func userFilter(userID primitive.ObjectID, filter NotificationFilter) bson.M {
	query := bson.M{"userId": userID}
	if filter.Type != nil {
		query["type"] = *filter.Type
	}
	if filter.IsRead != nil {
		query["isRead"] = *filter.IsRead
	}
	return query
}

func (r *mongoNotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, filter NotificationFilter, page, limit int) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, userFilter(userID, filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *mongoNotificationRepository) CountByUser(ctx context.Context, userID primitive.ObjectID, filter NotificationFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, userFilter(userID, filter))
}

func (r *mongoNotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
}

func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now()}}

	var n models.Notification
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *mongoNotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoNotificationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoNotificationRepository) DeleteRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID, "isRead": true})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoNotificationRepository) DeleteAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteOldRead purges already-read notifications created before the cutoff.
func (r *mongoNotificationRepository) DeleteOldRead(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"isRead":    true,
		"createdAt": bson.M{"$lt": olderThan},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoNotificationRepository) StatsByUser(ctx context.Context, userID primitive.ObjectID) ([]TypeStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$type",
			"total": bson.M{"$sum": 1},
			"unread": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$isRead", false}}, 1, 0},
			}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []TypeStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
