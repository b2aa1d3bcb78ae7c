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

// MessageRepository is the store contract for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	ListBetweenUsers(ctx context.Context, a, b primitive.ObjectID, page, limit int) ([]models.Message, error)
	CountBetweenUsers(ctx context.Context, a, b primitive.ObjectID) (int64, error)
	LastBetweenUsers(ctx context.Context, a, b primitive.ObjectID) (*models.Message, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	MarkManyRead(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	MarkAllRead(ctx context.Context, receiverID, senderID primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, receiverID primitive.ObjectID) (int64, error)
	CountUnreadFrom(ctx context.Context, receiverID, senderID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, userID primitive.ObjectID, text string, page, limit int) ([]models.Message, error)
}

type mongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &mongoMessageRepository{collection: db.Collection("messages")}
}

func (r *mongoMessageRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	now := time.Now()
	msg.Id = primitive.NewObjectID()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *mongoMessageRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func betweenUsersFilter(a, b primitive.ObjectID) bson.M {
	return bson.M{
		"$or": []bson.M{
			{"senderId": a, "receiverId": b},
			{"senderId": b, "receiverId": a},
		},
	}
}

func (r *mongoMessageRepository) ListBetweenUsers(ctx context.Context, a, b primitive.ObjectID, page, limit int) ([]models.Message, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, betweenUsersFilter(a, b), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *mongoMessageRepository) CountBetweenUsers(ctx context.Context, a, b primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, betweenUsersFilter(a, b))
}

func (r *mongoMessageRepository) LastBetweenUsers(ctx context.Context, a, b primitive.ObjectID) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})

	var msg models.Message
	err := r.collection.FindOne(ctx, betweenUsersFilter(a, b), opts).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *mongoMessageRepository) MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now()}}

	var msg models.Message
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *mongoMessageRepository) MarkManyRead(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoMessageRepository) MarkAllRead(ctx context.Context, receiverID, senderID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"senderId": senderID, "receiverId": receiverID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoMessageRepository) CountUnread(ctx context.Context, receiverID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiverId": receiverID, "isRead": false})
}

func (r *mongoMessageRepository) CountUnreadFrom(ctx context.Context, receiverID, senderID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"senderId": senderID, "receiverId": receiverID, "isRead": false})
}

func (r *mongoMessageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Search runs a text search over message content, scoped to messages the
// user participates in.
func (r *mongoMessageRepository) Search(ctx context.Context, userID primitive.ObjectID, text string, page, limit int) ([]models.Message, error) {
	filter := bson.M{
		"$text": bson.M{"$search": text},
		"$or":   []bson.M{{"senderId": userID}, {"receiverId": userID}},
	}
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
