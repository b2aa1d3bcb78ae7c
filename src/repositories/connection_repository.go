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

// ConnectionRepository is the store contract for connection records.
// Lookups between users match both orderings of the pair; the unique index
// on (senderId, receiverId) rejects duplicate inserts atomically.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *models.Connection) (*models.Connection, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error)
	GetBetweenUsers(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ConnectionStatus) (*models.Connection, error)
	Revive(ctx context.Context, id, senderID, receiverID primitive.ObjectID, message string) (*models.Connection, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus, page, limit int) ([]models.Connection, error)
	ListByReceiver(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus, page, limit int) ([]models.Connection, error)
	ListBySender(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus, page, limit int) ([]models.Connection, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus) (int64, error)
	CountByReceiver(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus) (int64, error)
	CountBySender(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus) (int64, error)
	StatsByUser(ctx context.Context, userID primitive.ObjectID) (map[models.ConnectionStatus]int64, error)
}

type mongoConnectionRepository struct {
	collection *mongo.Collection
}

func NewConnectionRepository(db *mongo.Database) ConnectionRepository {
	return &mongoConnectionRepository{collection: db.Collection("connections")}
}

func (r *mongoConnectionRepository) Create(ctx context.Context, conn *models.Connection) (*models.Connection, error) {
	now := time.Now()
	conn.Id = primitive.NewObjectID()
	conn.CreatedAt = now
	conn.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func (r *mongoConnectionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error) {
	var conn models.Connection
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *mongoConnectionRepository) GetBetweenUsers(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"senderId": a, "receiverId": b},
			{"senderId": b, "receiverId": a},
		},
	}

	var conn models.Connection
	err := r.collection.FindOne(ctx, filter).Decode(&conn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *mongoConnectionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ConnectionStatus) (*models.Connection, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	return r.findOneAndUpdate(ctx, id, update)
}

// Revive resets a rejected record back to pending for a fresh proposal.
// Sender and receiver are written explicitly so a re-proposal from the other
// direction flips the record's orientation.
func (r *mongoConnectionRepository) Revive(ctx context.Context, id, senderID, receiverID primitive.ObjectID, message string) (*models.Connection, error) {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":     models.ConnectionStatusPending,
		"senderId":   senderID,
		"receiverId": receiverID,
		"message":    message,
		"createdAt":  now,
		"updatedAt":  now,
	}}
	return r.findOneAndUpdate(ctx, id, update)
}

func (r *mongoConnectionRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Connection, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var conn models.Connection
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&conn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *mongoConnectionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoConnectionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus, page, limit int) ([]models.Connection, error) {
	filter := bson.M{
		"$or":    []bson.M{{"senderId": userID}, {"receiverId": userID}},
		"status": status,
	}
	return r.list(ctx, filter, bson.M{"updatedAt": -1}, page, limit)
}

func (r *mongoConnectionRepository) ListByReceiver(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus, page, limit int) ([]models.Connection, error) {
	return r.list(ctx, bson.M{"receiverId": userID, "status": status}, bson.M{"createdAt": -1}, page, limit)
}

func (r *mongoConnectionRepository) ListBySender(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus, page, limit int) ([]models.Connection, error) {
	return r.list(ctx, bson.M{"senderId": userID, "status": status}, bson.M{"createdAt": -1}, page, limit)
}

func (r *mongoConnectionRepository) list(ctx context.Context, filter bson.M, sort bson.M, page, limit int) ([]models.Connection, error) {
	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var connections []models.Connection
	if err := cursor.All(ctx, &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

func (r *mongoConnectionRepository) CountByUser(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"$or":    []bson.M{{"senderId": userID}, {"receiverId": userID}},
		"status": status,
	})
}

func (r *mongoConnectionRepository) CountByReceiver(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiverId": userID, "status": status})
}

func (r *mongoConnectionRepository) CountBySender(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"senderId": userID, "status": status})
}

func (r *mongoConnectionRepository) StatsByUser(ctx context.Context, userID primitive.ObjectID) (map[models.ConnectionStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$or": []bson.M{{"senderId": userID}, {"receiverId": userID}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.ConnectionStatus `bson:"_id"`
		Count  int64                   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := make(map[models.ConnectionStatus]int64, len(rows))
	for _, row := range rows {
		stats[row.Status] = row.Count
	}
	return stats, nil
}
