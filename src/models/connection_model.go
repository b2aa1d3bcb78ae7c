package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Connection is a relationship record between two users. A single record
// exists per pair regardless of which side initiated it.
type Connection struct {
	Id         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderId   primitive.ObjectID `json:"senderId" bson:"senderId"`
	ReceiverId primitive.ObjectID `json:"receiverId" bson:"receiverId"`
	Status     ConnectionStatus   `json:"status" bson:"status"`
	Message    string             `json:"message,omitempty" bson:"message,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusRejected ConnectionStatus = "rejected"
	ConnectionStatusBlocked  ConnectionStatus = "blocked"
)

// Involves reports whether the given user is one of the two parties.
func (c *Connection) Involves(userID primitive.ObjectID) bool {
	return c.SenderId == userID || c.ReceiverId == userID
}

// OtherParty returns the counterpart of the given user in this connection.
func (c *Connection) OtherParty(userID primitive.ObjectID) primitive.ObjectID {
	if c.SenderId == userID {
		return c.ReceiverId
	}
	return c.SenderId
}
