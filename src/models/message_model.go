package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single chat message between two connected users.
type Message struct {
	Id               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderId         primitive.ObjectID `json:"senderId" bson:"senderId"`
	ReceiverId       primitive.ObjectID `json:"receiverId" bson:"receiverId"`
	Text             string             `json:"text" bson:"text"`
	AttachmentFileId primitive.ObjectID `json:"attachmentFileId,omitempty" bson:"attachmentFileId,omitempty"`
	IsRead           bool               `json:"isRead" bson:"isRead"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// MaxMessageLength caps chat message text.
const MaxMessageLength = 5000

// MaxConnectionMessageLength caps the optional note on a connection request.
const MaxConnectionMessageLength = 500
