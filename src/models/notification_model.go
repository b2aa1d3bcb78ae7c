package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a user-visible record of an event relevant to one user.
// It is only readable and mutable by its owner.
type Notification struct {
	Id        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserId    primitive.ObjectID `json:"userId" bson:"userId"`
	Type      NotificationType   `json:"type" bson:"type"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	RelatedId primitive.ObjectID `json:"relatedId,omitempty" bson:"relatedId,omitempty"`
	IsRead    bool               `json:"isRead" bson:"isRead"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type NotificationType string

const (
	NotificationTypeNewMessage        NotificationType = "new_message"
	NotificationTypeConnectionRequest NotificationType = "connection_request"
	NotificationTypeConnectionAccept  NotificationType = "connection_accept"
	NotificationTypeJobMatch          NotificationType = "job_match"
	NotificationTypeApplicationStatus NotificationType = "application_status"
)
