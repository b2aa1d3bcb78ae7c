package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the directory view of a platform account. The messaging core only
// reads users; account management lives elsewhere.
type User struct {
	Id             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	Username       string             `json:"username" bson:"username"`
	Email          string             `json:"email" bson:"email"`
	Password       string             `json:"-" bson:"password,omitempty"`
	Role           string             `json:"role" bson:"role"`
	ProfilePicture string             `json:"profile_picture" bson:"profile_picture"`
	Headline       string             `json:"headline" bson:"headline"`
}

// UserDto is the trimmed user shape embedded in list responses.
type UserDto struct {
	Id             primitive.ObjectID `json:"id" bson:"_id"`
	Name           string             `json:"name" bson:"name"`
	Username       string             `json:"username" bson:"username"`
	Email          string             `json:"email" bson:"email"`
	Role           string             `json:"role" bson:"role"`
	ProfilePicture string             `json:"profilePicture" bson:"profile_picture"`
	Headline       string             `json:"headline,omitempty" bson:"headline"`
}

// Dto converts a full user document to its list representation.
func (u *User) Dto() UserDto {
	return UserDto{
		Id:             u.Id,
		Name:           u.Name,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		Headline:       u.Headline,
	}
}
