package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	Id           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	FirstName    string               `json:"firstName" bson:"firstName"`
	LastName     string               `json:"lastName" bson:"lastName"`
	UserName     string               `json:"userName" bson:"userName"`
	Email        string               `json:"email" bson:"email"`
	Password     string               `json:"password,omitempty" bson:"password"`
	ProfileImage string               `json:"profileImage" bson:"profileImage"`
	CoverImage   string               `json:"coverImage" bson:"coverImage"`
	Headline     string               `json:"headline" bson:"headline"`
	Location     string               `json:"location" bson:"location"`
	Skills       []string             `json:"skills" bson:"skills"`
	Education    []Education          `json:"education" bson:"education"`
	Experience   []Experience         `json:"experience" bson:"experience"`
	Connections  []primitive.ObjectID `json:"connection" bson:"connection"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserDto is the public display profile embedded in feed items,
// connection requests and notifications.
type UserDto struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	FirstName    string             `json:"firstName" bson:"firstName"`
	LastName     string             `json:"lastName" bson:"lastName"`
	UserName     string             `json:"userName" bson:"userName"`
	ProfileImage string             `json:"profileImage" bson:"profileImage"`
	Headline     string             `json:"headline,omitempty" bson:"headline"`
}

type Education struct {
	College      string `json:"college" bson:"college" validate:"required,max=120"`
	Degree       string `json:"degree" bson:"degree" validate:"max=120"`
	FieldOfStudy string `json:"fieldOfStudy" bson:"fieldOfStudy" validate:"max=120"`
}

type Experience struct {
	Title       string `json:"title" bson:"title" validate:"required,max=120"`
	Company     string `json:"company" bson:"company" validate:"required,max=120"`
	Description string `json:"description" bson:"description" validate:"max=2000"`
}

var validate = validator.New()

// ValidateProfileUpdate checks the typed profile sub-documents before they
// reach the database.
func ValidateProfileUpdate(skills []string, education []Education, experience []Experience) error {
	for _, s := range skills {
		if err := validate.Var(s, "required,max=80"); err != nil {
			return err
		}
	}
	for _, e := range education {
		if err := validate.Struct(e); err != nil {
			return err
		}
	}
	for _, e := range experience {
		if err := validate.Struct(e); err != nil {
			return err
		}
	}
	return nil
}

// Dto strips credentials and private fields for embedding in responses.
func (u *User) Dto() UserDto {
	return UserDto{
		ID:           u.Id,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		UserName:     u.UserName,
		ProfileImage: u.ProfileImage,
		Headline:     u.Headline,
	}
}

// IsConnectedTo reports whether other is already in the connection set.
func (u *User) IsConnectedTo(other primitive.ObjectID) bool {
	for _, conn := range u.Connections {
		if conn == other {
			return true
		}
	}
	return false
}
