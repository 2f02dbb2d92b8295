package models

import (
	"time"

	"gorm.io/gorm"

	"studyjourney/backend/store"
)

type User struct {
	gorm.Model
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}

// UserProgress tracks the login streak maintained on every sign-in.
type UserProgress struct {
	gorm.Model
	UserID     uint
	LastActive time.Time
	StreakDays int `gorm:"default:0"`
}

// Profile is the per-user profile document, stored in the document
// store rather than in Postgres so it lives next to the study data it
// belongs with.
type Profile struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birthDate"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Sex       string `json:"sex"`
	PhotoURL  string `json:"photoUrl"`
}

func (p Profile) ToDocument() store.Document {
	return store.Document{
		"name":      p.Name,
		"surname":   p.Surname,
		"birthDate": p.BirthDate,
		"email":     p.Email,
		"phone":     p.Phone,
		"sex":       p.Sex,
		"photoUrl":  p.PhotoURL,
	}
}

func ProfileFromDocument(doc store.Document) Profile {
	return Profile{
		Name:      doc.String("name"),
		Surname:   doc.String("surname"),
		BirthDate: doc.String("birthDate"),
		Email:     doc.String("email"),
		Phone:     doc.String("phone"),
		Sex:       doc.String("sex"),
		PhotoURL:  doc.String("photoUrl"),
	}
}
