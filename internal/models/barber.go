package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Barber struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name        string         `gorm:"size:100;not null" json:"name"`
	Phone       string         `gorm:"size:20;not null" json:"phone"`
	Active      bool           `gorm:"default:true;index" json:"active"`
	Specialties pq.StringArray `gorm:"type:text[]" json:"specialties"`
	PhotoURL    string         `gorm:"size:512" json:"photo_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Barber) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
