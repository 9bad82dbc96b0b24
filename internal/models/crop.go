package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultCropUnit = "quintal"

type Crop struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Variety     *string   `json:"variety" db:"variety"`
	Category    *string   `json:"category" db:"category"`
	Unit        string    `json:"unit" db:"unit"`
	Description *string   `json:"description" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
