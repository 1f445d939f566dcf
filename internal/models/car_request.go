// internal/models/car_request.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CarRequest is a client's lead for a vehicle to be sourced at auction.
type CarRequest struct {
	BaseModel
	ClientID    uuid.UUID        `json:"client_id" gorm:"type:uuid;not null;index"`
	Brand       string           `json:"brand" gorm:"size:80;not null"`
	Model       string           `json:"model" gorm:"size:80;not null"`
	Year        *int             `json:"year"`
	FuelType    *string          `json:"fuel_type" gorm:"size:30"`
	Budget      float64          `json:"budget" gorm:"type:decimal(12,2);not null"`
	Notes       *string          `json:"notes" gorm:"type:text"`
	Images      pq.StringArray   `json:"images" gorm:"type:text[]"`
	Status      CarRequestStatus `json:"status" gorm:"type:varchar(20);default:'new';index"`
	OfferLink   *string          `json:"offer_link" gorm:"type:text"`
	OfferSentAt *time.Time       `json:"offer_sent_at"`

	Client User `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}
