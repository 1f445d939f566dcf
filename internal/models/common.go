// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. Records are removed with a hard delete,
// so there is no DeletedAt column.
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported JSONB source type")
	}

	return json.Unmarshal(bytes, j)
}

// OptionalString maps blank input to an absent value.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue returns the held string or "" when absent.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Enums
type UserType string

const (
	UserTypeAdmin  UserType = "admin"
	UserTypeClient UserType = "client"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type ContractType string

const (
	ContractTypeServices ContractType = "servicii"
	ContractTypeSale     ContractType = "vanzare"
	ContractTypePurchase ContractType = "cumparare"
)

var ContractTypes = []ContractType{ContractTypeServices, ContractTypeSale, ContractTypePurchase}

func (t ContractType) Valid() bool {
	for _, ct := range ContractTypes {
		if t == ct {
			return true
		}
	}
	return false
}

type ContractStatus string

const (
	ContractStatusDraft          ContractStatus = "draft"
	ContractStatusSigned         ContractStatus = "semnat"
	ContractStatusSentToClient   ContractStatus = "trimis_la_client"
	ContractStatusSignedByClient ContractStatus = "semnat_de_client"
	ContractStatusArchived       ContractStatus = "archived"
	ContractStatusCancelled      ContractStatus = "cancelled"
)

var ContractStatuses = []ContractStatus{
	ContractStatusDraft,
	ContractStatusSigned,
	ContractStatusSentToClient,
	ContractStatusSignedByClient,
	ContractStatusArchived,
	ContractStatusCancelled,
}

// position on the forward path; side exits have none
var contractStatusRank = map[ContractStatus]int{
	ContractStatusDraft:          1,
	ContractStatusSigned:         2,
	ContractStatusSentToClient:   3,
	ContractStatusSignedByClient: 4,
}

func (s ContractStatus) Valid() bool {
	for _, cs := range ContractStatuses {
		if s == cs {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is allowed.
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusArchived || s == ContractStatusCancelled
}

// RequiresProviderSignature reports whether the status sits at or after
// "semnat" on the forward path.
func (s ContractStatus) RequiresProviderSignature() bool {
	return contractStatusRank[s] >= contractStatusRank[ContractStatusSigned]
}

// CanOverrideTo reports whether a manual status change from s to next is
// allowed: staying put, moving forward, or leaving a non-terminal state
// through archived/cancelled.
func (s ContractStatus) CanOverrideTo(next ContractStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next.IsTerminal() {
		return true
	}
	return contractStatusRank[next] > contractStatusRank[s]
}

type CarRequestStatus string

const (
	CarRequestStatusNew        CarRequestStatus = "new"
	CarRequestStatusInProgress CarRequestStatus = "in_progress"
	CarRequestStatusOfferSent  CarRequestStatus = "offer_sent"
	CarRequestStatusClosed     CarRequestStatus = "closed"
)

func (s CarRequestStatus) Valid() bool {
	switch s {
	case CarRequestStatusNew, CarRequestStatusInProgress, CarRequestStatusOfferSent, CarRequestStatusClosed:
		return true
	}
	return false
}
