// internal/models/contract.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Contract is one brokerage agreement between the provider (prestator) and a client.
type Contract struct {
	BaseModel
	ContractNumber int64          `json:"contract_number" gorm:"column:contract_number;uniqueIndex;not null"`
	Nr             *string        `json:"nr" gorm:"column:nr;size:50"`
	ContractType   ContractType   `json:"contract_type" gorm:"column:contract_type;type:varchar(20);not null;default:'servicii'"`
	Status         ContractStatus `json:"status" gorm:"column:status;type:varchar(30);not null;default:'draft';index"`
	Date           datatypes.Date `json:"data" gorm:"column:data;not null"`

	// Client identification
	FullName  string  `json:"nume_prenume" gorm:"column:nume_prenume;size:255;not null"`
	Locality  string  `json:"localitatea" gorm:"column:localitatea;size:120;not null"`
	Street    string  `json:"strada" gorm:"column:strada;size:255;not null"`
	StreetNo  string  `json:"nr_strada" gorm:"column:nr_strada;size:20;not null"`
	Block     *string `json:"bloc" gorm:"column:bloc;size:20"`
	Stair     *string `json:"scara" gorm:"column:scara;size:20"`
	Floor     *string `json:"etaj" gorm:"column:etaj;size:20"`
	Apartment *string `json:"apartament" gorm:"column:apartament;size:20"`
	County    string  `json:"judet" gorm:"column:judet;size:60;not null"`
	Email     string  `json:"email" gorm:"column:email;size:255;not null;index"`

	// Government ID
	IDSeries    string         `json:"ci_seria" gorm:"column:ci_seria;size:10;not null"`
	IDNumber    string         `json:"ci_nr" gorm:"column:ci_nr;size:20;not null"`
	CNP         string         `json:"cnp" gorm:"column:cnp;size:13;not null"`
	IssuedBy    string         `json:"spclep" gorm:"column:spclep;size:120;not null"`
	IDIssueDate datatypes.Date `json:"ci_data" gorm:"column:ci_data;not null"`

	AuctionAmount float64    `json:"suma_licitatie" gorm:"column:suma_licitatie;type:decimal(12,2);not null"`
	ClientUserID  *uuid.UUID `json:"client_user_id" gorm:"column:client_user_id;type:uuid;index"`

	// Signatures
	ProviderSignature *string    `json:"prestator_signature" gorm:"column:prestator_signature;type:text"`
	ProviderSignedBy  *uuid.UUID `json:"prestator_signed_by" gorm:"column:prestator_signed_by;type:uuid"`
	ProviderSignedAt  *time.Time `json:"prestator_signed_at" gorm:"column:prestator_signed_at"`
	ClientSignature   *string    `json:"client_signature" gorm:"column:client_signature;type:text"`
	ClientSignedBy    *uuid.UUID `json:"client_signed_by" gorm:"column:client_signed_by;type:uuid"`
	ClientSignedAt    *time.Time `json:"client_signed_at" gorm:"column:client_signed_at"`
}

func (Contract) TableName() string { return "contracts" }

func (c *Contract) HasProviderSignature() bool {
	return c.ProviderSignature != nil && *c.ProviderSignature != ""
}

func (c *Contract) HasClientSignature() bool {
	return c.ClientSignature != nil && *c.ClientSignature != ""
}
