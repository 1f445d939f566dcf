// internal/models/identity_document.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IdentityDocument holds a client's address and ID card data. It is only
// read to prefill new contracts.
type IdentityDocument struct {
	BaseModel
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`

	Locality  *string `json:"localitatea" gorm:"column:localitatea;size:120"`
	Street    *string `json:"strada" gorm:"column:strada;size:255"`
	StreetNo  *string `json:"nr_strada" gorm:"column:nr_strada;size:20"`
	Block     *string `json:"bloc" gorm:"column:bloc;size:20"`
	Stair     *string `json:"scara" gorm:"column:scara;size:20"`
	Floor     *string `json:"etaj" gorm:"column:etaj;size:20"`
	Apartment *string `json:"apartament" gorm:"column:apartament;size:20"`
	County    *string `json:"judet" gorm:"column:judet;size:60"`

	IDSeries    *string         `json:"ci_seria" gorm:"column:ci_seria;size:10"`
	IDNumber    *string         `json:"ci_nr" gorm:"column:ci_nr;size:20"`
	CNP         *string         `json:"cnp" gorm:"column:cnp;size:13"`
	IssuedBy    *string         `json:"spclep" gorm:"column:spclep;size:120"`
	IDIssueDate *datatypes.Date `json:"ci_data" gorm:"column:ci_data"`
}

func (IdentityDocument) TableName() string { return "identity_documents" }
