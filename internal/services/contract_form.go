// internal/services/contract_form.go
package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

// ContractForm carries every editable contract field as submitted by the
// back-office form. Dates use YYYY-MM-DD.
type ContractForm struct {
	Nr           string `json:"nr"`
	ContractType string `json:"contract_type" validate:"omitempty,oneof=servicii vanzare cumparare"`
	Status       string `json:"status" validate:"omitempty,oneof=draft semnat trimis_la_client semnat_de_client archived cancelled"`
	Date         string `json:"data" validate:"required,date"`

	FullName  string `json:"nume_prenume" validate:"required"`
	Locality  string `json:"localitatea" validate:"required"`
	Street    string `json:"strada" validate:"required"`
	StreetNo  string `json:"nr_strada" validate:"required"`
	Block     string `json:"bloc"`
	Stair     string `json:"scara"`
	Floor     string `json:"etaj"`
	Apartment string `json:"apartament"`
	County    string `json:"judet" validate:"required"`
	Email     string `json:"email" validate:"required,email"`

	IDSeries    string `json:"ci_seria" validate:"required"`
	IDNumber    string `json:"ci_nr" validate:"required"`
	CNP         string `json:"cnp" validate:"required,cnp"`
	IssuedBy    string `json:"spclep" validate:"required"`
	IDIssueDate string `json:"ci_data" validate:"required,date"`

	AuctionAmount float64 `json:"suma_licitatie" validate:"required,gt=0"`
	ClientUserID  string  `json:"client_user_id" validate:"omitempty,uuid"`
}

// FormError reports field-scoped validation failures.
type FormError struct {
	Fields []utils.ValidationError
}

func (e *FormError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "invalid contract fields: " + strings.Join(names, ", ")
}

// NewContractForm returns the defaults shown when creating a contract.
func NewContractForm() ContractForm {
	return ContractForm{
		ContractType: string(models.ContractTypeServices),
		Status:       string(models.ContractStatusDraft),
		Date:         time.Now().Format(utils.DateLayout),
	}
}

// FormFromContract prefills the edit form from a stored record.
func FormFromContract(c *models.Contract) ContractForm {
	f := ContractForm{
		Nr:            models.StringValue(c.Nr),
		ContractType:  string(c.ContractType),
		Status:        string(c.Status),
		Date:          formatDate(c.Date),
		FullName:      c.FullName,
		Locality:      c.Locality,
		Street:        c.Street,
		StreetNo:      c.StreetNo,
		Block:         models.StringValue(c.Block),
		Stair:         models.StringValue(c.Stair),
		Floor:         models.StringValue(c.Floor),
		Apartment:     models.StringValue(c.Apartment),
		County:        c.County,
		Email:         c.Email,
		IDSeries:      c.IDSeries,
		IDNumber:      c.IDNumber,
		CNP:           c.CNP,
		IssuedBy:      c.IssuedBy,
		IDIssueDate:   formatDate(c.IDIssueDate),
		AuctionAmount: c.AuctionAmount,
	}
	if c.ClientUserID != nil {
		f.ClientUserID = c.ClientUserID.String()
	}
	return f
}

// ApplyIdentity copies name, email, address and ID card data from a client
// lookup. Values the lookup does not have leave the form untouched.
func (f *ContractForm) ApplyIdentity(l *IdentityLookup) {
	if l == nil || l.UserData == nil {
		return
	}

	f.ClientUserID = l.UserData.ID.String()
	setIfPresent(&f.FullName, l.UserData.FullName)
	setIfPresent(&f.Email, l.UserData.Email)

	d := l.DocumentData
	if d == nil {
		return
	}
	setIfPresent(&f.Locality, models.StringValue(d.Locality))
	setIfPresent(&f.Street, models.StringValue(d.Street))
	setIfPresent(&f.StreetNo, models.StringValue(d.StreetNo))
	setIfPresent(&f.Block, models.StringValue(d.Block))
	setIfPresent(&f.Stair, models.StringValue(d.Stair))
	setIfPresent(&f.Floor, models.StringValue(d.Floor))
	setIfPresent(&f.Apartment, models.StringValue(d.Apartment))
	setIfPresent(&f.County, models.StringValue(d.County))
	setIfPresent(&f.IDSeries, models.StringValue(d.IDSeries))
	setIfPresent(&f.IDNumber, models.StringValue(d.IDNumber))
	setIfPresent(&f.CNP, models.StringValue(d.CNP))
	setIfPresent(&f.IssuedBy, models.StringValue(d.IssuedBy))
	if d.IDIssueDate != nil {
		f.IDIssueDate = formatDate(*d.IDIssueDate)
	}
}

func setIfPresent(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

// fillDefaults sets contract_type and status when the submission left them out.
func (f *ContractForm) fillDefaults(contractType models.ContractType, status models.ContractStatus) {
	if strings.TrimSpace(f.ContractType) == "" {
		f.ContractType = string(contractType)
	}
	if strings.TrimSpace(f.Status) == "" {
		f.Status = string(status)
	}
}

func (f *ContractForm) normalize() {
	for _, s := range []*string{
		&f.Nr, &f.ContractType, &f.Status, &f.Date,
		&f.FullName, &f.Locality, &f.Street, &f.StreetNo,
		&f.Block, &f.Stair, &f.Floor, &f.Apartment, &f.County, &f.Email,
		&f.IDSeries, &f.IDNumber, &f.CNP, &f.IssuedBy, &f.IDIssueDate,
		&f.ClientUserID,
	} {
		*s = strings.TrimSpace(*s)
	}
}

// Validate trims every field and reports all rule violations at once. A nil
// result means the form may be persisted.
func (f *ContractForm) Validate() []utils.ValidationError {
	f.normalize()
	if err := utils.ValidateStruct(f); err != nil {
		if fields := utils.GetValidationErrors(err); len(fields) > 0 {
			return fields
		}
		return []utils.ValidationError{{Field: "form", Tag: "invalid", Message: err.Error()}}
	}
	return nil
}

func (f *ContractForm) validationError() error {
	if fields := f.Validate(); fields != nil {
		return &FormError{Fields: fields}
	}
	return nil
}

// Payload maps the form onto contract columns. Blank optional strings
// become NULL. contract_number is never part of it.
func (f ContractForm) Payload() map[string]interface{} {
	return map[string]interface{}{
		"nr":             models.OptionalString(f.Nr),
		"contract_type":  models.ContractType(f.ContractType),
		"status":         models.ContractStatus(f.Status),
		"data":           parseDate(f.Date),
		"nume_prenume":   strings.TrimSpace(f.FullName),
		"localitatea":    strings.TrimSpace(f.Locality),
		"strada":         strings.TrimSpace(f.Street),
		"nr_strada":      strings.TrimSpace(f.StreetNo),
		"bloc":           models.OptionalString(f.Block),
		"scara":          models.OptionalString(f.Stair),
		"etaj":           models.OptionalString(f.Floor),
		"apartament":     models.OptionalString(f.Apartment),
		"judet":          strings.TrimSpace(f.County),
		"email":          strings.TrimSpace(f.Email),
		"ci_seria":       strings.TrimSpace(f.IDSeries),
		"ci_nr":          strings.TrimSpace(f.IDNumber),
		"cnp":            strings.TrimSpace(f.CNP),
		"spclep":         strings.TrimSpace(f.IssuedBy),
		"ci_data":        parseDate(f.IDIssueDate),
		"suma_licitatie": f.AuctionAmount,
		"client_user_id": optionalUUID(f.ClientUserID),
	}
}

// Diff returns only the columns whose value differs from original.
func (f ContractForm) Diff(original ContractForm) map[string]interface{} {
	current, before := f.comparable(), original.comparable()
	payload := f.Payload()

	diff := make(map[string]interface{})
	for column, value := range current {
		if before[column] != value {
			diff[column] = payload[column]
		}
	}
	return diff
}

func (f ContractForm) comparable() map[string]string {
	return map[string]string{
		"nr":             strings.TrimSpace(f.Nr),
		"contract_type":  strings.TrimSpace(f.ContractType),
		"status":         strings.TrimSpace(f.Status),
		"data":           strings.TrimSpace(f.Date),
		"nume_prenume":   strings.TrimSpace(f.FullName),
		"localitatea":    strings.TrimSpace(f.Locality),
		"strada":         strings.TrimSpace(f.Street),
		"nr_strada":      strings.TrimSpace(f.StreetNo),
		"bloc":           strings.TrimSpace(f.Block),
		"scara":          strings.TrimSpace(f.Stair),
		"etaj":           strings.TrimSpace(f.Floor),
		"apartament":     strings.TrimSpace(f.Apartment),
		"judet":          strings.TrimSpace(f.County),
		"email":          strings.TrimSpace(f.Email),
		"ci_seria":       strings.TrimSpace(f.IDSeries),
		"ci_nr":          strings.TrimSpace(f.IDNumber),
		"cnp":            strings.TrimSpace(f.CNP),
		"spclep":         strings.TrimSpace(f.IssuedBy),
		"ci_data":        strings.TrimSpace(f.IDIssueDate),
		"suma_licitatie": strconv.FormatFloat(f.AuctionAmount, 'f', -1, 64),
		"client_user_id": strings.ToLower(strings.TrimSpace(f.ClientUserID)),
	}
}

// toContract builds a new record; the caller assigns contract_number.
func (f ContractForm) toContract() *models.Contract {
	p := f.Payload()
	c := &models.Contract{
		Nr:            p["nr"].(*string),
		ContractType:  models.ContractType(f.ContractType),
		Status:        models.ContractStatus(f.Status),
		Date:          p["data"].(datatypes.Date),
		FullName:      p["nume_prenume"].(string),
		Locality:      p["localitatea"].(string),
		Street:        p["strada"].(string),
		StreetNo:      p["nr_strada"].(string),
		Block:         p["bloc"].(*string),
		Stair:         p["scara"].(*string),
		Floor:         p["etaj"].(*string),
		Apartment:     p["apartament"].(*string),
		County:        p["judet"].(string),
		Email:         p["email"].(string),
		IDSeries:      p["ci_seria"].(string),
		IDNumber:      p["ci_nr"].(string),
		CNP:           p["cnp"].(string),
		IssuedBy:      p["spclep"].(string),
		IDIssueDate:   p["ci_data"].(datatypes.Date),
		AuctionAmount: f.AuctionAmount,
		ClientUserID:  p["client_user_id"].(*uuid.UUID),
	}
	return c
}

func parseDate(value string) datatypes.Date {
	t, err := time.Parse(utils.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return datatypes.Date{}
	}
	return datatypes.Date(t)
}

func formatDate(d datatypes.Date) string {
	t := time.Time(d)
	if t.IsZero() {
		return ""
	}
	return t.Format(utils.DateLayout)
}

func optionalUUID(value string) *uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &id
}

