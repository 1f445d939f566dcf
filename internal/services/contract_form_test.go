package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/javajoker/autoimport-backend/internal/models"
)

const pngSignature = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func validForm() ContractForm {
	return ContractForm{
		ContractType:  "servicii",
		Status:        "draft",
		Date:          "2024-03-15",
		FullName:      "Ion Popescu",
		Locality:      "Cluj-Napoca",
		Street:        "Str. Memorandumului",
		StreetNo:      "12",
		Apartment:     "4",
		County:        "Cluj",
		Email:         "ion.popescu@example.ro",
		IDSeries:      "CJ",
		IDNumber:      "123456",
		CNP:           "1850101123456",
		IssuedBy:      "SPCLEP Cluj-Napoca",
		IDIssueDate:   "2020-06-01",
		AuctionAmount: 8500,
	}
}

func failedFields(f ContractForm) []string {
	var names []string
	for _, e := range f.Validate() {
		names = append(names, e.Field)
	}
	return names
}

func TestContractFormValid(t *testing.T) {
	f := validForm()
	assert.Nil(t, f.Validate())
}

func TestContractFormCNPLength(t *testing.T) {
	cases := map[string]bool{
		"185010112345":   false,
		"18501011234567": false,
		"1850101123456":  true,
	}
	for cnp, ok := range cases {
		f := validForm()
		f.CNP = cnp
		if ok {
			assert.Nil(t, f.Validate(), cnp)
		} else {
			assert.Equal(t, []string{"cnp"}, failedFields(f), cnp)
		}
	}
}

func TestContractFormAuctionAmount(t *testing.T) {
	f := validForm()
	f.AuctionAmount = 0
	assert.Equal(t, []string{"suma_licitatie"}, failedFields(f))

	f.AuctionAmount = -10
	assert.Equal(t, []string{"suma_licitatie"}, failedFields(f))

	f.AuctionAmount = 0.01
	assert.Nil(t, f.Validate())
}

func TestContractFormRequiredFields(t *testing.T) {
	f := ContractForm{ContractType: "servicii", Status: "draft", AuctionAmount: 1}
	fields := failedFields(f)

	for _, name := range []string{
		"data", "nume_prenume", "localitatea", "strada", "nr_strada", "judet",
		"email", "ci_seria", "ci_nr", "cnp", "spclep", "ci_data",
	} {
		assert.Contains(t, fields, name)
	}
	assert.NotContains(t, fields, "bloc")
	assert.NotContains(t, fields, "nr")
}

func TestContractFormRejectsBadValues(t *testing.T) {
	f := validForm()
	f.Email = "not-an-email"
	f.Date = "15.03.2024"
	f.ContractType = "leasing"
	f.Status = "pending"
	f.ClientUserID = "abc"

	assert.ElementsMatch(t,
		[]string{"email", "data", "contract_type", "status", "client_user_id"},
		failedFields(f))
}

func TestContractFormTrimsWhitespace(t *testing.T) {
	f := validForm()
	f.FullName = "   "
	assert.Equal(t, []string{"nume_prenume"}, failedFields(f))

	f = validForm()
	f.Email = "  ion@example.ro  "
	require.Nil(t, f.Validate())
	assert.Equal(t, "ion@example.ro", f.Email)
}

func TestNewContractFormDefaults(t *testing.T) {
	f := NewContractForm()
	assert.Equal(t, "servicii", f.ContractType)
	assert.Equal(t, "draft", f.Status)
	assert.Equal(t, time.Now().Format("2006-01-02"), f.Date)
}

func TestPayloadNullsBlankOptionals(t *testing.T) {
	f := validForm()
	f.Block = "  "
	p := f.Payload()

	assert.Nil(t, p["bloc"])
	assert.Nil(t, p["nr"])
	assert.Nil(t, p["client_user_id"])
	assert.Equal(t, "4", *p["apartament"].(*string))
	assert.NotContains(t, p, "contract_number")
	assert.Equal(t, datatypes.Date(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)), p["data"])
}

func TestDiffSingleField(t *testing.T) {
	original := validForm()
	edited := original
	edited.Email = "ion.nou@example.ro"

	diff := edited.Diff(original)
	assert.Len(t, diff, 1)
	assert.Equal(t, "ion.nou@example.ro", diff["email"])

	assert.Empty(t, original.Diff(original))
}

func TestFormFromContractRoundTrip(t *testing.T) {
	clientID := uuid.New()
	f := validForm()
	f.ClientUserID = clientID.String()

	c := f.toContract()
	assert.Equal(t, models.ContractStatusDraft, c.Status)
	assert.Equal(t, clientID, *c.ClientUserID)
	assert.Nil(t, c.Block)

	back := FormFromContract(c)
	assert.Empty(t, back.Diff(f))
}

func TestApplyIdentity(t *testing.T) {
	userID := uuid.New()
	issued := datatypes.Date(time.Date(2019, 5, 20, 0, 0, 0, 0, time.UTC))
	lookup := &IdentityLookup{
		UserData: &models.User{
			BaseModel: models.BaseModel{ID: userID},
			Email:     "maria@example.ro",
			FullName:  "Maria Ionescu",
		},
		DocumentData: &models.IdentityDocument{
			Locality:    models.OptionalString("Brașov"),
			County:      models.OptionalString("Brașov"),
			CNP:         models.OptionalString("2900101123456"),
			IDIssueDate: &issued,
		},
	}

	f := validForm()
	f.ApplyIdentity(lookup)

	assert.Equal(t, userID.String(), f.ClientUserID)
	assert.Equal(t, "Maria Ionescu", f.FullName)
	assert.Equal(t, "maria@example.ro", f.Email)
	assert.Equal(t, "Brașov", f.Locality)
	assert.Equal(t, "2900101123456", f.CNP)
	assert.Equal(t, "2019-05-20", f.IDIssueDate)
	// absent in the document, kept from the form
	assert.Equal(t, "Str. Memorandumului", f.Street)
	assert.Equal(t, "CJ", f.IDSeries)
}

func TestApplyIdentityWithoutDocument(t *testing.T) {
	f := validForm()
	f.ApplyIdentity(&IdentityLookup{UserData: &models.User{FullName: "X Y"}})
	assert.Equal(t, "X Y", f.FullName)
	assert.Equal(t, "Cluj-Napoca", f.Locality)

	f.ApplyIdentity(nil)
	assert.Equal(t, "X Y", f.FullName)
}
