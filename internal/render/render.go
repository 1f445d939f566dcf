// internal/render/render.go
package render

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/signature"
)

const (
	// Placeholder stands in for any value missing from the record.
	Placeholder = "…………………"
	// BlankSignature is printed on the signature line when nothing was captured.
	BlankSignature = "_______________________"
	// SignatureStyle normalizes ink colour across capture devices.
	SignatureStyle = "filter: hue-rotate(200deg) saturate(3) brightness(0.6); mix-blend-mode: multiply;"

	dateLayout = "02.01.2006"
)

var ErrNilContract = errors.New("render: nil contract")

//go:embed templates/contract.html
var templateFS embed.FS

var contractTemplate = template.Must(
	template.New("contract.html").
		Funcs(template.FuncMap{"signatureStyle": func() template.CSS { return SignatureStyle }}).
		ParseFS(templateFS, "templates/contract.html"),
)

var titles = map[models.ContractType]string{
	models.ContractTypeServices: "CONTRACT DE PRESTĂRI SERVICII",
	models.ContractTypeSale:     "CONTRACT DE INTERMEDIERE LA VÂNZAREA UNUI AUTOVEHICUL",
	models.ContractTypePurchase: "CONTRACT DE INTERMEDIERE LA ACHIZIȚIA UNUI AUTOVEHICUL",
}

type options struct {
	provider Provider
}

type Option func(*options)

// WithProvider replaces the compiled-in provider entity.
func WithProvider(p Provider) Option {
	return func(o *options) { o.provider = p }
}

type party struct {
	Name, Locality, Street, StreetNo, Block, Stair, Floor, Apartment, County string
	IDSeries, IDNumber, CNP, IssuedBy, IDIssueDate, Email                   string
}

type signatureView struct {
	Image    template.URL
	Present  bool
	SignedAt string
}

type view struct {
	Title    string
	Number   string
	Date     string
	Amount   string
	Provider Provider
	Client   party

	ProviderSignature signatureView
	ClientSignature   signatureView
}

// Contract renders c into a complete HTML document. Output depends only on c
// and the options.
func Contract(c *models.Contract, opts ...Option) (string, error) {
	if c == nil {
		return "", ErrNilContract
	}

	o := options{provider: DefaultProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	var buf bytes.Buffer
	if err := contractTemplate.Execute(&buf, buildView(c, o.provider)); err != nil {
		return "", fmt.Errorf("render contract: %w", err)
	}
	return buf.String(), nil
}

// Hash returns the hex sha256 of rendered output.
func Hash(html string) string {
	sum := sha256.Sum256([]byte(html))
	return hex.EncodeToString(sum[:])
}

// Title returns the document heading for a contract type.
func Title(t models.ContractType) string {
	if title, ok := titles[t]; ok {
		return title
	}
	return titles[models.ContractTypeServices]
}

func buildView(c *models.Contract, p Provider) view {
	return view{
		Title:  Title(c.ContractType),
		Number: contractNumber(c),
		Date:   formatDate(time.Time(c.Date)),
		Amount: formatAmount(c.AuctionAmount),
		Provider: Provider{
			Name:           text(p.Name),
			RegistrationNo: text(p.RegistrationNo),
			FiscalCode:     text(p.FiscalCode),
			Address:        text(p.Address),
			IBAN:           text(p.IBAN),
			Bank:           text(p.Bank),
			Representative: text(p.Representative),
			Role:           text(p.Role),
			Email:          text(p.Email),
			Phone:          text(p.Phone),
			Jurisdiction:   text(p.Jurisdiction),
		},
		Client: party{
			Name:        text(c.FullName),
			Locality:    text(c.Locality),
			Street:      text(c.Street),
			StreetNo:    text(c.StreetNo),
			Block:       optional(c.Block),
			Stair:       optional(c.Stair),
			Floor:       optional(c.Floor),
			Apartment:   optional(c.Apartment),
			County:      text(c.County),
			IDSeries:    text(c.IDSeries),
			IDNumber:    text(c.IDNumber),
			CNP:         text(c.CNP),
			IssuedBy:    text(c.IssuedBy),
			IDIssueDate: formatDate(time.Time(c.IDIssueDate)),
			Email:       text(c.Email),
		},
		ProviderSignature: signatureOf(c.ProviderSignature, c.ProviderSignedAt),
		ClientSignature:   signatureOf(c.ClientSignature, c.ClientSignedAt),
	}
}

func contractNumber(c *models.Contract) string {
	if c.Nr != nil && strings.TrimSpace(*c.Nr) != "" {
		return strings.TrimSpace(*c.Nr)
	}
	if c.ContractNumber > 0 {
		return strconv.FormatInt(c.ContractNumber, 10)
	}
	return Placeholder
}

func text(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return strings.TrimSpace(s)
}

func optional(s *string) string {
	if s == nil {
		return Placeholder
	}
	return text(*s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format(dateLayout)
}

func formatAmount(v float64) string {
	if v <= 0 {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + " EUR"
}

// only raster data URIs are emitted as image sources
func signatureOf(data *string, signedAt *time.Time) signatureView {
	sv := signatureView{SignedAt: Placeholder}
	if signedAt != nil && !signedAt.IsZero() {
		sv.SignedAt = signedAt.UTC().Format(dateLayout)
	}
	if data == nil {
		return sv
	}
	payload, err := signature.Parse(*data)
	if err != nil {
		return sv
	}
	sv.Image = template.URL(payload.URI())
	sv.Present = true
	return sv
}
