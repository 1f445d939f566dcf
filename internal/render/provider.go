// internal/render/provider.go
package render

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Provider is the legal entity that offers the brokerage service.
type Provider struct {
	Name           string `yaml:"name"`
	RegistrationNo string `yaml:"registration_no"`
	FiscalCode     string `yaml:"fiscal_code"`
	Address        string `yaml:"address"`
	IBAN           string `yaml:"iban"`
	Bank           string `yaml:"bank"`
	Representative string `yaml:"representative"`
	Role           string `yaml:"role"`
	Email          string `yaml:"email"`
	Phone          string `yaml:"phone"`
	Jurisdiction   string `yaml:"jurisdiction"`
}

func DefaultProvider() Provider {
	return Provider{
		Name:           "AUTO IMPORT BROKER S.R.L.",
		RegistrationNo: "J40/0000/2020",
		FiscalCode:     "RO00000000",
		Address:        "București, Sector 1",
		Representative: "Administrator",
		Role:           "Administrator",
		Jurisdiction:   "București",
	}
}

// LoadProvider reads the provider entity from a YAML file. Fields missing
// from the file keep their default values; an empty path returns the defaults.
func LoadProvider(path string) (Provider, error) {
	p := DefaultProvider()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read provider file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse provider file %s: %w", path, err)
	}
	return p, nil
}
