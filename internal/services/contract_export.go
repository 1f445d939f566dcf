// internal/services/contract_export.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/autoimport-backend/internal/metrics"
	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/pdf"
	"github.com/javajoker/autoimport-backend/internal/render"
)

// ExportResult describes an archived contract document.
type ExportResult struct {
	Filename    string `json:"filename"`
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Hash        string `json:"hash"`
}

type contractReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Contract, error)
}

// ContractExporter renders a contract, converts it to PDF and archives it.
type ContractExporter struct {
	contracts contractReader
	generator pdf.Generator
	storage   ObjectStore
	provider  render.Provider
	urlTTL    time.Duration
}

func NewContractExporter(contracts contractReader, generator pdf.Generator, storage ObjectStore, provider render.Provider, urlTTL time.Duration) *ContractExporter {
	return &ContractExporter{
		contracts: contracts,
		generator: generator,
		storage:   storage,
		provider:  provider,
		urlTTL:    urlTTL,
	}
}

// Preview returns the rendered document and its hash.
func (e *ContractExporter) Preview(ctx context.Context, id uuid.UUID) (string, string, error) {
	contract, err := e.contracts.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	return e.render(contract)
}

func (e *ContractExporter) render(c *models.Contract) (string, string, error) {
	html, err := render.Contract(c, render.WithProvider(e.provider))
	if err != nil {
		return "", "", fmt.Errorf("failed to render contract: %w", err)
	}
	return html, render.Hash(html), nil
}

func (e *ContractExporter) Export(ctx context.Context, id uuid.UUID) (result *ExportResult, err error) {
	defer func() { metrics.RecordExport(err) }()

	contract, err := e.contracts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.ExportContract(ctx, contract)
}

// ExportContract archives an already loaded record as contract-<number>.pdf,
// or .html when no converter is configured.
func (e *ContractExporter) ExportContract(ctx context.Context, contract *models.Contract) (*ExportResult, error) {
	html, hash, err := e.render(contract)
	if err != nil {
		return nil, err
	}

	contentType := e.generator.ContentType()
	filename := fmt.Sprintf("contract-%d%s", contract.ContractNumber, extensionFor(contentType))
	data, err := e.generator.GenerateFromHTML(ctx, html, filename)
	if err != nil {
		logrus.WithError(err).WithField("contract_id", contract.ID).Error("PDF generation failed")
		return nil, fmt.Errorf("failed to generate pdf: %w", err)
	}

	key := fmt.Sprintf("contracts/%d/%s%s", contract.ContractNumber, hash[:16], extensionFor(contentType))

	upload, err := e.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("Contract upload failed")
		return nil, fmt.Errorf("failed to store contract: %w", err)
	}

	url, err := e.storage.PresignedURL(ctx, upload.Key, e.urlTTL)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"contract_id":     contract.ID,
		"contract_number": contract.ContractNumber,
		"key":             upload.Key,
		"size":            upload.Size,
	}).Info("Contract exported")

	return &ExportResult{
		Filename:    filename,
		Key:         upload.Key,
		URL:         url,
		ContentType: contentType,
		Size:        upload.Size,
		Hash:        hash,
	}, nil
}

func extensionFor(contentType string) string {
	if strings.HasPrefix(contentType, "text/html") {
		return ".html"
	}
	return ".pdf"
}
