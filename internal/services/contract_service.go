// internal/services/contract_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport-backend/internal/database"
	"github.com/javajoker/autoimport-backend/internal/metrics"
	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/signature"
)

var (
	ErrContractNotFound  = errors.New("contract not found")
	ErrNotConfirmed      = errors.New("action was not confirmed")
	ErrSignatureRequired = errors.New("contract has no provider signature")
	ErrInvalidTransition = errors.New("status change is not allowed")
	ErrInvalidSignature  = errors.New("invalid signature payload")
)

// Confirmation prompts shown before destructive or outward-facing actions.
const (
	PromptSendToClient = "Send this contract to the client?"
	PromptDelete       = "Permanently delete this contract?"
)

// Confirmer asks a human to approve an action. Returning false aborts the
// action before anything is written.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Confirmed is a Confirmer with a fixed answer, used when the decision was
// taken by the caller up front.
type Confirmed bool

func (c Confirmed) Confirm(context.Context, string) bool { return bool(c) }

type SignRequest struct {
	Signature string    `json:"signature" validate:"required"`
	SignerID  uuid.UUID `json:"-"`
}

// ContractService drives the contract lifecycle. Every transition is a
// single write followed by a re-read of the stored record.
type ContractService struct {
	db       *gorm.DB
	identity *IdentityService
	now      func() time.Time
}

func NewContractService(db *gorm.DB, identity *IdentityService) *ContractService {
	return &ContractService{
		db:       db,
		identity: identity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns all contracts, newest number first.
func (s *ContractService) List(ctx context.Context) ([]models.Contract, error) {
	defer metrics.TrackDBOperation("contracts.list")(time.Now())

	var contracts []models.Contract
	if err := s.db.WithContext(ctx).Order("contract_number DESC").Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, nil
}

func (s *ContractService) Get(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	return &contract, nil
}

// Create validates the form and inserts a contract with the next free
// contract number. When autofill is set and the form names a client user,
// the client's identity document fills the form first.
func (s *ContractService) Create(ctx context.Context, form ContractForm, autofill bool) (*models.Contract, error) {
	if autofill && form.ClientUserID != "" && s.identity != nil {
		if clientID, err := uuid.Parse(form.ClientUserID); err == nil {
			lookup, err := s.identity.Lookup(ctx, clientID)
			if err != nil {
				return nil, err
			}
			form.ApplyIdentity(lookup)
		}
	}
	form.fillDefaults(models.ContractTypeServices, models.ContractStatusDraft)

	if err := form.validationError(); err != nil {
		return nil, err
	}

	contract := form.toContract()
	if contract.Status.RequiresProviderSignature() {
		return nil, ErrSignatureRequired
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("LOCK TABLE contracts IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}

		var last int64
		if err := tx.Model(&models.Contract{}).Select("COALESCE(MAX(contract_number), 0)").Scan(&last).Error; err != nil {
			return err
		}
		contract.ContractNumber = last + 1
		return tx.Create(contract).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	s.recordTransition("create", contract)
	return s.Get(ctx, contract.ID)
}

// Update writes only the fields that differ from the stored record. Status
// changes must satisfy models.ContractStatus.CanOverrideTo, and signed
// states need a provider signature.
func (s *ContractService) Update(ctx context.Context, id uuid.UUID, form ContractForm) (*models.Contract, error) {
	if err := form.validationError(); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// omitted type or status keeps the stored value
	form.fillDefaults(current.ContractType, current.Status)

	changes := form.Diff(FormFromContract(current))
	if len(changes) == 0 {
		return current, nil
	}

	if _, ok := changes["status"]; ok {
		next := models.ContractStatus(form.Status)
		if !current.Status.CanOverrideTo(next) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next)
		}
		if next.RequiresProviderSignature() && !current.HasProviderSignature() {
			return nil, ErrSignatureRequired
		}
	}

	if err := s.write(ctx, id, changes); err != nil {
		return nil, err
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := changes["status"]; ok {
		s.recordTransition("override", updated)
	} else {
		s.recordTransition("edit", updated)
	}
	return updated, nil
}

// SignAsProvider stores the provider signature and moves the contract to
// "semnat", whatever its previous status. Signing again replaces the
// signature.
func (s *ContractService) SignAsProvider(ctx context.Context, id uuid.UUID, req SignRequest) (*models.Contract, error) {
	payload, err := signature.Parse(req.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	signedAt := s.now()
	uri := payload.URI()
	changes := map[string]interface{}{
		"prestator_signature": &uri,
		"prestator_signed_at": &signedAt,
		"prestator_signed_by": signerRef(req.SignerID),
		"status":              models.ContractStatusSigned,
	}
	if err := s.write(ctx, id, changes); err != nil {
		return nil, err
	}

	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordTransition("sign", contract)
	return contract, nil
}

// SendToClient asks for confirmation, then marks a signed contract as sent.
// Declining returns ErrNotConfirmed without touching the store.
func (s *ContractService) SendToClient(ctx context.Context, id uuid.UUID, confirmer Confirmer) (*models.Contract, error) {
	if confirmer == nil || !confirmer.Confirm(ctx, PromptSendToClient) {
		return nil, ErrNotConfirmed
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.HasProviderSignature() {
		return nil, ErrSignatureRequired
	}
	if !current.Status.CanOverrideTo(models.ContractStatusSentToClient) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, models.ContractStatusSentToClient)
	}

	if err := s.write(ctx, id, map[string]interface{}{"status": models.ContractStatusSentToClient}); err != nil {
		return nil, err
	}

	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordTransition("send", contract)
	return contract, nil
}

// SignAsClient records the client's signature on a contract that was sent.
func (s *ContractService) SignAsClient(ctx context.Context, id uuid.UUID, req SignRequest) (*models.Contract, error) {
	payload, err := signature.Parse(req.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.ContractStatusSentToClient {
		return nil, fmt.Errorf("%w: client can only sign a contract in %s", ErrInvalidTransition, models.ContractStatusSentToClient)
	}

	signedAt := s.now()
	uri := payload.URI()
	changes := map[string]interface{}{
		"client_signature": &uri,
		"client_signed_at": &signedAt,
		"client_signed_by": signerRef(req.SignerID),
		"status":           models.ContractStatusSignedByClient,
	}
	if err := s.write(ctx, id, changes); err != nil {
		return nil, err
	}

	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordTransition("client_sign", contract)
	return contract, nil
}

// Delete permanently removes a contract once confirmed.
func (s *ContractService) Delete(ctx context.Context, id uuid.UUID, confirmer Confirmer) error {
	if confirmer == nil || !confirmer.Confirm(ctx, PromptDelete) {
		return ErrNotConfirmed
	}

	result := s.db.WithContext(ctx).Delete(&models.Contract{}, "id = ?", id)
	if result.Error != nil {
		logrus.WithError(result.Error).WithField("contract_id", id).Error("Failed to delete contract")
		return fmt.Errorf("failed to delete contract: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrContractNotFound
	}

	logrus.WithField("contract_id", id).Info("Contract deleted")
	metrics.RecordTransition("delete", "deleted")
	return nil
}

func (s *ContractService) write(ctx context.Context, id uuid.UUID, changes map[string]interface{}) error {
	defer metrics.TrackDBOperation("contracts.update")(time.Now())

	result := s.db.WithContext(ctx).Model(&models.Contract{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		logrus.WithError(result.Error).WithField("contract_id", id).Error("Failed to update contract")
		return fmt.Errorf("failed to update contract: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrContractNotFound
	}
	return nil
}

func (s *ContractService) recordTransition(action string, c *models.Contract) {
	metrics.RecordTransition(action, string(c.Status))
	logrus.WithFields(logrus.Fields{
		"action":          action,
		"contract_id":     c.ID,
		"contract_number": c.ContractNumber,
		"status":          c.Status,
	}).Info("Contract updated")
}

func signerRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
