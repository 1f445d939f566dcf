// internal/services/contract_board.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/signature"
)

var ErrBoardBusy = errors.New("another contract action is in progress")

const NoticeContractSent = "Contract sent"

// BoardState is what the management screen shows.
type BoardState struct {
	Contracts []models.Contract `json:"contracts"`
	Selected  *models.Contract  `json:"selected"`
	Busy      bool              `json:"busy"`
	Signing   bool              `json:"signing"`
	LastError string            `json:"last_error,omitempty"`
	Notice    string            `json:"notice,omitempty"`
}

// ContractBoard is one admin's contract list and detail view. Only one
// action runs at a time; anything started while Busy fails with
// ErrBoardBusy.
type ContractBoard struct {
	mu        sync.Mutex
	state     BoardState
	contracts *ContractService
	exporter  *ContractExporter

	// signature session of the selected contract, created on first use
	pad *signature.Pad
}

func NewContractBoard(contracts *ContractService, exporter *ContractExporter) *ContractBoard {
	return &ContractBoard{contracts: contracts, exporter: exporter}
}

func (b *ContractBoard) begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.Busy {
		return ErrBoardBusy
	}
	b.state.Busy = true
	b.state.LastError = ""
	b.state.Notice = ""
	return nil
}

func (b *ContractBoard) end(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Busy = false
	if err != nil && !errors.Is(err, ErrNotConfirmed) {
		b.state.LastError = err.Error()
	}
}

// Snapshot returns a copy of the current state.
func (b *ContractBoard) Snapshot() BoardState {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.state
	s.Contracts = append([]models.Contract(nil), b.state.Contracts...)
	if b.state.Selected != nil {
		selected := *b.state.Selected
		s.Selected = &selected
	}
	s.Signing = b.pad != nil && b.pad.Loading()
	return s
}

func (b *ContractBoard) Refresh(ctx context.Context) (err error) {
	if err := b.begin(); err != nil {
		return err
	}
	defer func() { b.end(err) }()

	return b.reload(ctx)
}

func (b *ContractBoard) reload(ctx context.Context) error {
	list, err := b.contracts.List(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.state.Contracts = list
	b.mu.Unlock()
	return nil
}

// Open loads a contract into the detail view.
func (b *ContractBoard) Open(ctx context.Context, id uuid.UUID) (contract *models.Contract, err error) {
	if err := b.begin(); err != nil {
		return nil, err
	}
	defer func() { b.end(err) }()

	contract, err = b.contracts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	b.show(contract)
	return contract, nil
}

func (b *ContractBoard) Close() {
	b.mu.Lock()
	b.state.Selected = nil
	b.pad = nil
	b.mu.Unlock()
}

func (b *ContractBoard) show(c *models.Contract) {
	b.mu.Lock()
	if b.state.Selected == nil || b.state.Selected.ID != c.ID {
		b.pad = nil
	}
	b.state.Selected = c
	b.mu.Unlock()
}

// replaceSelected swaps the detail view only if it shows the same contract.
func (b *ContractBoard) replaceSelected(c *models.Contract) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.Selected != nil && b.state.Selected.ID == c.ID {
		b.state.Selected = c
	}
}

// padFor returns the open contract's signature pad. Contracts signed without
// being opened get a pad of their own.
func (b *ContractBoard) padFor(id uuid.UUID) *signature.Pad {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.Selected == nil || b.state.Selected.ID != id {
		return signature.NewPad("")
	}
	if b.pad == nil {
		b.pad = signature.NewPad(models.StringValue(b.state.Selected.ProviderSignature))
	}
	return b.pad
}

// CancelSignature discards the signature session of the open contract. It
// fails with signature.ErrCommitPending while a signature is being stored.
func (b *ContractBoard) CancelSignature() error {
	b.mu.Lock()
	pad := b.pad
	b.mu.Unlock()
	if pad == nil {
		return nil
	}
	if err := pad.Cancel(); err != nil {
		return err
	}

	b.mu.Lock()
	if b.pad == pad {
		b.pad = nil
	}
	b.mu.Unlock()
	return nil
}

func (b *ContractBoard) Create(ctx context.Context, form ContractForm, autofill bool) (contract *models.Contract, err error) {
	if err := b.begin(); err != nil {
		return nil, err
	}
	defer func() { b.end(err) }()

	contract, err = b.contracts.Create(ctx, form, autofill)
	if err != nil {
		return nil, err
	}
	b.show(contract)
	return contract, b.reload(ctx)
}

func (b *ContractBoard) Update(ctx context.Context, id uuid.UUID, form ContractForm) (contract *models.Contract, err error) {
	if err := b.begin(); err != nil {
		return nil, err
	}
	defer func() { b.end(err) }()

	contract, err = b.contracts.Update(ctx, id, form)
	if err != nil {
		return nil, err
	}
	b.replaceSelected(contract)
	return contract, b.reload(ctx)
}

// Sign captures the provider signature through a signature pad and stores it.
func (b *ContractBoard) Sign(ctx context.Context, id uuid.UUID, raw string, signer uuid.UUID) (contract *models.Contract, err error) {
	if err := b.begin(); err != nil {
		return nil, err
	}
	defer func() { b.end(err) }()

	pad := b.padFor(id)
	committed := false
	err = pad.Commit(ctx, raw, func(ctx context.Context, p signature.Payload) error {
		committed = true
		var err error
		contract, err = b.contracts.SignAsProvider(ctx, id, SignRequest{Signature: p.URI(), SignerID: signer})
		return err
	})
	if err != nil {
		if !committed && !errors.Is(err, signature.ErrPadClosed) && !errors.Is(err, signature.ErrCommitPending) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, err
	}

	b.replaceSelected(contract)
	return contract, b.reload(ctx)
}

func (b *ContractBoard) SignAsClient(ctx context.Context, id uuid.UUID, req SignRequest) (contract *models.Contract, err error) {
	if err := b.begin(); err != nil {
		return nil, err
	}
	defer func() { b.end(err) }()

	contract, err = b.contracts.SignAsClient(ctx, id, req)
	if err != nil {
		return nil, err
	}
	b.replaceSelected(contract)
	return contract, b.reload(ctx)
}

func (b *ContractBoard) SendToClient(ctx context.Context, id uuid.UUID, confirmer Confirmer) (contract *models.Contract, err error) {
	if err := b.begin(); err != nil {
		return nil, err
	}
	defer func() { b.end(err) }()

	contract, err = b.contracts.SendToClient(ctx, id, confirmer)
	if err != nil {
		return nil, err
	}

	b.replaceSelected(contract)
	if err := b.reload(ctx); err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.state.Notice = NoticeContractSent
	b.mu.Unlock()
	return contract, nil
}

// Delete removes a contract. The detail view is cleared only when the
// deleted contract was open and the delete succeeded.
func (b *ContractBoard) Delete(ctx context.Context, id uuid.UUID, confirmer Confirmer) (err error) {
	if err := b.begin(); err != nil {
		return err
	}
	defer func() { b.end(err) }()

	if err := b.contracts.Delete(ctx, id, confirmer); err != nil {
		return err
	}

	b.mu.Lock()
	if b.state.Selected != nil && b.state.Selected.ID == id {
		b.state.Selected = nil
		b.pad = nil
	}
	b.mu.Unlock()

	return b.reload(ctx)
}

func (b *ContractBoard) Export(ctx context.Context, id uuid.UUID) (result *ExportResult, err error) {
	if err := b.begin(); err != nil {
		return nil, err
	}
	defer func() { b.end(err) }()

	if b.exporter == nil {
		return nil, errors.New("contract export is not configured")
	}
	return b.exporter.Export(ctx, id)
}

// BoardRegistry keeps one board per admin.
type BoardRegistry struct {
	mu        sync.Mutex
	boards    map[uuid.UUID]*ContractBoard
	contracts *ContractService
	exporter  *ContractExporter
}

func NewBoardRegistry(contracts *ContractService, exporter *ContractExporter) *BoardRegistry {
	return &BoardRegistry{
		boards:    make(map[uuid.UUID]*ContractBoard),
		contracts: contracts,
		exporter:  exporter,
	}
}

func (r *BoardRegistry) For(adminID uuid.UUID) *ContractBoard {
	r.mu.Lock()
	defer r.mu.Unlock()

	board, ok := r.boards[adminID]
	if !ok {
		board = NewContractBoard(r.contracts, r.exporter)
		r.boards[adminID] = board
		logrus.WithField("admin_id", adminID).Debug("Contract board opened")
	}
	return board
}

// Drop forgets an admin's board, e.g. on logout.
func (r *BoardRegistry) Drop(adminID uuid.UUID) {
	r.mu.Lock()
	delete(r.boards, adminID)
	r.mu.Unlock()
}
