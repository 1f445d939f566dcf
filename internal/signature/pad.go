// internal/signature/pad.go
package signature

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrCommitPending = errors.New("a signature commit is already in progress")
	ErrPadClosed     = errors.New("signature pad was cancelled")
)

// CommitFunc persists an accepted signature.
type CommitFunc func(ctx context.Context, p Payload) error

// Pad holds one capture session: an optional signature being replaced, and
// at most one commit in flight.
type Pad struct {
	mu       sync.Mutex
	existing string
	loading  bool
	closed   bool
}

func NewPad(existing string) *Pad {
	return &Pad{existing: existing}
}

// Existing returns the signature shown when the pad was opened, or the last
// committed one.
func (p *Pad) Existing() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.existing
}

// Loading reports whether a commit callback is running.
func (p *Pad) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Commit validates raw and hands it to fn. The loading flag stays set until
// fn returns; a second Commit in the meantime fails with ErrCommitPending.
func (p *Pad) Commit(ctx context.Context, raw string, fn CommitFunc) error {
	payload, err := Parse(raw)
	if err != nil {
		return err
	}

	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return ErrPadClosed
	case p.loading:
		p.mu.Unlock()
		return ErrCommitPending
	}
	p.loading = true
	p.mu.Unlock()

	err = fn(ctx, payload)

	p.mu.Lock()
	p.loading = false
	if err == nil {
		p.existing = payload.URI()
	}
	p.mu.Unlock()
	return err
}

// Cancel discards the session. A commit already in flight is not aborted.
func (p *Pad) Cancel() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loading {
		return ErrCommitPending
	}
	p.closed = true
	return nil
}
