// Package commit pushes staged price edits to the remote store, one update per
// modified item, and reports exactly which items succeeded.
package commit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pricedesk/internal/pricing"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultReason = "Bulk price update from Price Management"
	DefaultActor  = "System"

	defaultConcurrency = 8
)

var ErrNothingToCommit = errors.New("no changes to apply")

// Updater is the write side of the remote store.
type Updater interface {
	UpdateItemPrices(ctx context.Context, id string, patch pricing.Patch) error
}

// Failure is one item whose update did not go through.
type Failure struct {
	ID     string `json:"id"`
	Detail string `json:"detail"`
}

// Result lists outcomes in collection order.
type Result struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

// FailedIDs returns the IDs of failed items, for a scoped retry.
func (r *Result) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.ID)
	}
	return ids
}

// Err returns a *PartialCommitError when at least one item failed.
func (r *Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return &PartialCommitError{Succeeded: len(r.Succeeded), Failed: r.Failed}
}

// PartialCommitError reports a commit in which some updates failed.
type PartialCommitError struct {
	Succeeded int
	Failed    []Failure
}

func (e *PartialCommitError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		ids = append(ids, f.ID)
	}
	return fmt.Sprintf("partial commit: %d succeeded, %d failed (%s)",
		e.Succeeded, len(e.Failed), strings.Join(ids, ", "))
}

// Coordinator fans out per-item updates and collects every outcome.
type Coordinator struct {
	store       Updater
	concurrency int
}

// NewCoordinator bounds the number of in-flight updates by concurrency
// (values < 1 fall back to a default).
func NewCoordinator(store Updater, concurrency int) *Coordinator {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Coordinator{store: store, concurrency: concurrency}
}

type outcome struct {
	id  string
	err error
}

// Commit sends one update per modified item and waits for all of them.
//
// A failing update never cancels its siblings, and cancelling ctx after the
// call starts does not abort updates already issued; timeouts belong to the
// transport. Committed values on items are left alone: the caller reloads
// from the store to learn what persisted.
func (c *Coordinator) Commit(ctx context.Context, items []*pricing.PriceItem, reason, actor string) (*Result, error) {
	modified := pricing.Modified(items)
	if len(modified) == 0 {
		return nil, ErrNothingToCommit
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultReason
	}
	if strings.TrimSpace(actor) == "" {
		actor = DefaultActor
	}

	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	outcomes := make([]outcome, len(modified))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, it := range modified {
		i, it := i, it
		patch := pricing.PatchFor(it, reason, actor)
		g.Go(func() error {
			outcomes[i] = outcome{id: it.ID, err: c.store.UpdateItemPrices(ctx, it.ID, patch)}
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{Succeeded: []string{}, Failed: []Failure{}}
	for _, o := range outcomes {
		if o.err != nil {
			log.Warn().Str("item_id", o.id).Err(o.err).Msg("commit: price update failed")
			res.Failed = append(res.Failed, Failure{ID: o.id, Detail: o.err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, o.id)
	}

	log.Info().
		Int("succeeded", len(res.Succeeded)).
		Int("failed", len(res.Failed)).
		Dur("elapsed", time.Since(start)).
		Msg("commit: price updates settled")
	return res, nil
}
