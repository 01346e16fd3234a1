// Package desk holds the operator's working copy of the price list: the loaded
// items, the current selection and the filter they were loaded with.
package desk

import (
	"context"
	"errors"
	"fmt"

	"pricedesk/internal/commit"
	"pricedesk/internal/dto"
	"pricedesk/internal/pricing"

	"github.com/rs/zerolog/log"
)

// Store is the remote side the workbench reads from and commits to.
type Store interface {
	commit.Updater
	LoadItems(ctx context.Context, f dto.PriceItemFilter) ([]*pricing.PriceItem, error)
	ListPriceHistory(ctx context.Context, page, limit int) (*dto.PriceHistoryListResponse, error)
}

// Workbench is a single-writer facade over the revision engine. It is not safe
// for concurrent mutation; callers sequence their calls.
type Workbench struct {
	store  Store
	coord  *commit.Coordinator
	actor  string
	filter dto.PriceItemFilter
	items  []*pricing.PriceItem
	sel    *pricing.Selection
}

// New returns an empty workbench. actor is recorded on every committed change;
// blank falls back to the coordinator default.
func New(store Store, coord *commit.Coordinator, actor string) *Workbench {
	return &Workbench{store: store, coord: coord, actor: actor, sel: pricing.NewSelection()}
}

// ── Loading ───────────────────────────────────────────────────────────────────

// Load replaces the collection with a fresh snapshot and prunes the selection
// to the loaded ids. Staged edits are discarded.
func (w *Workbench) Load(ctx context.Context, f dto.PriceItemFilter) error {
	items, err := w.store.LoadItems(ctx, f)
	if err != nil {
		return fmt.Errorf("load price items: %w", err)
	}
	w.filter = f
	w.replace(items)
	return nil
}

// Reload repeats the last Load.
func (w *Workbench) Reload(ctx context.Context) error {
	return w.Load(ctx, w.filter)
}

func (w *Workbench) replace(items []*pricing.PriceItem) {
	w.items = items
	if n := w.sel.Prune(pricing.IDs(items)); n > 0 {
		log.Debug().Int("pruned", n).Msg("selection pruned after load")
	}
}

// ── Reading ───────────────────────────────────────────────────────────────────

// Items returns the current collection. Callers must not modify the items.
func (w *Workbench) Items() []*pricing.PriceItem { return w.items }

func (w *Workbench) Filter() dto.PriceItemFilter { return w.filter }

// Visible applies the client-side view filter over the loaded items.
func (w *Workbench) Visible(search, category string) []*pricing.PriceItem {
	return pricing.Visible(w.items, search, category)
}

func (w *Workbench) Selection() []string { return w.sel.IDs() }

func (w *Workbench) Summary() pricing.Summary {
	return pricing.Summarize(w.items, w.sel)
}

// ── Selection ─────────────────────────────────────────────────────────────────

// SelectAllVisible selects exactly the rows matching the view filter, or
// clears the selection when they are all selected already.
func (w *Workbench) SelectAllVisible(search, category string) {
	ids := pricing.IDs(w.Visible(search, category))
	if len(ids) > 0 && w.sel.AllSelected(ids) {
		w.sel.Clear()
		return
	}
	w.sel.SelectAll(ids)
}

// Toggle includes or excludes one item. Ids that are not loaded are ignored.
func (w *Workbench) Toggle(id string, included bool) bool {
	if included && w.find(id) == nil {
		return false
	}
	w.sel.Toggle(id, included)
	return true
}

func (w *Workbench) ClearSelection() { w.sel.Clear() }

func (w *Workbench) find(id string) *pricing.PriceItem {
	for _, it := range w.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// ── Editing ───────────────────────────────────────────────────────────────────

// ApplyBulkRevision stages a revision over the selection. On error nothing
// changes.
func (w *Workbench) ApplyBulkRevision(req pricing.BulkRevisionRequest) error {
	items, err := pricing.ApplyBulkRevision(w.items, w.sel, req)
	if err != nil {
		return err
	}
	w.items = items
	return nil
}

func (w *Workbench) SetStagedValue(id string, field pricing.Field, raw string) error {
	items, err := pricing.SetStagedValue(w.items, id, field, raw)
	if err != nil {
		return err
	}
	w.items = items
	return nil
}

// Reset discards every staged edit and clears the selection.
func (w *Workbench) Reset() {
	w.items = pricing.Reset(w.items, w.sel)
}

// ── Commit ────────────────────────────────────────────────────────────────────

// Commit pushes every modified item to the store and reloads. Items that
// failed stay modified after the reload so a second Commit retries only them.
// The returned error is a *commit.PartialCommitError when some items failed;
// the result is still returned in that case.
func (w *Workbench) Commit(ctx context.Context, reason string) (*commit.Result, error) {
	snapshot := w.items
	res, err := w.coord.Commit(ctx, snapshot, reason, w.actor)
	if err != nil {
		return nil, err
	}

	if err := w.Reload(ctx); err != nil {
		return res, errors.Join(res.Err(), fmt.Errorf("reload after commit: %w", err))
	}
	w.items = pricing.CarryStaged(w.items, snapshot, res.FailedIDs())
	return res, res.Err()
}

// ── History ───────────────────────────────────────────────────────────────────

func (w *Workbench) History(ctx context.Context, page, limit int) (*dto.PriceHistoryListResponse, error) {
	resp, err := w.store.ListPriceHistory(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	return resp, nil
}
