package catalog

import (
	"context"
	"sync"

	"pulseadmin/internal/logging"
)

// ListState is the lifecycle position of the product list.
type ListState int

const (
	ListLoading ListState = iota
	ListLoaded
)

func (s ListState) String() string {
	if s == ListLoading {
		return "loading"
	}
	return "loaded"
}

// List is the product list controller. Deletes of different rows may be in
// flight at once; each resolves against the shared items by identifier.
type List struct {
	mu         sync.Mutex
	state      ListState
	items      []Product
	deleting   map[string]bool
	confirming string
	err        error
	seq        uint64
	closed     bool
}

// NewList returns a list in ListLoading.
func NewList() *List {
	return &List{state: ListLoading, deleting: make(map[string]bool)}
}

func (l *List) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Items returns a copy of the loaded products in server order.
func (l *List) Items() []Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Product, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Err is the last surfaced error, if any.
func (l *List) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// DismissError clears the surfaced error.
func (l *List) DismissError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = nil
}

// BeginFetch enters ListLoading. Any earlier fetch still in flight is superseded.
func (l *List) BeginFetch() Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.state = ListLoading
	l.err = nil
	return Ticket{seq: l.seq}
}

// CompleteFetch applies a fetch result. A failure yields an empty list with
// the error surfaced so the caller can offer a retry.
func (l *List) CompleteFetch(t Ticket, items []Product, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || t.seq != l.seq {
		logging.CatalogDebug("list: dropping stale fetch result")
		return false
	}
	l.state = ListLoaded
	if err != nil {
		logging.CatalogError("list: fetch failed: %v", err)
		l.items = nil
		l.err = err
		return true
	}
	l.items = append([]Product(nil), items...)
	return true
}

// RequestDelete opens the confirmation gate for id. It returns false, and
// nothing happens, when id is not in the list or is already being deleted.
func (l *List) RequestDelete(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.deletableLocked(id) {
		return false
	}
	l.confirming = id
	return true
}

// Confirming returns the id awaiting confirmation.
func (l *List) Confirming() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.confirming, l.confirming != ""
}

// Confirm closes the gate. With yes it marks the row as deleting and returns
// (id, true); the caller must then issue the remote delete and report back
// through CompleteDelete.
func (l *List) Confirm(yes bool) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.confirming
	l.confirming = ""
	if id == "" || !yes {
		return id, false
	}
	if !l.deletableLocked(id) {
		return id, false
	}
	l.deleting[id] = true
	return id, true
}

// BeginDelete marks id as deleting without going through the gate.
func (l *List) BeginDelete(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.deletableLocked(id) {
		return false
	}
	l.deleting[id] = true
	return true
}

func (l *List) deletableLocked(id string) bool {
	if l.closed || id == "" || l.deleting[id] {
		return false
	}
	_, idx := FindByID(l.items, id)
	return idx >= 0
}

// CompleteDelete resolves an in-flight delete. On success the row is removed
// by identifier; on failure the list is untouched and the error surfaced.
func (l *List) CompleteDelete(id string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.deleting, id)
	if l.closed {
		return
	}
	if err != nil {
		logging.CatalogError("list: delete %s failed: %v", id, err)
		l.err = err
		return
	}
	if _, idx := FindByID(l.items, id); idx >= 0 {
		l.items = append(l.items[:idx:idx], l.items[idx+1:]...)
	}
}

// Deleting reports whether a delete for id is in flight.
func (l *List) Deleting(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deleting[id]
}

// Close ends the list's lifetime; later completions are ignored.
func (l *List) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.confirming = ""
}

// Fetch loads the list from svc.
func (l *List) Fetch(ctx context.Context, svc Service) error {
	t := l.BeginFetch()
	items, err := svc.ListProducts(ctx)
	l.CompleteFetch(t, items, err)
	return err
}

// Reload dismisses any error and fetches again.
func (l *List) Reload(ctx context.Context, svc Service) error {
	l.DismissError()
	return l.Fetch(ctx, svc)
}

// Delete asks confirm about the row and, if approved, deletes it remotely.
// A declined confirmation or unknown id issues no remote call.
func (l *List) Delete(ctx context.Context, svc Service, id string, confirm func(Product) bool) error {
	l.mu.Lock()
	p, idx := FindByID(l.items, id)
	l.mu.Unlock()
	if idx < 0 {
		return nil
	}
	if confirm != nil && !confirm(p) {
		return nil
	}
	if !l.BeginDelete(id) {
		return nil
	}
	err := svc.DeleteProduct(ctx, id)
	l.CompleteDelete(id, err)
	return err
}
