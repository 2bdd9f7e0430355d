package catalog

import (
	"context"
	"sync"

	"pulseadmin/internal/logging"
)

// FormState is the lifecycle position of a product form.
type FormState int

const (
	// StateEmpty: opened for edit, fetch not started yet (or failed).
	StateEmpty FormState = iota
	// StateLoading: fetch in flight; read-only.
	StateLoading
	// StateEditing: fields populated and mutable.
	StateEditing
	// StateSubmitting: create or update in flight; read-only.
	StateSubmitting
	// StateNavigated: saved; the caller should move to the list.
	StateNavigated
)

func (s FormState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateNavigated:
		return "navigated"
	default:
		return "unknown"
	}
}

// Ticket identifies one in-flight request. A completion carrying a ticket
// that is no longer current (superseded, or the owner was closed) is dropped.
type Ticket struct {
	seq uint64
}

// Submission is what BeginSubmit hands to the transport.
type Submission struct {
	Ticket Ticket
	ID     string // empty => create
	Draft  Product
}

// Form mediates between a remote product and an editable draft.
// All methods are safe for concurrent use.
type Form struct {
	mu       sync.Mutex
	id       string
	state    FormState
	draft    Draft
	preview  string
	err      error
	seq      uint64
	inflight uint64
	closed   bool
	saved    Product
}

// NewForm opens a form. With no id it is a new draft in StateEditing;
// with an id it waits in StateEmpty for BeginLoad.
func NewForm(id string) *Form {
	f := &Form{id: id, state: StateEmpty}
	if id == "" {
		f.state = StateEditing
	}
	return f
}

// ID is the product identity; it never changes for the life of the form.
func (f *Form) ID() string { return f.id }

// IsNew reports whether submit will create rather than update.
func (f *Form) IsNew() bool { return f.id == "" }

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ReadOnly reports whether controls must be disabled.
func (f *Form) ReadOnly() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed || f.state != StateEditing
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Preview is the image shown next to the form. It is set when an image is
// attached or loaded and survives ClearImage.
func (f *Form) Preview() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

// Err is the last surfaced error, if any.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// DismissError clears the surfaced error.
func (f *Form) DismissError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = nil
}

// Saved is the product returned by a successful submit.
func (f *Form) Saved() Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}

func (f *Form) next() Ticket {
	f.seq++
	f.inflight = f.seq
	return Ticket{seq: f.seq}
}

func (f *Form) current(t Ticket) bool {
	return !f.closed && t.seq != 0 && t.seq == f.inflight
}

// BeginLoad moves an edit form to StateLoading.
func (f *Form) BeginLoad() (Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return Ticket{}, ErrClosed
	}
	if f.id == "" {
		return Ticket{}, ErrNoIdentity
	}
	if f.state == StateLoading || f.state == StateSubmitting || f.state == StateNavigated {
		return Ticket{}, ErrReadOnly
	}
	f.state = StateLoading
	f.err = nil
	return f.next(), nil
}

// CompleteLoad applies a fetch result. It returns false when the ticket is stale.
// Missing optional fields arrive as zero values.
func (f *Form) CompleteLoad(t Ticket, p Product, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.current(t) || f.state != StateLoading {
		logging.CatalogDebug("form %s: dropping stale load result", f.id)
		return false
	}
	f.inflight = 0

	if err != nil {
		logging.CatalogError("form %s: load failed: %v", f.id, err)
		f.state = StateEmpty
		f.err = err
		return true
	}

	p.ID = f.id
	f.draft = DraftOf(p)
	if p.Image.IsRemote() {
		f.preview = p.Image.URL
	}
	f.state = StateEditing
	return true
}

// Set edits one field of the draft.
func (f *Form) Set(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.state != StateEditing {
		return ErrReadOnly
	}
	if err := f.draft.Set(field, value); err != nil {
		return err
	}
	if field == FieldImage && f.draft.Image.IsRemote() {
		f.preview = f.draft.Image.URL
	}
	return nil
}

// Attach sets the image to a pending local file.
func (f *Form) Attach(path string) error {
	a, err := NewAttachment(path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.state != StateEditing {
		return ErrReadOnly
	}
	f.draft.Image = LocalImage(a)
	f.preview = a.Path
	return nil
}

// ClearImage removes the image attribute. The preview is left in place.
func (f *Form) ClearImage() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.state != StateEditing {
		return ErrReadOnly
	}
	f.draft.Image = Image{}
	return nil
}

// BeginSubmit validates the draft and moves to StateSubmitting.
// A validation failure is surfaced and the form stays editable.
func (f *Form) BeginSubmit() (Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return Submission{}, ErrClosed
	}
	if f.state != StateEditing {
		return Submission{}, ErrReadOnly
	}
	if err := f.draft.Validate(); err != nil {
		f.err = err
		return Submission{}, err
	}

	f.state = StateSubmitting
	f.err = nil
	draft := f.draft.Product
	draft.ID = f.id
	return Submission{Ticket: f.next(), ID: f.id, Draft: draft}, nil
}

// CompleteSubmit applies a create/update result. It returns false when the
// ticket is stale.
func (f *Form) CompleteSubmit(t Ticket, p Product, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.current(t) || f.state != StateSubmitting {
		logging.CatalogDebug("form %s: dropping stale submit result", f.id)
		return false
	}
	f.inflight = 0

	if err != nil {
		logging.CatalogError("form %s: save failed: %v", f.id, err)
		f.state = StateEditing
		f.err = err
		return true
	}

	f.saved = p
	f.state = StateNavigated
	logging.Catalog("form: saved product %s", p.ID)
	return true
}

// Close ends the form's lifetime. Outstanding completions are ignored.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.inflight = 0
}

// Fetch performs the remote read for a ticket obtained from BeginLoad and
// applies the result.
func (f *Form) Fetch(ctx context.Context, svc Service, t Ticket) error {
	p, err := svc.GetProduct(ctx, f.id)
	f.CompleteLoad(t, p, err)
	return err
}

// Load fetches the product and populates the draft.
func (f *Form) Load(ctx context.Context, svc Service) error {
	t, err := f.BeginLoad()
	if err != nil {
		return err
	}
	return f.Fetch(ctx, svc, t)
}

// Send performs the create or update for a submission from BeginSubmit and
// applies the result.
func (f *Form) Send(ctx context.Context, svc Service, sub Submission) (Product, error) {
	var (
		p   Product
		err error
	)
	if sub.ID == "" {
		p, err = svc.CreateProduct(ctx, sub.Draft)
	} else {
		p, err = svc.UpdateProduct(ctx, sub.ID, sub.Draft)
	}
	f.CompleteSubmit(sub.Ticket, p, err)
	return p, err
}

// Submit creates or updates the product.
func (f *Form) Submit(ctx context.Context, svc Service) (Product, error) {
	sub, err := f.BeginSubmit()
	if err != nil {
		return Product{}, err
	}
	return f.Send(ctx, svc, sub)
}
