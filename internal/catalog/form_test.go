package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewForm_AddStartsEditing(t *testing.T) {
	f := NewForm("")
	assert.Equal(t, StateEditing, f.State())
	assert.True(t, f.IsNew())
	assert.False(t, f.ReadOnly())
	assert.Equal(t, Draft{}, f.Draft())
}

func TestNewForm_EditWaitsForLoad(t *testing.T) {
	f := NewForm("p-1")
	assert.Equal(t, StateEmpty, f.State())
	assert.True(t, f.ReadOnly())
	assert.ErrorIs(t, f.Set(FieldName, "x"), ErrReadOnly)
}

func TestForm_LoadPopulatesDraft(t *testing.T) {
	stored := product("p-1", "Monitor", 3, "899.99")
	stored.Image = RemoteImage("https://cdn.example/m.png")
	svc := newFakeService(stored)

	f := NewForm("p-1")
	require.NoError(t, f.Load(context.Background(), svc))

	assert.Equal(t, StateEditing, f.State())
	if diff := cmp.Diff(stored, f.Draft().Product, decimalEqual); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "https://cdn.example/m.png", f.Preview())
}

func TestForm_ReadOnlyWhileLoading(t *testing.T) {
	f := NewForm("p-1")
	tk, err := f.BeginLoad()
	require.NoError(t, err)

	assert.True(t, f.ReadOnly())
	assert.ErrorIs(t, f.Set(FieldName, "x"), ErrReadOnly)
	assert.ErrorIs(t, f.ClearImage(), ErrReadOnly)
	_, err = f.BeginSubmit()
	assert.ErrorIs(t, err, ErrReadOnly)
	_, err = f.BeginLoad()
	assert.ErrorIs(t, err, ErrReadOnly)

	assert.True(t, f.CompleteLoad(tk, product("p-1", "A", 1, "1"), nil))
	assert.False(t, f.ReadOnly())
}

func TestForm_LoadFailureIsSurfaced(t *testing.T) {
	svc := newFakeService()
	f := NewForm("missing")

	err := f.Load(context.Background(), svc)
	require.ErrorIs(t, err, errNotFound)
	assert.Equal(t, StateEmpty, f.State())
	assert.ErrorIs(t, f.Err(), errNotFound)

	f.DismissError()
	assert.NoError(t, f.Err())

	svc.products = append(svc.products, product("missing", "Found", 1, "1"))
	require.NoError(t, f.Load(context.Background(), svc), "retry after failure")
	assert.Equal(t, StateEditing, f.State())
}

func TestForm_LoadKeepsIdentity(t *testing.T) {
	f := NewForm("p-1")
	tk, err := f.BeginLoad()
	require.NoError(t, err)
	f.CompleteLoad(tk, product("other", "A", 1, "1"), nil)
	assert.Equal(t, "p-1", f.Draft().ID)
}

func TestForm_LoadWithoutIdentity(t *testing.T) {
	_, err := NewForm("").BeginLoad()
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestForm_SubmitCreate(t *testing.T) {
	svc := newFakeService()
	f := NewForm("")

	require.NoError(t, f.Set(FieldName, "SPO2 Sensor"))
	require.NoError(t, f.Set(FieldModel, "YM2000"))
	require.NoError(t, f.Set(FieldOrigin, "China"))
	require.NoError(t, f.Set(FieldPrice, "150"))
	require.NoError(t, f.Set(FieldQuantity, "10"))

	saved, err := f.Submit(context.Background(), svc)
	require.NoError(t, err)

	assert.Equal(t, StateNavigated, f.State())
	assert.Equal(t, "p-1", saved.ID)
	assert.Equal(t, saved, f.Saved())
	assert.Equal(t, 1, svc.count("create"))
	assert.Zero(t, svc.count("update"))

	require.Len(t, svc.created, 1)
	sent := svc.created[0]
	assert.True(t, decimal.NewFromInt(150).Equal(sent.Price))
	assert.Equal(t, 10, sent.Quantity)
	assert.True(t, sent.Image.IsZero())
	assert.Empty(t, sent.ID)
}

func TestForm_SubmitUpdateKeepsID(t *testing.T) {
	svc := newFakeService(product("p-9", "Old", 1, "1"))
	f := NewForm("p-9")
	require.NoError(t, f.Load(context.Background(), svc))

	require.NoError(t, f.Set(FieldName, "New"))
	require.NoError(t, f.Set(FieldQuantity, "42"))
	saved, err := f.Submit(context.Background(), svc)
	require.NoError(t, err)

	assert.Equal(t, "p-9", saved.ID)
	assert.Equal(t, 1, svc.count("update"))

	got, err := svc.GetProduct(context.Background(), "p-9")
	require.NoError(t, err)
	want := product("p-9", "New", 42, "1")
	want.Model = "M-Old"
	if diff := cmp.Diff(want, got, decimalEqual, cmpopts.IgnoreFields(Product{}, "CreatedAt")); diff != "" {
		t.Errorf("stored product mismatch (-want +got):\n%s", diff)
	}
}

func TestForm_SubmitFailureReturnsToEditing(t *testing.T) {
	svc := newFakeService()
	svc.fail["create"] = errors.New("server exploded")

	f := NewForm("")
	require.NoError(t, f.Set(FieldName, "A"))
	require.NoError(t, f.Set(FieldModel, "B"))

	_, err := f.Submit(context.Background(), svc)
	require.Error(t, err)
	assert.Equal(t, StateEditing, f.State())
	assert.False(t, f.ReadOnly())
	assert.EqualError(t, f.Err(), "server exploded")
	assert.Equal(t, "A", f.Draft().Name, "draft survives the failure")
}

func TestForm_SubmitValidationFailure(t *testing.T) {
	svc := newFakeService()
	f := NewForm("")

	_, err := f.Submit(context.Background(), svc)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, FieldName, ve.Field)
	assert.Equal(t, StateEditing, f.State())
	assert.Error(t, f.Err())
	assert.Zero(t, svc.count("create"))
}

func TestForm_NoDoubleSubmit(t *testing.T) {
	f := NewForm("")
	require.NoError(t, f.Set(FieldName, "A"))
	require.NoError(t, f.Set(FieldModel, "B"))

	sub, err := f.BeginSubmit()
	require.NoError(t, err)
	_, err = f.BeginSubmit()
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.True(t, f.CompleteSubmit(sub.Ticket, Product{ID: "x"}, nil))
}

func TestForm_ClosedIgnoresLateCompletion(t *testing.T) {
	f := NewForm("p-1")
	tk, err := f.BeginLoad()
	require.NoError(t, err)

	f.Close()
	assert.False(t, f.CompleteLoad(tk, product("p-1", "Late", 1, "1"), nil))
	assert.Equal(t, StateLoading, f.State())
	assert.Empty(t, f.Draft().Name)

	_, err = f.BeginLoad()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestForm_StaleTicketIgnored(t *testing.T) {
	f := NewForm("")
	require.NoError(t, f.Set(FieldName, "A"))
	require.NoError(t, f.Set(FieldModel, "B"))

	first, err := f.BeginSubmit()
	require.NoError(t, err)
	require.True(t, f.CompleteSubmit(first.Ticket, Product{}, errors.New("nope")))

	second, err := f.BeginSubmit()
	require.NoError(t, err)
	assert.False(t, f.CompleteSubmit(first.Ticket, Product{ID: "ghost"}, nil))
	assert.Equal(t, StateSubmitting, f.State())
	assert.True(t, f.CompleteSubmit(second.Ticket, Product{ID: "real"}, nil))
	assert.Equal(t, "real", f.Saved().ID)
}

func TestForm_AttachAndPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.jpg")
	require.NoError(t, os.WriteFile(path, []byte("\xff\xd8\xff\xe0"), 0644))

	f := NewForm("")
	require.NoError(t, f.Attach(path))

	d := f.Draft()
	require.True(t, d.Image.IsLocal())
	assert.Equal(t, "shot.jpg", d.Image.Local.Name)
	assert.Equal(t, "image/jpeg", d.Image.Local.ContentType)
	assert.Equal(t, path, f.Preview())

	require.NoError(t, f.ClearImage())
	assert.True(t, f.Draft().Image.IsZero())
	assert.Equal(t, path, f.Preview(), "preview is decoupled from the draft")
}

func TestForm_AttachRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	f := NewForm("")
	var ve *ValidationError
	require.ErrorAs(t, f.Attach(path), &ve)
	assert.True(t, f.Draft().Image.IsZero())
}

func TestFormState_String(t *testing.T) {
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "unknown", FormState(99).String())
}
