package ui

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pulseadmin/internal/catalog"
	"pulseadmin/internal/nav"
	"pulseadmin/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPage_RequiresCredentials(t *testing.T) {
	called := false
	p := NewLoginPage(testCtx(t), DefaultStyles(), func(ctx context.Context, email, password string) error {
		called = true
		return nil
	}, "")

	cmd := press(p, "enter", "enter")
	assert.Nil(t, cmd)
	assert.False(t, called)
	assert.ErrorIs(t, p.Err(), errMissingCredentials)
	assert.Contains(t, p.View(), "email and password are required")
}

func TestLoginPage_FailureKeepsEmailAndClearsPassword(t *testing.T) {
	p := NewLoginPage(testCtx(t), DefaultStyles(), func(ctx context.Context, email, password string) error {
		return errors.New("Invalid email or password")
	}, "admin@pulse.io")

	press(p, "wrong")
	cmd := press(p, "enter")
	require.NotNil(t, cmd)
	assert.True(t, p.Submitting())
	assert.Contains(t, p.View(), "Signing in")

	msgs := settle(t, p, cmd)
	assert.Empty(t, msgs)
	assert.False(t, p.Submitting())
	assert.Contains(t, p.View(), "Invalid email or password")
	assert.Equal(t, "admin@pulse.io", p.email.Value())
	assert.Empty(t, p.password.Value())
}

func TestLoginPage_Success(t *testing.T) {
	var gotEmail, gotPassword string
	p := NewLoginPage(testCtx(t), DefaultStyles(), func(ctx context.Context, email, password string) error {
		gotEmail, gotPassword = email, password
		return nil
	}, "")

	press(p, " admin@pulse.io ", "tab", "secret")
	msgs := settle(t, p, press(p, "enter"))

	assert.Equal(t, "admin@pulse.io", gotEmail)
	assert.Equal(t, "secret", gotPassword)
	require.Len(t, msgs, 1)
	assert.Equal(t, SessionStartedMsg{Email: "admin@pulse.io"}, msgs[0])
}

func TestLoginPage_ResultAfterCloseIsIgnored(t *testing.T) {
	release := make(chan struct{})
	p := NewLoginPage(testCtx(t), DefaultStyles(), func(ctx context.Context, email, password string) error {
		<-release
		return nil
	}, "admin@pulse.io")

	press(p, "secret")
	cmd := press(p, "enter")
	p.Close()
	close(release)

	assert.Empty(t, settle(t, NewLoginPage(testCtx(t), DefaultStyles(), nil, ""), cmd),
		"a result owned by a closed page reaches nobody")
}

func TestDashboardPage_Summary(t *testing.T) {
	e := newEnv(t)
	e.srv.Seed(
		product("SPO2 Sensor", "YM2000", 12, "150"),
		product("ECG Cable", "EC-5", 3, "20.50"),
		product("Probe", "P1", 0, "9"),
	)

	p := NewDashboardPage(testCtx(t), DefaultStyles(), e.client)
	assert.Contains(t, p.View(), "Loading inventory")
	settle(t, p, p.Init())

	view := p.View()
	assert.Contains(t, view, "Inventory value")
	assert.Contains(t, view, "1861.50")
	assert.Contains(t, view, "ECG Cable")
	assert.Contains(t, view, "Probe")
	assert.NotContains(t, view, "SPO2 Sensor", "in-stock products are not listed for restocking")
}

func TestDashboardPage_FailureOffersRetry(t *testing.T) {
	e := newEnv(t)
	e.srv.Fail("GET /api/products", http.StatusInternalServerError, "")

	p := NewDashboardPage(testCtx(t), DefaultStyles(), e.client)
	settle(t, p, p.Init())
	assert.Contains(t, p.View(), "Failed to fetch products")
	assert.Contains(t, p.View(), "press r to retry")

	e.srv.Fail("GET /api/products", 0, "")
	e.srv.Seed(product("A", "M", 1, "1"))
	settle(t, p, press(p, "r"))
	assert.NotContains(t, p.View(), "Failed to fetch products")
}

func TestProductsPage_ListsProducts(t *testing.T) {
	e := newEnv(t)
	e.srv.Seed(product("SPO2 Sensor", "YM2000", 12, "150"), product("ECG Cable", "EC-5", 3, "20.5"))

	p := NewProductsPage(testCtx(t), DefaultStyles(), e.client, true)
	p.SetSize(100, 30)
	settle(t, p, p.Init())

	view := p.View()
	assert.Contains(t, view, "Products (2)")
	assert.Contains(t, view, "SPO2 Sensor")
	assert.Contains(t, view, "in stock")
	assert.Contains(t, view, "low stock")
	assert.Contains(t, view, "20.50")
}

func TestProductsPage_EnterOpensEditor(t *testing.T) {
	e := newEnv(t)
	seeded := e.srv.Seed(product("SPO2 Sensor", "YM2000", 12, "150"))

	p := NewProductsPage(testCtx(t), DefaultStyles(), e.client, true)
	settle(t, p, p.Init())

	msgs := settle(t, p, press(p, "enter"))
	require.Len(t, msgs, 1)
	assert.Equal(t, NavigateMsg{Path: nav.EditPath(seeded[0].ID)}, msgs[0])

	msgs = settle(t, p, press(p, "n"))
	require.Len(t, msgs, 1)
	assert.Equal(t, NavigateMsg{Path: nav.PathProductNew}, msgs[0])
}

func TestProductsPage_DeleteNeedsConfirmation(t *testing.T) {
	e := newEnv(t)
	seeded := e.srv.Seed(product("SPO2 Sensor", "YM2000", 12, "150"), product("ECG Cable", "EC-5", 3, "20.5"))

	p := NewProductsPage(testCtx(t), DefaultStyles(), e.client, true)
	settle(t, p, p.Init())

	assert.Nil(t, press(p, "d"))
	assert.Contains(t, p.View(), `Delete "SPO2 Sensor"?`)

	press(p, "n")
	assert.NotContains(t, p.View(), "Delete \"")
	assert.Equal(t, 0, e.srv.Count(http.MethodDelete, "/api/products"), "declining issues no request")

	press(p, "d")
	cmd := press(p, "y")
	require.NotNil(t, cmd)
	assert.True(t, p.List().Deleting(seeded[0].ID))
	assert.Contains(t, p.View(), DeletingLabel)

	settle(t, p, cmd)
	assert.Equal(t, 1, p.List().Len())
	assert.NotContains(t, p.View(), "SPO2 Sensor")
	_, stillThere := e.srv.Product(seeded[0].ID)
	assert.False(t, stillThere)
}

func TestProductsPage_DeleteFailureKeepsRow(t *testing.T) {
	e := newEnv(t)
	seeded := e.srv.Seed(product("SPO2 Sensor", "YM2000", 12, "150"))
	e.srv.Fail("DELETE /api/products/"+seeded[0].ID, http.StatusConflict, "Product is referenced by an order")

	p := NewProductsPage(testCtx(t), DefaultStyles(), e.client, false)
	settle(t, p, p.Init())
	settle(t, p, press(p, "d"))

	assert.Equal(t, 1, p.List().Len())
	assert.False(t, p.List().Deleting(seeded[0].ID))
	assert.Contains(t, p.View(), "Product is referenced by an order")

	press(p, "esc")
	assert.NotContains(t, p.View(), "Product is referenced by an order")
}

func TestProductsPage_FetchFailureThenRetry(t *testing.T) {
	e := newEnv(t)
	e.srv.Seed(product("SPO2 Sensor", "YM2000", 12, "150"))
	e.srv.RevokeTokens()

	p := NewProductsPage(testCtx(t), DefaultStyles(), e.client, true)
	settle(t, p, p.Init())
	assert.Contains(t, p.View(), "Unauthorized: invalid or missing token")
	assert.Equal(t, 0, p.List().Len())

	other := session.User{ID: "u2", Email: "other@pulse.io", Role: "admin"}
	token := e.srv.AddUser(other.Email, "pw", other)
	require.NoError(t, e.sess.Begin(token, other))
	settle(t, p, press(p, "r"))
	assert.Equal(t, 1, p.List().Len())
}

func TestProductFormPage_CreateFlow(t *testing.T) {
	e := newEnv(t)
	p := NewProductFormPage(testCtx(t), DefaultStyles(), e.client, "")
	assert.Equal(t, "Add product", p.Title())
	assert.True(t, p.Capturing())

	// Name, Model, Origin, Brand, Price, Quantity
	press(p, "SPO2 Sensor", "tab", "YM2000", "tab", "China", "tab", "tab", "abc")
	assert.Equal(t, `"abc" is not a number`, p.FieldError(catalog.FieldPrice))
	assert.Nil(t, press(p, "ctrl+s"), "a rejected field blocks saving")

	press(p, "backspace", "backspace", "backspace", "150", "tab", "10")
	assert.Empty(t, p.FieldError(catalog.FieldPrice))

	cmd := press(p, "ctrl+s")
	require.NotNil(t, cmd)
	assert.Equal(t, catalog.StateSubmitting, p.Form().State())
	assert.False(t, p.Capturing())

	msgs := settle(t, p, cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, NavigateMsg{Path: nav.PathProducts, Replace: true}, msgs[0])

	saved := e.srv.Products()
	require.Len(t, saved, 1)
	assert.Equal(t, "SPO2 Sensor", saved[0].Name)
	assert.Equal(t, "YM2000", saved[0].Model)
	assert.True(t, saved[0].Price.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 10, saved[0].Quantity)
}

func TestProductFormPage_RequiredFields(t *testing.T) {
	e := newEnv(t)
	p := NewProductFormPage(testCtx(t), DefaultStyles(), e.client, "")

	assert.Nil(t, press(p, "ctrl+s"))
	assert.Contains(t, p.View(), "Name: is required")
	assert.Equal(t, catalog.StateEditing, p.Form().State())
	assert.Equal(t, 0, e.srv.Count(http.MethodPost, "/api/products"))
}

func TestProductFormPage_EditLoadsAndKeepsID(t *testing.T) {
	e := newEnv(t)
	seeded := e.srv.Seed(product("SPO2 Sensor", "YM2000", 12, "150"))
	id := seeded[0].ID

	p := NewProductFormPage(testCtx(t), DefaultStyles(), e.client, id)
	cmd := p.Init()
	assert.Equal(t, catalog.StateLoading, p.Form().State())
	assert.Contains(t, p.View(), "Loading product")
	assert.False(t, p.Capturing(), "controls are disabled while loading")

	settle(t, p, cmd)
	require.Equal(t, catalog.StateEditing, p.Form().State())
	assert.Equal(t, "SPO2 Sensor", p.inputs[catalog.FieldName].Value())
	assert.Equal(t, "150", p.inputs[catalog.FieldPrice].Value())

	press(p, " v2")
	msgs := settle(t, p, press(p, "ctrl+s"))
	require.Len(t, msgs, 1)

	got, ok := e.srv.Product(id)
	require.True(t, ok)
	assert.Equal(t, "SPO2 Sensor v2", got.Name)
	assert.Len(t, e.srv.Products(), 1, "editing never creates a second product")
}

func TestProductFormPage_LoadFailure(t *testing.T) {
	e := newEnv(t)
	p := NewProductFormPage(testCtx(t), DefaultStyles(), e.client, "missing")
	settle(t, p, p.Init())

	assert.Equal(t, catalog.StateEmpty, p.Form().State())
	assert.Contains(t, p.View(), "Product not found")
	assert.Contains(t, p.View(), "press r to retry")

	msgs := settle(t, p, press(p, "esc"))
	assert.Empty(t, msgs, "first esc dismisses the error")
	msgs = settle(t, p, press(p, "esc"))
	require.Len(t, msgs, 1)
	assert.Equal(t, BackMsg{}, msgs[0])
}

func TestProductFormPage_SaveFailureReturnsToEditing(t *testing.T) {
	e := newEnv(t)
	e.srv.Fail("POST /api/products", http.StatusBadRequest, "Invalid price")
	p := NewProductFormPage(testCtx(t), DefaultStyles(), e.client, "")
	p.SetField(catalog.FieldName, "A")
	p.SetField(catalog.FieldModel, "B")

	msgs := settle(t, p, press(p, "ctrl+s"))
	assert.Empty(t, msgs)
	assert.Equal(t, catalog.StateEditing, p.Form().State())
	assert.Contains(t, p.View(), "Invalid price")
}

func TestProductFormPage_ImagePreview(t *testing.T) {
	e := newEnv(t)
	p := NewProductFormPage(testCtx(t), DefaultStyles(), e.client, "")
	assert.Contains(t, p.View(), "no image")

	p.SetField(catalog.FieldImage, "https://cdn.example/a.png")
	assert.Contains(t, p.View(), "https://cdn.example/a.png")

	p.Attach("/does/not/exist.png")
	assert.NotEmpty(t, p.FieldError(catalog.FieldImage))

	press(p, "ctrl+x")
	assert.True(t, p.Form().Draft().Image.IsZero())
	assert.Contains(t, p.View(), "https://cdn.example/a.png", "clearing the image keeps the preview")
}

func TestProductFormPage_ImageInputRejectsLocalPath(t *testing.T) {
	e := newEnv(t)
	p := NewProductFormPage(testCtx(t), DefaultStyles(), e.client, "")
	p.SetField(catalog.FieldName, "A")
	p.SetField(catalog.FieldModel, "B")

	p.SetField(catalog.FieldImage, "./spo2.jpg")
	assert.NotEmpty(t, p.FieldError(catalog.FieldImage))
	assert.True(t, p.Form().Draft().Image.IsZero())
	assert.Nil(t, press(p, "ctrl+s"), "a rejected image blocks saving")
	assert.Equal(t, 0, e.srv.Count(http.MethodPost, "/api/products"))
}

func TestProductFormPage_ClearImageIsSaved(t *testing.T) {
	e := newEnv(t)
	stored := product("SPO2 Sensor", "YM2000", 0, "150")
	stored.Image = catalog.RemoteImage("https://x/a.jpg")
	id := e.srv.Seed(stored)[0].ID

	p := NewProductFormPage(testCtx(t), DefaultStyles(), e.client, id)
	settle(t, p, p.Init())
	require.Equal(t, catalog.StateEditing, p.Form().State())
	assert.Equal(t, "0", p.inputs[catalog.FieldQuantity].Value())
	assert.Equal(t, "https://x/a.jpg", p.inputs[catalog.FieldImage].Value())

	press(p, "ctrl+x")
	msgs := settle(t, p, press(p, "ctrl+s"))
	require.Len(t, msgs, 1)

	got, ok := e.srv.Product(id)
	require.True(t, ok)
	assert.True(t, got.Image.IsZero(), "image still stored: %q", got.Image.URL)
}

func TestNotFoundPage(t *testing.T) {
	p := NewNotFoundPage(DefaultStyles(), "/orders")
	assert.Contains(t, p.View(), "/orders")
	msgs := settle(t, p, press(p, "enter"))
	require.Len(t, msgs, 1)
	assert.Equal(t, NavigateMsg{Path: nav.PathDashboard, Replace: true}, msgs[0])
}

func TestSidebar(t *testing.T) {
	s := DefaultStyles()
	view := RenderSidebar(s, nav.RouteProductEdit, "admin@pulse.io")
	for _, e := range NavEntries {
		assert.Contains(t, view, e.Label)
	}
	assert.Contains(t, view, "admin@pulse.io")

	e, ok := EntryForKey("alt+4")
	require.True(t, ok)
	assert.Equal(t, "Logout", e.Label)
	_, ok = EntryForKey("x")
	assert.False(t, ok)
}
