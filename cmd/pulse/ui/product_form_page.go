package ui

import (
	"context"
	"errors"
	"os"
	"strings"

	"pulseadmin/internal/catalog"
	"pulseadmin/internal/logging"
	"pulseadmin/internal/nav"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ImageExtensions are the files offered by the image picker.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// ProductFormPage creates a product or edits an existing one.
type ProductFormPage struct {
	life      *lifetime
	svc       catalog.Service
	form      *catalog.Form
	styles    Styles
	inputs    map[catalog.Field]*textinput.Model
	desc      textarea.Model
	focus     int
	fieldErrs map[catalog.Field]string
	attached  string // image input text that stands for the local attachment

	picker    filepicker.Model
	picking   bool
	populated bool
	spinner   spinner.Model
	width     int
	height    int
}

// NewProductFormPage opens the form. An empty id creates a new product.
func NewProductFormPage(ctx context.Context, styles Styles, svc catalog.Service, id string) *ProductFormPage {
	p := &ProductFormPage{
		life:      newLifetime(ctx),
		svc:       svc,
		form:      catalog.NewForm(id),
		styles:    styles,
		inputs:    make(map[catalog.Field]*textinput.Model),
		fieldErrs: make(map[catalog.Field]string),
		populated: id == "",
	}

	placeholders := map[catalog.Field]string{
		catalog.FieldName:     "SPO2 Sensor",
		catalog.FieldModel:    "YM2000",
		catalog.FieldOrigin:   "Country of origin",
		catalog.FieldBrand:    "optional",
		catalog.FieldPrice:    "0.00",
		catalog.FieldQuantity: "0",
		catalog.FieldImage:    "https://… (ctrl+o to attach a file)",
	}
	for _, f := range catalog.EditableFields {
		if f == catalog.FieldDescription {
			continue
		}
		ti := textinput.New()
		ti.Prompt = "│ "
		ti.PromptStyle = styles.Prompt
		ti.Placeholder = placeholders[f]
		ti.CharLimit = 512
		ti.Width = 48
		p.inputs[f] = &ti
	}

	ta := textarea.New()
	ta.Placeholder = "Markdown is supported"
	ta.ShowLineNumbers = false
	ta.SetWidth(50)
	ta.SetHeight(4)
	ta.CharLimit = 4000
	p.desc = ta

	fp := filepicker.New()
	fp.AllowedTypes = ImageExtensions
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}
	p.picker = fp

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner
	p.spinner = sp

	p.focusField(0)
	return p
}

func (p *ProductFormPage) Init() tea.Cmd {
	if p.form.IsNew() {
		return textinput.Blink
	}
	return p.load()
}

func (p *ProductFormPage) Title() string {
	if p.form.IsNew() {
		return "Add product"
	}
	return "Edit product"
}

func (p *ProductFormPage) Help() string {
	if p.picking {
		return "↑/↓ browse • enter choose • esc cancel"
	}
	return "tab next • shift+tab prev • ctrl+s save • ctrl+o attach image • ctrl+x clear image • esc back"
}

func (p *ProductFormPage) Capturing() bool { return !p.form.ReadOnly() }

func (p *ProductFormPage) SetSize(width, height int) {
	p.width, p.height = width, height
	w := width - 20
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	for _, in := range p.inputs {
		in.Width = w
	}
	p.desc.SetWidth(w + 2)
	p.picker.Height = height - 6
}

func (p *ProductFormPage) Close() {
	p.form.Close()
	p.life.close()
}

// Form exposes the state machine backing the page.
func (p *ProductFormPage) Form() *catalog.Form { return p.form }

// FieldError returns the inline error for field, if its text was rejected.
func (p *ProductFormPage) FieldError(f catalog.Field) string { return p.fieldErrs[f] }

func (p *ProductFormPage) load() tea.Cmd {
	t, err := p.form.BeginLoad()
	if err != nil {
		return nil
	}
	svc, form := p.svc, p.form
	return tea.Batch(p.spinner.Tick, p.life.run(func(ctx context.Context) {
		_ = form.Fetch(ctx, svc, t)
	}))
}

func (p *ProductFormPage) submit() tea.Cmd {
	for _, f := range catalog.EditableFields {
		if _, bad := p.fieldErrs[f]; bad {
			p.focusField(fieldIndex(f))
			return nil
		}
	}
	sub, err := p.form.BeginSubmit()
	if err != nil {
		// Validation failures are surfaced through form.Err.
		var ve *catalog.ValidationError
		if errors.As(err, &ve) {
			p.focusField(fieldIndex(ve.Field))
		}
		return nil
	}
	p.blurAll()
	logging.UI("form: saving product %q", sub.Draft.Name)

	svc, form := p.svc, p.form
	return tea.Batch(p.spinner.Tick, p.life.run(func(ctx context.Context) {
		_, _ = form.Send(context.WithoutCancel(ctx), svc, sub)
	}))
}

func (p *ProductFormPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case refreshMsg:
		if msg.owner != p.life {
			return nil
		}
		return p.afterRequest()

	case spinner.TickMsg:
		if s := p.form.State(); s != catalog.StateLoading && s != catalog.StateSubmitting {
			return nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		if p.picking {
			return p.updatePicker(msg)
		}
		return p.handleKey(msg)
	}

	if p.picking {
		var cmd tea.Cmd
		p.picker, cmd = p.picker.Update(msg)
		return cmd
	}
	return p.updateFocused(msg)
}

func (p *ProductFormPage) afterRequest() tea.Cmd {
	switch p.form.State() {
	case catalog.StateNavigated:
		return func() tea.Msg { return NavigateMsg{Path: nav.PathProducts, Replace: true} }
	case catalog.StateEditing:
		if !p.populated {
			p.populate()
		}
		p.focusField(p.focus)
	}
	return nil
}

// populate copies the loaded draft into the controls.
func (p *ProductFormPage) populate() {
	d := p.form.Draft()
	for f, in := range p.inputs {
		in.SetValue(d.Text(f))
	}
	p.desc.SetValue(d.Description)
	p.populated = true
}

func (p *ProductFormPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		if p.form.Err() != nil {
			p.form.DismissError()
			return nil
		}
		return func() tea.Msg { return BackMsg{} }
	case "r":
		if p.form.State() == catalog.StateEmpty && !p.form.IsNew() {
			return p.load()
		}
	}

	if p.form.ReadOnly() {
		return nil
	}

	switch msg.String() {
	case "tab", "down":
		if msg.String() == "down" && p.currentField() == catalog.FieldDescription {
			break
		}
		p.focusField(p.focus + 1)
		return nil
	case "shift+tab", "up":
		if msg.String() == "up" && p.currentField() == catalog.FieldDescription {
			break
		}
		p.focusField(p.focus - 1)
		return nil
	case "enter":
		if p.currentField() != catalog.FieldDescription {
			p.focusField(p.focus + 1)
			return nil
		}
	case "ctrl+s":
		return p.submit()
	case "ctrl+o":
		p.picking = true
		return p.picker.Init()
	case "ctrl+x":
		if err := p.form.ClearImage(); err == nil {
			p.inputs[catalog.FieldImage].SetValue("")
			p.attached = ""
			delete(p.fieldErrs, catalog.FieldImage)
		}
		return nil
	}
	return p.updateFocused(msg)
}

func (p *ProductFormPage) updatePicker(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		p.picking = false
		return nil
	}

	var cmd tea.Cmd
	p.picker, cmd = p.picker.Update(msg)

	if ok, path := p.picker.DidSelectFile(msg); ok {
		p.picking = false
		p.Attach(path)
	} else if ok, path := p.picker.DidSelectDisabledFile(msg); ok {
		p.fieldErrs[catalog.FieldImage] = path + " is not a supported image type"
		p.picking = false
	}
	return cmd
}

// Attach sets the image to a local file.
func (p *ProductFormPage) Attach(path string) {
	if err := p.form.Attach(path); err != nil {
		p.fieldErrs[catalog.FieldImage] = errorText(err)
		return
	}
	delete(p.fieldErrs, catalog.FieldImage)
	p.attached = path
	p.inputs[catalog.FieldImage].SetValue(path)
	logging.UIDebug("form: attached %s", path)
}

// updateFocused forwards msg to the focused control and copies its text
// into the draft.
func (p *ProductFormPage) updateFocused(msg tea.Msg) tea.Cmd {
	if p.form.ReadOnly() {
		return nil
	}

	field := p.currentField()
	var cmd tea.Cmd
	var text string
	if field == catalog.FieldDescription {
		p.desc, cmd = p.desc.Update(msg)
		text = p.desc.Value()
	} else {
		in := p.inputs[field]
		*in, cmd = in.Update(msg)
		text = in.Value()
	}

	if field == catalog.FieldImage && p.attached != "" && text == p.attached {
		return cmd
	}
	p.SetField(field, text)
	return cmd
}

// SetField edits one field, recording an inline error when the text is rejected.
func (p *ProductFormPage) SetField(field catalog.Field, text string) {
	if field == catalog.FieldImage {
		p.attached = ""
	}
	if err := p.form.Set(field, text); err != nil {
		var ve *catalog.ValidationError
		if errors.As(err, &ve) {
			p.fieldErrs[field] = ve.Reason
		}
		return
	}
	delete(p.fieldErrs, field)
}

func (p *ProductFormPage) currentField() catalog.Field {
	return catalog.EditableFields[p.focus]
}

func fieldIndex(f catalog.Field) int {
	for i, ef := range catalog.EditableFields {
		if ef == f {
			return i
		}
	}
	return 0
}

func (p *ProductFormPage) focusField(i int) {
	n := len(catalog.EditableFields)
	p.focus = ((i % n) + n) % n
	p.blurAll()
	if p.form.ReadOnly() {
		return
	}
	if f := p.currentField(); f == catalog.FieldDescription {
		p.desc.Focus()
	} else {
		p.inputs[f].Focus()
	}
}

func (p *ProductFormPage) blurAll() {
	for _, in := range p.inputs {
		in.Blur()
	}
	p.desc.Blur()
}

func (p *ProductFormPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render(p.Title()))
	sb.WriteString("\n")

	if p.picking {
		sb.WriteString(p.styles.Subtitle.Render("Choose an image"))
		sb.WriteString("\n")
		sb.WriteString(p.picker.View())
		return sb.String()
	}

	state := p.form.State()
	if err := p.form.Err(); err != nil {
		hint := "esc to dismiss"
		if state == catalog.StateEmpty {
			hint = "press r to retry, esc to go back"
		}
		sb.WriteString(p.styles.ErrorBanner(errorText(err), hint))
		sb.WriteString("\n")
	}

	switch state {
	case catalog.StateLoading:
		sb.WriteString(p.spinner.View() + " Loading product…")
		return sb.String()
	case catalog.StateEmpty:
		return sb.String()
	}

	readOnly := p.form.ReadOnly()
	for i, f := range catalog.EditableFields {
		label := p.styles.Label.Render(f.Label())
		if i == p.focus && !readOnly {
			label = p.styles.LabelFocused.Render(f.Label())
		}
		var control string
		if f == catalog.FieldDescription {
			control = p.desc.View()
		} else {
			control = p.inputs[f].View()
		}
		if readOnly {
			control = p.styles.InputDisabled.Render(control)
		}
		sb.WriteString(label + control + "\n")
		if msg, ok := p.fieldErrs[f]; ok {
			sb.WriteString(p.styles.FieldError.Render(msg) + "\n")
		}
	}

	sb.WriteString("\n")
	preview := p.form.Preview()
	if preview == "" {
		preview = "no image"
	}
	sb.WriteString(p.styles.Muted.Render("Preview: ") + p.styles.Info.Render(preview))
	sb.WriteString("\n\n")

	if state == catalog.StateSubmitting {
		sb.WriteString(p.spinner.View() + " Saving…")
	} else {
		sb.WriteString(p.styles.Muted.Render("ctrl+s to save"))
	}
	return sb.String()
}
