package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names a single editable product attribute. Values match the
// remote API's field names.
type Field string

const (
	FieldName        Field = "name"
	FieldModel       Field = "productModel"
	FieldOrigin      Field = "productOrigin"
	FieldBrand       Field = "brand"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
	FieldQuantity    Field = "quantity"
	FieldImage       Field = "image"
)

// EditableFields lists the fields in form order.
var EditableFields = []Field{
	FieldName, FieldModel, FieldOrigin, FieldBrand, FieldPrice, FieldQuantity, FieldDescription, FieldImage,
}

// Label is the human name of the field.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldModel:
		return "Model"
	case FieldOrigin:
		return "Origin"
	case FieldBrand:
		return "Brand"
	case FieldDescription:
		return "Description"
	case FieldPrice:
		return "Price"
	case FieldQuantity:
		return "Quantity"
	case FieldImage:
		return "Image"
	default:
		return string(f)
	}
}

// ParsePrice converts editable text to a price. Blank text is zero.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: FieldPrice, Reason: fmt.Sprintf("%q is not a number", s), Err: err}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: FieldPrice, Reason: "must not be negative"}
	}
	return d, nil
}

// ParseQuantity converts editable text to a stock count. Blank text is zero.
// Input is always base 10, so "010" is ten.
func ParseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: FieldQuantity, Reason: fmt.Sprintf("%q is not a whole number", s), Err: err}
	}
	if n < 0 {
		return 0, &ValidationError{Field: FieldQuantity, Reason: "must not be negative"}
	}
	return n, nil
}

// Draft is the in-memory product being edited. Price and Quantity are
// always numeric; text is converted by Set.
type Draft struct {
	Product
}

// DraftOf starts a draft from a persisted product.
func DraftOf(p Product) Draft {
	return Draft{Product: p}
}

// Set mutates exactly one field. Numeric fields are coerced immediately and
// invalid input leaves the draft unchanged.
func (d *Draft) Set(field Field, value string) error {
	switch field {
	case FieldName:
		d.Name = value
	case FieldModel:
		d.Model = value
	case FieldOrigin:
		d.Origin = value
	case FieldBrand:
		d.Brand = value
	case FieldDescription:
		d.Description = value
	case FieldPrice:
		p, err := ParsePrice(value)
		if err != nil {
			return err
		}
		d.Price = p
	case FieldQuantity:
		q, err := ParseQuantity(value)
		if err != nil {
			return err
		}
		d.Quantity = q
	case FieldImage:
		value = strings.TrimSpace(value)
		switch {
		case value == "":
			d.Image = Image{}
		case IsImageURL(value):
			d.Image = RemoteImage(value)
		default:
			return &ValidationError{Field: FieldImage, Reason: "must be an http(s) URL; attach local files instead"}
		}
	default:
		return &ValidationError{Field: field, Reason: "unknown field"}
	}
	return nil
}

// Text returns the editable text of field. Zero numbers are blank on a new
// draft and "0" on a persisted one.
func (d *Draft) Text(field Field) string {
	switch field {
	case FieldName:
		return d.Name
	case FieldModel:
		return d.Model
	case FieldOrigin:
		return d.Origin
	case FieldBrand:
		return d.Brand
	case FieldDescription:
		return d.Description
	case FieldPrice:
		if d.Price.IsZero() && d.ID == "" {
			return ""
		}
		return d.Price.String()
	case FieldQuantity:
		if d.Quantity == 0 && d.ID == "" {
			return ""
		}
		return strconv.Itoa(d.Quantity)
	case FieldImage:
		return d.Image.String()
	default:
		return ""
	}
}

// Validate checks the required fields.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: FieldName, Reason: "is required"}
	}
	if strings.TrimSpace(d.Model) == "" {
		return &ValidationError{Field: FieldModel, Reason: "is required"}
	}
	return nil
}
