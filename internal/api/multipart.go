package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"pulseadmin/internal/catalog"
)

type formField struct {
	name  catalog.Field
	value string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeProduct renders a product write as multipart/form-data. Product
// writes always use multipart, with or without an image. An update with no
// image sends an empty image field so the server drops the stored one.
func encodeProduct(p catalog.Product, update bool) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []formField{
		{catalog.FieldName, p.Name},
		{catalog.FieldModel, p.Model},
		{catalog.FieldOrigin, p.Origin},
		{catalog.FieldDescription, p.Description},
		{catalog.FieldPrice, p.Price.String()},
		{catalog.FieldQuantity, strconv.Itoa(p.Quantity)},
	}
	if p.Brand != "" {
		fields = append(fields, formField{catalog.FieldBrand, p.Brand})
	}
	for _, f := range fields {
		if err := w.WriteField(string(f.name), f.value); err != nil {
			return nil, "", err
		}
	}

	switch {
	case p.Image.IsLocal():
		if err := writeAttachment(w, p.Image.Local); err != nil {
			return nil, "", err
		}
	case p.Image.IsRemote():
		if err := w.WriteField(string(catalog.FieldImage), p.Image.URL); err != nil {
			return nil, "", err
		}
	case update:
		if err := w.WriteField(string(catalog.FieldImage), ""); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func writeAttachment(w *multipart.Writer, a *catalog.Attachment) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		catalog.FieldImage, quoteEscaper.Replace(a.FileName())))
	h.Set("Content-Type", a.MIMEType())

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}

	f, err := a.Open()
	if err != nil {
		return &catalog.ValidationError{Field: catalog.FieldImage, Reason: fmt.Sprintf("cannot read %s", a.Path), Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	return nil
}
