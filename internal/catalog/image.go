package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Defaults applied to attachments with no name or type.
const (
	DefaultImageName = "product.jpg"
	DefaultImageType = "image/jpeg"
)

// Attachment is a local file chosen for upload but not yet sent.
type Attachment struct {
	Path        string `json:"uri"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"type,omitempty"`
}

// NewAttachment describes the regular file at path.
func NewAttachment(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ValidationError{Field: FieldImage, Reason: fmt.Sprintf("cannot read %s", path), Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &ValidationError{Field: FieldImage, Reason: fmt.Sprintf("%s is not a file", path)}
	}

	a := &Attachment{Path: path, Name: filepath.Base(path)}
	a.ContentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if a.ContentType == "" {
		a.ContentType = sniff(path)
	}
	if !strings.HasPrefix(a.ContentType, "image/") {
		return nil, &ValidationError{Field: FieldImage, Reason: fmt.Sprintf("%s is not an image (%s)", a.Name, a.ContentType)}
	}
	return a, nil
}

func sniff(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, _ := io.ReadFull(f, buf)
	return http.DetectContentType(buf[:n])
}

// FileName returns Name or the default.
func (a *Attachment) FileName() string {
	if a.Name == "" {
		return DefaultImageName
	}
	return a.Name
}

// MIMEType returns ContentType or the default.
func (a *Attachment) MIMEType() string {
	if a.ContentType == "" {
		return DefaultImageType
	}
	return a.ContentType
}

// Open opens the attachment for reading.
func (a *Attachment) Open() (io.ReadCloser, error) {
	return os.Open(a.Path)
}

// Image is either a persisted remote URL or a pending local attachment.
// The zero value means no image.
type Image struct {
	URL   string
	Local *Attachment
}

// IsImageURL reports whether s is an http(s) URL rather than a local path.
func IsImageURL(s string) bool {
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// RemoteImage wraps an already persisted URL.
func RemoteImage(url string) Image {
	return Image{URL: url}
}

// LocalImage wraps a pending attachment.
func LocalImage(a *Attachment) Image {
	return Image{Local: a}
}

func (i Image) IsZero() bool   { return i.URL == "" && i.Local == nil }
func (i Image) IsRemote() bool { return i.Local == nil && i.URL != "" }
func (i Image) IsLocal() bool  { return i.Local != nil }

// String returns the URL or the local path.
func (i Image) String() string {
	if i.Local != nil {
		return i.Local.Path
	}
	return i.URL
}

func (i Image) MarshalJSON() ([]byte, error) {
	switch {
	case i.Local != nil:
		return json.Marshal(i.Local)
	case i.URL != "":
		return json.Marshal(i.URL)
	default:
		return []byte("null"), nil
	}
}

func (i *Image) UnmarshalJSON(data []byte) error {
	*i = Image{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &i.URL)
	}
	var a Attachment
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	i.Local = &a
	return nil
}
