package core

import (
	"io"

	"github.com/goccy/go-json"
)

// DocumentVersion is the interchange format version written by Export.
const DocumentVersion = 1

// Document is the portable snapshot of every collection. A nil slice or
// config means the collection is missing; an empty slice is valid.
type Document struct {
	Version        int             `json:"version"`
	Categories     []Category      `json:"categories"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	Transactions   []Transaction   `json:"transactions"`
	UserConfig     *UserConfig     `json:"userConfig"`
}

// Validate performs structural validation only.
func (d Document) Validate() error {
	if d.Version > DocumentVersion {
		return NewValidationError("unsupported document version %d (max %d)", d.Version, DocumentVersion)
	}
	if d.Categories == nil {
		return NewValidationError("document is missing categories")
	}
	if d.PaymentMethods == nil {
		return NewValidationError("document is missing paymentMethods")
	}
	if d.Transactions == nil {
		return NewValidationError("document is missing transactions")
	}
	if d.UserConfig == nil {
		return NewValidationError("document is missing userConfig")
	}
	return nil
}

// EncodeDocument writes d as indented UTF-8 JSON.
func EncodeDocument(w io.Writer, d Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// DecodeDocument parses and structurally validates a document. A missing
// version is read as version 1.
func DecodeDocument(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, NewValidationError("malformed document: %v", err)
	}
	if d.Version == 0 {
		d.Version = DocumentVersion
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}
