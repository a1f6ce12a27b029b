package permission

import (
	"sync"
)

// Document is the externally-supplied permission map:
// brand name -> format type -> roles allowed to touch that format.
// A format is accessible iff its role list is non-empty.
type Document map[string]map[string][]string

// Accessible reports whether the brand may see the format at all.
func (d Document) Accessible(brand, format string) bool {
	formats, ok := d[brand]
	if !ok {
		return false
	}
	return len(formats[format]) > 0
}

// Formats returns the accessible format types for a brand.
func (d Document) Formats(brand string) []string {
	var out []string
	for format, roles := range d[brand] {
		if len(roles) > 0 {
			out = append(out, format)
		}
	}
	return out
}

// Clone deep-copies the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for brand, formats := range d {
		cf := make(map[string][]string, len(formats))
		for format, roles := range formats {
			cf[format] = append([]string{}, roles...)
		}
		out[brand] = cf
	}
	return out
}

// Holder is the live permission map shared between the facet projector and the
// file watcher that hot-reloads it.
type Holder struct {
	mu  sync.RWMutex
	doc Document
}

// NewHolder wraps a document.
func NewHolder(doc Document) *Holder {
	if doc == nil {
		doc = Document{}
	}
	return &Holder{doc: doc}
}

// Accessible checks the current document.
func (h *Holder) Accessible(brand, format string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.doc.Accessible(brand, format)
}

// Snapshot returns a copy of the current document.
func (h *Holder) Snapshot() Document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.doc.Clone()
}

// Replace swaps in a new document. Called by the repository watcher.
func (h *Holder) Replace(doc Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.doc = doc.Clone()
}
