package store

import (
	"time"

	"github.com/palettekit/palette-api/internal/core/domain"
)

const currentSchemaVersion = 1

// Metadata describes the persisted snapshot itself.
type Metadata struct {
	SchemaVersion int        `json:"schemaVersion"`
	GeneratedAt   *time.Time `json:"generatedAt"`
}

// Document is the entire persisted state: one self-consistent snapshot of
// every collection. The file on disk always holds a complete Document.
type Document struct {
	Metadata           Metadata                   `json:"metadata"`
	Users              []domain.User              `json:"users"`
	Palettes           []domain.Palette           `json:"palettes"`
	IdempotencyRecords []domain.IdempotencyRecord `json:"idempotencyRecords"`
}

func defaultDocument(now time.Time) *Document {
	return &Document{
		Metadata:           Metadata{SchemaVersion: currentSchemaVersion, GeneratedAt: &now},
		Users:              []domain.User{},
		Palettes:           []domain.Palette{},
		IdempotencyRecords: []domain.IdempotencyRecord{},
	}
}

// normalize repairs a document decoded from an external file so the rest of
// the code never sees nil collections or a zero schema version.
func (d *Document) normalize() {
	if d.Metadata.SchemaVersion <= 0 {
		d.Metadata.SchemaVersion = currentSchemaVersion
	}
	if d.Users == nil {
		d.Users = []domain.User{}
	}
	if d.Palettes == nil {
		d.Palettes = []domain.Palette{}
	}
	if d.IdempotencyRecords == nil {
		d.IdempotencyRecords = []domain.IdempotencyRecord{}
	}
}

// UserByID returns a pointer into the document, for use inside mutators.
func (d *Document) UserByID(id string) *domain.User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// UserByEmail returns a pointer into the document, for use inside mutators.
// The email is expected to be already normalized.
func (d *Document) UserByEmail(email string) *domain.User {
	for i := range d.Users {
		if d.Users[i].Email == email {
			return &d.Users[i]
		}
	}
	return nil
}

// PaletteForOwner returns a pointer into the document, for use inside mutators.
func (d *Document) PaletteForOwner(id, ownerID string) *domain.Palette {
	for i := range d.Palettes {
		if d.Palettes[i].ID == id && d.Palettes[i].OwnerID == ownerID {
			return &d.Palettes[i]
		}
	}
	return nil
}
