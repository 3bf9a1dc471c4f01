package domain

import (
	"regexp"
	"strings"
	"time"
)

// PaletteTokenKeys is the fixed set of color roles a palette defines.
var PaletteTokenKeys = []string{
	"primary",
	"secondary",
	"accent",
	"background",
	"surface",
	"text",
	"muted",
	"border",
}

// Palette is a named set of color tokens owned by a user.
type Palette struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"ownerId"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags"`
	Tokens      map[string]string `json:"tokens"`
	IsPublic    bool              `json:"isPublic"`
	ShareID     string            `json:"shareId,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// PalettePatch is a partial update. Nil fields are left untouched; ShareID
// distinguishes "absent" (nil) from "clear" (pointer to empty string).
type PalettePatch struct {
	Name        *string
	Description *string
	Tags        []string
	Tokens      map[string]string
	IsPublic    *bool
	ShareID     *string
}

var hexColorRe = regexp.MustCompile(`^#[0-9A-F]{6}$`)

// NormalizeHexColor canonicalizes a color to "#RRGGBB" upper-case form,
// accepting a missing "#" prefix and the 3-digit shorthand. Returns "" when
// the input is not a valid hex color.
func NormalizeHexColor(input string) string {
	value := strings.TrimSpace(input)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}
	value = strings.ToUpper(value)

	if len(value) == 4 {
		var b strings.Builder
		b.WriteByte('#')
		for _, c := range value[1:] {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		value = b.String()
	}

	if !hexColorRe.MatchString(value) {
		return ""
	}
	return value
}
