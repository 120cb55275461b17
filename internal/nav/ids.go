package nav

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	idSeparator = "::"
	cloneSuffix = "clone"

	// TopLevel is the key of the section that is always rendered first.
	TopLevel = "top_level"
)

// Slug converts display text into an id segment: diacritics are stripped,
// the text is lower-cased and every run of non-alphanumerics becomes "_".
func Slug(display string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, display)
	if err != nil {
		folded = display
	}

	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(folded) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte('_')
		}
		gap = false
		b.WriteRune(r)
	}
	return b.String()
}

// ItemID returns the id of a top-level item in the given section.
func ItemID(section, display string) string {
	return section + idSeparator + Slug(display)
}

// ChildID returns the id of a child item below parentID.
func ChildID(parentID, display string) string {
	return parentID + idSeparator + Slug(display)
}

// CloneID returns the id given to an aliased or moved copy of id.
func CloneID(id string) string {
	return id + idSeparator + cloneSuffix
}

// SectionOf returns the section key an id belongs to.
func SectionOf(id string) string {
	section, _, _ := strings.Cut(id, idSeparator)
	return section
}

// IsReference reports whether key looks like a dotted item id rather than a
// free-form key for a new item.
func IsReference(key string) bool {
	return strings.Contains(key, idSeparator)
}

func descendsFrom(id, ancestor string) bool {
	return ancestor != "" && strings.HasPrefix(id, ancestor+idSeparator)
}
