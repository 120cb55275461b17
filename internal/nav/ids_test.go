package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		display string
		want    string
	}{
		{"Dashboard", "dashboard"},
		{"Top Level", "top_level"},
		{"Non-Favourite", "non_favourite"},
		{"Kid Can Haz?", "kid_can_haz"},
		{"  SEO   Pro  ", "seo_pro"},
		{"GraphQL", "graphql"},
		{"Café Übersicht", "cafe_ubersicht"},
		{"Tab 2", "tab_2"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.display), tt.display)
	}
}

func TestIDs(t *testing.T) {
	assert.Equal(t, "content::collections", ItemID("content", "Collections"))
	assert.Equal(t, "content::collections::pages", ChildID("content::collections", "Pages"))
	assert.Equal(t, "fields::blueprints::clone", CloneID("fields::blueprints"))
	assert.Equal(t, "content::collections::clone::articles", ChildID(CloneID("content::collections"), "Articles"))
}

func TestSectionOf(t *testing.T) {
	assert.Equal(t, "content", SectionOf("content::collections::pages"))
	assert.Equal(t, "top_level", SectionOf("top_level::dashboard"))
	assert.Equal(t, "favs", SectionOf("favs"))
}

func TestIsReference(t *testing.T) {
	assert.True(t, IsReference("fields::blueprints"))
	assert.False(t, IsReference("favs"))
	assert.False(t, IsReference("Non-Favourite"))
}

func TestDescendsFrom(t *testing.T) {
	assert.True(t, descendsFrom("content::collections::pages", "content::collections"))
	assert.False(t, descendsFrom("content::collections", "content::collections"))
	assert.False(t, descendsFrom("content::collectionsx::pages", "content::collections"))
	assert.False(t, descendsFrom("content::collections::pages", ""))
}
