package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugFromHost(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		base     string
		wantSlug string
		wantOK   bool
	}{
		{"plain subdomain", "alice-and-bob.everafter.site", "everafter.site", "alice-and-bob", true},
		{"subdomain with port", "alice-and-bob.everafter.site:8080", "everafter.site", "alice-and-bob", true},
		{"uppercase host", "Alice-And-Bob.EverAfter.Site", "everafter.site", "alice-and-bob", true},
		{"bare base domain", "everafter.site", "everafter.site", "", false},
		{"reserved label www", "www.everafter.site", "everafter.site", "", false},
		{"reserved label api", "api.everafter.site", "everafter.site", "", false},
		{"reserved label admin", "admin.everafter.site", "everafter.site", "", false},
		{"nested subdomain", "a.b.everafter.site", "everafter.site", "", false},
		{"unrelated domain", "example.com", "everafter.site", "", false},
		{"suffix but not subdomain", "noteverafter.site", "everafter.site", "", false},
		{"empty host", "", "everafter.site", "", false},
		{"empty base", "x.everafter.site", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug, ok := SlugFromHost(tt.host, tt.base)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSlug, slug)
		})
	}
}

func TestSlugPattern(t *testing.T) {
	valid := []string{"alice-and-bob", "abc", "a1b", "wedding-2026", "x0-0x"}
	for _, s := range valid {
		assert.True(t, slugPattern.MatchString(s), "expected %q to be valid", s)
	}

	invalid := []string{
		"",
		"ab",               // too short
		"-leading",         // leading hyphen
		"trailing-",        // trailing hyphen
		"UpperCase",        // uppercase
		"with space",       // space
		"under_score",      // underscore
		"dots.not.allowed", // dots
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", // 64 chars
	}
	for _, s := range invalid {
		assert.False(t, slugPattern.MatchString(s), "expected %q to be invalid", s)
	}
}

func TestReservedSlugs(t *testing.T) {
	for _, s := range []string{"www", "api", "app", "admin", "mail"} {
		assert.True(t, reservedSlugs[s], "%q should be reserved", s)
	}
	assert.False(t, reservedSlugs["alice-and-bob"])
}
