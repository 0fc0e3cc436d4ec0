package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"About Us":           "about-us",
		"  Trimmed  ":        "trimmed",
		"Q&A: The Sequel!":   "q-a-the-sequel",
		"already-a-slug":     "already-a-slug",
		"Multiple   Spaces":  "multiple-spaces",
		"Release 2.0 (beta)": "release-2-0-beta",
		"???":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":            "root",
		"/":           "root",
		"   ":         "root",
		"about-us":    "about-us",
		"/about-us":   "about-us",
		" /About-Us ": "about-us",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePath(in), in)
	}
}
