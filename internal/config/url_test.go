package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseServiceURL(t *testing.T) {
	testCases := []struct {
		raw     string
		wantErr bool
	}{
		{"https://anilist.co", false},
		{"http://localhost:8080/path?q=1", false},
		{"", true},
		{"anilist.co", true},
		{"file:///etc/passwd", true},
		{"https://", true},
		{"https:anilist.co", true},
		{"http:///path", true},
		{"://bad", true},
	}

	for _, tc := range testCases {
		_, err := ParseServiceURL(tc.raw)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidURL, "url %q", tc.raw)
		} else {
			assert.NoError(t, err, "url %q", tc.raw)
		}
	}
}
