package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPublicID(t *testing.T) {
	tests := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v123456789/warbler/sample.jpg": "warbler/sample",
		"https://res.cloudinary.com/demo/image/upload/warbler/header.webp":           "warbler/header",
		"https://res.cloudinary.com/demo/image/upload/vacation/photo.png":            "vacation/photo",
		"/static/images/default-pic.png":                                             "",
		"https://res.cloudinary.com/demo/image/upload/":                              "",
	}

	for in, want := range tests {
		assert.Equal(t, want, extractPublicID(in), in)
	}
}

func TestNewCloudinaryStorageRequiresCredentials(t *testing.T) {
	s, err := NewCloudinaryStorage("", "key", "secret", "warbler")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
