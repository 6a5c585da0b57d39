package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCategory(t *testing.T) {
	for _, cat := range ProductCategories {
		assert.True(t, ValidCategory(cat), cat)
	}
	assert.False(t, ValidCategory("Livestock"))
	assert.False(t, ValidCategory("vegetables"))
	assert.False(t, ValidCategory(""))
}
