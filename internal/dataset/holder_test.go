package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHolder(t *testing.T) {
	h := NewHolder(nil)
	assert.Nil(t, h.Get())

	d := loadFixture(t)
	assert.Nil(t, h.Swap(d))
	assert.Same(t, d, h.Get())

	next := loadFixture(t)
	assert.Same(t, d, h.Swap(next))
	assert.Same(t, next, h.Get())
}
