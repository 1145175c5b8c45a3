package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortTokenPairIsSymmetric(t *testing.T) {
	a0, b0 := SortTokenPair("0xAAA", "0xBBB")
	a1, b1 := SortTokenPair("0xBBB", "0xAAA")

	assert.Equal(t, a0, a1)
	assert.Equal(t, b0, b1)
	assert.Equal(t, "0xAAA", a0)
	assert.Equal(t, "0xBBB", b0)
}

func TestSortTokenPairAlreadyOrdered(t *testing.T) {
	a, b := SortTokenPair("abc", "abd")
	assert.Equal(t, "abc", a)
	assert.Equal(t, "abd", b)
}
