package syntree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salikh-syn/syntree/pkg/syntree"
)

func TestTypeTagTableSetGet(t *testing.T) {
	t.Parallel()

	tags := syntree.NewTypeTagTable[string]()
	tags.Set(3, "Statement")
	tags.Set(9, "Identifier")

	name, ok := tags.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "Statement", name)

	name, ok = tags.Get(9)
	assert.True(t, ok)
	assert.Equal(t, "Identifier", name)

	_, ok = tags.Get(5)
	assert.False(t, ok, "unset id must report not-found")
}

func TestTypeTagTableNilSafe(t *testing.T) {
	t.Parallel()

	var tags *syntree.TypeTagTable[string]

	name, ok := tags.Get(3)
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestTypeTagTableGrowsSparsely(t *testing.T) {
	t.Parallel()

	tags := syntree.NewTypeTagTable[string]()
	tags.Set(100, "Far")

	name, ok := tags.Get(100)
	assert.True(t, ok)
	assert.Equal(t, "Far", name)

	_, ok = tags.Get(50)
	assert.False(t, ok, "ids never set in between must report not-found, not panic")
}
