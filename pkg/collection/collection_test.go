package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/collection"
)

func TestFilterNeverNil(t *testing.T) {
	out := collection.Filter([]int{1, 3}, func(n int) bool { return n%2 == 0 })
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, []int{2, 4}, collection.Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 }))
}

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"a!", "b!"}, collection.Map([]string{"a", "b"}, func(s string) string { return s + "!" }))
}

func TestGroupBy(t *testing.T) {
	g := collection.GroupBy([]string{"apple", "avocado", "banana"}, func(s string) byte { return s[0] })
	assert.Equal(t, []string{"apple", "avocado"}, g['a'])
	assert.Equal(t, []string{"banana"}, g['b'])
}

func TestDuplicates(t *testing.T) {
	assert.Equal(t, []string{"B", "A"}, collection.Duplicates([]string{"A", "B", "B", "A", "A", "C"}))
	assert.Empty(t, collection.Duplicates([]string{"A", "B"}))
}

func TestSumInt(t *testing.T) {
	assert.Equal(t, 6, collection.SumInt([]int{1, 2, 3}, func(n int) int { return n }))
}
