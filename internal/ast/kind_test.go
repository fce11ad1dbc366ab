package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ODataUri", KindODataUri.String())
	assert.Equal(t, "MethodCallExpression", KindMethodCallExpression.String())
	assert.Equal(t, "Unknown", Kind(-1).String())
	assert.Equal(t, "Unknown", kindCount.String())
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 32)
	seen := map[string]bool{}
	for _, k := range kinds {
		assert.True(t, k.Valid())
		assert.NotEqual(t, "Unknown", k.String())
		assert.False(t, seen[k.String()], "duplicate name %s", k)
		seen[k.String()] = true
	}
	assert.False(t, KindInvalid.Valid())
}

func TestKind_IsComparison(t *testing.T) {
	count := 0
	for _, k := range Kinds() {
		if k.IsComparison() {
			count++
		}
	}
	assert.Equal(t, 6, count)
	assert.False(t, KindAndExpression.IsComparison())
}
