package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required,notblank"`
	Kind  string `validate:"oneof=a b"`
	Count int    `validate:"min=1"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateStruct(sample{Name: "x", Kind: "a", Count: 1}))

	err := ValidateStruct(sample{Name: "   ", Kind: "c", Count: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed: ")
	assert.Contains(t, err.Error(), "Field: Name, Tag: notblank")
	assert.Contains(t, err.Error(), "Field: Kind, Tag: oneof, Param: a b")
	assert.Contains(t, err.Error(), "Field: Count, Tag: min, Param: 1")
}
