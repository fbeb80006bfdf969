package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "coursehub/pkg/domain-errors"
)

type sampleItem struct {
	Company string `json:"company" validate:"required,max=10"`
}

type sampleRequest struct {
	Name  string       `json:"name" validate:"required"`
	Items []sampleItem `json:"items" validate:"dive"`
}

func TestStruct(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		require.NoError(t, Struct(sampleRequest{Name: "x", Items: []sampleItem{{Company: "Acme"}}}))
	})

	t.Run("missing field reports json name", func(t *testing.T) {
		err := Struct(sampleRequest{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		field, ok := dErrors.DetailOf(err, "field")
		require.True(t, ok)
		assert.Equal(t, "name", field)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("nested field keeps index", func(t *testing.T) {
		err := Struct(sampleRequest{Name: "x", Items: []sampleItem{{Company: "Acme"}, {Company: "Way Too Long Inc"}}})
		require.Error(t, err)
		field, _ := dErrors.DetailOf(err, "field")
		assert.Equal(t, "items[1].company", field)
		assert.Contains(t, err.Error(), "at most 10")
	})
}
