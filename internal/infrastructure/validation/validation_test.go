package validation

import (
	"errors"
	"testing"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int64     `json:"quantity" validate:"gt=0"`
	Location  string    `json:"location" validate:"required,max=10"`
	Mode      string    `json:"mode" validate:"omitempty,oneof=retail wholesale"`
}

func TestStruct(t *testing.T) {
	t.Run("valid request passes", func(t *testing.T) {
		err := Struct(sampleRequest{ProductID: uuid.New(), Quantity: 1, Location: "Main"})
		assert.NoError(t, err)
	})

	t.Run("failures map to invalid input", func(t *testing.T) {
		err := Struct(sampleRequest{Quantity: 0, Location: "", Mode: "franchise"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Contains(t, err.Error(), "product_id: This field is required")
		assert.Contains(t, err.Error(), "quantity: Must be greater than 0")
		assert.Contains(t, err.Error(), "mode: Must be one of: retail wholesale")
	})

	t.Run("non-struct input", func(t *testing.T) {
		err := Struct(42)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestDetails(t *testing.T) {
	err := engine().Struct(sampleRequest{ProductID: uuid.New(), Quantity: 3, Location: "A very long location"})
	details := Details(err)
	require.Len(t, details, 1)
	assert.Equal(t, "location", details[0].Field)
	assert.Equal(t, "Must be at most 10 characters", details[0].Message)

	assert.Nil(t, Details(errors.New("other")))
}
