package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createInput struct {
	Name     string `validate:"required,min=1,max=10"`
	Quantity int    `validate:"gte=0"`
	Status   string `validate:"omitempty,oneof=active inactive"`
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(createInput{Name: "Bolts", Quantity: 5, Status: "active"}))
}

func TestValidate_RequiredField(t *testing.T) {
	err := Validate(createInput{Quantity: 1})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields()["Name"])
	assert.Contains(t, verr.Error(), "Name")
}

func TestValidate_RangeAndOneOf(t *testing.T) {
	err := Validate(createInput{Name: "Bolts", Quantity: -1, Status: "deleted"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := verr.Fields()
	assert.Contains(t, fields["Quantity"], "greater than or equal")
	assert.Contains(t, fields["Status"], "must be one of")
}
