package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almoxarifado/models"
)

type sample struct {
	Name     string  `form:"name" validate:"required,max=10"`
	Email    string  `form:"email" validate:"omitempty,email"`
	Level    string  `form:"access_level" validate:"access_level"`
	Color    string  `form:"primary_color" validate:"color"`
	Quantity float64 `form:"quantity" validate:"gt=0"`
	Password string  `form:"password" validate:"password"`
}

func TestStructMapsFieldErrors(t *testing.T) {
	err := Struct(sample{Email: "nope", Level: "root", Color: "blue", Password: "short"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["name"])
	assert.Equal(t, "must be a valid email", verr.Fields["email"])
	assert.Equal(t, "is not a valid access level", verr.Fields["access_level"])
	assert.Equal(t, "must be a #rrggbb color", verr.Fields["primary_color"])
	assert.Equal(t, "must be greater than 0", verr.Fields["quantity"])
	assert.Equal(t, "must be at least 8 characters", verr.Fields["password"])
}

func TestStructAcceptsValidInput(t *testing.T) {
	err := Struct(sample{Name: "Luvas", Level: models.LevelViewer, Color: "#0d6efd", Quantity: 1, Password: "Secret123"})
	assert.NoError(t, err)
}

func TestPasswordPolicy(t *testing.T) {
	assert.Error(t, PasswordPolicy("abc"))
	assert.ErrorContains(t, PasswordPolicy("abcdefgh"), "password must")
	assert.ErrorContains(t, PasswordPolicy("12345678"), "letters and digits")
	assert.NoError(t, PasswordPolicy("Estoque123!Forte"))
}
