package validation

import (
	"errors"
	"testing"

	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    string `json:"id" validate:"required,nationalid"`
	Name  string `json:"name" validate:"required,personname"`
	Email string `json:"email" validate:"required,email"`
	Price int64  `json:"price" validate:"gt=0"`
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(sample{ID: "1023456", Name: "María José", Email: "a@b.co", Price: 1}))
}

func TestStructReportsEveryField(t *testing.T) {
	err := Struct(sample{ID: "12ab", Name: "R2 D2", Email: "nope", Price: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &apperror.AppError{Kind: apperror.KindValidation}))

	appErr := apperror.GetAppError(err)
	fields := map[string]string{}
	for _, fe := range appErr.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "must be 6 to 12 digits", fields["id"])
	assert.Equal(t, "may only contain letters and single spaces", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be greater than 0", fields["price"])
}

func TestPersonName(t *testing.T) {
	cases := map[string]bool{
		"Ana":        true,
		"Ana Lucía":  true,
		"Ana  Lucía": false,
		" Ana":       false,
		"Ana3":       false,
		"":           false,
	}
	for name, ok := range cases {
		assert.Equal(t, ok, personNameRegex.MatchString(name), name)
	}
}

func TestToAppErrorNonValidation(t *testing.T) {
	err := ToAppError(errors.New("unexpected EOF"))
	assert.Equal(t, apperror.KindBadRequest, apperror.GetAppError(err).Kind)
}
