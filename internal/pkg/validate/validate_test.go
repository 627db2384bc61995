package validate

import (
	"testing"

	"github.com/sheetboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStruct_RegisterRequest(t *testing.T) {
	ok := domain.RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1", Role: "user"}
	assert.NoError(t, Struct(&ok))

	noRole := ok
	noRole.Role = ""
	assert.NoError(t, Struct(&noRole))

	badRole := ok
	badRole.Role = "root"
	assert.EqualError(t, Struct(&badRole), "role must be one of [user admin]")

	badEmail := ok
	badEmail.Email = "not-an-email"
	assert.EqualError(t, Struct(&badEmail), "email must be a valid email address")

	short := ok
	short.Password = "abc"
	assert.EqualError(t, Struct(&short), "password must be at least 6 characters")
}

func TestStruct_JoinsMultipleFailures(t *testing.T) {
	err := Struct(&domain.NewPasswordRequest{})
	assert.EqualError(t, err, "email is required; otp is required; newPassword is required")
}

func TestStruct_NoColonInMessages(t *testing.T) {
	// Handlers keep only the text before the first ": " as the public message.
	err := Struct(&domain.RegisterRequest{Email: "x", Password: "1"})
	assert.NotContains(t, err.Error(), ": ")
}
