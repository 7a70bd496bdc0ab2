package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Username string `form:"username" validate:"required,max=64,username"`
	Password string `form:"password" validate:"required,min=4"`
}

func TestMessages(t *testing.T) {
	assert.Nil(t, Messages(signup{Username: "asha_k", Password: "secret"}))

	msgs := Messages(signup{Username: "bad name!", Password: ""})
	assert.ElementsMatch(t, []string{
		"username may only contain letters, digits, dots, dashes and underscores",
		"password is a required field",
	}, msgs)

	msgs = Messages(signup{Username: "ok", Password: "abc"})
	assert.Equal(t, []string{"password must be at least 4 characters in length"}, msgs)
}
