package utils

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,max=5"`
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain", "alice", true},
		{"with symbols", "a_b-c9", true},
		{"too short", "ab", false},
		{"space", "al ice", false},
		{"chinese", "用户名", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidUsername(tt.input))
		})
	}
}

func TestTranslateBindError(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	err := binding.Validator.ValidateStruct(&registerPayload{Username: "x y", Email: "bad", Password: "toolong"})
	require.Error(t, err)

	got := TranslateBindError(err)
	fields := make([]string, 0, len(got))
	for _, ve := range got {
		fields = append(fields, ve.Field)
	}
	assert.ElementsMatch(t, []string{"username", "email", "password"}, fields)

	assert.Nil(t, TranslateBindError(nil))
	assert.Equal(t, "请求体格式错误", TranslateBindError(errors.New("unexpected EOF"))[0].Message)
}
