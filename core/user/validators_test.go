package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
)

func newValidator() *validator.Validate {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	RegisterValidators(validate, translator)
	return validate
}

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		pwd   string
		attrs []string
		want  string
	}{
		{pwd: "Sh0rt!", want: pwdMinLenTag},
		{pwd: "Has Space1!", want: pwdNoSpaceTag},
		{pwd: "1234567890", want: pwdNotAllNumTag},
		{pwd: "alllowercase1!", want: pwdComplexityTag},
		{pwd: "NoDigits!!", want: pwdComplexityTag},
		{pwd: "Heromb@test1", attrs: []string{"Hero", "Mbuyi", "heromb@test.cd"}, want: pwdAttrSimTag},
		{pwd: "Password123!", want: pwdNoCommonTag},
		{pwd: "Sup3r$ecret.Pwd", attrs: []string{"Hero", "Mbuyi", "hero@test.cd"}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.pwd, func(t *testing.T) {
			assert.Equal(t, tt.want, checkPassword(tt.pwd, tt.attrs...))
		})
	}
}

func TestNewUser_Validate(t *testing.T) {
	validate := newValidator()

	nu := NewUser{FirstName: " Hero ", LastName: "Mbuyi", Email: " HERO@test.cd", Password: "Sup3r$ecret.Pwd"}
	require.NoError(t, nu.Validate(validate))
	assert.Equal(t, "Hero", nu.FirstName)
	assert.Equal(t, "hero@test.cd", nu.Email)
	assert.Equal(t, auth.RoleStudent, nu.Role)

	nu = NewUser{FirstName: "  ", Email: "nope", Password: "short", Role: "janitor"}
	err := nu.Validate(validate)
	require.Error(t, err)
	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	fields := make(map[string]string)
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{
		"first_name": "required",
		"last_name":  "required",
		"email":      "email",
		"role":       "role",
		"password":   pwdMinLenTag,
	}, fields)
}

func TestUpdateUser_Validate(t *testing.T) {
	validate := newValidator()

	uu := UpdateUser{}
	assert.NoError(t, uu.Validate(validate))

	blank := "   "
	pwd := "weak"
	v := -1
	uu = UpdateUser{FirstName: &blank, Password: &pwd, Version: &v}
	err := uu.Validate(validate)
	require.Error(t, err)
	assert.Len(t, err.(validator.ValidationErrors), 3)
}
