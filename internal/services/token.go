package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// tokenRules run in order; a missing token stops at the first one
var tokenRules = []string{"required", "max=1000", "token_chars"}

var tokenMessages = map[string]string{
	"required":    "token is required",
	"max":         "token is too long",
	"token_chars": "token contains invalid characters",
}

var tokenValidate = newTokenValidator()

func newTokenValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("token_chars", func(fl validator.FieldLevel) bool {
		return isTokenString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// isTokenString reports whether s holds only ASCII letters, digits, '.', '_'
// and '-'.
func isTokenString(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

// TokenValidation is the outcome of ValidateToken
type TokenValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateToken checks the syntax of a Phoenix access token. A missing token
// reports only that it is required; otherwise every failing rule is listed.
func ValidateToken(token string) TokenValidation {
	errs := []string{}
	for _, rule := range tokenRules {
		err := tokenValidate.Var(token, rule)
		if err == nil {
			continue
		}

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs = append(errs, err.Error())
			continue
		}
		for _, fe := range verrs {
			errs = append(errs, tokenMessages[fe.Tag()])
		}
		if rule == "required" {
			break
		}
	}

	return TokenValidation{Valid: len(errs) == 0, Errors: errs}
}
