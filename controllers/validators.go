package controllers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern         = regexp.MustCompile(`^(09|\+639)\d{9}$`)
	studentNumberPattern = regexp.MustCompile(`^[0-9]{2,4}-[0-9]{3,6}$`)
)

// RegisterValidators adds the phone and studentnumber tags to gin's binding
// engine. Safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("phone", matches(phonePattern)); err != nil {
		return err
	}
	return v.RegisterValidation("studentnumber", matches(studentNumberPattern))
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}
