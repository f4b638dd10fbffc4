package handler

import (
	"fmt"
	"reflect"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding tags on gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("after_start", afterStart)
}

// afterStart passes when the field is later than the sibling Start field.
// Missing values are left to "required".
func afterStart(fl validator.FieldLevel) bool {
	end, ok := timeValue(fl.Field())
	if !ok {
		return true
	}
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return true
	}
	start, ok := timeValue(parent.FieldByName("Start"))
	if !ok {
		return true
	}
	return end.After(start)
}

func timeValue(v reflect.Value) (time.Time, bool) {
	if !v.IsValid() {
		return time.Time{}, false
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return time.Time{}, false
		}
		v = v.Elem()
	}
	t, ok := v.Interface().(time.Time)
	return t, ok
}
