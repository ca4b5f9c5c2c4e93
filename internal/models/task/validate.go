package task

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TimePattern - время в формате HH:mm, 24 часа
var TimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("неверное значение поля '%s': %s", e.Field, e.Reason)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return TimePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("tasktype", func(fl validator.FieldLevel) bool {
		return TaskType(fl.Field().String()).Valid()
	})
	v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})

	return v
}

func (d Draft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return toValidationError(err)
	}
	if strings.TrimSpace(d.EntityName) == "" {
		return &ValidationError{Field: "entityName", Reason: "обязательное поле"}
	}
	if strings.TrimSpace(d.ContactPerson) == "" {
		return &ValidationError{Field: "contactPerson", Reason: "обязательное поле"}
	}
	return nil
}

func (p Patch) Validate() error {
	if err := validate.Struct(p); err != nil {
		return toValidationError(err)
	}
	if p.EntityName != nil && strings.TrimSpace(*p.EntityName) == "" {
		return &ValidationError{Field: "entityName", Reason: "обязательное поле"}
	}
	if p.ContactPerson != nil && strings.TrimSpace(*p.ContactPerson) == "" {
		return &ValidationError{Field: "contactPerson", Reason: "обязательное поле"}
	}
	return nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "", Reason: err.Error()}
	}

	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		return "обязательное поле"
	case "hhmm":
		return "неверный формат времени (HH:mm)"
	case "datetime":
		return "неверный формат даты (YYYY-MM-DD)"
	case "tasktype":
		return "неизвестный тип задачи"
	case "taskstatus":
		return "статус должен быть open или closed"
	default:
		return fe.Tag()
	}
}
