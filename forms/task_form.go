// Package forms binds and validates submitted HTML forms.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"mytodolist/models"
)

// DescriptionMaxLength is the longest accepted task description, in characters.
const DescriptionMaxLength = 200

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidationErrors maps a field name to its error messages.
type ValidationErrors map[string][]string

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a message for field.
func (e ValidationErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// TaskForm holds the description submitted when creating or editing a task.
type TaskForm struct {
	Description string `form:"description" validate:"required,max=200"`

	// Instance is the task being edited, nil when creating.
	Instance *models.Task     `form:"-"`
	Errors   ValidationErrors `form:"-"`
}

// NewTaskForm returns an unbound form, pre-populated from instance when it is
// not nil.
func NewTaskForm(instance *models.Task) *TaskForm {
	f := &TaskForm{Instance: instance, Errors: ValidationErrors{}}
	if instance != nil {
		f.Description = instance.Description
	}
	return f
}

// BindTaskForm reads the submitted form fields from the request.
func BindTaskForm(c *gin.Context, instance *models.Task) (*TaskForm, error) {
	f := &TaskForm{Instance: instance, Errors: ValidationErrors{}}
	if err := c.ShouldBindWith(f, binding.Form); err != nil {
		return nil, fmt.Errorf("failed to bind task form: %w", err)
	}
	return f, nil
}

// Validate trims the input and checks it, recording messages in f.Errors.
// It returns true when the form is valid.
func (f *TaskForm) Validate() bool {
	f.Description = strings.TrimSpace(f.Description)
	f.Errors = ValidationErrors{}

	err := validate.Struct(f)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		f.Errors.Add("__all__", "Invalid form data.")
		return false
	}
	for _, fe := range fieldErrs {
		f.Errors.Add(fe.Field(), message(fe))
	}
	return false
}

// FieldErrors returns the messages recorded for field.
func (f *TaskForm) FieldErrors(field string) []string {
	return f.Errors[field]
}

// Err returns the recorded errors, or nil when there are none.
func (f *TaskForm) Err() error {
	if len(f.Errors) == 0 {
		return nil
	}
	return f.Errors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		value, _ := fe.Value().(string)
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).",
			fe.Param(), utf8.RuneCountInString(value))
	default:
		return "Enter a valid value."
	}
}
