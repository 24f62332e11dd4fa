// Package forms drives the create/edit lifecycle shared by every record
// form: fetch when editing, validate, submit, report a message.
package forms

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/translation"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrBusy       = errors.New("form is already submitting")
	ErrClosed     = errors.New("form is closed")
)

// ValidationError is the inline message shown next to the form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type Phase int

const (
	Loading Phase = iota
	Ready
	Submitting
	Closed
)

func (p Phase) String() string {
	return [...]string{"loading", "ready", "submitting", "closed"}[p]
}

type Backend[T any] interface {
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id int64, rec T) (T, error)
}

type Form[T any] struct {
	backend Backend[T]
	noun    string

	translator translation.Translator
	target     string
	log        *logger.Logger
	onSuccess  func(models.Message)
	onClose    func()

	id     int64
	record T
	phase  Phase
	err    string
}

type Option[T any] func(*Form[T])

// WithTranslator fills empty Hindi labels before submit.
func WithTranslator[T any](t translation.Translator, target string) Option[T] {
	return func(f *Form[T]) {
		f.translator = t
		f.target = target
	}
}

func OnSuccess[T any](fn func(models.Message)) Option[T] {
	return func(f *Form[T]) { f.onSuccess = fn }
}

func OnClose[T any](fn func()) Option[T] {
	return func(f *Form[T]) { f.onClose = fn }
}

func WithLogger[T any](l *logger.Logger) Option[T] {
	return func(f *Form[T]) { f.log = l }
}

// New builds a form for one record type. noun is used in user-facing
// messages ("State created successfully").
func New[T any](backend Backend[T], noun string, opts ...Option[T]) *Form[T] {
	f := &Form[T]{
		backend:   backend,
		noun:      noun,
		log:       logger.Nop(),
		onSuccess: func(models.Message) {},
		onClose:   func() {},
		phase:     Loading,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *Form[T]) Phase() Phase    { return f.phase }
func (f *Form[T]) Record() T       { return f.record }
func (f *Form[T]) Error() string   { return f.err }
func (f *Form[T]) Editing() bool   { return f.id != 0 }
func (f *Form[T]) RecordID() int64 { return f.id }

// Open prepares the form. id 0 starts from an empty record; any other id
// loads the record and defaults its fields.
func (f *Form[T]) Open(ctx context.Context, id int64) error {
	f.id = id
	f.err = ""
	if id == 0 {
		var empty T
		f.record = empty
		f.phase = Ready
		return nil
	}

	f.phase = Loading
	rec, err := f.backend.Get(ctx, id)
	if err != nil {
		f.phase = Ready
		f.err = marketplace.ErrorMessage(err, fmt.Sprintf("Failed to load %s", strings.ToLower(f.noun)))
		return err
	}
	normalize(&rec)
	f.record = rec
	f.phase = Ready
	return nil
}

// Submit validates and saves rec. Validation failures never reach the
// backend. On success the form reports a message and closes; on failure
// it stays open with an inline error.
func (f *Form[T]) Submit(ctx context.Context, rec T) (T, error) {
	var zero T
	switch f.phase {
	case Submitting:
		return zero, ErrBusy
	case Closed:
		return zero, ErrClosed
	}

	normalize(&rec)
	f.record = rec
	if msg := Validate(rec); msg != "" {
		f.err = msg
		return zero, &ValidationError{Message: msg}
	}

	if f.translator != nil {
		translation.Fill(ctx, f.translator, f.target, &rec, f.log)
		f.record = rec
	}

	f.phase = Submitting
	f.err = ""

	var (
		saved T
		err   error
		verb  = "created"
	)
	if f.id != 0 {
		verb = "updated"
		saved, err = f.backend.Update(ctx, f.id, rec)
	} else {
		saved, err = f.backend.Create(ctx, rec)
	}
	if err != nil {
		f.phase = Ready
		f.err = marketplace.ErrorMessage(err, fmt.Sprintf("Failed to save %s", strings.ToLower(f.noun)))
		f.log.Warnf("%s %s failed: %v", f.noun, verb, err)
		return zero, err
	}

	f.phase = Closed
	f.onSuccess(models.SuccessMessage(fmt.Sprintf("%s %s successfully", f.noun, verb)))
	f.onClose()
	return saved, nil
}

func normalize[T any](rec *T) {
	if n, ok := any(rec).(models.Normalizer); ok {
		n.Normalize()
	}
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
	return v
}

// Validate returns the first field problem as a user-facing sentence, or
// "" when rec is valid.
func Validate(rec interface{}) string {
	err := validate.Struct(rec)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", field, humanize(fe.Param()))
	}
	return fmt.Sprintf("%s is invalid", field)
}

func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
