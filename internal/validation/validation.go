package validation

import (
	"errors"
	"strings"

	"taskboard/internal/models/task"
	"taskboard/internal/service"

	"github.com/go-playground/validator/v10"
)

const (
	MsgTitleRequired  = "Title is required"
	MsgTitleTooLong   = "Title cannot exceed 100 characters"
	MsgDescTooLong    = "Description cannot exceed 500 characters"
	MsgStatusInvalid  = "Status must be Pending, In Progress, or Completed"
	MaxTitleLength    = 100
	MaxDescriptionLen = 500
)

// TaskInput поля запроса на создание или обновление, nil = поле не передано
type TaskInput struct {
	Title       *string
	Description *string
	Status      *string
}

// taskFields то, что реально проверяет validator, max считает символы, а не байты
type taskFields struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=500"`
	Status      string `validate:"taskstatus"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return task.Status(fl.Field().String()).Valid()
	})
	return v
}

// Create title обязателен, остальные поля по желанию
func Create(in TaskInput) (TaskInput, error) {
	in = in.trimmed()
	if in.Title == nil {
		empty := ""
		in.Title = &empty
	}
	return in, check(in)
}

// Update частичное обновление: проверяются только переданные поля
func Update(in TaskInput) (TaskInput, error) {
	in = in.trimmed()
	return in, check(in)
}

func check(in TaskInput) error {
	var (
		fields  taskFields
		present []string
	)
	if in.Title != nil {
		fields.Title = *in.Title
		present = append(present, "Title")
	}
	if in.Description != nil {
		fields.Description = *in.Description
		present = append(present, "Description")
	}
	if in.Status != nil {
		fields.Status = *in.Status
		present = append(present, "Status")
	}
	if len(present) == 0 {
		return nil
	}

	err := validate.StructPartial(fields, present...)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, message(fe))
	}
	return service.NewValidationError(messages...)
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "Title":
		if fe.Tag() == "max" {
			return MsgTitleTooLong
		}
		return MsgTitleRequired
	case "Description":
		return MsgDescTooLong
	default:
		return MsgStatusInvalid
	}
}

func (in TaskInput) trimmed() TaskInput {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	return TaskInput{
		Title:       trim(in.Title),
		Description: trim(in.Description),
		Status:      in.Status,
	}
}

// Options переводит переданные поля в опции обновления задачи
func (in TaskInput) Options() []task.TaskOption {
	var opts []task.TaskOption
	if in.Title != nil {
		opts = append(opts, task.WithTitle(*in.Title))
	}
	if in.Description != nil {
		opts = append(opts, task.WithDescription(*in.Description))
	}
	if in.Status != nil {
		opts = append(opts, task.WithStatus(task.Status(*in.Status)))
	}
	return opts
}

func (in TaskInput) TitleValue() string {
	return deref(in.Title)
}

func (in TaskInput) DescriptionValue() string {
	return deref(in.Description)
}

// StatusValue пустой статус сервис заменит на Pending
func (in TaskInput) StatusValue() task.Status {
	return task.Status(deref(in.Status))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr удобство для вызывающих, которым нужен указатель на литерал
func Ptr(s string) *string {
	return &s
}
