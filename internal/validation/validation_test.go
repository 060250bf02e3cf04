package validation_test

import (
	"errors"
	"strings"
	"testing"

	"taskboard/internal/models/task"
	"taskboard/internal/service"
	"taskboard/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messages(t *testing.T, err error) []string {
	t.Helper()
	var busErr *service.BusinessError
	require.True(t, errors.As(err, &busErr), "ожидалась BusinessError, получено %v", err)
	assert.Equal(t, service.CodeValidation, busErr.Code)
	return busErr.Messages()
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name     string
		input    validation.TaskInput
		expected []string
	}{
		{
			name:  "valid minimal",
			input: validation.TaskInput{Title: validation.Ptr("Buy milk")},
		},
		{
			name:     "missing title",
			input:    validation.TaskInput{Description: validation.Ptr("x")},
			expected: []string{validation.MsgTitleRequired},
		},
		{
			name:     "whitespace title",
			input:    validation.TaskInput{Title: validation.Ptr("   ")},
			expected: []string{validation.MsgTitleRequired},
		},
		{
			name:     "title too long",
			input:    validation.TaskInput{Title: validation.Ptr(strings.Repeat("a", 101))},
			expected: []string{validation.MsgTitleTooLong},
		},
		{
			name:  "title of 100 multibyte characters",
			input: validation.TaskInput{Title: validation.Ptr(strings.Repeat("ж", 100))},
		},
		{
			name: "description too long",
			input: validation.TaskInput{
				Title:       validation.Ptr("ok"),
				Description: validation.Ptr(strings.Repeat("d", 501)),
			},
			expected: []string{validation.MsgDescTooLong},
		},
		{
			name:     "unknown status",
			input:    validation.TaskInput{Title: validation.Ptr("ok"), Status: validation.Ptr("Done")},
			expected: []string{validation.MsgStatusInvalid},
		},
		{
			name:     "empty status string",
			input:    validation.TaskInput{Title: validation.Ptr("ok"), Status: validation.Ptr("")},
			expected: []string{validation.MsgStatusInvalid},
		},
		{
			name: "several errors at once",
			input: validation.TaskInput{
				Title:       validation.Ptr(""),
				Description: validation.Ptr(strings.Repeat("d", 501)),
				Status:      validation.Ptr("nope"),
			},
			expected: []string{validation.MsgTitleRequired, validation.MsgDescTooLong, validation.MsgStatusInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validation.Create(tt.input)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.expected, messages(t, err))
		})
	}
}

func TestCreate_TrimsFields(t *testing.T) {
	in, err := validation.Create(validation.TaskInput{
		Title:       validation.Ptr("  Buy milk  "),
		Description: validation.Ptr("\t2 liters\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", in.TitleValue())
	assert.Equal(t, "2 liters", in.DescriptionValue())
	assert.Equal(t, task.Status(""), in.StatusValue())
}

func TestUpdate(t *testing.T) {
	t.Run("empty body is valid", func(t *testing.T) {
		_, err := validation.Update(validation.TaskInput{})
		assert.NoError(t, err)
	})

	t.Run("status only", func(t *testing.T) {
		in, err := validation.Update(validation.TaskInput{Status: validation.Ptr("Completed")})
		require.NoError(t, err)
		patch := task.NewPatch(in.Options()...)
		assert.Nil(t, patch.Title)
		require.NotNil(t, patch.Status)
		assert.Equal(t, task.StatusCompleted, *patch.Status)
	})

	t.Run("provided title must not be blank", func(t *testing.T) {
		_, err := validation.Update(validation.TaskInput{Title: validation.Ptr(" ")})
		assert.Equal(t, []string{validation.MsgTitleRequired}, messages(t, err))
	})

	t.Run("description can be cleared", func(t *testing.T) {
		in, err := validation.Update(validation.TaskInput{Description: validation.Ptr("")})
		require.NoError(t, err)
		patch := task.NewPatch(in.Options()...)
		require.NotNil(t, patch.Description)
		assert.Equal(t, "", *patch.Description)
	})

	t.Run("joined message", func(t *testing.T) {
		_, err := validation.Update(validation.TaskInput{
			Title:  validation.Ptr(strings.Repeat("a", 101)),
			Status: validation.Ptr("x"),
		})
		var busErr *service.BusinessError
		require.ErrorAs(t, err, &busErr)
		assert.Equal(t, validation.MsgTitleTooLong+"; "+validation.MsgStatusInvalid, busErr.Message)
	})
}
