package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireIssue(t *testing.T, err error, path, message string) {
	t.Helper()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	issue, ok := verr.Field(path)
	require.True(t, ok, "no issue for %q in %v", path, verr.Issues)
	assert.Equal(t, message, issue.Message)
}

func validNote() Note {
	return Note{
		ID:        "n1",
		UserID:    "u1",
		Title:     "Groceries",
		Content:   "milk, eggs",
		Tags:      []string{},
		CreatedAt: "2024-01-01T00:00:00Z",
		UpdatedAt: "2024-01-01T00:00:00Z",
	}
}

func validTask() Task {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return Task{
		ID:         "t1",
		UserID:     "u1",
		Title:      "Ship release",
		Status:     TaskStatusUncompleted,
		Importance: ImportanceHigh,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
}

func TestValidateNote(t *testing.T) {
	n := validNote()
	require.NoError(t, ValidateNote(&n))

	n.Title = ""
	requireIssue(t, ValidateNote(&n), "title", "Required")

	n = validNote()
	n.Content = ""
	requireIssue(t, ValidateNote(&n), "content", "Required")

	n = validNote()
	n.UpdatedAt = ""
	requireIssue(t, ValidateNote(&n), "updated_at", "Required")
}

func TestValidateTask(t *testing.T) {
	task := validTask()
	require.NoError(t, ValidateTask(&task))

	task.Status = "done"
	requireIssue(t, ValidateTask(&task), "status", "Must be one of: uncompleted, in_progress, completed")

	task = validTask()
	task.Importance = "urgent"
	requireIssue(t, ValidateTask(&task), "importance", "Must be one of: high, medium, low")

	task = validTask()
	task.CreatedAt = time.Time{}
	requireIssue(t, ValidateTask(&task), "createdAt", "Required")
}

func TestValidateSignIn(t *testing.T) {
	require.NoError(t, ValidateSignIn(&SignInCredentials{Email: "a@b.co", Password: "password1"}))

	err := ValidateSignIn(&SignInCredentials{Email: "not-an-email", Password: "short"})
	requireIssue(t, err, "email", "Invalid email address")
	requireIssue(t, err, "password", "Must be at least 8 characters")
}

func TestValidateSignUp_PasswordMismatch(t *testing.T) {
	err := ValidateSignUp(&SignUpCredentials{
		Name:            "Ada",
		Email:           "ada@example.com",
		Password:        "abcdefgh",
		ConfirmPassword: "abcdefgx",
	})
	requireIssue(t, err, "confirmPassword", "Passwords don't match")

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Issues, 1)
	assert.Equal(t, "sign-up", verr.Kind)
}

func TestValidateSignUp_Valid(t *testing.T) {
	err := ValidateSignUp(&SignUpCredentials{
		Name:            "Ada",
		Email:           "ada@example.com",
		Password:        "abcdefgh",
		ConfirmPassword: "abcdefgh",
	})
	assert.NoError(t, err)
}

func TestValidateCalendarEvent(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, ValidateCalendarEvent(&CalendarEvent{Title: "Standup", Start: start, End: start.Add(15 * time.Minute)}))

	err := ValidateCalendarEvent(&CalendarEvent{Start: start})
	requireIssue(t, err, "title", "Required")
	requireIssue(t, err, "end", "Required")
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidateSignIn(&SignInCredentials{Password: "password1"})
	require.Error(t, err)
	assert.Equal(t, "invalid sign-in: email: Required", err.Error())
}
