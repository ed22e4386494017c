package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aoyama/taskvault/internal/constants"
	"github.com/aoyama/taskvault/internal/faults"
	"github.com/aoyama/taskvault/internal/models"
)

var validate = validator.New()

// Result is the outcome of a field-level rule: either Ok, or a failure
// carrying a human-readable message. Callers decide whether a failure blocks
// submission; nothing here throws.
type Result struct {
	ok      bool
	message string
}

// OK is the passing result.
func OK() Result {
	return Result{ok: true}
}

// Fail creates a failing result with a message.
func Fail(message string) Result {
	return Result{message: message}
}

// Passed reports whether the rule was satisfied.
func (r Result) Passed() bool {
	return r.ok
}

// Message returns the failure message, empty for a passing result.
func (r Result) Message() string {
	return r.message
}

// Fault converts a failing result into a validation fault, nil otherwise.
func (r Result) Fault() error {
	if r.ok {
		return nil
	}
	return faults.Validation(r.message)
}

// TaskTitle requires a non-empty title of at most 200 characters after
// trimming.
func TaskTitle(title string) Result {
	trimmed := strings.TrimSpace(title)
	if err := validate.Var(trimmed, "required"); err != nil {
		return Fail("task title must not be empty")
	}
	if err := validate.Var(trimmed, fmt.Sprintf("max=%d", constants.TaskTitleMaxLength)); err != nil {
		return Fail(fmt.Sprintf("task title must not exceed %d characters", constants.TaskTitleMaxLength))
	}
	return OK()
}

// TaskDescription allows an empty description, capped at 1000 characters.
func TaskDescription(description string) Result {
	if description == "" {
		return OK()
	}
	if err := validate.Var(description, fmt.Sprintf("max=%d", constants.TaskDescriptionMaxLength)); err != nil {
		return Fail(fmt.Sprintf("task description must not exceed %d characters", constants.TaskDescriptionMaxLength))
	}
	return OK()
}

// CategoryName requires a non-empty name of at most 50 characters after
// trimming.
func CategoryName(name string) Result {
	trimmed := strings.TrimSpace(name)
	if err := validate.Var(trimmed, "required"); err != nil {
		return Fail("category name must not be empty")
	}
	if err := validate.Var(trimmed, fmt.Sprintf("max=%d", constants.CategoryNameMaxLength)); err != nil {
		return Fail(fmt.Sprintf("category name must not exceed %d characters", constants.CategoryNameMaxLength))
	}
	return OK()
}

// TaskPriority accepts only the three known levels.
func TaskPriority(priority models.Priority) Result {
	if !priority.Valid() {
		return Fail(fmt.Sprintf("priority %q is not one of low, medium, high", priority))
	}
	return OK()
}

// Date allows an empty value; a non-empty value must parse as one of the
// supported date shapes.
func Date(value string) Result {
	if value == "" {
		return OK()
	}
	if _, ok := models.ParseDate(value); !ok {
		return Fail(fmt.Sprintf("date %q is not in a recognized format", value))
	}
	return OK()
}

// CheckTask runs every task field rule and returns the first failure.
func CheckTask(task models.Task) Result {
	if r := TaskTitle(task.Title); !r.Passed() {
		return r
	}
	if r := TaskDescription(task.Description); !r.Passed() {
		return r
	}
	if task.Priority != "" {
		if r := TaskPriority(task.Priority); !r.Passed() {
			return r
		}
	}
	if task.DueDate != nil {
		if r := Date(*task.DueDate); !r.Passed() {
			return r
		}
	}
	return OK()
}

// CheckCategory runs every category field rule and returns the first failure.
func CheckCategory(category models.Category) Result {
	return CategoryName(category.Name)
}
