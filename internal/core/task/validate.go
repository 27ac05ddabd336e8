package task

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

const maxTitleLength = 200

// Validate checks that a task carries content worth saving.
func Validate(t Task) error {
	if t.IsEmpty() {
		return criterio.NewFieldErrors("title", fmt.Errorf("a task needs a title or a description"))
	}
	return criterio.Run("title", t.Title, titleLength)
}

// ValidateTitle is the criterio validator used by input forms.
func ValidateTitle(title string) error {
	return titleLength(title)
}

func titleLength(title string) error {
	if n := len(strings.TrimSpace(title)); n > maxTitleLength {
		return fmt.Errorf("title is %d characters, limit is %d", n, maxTitleLength)
	}
	return nil
}
