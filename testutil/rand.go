package testutil

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// ContainerName appends a random suffix to prefix. Only one container can
// carry a name, the suffix avoids clashes with leftovers of earlier runs.
func ContainerName(prefix string) string {
	return prefix + "-" + strings.ToLower(gofakeit.LetterN(4))
}
