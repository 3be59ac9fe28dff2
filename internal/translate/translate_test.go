// internal/translate/translate_test.go
package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPrinter_Grouping(t *testing.T) {
	assert.Equal(t, "1,234,567 ns", NewPrinter("en-US").Sprintf("%v ns", 1234567))
	assert.Equal(t, "1.234.567 ns", NewPrinter("de-DE").Sprintf("%v ns", 1234567))
}

func TestNewPrinter_DefaultsToEnglish(t *testing.T) {
	assert.Equal(t, "1,500", NewPrinter().Sprintf("%v", 1500))
	assert.Equal(t, "1,500", NewPrinter("not a locale!").Sprintf("%v", 1500))
}

func TestPrinter_IsProcessWide(t *testing.T) {
	assert.Same(t, Printer(), Printer())
}
