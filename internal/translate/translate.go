// internal/translate/translate.go
package translate

import (
	"sync"

	"github.com/jeandeaual/go-locale"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	once    sync.Once
	printer *message.Printer
)

// NewPrinter builds a printer for the first parseable locale.
// No usable locale means en-US.
func NewPrinter(locales ...string) *message.Printer {
	for _, l := range locales {
		if tag, err := language.Parse(l); err == nil {
			return message.NewPrinter(tag)
		}
	}
	return message.NewPrinter(language.AmericanEnglish)
}

// Printer returns the process-wide printer matched to the user's locale.
func Printer() *message.Printer {
	once.Do(func() {
		locales, err := locale.GetLocales()
		if err != nil {
			zap.L().Debug("locale lookup failed", zap.Error(err))
		}
		printer = NewPrinter(locales...)
	})
	return printer
}
