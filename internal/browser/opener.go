// Package browser opens URLs in the desktop's default browser.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	systembrowser "github.com/pkg/browser"
)

const (
	urlRequiredMessageConstant  = "url must be provided"
	openFailureTemplateConstant = "failed to open %s: %w"
)

// ErrURLRequired indicates Open was called with an empty URL.
var ErrURLRequired = errors.New(urlRequiredMessageConstant)

// URLHandler hands a URL to the desktop.
type URLHandler func(targetURL string) error

// Opener launches the platform URL handler.
type Opener struct {
	handler URLHandler
}

// NewOpener constructs an Opener. A nil handler selects github.com/pkg/browser.
func NewOpener(handler URLHandler) *Opener {
	if handler == nil {
		handler = systembrowser.OpenURL
	}
	return &Opener{handler: handler}
}

// Open hands targetURL to the platform handler.
func (opener *Opener) Open(executionContext context.Context, targetURL string) error {
	if len(strings.TrimSpace(targetURL)) == 0 {
		return ErrURLRequired
	}
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	if openError := opener.handler(targetURL); openError != nil {
		return fmt.Errorf(openFailureTemplateConstant, targetURL, openError)
	}
	return nil
}
