// Package clipboard copies a won discount code for the player, falling back to
// a terminal escape sequence when no system clipboard is available.
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"
)

// Method records how a code reached the clipboard.
type Method string

const (
	MethodPrimary  Method = "primary"
	MethodFallback Method = "fallback"
	MethodNone     Method = "none"
)

// ErrUnsupported is returned by SystemWriter when the platform has no clipboard utility.
var ErrUnsupported = errors.New("system clipboard unavailable")

// Writer places text on a clipboard.
type Writer interface {
	WriteText(text string) error
}

// Result is the outcome of a Copy. Notice is the line to show the player.
type Result struct {
	Method Method
	Notice string
}

// Copier tries Primary, then Fallback. Either may be nil.
type Copier struct {
	Primary  Writer
	Fallback Writer
}

// NewCopier returns a Copier using the system clipboard with an OSC 52 fallback on out.
func NewCopier(out io.Writer) *Copier {
	return &Copier{Primary: SystemWriter{}, Fallback: &OSC52Writer{Out: out}}
}

// Copy never fails: when both writers fail the code is left for the player to copy by hand.
func (c *Copier) Copy(code string) Result {
	if c.Primary != nil {
		err := c.Primary.WriteText(code)
		if err == nil {
			return Result{Method: MethodPrimary, Notice: fmt.Sprintf("Copied %s to clipboard!", code)}
		}
		log.Debug().Err(err).Msg("primary clipboard failed")
	}
	if c.Fallback != nil {
		err := c.Fallback.WriteText(code)
		if err == nil {
			return Result{Method: MethodFallback, Notice: fmt.Sprintf("Copied %s to clipboard!", code)}
		}
		log.Debug().Err(err).Msg("fallback clipboard failed")
	}
	return Result{Method: MethodNone, Notice: fmt.Sprintf("Copy failed. Your code is %s", code)}
}

// SystemWriter writes to the OS clipboard.
type SystemWriter struct{}

// WriteText implements Writer.
func (SystemWriter) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// OSC52Writer asks the terminal emulator to set its clipboard.
type OSC52Writer struct {
	Out io.Writer
}

// WriteText implements Writer.
func (w *OSC52Writer) WriteText(text string) error {
	if w.Out == nil {
		return errors.New("osc52: no terminal")
	}
	_, err := fmt.Fprintf(w.Out, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}
