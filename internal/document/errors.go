package document

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPasswordRequired signals that the document is encrypted and no password
// was supplied. It is a control signal for the retry flow, not a failure.
var ErrPasswordRequired = errors.New("document is password protected")

// ErrWrongPassword signals that the supplied password did not authenticate.
var ErrWrongPassword = errors.New("incorrect password or unable to decrypt PDF")

// OpenError wraps structural open failures (corrupt or unreadable source).
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// isPasswordError checks whether a pdfcpu read failure is password-related.
// pdfcpu reports both missing and wrong passwords through error text.
func isPasswordError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "password") || strings.Contains(s, "encrypt")
}
