package document

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPasswordError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"missing password", errors.New("pdfcpu: please provide the correct password"), true},
		{"encrypted", errors.New("Encrypt dict not supported"), true},
		{"corrupt xref", errors.New("pdfcpu: xRefTable failure"), false},
		{"io error", errors.New("unexpected EOF"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isPasswordError(tc.err))
		})
	}
}

func TestOpenErrorUnwrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := &OpenError{Path: "/tmp/in.pdf", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "/tmp/in.pdf")
}

func TestAuthSentinelsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrPasswordRequired, ErrWrongPassword))
	wrapped := fmt.Errorf("open failed: %w", ErrPasswordRequired)
	assert.ErrorIs(t, wrapped, ErrPasswordRequired)
}
