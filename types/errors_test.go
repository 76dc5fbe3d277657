package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	err := Wrap(ErrBadLabel, errors.New("unexpected EOF"))
	require.ErrorIs(t, err, ErrBadLabel)
	require.Contains(t, err.Error(), "unexpected EOF")
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrUnknownTelescope, "code %q", "99")
	require.ErrorIs(t, err, ErrUnknownTelescope)
	require.Contains(t, err.Error(), `"99"`)
}
