package outbox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInvalidArgumentErrorIsSentinel(t *testing.T) {
	err := &InvalidArgumentError{Message: `nil transport`}
	require.True(t, errors.Is(err, ErrInvalidArgument))
	require.Equal(t, -1, codeOf(err))
}

func TestNoCapacityErrorIsSentinel(t *testing.T) {
	err := &NoCapacityError{}
	require.True(t, errors.Is(err, ErrNoCapacity))
	require.Equal(t, -2, codeOf(err))
}

func TestTransportErrorUnwrapsCause(t *testing.T) {
	cause := errors.New(`boom`)
	err := &TransportError{Cause: cause}
	require.True(t, errors.Is(err, cause))
	require.Equal(t, -1, codeOf(err))
}

func TestCodeOfPlainErrorDefaultsToNegOne(t *testing.T) {
	require.Equal(t, -1, codeOf(errors.New(`plain`)))
}
