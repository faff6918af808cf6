package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type enumString string

var (
	enumFoo = New(enumString("foo"))
	enumBar = New(enumString("bar"))
)

func TestToEnum(t *testing.T) {
	v, err := ToEnum[enumString]("bar")
	require.NoError(t, err)
	require.Equal(t, enumBar, v)

	v, err = ToEnum[enumString]("foo")
	require.NoError(t, err)
	require.Equal(t, enumFoo, v)

	_, err = ToEnum[enumString]("baz")
	require.Error(t, err)

	type unregistered string
	_, err = ToEnum[unregistered]("foo")
	require.Error(t, err)
}
