package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type thing struct{}

func TestNotNil(t *testing.T) {
	var nilPtr *thing
	require.Panics(t, func() { NotNil(nil) })
	require.Panics(t, func() { NotNil(nilPtr) })
	require.NotPanics(t, func() { NotNil(&thing{}) })
	require.NotPanics(t, func() { NotNil(3) })
}

func TestNotEmptyStr(t *testing.T) {
	require.Panics(t, func() { NotEmptyStr("") })
	require.NotPanics(t, func() { NotEmptyStr("x") })
}

func TestPositive(t *testing.T) {
	require.Panics(t, func() { Positive(0, "interval") })
	require.Panics(t, func() { Positive(-1.5, "rate") })
	require.NotPanics(t, func() { Positive(int64(1), "iterations") })
}
