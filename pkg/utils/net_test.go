package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerNameConformant(t *testing.T) {
	require.True(t, ServerNameConformant("example.com"))
	require.True(t, ServerNameConformant("localhost"))

	require.False(t, ServerNameConformant(""))
	require.False(t, ServerNameConformant("192.0.2.1"))
	require.False(t, ServerNameConformant("2001:db8::1"))
	require.False(t, ServerNameConformant("example.com:443"))
}
