package cryptox_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tgedr/connectors/pkg/cryptox"
)

func TestHMACSHA256Base64KnownVector(t *testing.T) {
	// RFC 4231 test case 2.
	got := cryptox.HMACSHA256Base64([]byte("Jefe"), []byte("what do ya want for nothing?"))
	require.Equal(t, "W9zBRr9gdU5qBCQmCJV1x1oAPwidJzmDnexYuWTsOEM=", got)
}

func TestFingerprintToken(t *testing.T) {
	a := cryptox.FingerprintToken("token-a")
	require.Len(t, a, 12)
	require.Equal(t, a, cryptox.FingerprintToken("token-a"))
	require.NotEqual(t, a, cryptox.FingerprintToken("token-b"))
	require.Empty(t, cryptox.FingerprintToken(""))
}
