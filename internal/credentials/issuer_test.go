package credentials_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salonos/salonos-backoffice/internal/credentials"
)

func TestDeriveHandle(t *testing.T) {
	cases := map[string]string{
		"Ana":                      "ana",
		"Maria Garcia":             "maria.garcia",
		"Jose Alberto Perez Lopez": "jose.lopez",
		"  José  Pérez ":           "jose.perez",
		"":                         "",
		"O'Brien":                  "obrien",
	}
	for in, want := range cases {
		require.Equal(t, want, credentials.DeriveHandle(in), "input %q", in)
	}
}

func TestUniqueHandleFreeBase(t *testing.T) {
	issuer := credentials.NewIssuer(&memoryDirectory{})

	got, err := issuer.UniqueHandle(context.Background(), "maria.garcia")
	require.NoError(t, err)
	require.Equal(t, "maria.garcia", got)
}

func TestUniqueHandleSuffixed(t *testing.T) {
	dir := &memoryDirectory{taken: map[string]bool{
		"maria.garcia":  true,
		"maria.garcia1": true,
	}}
	issuer := credentials.NewIssuer(dir)

	got, err := issuer.UniqueHandle(context.Background(), "maria.garcia")
	require.NoError(t, err)
	require.Equal(t, "maria.garcia2", got)
}

func TestUniqueHandleEmptyBase(t *testing.T) {
	issuer := credentials.NewIssuer(&memoryDirectory{})

	_, err := issuer.UniqueHandle(context.Background(), "")
	require.Error(t, err)
}

func TestGenerateSecret(t *testing.T) {
	const ambiguous = "01OIl"

	for range 50 {
		secret, err := credentials.GenerateSecret()
		require.NoError(t, err)
		require.Len(t, secret, 8)

		var upper, lower, digit bool
		for _, r := range secret {
			require.NotContains(t, ambiguous, string(r))
			switch {
			case r >= 'A' && r <= 'Z':
				upper = true
			case r >= 'a' && r <= 'z':
				lower = true
			case r >= '0' && r <= '9':
				digit = true
			default:
				t.Fatalf("unexpected character %q in secret", r)
			}
		}
		require.True(t, upper, "secret %q lacks an uppercase letter", secret)
		require.True(t, lower, "secret %q lacks a lowercase letter", secret)
		require.True(t, digit, "secret %q lacks a digit", secret)
	}
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher := credentials.BcryptHasher{}

	hash, err := hasher.Hash("Xk4mPw9a")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2"))
	require.True(t, hasher.Verify("Xk4mPw9a", hash))
	require.False(t, hasher.Verify("wrong", hash))
}

type memoryDirectory struct {
	taken map[string]bool
}

func (d *memoryDirectory) HandleTaken(_ context.Context, handle string) (bool, error) {
	return d.taken[handle], nil
}
