package jwt

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func verify(t *testing.T, token, secret string) (jwt.MapClaims, error) {
	t.Helper()
	tok, err := jwt.Parse(token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	return tok.Claims.(jwt.MapClaims), nil
}

func TestIssue_CarriesSubject(t *testing.T) {
	tok, err := Issue("secret", 42, 1)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := verify(t, tok, "secret")
	require.NoError(t, err)
	require.Equal(t, float64(42), claims["sub"])
}

func TestIssue_WrongSecretRejected(t *testing.T) {
	tok, err := Issue("secret", 42, 1)
	require.NoError(t, err)

	_, err = verify(t, tok, "other-secret")
	require.Error(t, err)
}

func TestIssue_ExpiredRejected(t *testing.T) {
	tok, err := Issue("secret", 42, -1)
	require.NoError(t, err)

	_, err = verify(t, tok, "secret")
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}
