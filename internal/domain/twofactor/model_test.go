package twofactor

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestCredentialVariants(t *testing.T) {
	expires := time.Now().UTC().Add(time.Minute)

	sms := Method{MethodType: MethodSMS}
	require.Nil(t, sms.Credential())
	sms.SetCredential(OneTimeCode{Hash: "h", ExpiresAt: expires, Attempts: 2})
	code, ok := sms.Credential().(OneTimeCode)
	require.True(t, ok)
	require.Equal(t, "h", code.Hash)
	require.Equal(t, 2, code.Attempts)
	require.Nil(t, sms.TOTPSecret)

	sms.SetCredential(nil)
	require.Nil(t, sms.Credential())
	require.Zero(t, sms.Attempts)

	app := Method{MethodType: MethodAuthenticator}
	app.SetCredential(TOTPSecret{Secret: "JBSWY3DPEHPK3PXP"})
	secret, ok := app.Credential().(TOTPSecret)
	require.True(t, ok)
	require.Equal(t, "JBSWY3DPEHPK3PXP", secret.Secret)
	require.Nil(t, app.CodeHash)
}

func TestOneTimeCodeExpired(t *testing.T) {
	now := time.Now().UTC()
	require.True(t, OneTimeCode{ExpiresAt: now}.Expired(now))
	require.False(t, OneTimeCode{ExpiresAt: now.Add(time.Second)}.Expired(now))
}

func TestParseMethodType(t *testing.T) {
	m, err := ParseMethodType("SMS")
	require.NoError(t, err)
	require.Equal(t, MethodSMS, m)
	require.True(t, m.UsesOneTimeCode())
	require.False(t, MethodAuthenticator.UsesOneTimeCode())

	_, err = ParseMethodType("pigeon")
	require.Error(t, err)
}
