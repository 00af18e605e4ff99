package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hs256Config() Config {
	return Config{
		TTL:           time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("unit-test-secret-0123456789abcdef"),
		Issuer:        "warden",
	}
}

func TestNewCodecValidation(t *testing.T) {
	cfg := hs256Config()
	cfg.TTL = 0
	_, err := NewCodec(cfg)
	assert.Error(t, err)

	cfg = hs256Config()
	cfg.PrivateKey = nil
	_, err = NewCodec(cfg)
	assert.Error(t, err)

	cfg = hs256Config()
	cfg.SigningMethod = "rs256"
	_, err = NewCodec(cfg)
	assert.Error(t, err)

	cfg = hs256Config()
	cfg.Leeway = 5 * time.Minute
	_, err = NewCodec(cfg)
	assert.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec, err := NewCodec(hs256Config())
	require.NoError(t, err)

	signed, err := codec.Issue("alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	subject, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestVerifyRejectsExpired(t *testing.T) {
	cfg := hs256Config()
	cfg.TTL = 50 * time.Millisecond
	codec, err := NewCodec(cfg)
	require.NoError(t, err)

	signed, err := codec.Issue("alice@example.com")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	codec, err := NewCodec(hs256Config())
	require.NoError(t, err)

	otherCfg := hs256Config()
	otherCfg.PrivateKey = []byte("a-completely-different-secret-key")
	other, err := NewCodec(otherCfg)
	require.NoError(t, err)

	signed, err := other.Issue("alice@example.com")
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	codec, err := NewCodec(hs256Config())
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := codec.Verify(tok)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	codec, err := NewCodec(hs256Config())
	require.NoError(t, err)

	otherCfg := hs256Config()
	otherCfg.Issuer = "someone-else"
	other, err := NewCodec(otherCfg)
	require.NoError(t, err)

	signed, err := other.Issue("alice@example.com")
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEd25519RoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	codec, err := NewCodec(Config{
		TTL:           time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	require.NoError(t, err)

	signed, err := codec.Issue("alice@example.com")
	require.NoError(t, err)

	subject, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestVerifyRejectsCrossAlgorithm(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	edCodec, err := NewCodec(Config{
		TTL:           time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	require.NoError(t, err)

	hsCodec, err := NewCodec(hs256Config())
	require.NoError(t, err)

	signed, err := edCodec.Issue("alice@example.com")
	require.NoError(t, err)

	_, err = hsCodec.Verify(signed)
	assert.ErrorIs(t, err, ErrMalformed)
}
