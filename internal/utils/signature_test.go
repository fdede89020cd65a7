package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature_RoundTrip(t *testing.T) {
	payload := []byte(`{"site":"ThaiDeal"}`)
	sig := GenerateSignature(payload, "secret")

	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature(payload, sig, "secret"))
	assert.False(t, VerifySignature(payload, sig, "other"))
	assert.False(t, VerifySignature([]byte(`{"site":"x"}`), sig, "secret"))
}
