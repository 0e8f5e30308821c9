package phonepe_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/payment-relay/internal/phonepe"
)

func TestSignPayKnownVector(t *testing.T) {
	t.Parallel()

	got := phonepe.SignPay("eyJhIjoxfQ==", "test-salt", 1)
	require.Equal(t, "2bd694f415f3feb143177a322db0e92f07f3bd98cfde970071857acc94345b8d###1", got)
}

func TestSignPayDeterministic(t *testing.T) {
	t.Parallel()

	first := phonepe.SignPay("payload", "salt", 3)
	second := phonepe.SignPay("payload", "salt", 3)
	require.Equal(t, first, second)
}

func TestSignPaySensitivity(t *testing.T) {
	t.Parallel()

	base := phonepe.SignPay("payload", "salt", 1)
	require.NotEqual(t, base, phonepe.SignPay("payload2", "salt", 1))
	require.NotEqual(t, base, phonepe.SignPay("payload", "salt2", 1))

	reindexed := phonepe.SignPay("payload", "salt", 2)
	require.NotEqual(t, base, reindexed)
	// a different key index changes only the suffix, never the digest
	require.Equal(t, base[:64], reindexed[:64])
}

func TestSignStatusKnownVector(t *testing.T) {
	t.Parallel()

	got := phonepe.SignStatus("MERCHANT1", "MT123", "test-salt", 1)
	require.Equal(t, "fe0205e796e4dc67adcfa837a7045b02d5c62a04c88e6b27ddf54608d40f2f81###1", got)
}
