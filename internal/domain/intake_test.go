package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salonos/salonos-backoffice/internal/domain"
)

func TestRequestTransitions(t *testing.T) {
	allowed := [][2]string{
		{domain.RequestPending, domain.RequestContacted},
		{domain.RequestContacted, domain.RequestApprovedPending},
		{domain.RequestApprovedPending, domain.RequestPaymentConfirmed},
		{domain.RequestPaymentConfirmed, domain.RequestProvisioning},
		{domain.RequestProvisioning, domain.RequestProvisioned},
	}
	for _, tr := range allowed {
		require.True(t, domain.CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]string{
		{domain.RequestPending, domain.RequestProvisioned},
		{domain.RequestContacted, domain.RequestPaymentConfirmed},
		{domain.RequestProvisioned, domain.RequestPending},
		{domain.RequestRejected, domain.RequestContacted},
		{domain.RequestProvisioned, domain.RequestRejected},
	}
	for _, tr := range denied {
		require.False(t, domain.CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestAnyNonTerminalStateCanBeRejected(t *testing.T) {
	for _, from := range []string{
		domain.RequestPending,
		domain.RequestContacted,
		domain.RequestApprovedPending,
		domain.RequestPaymentConfirmed,
		domain.RequestProvisioning,
	} {
		require.True(t, domain.CanTransition(from, domain.RequestRejected), "from %s", from)
	}
}

func TestStagingKeys(t *testing.T) {
	key := domain.NewStagingKey()
	require.True(t, domain.ValidStagingKey(key), "generated key %q", key)

	require.True(t, domain.ValidStagingKey("staging_1700000000_0042"))
	require.False(t, domain.ValidStagingKey("salon_1700000000_0042"))
	require.False(t, domain.ValidStagingKey("staging_abc_0042"))
	require.False(t, domain.ValidStagingKey(""))
}

func TestStagedAssetSetEmpty(t *testing.T) {
	require.True(t, domain.StagedAssetSet{}.Empty())
	require.False(t, domain.StagedAssetSet{Logo: "https://x/logo.png"}.Empty())
	require.False(t, domain.StagedAssetSet{Gallery: []string{"https://x/a.png"}}.Empty())
}
