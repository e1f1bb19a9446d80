package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsAreRegistered(t *testing.T) {
	FriendRequests.WithLabelValues(OutcomeSent).Inc()
	FanoutMutations.WithLabelValues(ResultApplied).Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["chatterbox_friend_requests_total"])
	assert.True(t, names["chatterbox_fanout_mutations_total"])
}

func TestFriendRequestOutcomesAreSeparateSeries(t *testing.T) {
	sent := testutil.ToFloat64(FriendRequests.WithLabelValues(OutcomeSent))
	denied := testutil.ToFloat64(FriendRequests.WithLabelValues(OutcomeDenied))

	FriendRequests.WithLabelValues(OutcomeDenied).Inc()

	assert.Equal(t, sent, testutil.ToFloat64(FriendRequests.WithLabelValues(OutcomeSent)))
	assert.Equal(t, denied+1, testutil.ToFloat64(FriendRequests.WithLabelValues(OutcomeDenied)))
}
