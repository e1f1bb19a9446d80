// Package metrics holds the Prometheus collectors of the server. Collectors are
// registered with the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatsCreated counts committed chat creations.
	ChatsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatterbox_chats_created_total",
		Help: "Total chats created",
	})

	// ChatRecipients counts chat recipients by membership kind (confirmed or pending).
	ChatRecipients = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatterbox_chat_recipients_total",
		Help: "Chat recipients fanned out by membership kind",
	}, []string{"recipient_kind"})

	// FriendRequests counts friend-request transitions by outcome.
	FriendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatterbox_friend_requests_total",
		Help: "Friend requests by outcome (sent, accepted, denied)",
	}, []string{"outcome"})

	// FanoutMutations counts per-user list mutations by result.
	FanoutMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatterbox_fanout_mutations_total",
		Help: "Per-user list mutations applied during fan-out, by result",
	}, []string{"result"})

	// HTTPRequestDuration tracks request latency by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatterbox_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
	}, []string{"method", "route", "status"})
)

const (
	RecipientConfirmed = "confirmed"
	RecipientPending   = "pending"

	OutcomeSent     = "sent"
	OutcomeAccepted = "accepted"
	OutcomeDenied   = "denied"

	ResultApplied = "applied"
	ResultFailed  = "failed"
)
