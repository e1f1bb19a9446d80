package services

import (
	"context"
	"errors"
	"time"

	"github.com/Dias221467/chatterbox/internal/metrics"
	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/Dias221467/chatterbox/internal/repository"
	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// FanoutApplier applies per-user list mutations with at-least-once semantics.
// Every mutation is attempted even if an earlier one failed, so a single
// unreachable document does not strand the remaining participants.
type FanoutApplier struct {
	users    UserStore
	maxTries uint
	interval time.Duration
}

func NewFanoutApplier(users UserStore, maxTries uint, interval time.Duration) *FanoutApplier {
	if maxTries == 0 {
		maxTries = 1
	}
	return &FanoutApplier{users: users, maxTries: maxTries, interval: interval}
}

// Apply runs mutations in order. It returns *PartialApplyError when any of them
// could not be applied after retries.
func (a *FanoutApplier) Apply(ctx context.Context, mutations []models.ListMutation) error {
	var applied, failed []models.ListMutation
	var firstErr error

	for _, m := range mutations {
		if err := a.applyOne(ctx, m); err != nil {
			metrics.FanoutMutations.WithLabelValues(metrics.ResultFailed).Inc()
			failed = append(failed, m)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.FanoutMutations.WithLabelValues(metrics.ResultApplied).Inc()
		applied = append(applied, m)
	}

	if len(failed) == 0 {
		return nil
	}

	perr := &PartialApplyError{Applied: applied, Failed: failed, Err: firstErr}
	logrus.WithFields(logrus.Fields{
		"applied": len(applied),
		"failed":  len(failed),
		"error":   firstErr,
	}).Error("Fan-out partially applied: " + perr.Error())
	return perr
}

func (a *FanoutApplier) applyOne(ctx context.Context, m models.ListMutation) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.interval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := a.users.ApplyListMutation(ctx, m)
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, repository.ErrNotFound) || m.Validate() != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		logrus.WithFields(logrus.Fields{
			"mutation": m.String(),
			"error":    err,
		}).Warn("Retrying list mutation")
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(a.maxTries))
	return err
}
