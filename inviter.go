package invitekit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// MembershipClient performs the actual channel membership operation.
// Client implements it against the Telegram API; tests substitute fakes.
type MembershipClient interface {
	AddUser(ctx context.Context, user UserRecord) Outcome
}

// Summary aggregates the outcomes of a completed run.
type Summary struct {
	Processed     int
	Added         int
	AlreadyMember int
	NotFound      int
	Failed        int
}

func (s *Summary) tally(kind OutcomeKind) {
	switch kind {
	case Added:
		s.Added++
	case AlreadyMember:
		s.AlreadyMember++
	case NotFound:
		s.NotFound++
	default:
		s.Failed++
	}
}

// Inviter runs the batch loop: it partitions the user list into
// consecutive batches, invites each user through the membership client,
// and appends one result per unique user to the sink, in attempt order.
type Inviter struct {
	client MembershipClient
	cfg    Config
	sink   ResultSink
	logger *slog.Logger

	// Overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewInviter creates an Inviter with the given collaborators.
func NewInviter(client MembershipClient, cfg Config, sink ResultSink) *Inviter {
	cfg.setDefaults()
	return &Inviter{
		client: client,
		cfg:    cfg,
		sink:   sink,
		logger: cfg.Logger,
		sleep:  sleepContext,
		now:    time.Now,
	}
}

// Run processes all users and returns the run summary. Per-user
// failures are recorded and never stop the run; Run only returns an
// error when the context is cancelled or a result cannot be recorded.
func (inv *Inviter) Run(ctx context.Context, users []UserRecord) (Summary, error) {
	var sum Summary

	users = DedupUsers(users)
	total := len(users)
	if total == 0 {
		inv.logger.Info("no users to process")
		return sum, nil
	}

	batchSize := inv.cfg.BatchSize
	batchDelay := time.Duration(inv.cfg.BatchDelay) * time.Second
	inviteDelay := time.Duration(inv.cfg.InviteDelay) * time.Second
	totalBatches := (total + batchSize - 1) / batchSize

	inv.logger.Info("starting invite run",
		"users", total,
		"batch_size", batchSize,
		"batches", totalBatches,
		"dry_run", inv.cfg.DryRun)

	for start := 0; start < total; start += batchSize {
		end := min(start+batchSize, total)
		batch := users[start:end]

		inv.logger.Info("processing batch",
			"batch", start/batchSize+1,
			"total_batches", totalBatches,
			"size", len(batch))

		for i, u := range batch {
			if i > 0 && inviteDelay > 0 {
				if err := inv.sleep(ctx, inviteDelay); err != nil {
					return sum, err
				}
			}

			var res AttemptResult
			if inv.cfg.DryRun {
				res = AttemptResult{User: u, Status: StatusDryRun, Reason: "Simulated", Timestamp: inv.now()}
				inv.logger.Info("dry run, skipping invite", "user", u.DisplayName())
			} else {
				out, err := inv.invite(ctx, u)
				if err != nil {
					return sum, err
				}
				res = AttemptResult{User: u, Status: out.Status(), Reason: out.Reason(), Timestamp: inv.now()}
				sum.tally(out.Kind)
				if out.Kind == Added {
					inv.logger.Info("added user", "user", u.DisplayName())
				} else {
					inv.logger.Warn("invite failed", "user", u.DisplayName(), "reason", res.Reason)
				}
			}

			if err := inv.sink.Append(res); err != nil {
				return sum, fmt.Errorf("record result: %w", err)
			}
			sum.Processed++
		}

		// No pause after the final batch.
		if end < total && batchDelay > 0 {
			inv.logger.Info("waiting before next batch", "delay", batchDelay)
			if err := inv.sleep(ctx, batchDelay); err != nil {
				return sum, err
			}
		}
	}

	inv.logger.Info("invite run complete",
		"processed", sum.Processed,
		"added", sum.Added,
		"already_member", sum.AlreadyMember,
		"not_found", sum.NotFound,
		"failed", sum.Failed)

	return sum, nil
}

// invite performs one add attempt, honoring a server flood wait with
// exactly one retry per user so the run always makes forward progress.
func (inv *Inviter) invite(ctx context.Context, u UserRecord) (Outcome, error) {
	out := inv.client.AddUser(ctx, u)
	if out.Kind != RateLimited {
		return out, nil
	}

	if inv.cfg.MaxFloodWait >= 0 && out.Wait > time.Duration(inv.cfg.MaxFloodWait)*time.Second {
		inv.logger.Warn("flood wait exceeds cap, recording failure",
			"user", u.DisplayName(), "wait", out.Wait)
		return out, nil
	}

	inv.logger.Warn("rate limited, suspending run", "user", u.DisplayName(), "wait", out.Wait)
	if err := inv.sleep(ctx, out.Wait); err != nil {
		return out, err
	}
	return inv.client.AddUser(ctx, u), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
