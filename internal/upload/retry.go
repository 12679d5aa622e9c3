package upload

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type retrying struct {
	next     Uploader
	attempts uint
	initial  time.Duration
}

// WithRetry retries transport failures up to attempts times in total with
// exponential backoff starting at initial. Rejections are returned
// immediately. The context deadline bounds the whole sequence.
func WithRetry(next Uploader, attempts int, initial time.Duration) Uploader {
	if attempts < 1 {
		attempts = 1
	}
	return &retrying{next: next, attempts: uint(attempts), initial: initial}
}

func (r *retrying) Upload(ctx context.Context, blob Blob, kind Kind) (Result, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initial
	policy.Multiplier = 2

	res, err := backoff.Retry(ctx, func() (Result, error) {
		res, err := r.next.Upload(ctx, blob, kind)
		if err != nil && !errors.Is(err, ErrTransport) {
			return Result{}, backoff.Permanent(err)
		}
		return res, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(r.attempts))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrTransport) {
			return Result{}, &TransportError{Err: ctxErr}
		}
		return Result{}, err
	}
	return res, nil
}
