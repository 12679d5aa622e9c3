package upload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestPolicyCheck(t *testing.T) {
	p := DefaultPolicy()

	mime, err := p.Check(Blob{Name: "a.png", Data: pngHeader}, KindImage)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = p.Check(Blob{Name: "a.txt", Data: []byte("plain text")}, KindImage)
	assert.ErrorIs(t, err, ErrRejected)

	_, err = p.Check(Blob{Name: "empty"}, KindRaw)
	assert.ErrorIs(t, err, ErrRejected)

	p.MaxFileBytes = 4
	_, err = p.Check(Blob{Name: "big.txt", Data: []byte("too large")}, KindRaw)
	assert.ErrorIs(t, err, ErrRejected)

	mime, err = DefaultPolicy().Check(Blob{Name: "notes.txt", Data: []byte("plain text")}, KindRaw)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mime)
}

type flaky struct {
	failures int
	calls    int
	err      error
}

func (f *flaky) Upload(ctx context.Context, blob Blob, kind Kind) (Result, error) {
	f.calls++
	if f.calls <= f.failures {
		return Result{}, f.err
	}
	return Result{URL: "https://cdn/" + blob.Name}, nil
}

func TestWithRetryRetriesTransportOnly(t *testing.T) {
	f := &flaky{failures: 2, err: &TransportError{Err: errors.New("reset")}}
	res, err := WithRetry(f, 3, 0).Upload(context.Background(), Blob{Name: "x"}, KindRaw)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x", res.URL)
	assert.Equal(t, 3, f.calls)

	r := &flaky{failures: 5, err: Rejected("too big")}
	_, err = WithRetry(r, 3, 0).Upload(context.Background(), Blob{Name: "x"}, KindRaw)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 1, r.calls)
}

func TestWithRetryGivesUpAfterAttempts(t *testing.T) {
	f := &flaky{failures: 5, err: &TransportError{Err: errors.New("reset")}}
	_, err := WithRetry(f, 3, time.Millisecond).Upload(context.Background(), Blob{Name: "x"}, KindRaw)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 3, f.calls)
}

func TestWithRetryStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &flaky{failures: 5, err: &TransportError{Err: errors.New("reset")}}
	_, err := WithRetry(f, 3, time.Hour).Upload(ctx, Blob{Name: "x"}, KindRaw)
	assert.ErrorIs(t, err, ErrTransport)
	assert.LessOrEqual(t, f.calls, 1)
}
