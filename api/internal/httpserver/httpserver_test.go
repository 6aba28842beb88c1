package httpserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRun_ShutsDownOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	srv := New("127.0.0.1:0", http.NotFoundHandler())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	err := Run(context.Background(), New("256.0.0.1:bad", http.NotFoundHandler()), nil)
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	srv := New(":8000", http.NotFoundHandler())
	assert.Equal(t, ":8000", srv.Addr)
	assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
}
