package internal_test

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/tqt95/app-react-jpa/internal"

	"github.com/stretchr/testify/assert"
)

func TestEnvs(t *testing.T) {
	envs := internal.Envs([]string{
		"DATABASE_HOST=localhost",
		"DATABASE_PASSWORD=a=b",
		"EMPTY=",
		"DATABASE_HOST=mysql",
	})
	assert.Equal(t, "mysql", envs["DATABASE_HOST"])
	assert.Equal(t, "a=b", envs["DATABASE_PASSWORD"])
	assert.Equal(t, "", envs["EMPTY"])
}

func TestCorrelationId(t *testing.T) {
	ctx := context.TODO()
	assert.Empty(t, internal.CorrelationIdFromCtx(ctx))
	correlationId := internal.GenerateId()
	ctx = internal.CtxWithCorrelationId(ctx, correlationId)
	assert.Equal(t, correlationId, internal.CorrelationIdFromCtx(ctx))
}

func TestLaunchContext(t *testing.T) {
	var wg sync.WaitGroup

	osSignal := make(chan os.Signal, 1)
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()
	osSignal <- syscall.SIGTERM
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		assert.Fail(t, "context not cancelled after signal")
	}
	wg.Wait()
}
