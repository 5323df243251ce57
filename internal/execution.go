package internal

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

func GenerateId() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// Envs converts environment entries (key=value) into a map, later
// entries win.
func Envs(environ []string) map[string]string {
	envs := make(map[string]string)
	for _, env := range environ {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	return envs
}

// LaunchContext returns a context that is cancelled once a signal is
// received on osSignal (or cancel is called).
func LaunchContext(wg *sync.WaitGroup, osSignal chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()

		select {
		case <-ctx.Done():
		case <-osSignal:
		}
	}()
	return ctx, cancel
}
