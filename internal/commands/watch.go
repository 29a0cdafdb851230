package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/diff"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/session"
	"github.com/sidereusnuntius/campus/internal/store"
)

// Watch refreshes the current user's lists on the configured schedule until ctx ends, printing
// the lines of the event list that change between runs.
func Watch(ctx context.Context, env *Env, args []string) error {
	if _, err := requireRole(env); err != nil {
		return err
	}
	st := env.State

	var mu sync.Mutex
	last := ""
	unsubscribe := st.Events.Subscribe(func(s store.State[domain.Event]) {
		if s.Status.Busy() {
			return
		}
		rendered := RenderEvents(s.Items)
		mu.Lock()
		defer mu.Unlock()
		if rendered == last {
			return
		}
		for _, line := range diff.Lines(last, rendered) {
			fmt.Fprintln(env.Out, line)
		}
		last = rendered
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ended := false
	stop := st.Session.Subscribe(func(sess session.Session) {
		if !sess.IsAuthenticated {
			mu.Lock()
			ended = true
			mu.Unlock()
			cancel()
		}
	})
	defer stop()

	s, err := st.Scheduler()
	if err != nil {
		return err
	}
	if err = s.RunOnce(ctx); err != nil {
		log.Warn().Err(err).Msg("initial refresh failed")
	}
	s.Start(ctx)
	defer s.Stop()

	<-ctx.Done()
	mu.Lock()
	defer mu.Unlock()
	if ended {
		return client.ErrSessionExpired
	}
	return nil
}
