package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sidereusnuntius/campus/internal/fakebackend"
)

func FakeBackend(ctx context.Context, env *Env, args []string) error {
	fs := flags("fake-backend")
	addr := fs.String("addr", "localhost:3000", "address to listen on")
	ttl := fs.Duration("token-ttl", time.Hour, "lifetime of issued tokens")
	if err := fs.Parse(args); err != nil {
		return usage("%s", err)
	}

	b := fakebackend.New()
	b.TokenTTL = *ttl
	if err := b.Seed(); err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Mount("/", b.Handler())
	server := &http.Server{Addr: *addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdown)
	}()

	fmt.Fprintf(env.Out, "Serving %s%s\nDemo accounts (password %q):\n", "http://"+*addr, fakebackend.Prefix, fakebackend.DemoPassword)
	for _, email := range []string{fakebackend.DemoSuperAdmin, fakebackend.DemoCollegeAdmin, fakebackend.DemoForumHead, fakebackend.DemoTeacher} {
		fmt.Fprintf(env.Out, "  %s\n", email)
	}
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
