// Package state wires the process-wide services together: the backend client, the session, the
// theme and one cache per entity list.
package state

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/api"
	"github.com/sidereusnuntius/campus/internal/approval"
	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/config"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/refresh"
	"github.com/sidereusnuntius/campus/internal/session"
	"github.com/sidereusnuntius/campus/internal/storage"
	"github.com/sidereusnuntius/campus/internal/store"
	"github.com/sidereusnuntius/campus/internal/theme"
)

type State struct {
	Config  config.Configuration
	Client  *client.HttpClient
	API     *api.API
	Storage storage.Storage
	Session *session.Manager
	Theme   *theme.Manager

	Events   *store.Store[domain.Event, domain.EventInput]
	Venues   *store.Store[domain.Venue, domain.VenueInput]
	Forums   *store.Store[domain.Forum, domain.ForumInput]
	Colleges *store.Store[domain.College, domain.CollegeInput]
	Users    *store.Store[domain.User, domain.Registration]
	Approver *approval.Approver
}

// New builds the services on top of an already opened local storage. Nothing is fetched until
// Start is called.
func New(cfg config.Configuration, s storage.Storage, notifier store.Notifier) (*State, error) {
	c, err := client.New(cfg.ApiUrl, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	a := api.New(c)

	st := &State{
		Config:  cfg,
		Client:  c,
		API:     a,
		Storage: s,
		Session: session.New(a, s, c),
		Theme:   theme.New(s, appearance(cfg.Appearance)),

		// New events show up first, like the backend sorts them.
		Events:   store.New(api.EventResource{API: a}, notifier, store.Options{Noun: "event", Insert: store.Prepend}),
		Venues:   store.New(api.VenueResource{API: a}, notifier, store.Options{Noun: "venue"}),
		Forums:   store.New(api.ForumResource{API: a}, notifier, store.Options{Noun: "forum"}),
		Colleges: store.New(api.CollegeResource{API: a}, notifier, store.Options{Noun: "college"}),
		Users:    store.New(api.UserResource{API: a}, notifier, store.Options{Noun: "user"}),
	}
	st.Approver = approval.New(a, st.Users)

	c.OnSessionExpired(st.Session.Expired)
	st.Session.Subscribe(func(sess session.Session) {
		if !sess.IsAuthenticated {
			st.Reset()
		}
	})
	return st, nil
}

func appearance(s string) theme.Name {
	if theme.Name(s) == theme.Dark {
		return theme.Dark
	}
	return theme.Light
}

// Start restores the persisted theme and session. A session that cannot be restored leaves the
// state logged out.
func (s *State) Start(ctx context.Context) {
	if err := s.Theme.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("theme preference not loaded")
	}
	err := s.Session.Hydrate(ctx)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrTokenExpired), errors.Is(err, client.ErrSessionExpired):
		log.Info().Msg("stored session has expired")
	default:
		log.Warn().Err(err).Msg("stored session not restored")
	}
}

// Reset empties every cache. It runs on logout so no data of the previous user survives.
func (s *State) Reset() {
	s.Events.Reset()
	s.Venues.Reset()
	s.Forums.Reset()
	s.Colleges.Reset()
	s.Users.Reset()
}

// Jobs returns the refresh jobs that make sense for the current user's role.
func (s *State) Jobs() []refresh.Job {
	sess := s.Session.Current()
	if !sess.IsAuthenticated {
		return nil
	}

	list := func(name string, l interface {
		List(ctx context.Context, opts store.ListOptions) error
	}) refresh.Job {
		return refresh.Job{Name: name, Run: func(ctx context.Context) error {
			return l.List(ctx, store.ListOptions{Refresh: true})
		}}
	}

	jobs := []refresh.Job{{Name: "session", Run: s.Session.Refresh}}
	switch sess.User.Role {
	case domain.RoleForumHead:
		jobs = append(jobs, list("events", s.Events))
	case domain.RoleCollegeAdmin:
		jobs = append(jobs, list("users", s.Users), list("forums", s.Forums), list("venues", s.Venues))
	case domain.RoleSuperAdmin:
		jobs = append(jobs, list("colleges", s.Colleges))
	}
	return jobs
}

// Scheduler refreshes the caches of the current user on the configured schedule.
func (s *State) Scheduler() (*refresh.Scheduler, error) {
	return refresh.New(s.Config.RefreshSchedule, s.Config.Timeout, s.Jobs()...)
}
