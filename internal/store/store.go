// Package store keeps per-domain, in-memory caches of backend entities and the actions that
// reconcile them with the backend.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"codeberg.org/gruf/go-mutexes"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/client"
)

// Entity is any backend object identified by an opaque string id.
type Entity interface {
	GetID() string
}

// Resource is the remote side of a store. I is the input accepted by Create; the server assigns
// the id of the created entity.
type Resource[T Entity, I any] interface {
	List(ctx context.Context, query string) ([]T, error)
	Create(ctx context.Context, input I) (T, error)
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
}

// Position is where a created entity is inserted in the cached list.
type Position uint8

const (
	Append Position = iota
	Prepend
)

type Options struct {
	// Noun and Plural name the entity in the messages shown to the user.
	Noun   string
	Plural string
	Insert Position
	// Messages overrides the texts derived from Noun.
	Messages Messages
}

// Messages are the notices of each action. The failure texts are fallbacks, used when the backend
// sends no message of its own.
type Messages struct {
	ListFailed   string
	Created      string
	CreateFailed string
	Updated      string
	UpdateFailed string
	// Stale is shown when the backend accepted an update the cache could not absorb.
	Stale        string
	Deleted      string
	DeleteFailed string
}

func (o Options) messages() Messages {
	noun, plural := o.Noun, o.Plural
	if noun == "" {
		noun = "item"
	}
	if plural == "" {
		plural = noun + "s"
	}
	m := o.Messages
	fill := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	fill(&m.ListFailed, "Failed to load "+plural)
	fill(&m.Created, capitalize(noun)+" created")
	fill(&m.CreateFailed, "Failed to create "+noun)
	fill(&m.Updated, capitalize(noun)+" updated")
	fill(&m.UpdateFailed, "Failed to update "+noun)
	fill(&m.Stale, capitalize(noun)+" updated, reload to see the change")
	fill(&m.Deleted, capitalize(noun)+" deleted")
	fill(&m.DeleteFailed, "Failed to delete "+noun)
	return m
}

// State is a snapshot of a store's cache.
type State[T Entity] struct {
	Items  []T
	Status Status
	// LastError is the last failure of any action, LastMessage its text as shown to the user.
	LastError   error
	LastMessage string
	// Submitting is true while a create is in flight.
	Submitting bool
}

type ListOptions struct {
	Query string
	// Refresh marks a user-initiated reload of data already on screen.
	Refresh bool
}

func (o ListOptions) status() Status {
	switch {
	case o.Query != "":
		return SearchingFiltered
	case o.Refresh:
		return Refreshing
	default:
		return Loading
	}
}

// Store owns one entity list cache. All actions are pessimistic: the cache only changes after the
// backend confirms.
type Store[T Entity, I any] struct {
	resource Resource[T, I]
	notifier Notifier
	msgs     Messages
	insert   Position
	locks    *mutexes.MutexMap

	mu         sync.RWMutex
	state      State[T]
	submitting int
	// issued is the sequence number of the latest list request, applied the one of the latest
	// response written to the cache.
	issued  uint64
	applied uint64

	listenersMutex sync.Mutex
	listeners      map[int]func(State[T])
	nextListener   int
}

func New[T Entity, I any](resource Resource[T, I], notifier Notifier, opts Options) *Store[T, I] {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Store[T, I]{
		resource:  resource,
		notifier:  notifier,
		msgs:      opts.messages(),
		insert:    opts.Insert,
		locks:     &mutexes.MutexMap{},
		listeners: map[int]func(State[T]){},
	}
}

func (s *Store[T, I]) Snapshot() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store[T, I]) snapshotLocked() State[T] {
	st := s.state
	st.Items = slices.Clone(s.state.Items)
	return st
}

func (s *Store[T, I]) Items() []T {
	return s.Snapshot().Items
}

func (s *Store[T, I]) Find(id string) (item T, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.state.Items[i], true
	}
	return
}

// Subscribe registers f to receive every new state. The returned function unregisters it.
func (s *Store[T, I]) Subscribe(f func(State[T])) (unsubscribe func()) {
	s.listenersMutex.Lock()
	defer s.listenersMutex.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = f
	return func() {
		s.listenersMutex.Lock()
		defer s.listenersMutex.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store[T, I]) publish() {
	st := s.Snapshot()
	s.listenersMutex.Lock()
	fs := make([]func(State[T]), 0, len(s.listeners))
	for _, f := range s.listeners {
		fs = append(fs, f)
	}
	s.listenersMutex.Unlock()

	for _, f := range fs {
		f(st)
	}
}

// List fetches the list and replaces the cached items. A response older than one already applied
// is dropped. On failure the previous items stay in place.
func (s *Store[T, I]) List(ctx context.Context, opts ListOptions) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.state.Status = opts.status()
	s.mu.Unlock()
	s.publish()

	items, err := s.resource.List(ctx, opts.Query)

	s.mu.Lock()
	if applied := s.applied; seq < applied {
		s.mu.Unlock()
		log.Debug().Uint64("seq", seq).Uint64("applied", applied).Msg("dropping stale list response")
		return err
	}
	s.applied = seq
	latest := seq == s.issued
	if err != nil {
		s.state.LastError = err
		s.state.LastMessage = client.Message(err, s.msgs.ListFailed)
		if latest {
			s.state.Status = Error
		}
	} else {
		s.state.Items = items
		s.state.LastError = nil
		s.state.LastMessage = ""
		if latest {
			s.state.Status = Idle
		}
	}
	s.mu.Unlock()
	s.publish()

	if err != nil {
		log.Error().Err(err).Msg(s.msgs.ListFailed)
	}
	return err
}

// Refresh reloads the unfiltered list.
func (s *Store[T, I]) Refresh(ctx context.Context) error {
	return s.List(ctx, ListOptions{Refresh: true})
}

// Create submits input and, once the backend returns the new entity, inserts it into the cache.
func (s *Store[T, I]) Create(ctx context.Context, input I) (T, error) {
	s.mu.Lock()
	s.submitting++
	s.state.Submitting = true
	s.mu.Unlock()
	s.publish()

	item, err := s.resource.Create(ctx, input)

	s.mu.Lock()
	s.submitting--
	s.state.Submitting = s.submitting > 0
	if err == nil {
		if s.insert == Prepend {
			s.state.Items = slices.Insert(s.state.Items, 0, item)
		} else {
			s.state.Items = append(s.state.Items, item)
		}
	}
	s.mu.Unlock()

	s.finish(err, s.msgs.Created, s.msgs.CreateFailed)
	return item, err
}

// Update sends patch to the backend and merges it into the cached entity.
func (s *Store[T, I]) Update(ctx context.Context, id string, patch Patch) error {
	return s.Mutate(ctx, id, patch, func(ctx context.Context) error {
		return s.resource.Update(ctx, id, patch)
	})
}

// Mutate runs call and, if it succeeds, merges patch into the cached entity with the given id. It
// lets actions served by dedicated endpoints, such as approving a user, follow the update
// contract. Entities missing from the cache are ignored. A confirmed change the cached entity
// cannot absorb is reported as an ErrMerge failure.
func (s *Store[T, I]) Mutate(ctx context.Context, id string, patch Patch, call func(context.Context) error) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	err := call(ctx)
	if err != nil {
		s.finish(err, s.msgs.Updated, s.msgs.UpdateFailed)
		return err
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		merged, mergeErr := merge(s.state.Items[i], patch)
		if mergeErr != nil {
			log.Error().Err(mergeErr).Str("id", id).Msg("cached entity left stale")
			err = mergeErr
		} else {
			s.state.Items[i] = merged
		}
	}
	s.mu.Unlock()

	s.finish(err, s.msgs.Updated, s.msgs.Stale)
	return err
}

// Delete removes the entity from the backend, then from the cache.
func (s *Store[T, I]) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	err := s.resource.Delete(ctx, id)
	if err == nil {
		s.mu.Lock()
		if i := s.indexLocked(id); i >= 0 {
			s.state.Items = slices.Delete(s.state.Items, i, i+1)
		}
		s.mu.Unlock()
	}

	s.finish(err, s.msgs.Deleted, s.msgs.DeleteFailed)
	return err
}

// Reset empties the cache, e.g. after logout.
func (s *Store[T, I]) Reset() {
	s.mu.Lock()
	s.state = State[T]{}
	s.submitting = 0
	// Responses still in flight predate the reset.
	s.applied = s.issued + 1
	s.mu.Unlock()
	s.publish()
}

func (s *Store[T, I]) finish(err error, success, fallback string) {
	if err != nil {
		msg := client.Message(err, fallback)
		s.mu.Lock()
		s.state.LastError = err
		s.state.LastMessage = msg
		s.mu.Unlock()
		s.notifier.Notify(Notice{Level: Failure, Message: msg, Err: err})
	} else {
		s.notifier.Notify(Notice{Level: Success, Message: success})
	}
	s.publish()
}

func (s *Store[T, I]) indexLocked(id string) int {
	return slices.IndexFunc(s.state.Items, func(item T) bool {
		return item.GetID() == id
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// IsStale reports whether err means the cache could not absorb a confirmed change.
func IsStale(err error) bool {
	return errors.Is(err, ErrMerge)
}
