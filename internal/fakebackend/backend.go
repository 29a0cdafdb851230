// Package fakebackend is an in-memory implementation of the campus REST API, used for integration
// tests and local development. It mimics the real backend's quirks: responses are wrapped in
// different envelopes per endpoint and errors carry their text under either "message" or "error".
package fakebackend

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Prefix is where the API is mounted.
const Prefix = "/api/v1"

var ErrConflict = errors.New("already exists")

type account struct {
	domain.User
	hash []byte
}

type Backend struct {
	TokenTTL time.Duration

	mu       sync.Mutex
	secret   []byte
	nextID   int
	users    map[string]*account
	colleges map[string]*domain.College
	forums   map[string]*domain.Forum
	venues   map[string]*domain.Venue
	events   map[string]*domain.Event
	otps     map[string]string
}

func New() *Backend {
	b := &Backend{
		TokenTTL: time.Hour,
		users:    map[string]*account{},
		colleges: map[string]*domain.College{},
		forums:   map[string]*domain.Forum{},
		venues:   map[string]*domain.Venue{},
		events:   map[string]*domain.Event{},
		otps:     map[string]string{},
	}
	b.RevokeAll()
	return b
}

// Handler serves the API under Prefix.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route(Prefix, b.Mount)
	return r
}

// RevokeAll invalidates every token issued so far.
func (b *Backend) RevokeAll() {
	secret := make([]byte, 32)
	// crypto/rand.Read never fails since Go 1.24; it crashes the program instead.
	_, _ = rand.Read(secret)
	b.mu.Lock()
	b.secret = secret
	b.mu.Unlock()
}

func (b *Backend) id() string {
	b.nextID++
	return strconv.Itoa(b.nextID)
}

// AddUser stores an already verified user with the given password and returns it with its id.
func (b *Backend) AddUser(u domain.User, password string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return u, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.findByEmail(u.Email) != nil {
		return u, fmt.Errorf("%w: %s", ErrConflict, u.Email)
	}
	u.ID = domain.ID(b.id())
	if u.Status == "" {
		u.Status = domain.StatusApproved
	}
	u.Verified = true
	b.users[string(u.ID)] = &account{User: u, hash: hash}
	return u, nil
}

func (b *Backend) AddCollege(c domain.College) domain.College {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.ID = domain.ID(b.id())
	b.colleges[string(c.ID)] = &c
	return c
}

func (b *Backend) AddForum(f domain.Forum) domain.Forum {
	b.mu.Lock()
	defer b.mu.Unlock()
	f.ID = domain.ID(b.id())
	b.forums[string(f.ID)] = &f
	return f
}

func (b *Backend) AddVenue(v domain.Venue) domain.Venue {
	b.mu.Lock()
	defer b.mu.Unlock()
	v.ID = domain.ID(b.id())
	b.venues[string(v.ID)] = &v
	return v
}

func (b *Backend) AddEvent(e domain.Event) domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	e.ID = domain.ID(b.id())
	if e.Status == "" {
		e.Status = "upcoming"
	}
	b.events[string(e.ID)] = &e
	return e
}

// OTP returns the pending verification code of email, as if read from the mailbox.
func (b *Backend) OTP(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.otps[email]
}

// sorted returns the values of m in creation order.
func sorted[T any](m map[string]*T, keep func(*T) bool) []T {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if keep == nil || keep(v) {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		x, _ := strconv.Atoi(a)
		y, _ := strconv.Atoi(b)
		return x - y
	})
	out := make([]T, len(keys))
	for i, k := range keys {
		out[i] = *m[k]
	}
	return out
}

func (b *Backend) findByEmail(email string) *account {
	for _, a := range b.users {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func newOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		log.Error().Err(err).Msg("failed to generate otp")
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// Demo credentials seeded by Seed. Every account shares DemoPassword.
const (
	DemoPassword     = "campus-demo"
	DemoSuperAdmin   = "root@campus.test"
	DemoCollegeAdmin = "admin@campus.test"
	DemoForumHead    = "head@campus.test"
	DemoTeacher      = "teacher@campus.test"
)

// Seed fills the backend with a small college: one forum with its head, a teacher, a venue, a few
// events and two accounts awaiting approval.
func (b *Backend) Seed() error {
	college := b.AddCollege(domain.College{Name: "Campus Institute of Technology", Code: "CIT"})
	venue := b.AddVenue(domain.Venue{Name: "Main auditorium", Location: "Block A", Capacity: 300, CollegeID: college.ID})

	var errs []error
	add := func(u domain.User) domain.User {
		u, err := b.AddUser(u, DemoPassword)
		errs = append(errs, err)
		return u
	}
	add(domain.User{Name: "Root", Email: DemoSuperAdmin, Role: domain.RoleSuperAdmin})
	add(domain.User{Name: "Admin", Email: DemoCollegeAdmin, Role: domain.RoleCollegeAdmin, CollegeID: college.ID})
	head := add(domain.User{Name: "Head", Email: DemoForumHead, Role: domain.RoleForumHead, CollegeID: college.ID})
	add(domain.User{Name: "Teacher", Email: DemoTeacher, Role: domain.RoleTeacher, CollegeID: college.ID, Department: "CSE"})
	add(domain.User{Name: "Pending teacher", Email: "pending.teacher@campus.test", Role: domain.RoleTeacher, CollegeID: college.ID, Status: domain.StatusPending})
	add(domain.User{Name: "Pending head", Email: "pending.head@campus.test", Role: domain.RoleForumHead, CollegeID: college.ID, Status: domain.StatusPending})

	forum := b.AddForum(domain.Forum{Name: "Coding club", CollegeID: college.ID, HeadID: head.ID})
	b.mu.Lock()
	b.users[string(head.ID)].ForumID = forum.ID
	b.mu.Unlock()

	now := time.Now()
	day := time.Date(now.Year(), now.Month(), 5, 10, 0, 0, 0, time.Local)
	for i, name := range []string{"Hackathon", "Open mic", "Git workshop"} {
		start := day.AddDate(0, 0, i*3)
		b.AddEvent(domain.Event{
			Name:      name,
			StartTime: domain.NewTimestamp(start),
			EndTime:   domain.NewTimestamp(start.Add(2 * time.Hour)),
			ForumID:   forum.ID,
			VenueID:   venue.ID,
		})
	}
	return errors.Join(errs...)
}
