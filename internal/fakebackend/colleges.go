package fakebackend

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/domain"
)

func Colleges(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		search := r.URL.Query().Get("search")
		b.mu.Lock()
		colleges := sorted(b.colleges, func(c *domain.College) bool {
			return matches(search, c.Name, c.Code, c.Address)
		})
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, obj{"success": true, "data": colleges})
	}
}

// CreateCollege also creates the college's admin when an admin email is given. The admin's password
// is DemoPassword.
func CreateCollege(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.CollegeInput
		if err := decodeBody(r, &in); err != nil {
			failure(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(in.Name) == "" {
			failure(w, http.StatusBadRequest, "College name is required")
			return
		}

		c := b.AddCollege(domain.College{Name: in.Name, Code: in.Code, Address: in.Address})
		if in.AdminEmail != "" {
			admin, err := b.AddUser(domain.User{
				Name:      in.AdminName,
				Email:     in.AdminEmail,
				Role:      domain.RoleCollegeAdmin,
				CollegeID: c.ID,
			}, DemoPassword)
			if err != nil {
				b.mu.Lock()
				delete(b.colleges, string(c.ID))
				b.mu.Unlock()
				failure(w, http.StatusConflict, "Admin email already registered")
				return
			}
			log.Info().Str("college", c.Name).Str("admin", admin.Email).Msg("college admin created")
		}
		writeJSON(w, http.StatusCreated, obj{"success": true, "data": c})
	}
}

func UpdateCollege(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := decodeBody(r, &body); err != nil {
			failure(w, http.StatusBadRequest, err.Error())
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		c, ok := b.colleges[chi.URLParam(r, "id")]
		if !ok {
			failure(w, http.StatusNotFound, "College not found")
			return
		}
		updated := *c
		if err := patch(&updated, body); err != nil {
			failure(w, http.StatusBadRequest, err.Error())
			return
		}
		*c = updated
		writeJSON(w, http.StatusOK, obj{"success": true, "data": updated})
	}
}

func DeleteCollege(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id := chi.URLParam(r, "id")
		if _, ok := b.colleges[id]; !ok {
			failure(w, http.StatusNotFound, "College not found")
			return
		}
		for _, a := range b.users {
			if string(a.CollegeID) == id {
				failure(w, http.StatusConflict, "College still has users")
				return
			}
		}
		delete(b.colleges, id)
		writeJSON(w, http.StatusOK, obj{"success": true, "message": "College deleted"})
	}
}

func PublicColleges(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		colleges := sorted(b.colleges, nil)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, colleges)
	}
}

func PublicForums(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		college := domain.ID(chi.URLParam(r, "collegeId"))
		b.mu.Lock()
		forums := sorted(b.forums, func(f *domain.Forum) bool { return f.CollegeID == college })
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, obj{"forums": forums})
	}
}

func PublicEvents(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		search := r.URL.Query().Get("search")
		b.mu.Lock()
		events := sorted(b.events, func(e *domain.Event) bool {
			return matches(search, e.Name, e.Description)
		})
		b.mu.Unlock()
		// Staff assignments are not public.
		for i := range events {
			events[i].Staff = nil
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func PublicEvent(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		e, ok := b.events[chi.URLParam(r, "id")]
		var event domain.Event
		if ok {
			event = *e
		}
		b.mu.Unlock()
		if !ok {
			message(w, http.StatusNotFound, "Event not found")
			return
		}
		event.Staff = nil
		writeJSON(w, http.StatusOK, obj{"event": event})
	}
}
