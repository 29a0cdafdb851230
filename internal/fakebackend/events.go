package fakebackend

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/validate"
)

func matches(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// overlaps reports whether another event holds venue during [start, end).
func (b *Backend) overlaps(id, venue domain.ID, start, end time.Time) bool {
	if venue == "" {
		return false
	}
	for _, e := range b.events {
		if e.ID == id || e.VenueID != venue {
			continue
		}
		if start.Before(e.EndTime.Time) && e.StartTime.Before(end) {
			return true
		}
	}
	return false
}

// forumEvent looks up the event named by the id parameter, hiding events of other forums.
func (b *Backend) forumEvent(r *http.Request) (*domain.Event, bool) {
	u, _ := GetSession(r.Context())
	e, ok := b.events[chi.URLParam(r, "id")]
	if !ok || e.ForumID != u.ForumID {
		return nil, false
	}
	return e, true
}

func ListEvents(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetSession(r.Context())
		search := r.URL.Query().Get("search")

		b.mu.Lock()
		events := sorted(b.events, func(e *domain.Event) bool {
			return e.ForumID == u.ForumID && matches(search, e.Name, e.Description)
		})
		b.mu.Unlock()

		writeJSON(w, http.StatusOK, obj{"events": events})
	}
}

func CreateEvent(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetSession(r.Context())
		var in domain.EventInput
		if err := decodeBody(r, &in); err != nil {
			errorObject(w, http.StatusBadRequest, err.Error())
			return
		}
		if in.ForumID == "" {
			in.ForumID = u.ForumID
		}
		if err := validate.EventForm(in); err != nil {
			errorObject(w, http.StatusBadRequest, err.Error())
			return
		}
		if in.ForumID != u.ForumID {
			errorObject(w, http.StatusForbidden, "You can only create events for your own forum")
			return
		}

		b.mu.Lock()
		if _, ok := b.venues[string(in.VenueID)]; in.VenueID != "" && !ok {
			b.mu.Unlock()
			errorObject(w, http.StatusBadRequest, "Venue not found")
			return
		}
		if b.overlaps("", in.VenueID, in.StartTime.Time, in.EndTime.Time) {
			b.mu.Unlock()
			errorObject(w, http.StatusConflict, "Venue is already booked for this time")
			return
		}
		b.mu.Unlock()

		e := b.AddEvent(domain.Event{
			Name:        in.Name,
			Description: in.Description,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			ForumID:     in.ForumID,
			VenueID:     in.VenueID,
		})
		writeJSON(w, http.StatusCreated, obj{"message": "Event created", "event": e})
	}
}

func UpdateEvent(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := decodeBody(r, &body); err != nil {
			errorObject(w, http.StatusBadRequest, err.Error())
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		e, ok := b.forumEvent(r)
		if !ok {
			message(w, http.StatusNotFound, "Event not found")
			return
		}
		updated := *e
		if err := patch(&updated, body); err != nil {
			errorObject(w, http.StatusBadRequest, err.Error())
			return
		}
		updated.ForumID = e.ForumID
		if !updated.EndTime.After(updated.StartTime.Time) {
			errorObject(w, http.StatusBadRequest, "event ends before it starts")
			return
		}
		if b.overlaps(e.ID, updated.VenueID, updated.StartTime.Time, updated.EndTime.Time) {
			errorObject(w, http.StatusConflict, "Venue is already booked for this time")
			return
		}
		*e = updated
		message(w, http.StatusOK, "Event updated")
	}
}

func DeleteEvent(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		e, ok := b.forumEvent(r)
		if !ok {
			message(w, http.StatusNotFound, "Event not found")
			return
		}
		delete(b.events, string(e.ID))
		message(w, http.StatusOK, "Event deleted")
	}
}

func yearParam(r *http.Request) (int, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	return year, err == nil && year > 0
}

func YearlyActivity(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetSession(r.Context())
		year, ok := yearParam(r)
		if !ok {
			errorObject(w, http.StatusBadRequest, "Invalid year")
			return
		}

		counts := map[string]int{}
		b.mu.Lock()
		for _, e := range b.events {
			start := e.StartTime.Local()
			if e.ForumID == u.ForumID && start.Year() == year {
				counts[start.Format(time.DateOnly)]++
			}
		}
		b.mu.Unlock()

		activity := make([]domain.DayCount, 0, len(counts))
		for day := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local); day.Year() == year; day = day.AddDate(0, 0, 1) {
			if n := counts[day.Format(time.DateOnly)]; n > 0 {
				activity = append(activity, domain.DayCount{Date: day.Format(time.DateOnly), Count: n})
			}
		}
		writeJSON(w, http.StatusOK, obj{"activity": activity})
	}
}

func EventsByMonth(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetSession(r.Context())
		year, ok := yearParam(r)
		month, err := strconv.Atoi(r.URL.Query().Get("month"))
		if !ok || err != nil || month < 1 || month > 12 {
			errorObject(w, http.StatusBadRequest, "Invalid year or month")
			return
		}

		b.mu.Lock()
		events := sorted(b.events, func(e *domain.Event) bool {
			start := e.StartTime.Local()
			return e.ForumID == u.ForumID && start.Year() == year && int(start.Month()) == month
		})
		b.mu.Unlock()

		writeJSON(w, http.StatusOK, obj{"data": obj{"events": events}})
	}
}

func AssignStaff(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.AssignmentInput
		if err := decodeBody(r, &in); err != nil {
			errorObject(w, http.StatusBadRequest, err.Error())
			return
		}
		if in.Role != domain.AssignStaff && in.Role != domain.AssignCollaborator {
			errorObject(w, http.StatusBadRequest, "Invalid assignment role")
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		e, ok := b.forumEvent(r)
		if !ok {
			message(w, http.StatusNotFound, "Event not found")
			return
		}
		teacher, ok := b.users[string(in.UserID)]
		if !ok || teacher.Role != domain.RoleTeacher {
			errorObject(w, http.StatusBadRequest, "Teacher not found")
			return
		}
		for _, a := range e.Staff {
			if a.UserID == in.UserID {
				errorObject(w, http.StatusConflict, "Teacher already assigned")
				return
			}
		}

		user := teacher.User
		a := domain.Assignment{
			ID:      domain.ID(b.id()),
			EventID: e.ID,
			UserID:  in.UserID,
			Role:    in.Role,
			Status:  "pending",
			User:    &user,
		}
		e.Staff = append(e.Staff, a)
		writeJSON(w, http.StatusCreated, obj{"assignment": a})
	}
}

func RemoveStaff(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userId := domain.ID(chi.URLParam(r, "userId"))

		b.mu.Lock()
		defer b.mu.Unlock()
		e, ok := b.forumEvent(r)
		if !ok {
			message(w, http.StatusNotFound, "Event not found")
			return
		}
		for i, a := range e.Staff {
			if a.UserID == userId {
				e.Staff = slices.Concat(e.Staff[:i], e.Staff[i+1:])
				message(w, http.StatusOK, "Assignment removed")
				return
			}
		}
		message(w, http.StatusNotFound, "Assignment not found")
	}
}

func ForumVenues(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetSession(r.Context())
		b.mu.Lock()
		venues := sorted(b.venues, func(v *domain.Venue) bool { return v.CollegeID == u.CollegeID })
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, venues)
	}
}

func SearchTeachers(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetSession(r.Context())
		search := r.URL.Query().Get("search")

		b.mu.Lock()
		teachers := sorted(b.users, func(a *account) bool {
			return a.Role == domain.RoleTeacher &&
				a.Status == domain.StatusApproved &&
				a.CollegeID == u.CollegeID &&
				matches(search, a.Name, a.Email, a.Department)
		})
		b.mu.Unlock()

		users := make([]domain.User, len(teachers))
		for i, a := range teachers {
			users[i] = a.User
		}
		writeJSON(w, http.StatusOK, obj{"data": obj{"users": users}})
	}
}
