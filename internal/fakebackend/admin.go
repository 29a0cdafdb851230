package fakebackend

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sidereusnuntius/campus/internal/domain"
)

// collegeUser returns the account named by the id parameter when it belongs to the admin's college.
func (b *Backend) collegeUser(r *http.Request) (*account, bool) {
	admin, _ := GetSession(r.Context())
	a, ok := b.users[chi.URLParam(r, "id")]
	if !ok || a.CollegeID != admin.CollegeID || a.Role == domain.RoleSuperAdmin {
		return nil, false
	}
	return a, true
}

func AdminUsers(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, _ := GetSession(r.Context())
		search := r.URL.Query().Get("search")

		b.mu.Lock()
		accounts := sorted(b.users, func(a *account) bool {
			return a.CollegeID == admin.CollegeID &&
				a.ID != admin.ID &&
				a.Role != domain.RoleSuperAdmin &&
				matches(search, a.Name, a.Email, a.Department)
		})
		b.mu.Unlock()

		users := make([]domain.User, len(accounts))
		for i, a := range accounts {
			users[i] = a.User
		}
		writeJSON(w, http.StatusOK, obj{"users": users})
	}
}

func UpdateUser(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := decodeBody(r, &body); err != nil {
			errorString(w, http.StatusBadRequest, err.Error())
			return
		}
		// Roles and approval have their own endpoints.
		delete(body, "role")
		delete(body, "status")
		delete(body, "collegeId")

		b.mu.Lock()
		defer b.mu.Unlock()
		a, ok := b.collegeUser(r)
		if !ok {
			errorString(w, http.StatusNotFound, "User not found")
			return
		}
		updated := a.User
		if err := patch(&updated, body); err != nil {
			errorString(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(updated.Name) == "" {
			errorString(w, http.StatusBadRequest, "Name is required")
			return
		}
		a.User = updated
		message(w, http.StatusOK, "User updated")
	}
}

func ApproveUser(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ForumID domain.ID `json:"forumId"`
		}
		if err := decodeBody(r, &body); err != nil {
			errorString(w, http.StatusBadRequest, err.Error())
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		a, ok := b.collegeUser(r)
		if !ok {
			errorString(w, http.StatusNotFound, "User not found")
			return
		}
		if a.Status == domain.StatusApproved {
			errorString(w, http.StatusBadRequest, "User is already approved")
			return
		}

		if a.Role == domain.RoleForumHead {
			if body.ForumID == "" {
				errorString(w, http.StatusBadRequest, "A forum must be selected for a forum head")
				return
			}
			f, ok := b.forums[string(body.ForumID)]
			if !ok || f.CollegeID != a.CollegeID {
				errorString(w, http.StatusBadRequest, "Forum not found")
				return
			}
			if prev, ok := b.users[string(f.HeadID)]; ok {
				prev.ForumID = ""
			}
			f.HeadID = a.ID
			a.ForumID = f.ID
		}
		a.Status = domain.StatusApproved
		message(w, http.StatusOK, "User approved")
	}
}

func RejectUser(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		a, ok := b.collegeUser(r)
		if !ok {
			errorString(w, http.StatusNotFound, "User not found")
			return
		}
		a.Status = domain.StatusRejected
		message(w, http.StatusOK, "User rejected")
	}
}

func DeleteUser(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, _ := GetSession(r.Context())

		b.mu.Lock()
		defer b.mu.Unlock()
		a, ok := b.collegeUser(r)
		if !ok {
			errorString(w, http.StatusNotFound, "User not found")
			return
		}
		if a.ID == admin.ID {
			errorString(w, http.StatusBadRequest, "You cannot delete your own account")
			return
		}
		for _, f := range b.forums {
			if f.HeadID == a.ID {
				f.HeadID = ""
			}
		}
		delete(b.users, string(a.ID))
		message(w, http.StatusOK, "User deleted")
	}
}

func (b *Backend) collegeForum(r *http.Request) (*domain.Forum, bool) {
	admin, _ := GetSession(r.Context())
	f, ok := b.forums[chi.URLParam(r, "id")]
	if !ok || f.CollegeID != admin.CollegeID {
		return nil, false
	}
	return f, true
}

func AdminForums(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, _ := GetSession(r.Context())
		search := r.URL.Query().Get("search")

		b.mu.Lock()
		forums := sorted(b.forums, func(f *domain.Forum) bool {
			return f.CollegeID == admin.CollegeID && matches(search, f.Name, f.Description)
		})
		b.mu.Unlock()

		writeJSON(w, http.StatusOK, obj{"data": obj{"forums": forums}})
	}
}

func CreateForum(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, _ := GetSession(r.Context())
		var in domain.ForumInput
		if err := decodeBody(r, &in); err != nil {
			errorString(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(in.Name) == "" {
			errorString(w, http.StatusBadRequest, "Forum name is required")
			return
		}

		b.mu.Lock()
		for _, f := range b.forums {
			if f.CollegeID == admin.CollegeID && strings.EqualFold(f.Name, in.Name) {
				b.mu.Unlock()
				errorString(w, http.StatusConflict, "A forum with this name already exists")
				return
			}
		}
		b.mu.Unlock()

		f := b.AddForum(domain.Forum{
			Name:        in.Name,
			Description: in.Description,
			CollegeID:   admin.CollegeID,
			HeadID:      in.HeadID,
		})
		writeJSON(w, http.StatusCreated, obj{"forum": f})
	}
}

func UpdateForum(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := decodeBody(r, &body); err != nil {
			errorString(w, http.StatusBadRequest, err.Error())
			return
		}
		delete(body, "collegeId")

		b.mu.Lock()
		defer b.mu.Unlock()
		f, ok := b.collegeForum(r)
		if !ok {
			errorString(w, http.StatusNotFound, "Forum not found")
			return
		}
		updated := *f
		if err := patch(&updated, body); err != nil {
			errorString(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(updated.Name) == "" {
			errorString(w, http.StatusBadRequest, "Forum name is required")
			return
		}
		*f = updated
		message(w, http.StatusOK, "Forum updated")
	}
}

func DeleteForum(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		f, ok := b.collegeForum(r)
		if !ok {
			errorString(w, http.StatusNotFound, "Forum not found")
			return
		}
		for _, e := range b.events {
			if e.ForumID == f.ID {
				errorString(w, http.StatusConflict, "Forum still has events")
				return
			}
		}
		delete(b.forums, string(f.ID))
		message(w, http.StatusOK, "Forum deleted")
	}
}

func (b *Backend) collegeVenue(r *http.Request) (*domain.Venue, bool) {
	admin, _ := GetSession(r.Context())
	v, ok := b.venues[chi.URLParam(r, "id")]
	if !ok || v.CollegeID != admin.CollegeID {
		return nil, false
	}
	return v, true
}

func AdminVenues(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, _ := GetSession(r.Context())
		search := r.URL.Query().Get("search")

		b.mu.Lock()
		venues := sorted(b.venues, func(v *domain.Venue) bool {
			return v.CollegeID == admin.CollegeID && matches(search, v.Name, v.Location)
		})
		b.mu.Unlock()

		writeJSON(w, http.StatusOK, obj{"data": venues})
	}
}

func CreateVenue(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, _ := GetSession(r.Context())
		var in domain.VenueInput
		if err := decodeBody(r, &in); err != nil {
			errorString(w, http.StatusBadRequest, err.Error())
			return
		}
		switch {
		case strings.TrimSpace(in.Name) == "":
			errorString(w, http.StatusBadRequest, "Venue name is required")
			return
		case in.Capacity < 0:
			errorString(w, http.StatusBadRequest, "Capacity cannot be negative")
			return
		}

		v := b.AddVenue(domain.Venue{
			Name:      in.Name,
			Location:  in.Location,
			Capacity:  in.Capacity,
			CollegeID: admin.CollegeID,
		})
		writeJSON(w, http.StatusCreated, obj{"data": v})
	}
}

func UpdateVenue(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := decodeBody(r, &body); err != nil {
			errorString(w, http.StatusBadRequest, err.Error())
			return
		}
		delete(body, "collegeId")

		b.mu.Lock()
		defer b.mu.Unlock()
		v, ok := b.collegeVenue(r)
		if !ok {
			errorString(w, http.StatusNotFound, "Venue not found")
			return
		}
		updated := *v
		if err := patch(&updated, body); err != nil {
			errorString(w, http.StatusBadRequest, err.Error())
			return
		}
		*v = updated
		message(w, http.StatusOK, "Venue updated")
	}
}

func DeleteVenue(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		v, ok := b.collegeVenue(r)
		if !ok {
			errorString(w, http.StatusNotFound, "Venue not found")
			return
		}
		delete(b.venues, string(v.ID))
		message(w, http.StatusOK, "Venue deleted")
	}
}
