package fakebackend

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sidereusnuntius/campus/internal/domain"
)

func (b *Backend) Mount(r chi.Router) {
	authenticated := AuthenticatedMiddleware(b)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", Login(b))
		r.Post("/register", Register(b))
		r.Post("/verify-email", VerifyEmail(b))
		r.With(authenticated).Get("/me", Me(b))
	})

	r.Route("/public", func(r chi.Router) {
		r.Get("/colleges", PublicColleges(b))
		r.Get("/forums/{collegeId}", PublicForums(b))
		r.Get("/events", PublicEvents(b))
		r.Get("/events/{id}", PublicEvent(b))
	})

	r.Route("/forums", func(r chi.Router) {
		r.Use(authenticated, RoleMiddleware(domain.RoleForumHead))
		r.Get("/events", ListEvents(b))
		r.Post("/events", CreateEvent(b))
		r.Get("/events/yearly-activity", YearlyActivity(b))
		r.Get("/events/by-month", EventsByMonth(b))
		r.Put("/events/{id}", UpdateEvent(b))
		r.Delete("/events/{id}", DeleteEvent(b))
		r.Post("/events/{id}/staff", AssignStaff(b))
		r.Delete("/events/{id}/staff/{userId}", RemoveStaff(b))
		r.Get("/venues", ForumVenues(b))
		r.Get("/users/teachers", SearchTeachers(b))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticated, RoleMiddleware(domain.RoleCollegeAdmin))
		r.Get("/users", AdminUsers(b))
		r.Put("/users/{id}", UpdateUser(b))
		r.Put("/users/{id}/approve", ApproveUser(b))
		r.Put("/users/{id}/reject", RejectUser(b))
		r.Delete("/users/{id}", DeleteUser(b))

		r.Get("/forums", AdminForums(b))
		r.Post("/forums", CreateForum(b))
		r.Put("/forums/{id}", UpdateForum(b))
		r.Delete("/forums/{id}", DeleteForum(b))

		r.Get("/venues", AdminVenues(b))
		r.Post("/venues", CreateVenue(b))
		r.Put("/venues/{id}", UpdateVenue(b))
		r.Delete("/venues/{id}", DeleteVenue(b))
	})

	r.Route("/sa", func(r chi.Router) {
		r.Use(authenticated, RoleMiddleware(domain.RoleSuperAdmin))
		r.Get("/colleges", Colleges(b))
		r.Post("/colleges", CreateCollege(b))
		r.Put("/colleges/{id}", UpdateCollege(b))
		r.Delete("/colleges/{id}", DeleteCollege(b))
	})
}
