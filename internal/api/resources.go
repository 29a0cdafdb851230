package api

import (
	"context"

	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/store"
)

// The adapters below let entity stores drive the endpoints. Each one is a thin view over API.

type EventResource struct{ *API }

func (r EventResource) List(ctx context.Context, query string) ([]domain.Event, error) {
	return r.ListEvents(ctx, query)
}

func (r EventResource) Create(ctx context.Context, in domain.EventInput) (domain.Event, error) {
	return r.CreateEvent(ctx, in)
}

func (r EventResource) Update(ctx context.Context, id string, patch store.Patch) error {
	return r.UpdateEvent(ctx, id, patch)
}

func (r EventResource) Delete(ctx context.Context, id string) error {
	return r.DeleteEvent(ctx, id)
}

// VenueResource manages venues from the college admin panel.
type VenueResource struct{ *API }

func (r VenueResource) List(ctx context.Context, query string) ([]domain.Venue, error) {
	return r.AdminVenues(ctx, query)
}

func (r VenueResource) Create(ctx context.Context, in domain.VenueInput) (domain.Venue, error) {
	return r.CreateVenue(ctx, in)
}

func (r VenueResource) Update(ctx context.Context, id string, patch store.Patch) error {
	return r.UpdateVenue(ctx, id, patch)
}

func (r VenueResource) Delete(ctx context.Context, id string) error {
	return r.DeleteVenue(ctx, id)
}

type ForumResource struct{ *API }

func (r ForumResource) List(ctx context.Context, query string) ([]domain.Forum, error) {
	return r.AdminForums(ctx, query)
}

func (r ForumResource) Create(ctx context.Context, in domain.ForumInput) (domain.Forum, error) {
	return r.CreateForum(ctx, in)
}

func (r ForumResource) Update(ctx context.Context, id string, patch store.Patch) error {
	return r.UpdateForum(ctx, id, patch)
}

func (r ForumResource) Delete(ctx context.Context, id string) error {
	return r.DeleteForum(ctx, id)
}

type CollegeResource struct{ *API }

func (r CollegeResource) List(ctx context.Context, query string) ([]domain.College, error) {
	return r.Colleges(ctx, query)
}

func (r CollegeResource) Create(ctx context.Context, in domain.CollegeInput) (domain.College, error) {
	return r.CreateCollege(ctx, in)
}

func (r CollegeResource) Update(ctx context.Context, id string, patch store.Patch) error {
	return r.UpdateCollege(ctx, id, patch)
}

func (r CollegeResource) Delete(ctx context.Context, id string) error {
	return r.DeleteCollege(ctx, id)
}

// UserResource backs the admin user list. Accounts are created by registering, never by an admin.
type UserResource struct{ *API }

func (r UserResource) List(ctx context.Context, query string) ([]domain.User, error) {
	return r.AdminUsers(ctx, query)
}

func (r UserResource) Create(ctx context.Context, in domain.Registration) (domain.User, error) {
	return domain.User{}, ErrUnsupported
}

func (r UserResource) Update(ctx context.Context, id string, patch store.Patch) error {
	return r.UpdateUser(ctx, id, patch)
}

func (r UserResource) Delete(ctx context.Context, id string) error {
	return r.DeleteUser(ctx, id)
}

var (
	_ store.Resource[domain.Event, domain.EventInput]     = EventResource{}
	_ store.Resource[domain.Venue, domain.VenueInput]     = VenueResource{}
	_ store.Resource[domain.Forum, domain.ForumInput]     = ForumResource{}
	_ store.Resource[domain.College, domain.CollegeInput] = CollegeResource{}
	_ store.Resource[domain.User, domain.Registration]    = UserResource{}
)
