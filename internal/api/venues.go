package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
)

// ForumVenues lists the venues a forum head may book.
func (a *API) ForumVenues(ctx context.Context) (venues []domain.Venue, err error) {
	err = a.call(ctx, client.Request{Path: "/forums/venues"}, "venues", &venues)
	return
}

func (a *API) AdminVenues(ctx context.Context, search string) (venues []domain.Venue, err error) {
	err = a.call(ctx, client.Request{Path: "/admin/venues", Query: searchQuery(search)}, "venues", &venues)
	return
}

func (a *API) CreateVenue(ctx context.Context, in domain.VenueInput) (v domain.Venue, err error) {
	err = a.call(ctx, client.Request{Method: http.MethodPost, Path: "/admin/venues", Body: in}, "venue", &v)
	return
}

func (a *API) UpdateVenue(ctx context.Context, id string, patch map[string]any) error {
	return a.call(ctx, client.Request{Method: http.MethodPut, Path: "/admin/venues/" + url.PathEscape(id), Body: patch}, "", nil)
}

func (a *API) DeleteVenue(ctx context.Context, id string) error {
	return a.call(ctx, client.Request{Method: http.MethodDelete, Path: "/admin/venues/" + url.PathEscape(id)}, "", nil)
}
