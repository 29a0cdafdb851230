package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
)

// SearchTeachers lists the teachers of the forum head's college that can be requested as staff.
func (a *API) SearchTeachers(ctx context.Context, search string) (users []domain.User, err error) {
	err = a.call(ctx, client.Request{Path: "/forums/users/teachers", Query: searchQuery(search)}, "users", &users)
	return
}

func (a *API) AdminUsers(ctx context.Context, search string) (users []domain.User, err error) {
	err = a.call(ctx, client.Request{Path: "/admin/users", Query: searchQuery(search)}, "users", &users)
	return
}

func (a *API) UpdateUser(ctx context.Context, id string, patch map[string]any) error {
	return a.call(ctx, client.Request{Method: http.MethodPut, Path: "/admin/users/" + url.PathEscape(id), Body: patch}, "", nil)
}

// ApproveUser approves a pending account. forumId is only sent for forum heads.
func (a *API) ApproveUser(ctx context.Context, id, forumId string) error {
	var body any
	if forumId != "" {
		body = map[string]string{"forumId": forumId}
	}
	return a.call(ctx, client.Request{
		Method: http.MethodPut,
		Path:   "/admin/users/" + url.PathEscape(id) + "/approve",
		Body:   body,
	}, "", nil)
}

func (a *API) RejectUser(ctx context.Context, id string) error {
	return a.call(ctx, client.Request{Method: http.MethodPut, Path: "/admin/users/" + url.PathEscape(id) + "/reject"}, "", nil)
}

func (a *API) DeleteUser(ctx context.Context, id string) error {
	return a.call(ctx, client.Request{Method: http.MethodDelete, Path: "/admin/users/" + url.PathEscape(id)}, "", nil)
}
