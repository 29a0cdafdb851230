package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
)

func (a *API) AdminForums(ctx context.Context, search string) (forums []domain.Forum, err error) {
	err = a.call(ctx, client.Request{Path: "/admin/forums", Query: searchQuery(search)}, "forums", &forums)
	return
}

func (a *API) CreateForum(ctx context.Context, in domain.ForumInput) (f domain.Forum, err error) {
	err = a.call(ctx, client.Request{Method: http.MethodPost, Path: "/admin/forums", Body: in}, "forum", &f)
	return
}

func (a *API) UpdateForum(ctx context.Context, id string, patch map[string]any) error {
	return a.call(ctx, client.Request{Method: http.MethodPut, Path: "/admin/forums/" + url.PathEscape(id), Body: patch}, "", nil)
}

func (a *API) DeleteForum(ctx context.Context, id string) error {
	return a.call(ctx, client.Request{Method: http.MethodDelete, Path: "/admin/forums/" + url.PathEscape(id)}, "", nil)
}

// PublicForums lists a college's forums for the sign up form.
func (a *API) PublicForums(ctx context.Context, collegeId string) (forums []domain.Forum, err error) {
	err = a.call(ctx, client.Request{Path: "/public/forums/" + url.PathEscape(collegeId), Public: true}, "forums", &forums)
	return
}
