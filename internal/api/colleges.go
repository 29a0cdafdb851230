package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
)

func (a *API) Colleges(ctx context.Context, search string) (colleges []domain.College, err error) {
	err = a.call(ctx, client.Request{Path: "/sa/colleges", Query: searchQuery(search)}, "colleges", &colleges)
	return
}

func (a *API) CreateCollege(ctx context.Context, in domain.CollegeInput) (c domain.College, err error) {
	err = a.call(ctx, client.Request{Method: http.MethodPost, Path: "/sa/colleges", Body: in}, "college", &c)
	return
}

func (a *API) UpdateCollege(ctx context.Context, id string, patch map[string]any) error {
	return a.call(ctx, client.Request{Method: http.MethodPut, Path: "/sa/colleges/" + url.PathEscape(id), Body: patch}, "", nil)
}

func (a *API) DeleteCollege(ctx context.Context, id string) error {
	return a.call(ctx, client.Request{Method: http.MethodDelete, Path: "/sa/colleges/" + url.PathEscape(id)}, "", nil)
}

func (a *API) PublicColleges(ctx context.Context) (colleges []domain.College, err error) {
	err = a.call(ctx, client.Request{Path: "/public/colleges", Public: true}, "colleges", &colleges)
	return
}
