package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
)

func (a *API) ListEvents(ctx context.Context, search string) (events []domain.Event, err error) {
	err = a.call(ctx, client.Request{Path: "/forums/events", Query: searchQuery(search)}, "events", &events)
	return
}

func (a *API) CreateEvent(ctx context.Context, in domain.EventInput) (e domain.Event, err error) {
	err = a.call(ctx, client.Request{Method: http.MethodPost, Path: "/forums/events", Body: in}, "event", &e)
	return
}

func (a *API) UpdateEvent(ctx context.Context, id string, patch map[string]any) error {
	return a.call(ctx, client.Request{Method: http.MethodPut, Path: "/forums/events/" + url.PathEscape(id), Body: patch}, "", nil)
}

func (a *API) DeleteEvent(ctx context.Context, id string) error {
	return a.call(ctx, client.Request{Method: http.MethodDelete, Path: "/forums/events/" + url.PathEscape(id)}, "", nil)
}

func (a *API) YearlyActivity(ctx context.Context, year int) (days []domain.DayCount, err error) {
	err = a.call(ctx, client.Request{
		Path:  "/forums/events/yearly-activity",
		Query: url.Values{"year": {strconv.Itoa(year)}},
	}, "activity", &days)
	return
}

func (a *API) EventsByMonth(ctx context.Context, year int, month time.Month) (events []domain.Event, err error) {
	err = a.call(ctx, client.Request{
		Path: "/forums/events/by-month",
		Query: url.Values{
			"year":  {strconv.Itoa(year)},
			"month": {strconv.Itoa(int(month))},
		},
	}, "events", &events)
	return
}

func (a *API) AssignStaff(ctx context.Context, eventId string, in domain.AssignmentInput) (as domain.Assignment, err error) {
	err = a.call(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/forums/events/" + url.PathEscape(eventId) + "/staff",
		Body:   in,
	}, "assignment", &as)
	return
}

func (a *API) RemoveStaff(ctx context.Context, eventId, userId string) error {
	return a.call(ctx, client.Request{
		Method: http.MethodDelete,
		Path:   "/forums/events/" + url.PathEscape(eventId) + "/staff/" + url.PathEscape(userId),
	}, "", nil)
}

func (a *API) PublicEvents(ctx context.Context, search string) (events []domain.Event, err error) {
	err = a.call(ctx, client.Request{Path: "/public/events", Query: searchQuery(search), Public: true}, "events", &events)
	return
}

func (a *API) PublicEvent(ctx context.Context, id string) (e domain.Event, err error) {
	err = a.call(ctx, client.Request{Path: "/public/events/" + url.PathEscape(id), Public: true}, "event", &e)
	return
}

func searchQuery(search string) url.Values {
	if search == "" {
		return nil
	}
	return url.Values{"search": {search}}
}
