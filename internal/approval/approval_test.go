package approval

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/mocks"
	"github.com/sidereusnuntius/campus/internal/store"
	"go.uber.org/mock/gomock"
)

var ctx = context.Background()

type call struct {
	Op, ID, ForumID string
}

type fakeUsers struct {
	calls []call
	err   error
}

func (f *fakeUsers) ApproveUser(ctx context.Context, id, forumId string) error {
	f.calls = append(f.calls, call{"approve", id, forumId})
	return f.err
}

func (f *fakeUsers) RejectUser(ctx context.Context, id string) error {
	f.calls = append(f.calls, call{"reject", id, ""})
	return f.err
}

var users = []domain.User{
	{ID: "t", Name: "Teacher", Role: domain.RoleTeacher, Status: domain.StatusPending},
	{ID: "h", Name: "Head", Role: domain.RoleForumHead, Status: domain.StatusPending},
	{ID: "s", Name: "Student", Role: domain.RoleStudent, Status: domain.StatusPending},
	{ID: "a", Name: "Approved", Role: domain.RoleTeacher, Status: domain.StatusApproved},
}

func setup(t *testing.T) (*Approver, *fakeUsers, *store.Store[domain.User, domain.Registration]) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockResource[domain.User, domain.Registration](ctrl)
	res.EXPECT().List(gomock.Any(), "").Return(slices.Clone(users), nil)

	s := store.New[domain.User, domain.Registration](res, store.NotifierFunc(func(store.Notice) {}), store.Options{Noun: "user"})
	if err := s.List(ctx, store.ListOptions{}); err != nil {
		t.Fatal(err)
	}
	f := &fakeUsers{}
	return New(f, s), f, s
}

func TestActionFor(t *testing.T) {
	expected := map[domain.ID]Action{
		"t": ActionApprove,
		"h": ActionAssignForum,
		"s": ActionNone,
		"a": ActionNone,
	}
	for _, u := range users {
		if got := ActionFor(u); got != expected[u.ID] {
			t.Errorf("%s: expected %s, got %s", u.Name, expected[u.ID], got)
		}
	}
}

func TestApprove(t *testing.T) {
	cases := []struct {
		name     string
		id       string
		forumId  string
		err      error
		expected []call
	}{
		{"teacher", "t", "", nil, []call{{"approve", "t", ""}}},
		{"teacher ignores forum", "t", "f1", nil, []call{{"approve", "t", ""}}},
		{"forum head with forum", "h", "f1", nil, []call{{"approve", "h", "f1"}}},
		{"forum head without forum", "h", "", ErrForumRequired, nil},
		{"student", "s", "", ErrNotApprovable, nil},
		{"already approved", "a", "", ErrNotPending, nil},
		{"unknown", "x", "", ErrUnknownUser, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, f, s := setup(t)
			err := a.Approve(ctx, c.id, c.forumId)
			if !errors.Is(err, c.err) {
				t.Fatalf("expected %v, got %v", c.err, err)
			}
			if c.err != nil && !errors.Is(err, client.ErrValidation) {
				t.Errorf("expected a validation error, got %v", err)
			}
			if diff := cmp.Diff(c.expected, f.calls); diff != "" {
				t.Error(diff)
			}
			if c.err != nil {
				return
			}

			u, _ := s.Find(c.id)
			if u.Status != domain.StatusApproved {
				t.Errorf("cached status is %s", u.Status)
			}
			if string(u.ForumID) != c.expected[0].ForumID {
				t.Errorf("cached forum is %s", u.ForumID)
			}
		})
	}
}

func TestApproveFailureKeepsPending(t *testing.T) {
	a, f, s := setup(t)
	f.err = &client.Error{Kind: client.ErrRemote, Status: 500}

	if err := a.Approve(ctx, "t", ""); !errors.Is(err, client.ErrRemote) {
		t.Fatalf("expected a remote error, got %v", err)
	}
	u, _ := s.Find("t")
	if u.Status != domain.StatusPending {
		t.Errorf("cached status changed to %s", u.Status)
	}
}

func TestReject(t *testing.T) {
	a, f, s := setup(t)
	if err := a.Reject(ctx, "h"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]call{{"reject", "h", ""}}, f.calls); diff != "" {
		t.Error(diff)
	}
	u, _ := s.Find("h")
	if u.Status != domain.StatusRejected {
		t.Errorf("cached status is %s", u.Status)
	}

	if err := a.Reject(ctx, "h"); !errors.Is(err, ErrNotPending) {
		t.Errorf("expected %v, got %v", ErrNotPending, err)
	}
}

func TestPending(t *testing.T) {
	a, _, _ := setup(t)
	var ids []domain.ID
	for _, u := range a.Pending() {
		ids = append(ids, u.ID)
	}
	if diff := cmp.Diff([]domain.ID{"t", "h"}, ids); diff != "" {
		t.Error(diff)
	}
}
