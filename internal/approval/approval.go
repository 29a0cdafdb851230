// Package approval decides how an admin may act on a pending account and carries the decision out.
//
// Teachers are approved directly. Forum head candidates can only be approved together with the
// forum they will lead. Other roles never wait for approval.
package approval

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/store"
)

var (
	ErrUnknownUser   = errors.New("user is not in the list")
	ErrNotPending    = errors.New("user is not pending approval")
	ErrNotApprovable = errors.New("role does not require approval")
	ErrForumRequired = errors.New("a forum must be assigned to approve a forum head")
)

type Action uint8

const (
	// ActionNone means the account cannot be approved or rejected.
	ActionNone Action = iota
	ActionApprove
	// ActionAssignForum means approval needs a forum picked first.
	ActionAssignForum
)

func (a Action) String() string {
	switch a {
	case ActionApprove:
		return "approve"
	case ActionAssignForum:
		return "assign forum"
	default:
		return "none"
	}
}

func ActionFor(u domain.User) Action {
	if u.Status != domain.StatusPending {
		return ActionNone
	}
	switch u.Role {
	case domain.RoleTeacher:
		return ActionApprove
	case domain.RoleForumHead:
		return ActionAssignForum
	default:
		return ActionNone
	}
}

// Users is the part of the backend that approves and rejects accounts.
type Users interface {
	ApproveUser(ctx context.Context, id, forumId string) error
	RejectUser(ctx context.Context, id string) error
}

type Approver struct {
	users Users
	store *store.Store[domain.User, domain.Registration]
}

func New(users Users, s *store.Store[domain.User, domain.Registration]) *Approver {
	return &Approver{users: users, store: s}
}

// Approve approves the pending user with the given id. forumId is required for forum heads and
// ignored for everyone else.
func (a *Approver) Approve(ctx context.Context, id, forumId string) error {
	u, ok := a.store.Find(id)
	if !ok {
		return client.Validation(ErrUnknownUser)
	}

	patch := store.Patch{"status": domain.StatusApproved}
	switch ActionFor(u) {
	case ActionApprove:
		forumId = ""
	case ActionAssignForum:
		if forumId == "" {
			return client.Validation(ErrForumRequired)
		}
		patch["forumId"] = forumId
	default:
		return client.Validation(notApprovable(u))
	}

	log.Debug().Str("user", id).Str("role", string(u.Role)).Msg("approving user")
	return a.store.Mutate(ctx, id, patch, func(ctx context.Context) error {
		return a.users.ApproveUser(ctx, id, forumId)
	})
}

func (a *Approver) Reject(ctx context.Context, id string) error {
	u, ok := a.store.Find(id)
	if !ok {
		return client.Validation(ErrUnknownUser)
	}
	if ActionFor(u) == ActionNone {
		return client.Validation(notApprovable(u))
	}

	return a.store.Mutate(ctx, id, store.Patch{"status": domain.StatusRejected}, func(ctx context.Context) error {
		return a.users.RejectUser(ctx, id)
	})
}

// Pending returns the cached users awaiting a decision, in list order.
func (a *Approver) Pending() []domain.User {
	var out []domain.User
	for _, u := range a.store.Items() {
		if ActionFor(u) != ActionNone {
			out = append(out, u)
		}
	}
	return out
}

func notApprovable(u domain.User) error {
	if u.Status != domain.StatusPending {
		return ErrNotPending
	}
	return ErrNotApprovable
}
