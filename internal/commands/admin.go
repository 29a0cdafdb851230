package commands

import (
	"context"
	"fmt"

	"github.com/sidereusnuntius/campus/internal/approval"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/store"
)

func List(ctx context.Context, env *Env, args []string) error {
	fs := flags("list")
	search := fs.String("search", "", "only entries matching text")
	if err := fs.Parse(args); err != nil {
		return usage("%s", err)
	}
	if fs.NArg() != 1 {
		return usage("list <users|forums|venues|colleges>")
	}
	opts := store.ListOptions{Query: *search}
	st := env.State
	w := table(env.Out)

	switch kind := fs.Arg(0); kind {
	case "users":
		if _, err := requireRole(env, domain.RoleCollegeAdmin); err != nil {
			return err
		}
		if err := st.Users.List(ctx, opts); err != nil {
			return err
		}
		for _, u := range st.Users.Items() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.Status)
		}
	case "forums":
		if _, err := requireRole(env, domain.RoleCollegeAdmin); err != nil {
			return err
		}
		if err := st.Forums.List(ctx, opts); err != nil {
			return err
		}
		for _, f := range st.Forums.Items() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.ID, f.Name, f.Description)
		}
	case "venues":
		if _, err := requireRole(env, domain.RoleCollegeAdmin); err != nil {
			return err
		}
		if err := st.Venues.List(ctx, opts); err != nil {
			return err
		}
		for _, v := range st.Venues.Items() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", v.ID, v.Name, v.Location, v.Capacity)
		}
	case "colleges":
		if _, err := requireRole(env, domain.RoleSuperAdmin); err != nil {
			return err
		}
		if err := st.Colleges.List(ctx, opts); err != nil {
			return err
		}
		for _, c := range st.Colleges.Items() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, join(c.Code, c.Address))
		}
	default:
		return usage("unknown list %q", kind)
	}
	return w.Flush()
}

// loadUsers fills the user cache the approval actions work on.
func loadUsers(ctx context.Context, env *Env) error {
	if _, err := requireRole(env, domain.RoleCollegeAdmin); err != nil {
		return err
	}
	return env.State.Users.List(ctx, store.ListOptions{})
}

func Pending(ctx context.Context, env *Env, args []string) error {
	if err := loadUsers(ctx, env); err != nil {
		return err
	}
	pending := env.State.Approver.Pending()
	if len(pending) == 0 {
		fmt.Fprintln(env.Out, "No accounts awaiting approval")
		return nil
	}
	w := table(env.Out)
	for _, u := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, approval.ActionFor(u))
	}
	return w.Flush()
}

func Approve(ctx context.Context, env *Env, args []string) error {
	fs := flags("approve")
	forum := fs.String("forum", "", "forum the new head will lead")
	if err := fs.Parse(args); err != nil {
		return usage("%s", err)
	}
	if fs.NArg() != 1 {
		return usage("approve <user id> [--forum id]")
	}
	if err := loadUsers(ctx, env); err != nil {
		return err
	}
	return env.State.Approver.Approve(ctx, fs.Arg(0), *forum)
}

func Reject(ctx context.Context, env *Env, args []string) error {
	if len(args) != 1 {
		return usage("reject <user id>")
	}
	if err := loadUsers(ctx, env); err != nil {
		return err
	}
	return env.State.Approver.Reject(ctx, args[0])
}
