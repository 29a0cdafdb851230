// Package commands implements the subcommands of the campus command line client.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/state"
	"github.com/sidereusnuntius/campus/internal/store"
	"github.com/spf13/pflag"
)

var (
	ErrUsage            = errors.New("invalid usage")
	ErrNotAuthenticated = errors.New("not logged in; run campus login first")
	ErrForbidden        = errors.New("command not available for your role")
)

// Env is what a command runs against. State is nil for standalone commands.
type Env struct {
	State *state.State
	Out   io.Writer
	// Password reads a secret without echoing it.
	Password func(prompt string) (string, error)
}

type Command struct {
	Name  string
	Args  string
	Short string
	// Standalone commands run without opening the local state.
	Standalone bool
	Run        func(ctx context.Context, env *Env, args []string) error
}

func All() []Command {
	return []Command{
		{Name: "login", Args: "<email>", Short: "log in and remember the session", Run: Login},
		{Name: "register", Args: "--name --email --role --college [--department]", Short: "create an account", Run: Register},
		{Name: "verify", Args: "<email> <code>", Short: "confirm an email with the code sent to it", Run: Verify},
		{Name: "logout", Short: "forget the session", Run: Logout},
		{Name: "whoami", Short: "show the logged in user", Run: WhoAmI},
		{Name: "colleges", Short: "list the colleges open for sign up", Run: PublicColleges},
		{Name: "events", Args: "[--search text] [--public]", Short: "list events", Run: Events},
		{Name: "create-event", Args: "--name --start --end [--venue] [--description]", Short: "create an event for your forum", Run: CreateEvent},
		{Name: "delete-event", Args: "<id>", Short: "delete one of your forum's events", Run: DeleteEvent},
		{Name: "teachers", Args: "[--search text]", Short: "search teachers to request as staff", Run: Teachers},
		{Name: "assign-staff", Args: "<event id> <user id> [--collaborator]", Short: "request a teacher for an event", Run: AssignStaff},
		{Name: "calendar", Args: "[--month YYYY-MM] [--ics file] [--public]", Short: "show a month of events", Run: Calendar},
		{Name: "activity", Args: "[--year YYYY]", Short: "show the yearly activity of your forum", Run: Activity},
		{Name: "list", Args: "<users|forums|venues|colleges> [--search text]", Short: "list administered entities", Run: List},
		{Name: "pending", Short: "list accounts awaiting approval", Run: Pending},
		{Name: "approve", Args: "<user id> [--forum id]", Short: "approve a pending account", Run: Approve},
		{Name: "reject", Args: "<user id>", Short: "reject a pending account", Run: Reject},
		{Name: "theme", Args: "[light|dark|system]", Short: "show or set the theme", Run: Theme},
		{Name: "watch", Short: "keep the caches fresh and print what changes", Run: Watch},
		{Name: "fake-backend", Args: "[--addr host:port]", Short: "serve an in-memory backend with demo data", Standalone: true, Run: FakeBackend},
	}
}

func Find(name string) (Command, bool) {
	i := slices.IndexFunc(All(), func(c Command) bool { return c.Name == name })
	if i < 0 {
		return Command{}, false
	}
	return All()[i], true
}

func Usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: campus [global flags] <command> [args]\n\nCommands:\n")
	for _, c := range All() {
		fmt.Fprintf(w, "  %-13s %s\n", c.Name, c.Short)
	}
}

func flags(name string) *pflag.FlagSet {
	return pflag.NewFlagSet(name, pflag.ContinueOnError)
}

func usage(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, a...))
}

// requireRole fails unless the session belongs to one of roles. No roles means any logged in user.
func requireRole(env *Env, roles ...domain.Role) (domain.User, error) {
	sess := env.State.Session.Current()
	if !sess.IsAuthenticated {
		return domain.User{}, ErrNotAuthenticated
	}
	if len(roles) > 0 && !slices.Contains(roles, sess.User.Role) {
		return sess.User, ErrForbidden
	}
	return sess.User, nil
}

// Describe turns err into the line shown to the user.
func Describe(err error) string {
	switch {
	case errors.Is(err, client.ErrNetwork):
		if client.IsTimeout(err) {
			return "The server took too long to answer. Try again."
		}
		return "Cannot reach the server. Check your connection."
	case errors.Is(err, client.ErrSessionExpired):
		return "Your session has expired. Log in again."
	}
	return client.Message(err, err.Error())
}

// Notifier prints store notices the way the app shows its alerts.
type Notifier struct {
	Out io.Writer
	Err io.Writer
}

func (n Notifier) Notify(notice store.Notice) {
	if notice.Level == store.Failure {
		fmt.Fprintln(n.Err, "error:", notice.Message)
		return
	}
	fmt.Fprintln(n.Out, notice.Message)
}

var _ store.Notifier = Notifier{}

func join(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
