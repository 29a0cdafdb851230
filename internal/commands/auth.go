package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sidereusnuntius/campus/internal/domain"
	"golang.org/x/term"
)

// ReadPassword prompts on stderr and reads a line from the terminal without echo. When stdin is not
// a terminal the line is read as is.
func ReadPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		return strings.TrimRight(line, "\r\n"), err
	}
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	return string(password), err
}

func Login(ctx context.Context, env *Env, args []string) error {
	if len(args) != 1 {
		return usage("login <email>")
	}
	password, err := env.Password("Password: ")
	if err != nil {
		return err
	}
	if err = env.State.Session.Login(ctx, args[0], password); err != nil {
		return err
	}
	u := env.State.Session.Current().User
	fmt.Fprintf(env.Out, "Logged in as %s (%s)\n", u.Name, u.Role)
	return nil
}

func Register(ctx context.Context, env *Env, args []string) error {
	fs := flags("register")
	var r domain.Registration
	var role, college, forum string
	fs.StringVar(&r.Name, "name", "", "full name")
	fs.StringVar(&r.Email, "email", "", "email address")
	fs.StringVar(&role, "role", string(domain.RoleStudent), "student, teacher, forum_head or college_admin")
	fs.StringVar(&college, "college", "", "college id, see campus colleges")
	fs.StringVar(&forum, "forum", "", "forum id, for forum heads")
	fs.StringVar(&r.Department, "department", "", "department, for teachers")
	if err := fs.Parse(args); err != nil {
		return usage("%s", err)
	}
	r.Role, r.CollegeID, r.ForumID = domain.Role(role), domain.ID(college), domain.ID(forum)

	password, err := env.Password("Password: ")
	if err != nil {
		return err
	}
	confirm, err := env.Password("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return usage("passwords do not match")
	}
	r.Password = password

	msg, err := env.State.Session.Register(ctx, r)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Registration successful."
	}
	fmt.Fprintln(env.Out, msg)
	fmt.Fprintf(env.Out, "Run: campus verify %s <code>\n", r.Email)
	return nil
}

func Verify(ctx context.Context, env *Env, args []string) error {
	if len(args) != 2 {
		return usage("verify <email> <code>")
	}
	if err := env.State.Session.VerifyOTP(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Email verified, logged in as %s\n", env.State.Session.Current().User.Name)
	return nil
}

func Logout(ctx context.Context, env *Env, args []string) error {
	if err := env.State.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(env.Out, "Logged out")
	return nil
}

func WhoAmI(ctx context.Context, env *Env, args []string) error {
	u, err := requireRole(env)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%s <%s>\nrole: %s\n", u.Name, u.Email, u.Role)
	if u.Status != "" {
		fmt.Fprintf(env.Out, "status: %s\n", u.Status)
	}
	if u.CollegeID != "" {
		fmt.Fprintf(env.Out, "college: %s\n", u.CollegeID)
	}
	if u.ForumID != "" {
		fmt.Fprintf(env.Out, "forum: %s\n", u.ForumID)
	}
	return nil
}

func PublicColleges(ctx context.Context, env *Env, args []string) error {
	colleges, err := env.State.API.PublicColleges(ctx)
	if err != nil {
		return err
	}
	w := table(env.Out)
	for _, c := range colleges {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Code)
	}
	return w.Flush()
}
