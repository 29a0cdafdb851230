package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sidereusnuntius/campus/internal/calendar"
	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/store"
	"github.com/sidereusnuntius/campus/internal/validate"
)

const timeLayout = "Mon Jan 2 15:04"

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// RenderEvents writes one line per event. The output is stable so two renderings can be diffed.
func RenderEvents(events []domain.Event) string {
	var b strings.Builder
	w := table(&b)
	for _, e := range events {
		start := "-"
		if !e.StartTime.IsZero() {
			start = e.StartTime.Local().Format(timeLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, start, e.Name, e.Status)
	}
	w.Flush()
	return b.String()
}

func Events(ctx context.Context, env *Env, args []string) error {
	fs := flags("events")
	search := fs.String("search", "", "only events matching text")
	public := fs.Bool("public", false, "list the public events instead of your forum's")
	if err := fs.Parse(args); err != nil {
		return usage("%s", err)
	}

	var events []domain.Event
	if *public {
		var err error
		if events, err = env.State.API.PublicEvents(ctx, *search); err != nil {
			return err
		}
	} else {
		if _, err := requireRole(env, domain.RoleForumHead); err != nil {
			return err
		}
		if err := env.State.Events.List(ctx, store.ListOptions{Query: *search}); err != nil {
			return err
		}
		events = env.State.Events.Items()
	}

	if len(events) == 0 {
		fmt.Fprintln(env.Out, "No events found")
		return nil
	}
	_, err := io.WriteString(env.Out, RenderEvents(events))
	return err
}

func CreateEvent(ctx context.Context, env *Env, args []string) error {
	u, err := requireRole(env, domain.RoleForumHead)
	if err != nil {
		return err
	}
	fs := flags("create-event")
	var in domain.EventInput
	var start, end, venue string
	fs.StringVar(&in.Name, "name", "", "event name")
	fs.StringVar(&in.Description, "description", "", "event description")
	fs.StringVar(&start, "start", "", "start time, e.g. 2024-03-05T18:00")
	fs.StringVar(&end, "end", "", "end time")
	fs.StringVar(&venue, "venue", "", "venue id")
	if err = fs.Parse(args); err != nil {
		return usage("%s", err)
	}

	if in.StartTime, err = domain.ParseTimestamp(start); err != nil {
		return client.Validation(err)
	}
	if in.EndTime, err = domain.ParseTimestamp(end); err != nil {
		return client.Validation(err)
	}
	in.ForumID, in.VenueID = u.ForumID, domain.ID(venue)
	if err = validate.EventForm(in); err != nil {
		return client.Validation(err)
	}

	e, err := env.State.Events.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "id: %s\n", e.ID)
	return nil
}

func DeleteEvent(ctx context.Context, env *Env, args []string) error {
	if _, err := requireRole(env, domain.RoleForumHead); err != nil {
		return err
	}
	if len(args) != 1 {
		return usage("delete-event <id>")
	}
	return env.State.Events.Delete(ctx, args[0])
}

func Teachers(ctx context.Context, env *Env, args []string) error {
	if _, err := requireRole(env, domain.RoleForumHead); err != nil {
		return err
	}
	fs := flags("teachers")
	search := fs.String("search", "", "name, email or department")
	if err := fs.Parse(args); err != nil {
		return usage("%s", err)
	}

	users, err := env.State.API.SearchTeachers(ctx, *search)
	if err != nil {
		return err
	}
	w := table(env.Out)
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Department)
	}
	return w.Flush()
}

func AssignStaff(ctx context.Context, env *Env, args []string) error {
	if _, err := requireRole(env, domain.RoleForumHead); err != nil {
		return err
	}
	fs := flags("assign-staff")
	collaborator := fs.Bool("collaborator", false, "request the teacher as a collaborator")
	if err := fs.Parse(args); err != nil {
		return usage("%s", err)
	}
	if fs.NArg() != 2 {
		return usage("assign-staff <event id> <user id>")
	}

	role := domain.AssignStaff
	if *collaborator {
		role = domain.AssignCollaborator
	}
	a, err := env.State.API.AssignStaff(ctx, fs.Arg(0), domain.AssignmentInput{UserID: domain.ID(fs.Arg(1)), Role: role})
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Requested %s as %s (%s)\n", a.UserID, a.Role, a.Status)
	return nil
}

func Calendar(ctx context.Context, env *Env, args []string) error {
	fs := flags("calendar")
	month := fs.String("month", "", "month to show, YYYY-MM; defaults to the current one")
	icsFile := fs.String("ics", "", "also export the month's events to this iCalendar file")
	public := fs.Bool("public", false, "show the public events instead of your forum's")
	if err := fs.Parse(args); err != nil {
		return usage("%s", err)
	}

	anchor := time.Now()
	if *month != "" {
		var err error
		if anchor, err = calendar.ParseMonth(*month, time.Local); err != nil {
			return client.Validation(err)
		}
	}

	var events []domain.Event
	var err error
	if *public || env.State.Session.Current().User.Role != domain.RoleForumHead {
		events, err = env.State.API.PublicEvents(ctx, "")
	} else {
		events, err = env.State.API.EventsByMonth(ctx, anchor.Year(), anchor.Month())
	}
	if err != nil {
		return err
	}

	weeks := calendar.BucketMonth(events, anchor, calendar.Options{WeekStart: env.State.Config.WeekStart})
	RenderMonth(env.Out, anchor, weeks, env.State.Config.WeekStart)

	if *icsFile == "" {
		return nil
	}
	var inMonth []domain.Event
	for _, w := range weeks {
		for _, d := range w {
			if d.InSelectedMonth {
				inMonth = append(inMonth, d.Events...)
			}
		}
	}
	f, err := os.Create(*icsFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err = calendar.ExportICS(f, inMonth, "Campus events "+anchor.Format("January 2006")); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "\nExported %d events to %s\n", len(inMonth), *icsFile)
	return nil
}

// RenderMonth draws the grid, marking days with events with an asterisk and today with brackets,
// then lists the events of the selected month day by day.
func RenderMonth(w io.Writer, anchor time.Time, weeks []calendar.Week, first time.Weekday) {
	fmt.Fprintf(w, "%s\n", anchor.Format("January 2006"))
	for i := range 7 {
		fmt.Fprintf(w, " %-4s", ((first + time.Weekday(i)) % 7).String()[:2])
	}
	fmt.Fprintln(w)

	for _, week := range weeks {
		for _, d := range week {
			cell := "  "
			if d.InSelectedMonth {
				cell = fmt.Sprintf("%2d", d.Date.Day())
			}
			mark := " "
			if d.Interactive() && d.InSelectedMonth {
				mark = "*"
			}
			if d.IsToday {
				fmt.Fprintf(w, "[%s]%s", cell, mark)
			} else {
				fmt.Fprintf(w, " %s %s", cell, mark)
			}
		}
		fmt.Fprintln(w)
	}

	for _, week := range weeks {
		for _, d := range week {
			if !d.InSelectedMonth || !d.Interactive() {
				continue
			}
			fmt.Fprintf(w, "\n%s\n", d.Date.Format("Monday, January 2"))
			for _, e := range d.Events {
				fmt.Fprintf(w, "  %s  %s\n", e.StartTime.Local().Format("15:04"), e.Name)
			}
		}
	}
}

func Activity(ctx context.Context, env *Env, args []string) error {
	if _, err := requireRole(env, domain.RoleForumHead); err != nil {
		return err
	}
	fs := flags("activity")
	year := fs.Int("year", time.Now().Year(), "year to show")
	if err := fs.Parse(args); err != nil {
		return usage("%s", err)
	}

	days, err := env.State.API.YearlyActivity(ctx, *year)
	if err != nil {
		return err
	}
	levels := calendar.ActivityLevels(days)
	shades := []string{".", "░", "▒", "▓", "█"}
	w := table(env.Out)
	for _, d := range days {
		fmt.Fprintf(w, "%s\t%d\t%s\n", d.Date, d.Count, strings.Repeat(shades[levels[d.Date]], 3))
	}
	return w.Flush()
}
