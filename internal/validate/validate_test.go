package validate

import (
	"strings"
	"testing"

	"github.com/sidereusnuntius/campus/internal/domain"
)

func TestSignUpForm(t *testing.T) {
	valid := domain.Registration{
		Name:      "Ada Lovelace",
		Email:     "ada@example.edu",
		Password:  "analytical",
		Role:      domain.RoleTeacher,
		CollegeID: "c1",
	}

	cases := []struct {
		Casename string
		Modify   func(r *domain.Registration)
		Fails    bool
	}{
		{"valid", func(r *domain.Registration) {}, false},
		{"empty name", func(r *domain.Registration) { r.Name = "  " }, true},
		{"long name", func(r *domain.Registration) { r.Name = strings.Repeat("a", MaxNameLen+1) }, true},
		{"bad email", func(r *domain.Registration) { r.Email = "ada" }, true},
		{"short password", func(r *domain.Registration) { r.Password = "short" }, true},
		{"long password", func(r *domain.Registration) { r.Password = strings.Repeat("p", MaxPasswordLen+1) }, true},
		{"no role", func(r *domain.Registration) { r.Role = "" }, true},
		{"super admin", func(r *domain.Registration) { r.Role = domain.RoleSuperAdmin }, true},
		{"no college", func(r *domain.Registration) { r.CollegeID = "" }, true},
		{"forum head", func(r *domain.Registration) { r.Role = domain.RoleForumHead }, false},
	}

	for _, c := range cases {
		t.Run(c.Casename, func(t *testing.T) {
			r := valid
			c.Modify(&r)
			err := SignUpForm(r)
			if c.Fails && err == nil {
				t.Error("expected an error")
			} else if !c.Fails && err != nil {
				t.Errorf("unexpected error: %s", err)
			}
		})
	}
}

func TestSignUpFormJoinsErrors(t *testing.T) {
	err := SignUpForm(domain.Registration{})
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, part := range []string{"empty name", "empty email", "empty password", "no role selected"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("%q missing from %q", part, err)
		}
	}
}

func TestLoginForm(t *testing.T) {
	if err := LoginForm("ada@example.edu", "x"); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
	if err := LoginForm("", ""); err == nil {
		t.Error("expected an error")
	}
}

func TestOTP(t *testing.T) {
	cases := map[string]bool{
		"123456":  true,
		"12345":   false,
		"1234567": false,
		"12a456":  false,
		"":        false,
	}
	for code, ok := range cases {
		if err := OTP(code); (err == nil) != ok {
			t.Errorf("OTP(%q) = %v", code, err)
		}
	}
}

func TestEventForm(t *testing.T) {
	start := domain.MustParseTimestamp("2024-01-01T10:00")
	end := domain.MustParseTimestamp("2024-01-01T12:00")

	cases := []struct {
		Casename string
		Input    domain.EventInput
		Fails    bool
	}{
		{"valid", domain.EventInput{Name: "X", StartTime: start, EndTime: end, ForumID: "f1"}, false},
		{"no name", domain.EventInput{StartTime: start, EndTime: end, ForumID: "f1"}, true},
		{"no forum", domain.EventInput{Name: "X", StartTime: start, EndTime: end}, true},
		{"no start", domain.EventInput{Name: "X", EndTime: end, ForumID: "f1"}, true},
		{"no end", domain.EventInput{Name: "X", StartTime: start, ForumID: "f1"}, true},
		{"reversed", domain.EventInput{Name: "X", StartTime: end, EndTime: start, ForumID: "f1"}, true},
	}

	for _, c := range cases {
		t.Run(c.Casename, func(t *testing.T) {
			err := EventForm(c.Input)
			if c.Fails != (err != nil) {
				t.Errorf("unexpected result %v", err)
			}
		})
	}
}
