package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/sidereusnuntius/campus/internal/domain"
)

const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
	MaxNameLen     = 64
	OTPLen         = 6
)

func LoginForm(email, password string) error {
	var errs []error
	errs = append(errs, Email(email))
	if password == "" {
		errs = append(errs, errors.New("empty password"))
	}
	return errors.Join(errs...)
}

// SignUpForm checks a registration before it is sent. Super admins are never created through the
// client.
func SignUpForm(r domain.Registration) error {
	var errs = []error{}

	errs = append(errs, Name(r.Name))

	errs = append(errs, Email(r.Email))

	errs = append(errs, Password(r.Password))

	switch r.Role {
	case domain.RoleStudent, domain.RoleTeacher, domain.RoleForumHead, domain.RoleCollegeAdmin:
		if r.CollegeID == "" {
			errs = append(errs, errors.New("no college selected"))
		}
	case "":
		errs = append(errs, errors.New("no role selected"))
	default:
		errs = append(errs, fmt.Errorf("role %s cannot sign up", r.Role))
	}

	return errors.Join(errs...)
}

func OTP(code string) error {
	if len(code) != OTPLen {
		return fmt.Errorf("verification code must have %d digits", OTPLen)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return errors.New("verification code must only have digits")
		}
	}
	return nil
}

func EventForm(in domain.EventInput) error {
	var errs []error

	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, errors.New("empty event name"))
	}
	if in.ForumID == "" {
		errs = append(errs, errors.New("no forum selected"))
	}

	switch {
	case in.StartTime.IsZero():
		errs = append(errs, errors.New("no start time"))
	case in.EndTime.IsZero():
		errs = append(errs, errors.New("no end time"))
	case !in.EndTime.After(in.StartTime.Time):
		errs = append(errs, errors.New("event ends before it starts"))
	}

	return errors.Join(errs...)
}

func Password(password string) error {
	l := len(password)
	switch {
	case l == 0:
		return errors.New("empty password")
	case l < MinPasswordLen:
		return fmt.Errorf("password too short; min %d characters", MinPasswordLen)
	case l > MaxPasswordLen:
		return fmt.Errorf("password too long; max %d characters", MaxPasswordLen)
	}
	return nil
}

func Email(email string) error {
	if len(email) == 0 {
		return errors.New("empty email")
	}
	_, err := mail.ParseAddress(email)

	return err
}

func Name(name string) error {
	if l := len(strings.TrimSpace(name)); l == 0 {
		return errors.New("empty name")
	} else if l > MaxNameLen {
		return fmt.Errorf("name too long; max %d characters", MaxNameLen)
	}
	return nil
}
