package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is the backend's opaque identifier. Some endpoints send it as a JSON number, others as a string;
// both decode to the same value.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*id = ID(b)
	return nil
}

func (id ID) String() string {
	return string(id)
}

// fallbackID reads the id from the "_id" key of b when the "id" key left it empty.
func fallbackID(b []byte, id *ID) error {
	if *id != "" {
		return nil
	}
	var v struct {
		ID ID `json:"_id"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*id = v.ID
	return nil
}

type Role string

const (
	RoleStudent      Role = "student"
	RoleTeacher      Role = "teacher"
	RoleForumHead    Role = "forum_head"
	RoleCollegeAdmin Role = "college_admin"
	RoleSuperAdmin   Role = "super_admin"
)

type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"
	StatusRejected UserStatus = "rejected"
)

type User struct {
	ID         ID         `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Status     UserStatus `json:"status,omitempty"`
	CollegeID  ID         `json:"collegeId,omitempty"`
	ForumID    ID         `json:"forumId,omitempty"`
	Department string     `json:"department,omitempty"`
	Verified   bool       `json:"isVerified,omitempty"`
}

func (u User) GetID() string { return string(u.ID) }

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	if err := json.Unmarshal(b, (*plain)(u)); err != nil {
		return err
	}
	return fallbackID(b, &u.ID)
}

// Registration is the sign up form. CollegeID is required for every role but the super admin's, which
// is never created through the client.
type Registration struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       Role   `json:"role"`
	CollegeID  ID     `json:"collegeId,omitempty"`
	ForumID    ID     `json:"forumId,omitempty"`
	Department string `json:"department,omitempty"`
}

// AuthResult is returned by the login and email verification endpoints.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type College struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c College) GetID() string { return string(c.ID) }

func (c *College) UnmarshalJSON(b []byte) error {
	type plain College
	if err := json.Unmarshal(b, (*plain)(c)); err != nil {
		return err
	}
	return fallbackID(b, &c.ID)
}

type CollegeInput struct {
	Name       string `json:"name"`
	Code       string `json:"code,omitempty"`
	Address    string `json:"address,omitempty"`
	AdminName  string `json:"adminName,omitempty"`
	AdminEmail string `json:"adminEmail,omitempty"`
}

type Forum struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CollegeID   ID     `json:"collegeId,omitempty"`
	HeadID      ID     `json:"headId,omitempty"`
}

func (f Forum) GetID() string { return string(f.ID) }

func (f *Forum) UnmarshalJSON(b []byte) error {
	type plain Forum
	if err := json.Unmarshal(b, (*plain)(f)); err != nil {
		return err
	}
	return fallbackID(b, &f.ID)
}

type ForumInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	HeadID      ID     `json:"headId,omitempty"`
}

type Venue struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location,omitempty"`
	Capacity  int    `json:"capacity,omitempty"`
	CollegeID ID     `json:"collegeId,omitempty"`
}

func (v Venue) GetID() string { return string(v.ID) }

func (v *Venue) UnmarshalJSON(b []byte) error {
	type plain Venue
	if err := json.Unmarshal(b, (*plain)(v)); err != nil {
		return err
	}
	return fallbackID(b, &v.ID)
}

type VenueInput struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}
