package domain

import "encoding/json"

type AssignmentRole string

const (
	AssignStaff        AssignmentRole = "staff"
	AssignCollaborator AssignmentRole = "collaborator"
)

// Assignment is a staff or collaborator request attached to an event.
type Assignment struct {
	ID      ID             `json:"id"`
	EventID ID             `json:"eventId,omitempty"`
	UserID  ID             `json:"userId"`
	Role    AssignmentRole `json:"role"`
	Status  string         `json:"status,omitempty"`
	User    *User          `json:"user,omitempty"`
}

func (a Assignment) GetID() string { return string(a.ID) }

func (a *Assignment) UnmarshalJSON(b []byte) error {
	type plain Assignment
	if err := json.Unmarshal(b, (*plain)(a)); err != nil {
		return err
	}
	return fallbackID(b, &a.ID)
}

type AssignmentInput struct {
	UserID ID             `json:"userId"`
	Role   AssignmentRole `json:"role"`
}

type Event struct {
	ID          ID           `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	StartTime   Timestamp    `json:"startTime"`
	EndTime     Timestamp    `json:"endTime"`
	ForumID     ID           `json:"forumId,omitempty"`
	VenueID     ID           `json:"venueId,omitempty"`
	Status      string       `json:"status,omitempty"`
	Staff       []Assignment `json:"staff,omitempty"`
}

func (e Event) GetID() string { return string(e.ID) }

func (e *Event) UnmarshalJSON(b []byte) error {
	type plain Event
	if err := json.Unmarshal(b, (*plain)(e)); err != nil {
		return err
	}
	return fallbackID(b, &e.ID)
}

type EventInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartTime   Timestamp `json:"startTime"`
	EndTime     Timestamp `json:"endTime"`
	ForumID     ID        `json:"forumId"`
	VenueID     ID        `json:"venueId,omitempty"`
}

// DayCount is one entry of the yearly activity heat map.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
