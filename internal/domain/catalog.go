package domain

import "strings"

// Service is one entry of the salon's offering catalog.
type Service struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
}

type Specialist struct {
	ID        int64  `json:"id"`
	Surname   string `json:"surname"`
	GivenName string `json:"given_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Photo     string `json:"photo,omitempty"`
}

func (s Specialist) FullName() string {
	return strings.TrimSpace(s.GivenName + " " + s.Surname)
}

func (s Specialist) Person() Person {
	return Person{ID: s.ID, Surname: s.Surname, GivenName: s.GivenName}
}

// Availability lists the free slots ("HH:MM") of a specialist on one date.
type Availability struct {
	SpecialistID int64    `json:"specialist_id"`
	Date         string   `json:"date"`
	Slots        []string `json:"slots"`
}

// AvailabilityQuery is encoded into the availability request URL.
type AvailabilityQuery struct {
	Date string `url:"date"`
}

// Chat is one conversation in the client's inbox.
type Chat struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	LastMessage string `json:"last_message"`
	Time        string `json:"time"`
	Unread      int    `json:"unread"`
}
