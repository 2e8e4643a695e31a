package domain

import "strings"

type Role string

const (
	RoleClient     Role = "client"
	RoleSpecialist Role = "specialist"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleClient, RoleSpecialist:
		return Role(s), true
	default:
		return "", false
	}
}

type User struct {
	ID        int64  `json:"id"`
	Surname   string `json:"surname"`
	GivenName string `json:"given_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
}

// FullName renders "Given Surname".
func (u User) FullName() string {
	return strings.TrimSpace(u.GivenName + " " + u.Surname)
}

// Person returns the short summary embedded in reviews.
func (u User) Person() Person {
	return Person{ID: u.ID, Surname: u.Surname, GivenName: u.GivenName}
}

// Contact returns the summary embedded in appointments.
func (u User) Contact() Contact {
	return Contact{ID: u.ID, Surname: u.Surname, GivenName: u.GivenName, Email: u.Email, Phone: u.Phone}
}

type SignUpInput struct {
	Surname   string `json:"surname"`
	GivenName string `json:"given_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      Role   `json:"role,omitempty"`
}

// NewUser is the single construction path for accounts. Unknown or empty
// roles become clients; the email is normalised to lower case.
func NewUser(id int64, in SignUpInput) User {
	role, ok := ParseRole(string(in.Role))
	if !ok {
		role = RoleClient
	}
	return User{
		ID:        id,
		Surname:   strings.TrimSpace(in.Surname),
		GivenName: strings.TrimSpace(in.GivenName),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      role,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Person is the name-only summary of a client or specialist.
type Person struct {
	ID        int64  `json:"id"`
	Surname   string `json:"surname"`
	GivenName string `json:"given_name"`
}

// Contact is a person summary with contact details.
type Contact struct {
	ID        int64  `json:"id"`
	Surname   string `json:"surname"`
	GivenName string `json:"given_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}
