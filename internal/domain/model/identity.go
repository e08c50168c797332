package model

import "strings"

// MissingSentinel is the first name the checkout store reports when a device
// action has no resolvable user.
const MissingSentinel = "Missing"

// Identity describes the user behind a checkout action. All fields are
// optional. A first name equal to MissingSentinel marks an unresolved user.
type Identity struct {
	FirstName string
	LastName  string
	SlackID   string
	Office    string
}

// NewIdentity builds an Identity from raw checkout store fields.
func NewIdentity(firstName, lastName, slackID, office string) Identity {
	return Identity{
		FirstName: firstName,
		LastName:  lastName,
		SlackID:   slackID,
		Office:    office,
	}
}

// UnknownIdentity is the identity of an action the checkout store could not
// attribute to anyone.
func UnknownIdentity() Identity {
	return Identity{FirstName: MissingSentinel}
}

// Resolved reports whether the checkout store could name the user.
func (i Identity) Resolved() bool {
	return i.FirstName != MissingSentinel
}

// FullName joins first and last name, skipping empty parts.
func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}
