package models

import "strings"

type Role string

const (
	RoleUnset      Role = ""
	RoleStudent    Role = "Student"
	RoleInstructor Role = "Instructor"
	RoleAdmin      Role = "Admin"
)

// ParseRole accepts the stored spelling case-insensitively. Unknown values
// map to RoleUnset with ok=false.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return RoleUnset, true
	case "student":
		return RoleStudent, true
	case "instructor":
		return RoleInstructor, true
	case "admin":
		return RoleAdmin, true
	}
	return RoleUnset, false
}

type User struct {
	ID              string   `json:"_id"`
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email"`
	PhotoURL        string   `json:"photoURL,omitempty"`
	Role            Role     `json:"role,omitempty"`
	SelectedClasses []string `json:"selectedClasses,omitempty"`
}

func (u *User) HasRole(r Role) bool {
	return u != nil && u.Role == r
}

// HasSelected reports whether classID is already in the cart.
func (u *User) HasSelected(classID string) bool {
	for _, id := range u.SelectedClasses {
		if id == classID {
			return true
		}
	}
	return false
}
