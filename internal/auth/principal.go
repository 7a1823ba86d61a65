package auth

import "github.com/localnerve/backoffice-propsdb/internal/resources"

// Principal is the authenticated caller of a request
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	// Source is "token" or "session"
	Source string `json:"source"`
}

// Roles lists the role labels in precedence order
var Roles = []string{resources.RoleCAdmin, resources.RoleAdmin, resources.RolePropertyUser}

// HighestRole returns the strongest back-office role in roles, or "" when none is known
func HighestRole(roles []string) string {
	for _, known := range Roles {
		for _, r := range roles {
			if r == known {
				return known
			}
		}
	}
	return ""
}
