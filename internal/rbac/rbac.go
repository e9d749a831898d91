// Package rbac flattens a user's role graph into the role-name and
// permission-code lists embedded in session tokens.
package rbac

// Permission is a grantable capability identified by a unique code.
type Permission struct {
	ID          int64
	Code        string
	Description string
}

// Role groups permissions under a name.
type Role struct {
	ID          int64
	Name        string
	Permissions []Permission
}

// Aggregate flattens roles into an ordered role-name list and a deduplicated
// permission-code list.
//
// Role names preserve the input order. Permission codes are collected by
// scanning roles in input order and each role's permissions in its own
// order, keeping only the first occurrence of each code. The ordering is
// deterministic so identical inputs always produce identical token payloads.
func Aggregate(roles []Role) (roleNames []string, permissions []string) {
	if len(roles) == 0 {
		return nil, nil
	}

	roleNames = make([]string, 0, len(roles))
	permissions = make([]string, 0)
	seen := make(map[string]struct{})

	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
		for _, perm := range role.Permissions {
			if _, ok := seen[perm.Code]; ok {
				continue
			}
			seen[perm.Code] = struct{}{}
			permissions = append(permissions, perm.Code)
		}
	}

	return roleNames, permissions
}

// HasPermission reports whether the code appears in the aggregated list.
func HasPermission(permissions []string, code string) bool {
	for _, p := range permissions {
		if p == code {
			return true
		}
	}
	return false
}
