package users

import "biblioaccess/internal/textutil"

// Role identifies the permission tier of an account. Roles are stored and
// transmitted with their canonical display spelling.
type Role string

const (
	RoleAlumno          Role = "Alumno"
	RoleVoluntario      Role = "Voluntario"
	RoleVoluntarioAdmin Role = "Voluntario Administrativo"
	RoleBibliotecario   Role = "Bibliotecario"
	RoleAdmin           Role = "Admin"
)

var allRoles = []Role{
	RoleAlumno,
	RoleVoluntario,
	RoleVoluntarioAdmin,
	RoleBibliotecario,
	RoleAdmin,
}

var roleByKey = func() map[string]Role {
	index := make(map[string]Role, len(allRoles))
	for _, role := range allRoles {
		index[textutil.CanonicalKey(string(role))] = role
	}
	return index
}()

// AllRoles returns the ordered list of known roles.
func AllRoles() []Role {
	cp := make([]Role, len(allRoles))
	copy(cp, allRoles)
	return cp
}

// ParseRole converts user input into a known Role. Matching ignores case,
// whitespace, and diacritics, so "voluntario administrativo" parses.
func ParseRole(value string) (Role, bool) {
	role, ok := roleByKey[textutil.CanonicalKey(value)]
	return role, ok
}

// IsStaff reports whether the role carries librarian-level privileges.
func (r Role) IsStaff() bool {
	return r == RoleBibliotecario || r == RoleAdmin
}
