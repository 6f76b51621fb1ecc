package authz

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole indicates a role name outside the closed role set.
var ErrUnknownRole = errors.New("authz: unknown role")

// Role is one label from the fixed role enumeration. The zero value is RoleNone.
type Role struct {
	name string
}

// Roles assignable within an organization.
var (
	RoleNone              = Role{}
	RoleSuperAdmin        = Role{name: "super_admin"}
	RoleOrgAdmin          = Role{name: "org_admin"}
	RoleComplianceOfficer = Role{name: "compliance_officer"}
	RoleRiskManager       = Role{name: "risk_manager"}
	RoleDataScientist     = Role{name: "data_scientist"}
	RoleEthicsOfficer     = Role{name: "ethics_officer"}
	RoleAuditor           = Role{name: "auditor"}
	RoleMember            = Role{name: "member"}
)

var allRoles = []Role{
	RoleSuperAdmin,
	RoleOrgAdmin,
	RoleComplianceOfficer,
	RoleRiskManager,
	RoleDataScientist,
	RoleEthicsOfficer,
	RoleAuditor,
	RoleMember,
}

// Roles returns every assignable role.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole maps a stored role name to its Role. An empty name yields RoleNone.
func ParseRole(name string) (Role, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return RoleNone, nil
	}
	for _, r := range allRoles {
		if r.name == name {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// String returns the stored role name, or "" for RoleNone.
func (r Role) String() string {
	return r.name
}

// IsNone reports whether r carries no role.
func (r Role) IsNone() bool {
	return r.name == ""
}

// Label returns the French display name used in the portal.
func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Super administrateur"
	case RoleOrgAdmin:
		return "Administrateur de l'organisation"
	case RoleComplianceOfficer:
		return "Responsable conformité"
	case RoleRiskManager:
		return "Gestionnaire des risques"
	case RoleDataScientist:
		return "Data scientist"
	case RoleEthicsOfficer:
		return "Responsable éthique"
	case RoleAuditor:
		return "Auditeur"
	case RoleMember:
		return "Membre"
	default:
		return "Aucun rôle"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
