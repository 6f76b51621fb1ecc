package authz

// Permission is a named capability. Values can only be obtained from the
// variables declared below, so the vocabulary is closed at compile time.
type Permission struct {
	name string
}

// Permission vocabulary.
var (
	PermManageOrganization = Permission{name: "manage_organization"}
	PermManageMembers      = Permission{name: "manage_members"}
	PermViewAISystems      = Permission{name: "view_ai_systems"}
	PermManageAISystems    = Permission{name: "manage_ai_systems"}
	PermAssessRisks        = Permission{name: "assess_risks"}
	PermViewTraces         = Permission{name: "view_traces"}
	PermManagePolicies     = Permission{name: "manage_policies"}
	PermRunDiagnostics     = Permission{name: "run_diagnostics"}
	PermManageDocuments    = Permission{name: "manage_documents"}
	PermViewAuditTrail     = Permission{name: "view_audit_trail"}
	PermExportReports      = Permission{name: "export_reports"}
	PermReportIncident     = Permission{name: "report_incident"}
)

// permissionTable is the single source of truth for grants. Every grant is
// listed explicitly; there is no role hierarchy and no wildcard.
var permissionTable = map[Permission][]Role{
	PermManageOrganization: {RoleSuperAdmin, RoleOrgAdmin},
	PermManageMembers:      {RoleSuperAdmin, RoleOrgAdmin},
	PermViewAISystems: {
		RoleSuperAdmin, RoleOrgAdmin, RoleComplianceOfficer, RoleRiskManager,
		RoleDataScientist, RoleEthicsOfficer, RoleAuditor, RoleMember,
	},
	PermManageAISystems: {
		RoleSuperAdmin, RoleOrgAdmin, RoleComplianceOfficer, RoleRiskManager, RoleDataScientist,
	},
	PermAssessRisks: {RoleSuperAdmin, RoleOrgAdmin, RoleComplianceOfficer, RoleRiskManager},
	PermViewTraces: {
		RoleSuperAdmin, RoleOrgAdmin, RoleComplianceOfficer, RoleRiskManager,
		RoleDataScientist, RoleEthicsOfficer, RoleAuditor,
	},
	PermManagePolicies:  {RoleSuperAdmin, RoleOrgAdmin, RoleComplianceOfficer, RoleEthicsOfficer},
	PermRunDiagnostics:  {RoleSuperAdmin, RoleOrgAdmin, RoleComplianceOfficer, RoleRiskManager},
	PermManageDocuments: {RoleSuperAdmin, RoleOrgAdmin, RoleComplianceOfficer, RoleEthicsOfficer},
	PermViewAuditTrail:  {RoleSuperAdmin, RoleOrgAdmin, RoleComplianceOfficer, RoleAuditor},
	PermExportReports:   {RoleSuperAdmin, RoleOrgAdmin, RoleComplianceOfficer, RoleAuditor},
	PermReportIncident: {
		RoleSuperAdmin, RoleOrgAdmin, RoleComplianceOfficer, RoleRiskManager,
		RoleDataScientist, RoleEthicsOfficer, RoleAuditor, RoleMember,
	},
}

// permissionOrder fixes the listing order for APIs and templates.
var permissionOrder = []Permission{
	PermManageOrganization,
	PermManageMembers,
	PermViewAISystems,
	PermManageAISystems,
	PermAssessRisks,
	PermViewTraces,
	PermManagePolicies,
	PermRunDiagnostics,
	PermManageDocuments,
	PermViewAuditTrail,
	PermExportReports,
	PermReportIncident,
}

// grantIndex is derived from permissionTable for constant-time checks.
var grantIndex = buildGrantIndex()

func buildGrantIndex() map[Permission]map[Role]struct{} {
	index := make(map[Permission]map[Role]struct{}, len(permissionTable))
	for perm, roles := range permissionTable {
		set := make(map[Role]struct{}, len(roles))
		for _, r := range roles {
			set[r] = struct{}{}
		}
		index[perm] = set
	}
	return index
}

// String returns the permission name.
func (p Permission) String() string {
	return p.name
}

// MarshalText implements encoding.TextMarshaler.
func (p Permission) MarshalText() ([]byte, error) {
	return []byte(p.name), nil
}

// Permissions returns the full vocabulary in display order.
func Permissions() []Permission {
	out := make([]Permission, len(permissionOrder))
	copy(out, permissionOrder)
	return out
}

// LookupPermission finds a permission by name. It exists for introspection
// endpoints and templates; code paths that gate actions use the variables.
func LookupPermission(name string) (Permission, bool) {
	for _, p := range permissionOrder {
		if p.name == name {
			return p, true
		}
	}
	return Permission{}, false
}

// AllowedRoles returns the roles granted p.
func AllowedRoles(p Permission) []Role {
	roles := permissionTable[p]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}
