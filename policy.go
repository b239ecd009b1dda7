package nexus

// Resource relationship checks. All are pure functions of the caller and
// the resource; route-level role gates live in the middleware package.

// CanViewProject reports whether caller may see the project: any
// authenticated principal sees Active projects, while Completed projects
// remain visible only to administrators, the project's lead, and its
// assigned developers. Document visibility follows the same rule.
func CanViewProject(caller *Principal, p *Project) bool {
	if caller == nil || p == nil {
		return false
	}
	if caller.IsAdmin() {
		return true
	}
	if p.Status == StatusActive {
		return true
	}
	if p.LeadID != "" && p.LeadID == caller.ID {
		return true
	}
	return p.HasDeveloper(caller.ID)
}

// CanAssignTeam reports whether caller may edit the project's team:
// administrators always, the project's current lead on that project only.
func CanAssignTeam(caller *Principal, p *Project) bool {
	if caller == nil || p == nil {
		return false
	}
	if caller.IsAdmin() {
		return true
	}
	return p.LeadID != "" && p.LeadID == caller.ID
}

// CanChangeLead reports whether caller may reassign a project's lead.
// Leads may edit their own developer set but never the lead reference.
func CanChangeLead(caller *Principal) bool {
	return caller.IsAdmin()
}

// CanAdministerProject gates project creation, completion, and deletion.
func CanAdministerProject(caller *Principal) bool {
	return caller.IsAdmin()
}

// CanUploadDocument reports whether caller may attach documents to the
// project: administrators and the project's current lead.
func CanUploadDocument(caller *Principal, p *Project) bool {
	if caller == nil || p == nil {
		return false
	}
	return caller.IsAdmin() || (p.LeadID != "" && p.LeadID == caller.ID)
}
