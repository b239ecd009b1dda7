package nexus

import (
	"context"
	"errors"
	"fmt"
)

const (
	maxProjectNameLength = 100
	maxDescriptionLength = 1000
)

// CreateProject creates an Active project. Administrator only. The
// description is encrypted by the project store before it reaches disk.
func (e *Engine) CreateProject(ctx context.Context, caller *Principal, req CreateProjectRequest) (*Project, error) {
	if e == nil || e.projects == nil {
		return nil, ErrEngineNotReady
	}
	if !CanAdministerProject(caller) {
		return nil, ErrAccessDenied
	}
	switch {
	case req.Name == "":
		return nil, fmt.Errorf("%w: project name is required", ErrValidation)
	case len(req.Name) > maxProjectNameLength:
		return nil, fmt.Errorf("%w: project name cannot exceed %d characters", ErrValidation, maxProjectNameLength)
	case req.Description == "":
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	case len(req.Description) > maxDescriptionLength:
		return nil, fmt.Errorf("%w: description cannot exceed %d characters", ErrValidation, maxDescriptionLength)
	case req.Deadline.IsZero():
		return nil, fmt.Errorf("%w: deadline is required", ErrValidation)
	}

	created, err := e.projects.Insert(ctx, &Project{
		Name:        req.Name,
		Description: req.Description,
		Deadline:    req.Deadline,
		Status:      StatusActive,
	})
	if err != nil {
		return nil, e.storeFailure("create project", err)
	}

	e.record(ctx, caller.ID, auditProjectCreated, resourceProject, AuditSuccess, created.ID)
	return created, nil
}

// GetProject returns a project the caller may view. Absence and lack of
// visibility are both reported as [ErrNotFound] so existence is never
// confirmed to unauthorized callers.
func (e *Engine) GetProject(ctx context.Context, caller *Principal, id string) (*Project, error) {
	if e == nil || e.projects == nil {
		return nil, ErrEngineNotReady
	}
	p, err := e.findProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(caller, p) {
		return nil, ErrNotFound
	}
	return p, nil
}

// ListProjects returns every project for administrators, and for everyone
// else the union of all Active projects with the projects the caller leads
// or is assigned to. The narrowing is pushed down to the store.
func (e *Engine) ListProjects(ctx context.Context, caller *Principal) ([]*Project, error) {
	if e == nil || e.projects == nil {
		return nil, ErrEngineNotReady
	}
	if caller == nil {
		return nil, ErrAccessDenied
	}

	filter := ProjectFilter{}
	if !caller.IsAdmin() {
		filter.MemberID = caller.ID
	}
	out, err := e.projects.List(ctx, filter)
	if err != nil {
		return nil, e.storeFailure("list projects", err)
	}
	return out, nil
}

// AssignTeam mutates a project's team references. Administrators may
// reassign the lead and the developer set; the project's current lead may
// edit only the developer set of that specific project. A lead reassignment
// requested by a non-administrator is ignored rather than rejected, so a
// lead updating their own team cannot fail on a stale lead field.
func (e *Engine) AssignTeam(ctx context.Context, caller *Principal, projectID string, req AssignTeamRequest) (*Project, error) {
	if e == nil || e.projects == nil {
		return nil, ErrEngineNotReady
	}
	p, err := e.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanAssignTeam(caller, p) {
		return nil, ErrAccessDenied
	}

	if req.LeadID != nil && CanChangeLead(caller) {
		p.LeadID = *req.LeadID
	}
	if req.DeveloperIDs != nil {
		p.DeveloperIDs = req.DeveloperIDs
	}

	if err := e.projects.Update(ctx, p); err != nil {
		return nil, e.storeFailure("assign team", err)
	}

	e.record(ctx, caller.ID, auditTeamAssigned, resourceProject, AuditSuccess, p.ID)
	return p, nil
}

// CompleteProject transitions a project to Completed. Administrator only.
// The transition is one-way; completing an already Completed project is a
// no-op rather than an error.
func (e *Engine) CompleteProject(ctx context.Context, caller *Principal, id string) (*Project, error) {
	if e == nil || e.projects == nil {
		return nil, ErrEngineNotReady
	}
	if !CanAdministerProject(caller) {
		return nil, ErrAccessDenied
	}
	p, err := e.findProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusCompleted {
		return p, nil
	}

	p.Status = StatusCompleted
	if err := e.projects.Update(ctx, p); err != nil {
		return nil, e.storeFailure("complete project", err)
	}

	e.record(ctx, caller.ID, auditProjectCompleted, resourceProject, AuditSuccess, p.ID)
	return p, nil
}

// DeleteProject removes a project. Administrator only.
func (e *Engine) DeleteProject(ctx context.Context, caller *Principal, id string) error {
	if e == nil || e.projects == nil {
		return ErrEngineNotReady
	}
	if !CanAdministerProject(caller) {
		return ErrAccessDenied
	}
	if err := e.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return e.storeFailure("delete project", err)
	}

	e.record(ctx, caller.ID, auditProjectDeleted, resourceProject, AuditSuccess, id)
	return nil
}

func (e *Engine) findProject(ctx context.Context, id string) (*Project, error) {
	p, err := e.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, e.storeFailure("find project", err)
	}
	return p, nil
}
