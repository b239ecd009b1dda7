package nexus

import (
	"context"
	"time"

	internalaudit "github.com/pixelforge/nexus/internal/audit"
)

const (
	auditLoginSuccess      = "login_success"
	auditLoginFailure      = "login_failure"
	auditLoginMFARequested = "login_mfa_requested"
	auditLoginMFAFailure   = "login_mfa_failure"
	auditMFASetupRequested = "mfa_setup_requested"
	auditMFAEnabled        = "mfa_enabled"
	auditUserRegistered    = "user_registered"
	auditRoleChanged       = "role_changed"
	auditPasswordChanged   = "password_changed"
	auditPasswordRejected  = "password_change_invalid_current"
	auditProjectCreated    = "project_created"
	auditProjectCompleted  = "project_completed"
	auditProjectDeleted    = "project_deleted"
	auditTeamAssigned      = "team_assigned"
)

const (
	resourceAuth    = "Auth"
	resourceProject = "Project"
)

// record appends an audit event through the async dispatcher. Best effort:
// a full buffer or failing sink never aborts the triggering operation.
func (e *Engine) record(ctx context.Context, principalID, action, resource string, status AuditStatus, details string) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, internalaudit.Event{
		Timestamp:   time.Now().UTC(),
		PrincipalID: principalID,
		Action:      action,
		Resource:    resource,
		Status:      status,
		IP:          clientIPFromContext(ctx),
		Details:     details,
	})
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}
