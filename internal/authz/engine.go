package authz

import (
	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
)

// Action enumerates everything an actor can attempt against the core.
type Action string

const (
	ActionCreateAccount     Action = "create_account"
	ActionReadProfile       Action = "read_profile"
	ActionUpdateProfile     Action = "update_profile"
	ActionListProfiles      Action = "list_profiles"
	ActionDeactivateAccount Action = "deactivate_account"
	ActionCreateAppointment Action = "create_appointment"
	ActionReadAppointment   Action = "read_appointment"
	ActionUpdateAppointment Action = "update_appointment"
	ActionListAppointments  Action = "list_appointments"
	ActionCreateRecord      Action = "create_record"
	ActionReadRecord        Action = "read_record"
	ActionUpdateRecord      Action = "update_record"
	ActionListRecords       Action = "list_records"
)

// Actions lists every known action, in table order.
var Actions = []Action{
	ActionCreateAccount, ActionReadProfile, ActionUpdateProfile,
	ActionListProfiles, ActionDeactivateAccount,
	ActionCreateAppointment, ActionReadAppointment, ActionUpdateAppointment,
	ActionListAppointments,
	ActionCreateRecord, ActionReadRecord, ActionUpdateRecord, ActionListRecords,
}

// ResourceRef is the minimal identifying data needed to authorize access
// without loading the full entity: the owning patient and professional
// profile ids, plus the target role for account creation.
type ResourceRef struct {
	PatientID      uuid.UUID
	ProfessionalID uuid.UUID
	TargetRole     model.Role
}

// Decision is the outcome of an authorization check. A denial always carries
// its reason.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Denial reasons reused by callers and tests.
const (
	ReasonInactiveAccount = "account is inactive"
	ReasonNotOwnPatient   = "patients may only access their own data"
	ReasonNotAssigned     = "professionals may only access their own assignments"
	ReasonAdminOnly       = "only administrators may perform this action"
	ReasonNoPolicy        = "no matching policy"
)

// Engine computes effective permissions in a single, ordered decision table.
// Every entry point consults it before touching stored data; there are no
// per-route checks anywhere else.
type Engine struct {
	// Observe, when set, receives the outcome of every evaluation.
	Observe func(action Action, allowed bool)
}

func NewEngine() *Engine {
	return &Engine{}
}

// Authorize evaluates the decision table for (actor, action, resource).
// Rules are evaluated in order and the first match wins; unmatched
// combinations are denied.
func (e *Engine) Authorize(actor *Actor, action Action, res ResourceRef) Decision {
	decision := e.evaluate(actor, action, res)
	if e.Observe != nil {
		e.Observe(action, decision.Allowed)
	}
	return decision
}

func (e *Engine) evaluate(actor *Actor, action Action, res ResourceRef) Decision {
	if actor == nil || actor.Account == nil || !actor.Account.Active {
		return Deny(ReasonInactiveAccount)
	}

	switch actor.Account.Role {
	case model.RoleAdmin:
		// Admin is a strict superset; no action is reserved to non-admins.
		return Allow()
	case model.RolePatient:
		return e.authorizePatient(actor, action, res)
	case model.RoleProfessional:
		return e.authorizeProfessional(actor, action, res)
	}
	return Deny(ReasonNoPolicy)
}

func (e *Engine) authorizePatient(actor *Actor, action Action, res ResourceRef) Decision {
	switch action {
	case ActionReadProfile, ActionUpdateProfile,
		ActionReadAppointment, ActionUpdateAppointment, ActionListAppointments,
		ActionReadRecord, ActionListRecords:
		// Self-scoped: the resource must belong to the actor's own patient
		// profile. Which appointment transitions a patient may actually
		// trigger is decided by the lifecycle guard after this check.
		if res.PatientID == actor.ProfileID && actor.ProfileID != uuid.Nil {
			return Allow()
		}
		return Deny(ReasonNotOwnPatient)
	case ActionListProfiles:
		// The professional directory is public to authenticated actors.
		return Allow()
	case ActionCreateAppointment:
		return Deny("patients may not create appointments")
	case ActionCreateRecord, ActionUpdateRecord:
		return Deny("patients may not write clinical records")
	case ActionCreateAccount, ActionDeactivateAccount:
		return Deny(ReasonAdminOnly)
	}
	return Deny(ReasonNoPolicy)
}

func (e *Engine) authorizeProfessional(actor *Actor, action Action, res ResourceRef) Decision {
	switch action {
	case ActionReadAppointment, ActionUpdateAppointment, ActionListAppointments,
		ActionCreateRecord, ActionReadRecord, ActionUpdateRecord, ActionListRecords,
		ActionReadProfile, ActionUpdateProfile:
		if res.ProfessionalID == actor.ProfileID && actor.ProfileID != uuid.Nil {
			return Allow()
		}
		return Deny(ReasonNotAssigned)
	case ActionCreateAppointment:
		// Any existing patient may be booked; referential checks happen in
		// the lifecycle.
		return Allow()
	case ActionListProfiles:
		return Allow()
	case ActionCreateAccount, ActionDeactivateAccount:
		return Deny(ReasonAdminOnly)
	}
	return Deny(ReasonNoPolicy)
}
