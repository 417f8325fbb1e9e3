package authz_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/clinicore/clinic-api/internal/authz"
	"github.com/clinicore/clinic-api/internal/model"
)

func newActor(role model.Role, profileID uuid.UUID, active bool) *authz.Actor {
	return &authz.Actor{
		Account: &model.Account{
			Base:   model.NewBase(),
			Name:   "Test Actor",
			Email:  "actor@example.com",
			Role:   role,
			Active: active,
		},
		ProfileID: profileID,
	}
}

func TestInactiveAccountDeniedEverything(t *testing.T) {
	engine := authz.NewEngine()
	profileID := uuid.New()

	for _, role := range []model.Role{model.RolePatient, model.RoleProfessional, model.RoleAdmin} {
		actor := newActor(role, profileID, false)
		for _, action := range authz.Actions {
			decision := engine.Authorize(actor, action, authz.ResourceRef{
				PatientID:      profileID,
				ProfessionalID: profileID,
			})
			assert.False(t, decision.Allowed, "role %s action %s", role, action)
			assert.Equal(t, authz.ReasonInactiveAccount, decision.Reason)
		}
	}
}

func TestNilActorDenied(t *testing.T) {
	engine := authz.NewEngine()

	decision := engine.Authorize(nil, authz.ActionReadProfile, authz.ResourceRef{})
	assert.False(t, decision.Allowed)
	assert.Equal(t, authz.ReasonInactiveAccount, decision.Reason)

	decision = engine.Authorize(&authz.Actor{}, authz.ActionReadProfile, authz.ResourceRef{})
	assert.False(t, decision.Allowed)
}

func TestAdminAllowedEverything(t *testing.T) {
	engine := authz.NewEngine()
	admin := newActor(model.RoleAdmin, uuid.New(), true)

	for _, action := range authz.Actions {
		decision := engine.Authorize(admin, action, authz.ResourceRef{
			PatientID:      uuid.New(),
			ProfessionalID: uuid.New(),
		})
		assert.True(t, decision.Allowed, "action %s", action)
	}
}

func TestPatientSelfScope(t *testing.T) {
	engine := authz.NewEngine()
	own := uuid.New()
	patient := newActor(model.RolePatient, own, true)

	selfScoped := []authz.Action{
		authz.ActionReadProfile,
		authz.ActionUpdateProfile,
		authz.ActionReadAppointment,
		authz.ActionUpdateAppointment,
		authz.ActionListAppointments,
		authz.ActionReadRecord,
		authz.ActionListRecords,
	}

	for _, action := range selfScoped {
		decision := engine.Authorize(patient, action, authz.ResourceRef{PatientID: own})
		assert.True(t, decision.Allowed, "own resource, action %s", action)

		decision = engine.Authorize(patient, action, authz.ResourceRef{PatientID: uuid.New()})
		assert.False(t, decision.Allowed, "foreign resource, action %s", action)
		assert.Equal(t, authz.ReasonNotOwnPatient, decision.Reason)
	}
}

func TestPatientDeniedWrites(t *testing.T) {
	engine := authz.NewEngine()
	patient := newActor(model.RolePatient, uuid.New(), true)

	decision := engine.Authorize(patient, authz.ActionCreateAppointment, authz.ResourceRef{PatientID: patient.ProfileID})
	assert.False(t, decision.Allowed)

	for _, action := range []authz.Action{authz.ActionCreateRecord, authz.ActionUpdateRecord} {
		decision = engine.Authorize(patient, action, authz.ResourceRef{PatientID: patient.ProfileID})
		assert.False(t, decision.Allowed, "action %s", action)
	}

	for _, action := range []authz.Action{authz.ActionCreateAccount, authz.ActionDeactivateAccount} {
		decision = engine.Authorize(patient, action, authz.ResourceRef{})
		assert.False(t, decision.Allowed, "action %s", action)
		assert.Equal(t, authz.ReasonAdminOnly, decision.Reason)
	}
}

func TestPatientMayBrowseDirectory(t *testing.T) {
	engine := authz.NewEngine()
	patient := newActor(model.RolePatient, uuid.New(), true)

	decision := engine.Authorize(patient, authz.ActionListProfiles, authz.ResourceRef{})
	assert.True(t, decision.Allowed)
}

func TestProfessionalAssignmentScope(t *testing.T) {
	engine := authz.NewEngine()
	own := uuid.New()
	professional := newActor(model.RoleProfessional, own, true)

	scoped := []authz.Action{
		authz.ActionReadAppointment,
		authz.ActionUpdateAppointment,
		authz.ActionListAppointments,
		authz.ActionCreateRecord,
		authz.ActionReadRecord,
		authz.ActionUpdateRecord,
		authz.ActionListRecords,
		authz.ActionReadProfile,
		authz.ActionUpdateProfile,
	}

	for _, action := range scoped {
		decision := engine.Authorize(professional, action, authz.ResourceRef{ProfessionalID: own})
		assert.True(t, decision.Allowed, "own assignment, action %s", action)

		decision = engine.Authorize(professional, action, authz.ResourceRef{ProfessionalID: uuid.New()})
		assert.False(t, decision.Allowed, "foreign assignment, action %s", action)
		assert.Equal(t, authz.ReasonNotAssigned, decision.Reason)
	}
}

func TestProfessionalMayBookAnyPatient(t *testing.T) {
	engine := authz.NewEngine()
	professional := newActor(model.RoleProfessional, uuid.New(), true)

	decision := engine.Authorize(professional, authz.ActionCreateAppointment, authz.ResourceRef{
		PatientID:      uuid.New(),
		ProfessionalID: professional.ProfileID,
	})
	assert.True(t, decision.Allowed)
}

func TestProfessionalDeniedAccountManagement(t *testing.T) {
	engine := authz.NewEngine()
	professional := newActor(model.RoleProfessional, uuid.New(), true)

	for _, action := range []authz.Action{authz.ActionCreateAccount, authz.ActionDeactivateAccount} {
		decision := engine.Authorize(professional, action, authz.ResourceRef{})
		assert.False(t, decision.Allowed, "action %s", action)
		assert.Equal(t, authz.ReasonAdminOnly, decision.Reason)
	}
}

func TestUnknownCombinationsDefaultDeny(t *testing.T) {
	engine := authz.NewEngine()

	unknown := newActor(model.Role("receptionist"), uuid.New(), true)
	decision := engine.Authorize(unknown, authz.ActionReadProfile, authz.ResourceRef{})
	assert.False(t, decision.Allowed)
	assert.Equal(t, authz.ReasonNoPolicy, decision.Reason)

	patient := newActor(model.RolePatient, uuid.New(), true)
	decision = engine.Authorize(patient, authz.Action("drop_tables"), authz.ResourceRef{})
	assert.False(t, decision.Allowed)
	assert.Equal(t, authz.ReasonNoPolicy, decision.Reason)
}

func TestEveryActionHasAnOutcomeForEveryRole(t *testing.T) {
	engine := authz.NewEngine()
	profileID := uuid.New()

	for _, role := range []model.Role{model.RolePatient, model.RoleProfessional, model.RoleAdmin} {
		actor := newActor(role, profileID, true)
		for _, action := range authz.Actions {
			decision := engine.Authorize(actor, action, authz.ResourceRef{
				PatientID:      profileID,
				ProfessionalID: profileID,
			})
			if !decision.Allowed {
				assert.NotEmpty(t, decision.Reason, "role %s action %s", role, action)
			}
		}
	}
}
