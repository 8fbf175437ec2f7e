// Package onboarding models the role/onboarding lifecycle of a user as
// an explicit state machine instead of scattered flag checks.
package onboarding

import "pawsync/api/internal/rbac"

type State string

const (
	// StateUnset is a signed-in user who has neither joined a workspace
	// nor set up a trainer profile.
	StateUnset State = "UNSET"
	// StateOwnerOnboarding is an owner who joined a workspace but has
	// not created their first pet yet.
	StateOwnerOnboarding State = "OWNER_ONBOARDING"
	// StateTrainerOnboarding is reserved for a trainer mid profile
	// setup; the profile upsert completes onboarding in one step, so
	// this state is only ever observed transiently.
	StateTrainerOnboarding State = "TRAINER_ONBOARDING"
	StateActive            State = "ACTIVE"
)

// Of derives the state from the persisted role and onboarding flag.
func Of(role string, onboardingComplete bool) State {
	switch rbac.Normalize(role) {
	case rbac.RoleAdmin:
		return StateActive
	case rbac.RoleTrainer:
		if onboardingComplete {
			return StateActive
		}
		return StateTrainerOnboarding
	case rbac.RoleOwner:
		if onboardingComplete {
			return StateActive
		}
		return StateOwnerOnboarding
	default:
		return StateUnset
	}
}

// JoinedWorkspace is the transition taken when a user redeems an invite
// token. Re-joining resets an active owner back to onboarding, which
// routes the client through pet creation again.
func JoinedWorkspace(State) (role string, onboardingComplete bool, next State) {
	return string(rbac.RoleOwner), false, StateOwnerOnboarding
}

// SetTrainerProfile is the transition taken when a user submits the
// trainer profile form.
func SetTrainerProfile(State) (role string, onboardingComplete bool, next State) {
	return string(rbac.RoleTrainer), true, StateActive
}

// CreatedFirstPet completes owner onboarding. Any other state is left
// unchanged.
func CreatedFirstPet(current State) (onboardingComplete bool, next State) {
	if current == StateOwnerOnboarding {
		return true, StateActive
	}
	return current == StateActive, current
}
