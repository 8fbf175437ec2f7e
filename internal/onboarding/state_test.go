package onboarding

import "testing"

func TestOf(t *testing.T) {
	cases := []struct {
		role     string
		complete bool
		want     State
	}{
		{"", false, StateUnset},
		{"", true, StateUnset},
		{"OWNER", false, StateOwnerOnboarding},
		{"OWNER", true, StateActive},
		{"TRAINER", false, StateTrainerOnboarding},
		{"TRAINER", true, StateActive},
		{"ADMIN", false, StateActive},
	}
	for _, tc := range cases {
		if got := Of(tc.role, tc.complete); got != tc.want {
			t.Errorf("Of(%q, %v) = %v, want %v", tc.role, tc.complete, got, tc.want)
		}
	}
}

func TestJoinedWorkspaceResetsOnboarding(t *testing.T) {
	for _, current := range []State{StateUnset, StateOwnerOnboarding, StateActive} {
		role, complete, next := JoinedWorkspace(current)
		if role != "OWNER" || complete || next != StateOwnerOnboarding {
			t.Errorf("JoinedWorkspace(%v) = (%q, %v, %v)", current, role, complete, next)
		}
	}
}

func TestSetTrainerProfileActivates(t *testing.T) {
	role, complete, next := SetTrainerProfile(StateUnset)
	if role != "TRAINER" || !complete || next != StateActive {
		t.Errorf("SetTrainerProfile = (%q, %v, %v)", role, complete, next)
	}
}

func TestCreatedFirstPet(t *testing.T) {
	if complete, next := CreatedFirstPet(StateOwnerOnboarding); !complete || next != StateActive {
		t.Errorf("owner onboarding should complete, got (%v, %v)", complete, next)
	}
	if complete, next := CreatedFirstPet(StateUnset); complete || next != StateUnset {
		t.Errorf("unset state should be unchanged, got (%v, %v)", complete, next)
	}
}
