package rbac

type Role string
type Action string

const (
	RoleUnset   Role = ""
	RoleOwner   Role = "OWNER"
	RoleTrainer Role = "TRAINER"
	RoleAdmin   Role = "ADMIN"
)

const (
	// ActionSubmit covers owner-side writes: creating pets, submitting
	// homework, setting preferred days.
	ActionSubmit Action = "submit"
	// ActionCoach covers trainer-side writes: creating and editing
	// tasks, commenting on submissions, reading the invite token.
	ActionCoach Action = "coach"
	ActionAdmin Action = "admin"
)

func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleTrainer:
		return action == ActionCoach
	case RoleOwner:
		return action == ActionSubmit
	default:
		return false
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RoleOwner, RoleTrainer, RoleAdmin:
		return Role(role)
	default:
		return RoleUnset
	}
}
