package store

import "time"

type User struct {
	ID                    string
	Email                 string
	PasswordHash          string
	FirstName             string
	LastName              string
	DisplayName           string
	PhotoURL              string
	Role                  string
	OnboardingComplete    bool
	IsEmailVerified       bool
	VerificationToken     string
	VerificationExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Workspace struct {
	ID            string
	TrainerUserID string
	InviteToken   string
	BusinessName  string
	Bio           string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type WorkspaceMember struct {
	ID          string
	WorkspaceID string
	UserID      string
	Role        string
	JoinedAt    time.Time
}

// MemberDetail is a membership row joined with the member's user record.
type MemberDetail struct {
	WorkspaceMember
	Email       string
	DisplayName string
	PhotoURL    string
}

type Pet struct {
	ID            string
	OwnerUserID   string
	TrainerUserID *string
	WorkspaceID   *string
	Name          string
	Species       string
	Breed         string
	PhotoURL      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Task struct {
	ID            string
	PetID         string
	CreatedBy     string
	Title         string
	Description   string
	Frequency     string
	PreferredDays []string
	IsActive      bool
	CreatedAt     time.Time
}

type Submission struct {
	ID          string
	TaskID      string
	CreatedBy   string
	Note        string
	SubmittedAt time.Time
}

type Comment struct {
	ID           string
	SubmissionID string
	CreatedBy    string
	Body         string
	CreatedAt    time.Time
}

// MediaFile describes one stored upload. ParentID points at the owning
// task, submission, or comment depending on which table the row lives in.
type MediaFile struct {
	ID           string
	ParentID     string
	FileName     string
	OriginalName string
	ContentType  string
	SizeBytes    int64
	CreatedAt    time.Time
}
