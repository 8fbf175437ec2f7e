package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"pawsync/api/internal/onboarding"
	"pawsync/api/internal/rbac"
	"pawsync/api/internal/store"
	"pawsync/api/internal/util"
)

// Profile returns the caller's account plus workspace context.
func (s *Service) Profile(ctx context.Context, session Session) (map[string]any, error) {
	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"id":                 user.ID,
		"email":              user.Email,
		"firstName":          user.FirstName,
		"lastName":           user.LastName,
		"displayName":        user.DisplayName,
		"photoUrl":           user.PhotoURL,
		"role":               user.Role,
		"onboardingComplete": user.OnboardingComplete,
		"onboardingState":    string(onboarding.Of(user.Role, user.OnboardingComplete)),
	}

	if rbac.Normalize(user.Role) == rbac.RoleTrainer {
		ws, err := s.store.GetWorkspaceByTrainer(ctx, user.ID)
		if err == nil {
			payload["workspace"] = workspacePayload(ws)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	} else {
		ws, err := s.store.FindWorkspaceForMember(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if ws != nil {
			payload["workspace"] = workspacePayload(*ws)
		}
	}

	return payload, nil
}

type UpdateProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	PhotoURL  string `json:"photoUrl"`
}

// UpdateProfile edits the caller's name and photo. The display name is
// recomputed in the store from first and last name.
func (s *Service) UpdateProfile(ctx context.Context, session Session, input UpdateProfileInput) (map[string]any, error) {
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" {
		return nil, errValidation("firstName is required")
	}
	if err := s.store.UpdateUserProfile(ctx, session.UserID, first, last, strings.TrimSpace(input.PhotoURL)); err != nil {
		return nil, err
	}
	return s.Profile(ctx, session)
}

type TrainerProfileInput struct {
	DisplayName  string `json:"displayName"`
	BusinessName string `json:"businessName"`
	Bio          string `json:"bio"`
	PhotoURL     string `json:"photoUrl"`
}

// SetTrainerProfile completes trainer onboarding: it splits the display
// name into first and last, promotes the account to TRAINER, marks
// onboarding complete, and creates the trainer's workspace with its
// invite token if one does not exist yet. The token is generated once
// and never rotated.
func (s *Service) SetTrainerProfile(ctx context.Context, session Session, input TrainerProfileInput) (map[string]any, error) {
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return nil, errValidation("displayName is required")
	}

	// First token is the first name, everything after it the last.
	first, last := splitDisplayName(displayName)
	if err := s.store.UpdateUserProfile(ctx, session.UserID, first, last, strings.TrimSpace(input.PhotoURL)); err != nil {
		return nil, err
	}

	role, complete, _ := onboarding.SetTrainerProfile(onboarding.Of(session.Role, session.Onboarded))
	if err := s.store.SetUserRole(ctx, session.UserID, role, complete); err != nil {
		return nil, err
	}

	ws, err := s.store.GetWorkspaceByTrainer(ctx, session.UserID)
	switch {
	case err == nil:
		if err := s.store.UpdateWorkspaceProfile(ctx, ws.ID, strings.TrimSpace(input.BusinessName), strings.TrimSpace(input.Bio)); err != nil {
			return nil, err
		}
		ws.BusinessName = strings.TrimSpace(input.BusinessName)
		ws.Bio = strings.TrimSpace(input.Bio)
	case errors.Is(err, sql.ErrNoRows):
		ws = store.Workspace{
			ID:            util.NewID("ws"),
			TrainerUserID: session.UserID,
			InviteToken:   util.NewInviteToken(),
			BusinessName:  strings.TrimSpace(input.BusinessName),
			Bio:           strings.TrimSpace(input.Bio),
		}
		if err := s.store.InsertWorkspace(ctx, ws); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return map[string]any{
		"role":               role,
		"onboardingComplete": complete,
		"workspace":          workspacePayload(ws),
	}, nil
}

// InviteToken returns the trainer's share link. Trainer only.
func (s *Service) InviteToken(ctx context.Context, session Session) (map[string]any, error) {
	if !s.Can(session.Role, rbac.ActionCoach) {
		return nil, errForbidden()
	}
	ws, err := s.store.GetWorkspaceByTrainer(ctx, session.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("No workspace yet; complete your trainer profile first")
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"inviteToken": ws.InviteToken,
		"inviteUrl":   s.cfg.PublicURL + "/join/" + ws.InviteToken,
	}, nil
}

// SendInvite emails the trainer's invite link to a client. No-op
// response when SMTP is not configured; the caller can still share the
// link manually.
func (s *Service) SendInvite(ctx context.Context, session Session, toEmail string) (map[string]any, error) {
	if !s.Can(session.Role, rbac.ActionCoach) {
		return nil, errForbidden()
	}
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return nil, errValidation("email is required")
	}
	ws, err := s.store.GetWorkspaceByTrainer(ctx, session.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("No workspace yet; complete your trainer profile first")
	}
	if err != nil {
		return nil, err
	}

	inviteURL := s.cfg.PublicURL + "/join/" + ws.InviteToken
	if s.SMTPConfigured() {
		if err := s.email.SendInviteEmail(toEmail, session.UserName, inviteURL); err != nil {
			log.Printf("invite: send to %s failed: %v", toEmail, err)
			return nil, domainError(502, "EMAIL_FAILED", "Could not send the invite email", nil)
		}
		return map[string]any{"sent": true}, nil
	}
	return map[string]any{"sent": false, "inviteUrl": inviteURL}, nil
}

// ValidateInviteToken resolves an invite link for the join page. Public.
func (s *Service) ValidateInviteToken(ctx context.Context, token string) (map[string]any, error) {
	ws, err := s.store.GetWorkspaceByToken(ctx, strings.TrimSpace(token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errInvalidToken("Invite link is invalid")
	}
	if err != nil {
		return nil, err
	}
	trainer, err := s.store.GetUserByID(ctx, ws.TrainerUserID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"workspaceId":  ws.ID,
		"businessName": ws.BusinessName,
		"bio":          ws.Bio,
		"trainerName":  trainer.DisplayName,
		"trainerPhoto": trainer.PhotoURL,
	}, nil
}

// JoinWorkspace adds the caller to the workspace behind an invite
// token. Joining is idempotent; a repeat join reports alreadyMember
// without touching the membership row. Every successful join, repeat
// or not, sets the caller's role to OWNER and restarts onboarding.
func (s *Service) JoinWorkspace(ctx context.Context, session Session, token string) (map[string]any, error) {
	ws, err := s.store.GetWorkspaceByToken(ctx, strings.TrimSpace(token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errInvalidToken("Invite link is invalid")
	}
	if err != nil {
		return nil, err
	}

	if ws.TrainerUserID == session.UserID {
		return nil, domainError(400, "SELF_JOIN", "You cannot join your own workspace", nil)
	}

	alreadyMember := false
	if _, err := s.store.GetMembership(ctx, ws.ID, session.UserID); err == nil {
		alreadyMember = true
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if !alreadyMember {
		member := store.WorkspaceMember{
			ID:          util.NewID("mem"),
			WorkspaceID: ws.ID,
			UserID:      session.UserID,
			Role:        string(rbac.RoleOwner),
		}
		if err := s.store.InsertMembership(ctx, member); err != nil {
			return nil, err
		}
	}

	role, complete, _ := onboarding.JoinedWorkspace(onboarding.Of(session.Role, session.Onboarded))
	if err := s.store.SetUserRole(ctx, session.UserID, role, complete); err != nil {
		return nil, err
	}

	return map[string]any{
		"workspace":     workspacePayload(ws),
		"alreadyMember": alreadyMember,
		"role":          role,
	}, nil
}

// ListWorkspaceMembers returns the trainer's clients.
func (s *Service) ListWorkspaceMembers(ctx context.Context, session Session) ([]map[string]any, error) {
	if !s.Can(session.Role, rbac.ActionCoach) {
		return nil, errForbidden()
	}
	ws, err := s.store.GetWorkspaceByTrainer(ctx, session.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("No workspace yet")
	}
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, ws.ID)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(members))
	for _, m := range members {
		out = append(out, map[string]any{
			"userId":      m.UserID,
			"email":       m.Email,
			"displayName": m.DisplayName,
			"photoUrl":    m.PhotoURL,
			"role":        m.Role,
			"joinedAt":    m.JoinedAt,
		})
	}
	return out, nil
}

func workspacePayload(ws store.Workspace) map[string]any {
	return map[string]any{
		"id":           ws.ID,
		"businessName": ws.BusinessName,
		"bio":          ws.Bio,
	}
}

func splitDisplayName(displayName string) (first, last string) {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
