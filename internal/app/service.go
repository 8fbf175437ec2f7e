package app

import (
	"context"
	"time"

	"pawsync/api/internal/auth"
	"pawsync/api/internal/authpw"
	"pawsync/api/internal/config"
	"pawsync/api/internal/email"
	"pawsync/api/internal/media"
	"pawsync/api/internal/rbac"
	"pawsync/api/internal/search"
	"pawsync/api/internal/store"
	"pawsync/api/internal/util"
)

// Session is the authenticated caller, parsed per request from the
// bearer token. It is passed explicitly into every service method that
// needs an identity; nothing here is process-global.
type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	Email        string
	UserName     string
	Role         string
	Onboarded    bool
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	GetUserByID(context.Context, string) (store.User, error)
	GetUserByEmail(context.Context, string) (store.User, error)
	UpdateUserProfile(ctx context.Context, userID, firstName, lastName, photoURL string) error
	SetUserRole(ctx context.Context, userID, role string, onboardingComplete bool) error
	SetOnboardingComplete(ctx context.Context, userID string, complete bool) error

	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)

	InsertWorkspace(context.Context, store.Workspace) error
	GetWorkspaceByTrainer(context.Context, string) (store.Workspace, error)
	GetWorkspaceByToken(context.Context, string) (store.Workspace, error)
	GetWorkspace(context.Context, string) (store.Workspace, error)
	UpdateWorkspaceProfile(ctx context.Context, workspaceID, businessName, bio string) error
	GetMembership(ctx context.Context, workspaceID, userID string) (store.WorkspaceMember, error)
	InsertMembership(context.Context, store.WorkspaceMember) error
	ListMembers(context.Context, string) ([]store.MemberDetail, error)
	FindWorkspaceForMember(context.Context, string) (*store.Workspace, error)

	InsertPet(context.Context, store.Pet) error
	GetPet(context.Context, string) (store.Pet, error)
	ListPetsByOwner(context.Context, string) ([]store.Pet, error)
	ListPetsByTrainer(context.Context, string) ([]store.Pet, error)
	UpdatePet(context.Context, store.Pet) error

	InsertTask(context.Context, store.Task) error
	GetTask(context.Context, string) (store.Task, error)
	ListTasksByPet(context.Context, string) ([]store.Task, error)
	UpdateTask(context.Context, store.Task) error
	UpdateTaskPreferredDays(ctx context.Context, taskID string, days []string) error

	InsertSubmission(context.Context, store.Submission) error
	GetSubmission(context.Context, string) (store.Submission, error)
	ListSubmissionsByTask(context.Context, string) ([]store.Submission, error)
	ListSubmissionsByPet(context.Context, string) ([]store.Submission, error)

	InsertComment(context.Context, store.Comment) error
	GetComment(context.Context, string) (store.Comment, error)
	ListCommentsBySubmission(context.Context, string) ([]store.Comment, error)
	ListCommentsByPet(context.Context, string) ([]store.Comment, error)

	InsertTaskMedia(context.Context, store.MediaFile) error
	InsertSubmissionMedia(context.Context, store.MediaFile) error
	InsertCommentMedia(context.Context, store.MediaFile) error
	ListTaskMedia(context.Context, string) ([]store.MediaFile, error)
	ListSubmissionMedia(context.Context, string) ([]store.MediaFile, error)
	ListCommentMedia(context.Context, string) ([]store.MediaFile, error)

	Ping(ctx context.Context) error
}

// sessionStore holds refresh tokens. Redis in production, the Postgres
// store when Redis is not configured.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash string, user store.User, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

// searchService is the slice of the search facade the app uses.
type searchService interface {
	Search(q search.Query) search.Response
	IndexTask(t search.TaskRecord)
	IndexSubmission(s search.SubmissionRecord)
	IndexComment(c search.CommentRecord)
}

// Dependencies bundles the optional collaborators wired in main.
type Dependencies struct {
	Sessions sessionStore // nil = refresh sessions in Postgres
	Auth     *authpw.Service
	Email    *email.Service
	Search   searchService
	Media    media.Store
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	authpw   *authpw.Service
	email    *email.Service
	search   searchService
	media    media.Store
}

func New(cfg config.Config, dataStore *store.PostgresStore, deps Dependencies) *Service {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = dataStore
	}
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: sessions,
		authpw:   deps.Auth,
		email:    deps.Email,
		search:   deps.Search,
		media:    deps.Media,
	}
}

// CreateSession issues access and refresh tokens for a signed-in user.
func (s *Service) CreateSession(ctx context.Context, userID string) (Session, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:       user.ID,
		Email:     user.Email,
		Name:      user.DisplayName,
		Role:      user.Role,
		Onboarded: user.OnboardingComplete,
		JTI:       jti,
		Exp:       expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		Email:        user.Email,
		UserName:     user.DisplayName,
		Role:         user.Role,
		Onboarded:    user.OnboardingComplete,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		UserName:  user.DisplayName,
		Role:      user.Role,
		Onboarded: user.OnboardingComplete,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) Can(role string, action rbac.Action) bool {
	return rbac.Can(rbac.Normalize(role), action)
}

func (s *Service) AuthPasswordService() *authpw.Service {
	return s.authpw
}

func (s *Service) SMTPConfigured() bool {
	return s.email != nil && s.email.IsConfigured()
}

// SendVerificationEmail mails the signup verification link. No-op when
// SMTP is not configured; the signup handler falls back to a dev token.
func (s *Service) SendVerificationEmail(toEmail, userName, token string) error {
	if !s.SMTPConfigured() {
		return nil
	}
	verifyURL := s.cfg.PublicURL + "/verify-email?token=" + token
	return s.email.SendVerificationEmail(toEmail, userName, verifyURL)
}

// SendPasswordResetEmail mails the password reset link. No-op when SMTP
// is not configured.
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	if !s.SMTPConfigured() {
		return nil
	}
	userName := toEmail
	if user, err := s.store.GetUserByEmail(ctx, toEmail); err == nil && user.DisplayName != "" {
		userName = user.DisplayName
	}
	resetURL := s.cfg.PublicURL + "/reset-password?token=" + token
	return s.email.SendPasswordResetEmail(toEmail, userName, resetURL)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
