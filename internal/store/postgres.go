package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const userColumns = `id, email, password_hash, first_name, last_name, display_name, photo_url,
	role, onboarding_complete, is_email_verified, verification_token, verification_expires_at,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.DisplayName, &u.PhotoURL,
		&u.Role, &u.OnboardingComplete, &u.IsEmailVerified, &u.VerificationToken, &u.VerificationExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, display_name, photo_url,
			role, onboarding_complete, is_email_verified, verification_token)
		VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.DisplayName,
		user.PhotoURL, user.Role, user.OnboardingComplete, user.IsEmailVerified, user.VerificationToken)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=LOWER($1)`, email)
	return scanUser(row)
}

func (s *PostgresStore) UpdateUserProfile(ctx context.Context, userID, firstName, lastName, photoURL string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET first_name=$2, last_name=$3,
			display_name=TRIM($2 || ' ' || $3),
			photo_url=CASE WHEN $4 <> '' THEN $4 ELSE photo_url END,
			updated_at=NOW()
		WHERE id=$1
	`, userID, firstName, lastName, photoURL)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetUserRole(ctx context.Context, userID, role string, onboardingComplete bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET role=$2, onboarding_complete=$3, updated_at=NOW() WHERE id=$1
	`, userID, role, onboardingComplete)
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetOnboardingComplete(ctx context.Context, userID string, complete bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET onboarding_complete=$2, updated_at=NOW() WHERE id=$1
	`, userID, complete)
	if err != nil {
		return fmt.Errorf("set onboarding flag: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateUserVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET verification_token=$2, verification_expires_at=$3, updated_at=NOW() WHERE id=$1
	`, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("update verification token: %w", err)
	}
	return nil
}

func (s *PostgresStore) VerifyUserEmail(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_email_verified=TRUE, verification_token='', verification_expires_at=NULL, updated_at=NOW()
		WHERE verification_token=$1 AND verification_token <> ''
			AND (verification_expires_at IS NULL OR verification_expires_at > NOW())
	`, token)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("verify email result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (token, user_id, expires_at) VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("create password reset: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPasswordReset(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM password_resets
		WHERE token=$1 AND used_at IS NULL AND expires_at > NOW()
	`, token).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *PostgresStore) MarkPasswordResetUsed(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE password_resets SET used_at=NOW() WHERE token=$1`, token)
	if err != nil {
		return fmt.Errorf("mark reset used: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash string, user User, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, user.ID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.display_name, u.photo_url,
			u.role, u.onboarding_complete, u.is_email_verified, u.verification_token, u.verification_expires_at,
			u.created_at, u.updated_at
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`, tokenHash))
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

func (s *PostgresStore) InsertWorkspace(ctx context.Context, ws Workspace) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workspaces (id, trainer_user_id, invite_token, business_name, bio)
		VALUES ($1, $2, $3, $4, $5)
	`, ws.ID, ws.TrainerUserID, ws.InviteToken, ws.BusinessName, ws.Bio)
	if err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	return nil
}

func scanWorkspace(row interface{ Scan(...any) error }) (Workspace, error) {
	var ws Workspace
	err := row.Scan(&ws.ID, &ws.TrainerUserID, &ws.InviteToken, &ws.BusinessName, &ws.Bio, &ws.CreatedAt, &ws.UpdatedAt)
	return ws, err
}

func (s *PostgresStore) GetWorkspaceByTrainer(ctx context.Context, trainerUserID string) (Workspace, error) {
	return scanWorkspace(s.db.QueryRowContext(ctx, `
		SELECT id, trainer_user_id, invite_token, business_name, bio, created_at, updated_at
		FROM workspaces WHERE trainer_user_id=$1
	`, trainerUserID))
}

func (s *PostgresStore) GetWorkspaceByToken(ctx context.Context, inviteToken string) (Workspace, error) {
	return scanWorkspace(s.db.QueryRowContext(ctx, `
		SELECT id, trainer_user_id, invite_token, business_name, bio, created_at, updated_at
		FROM workspaces WHERE invite_token=$1
	`, inviteToken))
}

func (s *PostgresStore) GetWorkspace(ctx context.Context, workspaceID string) (Workspace, error) {
	return scanWorkspace(s.db.QueryRowContext(ctx, `
		SELECT id, trainer_user_id, invite_token, business_name, bio, created_at, updated_at
		FROM workspaces WHERE id=$1
	`, workspaceID))
}

func (s *PostgresStore) UpdateWorkspaceProfile(ctx context.Context, workspaceID, businessName, bio string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE workspaces SET business_name=$2, bio=$3, updated_at=NOW() WHERE id=$1
	`, workspaceID, businessName, bio)
	if err != nil {
		return fmt.Errorf("update workspace profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMembership(ctx context.Context, workspaceID, userID string) (WorkspaceMember, error) {
	var m WorkspaceMember
	err := s.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, user_id, role, joined_at
		FROM workspace_members WHERE workspace_id=$1 AND user_id=$2
	`, workspaceID, userID).Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		return WorkspaceMember{}, err
	}
	return m, nil
}

func (s *PostgresStore) InsertMembership(ctx context.Context, member WorkspaceMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workspace_members (id, workspace_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
	`, member.ID, member.WorkspaceID, member.UserID, member.Role)
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, workspaceID string) ([]MemberDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wm.id, wm.workspace_id, wm.user_id, wm.role, wm.joined_at,
			u.email, u.display_name, u.photo_url
		FROM workspace_members wm
		JOIN users u ON u.id = wm.user_id
		WHERE wm.workspace_id=$1
		ORDER BY wm.joined_at
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := make([]MemberDetail, 0)
	for rows.Next() {
		var m MemberDetail
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt,
			&m.Email, &m.DisplayName, &m.PhotoURL); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// FindWorkspaceForMember returns the most recently joined workspace in
// which the user holds an OWNER membership, or nil if there is none.
// Used when an owner creates a pet and the trainer is resolved through
// workspace membership.
func (s *PostgresStore) FindWorkspaceForMember(ctx context.Context, userID string) (*Workspace, error) {
	ws, err := scanWorkspace(s.db.QueryRowContext(ctx, `
		SELECT w.id, w.trainer_user_id, w.invite_token, w.business_name, w.bio, w.created_at, w.updated_at
		FROM workspace_members wm
		JOIN workspaces w ON w.id = wm.workspace_id
		WHERE wm.user_id=$1 AND wm.role='OWNER'
		ORDER BY wm.joined_at DESC
		LIMIT 1
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find workspace for member: %w", err)
	}
	return &ws, nil
}

const petColumns = `id, owner_user_id, trainer_user_id, workspace_id, name, species, breed, photo_url, created_at, updated_at`

func scanPet(row interface{ Scan(...any) error }) (Pet, error) {
	var p Pet
	err := row.Scan(&p.ID, &p.OwnerUserID, &p.TrainerUserID, &p.WorkspaceID, &p.Name, &p.Species, &p.Breed, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *PostgresStore) InsertPet(ctx context.Context, pet Pet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pets (id, owner_user_id, trainer_user_id, workspace_id, name, species, breed, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, pet.ID, pet.OwnerUserID, pet.TrainerUserID, pet.WorkspaceID, pet.Name, pet.Species, pet.Breed, pet.PhotoURL)
	if err != nil {
		return fmt.Errorf("insert pet: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPet(ctx context.Context, petID string) (Pet, error) {
	return scanPet(s.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id=$1`, petID))
}

func (s *PostgresStore) ListPetsByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.listPets(ctx, `SELECT `+petColumns+` FROM pets WHERE owner_user_id=$1 ORDER BY created_at`, ownerUserID)
}

func (s *PostgresStore) ListPetsByTrainer(ctx context.Context, trainerUserID string) ([]Pet, error) {
	return s.listPets(ctx, `SELECT `+petColumns+` FROM pets WHERE trainer_user_id=$1 ORDER BY created_at`, trainerUserID)
}

func (s *PostgresStore) listPets(ctx context.Context, query string, args ...any) ([]Pet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	defer rows.Close()

	pets := make([]Pet, 0)
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pet: %w", err)
		}
		pets = append(pets, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pets: %w", err)
	}
	return pets, nil
}

func (s *PostgresStore) UpdatePet(ctx context.Context, pet Pet) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pets
		SET trainer_user_id=$2, workspace_id=$3, name=$4, species=$5, breed=$6, photo_url=$7, updated_at=NOW()
		WHERE id=$1
	`, pet.ID, pet.TrainerUserID, pet.WorkspaceID, pet.Name, pet.Species, pet.Breed, pet.PhotoURL)
	if err != nil {
		return fmt.Errorf("update pet: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertTask(ctx context.Context, task Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, pet_id, created_by, title, description, frequency, preferred_days, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, task.ID, task.PetID, task.CreatedBy, task.Title, task.Description, task.Frequency, joinDays(task.PreferredDays), task.IsActive, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var t Task
	var days string
	err := row.Scan(&t.ID, &t.PetID, &t.CreatedBy, &t.Title, &t.Description, &t.Frequency, &days, &t.IsActive, &t.CreatedAt)
	if err != nil {
		return Task{}, err
	}
	t.PreferredDays = splitDays(days)
	return t, nil
}

const taskColumns = `id, pet_id, created_by, title, description, frequency, preferred_days, is_active, created_at`

func (s *PostgresStore) GetTask(ctx context.Context, taskID string) (Task, error) {
	return scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1`, taskID))
}

func (s *PostgresStore) ListTasksByPet(ctx context.Context, petID string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE pet_id=$1 ORDER BY created_at DESC
	`, petID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, task Task) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title=$2, description=$3, frequency=$4, is_active=$5 WHERE id=$1
	`, task.ID, task.Title, task.Description, task.Frequency, task.IsActive)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateTaskPreferredDays(ctx context.Context, taskID string, days []string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET preferred_days=$2 WHERE id=$1`, taskID, joinDays(days))
	if err != nil {
		return fmt.Errorf("update preferred days: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertSubmission(ctx context.Context, sub Submission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, task_id, created_by, note, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sub.ID, sub.TaskID, sub.CreatedBy, sub.Note, sub.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSubmission(ctx context.Context, submissionID string) (Submission, error) {
	var sub Submission
	err := s.db.QueryRowContext(ctx, `
		SELECT id, task_id, created_by, note, submitted_at FROM submissions WHERE id=$1
	`, submissionID).Scan(&sub.ID, &sub.TaskID, &sub.CreatedBy, &sub.Note, &sub.SubmittedAt)
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (s *PostgresStore) ListSubmissionsByTask(ctx context.Context, taskID string) ([]Submission, error) {
	return s.listSubmissions(ctx, `
		SELECT id, task_id, created_by, note, submitted_at
		FROM submissions WHERE task_id=$1 ORDER BY submitted_at DESC
	`, taskID)
}

func (s *PostgresStore) ListSubmissionsByPet(ctx context.Context, petID string) ([]Submission, error) {
	return s.listSubmissions(ctx, `
		SELECT sub.id, sub.task_id, sub.created_by, sub.note, sub.submitted_at
		FROM submissions sub
		JOIN tasks t ON t.id = sub.task_id
		WHERE t.pet_id=$1
		ORDER BY sub.submitted_at DESC
	`, petID)
}

func (s *PostgresStore) listSubmissions(ctx context.Context, query string, args ...any) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]Submission, 0)
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.TaskID, &sub.CreatedBy, &sub.Note, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

func (s *PostgresStore) InsertComment(ctx context.Context, comment Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, submission_id, created_by, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, comment.ID, comment.SubmissionID, comment.CreatedBy, comment.Body, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetComment(ctx context.Context, commentID string) (Comment, error) {
	var c Comment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, submission_id, created_by, body, created_at
		FROM comments WHERE id=$1
	`, commentID).Scan(&c.ID, &c.SubmissionID, &c.CreatedBy, &c.Body, &c.CreatedAt)
	return c, err
}

func (s *PostgresStore) ListCommentsBySubmission(ctx context.Context, submissionID string) ([]Comment, error) {
	return s.listComments(ctx, `
		SELECT id, submission_id, created_by, body, created_at
		FROM comments WHERE submission_id=$1 ORDER BY created_at
	`, submissionID)
}

func (s *PostgresStore) ListCommentsByPet(ctx context.Context, petID string) ([]Comment, error) {
	return s.listComments(ctx, `
		SELECT c.id, c.submission_id, c.created_by, c.body, c.created_at
		FROM comments c
		JOIN submissions sub ON sub.id = c.submission_id
		JOIN tasks t ON t.id = sub.task_id
		WHERE t.pet_id=$1
		ORDER BY c.created_at DESC
	`, petID)
}

func (s *PostgresStore) listComments(ctx context.Context, query string, args ...any) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.SubmissionID, &c.CreatedBy, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

func (s *PostgresStore) InsertTaskMedia(ctx context.Context, media MediaFile) error {
	return s.insertMedia(ctx, "task_media", "task_id", media)
}

func (s *PostgresStore) InsertSubmissionMedia(ctx context.Context, media MediaFile) error {
	return s.insertMedia(ctx, "submission_media", "submission_id", media)
}

func (s *PostgresStore) InsertCommentMedia(ctx context.Context, media MediaFile) error {
	return s.insertMedia(ctx, "comment_media", "comment_id", media)
}

func (s *PostgresStore) insertMedia(ctx context.Context, table, parentColumn string, media MediaFile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, file_name, original_name, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, table, parentColumn)
	_, err := s.db.ExecContext(ctx, query, media.ID, media.ParentID, media.FileName, media.OriginalName, media.ContentType, media.SizeBytes)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) ListTaskMedia(ctx context.Context, taskID string) ([]MediaFile, error) {
	return s.listMedia(ctx, "task_media", "task_id", taskID)
}

func (s *PostgresStore) ListSubmissionMedia(ctx context.Context, submissionID string) ([]MediaFile, error) {
	return s.listMedia(ctx, "submission_media", "submission_id", submissionID)
}

func (s *PostgresStore) ListCommentMedia(ctx context.Context, commentID string) ([]MediaFile, error) {
	return s.listMedia(ctx, "comment_media", "comment_id", commentID)
}

func (s *PostgresStore) listMedia(ctx context.Context, table, parentColumn, parentID string) ([]MediaFile, error) {
	query := fmt.Sprintf(`
		SELECT id, %s, file_name, original_name, content_type, size_bytes, created_at
		FROM %s WHERE %s=$1 ORDER BY created_at
	`, parentColumn, table, parentColumn)
	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	files := make([]MediaFile, 0)
	for rows.Next() {
		var m MediaFile
		if err := rows.Scan(&m.ID, &m.ParentID, &m.FileName, &m.OriginalName, &m.ContentType, &m.SizeBytes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		files = append(files, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return files, nil
}

// Preferred days are stored comma-joined; an empty string means unset.
func joinDays(days []string) string {
	return strings.Join(days, ",")
}

func splitDays(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	days := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			days = append(days, trimmed)
		}
	}
	return days
}
