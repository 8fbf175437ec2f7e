package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pawsync/api/internal/onboarding"
	"pawsync/api/internal/rbac"
	"pawsync/api/internal/search"
	"pawsync/api/internal/store"
	"pawsync/api/internal/timeline"
	"pawsync/api/internal/util"
)

// canAccessPet gates every pet-scoped read and write: the pet's owner,
// its assigned trainer, and admins.
func (s *Service) canAccessPet(session Session, pet store.Pet) bool {
	if rbac.Normalize(session.Role) == rbac.RoleAdmin {
		return true
	}
	if pet.OwnerUserID == session.UserID {
		return true
	}
	return pet.TrainerUserID != nil && *pet.TrainerUserID == session.UserID
}

// getAccessiblePet loads a pet and enforces access. Inaccessible pets
// read as not found so their existence is not leaked.
func (s *Service) getAccessiblePet(ctx context.Context, session Session, petID string) (store.Pet, error) {
	pet, err := s.store.GetPet(ctx, petID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Pet{}, errNotFound("Pet not found")
	}
	if err != nil {
		return store.Pet{}, err
	}
	if !s.canAccessPet(session, pet) {
		return store.Pet{}, errNotFound("Pet not found")
	}
	return pet, nil
}

type PetInput struct {
	Name         string `json:"name"`
	Species      string `json:"species"`
	Breed        string `json:"breed"`
	PhotoURL     string `json:"photoUrl"`
	TrainerEmail string `json:"trainerEmail"`
}

// CreatePet registers a pet for an owner. The trainer is resolved from
// the owner's workspace membership, or from an explicit trainer email
// when the owner has not joined a workspace. Creating the first pet
// completes owner onboarding.
func (s *Service) CreatePet(ctx context.Context, session Session, input PetInput) (map[string]any, error) {
	if !s.Can(session.Role, rbac.ActionSubmit) {
		return nil, errForbidden()
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errValidation("name is required")
	}

	pet := store.Pet{
		ID:          util.NewID("pet"),
		OwnerUserID: session.UserID,
		Name:        name,
		Species:     strings.TrimSpace(input.Species),
		Breed:       strings.TrimSpace(input.Breed),
		PhotoURL:    strings.TrimSpace(input.PhotoURL),
	}

	ws, err := s.store.FindWorkspaceForMember(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if ws != nil {
		pet.TrainerUserID = &ws.TrainerUserID
		pet.WorkspaceID = &ws.ID
	} else if trainerEmail := strings.TrimSpace(input.TrainerEmail); trainerEmail != "" {
		trainer, err := s.store.GetUserByEmail(ctx, trainerEmail)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errValidation("No trainer account with that email")
		}
		if err != nil {
			return nil, err
		}
		tws, err := s.store.GetWorkspaceByTrainer(ctx, trainer.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errValidation("That trainer has not set up a workspace yet")
		}
		if err != nil {
			return nil, err
		}
		pet.TrainerUserID = &trainer.ID
		pet.WorkspaceID = &tws.ID
	}

	if err := s.store.InsertPet(ctx, pet); err != nil {
		return nil, err
	}

	if complete, _ := onboarding.CreatedFirstPet(onboarding.Of(session.Role, session.Onboarded)); complete && !session.Onboarded {
		if err := s.store.SetOnboardingComplete(ctx, session.UserID, true); err != nil {
			return nil, err
		}
	}

	return petPayload(pet), nil
}

// ListPets returns the pets the caller can see: a trainer's caseload or
// an owner's own pets.
func (s *Service) ListPets(ctx context.Context, session Session) ([]map[string]any, error) {
	var (
		pets []store.Pet
		err  error
	)
	if rbac.Normalize(session.Role) == rbac.RoleTrainer {
		pets, err = s.store.ListPetsByTrainer(ctx, session.UserID)
	} else {
		pets, err = s.store.ListPetsByOwner(ctx, session.UserID)
	}
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(pets))
	for _, pet := range pets {
		out = append(out, petPayload(pet))
	}
	return out, nil
}

func (s *Service) GetPet(ctx context.Context, session Session, petID string) (map[string]any, error) {
	pet, err := s.getAccessiblePet(ctx, session, petID)
	if err != nil {
		return nil, err
	}
	return petPayload(pet), nil
}

type UpdatePetInput struct {
	Name     *string `json:"name"`
	Species  *string `json:"species"`
	Breed    *string `json:"breed"`
	PhotoURL *string `json:"photoUrl"`
}

func (s *Service) UpdatePet(ctx context.Context, session Session, petID string, input UpdatePetInput) (map[string]any, error) {
	pet, err := s.getAccessiblePet(ctx, session, petID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, errValidation("name cannot be empty")
		}
		pet.Name = strings.TrimSpace(*input.Name)
	}
	if input.Species != nil {
		pet.Species = strings.TrimSpace(*input.Species)
	}
	if input.Breed != nil {
		pet.Breed = strings.TrimSpace(*input.Breed)
	}
	if input.PhotoURL != nil {
		pet.PhotoURL = strings.TrimSpace(*input.PhotoURL)
	}
	if err := s.store.UpdatePet(ctx, pet); err != nil {
		return nil, err
	}
	return petPayload(pet), nil
}

type TaskInput struct {
	PetID         string   `json:"petId"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Frequency     string   `json:"frequency"`
	PreferredDays []string `json:"preferredDays"`
}

// CreateTask assigns homework to a pet. Trainer-side write.
func (s *Service) CreateTask(ctx context.Context, session Session, input TaskInput) (map[string]any, error) {
	if !s.Can(session.Role, rbac.ActionCoach) {
		return nil, errForbidden()
	}
	pet, err := s.getAccessiblePet(ctx, session, input.PetID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errValidation("title is required")
	}
	frequency := strings.TrimSpace(input.Frequency)
	if frequency == "" {
		frequency = "daily"
	}

	task := store.Task{
		ID:            util.NewID("task"),
		PetID:         pet.ID,
		CreatedBy:     session.UserID,
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		Frequency:     frequency,
		PreferredDays: normalizeDays(input.PreferredDays),
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.InsertTask(ctx, task); err != nil {
		return nil, err
	}

	if s.search != nil {
		s.search.IndexTask(search.TaskRecord{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
			PetID:       task.PetID,
		})
	}
	return s.taskPayload(ctx, task)
}

// ListTasks returns a pet's tasks with their attachments.
func (s *Service) ListTasks(ctx context.Context, session Session, petID string) ([]map[string]any, error) {
	if _, err := s.getAccessiblePet(ctx, session, petID); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasksByPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(tasks))
	for _, task := range tasks {
		payload, err := s.taskPayload(ctx, task)
		if err != nil {
			return nil, err
		}
		out = append(out, payload)
	}
	return out, nil
}

type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Frequency   *string `json:"frequency"`
	IsActive    *bool   `json:"isActive"`
}

// UpdateTask edits homework. Trainer-side write; deactivation goes
// through IsActive rather than deletion so history stays intact.
func (s *Service) UpdateTask(ctx context.Context, session Session, taskID string, input UpdateTaskInput) (map[string]any, error) {
	if !s.Can(session.Role, rbac.ActionCoach) {
		return nil, errForbidden()
	}
	task, err := s.getAccessibleTask(ctx, session, taskID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, errValidation("title cannot be empty")
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Frequency != nil {
		task.Frequency = strings.TrimSpace(*input.Frequency)
	}
	if input.IsActive != nil {
		task.IsActive = *input.IsActive
	}
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	if s.search != nil {
		s.search.IndexTask(search.TaskRecord{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
			PetID:       task.PetID,
		})
	}
	return s.taskPayload(ctx, task)
}

// SetPreferredDays lets the pet's owner pick which weekdays homework is
// practiced, overriding the task frequency in the calendar.
func (s *Service) SetPreferredDays(ctx context.Context, session Session, taskID string, days []string) (map[string]any, error) {
	if !s.Can(session.Role, rbac.ActionSubmit) {
		return nil, errForbidden()
	}
	task, err := s.getAccessibleTask(ctx, session, taskID)
	if err != nil {
		return nil, err
	}

	normalized := normalizeDays(days)
	for _, day := range normalized {
		if _, ok := timeline.ParseWeekday(day); !ok {
			return nil, errValidation("unknown weekday: " + day)
		}
	}
	if err := s.store.UpdateTaskPreferredDays(ctx, task.ID, normalized); err != nil {
		return nil, err
	}
	task.PreferredDays = normalized
	return s.taskPayload(ctx, task)
}

// getAccessibleTask loads a task and checks access through its pet.
func (s *Service) getAccessibleTask(ctx context.Context, session Session, taskID string) (store.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Task{}, errNotFound("Task not found")
	}
	if err != nil {
		return store.Task{}, err
	}
	if _, err := s.getAccessiblePet(ctx, session, task.PetID); err != nil {
		return store.Task{}, errNotFound("Task not found")
	}
	return task, nil
}

type SubmissionInput struct {
	TaskID string `json:"taskId"`
	Note   string `json:"note"`
}

// CreateSubmission records completed homework. Owner-side write.
// Submitting against a deactivated task is rejected outright; no row
// is written.
func (s *Service) CreateSubmission(ctx context.Context, session Session, input SubmissionInput) (map[string]any, error) {
	if !s.Can(session.Role, rbac.ActionSubmit) {
		return nil, errForbidden()
	}
	task, err := s.getAccessibleTask(ctx, session, input.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.IsActive {
		return nil, errValidation("This task is no longer active")
	}

	sub := store.Submission{
		ID:          util.NewID("sub"),
		TaskID:      task.ID,
		CreatedBy:   session.UserID,
		Note:        strings.TrimSpace(input.Note),
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.store.InsertSubmission(ctx, sub); err != nil {
		return nil, err
	}

	if s.search != nil {
		s.search.IndexSubmission(search.SubmissionRecord{
			ID:        sub.ID,
			Note:      sub.Note,
			TaskID:    task.ID,
			TaskTitle: task.Title,
			PetID:     task.PetID,
		})
	}
	return s.submissionPayload(ctx, sub)
}

// ListSubmissions returns a task's submissions, newest first, each with
// its comments and attachments.
func (s *Service) ListSubmissions(ctx context.Context, session Session, taskID string) ([]map[string]any, error) {
	if _, err := s.getAccessibleTask(ctx, session, taskID); err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubmissionsByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(subs))
	for _, sub := range subs {
		payload, err := s.submissionPayload(ctx, sub)
		if err != nil {
			return nil, err
		}
		out = append(out, payload)
	}
	return out, nil
}

// CreateComment posts trainer feedback on a submission.
func (s *Service) CreateComment(ctx context.Context, session Session, submissionID, body string) (map[string]any, error) {
	if !s.Can(session.Role, rbac.ActionCoach) {
		return nil, errForbidden()
	}
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("Submission not found")
	}
	if err != nil {
		return nil, err
	}
	task, err := s.getAccessibleTask(ctx, session, sub.TaskID)
	if err != nil {
		return nil, errNotFound("Submission not found")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errValidation("body is required")
	}

	comment := store.Comment{
		ID:           util.NewID("com"),
		SubmissionID: sub.ID,
		CreatedBy:    session.UserID,
		Body:         body,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.InsertComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.search != nil {
		s.search.IndexComment(search.CommentRecord{
			ID:           comment.ID,
			Body:         comment.Body,
			SubmissionID: sub.ID,
			TaskID:       task.ID,
			PetID:        task.PetID,
		})
	}
	return s.commentPayload(ctx, comment)
}

func normalizeDays(days []string) []string {
	out := make([]string, 0, len(days))
	seen := make(map[string]bool)
	for _, day := range days {
		day = strings.TrimSpace(day)
		if day == "" || seen[strings.ToLower(day)] {
			continue
		}
		seen[strings.ToLower(day)] = true
		out = append(out, day)
	}
	return out
}

func petPayload(pet store.Pet) map[string]any {
	payload := map[string]any{
		"id":       pet.ID,
		"ownerId":  pet.OwnerUserID,
		"name":     pet.Name,
		"species":  pet.Species,
		"breed":    pet.Breed,
		"photoUrl": pet.PhotoURL,
	}
	if pet.TrainerUserID != nil {
		payload["trainerId"] = *pet.TrainerUserID
	}
	if pet.WorkspaceID != nil {
		payload["workspaceId"] = *pet.WorkspaceID
	}
	return payload
}

func (s *Service) taskPayload(ctx context.Context, task store.Task) (map[string]any, error) {
	files, err := s.store.ListTaskMedia(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":            task.ID,
		"petId":         task.PetID,
		"createdBy":     task.CreatedBy,
		"title":         task.Title,
		"description":   task.Description,
		"frequency":     task.Frequency,
		"preferredDays": task.PreferredDays,
		"isActive":      task.IsActive,
		"createdAt":     task.CreatedAt,
		"media":         mediaPayload(files),
	}, nil
}

func (s *Service) submissionPayload(ctx context.Context, sub store.Submission) (map[string]any, error) {
	files, err := s.store.ListSubmissionMedia(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.ListCommentsBySubmission(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	commentPayloads := make([]map[string]any, 0, len(comments))
	for _, comment := range comments {
		payload, err := s.commentPayload(ctx, comment)
		if err != nil {
			return nil, err
		}
		commentPayloads = append(commentPayloads, payload)
	}
	return map[string]any{
		"id":          sub.ID,
		"taskId":      sub.TaskID,
		"createdBy":   sub.CreatedBy,
		"note":        sub.Note,
		"submittedAt": sub.SubmittedAt,
		"media":       mediaPayload(files),
		"comments":    commentPayloads,
	}, nil
}

func (s *Service) commentPayload(ctx context.Context, comment store.Comment) (map[string]any, error) {
	files, err := s.store.ListCommentMedia(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":           comment.ID,
		"submissionId": comment.SubmissionID,
		"createdBy":    comment.CreatedBy,
		"body":         comment.Body,
		"createdAt":    comment.CreatedAt,
		"media":        mediaPayload(files),
	}, nil
}

func mediaPayload(files []store.MediaFile) []map[string]any {
	out := make([]map[string]any, 0, len(files))
	for _, f := range files {
		out = append(out, map[string]any{
			"id":           f.ID,
			"fileName":     f.FileName,
			"originalName": f.OriginalName,
			"contentType":  f.ContentType,
			"sizeBytes":    f.SizeBytes,
			"url":          "/uploads/" + f.FileName,
		})
	}
	return out
}
