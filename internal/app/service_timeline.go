package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"

	"pawsync/api/internal/media"
	"pawsync/api/internal/search"
	"pawsync/api/internal/store"
	"pawsync/api/internal/timeline"
	"pawsync/api/internal/util"
)

// Timeline returns the pet's unified activity feed, newest first, with
// optional week grouping for the client's feed view.
func (s *Service) Timeline(ctx context.Context, session Session, petID string, grouped bool) (map[string]any, error) {
	if _, err := s.getAccessiblePet(ctx, session, petID); err != nil {
		return nil, err
	}

	tasks, err := s.store.ListTasksByPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubmissionsByPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.ListCommentsByPet(ctx, petID)
	if err != nil {
		return nil, err
	}

	items := timeline.Build(tasks, subs, comments)
	payload := map[string]any{
		"petId": petID,
		"items": items,
	}
	if grouped {
		payload["weeks"] = timeline.GroupByWeek(time.Now(), items)
	}
	return payload, nil
}

// Calendar classifies every day of the requested month for a pet.
// month is "YYYY-MM"; empty means the current month.
func (s *Service) Calendar(ctx context.Context, session Session, petID, month string) (map[string]any, error) {
	if _, err := s.getAccessiblePet(ctx, session, petID); err != nil {
		return nil, err
	}

	now := time.Now()
	ref := now
	if month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, errValidation("month must be formatted YYYY-MM")
		}
		ref = parsed
	}

	tasks, err := s.store.ListTasksByPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubmissionsByPet(ctx, petID)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"petId": petID,
		"month": ref.Format("2006-01"),
		"days":  timeline.MonthStatuses(ref, now, tasks, subs),
	}, nil
}

// Search runs a full-text query over the caller's accessible pets.
func (s *Service) Search(ctx context.Context, session Session, text, typeFilter, petID string, limit, offset int) (search.Response, error) {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}, nil
	}

	pets, err := s.ListPets(ctx, session)
	if err != nil {
		return search.Response{}, err
	}
	petIDs := make([]string, 0, len(pets))
	for _, pet := range pets {
		petIDs = append(petIDs, pet["id"].(string))
	}
	if petID != "" {
		found := false
		for _, id := range petIDs {
			if id == petID {
				found = true
				break
			}
		}
		if !found {
			return search.Response{}, errNotFound("Pet not found")
		}
	}

	return s.search.Search(search.Query{
		Text:        strings.TrimSpace(text),
		FilterType:  search.ResultType(typeFilter),
		FilterPetID: petID,
		PetIDs:      petIDs,
		Limit:       limit,
		Offset:      offset,
	}), nil
}

// Upload is one incoming multipart file.
type Upload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// AttachMedia validates and stores uploads against a task, submission,
// or comment. Files are written one at a time; a failure partway
// through returns an error without undoing files already attached.
func (s *Service) AttachMedia(ctx context.Context, session Session, parentType, parentID string, uploads []Upload) ([]map[string]any, error) {
	if s.media == nil {
		return nil, domainError(503, "UPLOADS_UNAVAILABLE", "File storage not configured", nil)
	}
	if len(uploads) == 0 {
		return nil, errValidation("no files in request")
	}

	insert, err := s.mediaParent(ctx, session, parentType, parentID)
	if err != nil {
		return nil, err
	}

	saved := make([]store.MediaFile, 0, len(uploads))
	for _, upload := range uploads {
		if err := media.ValidateUpload(upload.ContentType, upload.Size); err != nil {
			if errors.Is(err, media.ErrTooLarge) {
				return nil, errValidation("File exceeds the 50MB limit")
			}
			if errors.Is(err, media.ErrUnsupportedType) {
				return nil, errValidation("Only image and video files are accepted")
			}
			return nil, err
		}

		name := media.RandomName(upload.OriginalName)
		if err := s.media.Save(ctx, name, upload.ContentType, upload.Body, upload.Size); err != nil {
			return nil, err
		}

		file := store.MediaFile{
			ID:           util.NewID("med"),
			ParentID:     parentID,
			FileName:     name,
			OriginalName: upload.OriginalName,
			ContentType:  upload.ContentType,
			SizeBytes:    upload.Size,
		}
		if err := insert(ctx, file); err != nil {
			return nil, err
		}
		saved = append(saved, file)
	}

	return mediaPayload(saved), nil
}

// mediaParent checks access to the parent record and returns the
// matching insert function.
func (s *Service) mediaParent(ctx context.Context, session Session, parentType, parentID string) (func(context.Context, store.MediaFile) error, error) {
	switch parentType {
	case "task":
		if _, err := s.getAccessibleTask(ctx, session, parentID); err != nil {
			return nil, err
		}
		return s.store.InsertTaskMedia, nil
	case "submission":
		sub, err := s.store.GetSubmission(ctx, parentID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound("Submission not found")
		}
		if err != nil {
			return nil, err
		}
		if _, err := s.getAccessibleTask(ctx, session, sub.TaskID); err != nil {
			return nil, errNotFound("Submission not found")
		}
		return s.store.InsertSubmissionMedia, nil
	case "comment":
		comment, err := s.store.GetComment(ctx, parentID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound("Comment not found")
		}
		if err != nil {
			return nil, err
		}
		sub, err := s.store.GetSubmission(ctx, comment.SubmissionID)
		if err != nil {
			return nil, err
		}
		if _, err := s.getAccessibleTask(ctx, session, sub.TaskID); err != nil {
			return nil, errNotFound("Comment not found")
		}
		return s.store.InsertCommentMedia, nil
	default:
		return nil, errValidation("type must be task, submission, or comment")
	}
}

// OpenMedia streams a stored upload for the static file route.
func (s *Service) OpenMedia(ctx context.Context, name string) (*media.Object, error) {
	if s.media == nil {
		return nil, errNotFound("File not found")
	}
	obj, err := s.media.Open(ctx, name)
	if errors.Is(err, media.ErrNotFound) {
		return nil, errNotFound("File not found")
	}
	return obj, err
}
