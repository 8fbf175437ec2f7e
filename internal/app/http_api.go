package app

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"pawsync/api/internal/media"
	"pawsync/api/internal/observability"
)

func (s *HTTPServer) handleAuthed(w http.ResponseWriter, r *http.Request, session Session, parts []string) {
	if r.Method == http.MethodGet && r.URL.Path == "/api/me" {
		payload, err := s.service.Profile(r.Context(), session)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodPut && r.URL.Path == "/api/me" {
		var body UpdateProfileInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.UpdateProfile(r.Context(), session, body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/workspaces/trainer-profile" {
		var body TrainerProfileInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.SetTrainerProfile(r.Context(), session, body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/workspaces/invite" {
		payload, err := s.service.InviteToken(r.Context(), session)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/workspaces/invite/send" {
		var body struct {
			Email string `json:"email"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.SendInvite(r.Context(), session, body.Email)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/workspaces/join" {
		var body struct {
			Token string `json:"token"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.JoinWorkspace(r.Context(), session, body.Token)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/workspaces/members" {
		items, err := s.service.ListWorkspaceMembers(r.Context(), session)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": items})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/pets" {
		items, err := s.service.ListPets(r.Context(), session)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pets": items})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/pets" {
		var body PetInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CreatePet(r.Context(), session, body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "pets" {
		petID := parts[2]
		switch {
		case r.Method == http.MethodGet && len(parts) == 3:
			payload, err := s.service.GetPet(r.Context(), session, petID)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case r.Method == http.MethodPatch && len(parts) == 3:
			var body UpdatePetInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.UpdatePet(r.Context(), session, petID, body)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case r.Method == http.MethodGet && len(parts) == 4 && parts[3] == "tasks":
			items, err := s.service.ListTasks(r.Context(), session, petID)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"tasks": items})
			return
		}
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/tasks" {
		var body TaskInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CreateTask(r.Context(), session, body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "tasks" {
		taskID := parts[2]
		switch {
		case r.Method == http.MethodPatch && len(parts) == 3:
			var body UpdateTaskInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.UpdateTask(r.Context(), session, taskID, body)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case r.Method == http.MethodPatch && len(parts) == 4 && parts[3] == "preferred-days":
			var body struct {
				PreferredDays []string `json:"preferredDays"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.SetPreferredDays(r.Context(), session, taskID, body.PreferredDays)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case r.Method == http.MethodPost && len(parts) == 4 && parts[3] == "media":
			s.handleUpload(w, r, session, "task", taskID)
			return
		case r.Method == http.MethodGet && len(parts) == 4 && parts[3] == "submissions":
			items, err := s.service.ListSubmissions(r.Context(), session, taskID)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"submissions": items})
			return
		}
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/submissions" {
		var body SubmissionInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CreateSubmission(r.Context(), session, body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	if r.Method == http.MethodPost && len(parts) == 4 && parts[0] == "api" && parts[1] == "submissions" && parts[3] == "comment" {
		s.handleComment(w, r, session, parts[2])
		return
	}

	if r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "api" && parts[1] == "timeline" {
		grouped := strings.EqualFold(r.URL.Query().Get("grouped"), "week")
		payload, err := s.service.Timeline(r.Context(), session, parts[2], grouped)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "api" && parts[1] == "calendar" {
		month := strings.TrimSpace(r.URL.Query().Get("month"))
		payload, err := s.service.Calendar(r.Context(), session, parts[2], month)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		filterType := strings.TrimSpace(r.URL.Query().Get("type"))
		petID := strings.TrimSpace(r.URL.Query().Get("petId"))
		limit := 20
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", nil)
				return
			}
			limit = parsed
		}
		offset := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "offset must be an integer", nil)
				return
			}
			offset = parsed
		}
		payload, err := s.service.Search(r.Context(), session, q, filterType, petID, limit, offset)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/upload" {
		parentType := strings.TrimSpace(r.URL.Query().Get("type"))
		parentID := strings.TrimSpace(r.URL.Query().Get("parentId"))
		s.handleUpload(w, r, session, parentType, parentID)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// handleUpload accepts a multipart form and attaches every file part to
// the given parent record.
func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request, session Session, parentType, parentID string) {
	uploads, closeAll, err := parseUploads(r)
	if err != nil {
		observability.RecordUpload("rejected")
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	defer closeAll()

	if len(uploads) == 0 {
		observability.RecordUpload("rejected")
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No files in upload", nil)
		return
	}

	files, err := s.service.AttachMedia(r.Context(), session, parentType, parentID, uploads)
	if err != nil {
		observability.RecordUpload("failed")
		writeMappedError(w, err)
		return
	}
	observability.RecordUpload("stored")
	writeJSON(w, http.StatusCreated, map[string]any{"files": files})
}

// handleComment creates a trainer comment on a submission. The body is
// multipart so feedback text and media can travel together; a plain
// JSON body with just the text also works.
func (s *HTTPServer) handleComment(w http.ResponseWriter, r *http.Request, session Session, submissionID string) {
	contentType := r.Header.Get("Content-Type")

	if !strings.HasPrefix(contentType, "multipart/") {
		var body struct {
			Body string `json:"body"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CreateComment(r.Context(), session, submissionID, body.Body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	if err := r.ParseMultipartForm(media.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid multipart body", nil)
		return
	}
	text := r.FormValue("body")

	payload, err := s.service.CreateComment(r.Context(), session, submissionID, text)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	uploads, closeAll, err := parseUploads(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	defer closeAll()

	if len(uploads) > 0 {
		commentID, _ := payload["id"].(string)
		files, err := s.service.AttachMedia(r.Context(), session, "comment", commentID, uploads)
		if err != nil {
			observability.RecordUpload("failed")
			writeMappedError(w, err)
			return
		}
		observability.RecordUpload("stored")
		payload["media"] = files
	}

	writeJSON(w, http.StatusCreated, payload)
}

func parseUploads(r *http.Request) ([]Upload, func(), error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(media.MaxUploadBytes); err != nil {
			return nil, func() {}, err
		}
	}

	var uploads []Upload
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				closeAll()
				return nil, func() {}, err
			}
			opened = append(opened, file)
			uploads = append(uploads, Upload{
				OriginalName: header.Filename,
				ContentType:  header.Header.Get("Content-Type"),
				Size:         header.Size,
				Body:         file,
			})
		}
	}
	return uploads, closeAll, nil
}

func (s *HTTPServer) handleServeUpload(w http.ResponseWriter, r *http.Request, name string) {
	object, err := s.service.OpenMedia(r.Context(), name)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	defer object.Reader.Close()

	w.Header().Set("Content-Type", object.ContentType)
	if object.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(object.Size, 10))
	}
	// Allows the SPA, served from another origin, to embed stored media.
	w.Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = io.Copy(w, object.Reader)
}
