package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pawsync/api/internal/auth"
	"pawsync/api/internal/authpw"
	"pawsync/api/internal/email"
	"pawsync/api/internal/store"
)

func newTestServer(fs *fakeStore) *HTTPServer {
	return NewHTTPServer(newTestService(fs), "*", nil)
}

func bearerFor(t *testing.T, user store.User) string {
	t.Helper()
	token, err := auth.IssueToken([]byte("test-secret"), auth.Claims{
		Sub:       user.ID,
		Email:     user.Email,
		Name:      user.DisplayName,
		Role:      user.Role,
		Onboarded: user.OnboardingComplete,
		JTI:       "jti_test",
		Exp:       time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	return "Bearer " + token
}

func trainerUser() store.User {
	return store.User{ID: "user_trainer", Email: "sarah@example.com", DisplayName: "Sarah Johnson", Role: "TRAINER", OnboardingComplete: true}
}

func ownerUser() store.User {
	return store.User{ID: "user_owner", Email: "dana@example.com", DisplayName: "Dana Reed", Role: "OWNER", OnboardingComplete: true}
}

func userFixture(user store.User) func(context.Context, string) (store.User, error) {
	return func(_ context.Context, userID string) (store.User, error) {
		if userID == user.ID {
			return user, nil
		}
		return store.User{}, sql.ErrNoRows
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	server := newTestServer(&fakeStore{})

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/pets"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/timeline/pet_1"},
		{http.MethodGet, "/api/search?q=sit"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		rr := httptest.NewRecorder()
		server.Handler().ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without a token, got %d", route.method, route.path, rr.Code)
		}
	}
}

func TestOwnerCannotCreateTasks(t *testing.T) {
	owner := ownerUser()
	fs := &fakeStore{getUserByIDFn: userFixture(owner)}
	server := newTestServer(fs)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(`{"petId":"pet_1","title":"Sit practice"}`))
	req.Header.Set("Authorization", bearerFor(t, owner))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body.String())
	}
	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response["code"] != "FORBIDDEN" {
		t.Errorf("expected code FORBIDDEN, got %v", response["code"])
	}
}

func TestTrainerCannotSubmitHomework(t *testing.T) {
	trainer := trainerUser()
	fs := &fakeStore{getUserByIDFn: userFixture(trainer)}
	server := newTestServer(fs)

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", strings.NewReader(`{"taskId":"task_1","note":"done"}`))
	req.Header.Set("Authorization", bearerFor(t, trainer))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestValidateInviteIsPublic(t *testing.T) {
	fs := &fakeStore{
		getWorkspaceByTokenFn: func(_ context.Context, token string) (store.Workspace, error) {
			if token != "tok-abc" {
				return store.Workspace{}, sql.ErrNoRows
			}
			return store.Workspace{ID: "ws_1", TrainerUserID: "user_trainer", InviteToken: token, BusinessName: "Happy Paws"}, nil
		},
		getUserByIDFn: userFixture(trainerUser()),
	}
	server := newTestServer(fs)

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces/validate/tok-abc", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response["trainerName"] != "Sarah Johnson" {
		t.Errorf("expected trainerName from the workspace owner, got %v", response["trainerName"])
	}
	if response["businessName"] != "Happy Paws" {
		t.Errorf("expected businessName Happy Paws, got %v", response["businessName"])
	}
}

func TestValidateInviteUnknownToken(t *testing.T) {
	server := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces/validate/nope", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response["code"] != "INVALID_TOKEN" {
		t.Errorf("expected code INVALID_TOKEN, got %v", response["code"])
	}
}

func TestTimelineEndpointOrdersNewestFirst(t *testing.T) {
	owner := ownerUser()
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	fs := &fakeStore{
		getUserByIDFn: userFixture(owner),
		getPetFn: func(_ context.Context, petID string) (store.Pet, error) {
			return store.Pet{ID: petID, OwnerUserID: owner.ID, Name: "Rex"}, nil
		},
		listTasksByPetFn: func(context.Context, string) ([]store.Task, error) {
			return []store.Task{{ID: "task_1", PetID: "pet_1", Title: "Sit practice", IsActive: true, CreatedAt: base}}, nil
		},
		listSubmissionsByPetFn: func(context.Context, string) ([]store.Submission, error) {
			return []store.Submission{{ID: "sub_1", TaskID: "task_1", SubmittedAt: base.Add(24 * time.Hour)}}, nil
		},
		listCommentsByPetFn: func(context.Context, string) ([]store.Comment, error) {
			return []store.Comment{{ID: "com_1", SubmissionID: "sub_1", Body: "Nice work", CreatedAt: base.Add(48 * time.Hour)}}, nil
		},
	}
	server := newTestServer(fs)

	req := httptest.NewRequest(http.MethodGet, "/api/timeline/pet_1", nil)
	req.Header.Set("Authorization", bearerFor(t, owner))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var response struct {
		PetID string `json:"petId"`
		Items []struct {
			Type string `json:"type"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(response.Items) != 3 {
		t.Fatalf("expected 3 timeline items, got %d", len(response.Items))
	}
	want := []string{"comment", "submission", "task"}
	for i, item := range response.Items {
		if item.Type != want[i] {
			t.Errorf("item %d: expected type %s, got %s", i, want[i], item.Type)
		}
	}
}

func TestCalendarEndpointRejectsBadMonth(t *testing.T) {
	owner := ownerUser()
	fs := &fakeStore{
		getUserByIDFn: userFixture(owner),
		getPetFn: func(_ context.Context, petID string) (store.Pet, error) {
			return store.Pet{ID: petID, OwnerUserID: owner.ID}, nil
		},
	}
	server := newTestServer(fs)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/pet_1?month=2026-3", nil)
	req.Header.Set("Authorization", bearerFor(t, owner))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSessionEndpointWithoutToken(t *testing.T) {
	server := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response["authenticated"] != false {
		t.Errorf("expected authenticated=false, got %v", response["authenticated"])
	}
}

// fakeAuthStore widens fakeStore with the account-credential writes the
// password service needs.
type fakeAuthStore struct{ *fakeStore }

func (f *fakeAuthStore) CreateUser(context.Context, store.User) error { return nil }
func (f *fakeAuthStore) UpdateUserVerificationToken(context.Context, string, string, time.Time) error {
	return nil
}
func (f *fakeAuthStore) VerifyUserEmail(context.Context, string) error            { return nil }
func (f *fakeAuthStore) UpdateUserPassword(context.Context, string, string) error { return nil }
func (f *fakeAuthStore) CreatePasswordReset(context.Context, string, string, time.Time) error {
	return nil
}
func (f *fakeAuthStore) GetPasswordReset(context.Context, string) (string, error) {
	return "", sql.ErrNoRows
}
func (f *fakeAuthStore) MarkPasswordResetUsed(context.Context, string) error { return nil }

func signUp(t *testing.T, server *HTTPServer) map[string]any {
	t.Helper()
	body := `{"email":"dana@example.com","password":"hunter2hunter2","displayName":"Dana Reed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return response
}

func TestSignUpReturnsDevTokenWithoutSMTP(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(fs)
	svc.authpw = authpw.NewService(&fakeAuthStore{fs}, "test-secret")
	server := NewHTTPServer(svc, "*", nil)

	response := signUp(t, server)
	token, _ := response["devVerificationToken"].(string)
	if token == "" {
		t.Error("expected a dev verification token when no mailer is configured")
	}
}

func TestSignUpHidesDevTokenWhenSMTPConfigured(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(fs)
	svc.authpw = authpw.NewService(&fakeAuthStore{fs}, "test-secret")
	svc.email = email.NewService(email.Config{Host: "127.0.0.1", Port: "1", From: "noreply@pawsync.test"})
	server := NewHTTPServer(svc, "*", nil)

	response := signUp(t, server)
	if _, ok := response["devVerificationToken"]; ok {
		t.Error("dev verification token must not appear when a mailer is configured")
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	owner := ownerUser()
	fs := &fakeStore{getUserByIDFn: userFixture(owner)}
	server := newTestServer(fs)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	req.Header.Set("Authorization", bearerFor(t, owner))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
