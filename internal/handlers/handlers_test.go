package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/studyhub-dev/studyhub/db"
	"github.com/studyhub-dev/studyhub/internal/auth"
	"github.com/studyhub-dev/studyhub/internal/models"
	"github.com/studyhub-dev/studyhub/internal/router"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")

	if err := auth.InitJWTSecret(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	if err := db.ConnectSQLite(":memory:"); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := db.SeedLookups(); err != nil {
		t.Fatalf("failed to seed lookup data: %v", err)
	}

	return router.NewRouter()
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func signup(t *testing.T, r http.Handler, username string) []*http.Cookie {
	t.Helper()

	w := doJSON(t, r, "POST", "/signup", map[string]interface{}{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "correcthorse",
	}, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("signup for %s failed with %d: %s", username, w.Code, w.Body.String())
	}

	return w.Result().Cookies()
}

func createSubject(t *testing.T, r http.Handler, cookies []*http.Cookie, name string) uint {
	t.Helper()

	w := doJSON(t, r, "POST", "/add_subject", map[string]interface{}{"name": name}, cookies)

	if w.Code != http.StatusCreated {
		t.Fatalf("creating subject %s failed with %d: %s", name, w.Code, w.Body.String())
	}

	var resp struct {
		ID uint `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

type dashboard struct {
	Username string `json:"username"`
	Subjects []struct {
		ID          uint   `json:"id"`
		Name        string `json:"name"`
		IsOwner     bool   `json:"is_owner"`
		ActiveTasks int64  `json:"active_tasks"`
	} `json:"subjects"`
	Invites []struct {
		MembershipID uint   `json:"membership_id"`
		SubjectID    uint   `json:"subject_id"`
		SubjectName  string `json:"subject_name"`
	} `json:"invites"`
}

func getDashboard(t *testing.T, r http.Handler, cookies []*http.Cookie) dashboard {
	t.Helper()

	w := doJSON(t, r, "GET", "/dashboard", nil, cookies)

	if w.Code != http.StatusOK {
		t.Fatalf("dashboard failed with %d: %s", w.Code, w.Body.String())
	}

	var d dashboard
	decode(t, w, &d)
	return d
}

func TestSignupDuplicate(t *testing.T) {
	r := setupRouter(t)
	signup(t, r, "alice")

	w := doJSON(t, r, "POST", "/signup", map[string]interface{}{
		"username": "alice",
		"email":    "other@example.com",
		"password": "correcthorse",
	}, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/signup", map[string]interface{}{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "correcthorse",
	}, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", w.Code)
	}
}

func TestSigninIdentifierAndGenericFailure(t *testing.T) {
	r := setupRouter(t)
	signup(t, r, "alice")

	byUsername := doJSON(t, r, "POST", "/signin", map[string]interface{}{
		"identifier": "alice",
		"password":   "correcthorse",
	}, nil)
	if byUsername.Code != http.StatusOK {
		t.Fatalf("expected signin by username to succeed, got %d: %s", byUsername.Code, byUsername.Body.String())
	}

	byEmail := doJSON(t, r, "POST", "/signin", map[string]interface{}{
		"identifier": "alice@example.com",
		"password":   "correcthorse",
	}, nil)
	if byEmail.Code != http.StatusOK {
		t.Fatalf("expected signin by email to succeed, got %d", byEmail.Code)
	}

	badPassword := doJSON(t, r, "POST", "/signin", map[string]interface{}{
		"identifier": "alice",
		"password":   "wrongpassword",
	}, nil)
	unknownUser := doJSON(t, r, "POST", "/signin", map[string]interface{}{
		"identifier": "nobody",
		"password":   "correcthorse",
	}, nil)

	if badPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both failure modes, got %d and %d", badPassword.Code, unknownUser.Code)
	}

	// Neither response may reveal which part was wrong.
	if badPassword.Body.String() != unknownUser.Body.String() {
		t.Fatalf("failure responses differ: %s vs %s", badPassword.Body.String(), unknownUser.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "GET", "/dashboard", nil, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", w.Code)
	}
}

func TestDuplicateSubjectName(t *testing.T) {
	r := setupRouter(t)
	alice := signup(t, r, "alice")

	createSubject(t, r, alice, "Math")

	w := doJSON(t, r, "POST", "/add_subject", map[string]interface{}{"name": "math"}, alice)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for case-insensitive duplicate, got %d: %s", w.Code, w.Body.String())
	}
}

func TestInviteAcceptFlow(t *testing.T) {
	r := setupRouter(t)
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")

	mathID := createSubject(t, r, alice, "Math")

	w := doJSON(t, r, "POST", fmt.Sprintf("/invite_user/%d", mathID), map[string]interface{}{"username": "nobody"}, alice)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 inviting an unknown user, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", fmt.Sprintf("/invite_user/%d", mathID), map[string]interface{}{"username": "bob"}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected invite to succeed, got %d: %s", w.Code, w.Body.String())
	}

	var invite struct {
		MembershipID uint `json:"membership_id"`
	}
	decode(t, w, &invite)

	w = doJSON(t, r, "POST", fmt.Sprintf("/invite_user/%d", mathID), map[string]interface{}{"username": "bob"}, alice)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for repeated invite, got %d", w.Code)
	}

	d := getDashboard(t, r, bob)
	if len(d.Invites) != 1 || d.Invites[0].SubjectName != "Math" {
		t.Fatalf("expected one pending Math invite on bob's dashboard, got %+v", d.Invites)
	}
	if len(d.Subjects) != 0 {
		t.Fatalf("expected no visible subjects before accepting, got %+v", d.Subjects)
	}

	// Alice may not accept bob's invite.
	w = doJSON(t, r, "GET", fmt.Sprintf("/accept_invite/%d", invite.MembershipID), nil, alice)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 accepting someone else's invite, got %d", w.Code)
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/accept_invite/%d", invite.MembershipID), nil, bob)
	if w.Code != http.StatusOK {
		t.Fatalf("expected accept to succeed, got %d: %s", w.Code, w.Body.String())
	}

	// Accepting again is a no-op, not an error.
	w = doJSON(t, r, "GET", fmt.Sprintf("/accept_invite/%d", invite.MembershipID), nil, bob)
	if w.Code != http.StatusOK {
		t.Fatalf("expected re-accept to succeed, got %d", w.Code)
	}

	d = getDashboard(t, r, bob)
	if len(d.Invites) != 0 {
		t.Fatalf("expected no pending invites after accepting, got %+v", d.Invites)
	}
	if len(d.Subjects) != 1 || d.Subjects[0].Name != "Math" || d.Subjects[0].ActiveTasks != 0 {
		t.Fatalf("expected Math with zero active tasks on bob's dashboard, got %+v", d.Subjects)
	}
	if d.Subjects[0].IsOwner {
		t.Fatalf("expected bob not to be owner of Math")
	}
}

func TestSubjectViewAccess(t *testing.T) {
	r := setupRouter(t)
	alice := signup(t, r, "alice")
	mallory := signup(t, r, "mallory")

	mathID := createSubject(t, r, alice, "Math")

	w := doJSON(t, r, "GET", fmt.Sprintf("/subject/%d", mathID), nil, mallory)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for an outsider, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/subject/%d", mathID+100), nil, alice)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown subject, got %d", w.Code)
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/subject/%d", mathID), nil, alice)
	if w.Code != http.StatusOK {
		t.Fatalf("expected owner view to succeed, got %d", w.Code)
	}
}

func TestTaskOrderingAndCompletion(t *testing.T) {
	r := setupRouter(t)
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")

	mathID := createSubject(t, r, alice, "Math")

	w := doJSON(t, r, "POST", fmt.Sprintf("/invite_user/%d", mathID), map[string]interface{}{"username": "bob"}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("invite failed: %d", w.Code)
	}
	var invite struct {
		MembershipID uint `json:"membership_id"`
	}
	decode(t, w, &invite)
	w = doJSON(t, r, "GET", fmt.Sprintf("/accept_invite/%d", invite.MembershipID), nil, bob)
	if w.Code != http.StatusOK {
		t.Fatalf("accept failed: %d", w.Code)
	}

	// Seeded priorities: high=1 (weight 1), normal=2, low=3 (weight 3).
	low := uint(3)
	high := uint(1)

	w = doJSON(t, r, "POST", "/add_task", map[string]interface{}{
		"title":       "Low priority reading",
		"subject_id":  mathID,
		"priority_id": low,
	}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("task creation failed: %d: %s", w.Code, w.Body.String())
	}
	var lowTask struct {
		ID uint `json:"id"`
	}
	decode(t, w, &lowTask)

	w = doJSON(t, r, "POST", "/add_task", map[string]interface{}{
		"title":       "Urgent revision",
		"subject_id":  mathID,
		"priority_id": high,
	}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("task creation failed: %d", w.Code)
	}
	var highTask struct {
		ID uint `json:"id"`
	}
	decode(t, w, &highTask)

	var detail struct {
		Tasks []struct {
			ID       uint `json:"id"`
			StatusID uint `json:"status_id"`
		} `json:"tasks"`
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/subject/%d", mathID), nil, alice)
	decode(t, w, &detail)

	if len(detail.Tasks) != 2 {
		t.Fatalf("expected two tasks, got %d", len(detail.Tasks))
	}
	if detail.Tasks[0].ID != highTask.ID {
		t.Fatalf("expected the weight-1 task first while both pending, got %+v", detail.Tasks)
	}

	// Only the creator may toggle completion; membership is not enough.
	w = doJSON(t, r, "GET", fmt.Sprintf("/complete_task/%d", highTask.ID), nil, bob)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-creator, got %d", w.Code)
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/complete_task/%d", highTask.ID), nil, alice)
	if w.Code != http.StatusOK {
		t.Fatalf("expected creator toggle to succeed, got %d", w.Code)
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/subject/%d", mathID), nil, alice)
	decode(t, w, &detail)

	// Completed tasks sort after pending ones.
	if detail.Tasks[0].ID != lowTask.ID || detail.Tasks[1].StatusID != models.StatusCompleted {
		t.Fatalf("expected completed task last, got %+v", detail.Tasks)
	}

	// Toggling again reverts to pending.
	w = doJSON(t, r, "GET", fmt.Sprintf("/complete_task/%d", highTask.ID), nil, alice)
	if w.Code != http.StatusOK {
		t.Fatalf("expected second toggle to succeed, got %d", w.Code)
	}

	var toggled struct {
		StatusID uint `json:"status_id"`
	}
	decode(t, w, &toggled)
	if toggled.StatusID != models.StatusPending {
		t.Fatalf("expected pending after second toggle, got %d", toggled.StatusID)
	}
}

func TestAddTaskValidation(t *testing.T) {
	r := setupRouter(t)
	alice := signup(t, r, "alice")
	mallory := signup(t, r, "mallory")

	mathID := createSubject(t, r, alice, "Math")

	w := doJSON(t, r, "POST", "/add_task", map[string]interface{}{
		"title":      "Sneaky task",
		"subject_id": mathID,
	}, mallory)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-member creator, got %d", w.Code)
	}

	// An unknown priority is rejected, not stored as a dangling reference.
	w = doJSON(t, r, "POST", "/add_task", map[string]interface{}{
		"title":       "Ghost priority",
		"subject_id":  mathID,
		"priority_id": 9999,
	}, alice)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown priority, got %d: %s", w.Code, w.Body.String())
	}

	var taskCount int64
	if err := db.DB.Model(&models.Task{}).Where("subject_id = ?", mathID).Count(&taskCount).Error; err != nil {
		t.Fatalf("failed to count tasks: %v", err)
	}
	if taskCount != 0 {
		t.Fatalf("expected no task rows after rejected priority, got %d", taskCount)
	}

	// A malformed due date is contained as "no due date", not an error.
	w = doJSON(t, r, "POST", "/add_task", map[string]interface{}{
		"title":      "Read notes",
		"subject_id": mathID,
		"due_date":   "not-a-date",
		"tag_ids":    []uint{1, 999},
	}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected creation despite bad date, got %d: %s", w.Code, w.Body.String())
	}

	var task struct {
		DueDate *string `json:"due_date"`
		Tags    []struct {
			ID uint `json:"id"`
		} `json:"tags"`
	}
	decode(t, w, &task)

	if task.DueDate != nil {
		t.Fatalf("expected nil due date for malformed input, got %v", *task.DueDate)
	}
	if len(task.Tags) != 1 || task.Tags[0].ID != 1 {
		t.Fatalf("expected unknown tag ids to be skipped, got %+v", task.Tags)
	}

	w = doJSON(t, r, "POST", "/add_task", map[string]interface{}{
		"title":      "Past paper",
		"subject_id": mathID,
		"due_date":   "2026-11-05",
	}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected creation with valid date, got %d", w.Code)
	}
	decode(t, w, &task)
	if task.DueDate == nil || *task.DueDate != "2026-11-05" {
		t.Fatalf("expected due date 2026-11-05, got %v", task.DueDate)
	}
}

func TestLogSessionBoundaries(t *testing.T) {
	r := setupRouter(t)
	alice := signup(t, r, "alice")

	mathID := createSubject(t, r, alice, "Math")

	w := doJSON(t, r, "POST", fmt.Sprintf("/log_session/%d", mathID), map[string]interface{}{"duration": 25}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected session to be logged, got %d: %s", w.Code, w.Body.String())
	}

	for _, bad := range []interface{}{0, -5, "abc"} {
		w := doJSON(t, r, "POST", fmt.Sprintf("/log_session/%d", mathID), map[string]interface{}{"duration": bad}, alice)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for duration %v, got %d", bad, w.Code)
		}
	}

	var sessions []models.StudySession
	if err := db.DB.Where("subject_id = ?", mathID).Find(&sessions).Error; err != nil {
		t.Fatalf("failed to read sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Duration != 25 {
		t.Fatalf("expected exactly one 25-minute session, got %+v", sessions)
	}
}

func TestSendMessage(t *testing.T) {
	r := setupRouter(t)
	alice := signup(t, r, "alice")
	mallory := signup(t, r, "mallory")

	mathID := createSubject(t, r, alice, "Math")

	w := doJSON(t, r, "POST", fmt.Sprintf("/send_message/%d", mathID), map[string]interface{}{"content": "hi"}, mallory)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for an outsider sender, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", fmt.Sprintf("/send_message/%d", mathID), map[string]interface{}{"content": "   "}, alice)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for whitespace-only content, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", fmt.Sprintf("/send_message/%d", mathID), map[string]interface{}{"content": "first"}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected message to be posted, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, "POST", fmt.Sprintf("/send_message/%d", mathID), map[string]interface{}{"content": "second"}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected message to be posted, got %d", w.Code)
	}

	var detail struct {
		Messages []struct {
			Content string `json:"content"`
			Sender  string `json:"sender"`
		} `json:"messages"`
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/subject/%d", mathID), nil, alice)
	decode(t, w, &detail)

	if len(detail.Messages) != 2 {
		t.Fatalf("expected two messages, got %d", len(detail.Messages))
	}
	if detail.Messages[0].Content != "first" || detail.Messages[1].Content != "second" {
		t.Fatalf("expected ascending timestamp order, got %+v", detail.Messages)
	}
	if detail.Messages[0].Sender != "alice" {
		t.Fatalf("expected sender username, got %q", detail.Messages[0].Sender)
	}
}

func TestDeleteSubjectEndpoint(t *testing.T) {
	r := setupRouter(t)
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")

	mathID := createSubject(t, r, alice, "Math")

	w := doJSON(t, r, "POST", fmt.Sprintf("/invite_user/%d", mathID), map[string]interface{}{"username": "bob"}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("invite failed: %d", w.Code)
	}
	var invite struct {
		MembershipID uint `json:"membership_id"`
	}
	decode(t, w, &invite)
	w = doJSON(t, r, "GET", fmt.Sprintf("/accept_invite/%d", invite.MembershipID), nil, bob)
	if w.Code != http.StatusOK {
		t.Fatalf("accept failed: %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/add_task", map[string]interface{}{"title": "Homework", "subject_id": mathID}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("task creation failed: %d", w.Code)
	}
	var task struct {
		ID uint `json:"id"`
	}
	decode(t, w, &task)

	// Accepted membership is not deletion rights.
	w = doJSON(t, r, "GET", fmt.Sprintf("/delete_subject/%d", mathID), nil, bob)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner delete, got %d", w.Code)
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/delete_subject/%d", mathID), nil, alice)
	if w.Code != http.StatusOK {
		t.Fatalf("expected owner delete to succeed, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/subject/%d", mathID), nil, alice)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/complete_task/%d", task.ID), nil, alice)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a cascaded task, got %d", w.Code)
	}

	d := getDashboard(t, r, bob)
	if len(d.Subjects) != 0 {
		t.Fatalf("expected the deleted subject gone from bob's dashboard, got %+v", d.Subjects)
	}
}
