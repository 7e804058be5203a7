package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/database/memory"
	"github.com/smarifurrahman/linguistic-horizons-server/handlers"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
	"github.com/smarifurrahman/linguistic-horizons-server/services"
)

type testServer struct {
	app    *fiber.App
	store  *memory.Store
	tokens *services.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	tokens := services.NewTokenService("test-secret", time.Hour)

	h := handlers.New(handlers.Deps{
		Store:      store,
		Tokens:     tokens,
		Enrollment: services.NewEnrollmentService(store, nil, false),
		Classes:    services.NewClassService(store, nil),
		Roster:     services.NewRosterService(store),
		Media:      services.NewMediaService(""),
	})

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	Register(app, h, middleware.NewGuards(store, tokens), nil)
	return &testServer{app: app, store: store, tokens: tokens}
}

func (s *testServer) user(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, Role: role}
	if _, err := s.store.InsertUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func (s *testServer) do(t *testing.T, method, path, as string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if as != "" {
		token, err := s.tokens.Issue(map[string]interface{}{"email": as})
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func decode(t *testing.T, raw []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func TestIssueToken(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, fiber.MethodPost, "/jwt", "", map[string]string{"email": "s@example.com", "name": "S"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var out map[string]string
	decode(t, body, &out)
	if out["token"] == "" {
		t.Error("no token in response")
	}

	if resp, _ := s.do(t, fiber.MethodPost, "/jwt", "", map[string]string{"name": "no email"}); resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("missing email: status = %d", resp.StatusCode)
	}
}

func TestCreateUserTwice(t *testing.T) {
	s := newTestServer(t)
	payload := map[string]string{"name": "Ana", "email": "ana@example.com", "role": "Admin"}

	_, body := s.do(t, fiber.MethodPost, "/users", "", payload)
	var first map[string]interface{}
	decode(t, body, &first)
	if first["insertedId"] == "" || first["insertedId"] == nil {
		t.Fatalf("first insert = %s", body)
	}

	_, body = s.do(t, fiber.MethodPost, "/users", "", payload)
	var second map[string]interface{}
	decode(t, body, &second)
	if second["message"] != "user already exists" {
		t.Errorf("second insert = %s", body)
	}

	u, err := s.store.FindUserByEmail(context.Background(), "ana@example.com")
	if err != nil || u.Role != models.RoleStudent {
		t.Errorf("new user role = %v, %v; want Student", u, err)
	}
}

func TestGetUserAndClassAbsent(t *testing.T) {
	s := newTestServer(t)

	if _, body := s.do(t, fiber.MethodGet, "/users/nobody@example.com", "", nil); string(body) != "null" {
		t.Errorf("missing user body = %s", body)
	}
	if _, body := s.do(t, fiber.MethodGet, "/classes/0b0e7d9c-8a51-4b0c-bb0a-5d8d2c4b6a70", "", nil); string(body) != "null" {
		t.Errorf("missing class body = %s", body)
	}
	if resp, _ := s.do(t, fiber.MethodGet, "/classes/not-an-id", "", nil); resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("malformed id status = %d", resp.StatusCode)
	}
}

func TestListUsersByRole(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "i@example.com", models.RoleInstructor)
	s.user(t, "s@example.com", models.RoleStudent)

	var users []models.User
	_, body := s.do(t, fiber.MethodGet, "/users?role=Instructor", "", nil)
	decode(t, body, &users)
	if len(users) != 1 || users[0].Email != "i@example.com" {
		t.Errorf("instructors = %+v", users)
	}

	_, body = s.do(t, fiber.MethodGet, "/users?role=wizard", "", nil)
	decode(t, body, &users)
	if len(users) != 0 {
		t.Errorf("unknown role = %+v", users)
	}
}

func TestCheckRoleOnlyAnswersForSelf(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "admin@example.com", models.RoleAdmin)
	s.user(t, "s@example.com", models.RoleStudent)

	tests := []struct {
		path string
		as   string
		key  string
		want bool
	}{
		{"/users/check-admin/admin@example.com", "admin@example.com", "admin", true},
		{"/users/check-admin/admin@example.com", "s@example.com", "admin", false},
		{"/users/check-admin/s@example.com", "s@example.com", "admin", false},
		{"/users/check-student/s@example.com", "s@example.com", "student", true},
		{"/users/check-instructor/s@example.com", "s@example.com", "instructor", false},
		{"/users/check-admin/ghost@example.com", "ghost@example.com", "admin", false},
	}
	for _, tt := range tests {
		resp, body := s.do(t, fiber.MethodGet, tt.path, tt.as, nil)
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("%s as %s: status %d", tt.path, tt.as, resp.StatusCode)
			continue
		}
		var out map[string]bool
		decode(t, body, &out)
		if out[tt.key] != tt.want {
			t.Errorf("%s as %s = %s, want %v", tt.path, tt.as, body, tt.want)
		}
	}

	if resp, _ := s.do(t, fiber.MethodGet, "/users/check-admin/admin@example.com", "", nil); resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("no token: status %d", resp.StatusCode)
	}
}

func TestPromoteUser(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "admin@example.com", models.RoleAdmin)
	student := s.user(t, "s@example.com", models.RoleStudent)

	if resp, _ := s.do(t, fiber.MethodPatch, "/users/instructor/"+student.ID, "s@example.com", nil); resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("student promoting self: status %d", resp.StatusCode)
	}
	if resp, body := s.do(t, fiber.MethodPatch, "/users/instructor/"+student.ID, "admin@example.com", nil); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("admin promote: %d %s", resp.StatusCode, body)
	}
	u, _ := s.store.FindUserByEmail(context.Background(), "s@example.com")
	if u.Role != models.RoleInstructor {
		t.Errorf("role = %q", u.Role)
	}

	missing := "0b0e7d9c-8a51-4b0c-bb0a-5d8d2c4b6a70"
	if resp, _ := s.do(t, fiber.MethodPatch, "/users/admin/"+missing, "admin@example.com", nil); resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("unknown user: status %d", resp.StatusCode)
	}
}

func TestClassLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "admin@example.com", models.RoleAdmin)
	s.user(t, "i@example.com", models.RoleInstructor)
	s.user(t, "s@example.com", models.RoleStudent)

	newClass := map[string]interface{}{"name": "Spanish 101", "price": 20, "availableSeats": 2, "status": "Approved"}
	if resp, _ := s.do(t, fiber.MethodPost, "/addClass", "s@example.com", newClass); resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("student adding class: status %d", resp.StatusCode)
	}
	resp, body := s.do(t, fiber.MethodPost, "/addClass", "i@example.com", newClass)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("addClass: %d %s", resp.StatusCode, body)
	}
	var inserted map[string]interface{}
	decode(t, body, &inserted)
	id, _ := inserted["insertedId"].(string)

	var classes []models.Class
	_, body = s.do(t, fiber.MethodGet, "/classes?status=Approved", "", nil)
	decode(t, body, &classes)
	if len(classes) != 0 {
		t.Errorf("new class already approved: %+v", classes)
	}

	if resp, _ := s.do(t, fiber.MethodPatch, "/classes/approved/"+id, "i@example.com", nil); resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("instructor approving: status %d", resp.StatusCode)
	}
	if resp, _ := s.do(t, fiber.MethodPatch, "/classes/approved/"+id, "admin@example.com", nil); resp.StatusCode != fiber.StatusOK {
		t.Errorf("approve: status %d", resp.StatusCode)
	}
	if resp, _ := s.do(t, fiber.MethodPatch, "/classes/feedback/"+id, "admin@example.com", map[string]string{"feedback": "Nice"}); resp.StatusCode != fiber.StatusOK {
		t.Errorf("feedback: status %d", resp.StatusCode)
	}

	_, body = s.do(t, fiber.MethodGet, "/classes?email=i@example.com", "", nil)
	decode(t, body, &classes)
	if len(classes) != 1 || classes[0].Status != models.ClassApproved || classes[0].Feedback != "Nice" {
		t.Errorf("instructor classes = %+v", classes)
	}

	if resp, _ := s.do(t, fiber.MethodPatch, "/classes/updateclass/"+id, "i@example.com", map[string]interface{}{}); resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("empty update: status %d", resp.StatusCode)
	}
	if resp, body := s.do(t, fiber.MethodPatch, "/classes/updateclass/"+id, "i@example.com", map[string]interface{}{"price": 30}); resp.StatusCode != fiber.StatusOK {
		t.Errorf("update: %d %s", resp.StatusCode, body)
	}
}

func TestUpdateClassRejectsNegativeValues(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "i@example.com", models.RoleInstructor)
	ids := s.store.Seed(models.Class{Name: "Greek", InstructorEmail: "i@example.com", AvailableSeats: 4, Price: 10})

	for _, patch := range []map[string]interface{}{
		{"availableSeats": -1},
		{"price": -5},
	} {
		resp, body := s.do(t, fiber.MethodPatch, "/classes/updateclass/"+ids[0], "i@example.com", patch)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("patch %v: status %d %s", patch, resp.StatusCode, body)
		}
	}

	c, _ := s.store.FindClass(context.Background(), ids[0])
	if c.AvailableSeats != 4 || c.Price != 10 || c.Name != "Greek" {
		t.Errorf("rejected patch changed the class: %+v", c)
	}

	resp, body := s.do(t, fiber.MethodPatch, "/classes/updateclass/"+ids[0], "i@example.com", map[string]interface{}{"availableSeats": 0})
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("closing seats: %d %s", resp.StatusCode, body)
	}
}

func TestEnrollmentFlow(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "s@example.com", models.RoleStudent)
	ids := s.store.Seed(
		models.Class{Name: "Open", Status: models.ClassApproved, AvailableSeats: 1},
		models.Class{Name: "Full", Status: models.ClassApproved, AvailableSeats: 0},
	)
	open, full := ids[0], ids[1]

	_, body := s.do(t, fiber.MethodPatch, "/classes/selected/"+open+"?email=s@example.com", "s@example.com", nil)
	var res map[string]interface{}
	decode(t, body, &res)
	if res["modifiedCount"] != float64(1) {
		t.Errorf("select = %s", body)
	}
	_, body = s.do(t, fiber.MethodPatch, "/classes/selected/"+open, "s@example.com", nil)
	decode(t, body, &res)
	if res["message"] != "Already Selected" {
		t.Errorf("reselect = %s", body)
	}

	var cart []models.Class
	_, body = s.do(t, fiber.MethodPost, "/selected-classes", "", []string{open})
	decode(t, body, &cart)
	if len(cart) != 1 || cart[0].ID != open {
		t.Errorf("selected classes = %+v", cart)
	}

	if resp, _ := s.do(t, fiber.MethodPatch, "/classes/enrolled/"+open+"?email=other@example.com", "s@example.com", nil); resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("enrolling someone else: status %d", resp.StatusCode)
	}
	if resp, body := s.do(t, fiber.MethodPatch, "/classes/enrolled/"+open, "s@example.com", nil); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("enroll: %d %s", resp.StatusCode, body)
	}
	_, body = s.do(t, fiber.MethodPatch, "/classes/enrolled/"+open, "s@example.com", nil)
	res = map[string]interface{}{}
	decode(t, body, &res)
	if res["message"] != "Already enrolled" {
		t.Errorf("re-enroll = %s", body)
	}

	resp, body := s.do(t, fiber.MethodPatch, "/classes/enrolled/"+full, "s@example.com", nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("full class: status %d", resp.StatusCode)
	}
	res = map[string]interface{}{}
	decode(t, body, &res)
	if res["enrolled"] != false || res["message"] != "No seats available" {
		t.Errorf("full class body = %s", body)
	}

	var enrolled []models.Class
	_, body = s.do(t, fiber.MethodGet, "/enrolled-classes?email=s@example.com", "", nil)
	decode(t, body, &enrolled)
	if len(enrolled) != 1 || enrolled[0].ID != open || enrolled[0].AvailableSeats != 0 {
		t.Errorf("enrolled classes = %+v", enrolled)
	}
	if resp, _ := s.do(t, fiber.MethodGet, "/enrolled-classes", "", nil); resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("enrolled without email: status %d", resp.StatusCode)
	}

	if resp, _ := s.do(t, fiber.MethodPatch, "/classes/enrolled/delete/"+open, "s@example.com", nil); resp.StatusCode != fiber.StatusOK {
		t.Errorf("unenroll: status %d", resp.StatusCode)
	}
	c, _ := s.store.FindClass(context.Background(), open)
	if c.AvailableSeats != 1 || c.EnrolledStudentsCount != 0 {
		t.Errorf("after unenroll: seats %d count %d", c.AvailableSeats, c.EnrolledStudentsCount)
	}
}

func TestAdminRecountAndUploads(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "admin@example.com", models.RoleAdmin)
	s.user(t, "i@example.com", models.RoleInstructor)
	s.store.Seed(models.Class{Name: "Drifted", EnrolledStudents: []string{"a@example.com"}, EnrolledStudentsCount: 3})

	_, body := s.do(t, fiber.MethodPost, "/admin/classes/recount", "admin@example.com", nil)
	var out map[string]int
	decode(t, body, &out)
	if out["updated"] != 1 {
		t.Errorf("recount = %s", body)
	}
	if resp, _ := s.do(t, fiber.MethodPost, "/admin/classes/recount", "i@example.com", nil); resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("instructor recount: status %d", resp.StatusCode)
	}

	if resp, _ := s.do(t, fiber.MethodGet, "/uploads/class-image/signature", "i@example.com", nil); resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("unconfigured uploads: status %d", resp.StatusCode)
	}
}

func TestRosterRoute(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "i@example.com", models.RoleInstructor)
	s.user(t, "s@example.com", models.RoleStudent)
	ids := s.store.Seed(models.Class{Name: "Roster", InstructorEmail: "i@example.com", EnrolledStudents: []string{"s@example.com"}, EnrolledStudentsCount: 1})

	if resp, _ := s.do(t, fiber.MethodGet, "/classes/"+ids[0]+"/roster", "s@example.com", nil); resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("student roster: status %d", resp.StatusCode)
	}
	resp, body := s.do(t, fiber.MethodGet, "/classes/"+ids[0]+"/roster", "i@example.com", nil)
	if resp.StatusCode != fiber.StatusOK || len(body) == 0 {
		t.Fatalf("roster: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, fiber.MethodGet, "/health", "", nil)
	var out map[string]string
	decode(t, body, &out)
	if out["status"] != "ok" {
		t.Errorf("health = %s", body)
	}
}
