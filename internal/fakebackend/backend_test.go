package fakebackend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/sidereusnuntius/campus/internal/domain"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

var sortStrings = cmpopts.SortSlices(func(a, b string) bool { return a < b })

func newServer(t *testing.T) (*Backend, *httptest.Server) {
	t.Helper()
	b := New()
	if err := b.Seed(); err != nil {
		t.Fatal(err)
	}
	s := httptest.NewServer(b.Handler())
	t.Cleanup(s.Close)
	return b, s
}

func do(t *testing.T, s *httptest.Server, method, path, token string, body any) (int, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, s.URL+Prefix+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := s.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var out map[string]json.RawMessage
	raw := new(bytes.Buffer)
	raw.ReadFrom(res.Body)
	if bytes.HasPrefix(bytes.TrimSpace(raw.Bytes()), []byte("{")) {
		if err := json.Unmarshal(raw.Bytes(), &out); err != nil {
			t.Fatal(err)
		}
	} else {
		out = map[string]json.RawMessage{"": raw.Bytes()}
	}
	return res.StatusCode, out
}

func login(t *testing.T, s *httptest.Server, email string) string {
	t.Helper()
	status, body := do(t, s, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": DemoPassword})
	if status != http.StatusOK {
		t.Fatalf("login as %s: %d %s", email, status, body["message"])
	}
	var token string
	if err := json.Unmarshal(body["token"], &token); err != nil {
		t.Fatal(err)
	}
	return token
}

func TestLogin(t *testing.T) {
	_, s := newServer(t)

	cases := []struct {
		name     string
		email    string
		password string
		status   int
	}{
		{"valid", DemoTeacher, DemoPassword, http.StatusOK},
		{"wrong password", DemoTeacher, "nope", http.StatusUnauthorized},
		{"unknown", "ghost@campus.test", DemoPassword, http.StatusUnauthorized},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			status, body := do(t, s, http.MethodPost, "/auth/login", "", map[string]string{"email": c.email, "password": c.password})
			if status != c.status {
				t.Fatalf("expected %d, got %d", c.status, status)
			}
			if status != http.StatusOK {
				if _, ok := body["message"]; !ok {
					t.Error("auth errors carry a message field")
				}
			}
		})
	}
}

func TestRegisterAndVerify(t *testing.T) {
	b, s := newServer(t)

	form := domain.Registration{
		Name:      "Grace Hopper",
		Email:     "grace@campus.test",
		Password:  "Sup3r-secret",
		Role:      domain.RoleStudent,
		CollegeID: "1",
	}
	status, _ := do(t, s, http.MethodPost, "/auth/register", "", form)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if status, _ = do(t, s, http.MethodPost, "/auth/register", "", form); status != http.StatusConflict {
		t.Errorf("expected a conflict on the second registration, got %d", status)
	}

	status, _ = do(t, s, http.MethodPost, "/auth/login", "", map[string]string{"email": form.Email, "password": form.Password})
	if status != http.StatusForbidden {
		t.Errorf("unverified login: expected 403, got %d", status)
	}

	otp := b.OTP(form.Email)
	if len(otp) != 6 {
		t.Fatalf("bad otp %q", otp)
	}
	status, body := do(t, s, http.MethodPost, "/auth/verify-email", "", map[string]string{"email": form.Email, "otp": otp})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var res domain.AuthResult
	raw, _ := json.Marshal(body)
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatal(err)
	}
	if res.Token == "" || !res.User.Verified {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestMe(t *testing.T) {
	b, s := newServer(t)
	token := login(t, s, DemoForumHead)

	status, body := do(t, s, http.MethodGet, "/auth/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var u domain.User
	if err := json.Unmarshal(body["user"], &u); err != nil {
		t.Fatal(err)
	}
	if u.Email != DemoForumHead || u.ForumID == "" {
		t.Errorf("unexpected user %+v", u)
	}

	b.RevokeAll()
	if status, _ = do(t, s, http.MethodGet, "/auth/me", token, nil); status != http.StatusUnauthorized {
		t.Errorf("revoked token: expected 401, got %d", status)
	}
}

func TestRevokeAllRotatesSecret(t *testing.T) {
	b := New()
	seen := map[string]bool{}
	for range 3 {
		b.RevokeAll()
		secret := string(b.secret)
		if len(secret) != 32 || secret == string(make([]byte, 32)) {
			t.Fatalf("secret not filled: %x", secret)
		}
		if seen[secret] {
			t.Fatal("secret reused after revocation")
		}
		seen[secret] = true
	}
}

func TestRoles(t *testing.T) {
	_, s := newServer(t)
	teacher := login(t, s, DemoTeacher)
	head := login(t, s, DemoForumHead)
	admin := login(t, s, DemoCollegeAdmin)
	root := login(t, s, DemoSuperAdmin)

	cases := []struct {
		path   string
		token  string
		status int
	}{
		{"/forums/events", "", http.StatusUnauthorized},
		{"/forums/events", teacher, http.StatusForbidden},
		{"/forums/events", head, http.StatusOK},
		{"/admin/users", head, http.StatusForbidden},
		{"/admin/users", admin, http.StatusOK},
		{"/sa/colleges", admin, http.StatusForbidden},
		{"/sa/colleges", root, http.StatusOK},
		{"/public/events", "", http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			if status, _ := do(t, s, http.MethodGet, c.path, c.token, nil); status != c.status {
				t.Errorf("expected %d, got %d", c.status, status)
			}
		})
	}
}

func TestEnvelopes(t *testing.T) {
	_, s := newServer(t)
	head := login(t, s, DemoForumHead)
	admin := login(t, s, DemoCollegeAdmin)
	root := login(t, s, DemoSuperAdmin)

	cases := []struct {
		path  string
		token string
		keys  []string
	}{
		{"/forums/events", head, []string{"events"}},
		{"/forums/venues", head, []string{""}},
		{"/forums/users/teachers", head, []string{"data"}},
		{"/admin/forums", admin, []string{"data"}},
		{"/admin/users", admin, []string{"users"}},
		{"/sa/colleges", root, []string{"data", "success"}},
		{"/public/colleges", "", []string{""}},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			_, body := do(t, s, http.MethodGet, c.path, c.token, nil)
			var keys []string
			for k := range body {
				keys = append(keys, k)
			}
			if diff := cmp.Diff(c.keys, keys, sortStrings); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestCreateEventErrors(t *testing.T) {
	_, s := newServer(t)
	head := login(t, s, DemoForumHead)

	_, body := do(t, s, http.MethodGet, "/forums/events", head, nil)
	var events []domain.Event
	if err := json.Unmarshal(body["events"], &events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("expected the 3 seeded events, got %d", len(events))
	}
	existing := events[0]

	cases := []struct {
		name   string
		in     domain.EventInput
		status int
	}{
		{"missing name", domain.EventInput{StartTime: existing.StartTime, EndTime: existing.EndTime}, http.StatusBadRequest},
		{"venue taken", domain.EventInput{
			Name:      "Clash",
			StartTime: existing.StartTime,
			EndTime:   existing.EndTime,
			VenueID:   existing.VenueID,
		}, http.StatusConflict},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			status, body := do(t, s, http.MethodPost, "/forums/events", head, c.in)
			if status != c.status {
				t.Fatalf("expected %d, got %d", c.status, status)
			}
			var e struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(body["error"], &e); err != nil || e.Message == "" {
				t.Errorf("expected a nested error message, got %s", body["error"])
			}
		})
	}
}

func TestApproveForumHeadNeedsForum(t *testing.T) {
	b, s := newServer(t)
	admin := login(t, s, DemoCollegeAdmin)

	var pending domain.User
	b.mu.Lock()
	for _, a := range b.users {
		if a.Role == domain.RoleForumHead && a.Status == domain.StatusPending {
			pending = a.User
		}
	}
	b.mu.Unlock()

	status, body := do(t, s, http.MethodPut, "/admin/users/"+string(pending.ID)+"/approve", admin, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	var msg string
	if err := json.Unmarshal(body["error"], &msg); err != nil || msg == "" {
		t.Errorf("expected an error string, got %s", body["error"])
	}

	forum := b.AddForum(domain.Forum{Name: "Robotics", CollegeID: pending.CollegeID})
	status, _ = do(t, s, http.MethodPut, "/admin/users/"+string(pending.ID)+"/approve", admin, map[string]string{"forumId": string(forum.ID)})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if got := b.forums[string(forum.ID)].HeadID; got != pending.ID {
		t.Errorf("expected head %s, got %s", pending.ID, got)
	}
	if got := b.users[string(pending.ID)]; got.Status != domain.StatusApproved || got.ForumID != forum.ID {
		t.Errorf("unexpected user %+v", got.User)
	}
}

func TestPatchKeepsID(t *testing.T) {
	v := domain.Venue{ID: "7", Name: "Hall", Capacity: 10}
	body := map[string]json.RawMessage{
		"id":       json.RawMessage(`"99"`),
		"capacity": json.RawMessage(`25`),
	}
	if err := patch(&v, body); err != nil {
		t.Fatal(err)
	}
	expected := domain.Venue{ID: "7", Name: "Hall", Capacity: 25}
	if diff := cmp.Diff(expected, v); diff != "" {
		t.Error(diff)
	}
}
