package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestManager(t *testing.T, gatewayURL string) *Manager {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	return NewManager(NewClient(gatewayURL), store, 0, zap.NewNop())
}

func TestAuthenticateEmptyCode(t *testing.T) {
	manager := newTestManager(t, "http://127.0.0.1:1/exec")

	for _, code := range []string{"", "   "} {
		if _, err := manager.Authenticate(context.Background(), code); !errors.Is(err, ErrEmptyCode) {
			t.Errorf("Authenticate(%q) error = %v, want ErrEmptyCode", code, err)
		}
	}
}

func TestAuthenticateTestCodes(t *testing.T) {
	// The unroutable gateway URL proves test codes never touch the network
	manager := newTestManager(t, "http://127.0.0.1:1/exec")

	tests := []struct {
		code     string
		wantName string
		wantYear string
	}{
		{code: "test5", wantName: "Test Year 5 Student", wantYear: "5"},
		{code: "test6", wantName: "Test Year 6 Student", wantYear: "6"},
		{code: "test7", wantName: "Test Year 7 Student", wantYear: "7"},
		{code: "test", wantName: "Test Student (Year 6)", wantYear: "6"},
		{code: "TEST5", wantName: "Test Year 5 Student", wantYear: "5"},
		{code: "testsomething", wantName: "Test Student", wantYear: "6"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			user, err := manager.Authenticate(context.Background(), tt.code)
			if err != nil {
				t.Fatalf("Authenticate(%q) error = %v", tt.code, err)
			}
			if user.Name != tt.wantName {
				t.Errorf("name = %q, want %q", user.Name, tt.wantName)
			}
			if user.YearLevel != tt.wantYear {
				t.Errorf("yearLevel = %q, want %q", user.YearLevel, tt.wantYear)
			}
			if user.Rewards != testRewards {
				t.Errorf("rewards = %q, want the test reward set", user.Rewards)
			}
			if user.LoginTime == "" {
				t.Error("expected loginTime to be stamped")
			}
		})
	}
}

func TestAuthenticateInvalidCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Invalid"))
	}))
	defer srv.Close()

	manager := newTestManager(t, srv.URL)
	_, err := manager.Authenticate(context.Background(), "wrong-code-99")
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("error = %v, want ErrInvalidCode", err)
	}
	if msg := UserMessage(err); msg != "Invalid student code. Please try again." {
		t.Errorf("UserMessage() = %q", msg)
	}
	if manager.IsAuthenticated() {
		t.Error("failed login must not authenticate")
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("code") != "":
			w.Write([]byte(`{"name":"Ava Walker","code":"ocean-panda-41","rewards":"🐶","yearLevel":"6","totalGames":3,"totalScore":12}`))
		case q.Get("rewards") != "":
			w.Write([]byte(`{"name":"Ava Walker","code":"ocean-panda-41","rewards":"🐶,🏆"}`))
		}
	}))
	defer srv.Close()

	manager := newTestManager(t, srv.URL)

	var broadcast *Identity
	manager.OnChange(func(id *Identity) { broadcast = id })

	user, err := manager.Authenticate(context.Background(), "ocean-panda-41")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if user.Name != "Ava Walker" {
		t.Errorf("name = %q, want Ava Walker", user.Name)
	}
	if user.Rewards != "🐶,🏆" {
		t.Errorf("rewards = %q, want the refreshed 🐶,🏆", user.Rewards)
	}
	if user.LoginTime == "" {
		t.Error("expected loginTime to be stamped")
	}
	if !manager.IsAuthenticated() {
		t.Error("expected authenticated state")
	}
	if broadcast == nil || broadcast.Code != "ocean-panda-41" {
		t.Errorf("listener got %+v, want the new identity", broadcast)
	}
}

func TestAuthenticateEmptyRewardSetStaysEmpty(t *testing.T) {
	// Both lookups answer the full record shape with no rewards earned yet;
	// the raw JSON body must not end up stored as the reward string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Ava Walker","code":"ocean-panda-41","rewards":""}`))
	}))
	defer srv.Close()

	manager := newTestManager(t, srv.URL)
	user, err := manager.Authenticate(context.Background(), "ocean-panda-41")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.Rewards != "" {
		t.Errorf("rewards = %q, want empty", user.Rewards)
	}
	if got := user.RewardList(); len(got) != 0 {
		t.Errorf("RewardList() = %v, want none", got)
	}
}

func TestAuthenticateRewardsFailureSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("code") != "":
			w.Write([]byte(`{"name":"Ava Walker","code":"ocean-panda-41","rewards":"🐶"}`))
		case q.Get("rewards") != "":
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	manager := newTestManager(t, srv.URL)
	user, err := manager.Authenticate(context.Background(), "ocean-panda-41")
	if err != nil {
		t.Fatalf("Authenticate() error = %v, rewards failure must not fail the login", err)
	}
	if user.Rewards != "🐶" {
		t.Errorf("rewards = %q, want the login-row value kept", user.Rewards)
	}
}

func TestAuthenticateLegacyNameResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") != "" {
			w.Write([]byte("Ava Walker"))
			return
		}
		w.Write([]byte(""))
	}))
	defer srv.Close()

	manager := newTestManager(t, srv.URL)
	user, err := manager.Authenticate(context.Background(), "ocean-panda-41")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.Name != "Ava Walker" || user.Code != "ocean-panda-41" {
		t.Errorf("user = %+v, want the bare-name fallback", user)
	}
	if user.TotalGames != 0 || user.TotalScore != 0 {
		t.Error("fallback identity should carry zero counters")
	}
}

func TestAuthenticateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	manager := newTestManager(t, srv.URL)
	_, err := manager.Authenticate(context.Background(), "ocean-panda-41")
	if !errors.Is(err, ErrServer) {
		t.Fatalf("error = %v, want ErrServer", err)
	}
	if msg := UserMessage(err); msg != "Server error. Please try again in a moment." {
		t.Errorf("UserMessage() = %q", msg)
	}
}

func TestAuthenticateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	manager := NewManager(NewClient(srv.URL), store, 50*time.Millisecond, zap.NewNop())

	_, err := manager.Authenticate(context.Background(), "ocean-panda-41")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if msg := UserMessage(err); msg != "Request timed out. Please check your internet connection and try again." {
		t.Errorf("UserMessage() = %q", msg)
	}
}

func TestCurrentUserRehydratesFromStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)
	if err := store.Save(&Identity{Name: "Ava Walker", Code: "ocean-panda-41"}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	manager := NewManager(NewClient("http://127.0.0.1:1/exec"), store, 0, zap.NewNop())
	user := manager.CurrentUser()
	if user == nil || user.Code != "ocean-panda-41" {
		t.Fatalf("CurrentUser() = %+v, want the stored identity", user)
	}
}

func TestLogout(t *testing.T) {
	manager := newTestManager(t, "http://127.0.0.1:1/exec")
	if _, err := manager.Authenticate(context.Background(), "test5"); err != nil {
		t.Fatalf("login: %v", err)
	}

	var gotLogout bool
	manager.OnChange(func(id *Identity) {
		if id == nil {
			gotLogout = true
		}
	})

	if err := manager.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if manager.IsAuthenticated() {
		t.Error("expected signed-out state")
	}
	if manager.CurrentUser() != nil {
		t.Error("expected no current user after logout")
	}
	if !gotLogout {
		t.Error("expected listeners to see the sign-out")
	}
}

func TestUserMessageFallback(t *testing.T) {
	if msg := UserMessage(errors.New("weird")); msg != "Connection error. Please try again." {
		t.Errorf("UserMessage() = %q", msg)
	}
}
