package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/mocks"
	"github.com/sidereusnuntius/campus/internal/session"
	"github.com/sidereusnuntius/campus/internal/storage"
	"github.com/sidereusnuntius/campus/internal/storage/filestore"
	"go.uber.org/mock/gomock"
)

var ctx = context.Background()

var ada = domain.User{ID: "1", Name: "Ada", Email: "ada@example.edu", Role: domain.RoleForumHead}

var expiredErr = &client.Error{Kind: client.ErrSessionExpired, Status: 401}

type fixture struct {
	manager *session.Manager
	auth    *mocks.MockAuth
	sink    *mocks.MockTokenSink
	storage storage.Storage
}

func setup(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	s, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := fixture{
		auth:    mocks.NewMockAuth(ctrl),
		sink:    mocks.NewMockTokenSink(ctrl),
		storage: s,
	}
	f.manager = session.New(f.auth, f.storage, f.sink)
	return f
}

func token(t *testing.T, exp time.Time) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test"))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func (f fixture) login(t *testing.T, tok string) {
	f.auth.EXPECT().Login(gomock.Any(), "ada@example.edu", "analytical").Return(domain.AuthResult{Token: tok, User: ada}, nil)
	f.sink.EXPECT().SetToken(tok)
	if err := f.manager.Login(ctx, "ada@example.edu", "analytical"); err != nil {
		t.Fatal(err)
	}
}

func (f fixture) assertLoggedOut(t *testing.T) {
	t.Helper()
	if cur := f.manager.Current(); cur.IsAuthenticated || cur.Token != "" {
		t.Errorf("expected a logged out session, got %+v", cur)
	}
	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		if _, err := f.storage.Get(ctx, key); !errors.Is(err, storage.ErrNotExist) {
			t.Errorf("%s still persisted: %v", key, err)
		}
	}
}

func TestLogin(t *testing.T) {
	f := setup(t)
	tok := token(t, time.Now().Add(time.Hour))
	f.login(t, tok)

	expected := session.Session{Token: tok, User: ada, IsAuthenticated: true}
	if diff := cmp.Diff(expected, f.manager.Current()); diff != "" {
		t.Error(diff)
	}

	stored, err := f.storage.Get(ctx, storage.KeyToken)
	if err != nil || string(stored) != tok {
		t.Errorf("token not persisted: %q, %v", stored, err)
	}
	var user domain.User
	if err = storage.GetJSON(ctx, f.storage, storage.KeyUser, &user); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ada, user); diff != "" {
		t.Error(diff)
	}
}

func TestLoginFailures(t *testing.T) {
	t.Run("invalid form never reaches the backend", func(t *testing.T) {
		f := setup(t)
		err := f.manager.Login(ctx, "not an email", "")
		if !errors.Is(err, client.ErrValidation) {
			t.Errorf("expected a validation error, got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		f := setup(t)
		remote := &client.Error{Kind: client.ErrRemote, Status: 401, Message: "Invalid credentials"}
		f.auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.AuthResult{}, remote)
		if err := f.manager.Login(ctx, "ada@example.edu", "wrong"); !errors.Is(err, remote) {
			t.Errorf("expected %v, got %v", remote, err)
		}
		f.assertLoggedOut(t)
	})

	t.Run("no token", func(t *testing.T) {
		f := setup(t)
		f.auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.AuthResult{User: ada}, nil)
		if err := f.manager.Login(ctx, "ada@example.edu", "analytical"); !errors.Is(err, session.ErrNoToken) {
			t.Errorf("expected %v, got %v", session.ErrNoToken, err)
		}
		f.assertLoggedOut(t)
	})
}

func TestSessionExpiredTriggersLogout(t *testing.T) {
	f := setup(t)
	f.login(t, "opaque-token")

	f.auth.EXPECT().Me(gomock.Any()).Return(domain.User{}, expiredErr)
	f.sink.EXPECT().ClearToken()

	if err := f.manager.Refresh(ctx); !errors.Is(err, client.ErrSessionExpired) {
		t.Errorf("expected session expired, got %v", err)
	}
	f.assertLoggedOut(t)
}

func TestRefreshUpdatesProfile(t *testing.T) {
	f := setup(t)
	f.login(t, "opaque-token")

	renamed := ada
	renamed.Name = "Augusta Ada"
	f.auth.EXPECT().Me(gomock.Any()).Return(renamed, nil)
	if err := f.manager.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.manager.Current().User.Name; got != "Augusta Ada" {
		t.Errorf("profile not refreshed: %s", got)
	}
}

func TestHydrate(t *testing.T) {
	t.Run("nothing stored", func(t *testing.T) {
		f := setup(t)
		if err := f.manager.Hydrate(ctx); err != nil {
			t.Fatal(err)
		}
		f.assertLoggedOut(t)
	})

	t.Run("valid token", func(t *testing.T) {
		f := setup(t)
		tok := token(t, time.Now().Add(time.Hour))
		f.storage.Set(ctx, storage.KeyToken, []byte(tok))
		f.sink.EXPECT().SetToken(tok)
		f.auth.EXPECT().Me(gomock.Any()).Return(ada, nil)

		if err := f.manager.Hydrate(ctx); err != nil {
			t.Fatal(err)
		}
		expected := session.Session{Token: tok, User: ada, IsAuthenticated: true}
		if diff := cmp.Diff(expected, f.manager.Current()); diff != "" {
			t.Error(diff)
		}
	})

	t.Run("expired token is not sent", func(t *testing.T) {
		f := setup(t)
		f.storage.Set(ctx, storage.KeyToken, []byte(token(t, time.Now().Add(-time.Minute))))
		storage.SetJSON(ctx, f.storage, storage.KeyUser, ada)
		f.sink.EXPECT().ClearToken()

		if err := f.manager.Hydrate(ctx); !errors.Is(err, session.ErrTokenExpired) {
			t.Errorf("expected %v, got %v", session.ErrTokenExpired, err)
		}
		f.assertLoggedOut(t)
	})

	t.Run("opaque token rejected by backend", func(t *testing.T) {
		f := setup(t)
		f.storage.Set(ctx, storage.KeyToken, []byte("opaque-token"))
		gomock.InOrder(
			f.sink.EXPECT().SetToken("opaque-token"),
			f.auth.EXPECT().Me(gomock.Any()).Return(domain.User{}, expiredErr),
			f.sink.EXPECT().ClearToken(),
		)

		if err := f.manager.Hydrate(ctx); !errors.Is(err, client.ErrSessionExpired) {
			t.Errorf("expected session expired, got %v", err)
		}
		f.assertLoggedOut(t)
	})

	t.Run("unreadable storage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		st := mocks.NewMockStorage(ctrl)
		sink := mocks.NewMockTokenSink(ctrl)
		m := session.New(mocks.NewMockAuth(ctrl), st, sink)

		st.EXPECT().Get(gomock.Any(), storage.KeyToken).Return(nil, storage.ErrCorrupt)
		st.EXPECT().Delete(gomock.Any(), storage.KeyToken).Return(nil)
		st.EXPECT().Delete(gomock.Any(), storage.KeyUser).Return(nil)
		sink.EXPECT().ClearToken()

		if err := m.Hydrate(ctx); !errors.Is(err, storage.ErrCorrupt) {
			t.Errorf("expected %v, got %v", storage.ErrCorrupt, err)
		}
		if m.Current().IsAuthenticated {
			t.Error("session authenticated from corrupt storage")
		}
	})
}

func TestLogoutAlwaysClearsMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	auth := mocks.NewMockAuth(ctrl)
	sink := mocks.NewMockTokenSink(ctrl)
	m := session.New(auth, st, sink)

	auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.AuthResult{Token: "t", User: ada}, nil)
	st.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	sink.EXPECT().SetToken("t")
	if err := m.Login(ctx, "ada@example.edu", "analytical"); err != nil {
		t.Fatal(err)
	}

	sink.EXPECT().ClearToken()
	st.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(storage.ErrInternal).Times(2)
	if err := m.Logout(ctx); !errors.Is(err, storage.ErrInternal) {
		t.Errorf("expected %v, got %v", storage.ErrInternal, err)
	}
	if m.Current().IsAuthenticated {
		t.Error("session survived logout")
	}
}

func TestExpiredHook(t *testing.T) {
	f := setup(t)
	f.login(t, "opaque-token")

	var seen []bool
	unsubscribe := f.manager.Subscribe(func(s session.Session) {
		seen = append(seen, s.IsAuthenticated)
	})
	defer unsubscribe()

	f.sink.EXPECT().ClearToken()
	f.manager.Expired()

	f.assertLoggedOut(t)
	if diff := cmp.Diff([]bool{false}, seen); diff != "" {
		t.Error(diff)
	}
}

func TestRegisterAndVerify(t *testing.T) {
	f := setup(t)
	reg := domain.Registration{
		Name:      "Ada",
		Email:     "ada@example.edu",
		Password:  "analytical",
		Role:      domain.RoleForumHead,
		CollegeID: "c1",
	}
	f.auth.EXPECT().Register(gomock.Any(), reg).Return("Check your email", nil)
	msg, err := f.manager.Register(ctx, reg)
	if err != nil || msg != "Check your email" {
		t.Fatalf("unexpected %q, %v", msg, err)
	}
	if f.manager.Current().IsAuthenticated {
		t.Error("registration alone must not authenticate")
	}

	if err = f.manager.VerifyOTP(ctx, reg.Email, "12ab"); !errors.Is(err, client.ErrValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}

	f.auth.EXPECT().VerifyEmail(gomock.Any(), reg.Email, "123456").Return(domain.AuthResult{Token: "t", User: ada}, nil)
	f.sink.EXPECT().SetToken("t")
	if err = f.manager.VerifyOTP(ctx, reg.Email, "123456"); err != nil {
		t.Fatal(err)
	}
	if !f.manager.Current().IsAuthenticated {
		t.Error("verification did not authenticate")
	}
}
