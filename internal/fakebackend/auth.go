package fakebackend

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

var ErrTokenInvalid = errors.New("token is invalid")

type claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type key struct{}

func GetSession(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(key{}).(domain.User)
	return u, ok
}

func (b *Backend) issue(u domain.User) (string, error) {
	now := time.Now()
	c := claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.TokenTTL)),
		},
	}
	b.mu.Lock()
	secret := b.secret
	b.mu.Unlock()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

func (b *Backend) verify(token string) (domain.User, error) {
	b.mu.Lock()
	secret := b.secret
	b.mu.Unlock()

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.User{}, ErrTokenInvalid
	}
	c, ok := parsed.Claims.(*claims)
	if !ok {
		return domain.User{}, ErrTokenInvalid
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.users[c.Subject]
	if !ok {
		return domain.User{}, ErrTokenInvalid
	}
	return a.User, nil
}

func AuthenticatedMiddleware(b *Backend) func(http.Handler) http.Handler {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				message(w, http.StatusUnauthorized, "No token provided")
				return
			}
			u, err := b.verify(token)
			if err != nil {
				message(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			handler.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), key{}, u)))
		})
	}
}

func RoleMiddleware(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := GetSession(r.Context())
			if !ok || !slices.Contains(roles, u.Role) {
				message(w, http.StatusForbidden, "Access denied")
				return
			}
			if u.Status != domain.StatusApproved {
				message(w, http.StatusForbidden, "Account pending approval")
				return
			}
			handler.ServeHTTP(w, r)
		})
	}
}

func Login(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &form); err != nil {
			message(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		b.mu.Lock()
		a := b.findByEmail(form.Email)
		var acc account
		if a != nil {
			acc = *a
		}
		b.mu.Unlock()

		if a == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(form.Password)) != nil {
			message(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		switch {
		case !acc.Verified:
			message(w, http.StatusForbidden, "Please verify your email first")
			return
		case acc.Status == domain.StatusRejected:
			message(w, http.StatusForbidden, "Your account has been rejected")
			return
		}

		token, err := b.issue(acc.User)
		if err != nil {
			log.Error().Err(err).Msg("failed to sign token")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, domain.AuthResult{Token: token, User: acc.User})
	}
}

func Register(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form domain.Registration
		if err := decodeBody(r, &form); err != nil {
			message(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.SignUpForm(form); err != nil {
			message(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.MinCost)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.findByEmail(form.Email) != nil {
			message(w, http.StatusConflict, "Email already registered")
			return
		}
		if _, ok := b.colleges[string(form.CollegeID)]; !ok {
			message(w, http.StatusBadRequest, "College not found")
			return
		}

		status := domain.StatusApproved
		if form.Role == domain.RoleTeacher || form.Role == domain.RoleForumHead {
			status = domain.StatusPending
		}
		u := domain.User{
			ID:         domain.ID(b.id()),
			Name:       form.Name,
			Email:      form.Email,
			Role:       form.Role,
			Status:     status,
			CollegeID:  form.CollegeID,
			Department: form.Department,
		}
		b.users[string(u.ID)] = &account{User: u, hash: hash}
		otp := newOTP()
		b.otps[u.Email] = otp
		log.Info().Str("email", u.Email).Str("otp", otp).Msg("verification code issued")

		message(w, http.StatusCreated, "Registration successful. Enter the code sent to your email.")
	}
}

func VerifyEmail(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form struct {
			Email string `json:"email"`
			OTP   string `json:"otp"`
		}
		if err := decodeBody(r, &form); err != nil {
			message(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		b.mu.Lock()
		expected, ok := b.otps[form.Email]
		a := b.findByEmail(form.Email)
		if !ok || a == nil || expected != form.OTP {
			b.mu.Unlock()
			message(w, http.StatusBadRequest, "Invalid or expired code")
			return
		}
		delete(b.otps, form.Email)
		a.Verified = true
		u := a.User
		b.mu.Unlock()

		token, err := b.issue(u)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, domain.AuthResult{Token: token, User: u})
	}
}

func Me(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetSession(r.Context())
		writeJSON(w, http.StatusOK, obj{"user": u})
	}
}
