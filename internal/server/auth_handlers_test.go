package server

import (
	"net/http"
	"testing"

	"gearswap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignup(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"username": "testuser",
				"email":    "test@example.com",
				"password": "Sup3r-Secret-Pw!",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate user",
			body: map[string]string{
				"username": "testuser",
				"email":    "test@example.com",
				"password": "Sup3r-Secret-Pw!",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Weak password",
			body: map[string]string{
				"username": "weakling",
				"email":    "weak@example.com",
				"password": "short",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid email",
			body: map[string]string{
				"username": "nomail",
				"email":    "not-an-email",
				"password": "Sup3r-Secret-Pw!",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Bad username",
			body: map[string]string{
				"username": "a",
				"email":    "short@example.com",
				"password": "Sup3r-Secret-Pw!",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Missing fields",
			body: map[string]string{
				"username": "incomplete",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.request(t, http.MethodPost, "/api/auth/signup", "", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				body := decodeBody(t, resp)
				assert.NotEmpty(t, body["token"])
			} else {
				_ = resp.Body.Close()
			}
		})
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	user, _ := ts.createUser(t, "returning")

	resp := ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    user.Email,
		"password": "Sup3r-Secret-Pw!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])

	resp = ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    user.Email,
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestPasswordResetFlow(t *testing.T) {
	ts := newTestServer(t)
	user, _ := ts.createUser(t, "forgetful")

	resp := ts.request(t, http.MethodPost, "/api/auth/reset/request", "", map[string]string{
		"email": user.Email,
	})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	_ = resp.Body.Close()

	// The token lands in the stored row; the mail carries it to the user.
	var row models.PasswordResetToken
	require.NoError(t, ts.db.Where("user_id = ?", user.ID).First(&row).Error)
	require.NotEmpty(t, ts.sender.sent)

	resp = ts.request(t, http.MethodPost, "/api/auth/reset/verify", "", map[string]string{
		"token":       row.Token,
		"newPassword": "An0ther-Secret-Pw!",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var updated models.User
	require.NoError(t, ts.db.First(&updated, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(updated.Password), []byte("An0ther-Secret-Pw!")))

	// The token is single-use.
	resp = ts.request(t, http.MethodPost, "/api/auth/reset/verify", "", map[string]string{
		"token":       row.Token,
		"newPassword": "Yet-An0ther-Pw!1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/auth/reset/request", "", map[string]string{
		"email": "ghost@example.com",
	})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	_ = resp.Body.Close()
	assert.Empty(t, ts.sender.sent)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/cart", "/api/outfits", "/api/likedPosts", "/api/search"} {
		resp := ts.request(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		_ = resp.Body.Close()
	}
}
