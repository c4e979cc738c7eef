package handler_test

import (
	"net/http"
	"testing"

	"github.com/critics-hub/yamdb/internal/models"
	"github.com/critics-hub/yamdb/internal/testutil"
	"github.com/critics-hub/yamdb/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AuthHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB   *testutil.TestDatabase
	router   *gin.Engine
	recorder *testutil.MailRecorder
}

func (s *AuthHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.router, s.recorder = newTestRouter(s.T(), s.testDB.DB)
}

func (s *AuthHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *AuthHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *AuthHandlerIntegrationTestSuite) TestSignupSuccess() {
	w := doRequest(s.router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    "reader@example.com",
		"username": "bookworm42",
	}, "")

	assert.Equal(s.T(), http.StatusOK, w.Code)

	response := decodeBody(w)
	assert.Equal(s.T(), "reader@example.com", response["email"])
	assert.Equal(s.T(), "bookworm42", response["username"])

	// The code goes out by email, never in the response body.
	sent := s.recorder.Last()
	assert.NotNil(s.T(), sent)
	assert.Equal(s.T(), "reader@example.com", sent.Email)
	assert.NotEmpty(s.T(), sent.Code)

	var user models.User
	err := s.testDB.DB.Where("username = ?", "bookworm42").First(&user).Error
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.RoleUser, user.Role)
	assert.NotEmpty(s.T(), user.ConfirmationHash)
}

func (s *AuthHandlerIntegrationTestSuite) TestSignupReservedUsername() {
	for _, username := range []string{"me", "Me", "ME"} {
		w := doRequest(s.router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
			"email":    "me@example.com",
			"username": username,
		}, "")

		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	}
}

func (s *AuthHandlerIntegrationTestSuite) TestSignupInvalidInput() {
	testCases := []struct {
		name     string
		email    string
		username string
	}{
		{"Username with spaces", "a@example.com", "bad name"},
		{"Username with slash", "a@example.com", "bad/name"},
		{"Invalid email", "not-an-email", "gooduser"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := doRequest(s.router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
				"email":    tc.email,
				"username": tc.username,
			}, "")

			assert.Equal(s.T(), http.StatusBadRequest, w.Code)
		})
	}
}

func (s *AuthHandlerIntegrationTestSuite) TestSignupDuplicateUsername() {
	testutil.CreateTestUser(s.T(), s.testDB.DB, "taken", "taken@example.com", models.RoleUser)

	w := doRequest(s.router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    "other@example.com",
		"username": "taken",
	}, "")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), decodeBody(w)["error"], "username already exists")
}

func (s *AuthHandlerIntegrationTestSuite) TestSignupDuplicateEmail() {
	testutil.CreateTestUser(s.T(), s.testDB.DB, "someone", "taken@example.com", models.RoleUser)

	w := doRequest(s.router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    "taken@example.com",
		"username": "someoneelse",
	}, "")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), decodeBody(w)["error"], "email already exists")
}

func (s *AuthHandlerIntegrationTestSuite) TestSignupReissuesCode() {
	// Same username and email: not a conflict, a fresh code is issued.
	first := doRequest(s.router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    "repeat@example.com",
		"username": "repeater",
	}, "")
	assert.Equal(s.T(), http.StatusOK, first.Code)
	firstCode := s.recorder.Last().Code

	second := doRequest(s.router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    "repeat@example.com",
		"username": "repeater",
	}, "")
	assert.Equal(s.T(), http.StatusOK, second.Code)
	secondCode := s.recorder.Last().Code

	assert.Equal(s.T(), 2, s.recorder.Count())
	assert.NotEqual(s.T(), firstCode, secondCode)

	// Only the latest code works.
	w := doRequest(s.router, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "repeater",
		"confirmation_code": firstCode,
	}, "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)

	w = doRequest(s.router, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "repeater",
		"confirmation_code": secondCode,
	}, "")
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *AuthHandlerIntegrationTestSuite) TestTokenSuccess() {
	doRequest(s.router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    "reader@example.com",
		"username": "bookworm42",
	}, "")
	code := s.recorder.Last().Code

	w := doRequest(s.router, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "bookworm42",
		"confirmation_code": code,
	}, "")

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.NotEmpty(s.T(), decodeBody(w)["token"])
}

func (s *AuthHandlerIntegrationTestSuite) TestTokenWrongCode() {
	testutil.CreateTestUser(s.T(), s.testDB.DB, "confirmed", "confirmed@example.com", models.RoleUser)

	w := doRequest(s.router, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "confirmed",
		"confirmation_code": "not-the-code",
	}, "")

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.Contains(s.T(), decodeBody(w)["error"], "incorrect confirmation code")
}

func (s *AuthHandlerIntegrationTestSuite) TestTokenUnknownUser() {
	w := doRequest(s.router, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "ghost",
		"confirmation_code": "whatever",
	}, "")

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *AuthHandlerIntegrationTestSuite) TestTokenIssuedCodeStillRequired() {
	// Admin-created accounts have no code yet; a token request fails until
	// the account goes through signup.
	user := &models.User{
		ID:       "0d9257a6-21a8-4b55-8d2f-1f1a64d0f000",
		Username: "provisioned",
		Email:    "provisioned@example.com",
		Role:     models.RoleUser,
	}
	assert.NoError(s.T(), s.testDB.DB.Create(user).Error)

	w := doRequest(s.router, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "provisioned",
		"confirmation_code": "anything",
	}, "")

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerIntegrationTestSuite))
}
