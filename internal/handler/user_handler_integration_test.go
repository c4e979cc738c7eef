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

type UserHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	router *gin.Engine
}

func (s *UserHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.router, _ = newTestRouter(s.T(), s.testDB.DB)
}

func (s *UserHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *UserHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *UserHandlerIntegrationTestSuite) TestMeReturnsOwnProfile() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "selfuser", "self@example.com", models.RoleUser)
	user.Bio = "reads a lot"
	s.testDB.DB.Save(user)

	w := doRequest(s.router, http.MethodGet, "/api/v1/users/me", nil, testutil.TokenFor(s.T(), user))

	assert.Equal(s.T(), http.StatusOK, w.Code)
	response := decodeBody(w)
	assert.Equal(s.T(), "selfuser", response["username"])
	assert.Equal(s.T(), "self@example.com", response["email"])
	assert.Equal(s.T(), "reads a lot", response["bio"])
}

func (s *UserHandlerIntegrationTestSuite) TestMeRequiresAuth() {
	w := doRequest(s.router, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *UserHandlerIntegrationTestSuite) TestUpdateMe() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "selfuser", "self@example.com", models.RoleUser)

	w := doRequest(s.router, http.MethodPatch, "/api/v1/users/me", map[string]string{
		"first_name": "Sam",
		"bio":        "critic",
	}, testutil.TokenFor(s.T(), user))

	assert.Equal(s.T(), http.StatusOK, w.Code)
	response := decodeBody(w)
	assert.Equal(s.T(), "Sam", response["first_name"])
	assert.Equal(s.T(), "critic", response["bio"])
}

func (s *UserHandlerIntegrationTestSuite) TestUpdateMeRoleIsIgnoredForPlainUser() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "climber", "climber@example.com", models.RoleUser)

	w := doRequest(s.router, http.MethodPatch, "/api/v1/users/me", map[string]string{
		"role": "admin",
	}, testutil.TokenFor(s.T(), user))

	// Not an error: the field is dropped and the rest of the patch applies.
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "user", decodeBody(w)["role"])

	var stored models.User
	s.testDB.DB.Where("username = ?", "climber").First(&stored)
	assert.Equal(s.T(), models.RoleUser, stored.Role)
}

func (s *UserHandlerIntegrationTestSuite) TestUpdateMeUsernameConflict() {
	testutil.CreateTestUser(s.T(), s.testDB.DB, "taken", "taken@example.com", models.RoleUser)
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "renamer", "renamer@example.com", models.RoleUser)

	w := doRequest(s.router, http.MethodPatch, "/api/v1/users/me", map[string]string{
		"username": "taken",
	}, testutil.TokenFor(s.T(), user))

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *UserHandlerIntegrationTestSuite) TestListRequiresAdmin() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "plain", "plain@example.com", models.RoleUser)
	moderator := testutil.CreateTestUser(s.T(), s.testDB.DB, "mod", "mod@example.com", models.RoleModerator)

	w := doRequest(s.router, http.MethodGet, "/api/v1/users", nil, testutil.TokenFor(s.T(), user))
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	// Moderators are not admins.
	w = doRequest(s.router, http.MethodGet, "/api/v1/users", nil, testutil.TokenFor(s.T(), moderator))
	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *UserHandlerIntegrationTestSuite) TestListWithSearch() {
	admin := testutil.CreateTestUser(s.T(), s.testDB.DB, "admin", "admin@example.com", models.RoleAdmin)
	testutil.CreateTestUser(s.T(), s.testDB.DB, "alpha", "alpha@example.com", models.RoleUser)
	testutil.CreateTestUser(s.T(), s.testDB.DB, "alphabet", "alphabet@example.com", models.RoleUser)
	testutil.CreateTestUser(s.T(), s.testDB.DB, "beta", "beta@example.com", models.RoleUser)

	w := doRequest(s.router, http.MethodGet, "/api/v1/users?search=alpha", nil, testutil.TokenFor(s.T(), admin))

	assert.Equal(s.T(), http.StatusOK, w.Code)
	response := decodeBody(w)
	assert.Equal(s.T(), float64(2), response["count"])
}

func (s *UserHandlerIntegrationTestSuite) TestSuperuserPassesAdminGate() {
	super := testutil.CreateTestUser(s.T(), s.testDB.DB, "root", "root@example.com", models.RoleUser)
	super.IsSuperuser = true
	s.testDB.DB.Save(super)

	w := doRequest(s.router, http.MethodGet, "/api/v1/users", nil, testutil.TokenFor(s.T(), super))
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *UserHandlerIntegrationTestSuite) TestAdminCreateUser() {
	admin := testutil.CreateTestUser(s.T(), s.testDB.DB, "admin", "admin@example.com", models.RoleAdmin)

	w := doRequest(s.router, http.MethodPost, "/api/v1/users", map[string]string{
		"email":    "new@example.com",
		"username": "newbie",
		"role":     "moderator",
	}, testutil.TokenFor(s.T(), admin))

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	assert.Equal(s.T(), "moderator", decodeBody(w)["role"])

	var stored models.User
	err := s.testDB.DB.Where("username = ?", "newbie").First(&stored).Error
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.RoleModerator, stored.Role)
	// No confirmation code until the account signs up itself.
	assert.Empty(s.T(), stored.ConfirmationHash)
}

func (s *UserHandlerIntegrationTestSuite) TestAdminCreateUserInvalidRole() {
	admin := testutil.CreateTestUser(s.T(), s.testDB.DB, "admin", "admin@example.com", models.RoleAdmin)

	w := doRequest(s.router, http.MethodPost, "/api/v1/users", map[string]string{
		"email":    "new@example.com",
		"username": "newbie",
		"role":     "overlord",
	}, testutil.TokenFor(s.T(), admin))

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), decodeBody(w)["error"], "role must be one of")
}

func (s *UserHandlerIntegrationTestSuite) TestAdminPromoteUser() {
	admin := testutil.CreateTestUser(s.T(), s.testDB.DB, "admin", "admin@example.com", models.RoleAdmin)
	testutil.CreateTestUser(s.T(), s.testDB.DB, "promotee", "promotee@example.com", models.RoleUser)

	w := doRequest(s.router, http.MethodPatch, "/api/v1/users/promotee", map[string]string{
		"role": "moderator",
	}, testutil.TokenFor(s.T(), admin))

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var stored models.User
	s.testDB.DB.Where("username = ?", "promotee").First(&stored)
	assert.Equal(s.T(), models.RoleModerator, stored.Role)
}

func (s *UserHandlerIntegrationTestSuite) TestAdminGetUnknownUser() {
	admin := testutil.CreateTestUser(s.T(), s.testDB.DB, "admin", "admin@example.com", models.RoleAdmin)

	w := doRequest(s.router, http.MethodGet, "/api/v1/users/nobody", nil, testutil.TokenFor(s.T(), admin))
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *UserHandlerIntegrationTestSuite) TestAdminDeleteUserRemovesContent() {
	admin := testutil.CreateTestUser(s.T(), s.testDB.DB, "admin", "admin@example.com", models.RoleAdmin)
	author := testutil.CreateTestUser(s.T(), s.testDB.DB, "author", "author@example.com", models.RoleUser)
	other := testutil.CreateTestUser(s.T(), s.testDB.DB, "other", "other@example.com", models.RoleUser)

	title := testutil.CreateTestTitle(s.T(), s.testDB.DB, "Some Book", 1990, nil)
	review := testutil.CreateTestReview(s.T(), s.testDB.DB, title, author, "fine", 7)
	testutil.CreateTestComment(s.T(), s.testDB.DB, review, other, "agreed")

	w := doRequest(s.router, http.MethodDelete, "/api/v1/users/author", nil, testutil.TokenFor(s.T(), admin))
	assert.Equal(s.T(), http.StatusNoContent, w.Code)

	var reviewCount, commentCount int64
	s.testDB.DB.Model(&models.Review{}).Count(&reviewCount)
	s.testDB.DB.Model(&models.Comment{}).Count(&commentCount)
	assert.Equal(s.T(), int64(0), reviewCount)
	// Comments under the deleted author's reviews go with them.
	assert.Equal(s.T(), int64(0), commentCount)
}

func TestUserHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerIntegrationTestSuite))
}
