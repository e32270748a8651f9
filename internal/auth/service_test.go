package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/eventtrackpro/eventtrack-backend/config"
	"github.com/eventtrackpro/eventtrack-backend/internal/auth"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *auth.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) FindByUsername(username string) (*auth.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(userID uint) (auth.User, error) {
	args := m.Called(userID)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockUserRepo) Update(user *auth.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) CountUsers() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:    "access-secret",
		JWTRefreshSecret:   "refresh-secret",
		JWTAccessTTLHours:  2,
		JWTRefreshTTLHours: 168,
	}
}

func TestLogin_HashedPassword(t *testing.T) {
	repo := new(MockUserRepo)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	require.NoError(t, err)

	repo.On("FindByUsername", "ada").Return(&auth.User{
		ID: 1, Username: "ada", PasswordHash: string(hash), Role: "admin", Active: true,
	}, nil)

	svc := auth.NewService(repo, testConfig())
	pair, user, err := svc.Login(auth.LoginRequest{Username: "ada", Password: "hunter2"})

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "admin", user.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepo)
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	repo.On("FindByUsername", "ada").Return(&auth.User{
		ID: 1, Username: "ada", PasswordHash: string(hash), Active: true,
	}, nil)

	svc := auth.NewService(repo, testConfig())
	_, _, err := svc.Login(auth.LoginRequest{Username: "ada", Password: "wrong"})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("FindByUsername", "ghost").Return(nil, gorm.ErrRecordNotFound)

	svc := auth.NewService(repo, testConfig())
	_, _, err := svc.Login(auth.LoginRequest{Username: "ghost", Password: "x"})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("FindByUsername", "ada").Return(&auth.User{
		ID: 1, Username: "ada", Active: false,
	}, nil)

	svc := auth.NewService(repo, testConfig())
	_, _, err := svc.Login(auth.LoginRequest{Username: "ada", Password: "x"})

	assert.ErrorIs(t, err, auth.ErrUserInactive)
}

func TestLogin_LegacyPlaintextUpgradedToHash(t *testing.T) {
	repo := new(MockUserRepo)
	user := &auth.User{
		ID: 1, Username: "legacy", Password: "oldpass", Role: "admin", Active: true,
	}
	repo.On("FindByUsername", "legacy").Return(user, nil)

	var upgraded *auth.User
	repo.On("Update", mock.Anything).Run(func(args mock.Arguments) {
		upgraded = args.Get(0).(*auth.User)
	}).Return(nil)

	svc := auth.NewService(repo, testConfig())
	pair, _, err := svc.Login(auth.LoginRequest{Username: "legacy", Password: "oldpass"})

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	require.NotNil(t, upgraded, "legacy account should be upgraded on login")
	assert.Empty(t, upgraded.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(upgraded.PasswordHash), []byte("oldpass")))
}

func TestRefresh_RoundTrip(t *testing.T) {
	repo := new(MockUserRepo)
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	user := &auth.User{ID: 1, Username: "ada", PasswordHash: string(hash), Role: "admin", Active: true}
	repo.On("FindByUsername", "ada").Return(user, nil)
	repo.On("FindByID", uint(1)).Return(*user, nil)

	svc := auth.NewService(repo, testConfig())
	pair, _, err := svc.Login(auth.LoginRequest{Username: "ada", Password: "hunter2"})
	require.NoError(t, err)

	newPair, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	repo := new(MockUserRepo)
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	repo.On("FindByUsername", "ada").Return(&auth.User{
		ID: 1, Username: "ada", PasswordHash: string(hash), Active: true,
	}, nil)

	svc := auth.NewService(repo, testConfig())
	pair, _, err := svc.Login(auth.LoginRequest{Username: "ada", Password: "hunter2"})
	require.NoError(t, err)

	// an access token is signed with a different secret and must not refresh
	_, err = svc.Refresh(pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSeedAdminUser_OnlyOnEmptyTable(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("CountUsers").Return(int64(0), nil)
	repo.On("Create", mock.Anything).Return(nil)

	svc := auth.NewService(repo, testConfig())
	require.NoError(t, svc.SeedAdminUser("admin", "admin"))
	repo.AssertCalled(t, "Create", mock.Anything)

	repo2 := new(MockUserRepo)
	repo2.On("CountUsers").Return(int64(3), nil)
	svc2 := auth.NewService(repo2, testConfig())
	require.NoError(t, svc2.SeedAdminUser("admin", "admin"))
	repo2.AssertNotCalled(t, "Create", mock.Anything)
}
