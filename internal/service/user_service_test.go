package service

import (
	"Lazo/internal/api/dto"
	"Lazo/internal/model"
	"Lazo/internal/pkg/security"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[uint64]*model.User)}
}

func (s *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID
	s.nextID++
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserRepo) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func newUserFixture(t *testing.T) (*fakeUserRepo, *fakeProfileRepo, UserService) {
	t.Helper()
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	svc := NewUserService(users, profiles, newTestSequencer(newFakeCacheStore()))
	return users, profiles, svc
}

func TestRegisterCreatesCredentialsAndProfile(t *testing.T) {
	users, profiles, svc := newUserFixture(t)

	token, err := svc.Register(context.Background(), &dto.RegisterDTO{
		Username: "ana",
		Email:    "ana@test.local",
		Password: "secreto123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.NotZero(t, token.UserID)

	// 凭据只存哈希
	saved, err := users.GetByEmail(context.Background(), "ana@test.local")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto123", saved.Password)
	assert.NoError(t, security.CheckPasswordHash("secreto123", saved.Password))

	// 档案与凭据同 ID
	profile, err := profiles.GetByID(context.Background(), token.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ana", profile.Name)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, _, svc := newUserFixture(t)

	reg := &dto.RegisterDTO{Username: "ana", Email: "ana@test.local", Password: "secreto123"}
	_, err := svc.Register(context.Background(), reg)
	require.NoError(t, err)

	reg2 := &dto.RegisterDTO{Username: "otra", Email: "ana@test.local", Password: "secreto123"}
	_, err = svc.Register(context.Background(), reg2)
	assert.ErrorIs(t, err, ErrUserEmailExist)
}

func TestLoginWrongPassword(t *testing.T) {
	_, _, svc := newUserFixture(t)

	_, err := svc.Register(context.Background(), &dto.RegisterDTO{
		Username: "ana", Email: "ana@test.local", Password: "secreto123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginDTO{Email: "ana@test.local", Password: "mal"})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)

	_, err = svc.Login(context.Background(), &dto.LoginDTO{Email: "nadie@test.local", Password: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetProfileNotFound(t *testing.T) {
	_, _, svc := newUserFixture(t)

	_, err := svc.GetProfile(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetProfileReturnsProjections(t *testing.T) {
	_, profiles, svc := newUserFixture(t)
	profiles.addProfile(7, "eva")

	got, err := svc.GetProfile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.UserID)
	assert.Equal(t, "eva", got.Name)
	assert.NotNil(t, got.Posts)
}
