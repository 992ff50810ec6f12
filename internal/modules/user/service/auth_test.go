package service_test

import (
	"context"
	"fmt"
	"testing"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/internal/modules/user/dto"
	"anoa.com/warbler/internal/modules/user/repository"
	"anoa.com/warbler/internal/modules/user/service"
	"anoa.com/warbler/internal/testutil"
	"anoa.com/warbler/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearch struct {
	indexed []uint
	deleted []uint
	ids     []uint
	err     error
}

func (f *fakeSearch) IndexUser(user *entity.User) error {
	f.indexed = append(f.indexed, user.ID)
	return nil
}

func (f *fakeSearch) DeleteUser(id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSearch) SearchUsers(query string, limit int64) ([]uint, error) {
	return f.ids, f.err
}

func newAuthService(t *testing.T) (service.AuthService, *fakeSearch) {
	t.Helper()
	db := testutil.NewDB(t)
	meili := &fakeSearch{}
	return service.NewAuthService(repository.NewUserRepository(db), testutil.Hasher, meili), meili
}

func TestSignup(t *testing.T) {
	svc, meili := newAuthService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		username := fmt.Sprintf("user%d", i)
		u, err := svc.Signup(ctx, dto.SignupInput{
			Username: username,
			Email:    username + "@test.com",
			Password: "password",
		})
		require.NoError(t, err)

		assert.NotZero(t, u.ID)
		assert.NotEqual(t, "password", u.PasswordHash)
		assert.True(t, testutil.Hasher.Check("password", u.PasswordHash))
		assert.Equal(t, entity.DefaultImageURL, u.ImageURL)
	}
	assert.Len(t, meili.indexed, 3)
}

func TestSignupDuplicate(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupInput{Username: "testuser", Email: "test@test.com", Password: "password"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, dto.SignupInput{Username: "testuser", Email: "new@test.com", Password: "password"})
	assert.ErrorIs(t, err, apperror.ErrIntegrityViolation)
	assert.Equal(t, "Username already taken", apperror.UserMessage(err))
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, dto.SignupInput{Username: "testuser", Email: "test@test.com", Password: "testuser"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "testuser", "testuser")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, errUnknown := svc.Authenticate(ctx, "nobody", "testuser")
	_, errWrong := svc.Authenticate(ctx, "testuser", "wrong")
	assert.ErrorIs(t, errUnknown, apperror.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, apperror.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrong)

	_, err = svc.Authenticate(ctx, "TESTUSER", "testuser")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthenticateTrimsUsername(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, dto.SignupInput{Username: " bob ", Email: "bob@test.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "bob", created.Username)

	u, err := svc.Authenticate(ctx, " bob ", "password")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
}
