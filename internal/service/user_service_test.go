package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/service/auth"
	"github.com/pmackinlay/taskboard/internal/store"
)

func newUserService(users *mockUserStore, groups *mockGroupStore) UserService {
	return NewUserService(users, groups, auth.NewBcryptVerifier(), bcrypt.MinCost, testLogger())
}

func TestRegisterHashesPassword(t *testing.T) {
	var created *domain.User
	users := &mockUserStore{
		createFn: func(ctx context.Context, user *domain.User) error {
			created = user
			return nil
		},
	}
	svc := newUserService(users, &mockGroupStore{})

	user, err := svc.Register(context.Background(), "alice@example.com", "Alice", "s3cret-password")
	require.NoError(t, err)
	require.Same(t, user, created)

	assert.Empty(t, user.Password, "plaintext must be cleared before storage")
	require.NotEmpty(t, user.HashedPassword)
	assert.NoError(t,
		bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("s3cret-password")))
}

func TestRegisterInvalidEmail(t *testing.T) {
	svc := newUserService(&mockUserStore{}, &mockGroupStore{})

	_, err := svc.Register(context.Background(), "not-an-email", "Bob", "s3cret-password")
	assert.ErrorIs(t, err, domain.ErrEmailInvalid)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &mockUserStore{
		createFn: func(ctx context.Context, user *domain.User) error {
			return store.ErrEmailExists
		},
	}
	svc := newUserService(users, &mockGroupStore{})

	_, err := svc.Register(context.Background(), "alice@example.com", "Alice", "s3cret-password")
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestAuthenticate(t *testing.T) {
	hashed, err := auth.HashPassword("s3cret-password", bcrypt.MinCost)
	require.NoError(t, err)

	stored := &domain.User{
		ID:             uuid.New(),
		Email:          "alice@example.com",
		HashedPassword: hashed,
	}
	users := &mockUserStore{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return nil, store.ErrUserNotFound
		},
	}
	svc := newUserService(users, &mockGroupStore{})

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cret-password")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "alice@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "s3cret-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	hashed, err := auth.HashPassword("old-password-1", bcrypt.MinCost)
	require.NoError(t, err)

	stored := &domain.User{
		ID:             uuid.New(),
		Email:          "alice@example.com",
		HashedPassword: hashed,
	}
	users := &mockUserStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return stored, nil
		},
	}
	svc := newUserService(users, &mockGroupStore{})

	user, err := svc.UpdateUser(context.Background(), stored.ID, "", "", "new-password-1")
	require.NoError(t, err)
	assert.NoError(t,
		bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("new-password-1")))
}

func TestUpdateUserShortPassword(t *testing.T) {
	users := &mockUserStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: id, Email: "a@b.co", HashedPassword: "x"}, nil
		},
	}
	svc := newUserService(users, &mockGroupStore{})

	_, err := svc.UpdateUser(context.Background(), uuid.New(), "", "", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
}

func TestMemberGroups(t *testing.T) {
	groups := &mockGroupStore{
		listMemberGroupsFn: func(ctx context.Context, userID uuid.UUID) ([]string, error) {
			return []string{domain.AdminGroup, "support"}, nil
		},
	}
	svc := newUserService(&mockUserStore{}, groups)

	names, err := svc.MemberGroups(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []string{domain.AdminGroup, "support"}, names)
}
