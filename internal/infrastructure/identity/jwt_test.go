package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openmuni/casework/internal/domain/entity"
)

type mockUserRepo struct {
	users map[string]*entity.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return m.users[id], nil
}

func testConfig() Config {
	return Config{
		Secret:   "test-signing-secret",
		Issuer:   "casework-test",
		TokenTTL: time.Hour,
	}
}

func seedUser(t *testing.T, repo *mockUserRepo, id string, role entity.Role, secret string, active bool) {
	t.Helper()
	hash, err := HashSecret(secret)
	require.NoError(t, err)
	repo.users[id] = &entity.User{ID: id, Name: id, Role: role, SecretHash: hash, Active: active}
}

func newTestService(t *testing.T) (*Service, *mockUserRepo) {
	t.Helper()
	repo := &mockUserRepo{users: make(map[string]*entity.User)}
	seedUser(t, repo, "sw-1", entity.RoleSocialWorker, "correct-horse", true)
	return NewService(repo, testConfig(), zap.NewNop()), repo
}

func TestIssueAndResolve(t *testing.T) {
	svc, _ := newTestService(t)

	token, expiresAt, err := svc.Issue(context.Background(), "sw-1", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	user, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "sw-1", user.ID)
	assert.Equal(t, entity.RoleSocialWorker, user.Role)
}

func TestIssue_WrongSecret(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Issue(context.Background(), "sw-1", "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssue_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Issue(context.Background(), "nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssue_InactiveUser(t *testing.T) {
	svc, repo := newTestService(t)
	seedUser(t, repo, "former-staff", entity.RoleCoordinator, "s3cret", false)

	_, _, err := svc.Issue(context.Background(), "former-staff", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolve_TamperedToken(t *testing.T) {
	svc, _ := newTestService(t)

	token, _, err := svc.Issue(context.Background(), "sw-1", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolve_WrongSigningKey(t *testing.T) {
	svc, repo := newTestService(t)

	other := testConfig()
	other.Secret = "a-different-secret"
	otherSvc := NewService(repo, other, zap.NewNop())

	token, _, err := otherSvc.Issue(context.Background(), "sw-1", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolve_ExpiredToken(t *testing.T) {
	svc, _ := newTestService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.Issue(context.Background(), "sw-1", "correct-horse")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolve_WrongIssuer(t *testing.T) {
	svc, repo := newTestService(t)

	other := testConfig()
	other.Issuer = "someone-else"
	otherSvc := NewService(repo, other, zap.NewNop())

	token, _, err := otherSvc.Issue(context.Background(), "sw-1", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolve_DeactivatedAfterIssue(t *testing.T) {
	// Role and active flag come from the store at resolve time, so a
	// deactivation invalidates outstanding tokens immediately.
	svc, repo := newTestService(t)

	token, _, err := svc.Issue(context.Background(), "sw-1", "correct-horse")
	require.NoError(t, err)

	repo.users["sw-1"].Active = false

	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashSecret_Verifiable(t *testing.T) {
	hash, err := HashSecret("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.NotEmpty(t, hash)
}
