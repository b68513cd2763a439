package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/upstart/api/internal/adapters/password"
	"github.com/upstart/api/internal/adapters/repository/memory"
	"github.com/upstart/api/internal/adapters/token"
	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	users     ports.UserRepository
	polls     ports.PollRepository
	answers   ports.PollAnswerRepository
	responses ports.PollResponseRepository
	loans     ports.LoanRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	tokens, err := token.NewManager("test-secret", "upstart-api", "upstart-app", 7*24*time.Hour)
	require.NoError(t, err)
	return &fixture{
		users:     memory.NewUserRepository(store),
		polls:     memory.NewPollRepository(store),
		answers:   memory.NewPollAnswerRepository(store),
		responses: memory.NewPollResponseRepository(store),
		loans:     memory.NewLoanRepository(store),
		hasher:    password.NewBcryptHasher(bcrypt.MinCost),
		tokens:    tokens,
	}
}

func (f *fixture) pollService() *pollService {
	return NewPollService(f.polls, f.answers).(*pollService)
}

func (f *fixture) responseService() *pollResponseService {
	return NewPollResponseService(f.polls, f.responses).(*pollResponseService)
}

func (f *fixture) authService(verifier ports.TokenVerifier, clientID string) *AuthService {
	return NewAuthService(f.users, f.polls, f.hasher, f.tokens, verifier, clientID)
}

func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) poll(t *testing.T, owner domain.Caller, input ports.CreatePollInput) *domain.Poll {
	t.Helper()
	if input.Question == "" {
		input.Question = "Which one?"
	}
	if input.Answers == nil {
		input.Answers = []string{"first", "second", "third"}
	}
	p, err := f.pollService().Create(context.Background(), owner, input)
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T {
	return &v
}
