package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upstart/api/internal/adapters/password"
	"github.com/upstart/api/internal/adapters/repository/memory"
	"github.com/upstart/api/internal/adapters/token"
	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
	"github.com/upstart/api/internal/core/services"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	store := memory.NewStore()
	userRepo := memory.NewUserRepository(store)
	pollRepo := memory.NewPollRepository(store)
	answerRepo := memory.NewPollAnswerRepository(store)
	responseRepo := memory.NewPollResponseRepository(store)
	loanRepo := memory.NewLoanRepository(store)

	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	tokens, err := token.NewManager("test-secret", "upstart-api", "upstart-app", time.Hour)
	require.NoError(t, err)

	if opts.VoteRateLimit == 0 {
		opts.VoteRateLimit = 1000
		opts.VoteRateBurst = 1000
	}
	if opts.CSRFKey == nil {
		opts.CSRFKey = bytes.Repeat([]byte("k"), 32)
	}
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"*"}
	}

	handler := NewHandler(Services{
		Auth:        services.NewAuthService(userRepo, pollRepo, hasher, tokens, nil, ""),
		Users:       services.NewUserService(userRepo, hasher),
		Polls:       services.NewPollService(pollRepo, answerRepo),
		PollAnswers: services.NewPollAnswerService(pollRepo, answerRepo),
		Votes:       services.NewPollResponseService(pollRepo, responseRepo),
		Loans:       services.NewLoanService(loanRepo),
	}, opts)

	return &testServer{t: t, handler: handler}
}

type call struct {
	method  string
	path    string
	body    any
	token   string
	session string
}

func (s *testServer) do(c call) *httptest.ResponseRecorder {
	s.t.Helper()

	var body bytes.Buffer
	switch b := c.body.(type) {
	case nil:
	case string:
		body.WriteString(b)
	default:
		require.NoError(s.t, json.NewEncoder(&body).Encode(b))
	}

	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.session})
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func (s *testServer) register(email string, session string) ports.AuthResult {
	s.t.Helper()
	rec := s.do(call{
		method:  http.MethodPost,
		path:    "/api/auth/register",
		body:    map[string]any{"email": email, "password": "password123"},
		session: session,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ports.AuthResult](s.t, rec)
}

func (s *testServer) createPoll(tok string, body map[string]any) domain.Poll {
	s.t.Helper()
	rec := s.do(call{method: http.MethodPost, path: "/api/polls", body: body, token: tok})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.Poll](s.t, rec)
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t, Options{})

	result := s.register("Ada@Example.com", "")
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "ada@example.com", result.User.Email)

	t.Run("duplicate email differing in case", func(t *testing.T) {
		rec := s.do(call{
			method: http.MethodPost,
			path:   "/api/auth/register",
			body:   map[string]any{"email": "ADA@example.com", "password": "password123"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login succeeds", func(t *testing.T) {
		rec := s.do(call{
			method: http.MethodPost,
			path:   "/api/auth/login",
			body:   map[string]any{"email": "ada@example.com", "password": "password123"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		login := decode[ports.AuthResult](t, rec)

		me := s.do(call{method: http.MethodGet, path: "/api/auth/me", token: login.Token})
		require.Equal(t, http.StatusOK, me.Code)
		assert.Equal(t, result.User.ID, decode[domain.User](t, me).ID)
	})

	t.Run("failures are indistinguishable", func(t *testing.T) {
		wrongPassword := s.do(call{
			method: http.MethodPost,
			path:   "/api/auth/login",
			body:   map[string]any{"email": "ada@example.com", "password": "nope-nope"},
		})
		unknownEmail := s.do(call{
			method: http.MethodPost,
			path:   "/api/auth/login",
			body:   map[string]any{"email": "nobody@example.com", "password": "nope-nope"},
		})
		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
		assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	})

	t.Run("me requires a valid token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, s.do(call{method: http.MethodGet, path: "/api/auth/me"}).Code)
		assert.Equal(t, http.StatusUnauthorized, s.do(call{method: http.MethodGet, path: "/api/auth/me", token: "garbage"}).Code)
	})

	t.Run("google sign-in disabled", func(t *testing.T) {
		rec := s.do(call{method: http.MethodPost, path: "/api/auth/google", body: map[string]any{"credential": "x"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestValidation(t *testing.T) {
	s := newTestServer(t, Options{})

	t.Run("field errors", func(t *testing.T) {
		rec := s.do(call{
			method: http.MethodPost,
			path:   "/api/auth/register",
			body:   map[string]any{"email": "not-an-email", "password": "short"},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		problem := decode[validationProblem](t, rec)
		assert.Equal(t, "One or more validation errors occurred.", problem.Title)
		assert.Equal(t, http.StatusBadRequest, problem.Status)
		assert.Contains(t, problem.Errors, "email")
		assert.Contains(t, problem.Errors, "password")
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		for _, path := range []string{"/api/auth/register", "/api/users"} {
			rec := s.do(call{
				method: http.MethodPost,
				path:   path,
				body:   map[string]any{"email": "long@example.com", "password": strings.Repeat("a", 100)},
			})
			require.Equal(t, http.StatusBadRequest, rec.Code, path)
			assert.Contains(t, decode[validationProblem](t, rec).Errors, "password", path)
		}
	})

	t.Run("multi-byte password over 72 bytes", func(t *testing.T) {
		rec := s.do(call{
			method: http.MethodPost,
			path:   "/api/auth/register",
			body:   map[string]any{"email": "runes@example.com", "password": strings.Repeat("é", 40)},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), domain.ErrPasswordTooLong.Error())
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := s.do(call{method: http.MethodPost, path: "/api/auth/login", body: "{not json"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[validationProblem](t, rec).Errors, "body")
	})

	t.Run("bad paging", func(t *testing.T) {
		rec := s.do(call{method: http.MethodGet, path: "/api/polls/active?limit=-1"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[validationProblem](t, rec).Errors, "limit")
	})
}

func TestPolls_AnonymousCreationMigratesOnRegister(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(call{method: http.MethodPost, path: "/api/polls", body: map[string]any{
		"question": "Pick one",
		"isActive": true,
		"answers":  []string{"Tea", "Coffee"},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.False(t, cookie.Secure)
	assert.Equal(t, 365*24*60*60, cookie.MaxAge)

	poll := decode[domain.Poll](t, rec)
	assert.Nil(t, poll.UserID)
	require.NotNil(t, poll.SessionID)
	assert.Equal(t, cookie.Value, *poll.SessionID)
	require.Len(t, poll.Answers, 2)
	assert.Equal(t, 1, poll.Answers[0].DisplayOrder)
	assert.Equal(t, 2, poll.Answers[1].DisplayOrder)

	rejected := s.do(call{method: http.MethodPost, path: "/api/polls", body: map[string]any{"question": "<b></b>"}})
	require.Equal(t, http.StatusBadRequest, rejected.Code)
	assert.Nil(t, sessionCookie(rejected), "a rejected poll does not start a session")

	owned := s.do(call{method: http.MethodGet, path: "/api/polls/user", session: cookie.Value})
	require.Equal(t, http.StatusOK, owned.Code)
	assert.Len(t, decode[[]domain.Poll](t, owned), 1)

	result := s.register("migrant@example.com", cookie.Value)
	assert.Equal(t, int64(1), result.MigratedPolls)

	got := s.do(call{method: http.MethodGet, path: "/api/polls/guid/" + poll.PollGUID.String()})
	require.Equal(t, http.StatusOK, got.Code)
	migrated := decode[domain.Poll](t, got)
	require.NotNil(t, migrated.UserID)
	assert.Equal(t, result.User.ID, *migrated.UserID)
	assert.Nil(t, migrated.SessionID)

	mine := s.do(call{method: http.MethodGet, path: "/api/polls/user", token: result.Token})
	require.Equal(t, http.StatusOK, mine.Code)
	assert.Len(t, decode[[]domain.Poll](t, mine), 1)

	again := s.do(call{
		method:  http.MethodPost,
		path:    "/api/auth/login",
		body:    map[string]any{"email": "migrant@example.com", "password": "password123"},
		session: cookie.Value,
	})
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, int64(0), decode[ports.AuthResult](t, again).MigratedPolls)
}

func TestPolls_OwnerOnlyMutations(t *testing.T) {
	s := newTestServer(t, Options{})
	owner := s.register("owner@example.com", "")
	other := s.register("other@example.com", "")

	poll := s.createPoll(owner.Token, map[string]any{"question": "Best editor?", "answers": []string{"vim", "emacs"}})
	path := fmt.Sprintf("/api/polls/%d", poll.ID)

	t.Run("anonymous update is unauthorized", func(t *testing.T) {
		rec := s.do(call{method: http.MethodPut, path: path, body: map[string]any{"question": "x"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-owner update is forbidden", func(t *testing.T) {
		rec := s.do(call{method: http.MethodPut, path: path, body: map[string]any{"question": "x"}, token: other.Token})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner update", func(t *testing.T) {
		rec := s.do(call{method: http.MethodPut, path: path, body: map[string]any{"question": "Best <b>editor</b> ever?", "isActive": false}, token: owner.Token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[domain.Poll](t, rec)
		assert.Equal(t, "Best editor ever?", updated.Question)
		assert.False(t, updated.IsActive)
	})

	t.Run("replace answers", func(t *testing.T) {
		rec := s.do(call{method: http.MethodPut, path: path + "/answers", body: map[string]any{"answers": []string{"nano", "helix", "zed"}}, token: owner.Token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		replaced := decode[domain.Poll](t, rec)
		require.Len(t, replaced.Answers, 3)
		for i, a := range replaced.Answers {
			assert.Equal(t, i+1, a.DisplayOrder)
		}

		tooFew := s.do(call{method: http.MethodPut, path: path + "/answers", body: map[string]any{"answers": []string{"one"}}, token: owner.Token})
		assert.Equal(t, http.StatusBadRequest, tooFew.Code)
	})

	t.Run("missing poll", func(t *testing.T) {
		rec := s.do(call{method: http.MethodPut, path: "/api/polls/9999", body: map[string]any{"question": "x"}, token: owner.Token})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, s.do(call{method: http.MethodDelete, path: path, token: other.Token}).Code)
		assert.Equal(t, http.StatusNoContent, s.do(call{method: http.MethodDelete, path: path, token: owner.Token}).Code)
		assert.Equal(t, http.StatusNotFound, s.do(call{method: http.MethodGet, path: path}).Code)
	})
}

func TestPollAnswers(t *testing.T) {
	s := newTestServer(t, Options{})
	owner := s.register("owner@example.com", "")
	poll := s.createPoll(owner.Token, map[string]any{"question": "Color?", "answers": []string{"red", "green"}})

	rec := s.do(call{method: http.MethodPost, path: "/api/poll-answers", body: map[string]any{"pollId": poll.ID, "answerText": "blue"}, token: owner.Token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	answer := decode[domain.PollAnswer](t, rec)
	assert.Equal(t, 3, answer.DisplayOrder)

	list := s.do(call{method: http.MethodGet, path: fmt.Sprintf("/api/poll-answers/poll/%d", poll.ID)})
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decode[[]domain.PollAnswer](t, list), 3)

	assert.Equal(t, http.StatusUnauthorized, s.do(call{method: http.MethodPost, path: "/api/poll-answers", body: map[string]any{"pollId": poll.ID, "answerText": "x"}}).Code)
	assert.Equal(t, http.StatusNoContent, s.do(call{method: http.MethodDelete, path: fmt.Sprintf("/api/poll-answers/%d", answer.ID), token: owner.Token}).Code)
}

func TestVoting(t *testing.T) {
	s := newTestServer(t, Options{})
	owner := s.register("owner@example.com", "")
	voter := s.register("voter@example.com", "")

	poll := s.createPoll(owner.Token, map[string]any{"question": "Lunch?", "answers": []string{"Pizza", "Salad"}})
	pizza, salad := poll.Answers[0], poll.Answers[1]

	t.Run("authenticated vote twice", func(t *testing.T) {
		body := map[string]any{"pollId": poll.ID, "pollAnswerId": pizza.ID}
		first := s.do(call{method: http.MethodPost, path: "/api/poll-stats", body: body, token: voter.Token})
		require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

		second := s.do(call{method: http.MethodPost, path: "/api/poll-stats", body: body, token: voter.Token})
		assert.Equal(t, http.StatusBadRequest, second.Code)
		assert.Contains(t, second.Body.String(), domain.ErrAlreadyResponded.Error())
	})

	t.Run("authenticated endpoint needs a token", func(t *testing.T) {
		rec := s.do(call{method: http.MethodPost, path: "/api/poll-stats", body: map[string]any{"pollId": poll.ID, "pollAnswerId": pizza.ID}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var anonymous domain.PollResponse
	var session string
	t.Run("anonymous vote sets the session cookie", func(t *testing.T) {
		rec := s.do(call{method: http.MethodPost, path: "/api/poll-stats/anonymous", body: map[string]any{"pollId": poll.ID, "pollAnswerId": salad.ID}})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		cookie := sessionCookie(rec)
		require.NotNil(t, cookie)
		session = cookie.Value

		anonymous = decode[domain.PollResponse](t, rec)
		assert.Nil(t, anonymous.UserID)
		require.NotNil(t, anonymous.SessionID)
		assert.Equal(t, session, *anonymous.SessionID)

		again := s.do(call{method: http.MethodPost, path: "/api/poll-stats/anonymous", body: map[string]any{"pollId": poll.ID, "pollAnswerId": salad.ID}, session: session})
		require.Equal(t, http.StatusCreated, again.Code)
		assert.Nil(t, sessionCookie(again), "existing cookie is reused")
	})

	t.Run("change vote", func(t *testing.T) {
		path := fmt.Sprintf("/api/poll-stats/%d", anonymous.ID)
		stranger := s.do(call{method: http.MethodPut, path: path, body: map[string]any{"pollAnswerId": pizza.ID}, token: owner.Token})
		assert.Equal(t, http.StatusForbidden, stranger.Code)

		rec := s.do(call{method: http.MethodPut, path: path, body: map[string]any{"pollAnswerId": pizza.ID}, session: session})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, pizza.ID, decode[domain.PollResponse](t, rec).PollAnswerID)

		missing := s.do(call{method: http.MethodPut, path: "/api/poll-stats/9999", body: map[string]any{"pollAnswerId": pizza.ID}, session: session})
		assert.Equal(t, http.StatusNotFound, missing.Code)
	})

	t.Run("my vote", func(t *testing.T) {
		rec := s.do(call{method: http.MethodGet, path: fmt.Sprintf("/api/poll-stats/poll/%d/mine", poll.ID), token: voter.Token})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, pizza.ID, decode[domain.PollResponse](t, rec).PollAnswerID)

		none := s.do(call{method: http.MethodGet, path: fmt.Sprintf("/api/poll-stats/poll/%d/mine", poll.ID), token: owner.Token})
		assert.Equal(t, http.StatusNotFound, none.Code)
	})

	t.Run("results", func(t *testing.T) {
		rec := s.do(call{method: http.MethodGet, path: fmt.Sprintf("/api/poll-stats/poll/%d/results", poll.ID)})
		require.Equal(t, http.StatusOK, rec.Code)

		results := decode[domain.PollResults](t, rec)
		assert.Equal(t, int64(3), results.TotalResponses)
		require.Len(t, results.Answers, 2)
		assert.Equal(t, "Pizza", results.Answers[0].AnswerText)

		var sum float64
		for _, a := range results.Answers {
			sum += a.Percentage
		}
		assert.InDelta(t, 100, sum, 0.0001)
	})

	t.Run("auth-required poll rejects anonymous votes", func(t *testing.T) {
		locked := s.createPoll(owner.Token, map[string]any{"question": "Members only?", "requiresAuthentication": true, "answers": []string{"yes", "no"}})
		rec := s.do(call{method: http.MethodPost, path: "/api/poll-stats/anonymous", body: map[string]any{"pollId": locked.ID, "pollAnswerId": locked.Answers[0].ID}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, sessionCookie(rec), "rejected votes do not start a session")
	})

	t.Run("unknown poll", func(t *testing.T) {
		rec := s.do(call{method: http.MethodPost, path: "/api/poll-stats/anonymous", body: map[string]any{"pollId": 9999, "pollAnswerId": 1}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("inactive poll", func(t *testing.T) {
		closed := s.createPoll(owner.Token, map[string]any{"question": "Closed?", "isActive": false, "answers": []string{"yes", "no"}})
		rec := s.do(call{method: http.MethodPost, path: "/api/poll-stats/anonymous", body: map[string]any{"pollId": closed.ID, "pollAnswerId": closed.Answers[0].ID}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, sessionCookie(rec))
	})
}

func TestListings(t *testing.T) {
	s := newTestServer(t, Options{})
	owner := s.register("owner@example.com", "")

	s.createPoll(owner.Token, map[string]any{"question": "Open?", "answers": []string{"a", "b"}})
	s.createPoll(owner.Token, map[string]any{"question": "Members?", "requiresAuthentication": true, "answers": []string{"a", "b"}})
	s.createPoll(owner.Token, map[string]any{"question": "Closed?", "isActive": false, "answers": []string{"a", "b"}})

	active := s.do(call{method: http.MethodGet, path: "/api/polls/active"})
	require.Equal(t, http.StatusOK, active.Code)
	assert.Len(t, decode[[]domain.Poll](t, active), 2)

	public := s.do(call{method: http.MethodGet, path: "/api/polls/public"})
	require.Equal(t, http.StatusOK, public.Code)
	assert.Len(t, decode[[]domain.Poll](t, public), 1)

	paged := s.do(call{method: http.MethodGet, path: "/api/polls/active?limit=1&offset=1"})
	require.Equal(t, http.StatusOK, paged.Code)
	assert.Len(t, decode[[]domain.Poll](t, paged), 1)

	nobody := s.do(call{method: http.MethodGet, path: "/api/polls/user"})
	require.Equal(t, http.StatusOK, nobody.Code)
	assert.JSONEq(t, "[]", nobody.Body.String())
}

func TestUsersAndLoans(t *testing.T) {
	s := newTestServer(t, Options{})

	created := s.do(call{method: http.MethodPost, path: "/api/users", body: map[string]any{"email": "profile@example.com", "password": "password123", "firstName": "Pro"}})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	assert.NotContains(t, created.Body.String(), "password")

	auth := s.register("borrower@example.com", "")

	rec := s.do(call{method: http.MethodPut, path: "/api/users/me", body: map[string]any{"firstName": "Bo", "lastName": "Rower"}, token: auth.Token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decode[domain.User](t, rec)
	assert.Equal(t, "Bo Rower", user.DisplayName())

	got := s.do(call{method: http.MethodGet, path: fmt.Sprintf("/api/users/%d", user.ID), token: auth.Token})
	assert.Equal(t, http.StatusOK, got.Code)

	loan := s.do(call{method: http.MethodPost, path: "/api/loans", body: map[string]any{
		"amount":       1000,
		"interestRate": 5.5,
		"termMonths":   12,
		"startDate":    "2026-01-15T00:00:00Z",
	}, token: auth.Token})
	require.Equal(t, http.StatusCreated, loan.Code, loan.Body.String())
	l := decode[domain.Loan](t, loan)
	assert.Equal(t, domain.LoanPending, l.Status)
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), l.EndDate.UTC())

	huge := s.do(call{method: http.MethodPost, path: "/api/loans", body: map[string]any{
		"amount":     1e13,
		"termMonths": 12,
		"lateFee":    1e13,
	}, token: auth.Token})
	require.Equal(t, http.StatusBadRequest, huge.Code, huge.Body.String())
	problem := decode[validationProblem](t, huge)
	assert.Contains(t, problem.Errors, "amount")
	assert.Contains(t, problem.Errors, "lateFee")

	list := s.do(call{method: http.MethodGet, path: "/api/loans", token: auth.Token})
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decode[[]domain.Loan](t, list), 1)

	assert.Equal(t, http.StatusUnauthorized, s.do(call{method: http.MethodGet, path: "/api/loans"}).Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Options{VoteRateLimit: 0.001, VoteRateBurst: 1})

	body := map[string]any{"email": "x@example.com", "password": "whatever1"}
	first := s.do(call{method: http.MethodPost, path: "/api/auth/login", body: body})
	assert.Equal(t, http.StatusUnauthorized, first.Code)

	second := s.do(call{method: http.MethodPost, path: "/api/auth/login", body: body})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

func TestHealthAndCSRF(t *testing.T) {
	s := newTestServer(t, Options{})

	health := s.do(call{method: http.MethodGet, path: "/healthz"})
	require.Equal(t, http.StatusOK, health.Code)
	assert.JSONEq(t, `{"status":"ok"}`, health.Body.String())

	rec := s.do(call{method: http.MethodGet, path: "/api/csrf/token"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[csrfTokenResponse](t, rec)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, resp.Token, rec.Header().Get("X-CSRF-Token"))
}
