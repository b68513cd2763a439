package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

func TestPollService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	svc := f.pollService()

	t.Run("authenticated caller owns the poll", func(t *testing.T) {
		p, err := svc.Create(ctx, domain.Caller{UserID: owner.ID, SessionID: sessionA}, ports.CreatePollInput{
			Question: "  <em>Pick</em> one ",
			Answers:  []string{"Tea", "  ", "<b>Coffee</b>"},
		})
		require.NoError(t, err)

		assert.Equal(t, "Pick one", p.Question)
		require.NotNil(t, p.UserID)
		assert.Equal(t, owner.ID, *p.UserID)
		assert.Nil(t, p.SessionID, "an authenticated poll is not bound to the session")
		assert.True(t, p.IsActive)
		assert.False(t, p.IsMultipleChoice)
		assert.Nil(t, p.ExpiresAt)
		assert.NotEqual(t, [16]byte{}, [16]byte(p.PollGUID))

		require.Len(t, p.Answers, 2)
		assert.Equal(t, "Tea", p.Answers[0].AnswerText)
		assert.Equal(t, 1, p.Answers[0].DisplayOrder)
		assert.Equal(t, "Coffee", p.Answers[1].AnswerText)
		assert.Equal(t, 2, p.Answers[1].DisplayOrder)
	})

	t.Run("anonymous caller binds the session", func(t *testing.T) {
		p, err := svc.Create(ctx, domain.AnonymousCaller(sessionA), ports.CreatePollInput{Question: "Pick one", IsActive: ptr(true)})
		require.NoError(t, err)
		assert.Nil(t, p.UserID)
		require.NotNil(t, p.SessionID)
		assert.Equal(t, sessionA, *p.SessionID)
	})

	t.Run("guids are unique", func(t *testing.T) {
		a, err := svc.Create(ctx, domain.UserCaller(owner.ID), ports.CreatePollInput{Question: "a"})
		require.NoError(t, err)
		b, err := svc.Create(ctx, domain.UserCaller(owner.ID), ports.CreatePollInput{Question: "b"})
		require.NoError(t, err)
		assert.NotEqual(t, a.PollGUID, b.PollGUID)
	})

	t.Run("needs an owner", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.Caller{}, ports.CreatePollInput{Question: "orphan"})
		assert.ErrorIs(t, err, domain.ErrMissingOwner)
	})

	t.Run("needs a question", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.UserCaller(owner.ID), ports.CreatePollInput{Question: "<p> </p>"})
		assert.ErrorIs(t, err, domain.ErrQuestionRequired)
	})
}

func TestPollService_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	other := f.user(t, "other@example.com")
	svc := f.pollService()
	poll := f.poll(t, domain.UserCaller(owner.ID), ports.CreatePollInput{})
	anonPoll := f.poll(t, domain.AnonymousCaller(sessionA), ports.CreatePollInput{})

	tests := []struct {
		name   string
		caller domain.Caller
		id     int64
		want   error
	}{
		{name: "anonymous", caller: domain.Caller{}, id: poll.ID, want: domain.ErrUnauthenticated},
		{name: "session owner is not enough", caller: domain.AnonymousCaller(sessionA), id: anonPoll.ID, want: domain.ErrUnauthenticated},
		{name: "other user", caller: domain.UserCaller(other.ID), id: poll.ID, want: domain.ErrNotPollOwner},
		{name: "missing poll", caller: domain.UserCaller(owner.ID), id: 9999, want: domain.ErrPollNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.caller, tt.id, ports.UpdatePollInput{Question: ptr("changed")})
			assert.ErrorIs(t, err, tt.want)

			_, err = svc.ReplaceAnswers(ctx, tt.caller, tt.id, []string{"x", "y"})
			assert.ErrorIs(t, err, tt.want)

			assert.ErrorIs(t, svc.Delete(ctx, tt.caller, tt.id), tt.want)
		})
	}

	stored, err := svc.GetByID(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, poll.Question, stored.Question, "rejected updates leave the poll untouched")
}

func TestPollService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	svc := f.pollService()
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	poll := f.poll(t, domain.UserCaller(owner.ID), ports.CreatePollInput{ExpiresAt: &expires})

	updated, err := svc.Update(ctx, domain.UserCaller(owner.ID), poll.ID, ports.UpdatePollInput{
		Question:               ptr("Renamed"),
		IsActive:               ptr(false),
		RequiresAuthentication: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Question)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.RequiresAuthentication)
	require.NotNil(t, updated.ExpiresAt, "untouched fields survive")
	assert.Equal(t, "Which one?", poll.Question, "the loaded snapshot is not mutated")

	cleared, err := svc.Update(ctx, domain.UserCaller(owner.ID), poll.ID, ports.UpdatePollInput{ClearExpiration: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.ExpiresAt)

	stored, err := svc.GetByID(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Question)
	assert.Nil(t, stored.ExpiresAt)

	_, err = svc.Update(ctx, domain.UserCaller(owner.ID), poll.ID, ports.UpdatePollInput{Question: ptr("   ")})
	assert.ErrorIs(t, err, domain.ErrQuestionRequired)
}

func TestPollService_ReplaceAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	svc := f.pollService()
	poll := f.poll(t, domain.UserCaller(owner.ID), ports.CreatePollInput{})

	replaced, err := svc.ReplaceAnswers(ctx, domain.UserCaller(owner.ID), poll.ID, []string{"z", "y", "x", "w"})
	require.NoError(t, err)
	require.Len(t, replaced.Answers, 4)
	for i, a := range replaced.Answers {
		assert.Equal(t, i+1, a.DisplayOrder)
		assert.Equal(t, poll.ID, a.PollID)
		assert.NotZero(t, a.ID)
	}

	stored, err := svc.GetByID(ctx, poll.ID)
	require.NoError(t, err)
	texts := make([]string, len(stored.Answers))
	for i, a := range stored.Answers {
		texts[i] = a.AnswerText
	}
	assert.Equal(t, []string{"z", "y", "x", "w"}, texts)

	_, err = svc.ReplaceAnswers(ctx, domain.UserCaller(owner.ID), poll.ID, []string{"only", ""})
	assert.ErrorIs(t, err, domain.ErrTooFewAnswers)
}

func TestPollService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	svc := f.pollService()
	poll := f.poll(t, domain.UserCaller(owner.ID), ports.CreatePollInput{})

	vote, err := f.responseService().Submit(ctx, domain.AnonymousCaller(sessionA), ports.SubmitResponseInput{PollID: poll.ID, PollAnswerID: poll.Answers[0].ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, domain.UserCaller(owner.ID), poll.ID))

	_, err = svc.GetByID(ctx, poll.ID)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
	_, err = f.answers.GetByID(ctx, poll.Answers[0].ID)
	assert.ErrorIs(t, err, domain.ErrAnswerNotFound)
	_, err = f.responses.GetByID(ctx, vote.ID)
	assert.ErrorIs(t, err, domain.ErrResponseNotFound)
}

func TestPollService_Listings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	svc := f.pollService()

	f.poll(t, domain.UserCaller(owner.ID), ports.CreatePollInput{Question: "open"})
	f.poll(t, domain.UserCaller(owner.ID), ports.CreatePollInput{Question: "members", RequiresAuthentication: true})
	f.poll(t, domain.UserCaller(owner.ID), ports.CreatePollInput{Question: "closed", IsActive: ptr(false)})
	f.poll(t, domain.UserCaller(owner.ID), ports.CreatePollInput{Question: "expired", ExpiresAt: ptr(time.Now().Add(-time.Hour))})
	f.poll(t, domain.AnonymousCaller(sessionA), ports.CreatePollInput{Question: "anonymous"})

	active, err := svc.ListActive(ctx, ports.ListPollsInput{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"open", "members", "anonymous"}, questionsOf(active))

	public, err := svc.ListPublic(ctx, ports.ListPollsInput{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"open", "anonymous"}, questionsOf(public))

	limited, err := svc.ListActive(ctx, ports.ListPollsInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	mine, err := svc.ListOwned(ctx, domain.UserCaller(owner.ID), ports.ListPollsInput{})
	require.NoError(t, err)
	assert.Len(t, mine, 4)

	session, err := svc.ListOwned(ctx, domain.AnonymousCaller(sessionA), ports.ListPollsInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"anonymous"}, questionsOf(session))

	nobody, err := svc.ListOwned(ctx, domain.Caller{}, ports.ListPollsInput{})
	require.NoError(t, err)
	assert.Empty(t, nobody)
}

func TestPage(t *testing.T) {
	tests := []struct {
		in          ports.ListPollsInput
		limit, offs int
	}{
		{in: ports.ListPollsInput{}, limit: defaultPageSize},
		{in: ports.ListPollsInput{Limit: 5, Offset: 10}, limit: 5, offs: 10},
		{in: ports.ListPollsInput{Limit: 1000}, limit: maxPageSize},
		{in: ports.ListPollsInput{Limit: -3, Offset: -1}, limit: defaultPageSize},
	}
	for _, tt := range tests {
		limit, offset := page(tt.in)
		assert.Equal(t, tt.limit, limit)
		assert.Equal(t, tt.offs, offset)
	}
}

func questionsOf(polls []*domain.Poll) []string {
	out := make([]string, len(polls))
	for i, p := range polls {
		out[i] = p.Question
	}
	return out
}
