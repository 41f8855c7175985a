package services

import (
	"context"
	"testing"
	"time"

	"votemate/internal/testutil"

	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	auth  *AuthService
	polls *PollService
	clock *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := testutil.SetupTestDB(t)

	creators, err := NewCreatorCache(conn, 16, time.Minute)
	if err != nil {
		t.Fatalf("NewCreatorCache failed: %v", err)
	}
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	polls := NewPollService(conn, creators)
	polls.now = func() time.Time { return clock }

	return &testEnv{
		db:    conn,
		auth:  NewAuthService(conn, NewTokenIssuer("test-secret", 24*time.Hour)),
		polls: polls,
		clock: &clock,
	}
}

func (e *testEnv) tick() {
	*e.clock = e.clock.Add(time.Minute)
}

func (e *testEnv) register(t *testing.T, username string) *Identity {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register %s failed: %v", username, err)
	}
	return res.User
}

func (e *testEnv) createPoll(t *testing.T, owner *Identity, question string, options ...string) *PollView {
	t.Helper()
	e.tick()
	poll, err := e.polls.CreatePoll(context.Background(), owner, question, options)
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}
	return poll
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
