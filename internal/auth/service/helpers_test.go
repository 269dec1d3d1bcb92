package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store/drivers/sqlite"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const testPassword = "Secure123!"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recorder counts observer events by outcome.
type recorder struct {
	mu     sync.Mutex
	events map[string]int
}

func (r *recorder) add(kind, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[string]int{}
	}
	r.events[kind+":"+outcome]++
}

func (r *recorder) count(kind, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[kind+":"+outcome]
}

func (r *recorder) AccountRegistered(role string)  { r.add("register", role) }
func (r *recorder) LoginAttempt(outcome string)    { r.add("login", outcome) }
func (r *recorder) MFAVerification(outcome string) { r.add("mfa", outcome) }
func (r *recorder) GuardDecision(outcome string)   { r.add("guard", outcome) }

type testEnv struct {
	store    *sqlite.Store
	clock    *testClock
	observer *recorder

	accounts  *AccountService
	tokens    *TokenService
	mfa       *MFAService
	login     *LoginService
	guard     *Guard
	partners  *PartnerService
	analytics *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	keys, err := jwtx.GenerateKeyRing(jwtx.AlgorithmEdDSA, 2)
	require.NoError(t, err)

	env := &testEnv{store: st, clock: newTestClock(), observer: &recorder{}}
	env.tokens = NewTokenService(keys, "auth-test", time.Hour, env.clock.Now)
	env.accounts = &AccountService{
		Store:            st,
		AllowOwnerSignup: true,
		Observer:         env.observer,
		Now:              env.clock.Now,
	}
	env.mfa = &MFAService{
		Accounts:   st.Accounts(),
		Challenges: st.MFAChallenges(),
		Tokens:     env.tokens,
		Observer:   env.observer,
		Now:        env.clock.Now,
	}
	env.login = &LoginService{
		Accounts: env.accounts,
		MFA:      env.mfa,
		Tokens:   env.tokens,
		Observer: env.observer,
	}
	env.guard = &Guard{Tokens: env.tokens, Observer: env.observer}
	env.partners = &PartnerService{Store: st}
	env.analytics = &AnalyticsService{Store: st}
	return env
}

func testContext() context.Context {
	return slogx.WithContext(context.Background(), slogx.Discard())
}

func ptr[T any](v T) *T { return &v }

func (e *testEnv) register(t *testing.T, email string, role domain.Role) domain.Account {
	t.Helper()
	in := RegisterInput{Email: email, Password: testPassword, Role: string(role)}
	if role == domain.RolePartner {
		in.AcceptTerms = true
		in.BusinessName = "Sparkle Cleaning"
	}
	a, err := e.accounts.Register(testContext(), in)
	require.NoError(t, err)
	return a
}

// challenge logs the owner in and returns the pending challenge.
func (e *testEnv) challenge(t *testing.T, email string) domain.ChallengeTicket {
	t.Helper()
	res, err := e.login.Login(testContext(), email, testPassword)
	require.NoError(t, err)
	require.True(t, res.MFARequired())
	require.Nil(t, res.Token)
	return *res.Challenge
}

func currentChallenge(t *testing.T, s store.MFAChallenges, accountID string) domain.MFAChallenge {
	t.Helper()
	c, err := s.Get(context.Background(), accountID)
	require.NoError(t, err)
	return c
}

// wrongCode returns a code of the same length that differs from code.
func wrongCode(code string) string {
	b := []byte(code)
	if b[0] == '9' {
		b[0] = '0'
	} else {
		b[0]++
	}
	return string(b)
}

func requireKind(t *testing.T, err error, kind domain.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, domain.KindOf(err), "got %v", err)
}
