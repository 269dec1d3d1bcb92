package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"empty email", RegisterInput{Email: "  ", Password: testPassword, Role: "customer"}, "email"},
		{"malformed email", RegisterInput{Email: "not-an-email", Password: testPassword, Role: "customer"}, "email"},
		{"email without domain dot", RegisterInput{Email: "a@localhost", Password: testPassword, Role: "customer"}, "email"},
		{"display name", RegisterInput{Email: "Alice <a@x.com>", Password: testPassword, Role: "customer"}, "email"},
		{"short password", RegisterInput{Email: "a@x.com", Password: "Ab1!", Role: "customer"}, "password"},
		{"password without digit", RegisterInput{Email: "a@x.com", Password: "Secure!!!", Role: "customer"}, "password"},
		{"password without letter", RegisterInput{Email: "a@x.com", Password: "12345678!", Role: "customer"}, "password"},
		{"unknown role", RegisterInput{Email: "a@x.com", Password: testPassword, Role: "admin"}, "role"},
		{"username charset", RegisterInput{Email: "a@x.com", Username: ptr("bad name"), Password: testPassword, Role: "customer"}, "username"},
		{"username too short", RegisterInput{Email: "a@x.com", Username: ptr("ab"), Password: testPassword, Role: "customer"}, "username"},
		{"partner without terms", RegisterInput{Email: "a@x.com", Password: testPassword, Role: "partner"}, "accept_terms"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.accounts.Register(testContext(), tc.in)
			requireKind(t, err, domain.KindValidation)

			var de *domain.Error
			require.True(t, errors.As(err, &de))
			require.Equal(t, tc.field, de.Field)
		})
	}

	stats, err := env.analytics.AccountStats(testContext())
	require.NoError(t, err)
	require.Zero(t, stats.Total)
}

func TestRegisterNormalizes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	a, err := env.accounts.Register(testContext(), RegisterInput{
		Email:    "  Alice@Example.COM ",
		Username: ptr("  Alice_01 "),
		Password: testPassword,
		Role:     " Customer ",
		Phone:    " +61 400 000 000 ",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", a.Email)
	require.Equal(t, "alice_01", *a.Username)
	require.Equal(t, domain.RoleCustomer, a.Role)
	require.Equal(t, "+61 400 000 000", a.Phone)
	require.False(t, a.MFAEnabled)
	require.Nil(t, a.PartnerStatus)
	require.NotEqual(t, testPassword, a.PasswordHash)
	require.Equal(t, 1, env.observer.count("register", "customer"))
}

func TestRegisterRoleDefaults(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	partner := env.register(t, "p@x.com", domain.RolePartner)
	status, ok := partner.CurrentPartnerStatus()
	require.True(t, ok)
	require.Equal(t, domain.PartnerPending, status)
	require.NotNil(t, partner.TermsAcceptedAt)
	require.False(t, partner.MFAEnabled)

	owner := env.register(t, "o@x.com", domain.RoleOwner)
	require.True(t, owner.MFAEnabled)

	stored, err := env.accounts.GetAccount(testContext(), owner.ID)
	require.NoError(t, err)
	require.True(t, stored.MFAEnabled)
}

func TestRegisterOwnerSignupDisabled(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.accounts.AllowOwnerSignup = false

	_, err := env.accounts.Register(testContext(), RegisterInput{Email: "o@x.com", Password: testPassword, Role: "owner"})
	requireKind(t, err, domain.KindValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.register(t, "a@x.com", domain.RoleCustomer)

	_, err := env.accounts.Register(testContext(), RegisterInput{Email: " A@X.com", Password: testPassword, Role: "partner", AcceptTerms: true})
	requireKind(t, err, domain.KindDuplicateIdentity)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	require.Equal(t, "email", de.Field)

	stats, err := env.analytics.AccountStats(testContext())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Total)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.accounts.Register(testContext(), RegisterInput{Email: "a@x.com", Username: ptr("alice"), Password: testPassword, Role: "customer"})
	require.NoError(t, err)

	_, err = env.accounts.Register(testContext(), RegisterInput{Email: "b@x.com", Username: ptr(" ALICE "), Password: testPassword, Role: "customer"})
	requireKind(t, err, domain.KindDuplicateIdentity)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	require.Equal(t, "username", de.Field)
}

func TestRegisterWithoutUsernameNeverCollides(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for i, username := range []*string{nil, ptr(""), ptr("   "), nil, ptr("\t")} {
		a, err := env.accounts.Register(testContext(), RegisterInput{
			Email:    string(rune('a'+i)) + "@x.com",
			Username: username,
			Password: testPassword,
			Role:     "customer",
		})
		require.NoError(t, err)
		require.Nil(t, a.Username)
	}
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		dups int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.accounts.Register(testContext(), RegisterInput{Email: "race@x.com", Password: testPassword, Role: "customer"})
			mu.Lock()
			defer mu.Unlock()
			switch domain.KindOf(err) {
			case domain.KindDuplicateIdentity:
				dups++
			default:
				if err == nil {
					ok++
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, ok)
	require.Equal(t, workers-1, dups)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	created, err := env.accounts.Register(testContext(), RegisterInput{Email: "a@x.com", Username: ptr("alice"), Password: testPassword, Role: "customer"})
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		a, err := env.accounts.Authenticate(testContext(), " A@x.com ", testPassword)
		require.NoError(t, err)
		require.Equal(t, created.ID, a.ID)
	})

	t.Run("by username", func(t *testing.T) {
		a, err := env.accounts.Authenticate(testContext(), "Alice", testPassword)
		require.NoError(t, err)
		require.Equal(t, created.ID, a.ID)
	})

	t.Run("failures are indistinguishable", func(t *testing.T) {
		_, wrongPassword := env.accounts.Authenticate(testContext(), "a@x.com", "Wrong1234!")
		_, unknown := env.accounts.Authenticate(testContext(), "nobody@x.com", testPassword)
		_, empty := env.accounts.Authenticate(testContext(), "", "")

		for _, err := range []error{wrongPassword, unknown, empty} {
			require.ErrorIs(t, err, domain.ErrAuthentication)
		}
		require.Equal(t, wrongPassword.Error(), unknown.Error())
		require.Equal(t, unknown.Error(), empty.Error())
	})
}

func TestSwitchRoleToggles(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := testContext()

	partner := env.register(t, "p@x.com", domain.RolePartner)
	_, err := env.partners.SetStatus(ctx, "owner-1", partner.ID, "approved")
	require.NoError(t, err)

	a, err := env.accounts.SwitchRole(ctx, partner.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleCustomer, a.Role)
	_, isPartner := a.CurrentPartnerStatus()
	require.False(t, isPartner)

	a, err = env.accounts.SwitchRole(ctx, partner.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RolePartner, a.Role)
	status, _ := a.CurrentPartnerStatus()
	require.Equal(t, domain.PartnerApproved, status, "status survives the round trip")

	a, err = env.accounts.SwitchRole(ctx, partner.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleCustomer, a.Role)
}

func TestSwitchRoleCustomerBecomesPendingPartner(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	customer := env.register(t, "c@x.com", domain.RoleCustomer)
	a, err := env.accounts.SwitchRole(testContext(), customer.ID)
	require.NoError(t, err)

	status, ok := a.CurrentPartnerStatus()
	require.True(t, ok)
	require.Equal(t, domain.PartnerPending, status)
}

func TestSwitchRoleRejectsOwner(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	owner := env.register(t, "o@x.com", domain.RoleOwner)
	_, err := env.accounts.SwitchRole(testContext(), owner.ID)
	requireKind(t, err, domain.KindValidation)

	stored, err := env.accounts.GetAccount(testContext(), owner.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, stored.Role)
}

func TestGetAccountNotFound(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.accounts.GetAccount(testContext(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.accounts.SwitchRole(testContext(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
