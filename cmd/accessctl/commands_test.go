package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

type OpsMock struct {
	mock.Mock
}

func (m *OpsMock) User(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *OpsMock) GrantPremium(ctx context.Context, actor models.Principal, targetUID string) (*models.User, error) {
	args := m.Called(ctx, actor, targetUID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *OpsMock) RevokePremium(ctx context.Context, actor models.Principal, targetUID string) (*models.User, error) {
	args := m.Called(ctx, actor, targetUID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *OpsMock) SetAccessEnabled(ctx context.Context, actor models.Principal, targetUID string, enabled bool) (*models.User, error) {
	args := m.Called(ctx, actor, targetUID, enabled)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func opener(ops AccessOps) Opener {
	return func(context.Context) (AccessOps, func(), error) {
		return ops, func() {}, nil
	}
}

func run(t *testing.T, ops AccessOps, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(opener(ops))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

var rootRecord = &models.User{UID: "root", Email: "superadmin@crimewatch.com", Role: models.RoleSuperAdmin}

func rootPrincipal() models.Principal {
	return models.Principal{UID: "root", Email: "superadmin@crimewatch.com", Role: models.RoleSuperAdmin}
}

func TestAccessctl_ActorRequired(t *testing.T) {
	ops := new(OpsMock)
	_, err := run(t, ops, "premium", "grant", "u-1", "--actor", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--actor is required")
	ops.AssertNotCalled(t, "GrantPremium", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccessctl_PremiumGrant(t *testing.T) {
	ops := new(OpsMock)
	ops.On("User", mock.Anything, "root").Return(rootRecord, nil).Once()
	ops.On("GrantPremium", mock.Anything, rootPrincipal(), "u-1").
		Return(&models.User{UID: "u-1", PremiumOverride: true}, nil).Once()

	out, err := run(t, ops, "premium", "grant", "u-1", "--actor", "root")
	require.NoError(t, err)
	assert.Contains(t, out, `"premium_override": true`)
	ops.AssertExpectations(t)
}

func TestAccessctl_PremiumRevoke(t *testing.T) {
	ops := new(OpsMock)
	ops.On("User", mock.Anything, "root").Return(rootRecord, nil).Once()
	ops.On("RevokePremium", mock.Anything, rootPrincipal(), "u-1").
		Return(&models.User{UID: "u-1"}, nil).Once()

	_, err := run(t, ops, "premium", "revoke", "u-1", "--actor", "root")
	require.NoError(t, err)
	ops.AssertExpectations(t)
}

func TestAccessctl_AccessDisableByNonSuperAdmin(t *testing.T) {
	admin := &models.User{UID: "adm", Role: models.RoleAdmin}
	ops := new(OpsMock)
	ops.On("User", mock.Anything, "adm").Return(admin, nil).Once()
	ops.On("SetAccessEnabled", mock.Anything, models.Principal{UID: "adm", Role: models.RoleAdmin}, "adm-2", false).
		Return(nil, fmt.Errorf("op: %w", access.ErrUnauthorized)).Once()

	_, err := run(t, ops, "access", "disable", "adm-2", "--actor", "adm")
	require.ErrorIs(t, err, access.ErrUnauthorized)
	ops.AssertExpectations(t)
}

func TestAccessctl_UserShow(t *testing.T) {
	ops := new(OpsMock)
	ops.On("User", mock.Anything, "u-1").
		Return(&models.User{UID: "u-1", Role: models.RoleUser, TrialsRemaining: 2}, nil).Once()

	out, err := run(t, ops, "user", "show", "u-1")
	require.NoError(t, err)
	assert.Contains(t, out, `"trials_remaining": 2`)
	assert.Contains(t, out, `"valid": true`)
	assert.NotContains(t, out, "subscription_months_left")
	ops.AssertExpectations(t)
}

func TestAccessctl_UserShowSubscription(t *testing.T) {
	expiry := time.Now().UTC().AddDate(0, 3, 5)
	ops := new(OpsMock)
	ops.On("User", mock.Anything, "u-2").
		Return(&models.User{
			UID:                    "u-2",
			Role:                   models.RoleUser,
			SubscriptionStatus:     models.SubscriptionActive,
			SubscriptionExpiryDate: &expiry,
		}, nil).Once()

	out, err := run(t, ops, "user", "show", "u-2")
	require.NoError(t, err)
	assert.Contains(t, out, `"subscription_months_left": 3`)
	assert.Contains(t, out, `"reason": null`)
	ops.AssertExpectations(t)
}
