package provision

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/wso2gate/internal/claims"
	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
	"github.com/dropDatabas3/wso2gate/internal/email"
	"github.com/dropDatabas3/wso2gate/internal/store/memory"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (r *recordingSender) Send(to, subject, html, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp down")
	}
	r.sent = append(r.sent, to)
	return nil
}

func newTestEngine(t *testing.T, store repository.Store, policy Policy, sender email.Sender) *Engine {
	t.Helper()
	var welcome *email.WelcomeMailer
	if sender != nil {
		welcome = &email.WelcomeMailer{Sender: sender, SiteName: "GeoPortal", SiteURL: "https://geo.example.com"}
	}
	return New(store, claims.NewRegistry(), policy, welcome)
}

func allowDepartment(t *testing.T, store repository.Store, name, label string) {
	t.Helper()
	err := store.Departments().Upsert(context.Background(), &repository.Department{
		Name: name, Label: label, IsAllowed: true,
	})
	require.NoError(t, err)
}

func TestLogin_ActiveMemberScenario(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "Information Technology")
	eng := newTestEngine(t, store, Policy{}, nil)

	res, err := eng.Login(context.Background(), claims.WSO2ProviderID, claims.Set{
		"id":                 "u1",
		"email":              "",
		"preferred_username": "Jane Doe",
		"department":         "IT",
	})
	require.NoError(t, err)

	p := res.Profile
	assert.Equal(t, "u1", p.Username)
	assert.Equal(t, "u1", p.Email)
	assert.Equal(t, "Jane", p.FirstName)
	assert.Equal(t, "Doe", p.LastName)
	assert.True(t, p.IsActive)
	assert.True(t, res.Activated)

	require.NotNil(t, res.Membership)
	assert.Equal(t, "IT", res.Membership.GroupSlug)
	assert.Equal(t, repository.RoleMember, res.Membership.Role)

	m, err := store.Groups().Member(context.Background(), "IT", "u1")
	require.NoError(t, err)
	assert.Equal(t, repository.RoleMember, m.Role)

	g, err := store.Groups().Get(context.Background(), "IT")
	require.NoError(t, err)
	assert.Equal(t, "Information Technology", g.Title)
	assert.Equal(t, "public_invite", g.Access)
}

func TestLogin_ManagerIsPromoted(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "")
	eng := newTestEngine(t, store, Policy{}, nil)

	res, err := eng.Login(context.Background(), claims.WSO2ProviderID, claims.Set{
		"id":          "boss",
		"department":  "IT",
		"isdirigente": "TRUE",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Membership)
	assert.Equal(t, repository.RoleManager, res.Membership.Role)

	m, err := store.Groups().Member(context.Background(), "IT", "boss")
	require.NoError(t, err)
	assert.Equal(t, repository.RoleManager, m.Role)
}

func TestLogin_ManagerFlagRederivedEachLogin(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "")
	eng := newTestEngine(t, store, Policy{}, nil)
	ctx := context.Background()

	_, err := eng.Login(ctx, claims.WSO2ProviderID, claims.Set{
		"id": "u1", "department": "IT", "isdirigente": "true",
	})
	require.NoError(t, err)

	res, err := eng.Login(ctx, claims.WSO2ProviderID, claims.Set{
		"id": "u1", "department": "IT", "isdirigente": "false",
	})
	require.NoError(t, err)
	assert.Equal(t, repository.RoleMember, res.Membership.Role)

	m, err := store.Groups().Member(ctx, "IT", "u1")
	require.NoError(t, err)
	assert.Equal(t, repository.RoleMember, m.Role)
}

func TestLogin_TerminatedSentinelDeactivates(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "")
	eng := newTestEngine(t, store, Policy{}, nil)

	res, err := eng.Login(context.Background(), claims.WSO2ProviderID, claims.Set{
		"id":              "u1",
		"department":      "IT",
		"employee_number": "CESSATO",
	})
	require.NoError(t, err)
	assert.False(t, res.Profile.IsActive)
	assert.Nil(t, res.Membership)
}

func TestLogin_BlankDepartmentDeactivates(t *testing.T) {
	store := memory.New()
	eng := newTestEngine(t, store, Policy{}, nil)

	res, err := eng.Login(context.Background(), claims.WSO2ProviderID, claims.Set{
		"id": "u1", "email": "u1@example.com",
	})
	require.NoError(t, err)
	assert.False(t, res.Profile.IsActive)
	assert.Nil(t, res.Membership)
}

func TestLogin_UnknownDepartmentDeactivates(t *testing.T) {
	store := memory.New()
	eng := newTestEngine(t, store, Policy{}, nil)

	res, err := eng.Login(context.Background(), claims.WSO2ProviderID, claims.Set{
		"id": "u1", "department": "GHOST",
	})
	require.NoError(t, err)
	assert.False(t, res.Profile.IsActive)
}

func TestLogin_DisallowedDepartmentDeactivates(t *testing.T) {
	store := memory.New()
	err := store.Departments().Upsert(context.Background(), &repository.Department{
		Name: "IT", IsAllowed: false,
	})
	require.NoError(t, err)
	eng := newTestEngine(t, store, Policy{}, nil)

	res, err := eng.Login(context.Background(), claims.WSO2ProviderID, claims.Set{
		"id": "u1", "department": "IT",
	})
	require.NoError(t, err)
	assert.False(t, res.Profile.IsActive)
}

func TestLogin_ApprovalPolicyHoldsEverything(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "")
	eng := newTestEngine(t, store, Policy{RequireApproval: true}, nil)

	res, err := eng.Login(context.Background(), claims.WSO2ProviderID, claims.Set{
		"id": "u1", "department": "IT",
	})
	require.NoError(t, err)
	assert.False(t, res.Profile.IsActive)
	assert.Nil(t, res.Membership)
}

func TestLogin_FirstWriteWins(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "")
	eng := newTestEngine(t, store, Policy{}, nil)
	ctx := context.Background()

	_, err := eng.Login(ctx, claims.WSO2ProviderID, claims.Set{
		"id": "u1", "email": "first@example.com", "department": "IT",
	})
	require.NoError(t, err)

	res, err := eng.Login(ctx, claims.WSO2ProviderID, claims.Set{
		"id": "u1", "email": "second@example.com", "department": "IT",
	})
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", res.Profile.Email)
}

func TestLogin_WelcomeEmailOnlyOnFirstActivation(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "")
	sender := &recordingSender{}
	eng := newTestEngine(t, store, Policy{}, sender)
	ctx := context.Background()

	set := claims.Set{"id": "u1", "email": "u1@example.com", "department": "IT"}

	_, err := eng.Login(ctx, claims.WSO2ProviderID, set)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "u1@example.com", sender.sent[0])

	// Subsequent logins stay active and must not resend.
	_, err = eng.Login(ctx, claims.WSO2ProviderID, set)
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1)
}

func TestLogin_WelcomeOnDeferredActivation(t *testing.T) {
	store := memory.New()
	sender := &recordingSender{}
	eng := newTestEngine(t, store, Policy{}, sender)
	ctx := context.Background()

	// First attempt lands Inactive (department not allow-listed yet). A
	// denied attempt is not a login, so last_login stays unset.
	res, err := eng.Login(ctx, claims.WSO2ProviderID, claims.Set{
		"id": "u1", "email": "u1@example.com", "department": "IT",
	})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
	assert.Nil(t, res.Profile.LastLoginAt)

	allowDepartment(t, store, "IT", "")

	// Activation happens on a later attempt: that is the first real login,
	// so the welcome mail goes out now.
	res, err = eng.Login(ctx, claims.WSO2ProviderID, claims.Set{
		"id": "u1", "department": "IT",
	})
	require.NoError(t, err)
	assert.True(t, res.Activated)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "u1@example.com", sender.sent[0])
}

func TestLogin_NoWelcomeOnReactivation(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "")
	sender := &recordingSender{}
	eng := newTestEngine(t, store, Policy{}, sender)
	ctx := context.Background()

	_, err := eng.Login(ctx, claims.WSO2ProviderID, claims.Set{
		"id": "u1", "email": "u1@example.com", "department": "IT",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	// The department falls off the allow-list and the next login deactivates.
	err = store.Departments().Upsert(ctx, &repository.Department{Name: "IT", IsAllowed: false})
	require.NoError(t, err)
	res, err := eng.Login(ctx, claims.WSO2ProviderID, claims.Set{
		"id": "u1", "department": "IT",
	})
	require.NoError(t, err)
	assert.False(t, res.Profile.IsActive)

	// Coming back active is not a first activation: no second mail.
	allowDepartment(t, store, "IT", "")
	res, err = eng.Login(ctx, claims.WSO2ProviderID, claims.Set{
		"id": "u1", "department": "IT",
	})
	require.NoError(t, err)
	assert.True(t, res.Activated)
	assert.Len(t, sender.sent, 1)
}

func TestLogin_WelcomeFailureDoesNotFailLogin(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "")
	sender := &recordingSender{fail: true}
	eng := newTestEngine(t, store, Policy{}, sender)

	res, err := eng.Login(context.Background(), claims.WSO2ProviderID, claims.Set{
		"id": "u1", "email": "u1@example.com", "department": "IT",
	})
	require.NoError(t, err)
	assert.True(t, res.Profile.IsActive)
}

func TestLogin_MissingSubject(t *testing.T) {
	eng := newTestEngine(t, memory.New(), Policy{}, nil)
	_, err := eng.Login(context.Background(), claims.WSO2ProviderID, claims.Set{"email": "x@y.z"})
	assert.ErrorIs(t, err, ErrNoSubject)
}

func TestLogin_UnknownProviderStillProvisions(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "")
	eng := newTestEngine(t, store, Policy{}, nil)

	// No extractor registered: only the common fields apply, so the
	// department claim never lands and the account stays Inactive.
	res, err := eng.Login(context.Background(), "other_provider", claims.Set{
		"id": "u1", "department": "IT",
	})
	require.NoError(t, err)
	assert.False(t, res.Profile.IsActive)
	assert.Empty(t, res.Profile.Department)
}

func TestLogin_RecordsLastLoginOnlyWhenActive(t *testing.T) {
	store := memory.New()
	allowDepartment(t, store, "IT", "")
	eng := newTestEngine(t, store, Policy{}, nil)
	ctx := context.Background()

	res, err := eng.Login(ctx, claims.WSO2ProviderID, claims.Set{"id": "denied"})
	require.NoError(t, err)
	assert.Nil(t, res.Profile.LastLoginAt)

	before := time.Now().UTC().Add(-time.Second)
	res, err = eng.Login(ctx, claims.WSO2ProviderID, claims.Set{"id": "u1", "department": "IT"})
	require.NoError(t, err)
	require.NotNil(t, res.Profile.LastLoginAt)
	assert.True(t, res.Profile.LastLoginAt.After(before))
}
