package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
)

func TestProvision_ProfileAndMembership(t *testing.T) {
	st := New()
	ctx := context.Background()

	p := &repository.Profile{
		Username:   "u1",
		Email:      "jane@example.org",
		Department: "IT",
		IsActive:   true,
		Keywords:   []string{"OpenID", "WSO2"},
	}
	err := st.Provision(ctx, p, &repository.MembershipChange{
		GroupSlug:  "IT",
		GroupTitle: "Information Technology",
		Role:       repository.RoleMember,
	})
	require.NoError(t, err)

	got, err := st.Profiles().Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", got.Email)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, []string{"OpenID", "WSO2"}, got.Keywords)

	g, err := st.Groups().Get(ctx, "IT")
	require.NoError(t, err)
	assert.Equal(t, "Information Technology", g.Title)
	assert.Equal(t, "public_invite", g.Access)

	m, err := st.Groups().Member(ctx, "IT", "u1")
	require.NoError(t, err)
	assert.Equal(t, repository.RoleMember, m.Role)
}

func TestProvision_PreservesCreatedAtAndUpdatesRole(t *testing.T) {
	st := New()
	ctx := context.Background()

	p := &repository.Profile{Username: "u1", IsActive: true}
	change := &repository.MembershipChange{GroupSlug: "IT", GroupTitle: "IT", Role: repository.RoleMember}
	require.NoError(t, st.Provision(ctx, p, change))

	first, err := st.Profiles().Get(ctx, "u1")
	require.NoError(t, err)
	joined, err := st.Groups().Member(ctx, "IT", "u1")
	require.NoError(t, err)

	change.Role = repository.RoleManager
	require.NoError(t, st.Provision(ctx, p, change))

	second, err := st.Profiles().Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	m, err := st.Groups().Member(ctx, "IT", "u1")
	require.NoError(t, err)
	assert.Equal(t, repository.RoleManager, m.Role)
	assert.Equal(t, joined.JoinedAt, m.JoinedAt, "re-provision must not reset the join time")
}

func TestProvision_NilMembershipTouchesNoGroups(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Provision(ctx, &repository.Profile{Username: "u1"}, nil))

	_, err := st.Groups().Get(ctx, "IT")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDepartments_CRUD(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Departments().Upsert(ctx, &repository.Department{Name: "IT", IsAllowed: true}))
	require.NoError(t, st.Departments().Upsert(ctx, &repository.Department{Name: "HR", Label: "Risorse Umane", IsAllowed: false}))

	list, err := st.Departments().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "HR", list[0].Name, "list is sorted by name")

	d, err := st.Departments().Get(ctx, "HR")
	require.NoError(t, err)
	assert.Equal(t, "Risorse Umane", d.Title())
	assert.False(t, d.IsAllowed)

	require.NoError(t, st.Departments().Delete(ctx, "HR"))
	_, err = st.Departments().Get(ctx, "HR")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = st.Departments().Delete(ctx, "HR")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGroups_DeleteRemovesMembers(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Provision(ctx, &repository.Profile{Username: "u1"},
		&repository.MembershipChange{GroupSlug: "IT", GroupTitle: "IT", Role: repository.RoleMember}))

	require.NoError(t, st.Groups().Delete(ctx, "IT"))

	_, err := st.Groups().Member(ctx, "IT", "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGroups_EnsureIsIdempotent(t *testing.T) {
	st := New()
	ctx := context.Background()

	g1, err := st.Groups().Ensure(ctx, "IT", "Information Technology")
	require.NoError(t, err)
	g2, err := st.Groups().Ensure(ctx, "IT", "otro título")
	require.NoError(t, err)

	assert.Equal(t, g1.Title, g2.Title, "existing group keeps its title")
	assert.Equal(t, g1.CreatedAt, g2.CreatedAt)
}
