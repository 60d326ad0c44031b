// Package provision applies the account policy of a login: fills the local
// profile from provider claims, decides activation, and derives the
// department group membership.
package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/wso2gate/internal/claims"
	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
	"github.com/dropDatabas3/wso2gate/internal/email"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
)

// TerminatedSentinel is the employee-number value the provider emits for
// terminated employments.
const TerminatedSentinel = "CESSATO"

// Policy configures the activation rules.
type Policy struct {
	// RequireApproval forces every account to Inactive until a staff member
	// activates it.
	RequireApproval bool

	// TerminatedSentinel overrides the default employee-number sentinel.
	TerminatedSentinel string
}

func (p Policy) sentinel() string {
	if p.TerminatedSentinel != "" {
		return p.TerminatedSentinel
	}
	return TerminatedSentinel
}

// Engine runs the provisioning of one login.
type Engine struct {
	store    repository.Store
	registry claims.Registry
	policy   Policy
	welcome  *email.WelcomeMailer // nil deshabilita el correo de bienvenida

	// collapses concurrent group creation for the same department
	groups singleflight.Group
}

// New builds an engine. welcome may be nil.
func New(store repository.Store, registry claims.Registry, policy Policy, welcome *email.WelcomeMailer) *Engine {
	return &Engine{
		store:    store,
		registry: registry,
		policy:   policy,
		welcome:  welcome,
	}
}

// Result reports what a login run did.
type Result struct {
	Profile *repository.Profile

	// Activated is true when the account transitioned into Active on this
	// login.
	Activated bool

	// Membership is the group mutation applied, nil when the account ended
	// Inactive.
	Membership *repository.MembershipChange
}

// ErrNoSubject is returned when the claim set carries no usable subject id.
var ErrNoSubject = errors.New("provision: claim set has no subject id")

// Login provisions the account for one authenticated login. The profile save
// and the membership mutation land in a single transaction; on error no
// partial state is committed.
func (e *Engine) Login(ctx context.Context, providerID string, set claims.Set) (*Result, error) {
	common := claims.ExtractCommon(set)
	if common.Username == "" {
		return nil, ErrNoSubject
	}

	log := logger.From(ctx).With(
		logger.Component("provision.Engine"),
		logger.Username(common.Username),
		logger.Provider(providerID),
	)

	profile, err := e.store.Profiles().Get(ctx, common.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("provision: load profile: %w", err)
		}
		profile = &repository.Profile{Username: common.Username}
	}

	wasActive := profile.IsActive
	hadLoggedIn := profile.LastLoginAt != nil

	e.populate(profile, providerID, common, set)

	active, membership, err := e.evaluate(ctx, profile, log)
	if err != nil {
		return nil, err
	}
	profile.IsActive = active

	becameActive := active && !wasActive
	if active {
		// A denied attempt is not a login: last_login stays unset so a later
		// activation still counts as the first one.
		now := time.Now().UTC()
		profile.LastLoginAt = &now
	}

	if membership != nil {
		// Pre-create the group outside the login transaction so concurrent
		// first logins of the same department collapse into one creation.
		slug := membership.GroupSlug
		title := membership.GroupTitle
		if _, err, _ := e.groups.Do(slug, func() (any, error) {
			return e.store.Groups().Ensure(ctx, slug, title)
		}); err != nil {
			return nil, fmt.Errorf("provision: ensure group %q: %w", slug, err)
		}
	}

	if err := e.store.Provision(ctx, profile, membership); err != nil {
		return nil, fmt.Errorf("provision: persist login: %w", err)
	}

	log.Info("login provisioned",
		logger.Department(profile.Department),
		logger.Bool("active", profile.IsActive),
		logger.Bool("became_active", becameActive),
	)

	// Welcome mail on the first activation ever. Best effort: a notification
	// failure never fails the login.
	if becameActive && !hadLoggedIn && e.welcome != nil {
		if err := e.welcome.Send(profile.Email, profile.FirstName); err != nil {
			log.Warn("welcome email failed", logger.Err(err))
		}
	}

	return &Result{Profile: profile, Activated: becameActive, Membership: membership}, nil
}

// populate fills blank profile fields from the claim set. Values already
// present are never overwritten.
func (e *Engine) populate(p *repository.Profile, providerID string, common claims.Common, set claims.Set) {
	fill(&p.Email, common.Email)
	fill(&p.FirstName, common.FirstName)
	fill(&p.LastName, common.LastName)

	extractor, ok := e.registry.Lookup(providerID)
	if !ok {
		return
	}

	targets := []struct {
		field string
		dst   *string
	}{
		{claims.FieldEmail, &p.Email},
		{claims.FieldFirstName, &p.FirstName},
		{claims.FieldLastName, &p.LastName},
		{claims.FieldCountry, &p.Country},
		{claims.FieldCity, &p.City},
		{claims.FieldZipcode, &p.Zipcode},
		{claims.FieldOrganization, &p.Organization},
		{claims.FieldVoice, &p.Voice},
		{claims.FieldLanguage, &p.Language},
		{claims.FieldTimezone, &p.Timezone},
		{claims.FieldPreferredUsername, &p.PreferredUsername},
		{claims.FieldEmployeeNumber, &p.EmployeeNumber},
		{claims.FieldFiscalCode, &p.FiscalCode},
		{claims.FieldDepartment, &p.Department},
		{claims.FieldAuthMethod, &p.AuthMethod},
		{claims.FieldGroups, &p.Groups},
		{claims.FieldRoles, &p.Roles},
	}
	for _, t := range targets {
		if *t.dst != "" {
			continue
		}
		if v, ok := extractor.Extract(t.field, set); ok {
			*t.dst = v
		}
	}

	// The manager flag drives promote/demote on every login, so it is
	// re-read whenever the claim is present instead of first-write-wins.
	if v, ok := extractor.Extract(claims.FieldIsManager, set); ok {
		p.IsManager = claims.ParseFlag(v)
	}

	if len(p.Keywords) == 0 {
		p.Keywords = claims.ExtractKeywords(set)
	}
}

// evaluate applies the activation precedence. Every rule is computed even
// when an earlier one already decided Inactive.
func (e *Engine) evaluate(ctx context.Context, p *repository.Profile, log *zap.Logger) (bool, *repository.MembershipChange, error) {
	approvalHold := e.policy.RequireApproval
	terminated := p.EmployeeNumber == e.policy.sentinel() || p.Department == ""

	var dept *repository.Department
	if p.Department != "" {
		d, err := e.store.Departments().Get(ctx, p.Department)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return false, nil, fmt.Errorf("provision: lookup department %q: %w", p.Department, err)
		}
		dept = d
	}
	notAllowed := dept == nil || !dept.IsAllowed

	if approvalHold || terminated || notAllowed {
		log.Debug("account inactive",
			logger.Bool("approval_hold", approvalHold),
			logger.Bool("terminated", terminated),
			logger.Bool("department_not_allowed", notAllowed),
		)
		return false, nil, nil
	}

	role := repository.RoleMember
	if p.IsManager {
		role = repository.RoleManager
	}
	return true, &repository.MembershipChange{
		GroupSlug:  dept.Name,
		GroupTitle: dept.Title(),
		Role:       role,
	}, nil
}

func fill(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}
