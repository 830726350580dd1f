package service

import (
	"math"
	"time"

	"github.com/consulio/auth-service/config"
	"github.com/consulio/auth-service/internal/auth/domain"
	autherror "github.com/consulio/auth-service/internal/errors"
	gocache "github.com/patrickmn/go-cache"
)

const (
	allowCacheTTL = time.Minute
	denyCacheTTL  = 10 * time.Second
)

// AccessDecision is the verdict of the layered access check.
type AccessDecision struct {
	CanAccess      bool
	Reason         autherror.DenyReason
	RemainingHours int
}

// AccessEngine reconciles account status, the maintenance switch and
// temporary lockouts into an allow/deny verdict. The admin role is exempt
// from the disabled, lockout and maintenance checks; this is a deliberate,
// audited bypass.
type AccessEngine struct {
	maintenance *config.MaintenanceFlag
	cache       *gocache.Cache
	now         func() time.Time
}

func NewAccessEngine(maintenance *config.MaintenanceFlag) *AccessEngine {
	return &AccessEngine{
		maintenance: maintenance,
		cache:       gocache.New(allowCacheTTL, 5*time.Minute),
		now:         time.Now,
	}
}

// Decide evaluates the rules in fixed precedence without touching the cache.
func (e *AccessEngine) Decide(user *domain.User) AccessDecision {
	if user == nil {
		return AccessDecision{Reason: autherror.DenyUserNotFound}
	}

	admin := user.IsAdmin()

	if e.maintenance.Enabled() && !admin {
		return AccessDecision{Reason: autherror.DenyMaintenanceMode}
	}

	if !admin && !user.IsActive {
		return AccessDecision{Reason: autherror.DenyAccountDisabled}
	}

	if !admin && user.LogoutUntil != nil && user.LogoutUntil.After(e.now()) {
		remaining := int(math.Ceil(user.LogoutUntil.Sub(e.now()).Hours()))
		if remaining < 1 {
			remaining = 1
		}
		return AccessDecision{
			Reason:         autherror.DenyTemporarilyLoggedOut,
			RemainingHours: remaining,
		}
	}

	return AccessDecision{CanAccess: true}
}

// Check is Decide behind a short per-user cache. Allow results are kept
// longer than deny results so a lifted restriction is noticed quickly.
func (e *AccessEngine) Check(user *domain.User) AccessDecision {
	if user == nil {
		return e.Decide(nil)
	}

	if cached, ok := e.cache.Get(user.ID); ok {
		return cached.(AccessDecision)
	}

	decision := e.Decide(user)
	ttl := allowCacheTTL
	if !decision.CanAccess {
		ttl = denyCacheTTL
	}
	e.cache.Set(user.ID, decision, ttl)

	return decision
}

// Invalidate drops the cached verdict for a user. Must be called whenever a
// status field (active flag, role, logoutUntil) changes.
func (e *AccessEngine) Invalidate(userID string) {
	e.cache.Delete(userID)
}
