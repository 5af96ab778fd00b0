package auth

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Roles decides which organization roles may perform an action.
type Roles struct {
	enforcer *casbin.SyncedEnforcer
}

func NewRoles() (*Roles, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	for _, line := range strings.Split(embeddedPolicy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 3 || strings.TrimSpace(parts[0]) != "p" {
			continue
		}
		if _, err := enforcer.AddPolicy(strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])); err != nil {
			return nil, fmt.Errorf("failed to add policy %q: %w", line, err)
		}
	}
	return &Roles{enforcer: enforcer}, nil
}

// Authorize returns errs.PermissionsError when the identity's role does not
// allow the action.
func (r *Roles) Authorize(identity *Identity, action consts.Action) error {
	if identity == nil {
		return errs.PermissionsError{Err: fmt.Errorf("no identity for %s", action)}
	}
	allowed, err := r.enforcer.Enforce(string(identity.Role), string(action))
	if err != nil {
		return fmt.Errorf("enforcement failed: %w", err)
	}
	if !allowed {
		return errs.PermissionsError{Err: fmt.Errorf("role %s may not %s", identity.Role, action)}
	}
	return nil
}
