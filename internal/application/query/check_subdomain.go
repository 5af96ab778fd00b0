package query

import (
	"context"
	"fmt"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/subdomain"
)

type CheckSubdomain struct {
	records interfaces.RecordGateway
}

func NewCheckSubdomain(records interfaces.RecordGateway) *CheckSubdomain {
	return &CheckSubdomain{records: records}
}

// Query reports whether a platform record already exists for the name. Names
// that break the naming rules are rejected before the provider is asked.
func (c *CheckSubdomain) Query(ctx context.Context, name string) (bool, error) {
	result := subdomain.Validate(name)
	if !result.IsValid {
		return false, errs.NewValidationError(result.Errors...)
	}

	lookup, err := c.records.RecordExists(ctx, subdomain.Normalize(name))
	if err != nil {
		return false, fmt.Errorf("err checking subdomain availability, %w", err)
	}
	return lookup.Exists, nil
}
