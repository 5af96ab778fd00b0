package processors

import (
	"context"
	"fmt"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/events"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	shared "github.com/Builder-Lawyers/orbiter-backend/pkg/interfaces"
)

type NotifyOperators struct {
	notifier interfaces.Notifier
}

func NewNotifyOperators(notifier interfaces.Notifier) *NotifyOperators {
	return &NotifyOperators{notifier: notifier}
}

func (c *NotifyOperators) Handle(ctx context.Context, event events.NotifyOperators) (shared.UoW, error) {
	if err := c.notifier.Notify(ctx, event.Subject, event.Body); err != nil {
		return nil, errs.RetryableError{Err: fmt.Errorf("err notifying operators, %w", err)}
	}
	return nil, nil
}
