// Package tool implements the tool-invocation boundary: named
// side-effecting operations over external customer data, each reporting
// through the uniform ToolResult contract.
package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contractx "github.com/techflow/careflow/agent/contract"
)

const (
	ToolGetCustomerData         = "get_customer_data"
	ToolCalculateRetentionOffer = "calculate_retention_offer"
	ToolUpdateCustomerStatus    = "update_customer_status"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNoOffer          = errors.New("no retention offer available")
)

// CustomerDirectory looks up customer profiles by email. Lookups are
// case-insensitive on the email.
type CustomerDirectory interface {
	LookupByEmail(ctx context.Context, email string) (*contractx.CustomerProfile, error)
}

// StatusWriter records a customer status change. Writes are append-only and
// need no coordination across runs beyond an atomic append.
type StatusWriter interface {
	Append(ctx context.Context, customerID, action string, at time.Time) error
}

const defaultToolTimeout = 10 * time.Second

// Invoker dispatches the recognized tool names to their collaborators and
// folds every failure into the ToolResult union. It never returns a Go
// error as control flow.
type Invoker struct {
	directory CustomerDirectory
	rules     *OfferRules
	status    StatusWriter
	timeout   time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

type InvokerOption func(*Invoker)

func WithTimeout(d time.Duration) InvokerOption {
	return func(i *Invoker) {
		if d > 0 {
			i.timeout = d
		}
	}
}

func WithClock(now func() time.Time) InvokerOption {
	return func(i *Invoker) {
		if now != nil {
			i.now = now
		}
	}
}

func WithInvokerLogger(logger zerolog.Logger) InvokerOption {
	return func(i *Invoker) {
		i.logger = logger
	}
}

func NewInvoker(directory CustomerDirectory, rules *OfferRules, status StatusWriter, opts ...InvokerOption) (*Invoker, error) {
	if directory == nil {
		return nil, errors.New("customer directory is required")
	}
	if rules == nil {
		return nil, errors.New("offer rules are required")
	}
	if status == nil {
		return nil, errors.New("status writer is required")
	}

	inv := &Invoker{
		directory: directory,
		rules:     rules,
		status:    status,
		timeout:   defaultToolTimeout,
		now:       time.Now,
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv, nil
}

// Invoke executes one named tool. Unknown names, bad argument shapes,
// missing data, and deadline expiry all come back as typed failures.
func (i *Invoker) Invoke(ctx context.Context, tool string, args map[string]any) contractx.ToolResult {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	var res contractx.ToolResult
	switch tool {
	case ToolGetCustomerData:
		res = i.getCustomerData(ctx, args)
	case ToolCalculateRetentionOffer:
		res = i.calculateRetentionOffer(args)
	case ToolUpdateCustomerStatus:
		res = i.updateCustomerStatus(ctx, args)
	default:
		res = failure(tool, contractx.ErrorKindUnknownTool, fmt.Sprintf("unknown tool %q", tool))
	}

	if res.Failed() {
		i.logger.Warn().Str("tool", tool).Str("kind", string(res.Kind)).Str("error", res.Error).Msg("tool call failed")
	} else {
		i.logger.Debug().Str("tool", tool).Msg("tool call ok")
	}
	return res
}

func (i *Invoker) getCustomerData(ctx context.Context, args map[string]any) contractx.ToolResult {
	email, err := stringArg(args, "email")
	if err != nil {
		return failure(ToolGetCustomerData, contractx.ErrorKindInvalidInput, err.Error())
	}

	profile, err := i.directory.LookupByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		return failure(ToolGetCustomerData, contractx.ErrorKindNotFound, fmt.Sprintf("customer with email %s not found", email))
	case errors.Is(err, context.DeadlineExceeded):
		return failure(ToolGetCustomerData, contractx.ErrorKindTimeout, "customer lookup timed out")
	case err != nil:
		// Directory faults (for example a dropped Postgres connection) are
		// not a missing customer.
		return failure(ToolGetCustomerData, contractx.ErrorKindInternal, err.Error())
	}
	return contractx.ToolResult{Tool: ToolGetCustomerData, Result: profile}
}

func (i *Invoker) calculateRetentionOffer(args map[string]any) contractx.ToolResult {
	tier, err := stringArg(args, "customer_tier")
	if err != nil {
		return failure(ToolCalculateRetentionOffer, contractx.ErrorKindInvalidInput, err.Error())
	}
	reason, err := stringArg(args, "reason")
	if err != nil {
		return failure(ToolCalculateRetentionOffer, contractx.ErrorKindInvalidInput, err.Error())
	}

	offer, err := i.rules.Calculate(tier, contractx.CancellationReason(reason))
	switch {
	case errors.Is(err, ErrNoOffer):
		return failure(ToolCalculateRetentionOffer, contractx.ErrorKindNotFound, err.Error())
	case err != nil:
		return failure(ToolCalculateRetentionOffer, contractx.ErrorKindInvalidInput, err.Error())
	}
	return contractx.ToolResult{Tool: ToolCalculateRetentionOffer, Result: offer}
}

func (i *Invoker) updateCustomerStatus(ctx context.Context, args map[string]any) contractx.ToolResult {
	customerID, err := stringArg(args, "customer_id")
	if err != nil {
		return failure(ToolUpdateCustomerStatus, contractx.ErrorKindInvalidInput, err.Error())
	}
	action, err := stringArg(args, "action")
	if err != nil {
		return failure(ToolUpdateCustomerStatus, contractx.ErrorKindInvalidInput, err.Error())
	}

	at := i.now().UTC()
	if err := i.status.Append(ctx, customerID, action, at); err != nil {
		kind := contractx.ErrorKindInternal
		if errors.Is(err, context.DeadlineExceeded) {
			kind = contractx.ErrorKindTimeout
		}
		return failure(ToolUpdateCustomerStatus, kind, err.Error())
	}
	return contractx.ToolResult{Tool: ToolUpdateCustomerStatus, Result: &contractx.StatusUpdate{
		CustomerID: customerID,
		Action:     action,
		Timestamp:  at,
	}}
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s must be a non-empty string", key)
	}
	return s, nil
}

func failure(tool string, kind contractx.ErrorKind, msg string) contractx.ToolResult {
	return contractx.ToolResult{Tool: tool, Kind: kind, Error: msg}
}

var _ contractx.ToolInvoker = (*Invoker)(nil)
