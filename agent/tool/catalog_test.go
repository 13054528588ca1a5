package tool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	contractx "github.com/techflow/careflow/agent/contract"
)

func newTestInvoker(t *testing.T, opts ...InvokerOption) (*Invoker, string) {
	t.Helper()

	dir, err := NewEmbeddedDirectory()
	if err != nil {
		t.Fatalf("NewEmbeddedDirectory() error = %v", err)
	}
	rules, err := LoadDefaultOfferRules()
	if err != nil {
		t.Fatalf("LoadDefaultOfferRules() error = %v", err)
	}
	logPath := filepath.Join(t.TempDir(), "customer_status_log.txt")

	inv, err := NewInvoker(dir, rules, NewFileStatusLog(logPath), opts...)
	if err != nil {
		t.Fatalf("NewInvoker() error = %v", err)
	}
	return inv, logPath
}

func TestInvokeGetCustomerData(t *testing.T) {
	t.Parallel()

	inv, _ := newTestInvoker(t)
	res := inv.Invoke(context.Background(), ToolGetCustomerData, map[string]any{"email": "sarah.chen@email.com"})
	if res.Failed() {
		t.Fatalf("unexpected failure: %+v", res)
	}
	profile, ok := res.Result.(*contractx.CustomerProfile)
	if !ok {
		t.Fatalf("unexpected result type %T", res.Result)
	}
	if profile.CustomerID != "CUST_001" {
		t.Fatalf("unexpected customer: %q", profile.CustomerID)
	}
}

func TestInvokeGetCustomerDataNotFound(t *testing.T) {
	t.Parallel()

	inv, _ := newTestInvoker(t)
	res := inv.Invoke(context.Background(), ToolGetCustomerData, map[string]any{"email": "nobody@example.com"})
	if !res.Failed() || res.Kind != contractx.ErrorKindNotFound {
		t.Fatalf("expected not_found, got %+v", res)
	}
}

func TestInvokeArgumentShapeViolations(t *testing.T) {
	t.Parallel()

	inv, _ := newTestInvoker(t)
	cases := []struct {
		name string
		tool string
		args map[string]any
	}{
		{"missing email", ToolGetCustomerData, map[string]any{}},
		{"non-string email", ToolGetCustomerData, map[string]any{"email": 7}},
		{"missing reason", ToolCalculateRetentionOffer, map[string]any{"customer_tier": "premium"}},
		{"missing customer id", ToolUpdateCustomerStatus, map[string]any{"action": "cancelled"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := inv.Invoke(context.Background(), tc.tool, tc.args)
			if !res.Failed() || res.Kind != contractx.ErrorKindInvalidInput {
				t.Fatalf("expected invalid_input, got %+v", res)
			}
		})
	}
}

func TestInvokeCalculateRetentionOffer(t *testing.T) {
	t.Parallel()

	inv, _ := newTestInvoker(t)
	res := inv.Invoke(context.Background(), ToolCalculateRetentionOffer, map[string]any{
		"customer_tier": "premium",
		"reason":        "financial_hardship",
	})
	if res.Failed() {
		t.Fatalf("unexpected failure: %+v", res)
	}
	offer, ok := res.Result.(*contractx.RetentionOffer)
	if !ok {
		t.Fatalf("unexpected result type %T", res.Result)
	}
	if offer.Kind != "pause" {
		t.Fatalf("expected pause offer for premium hardship, got %q", offer.Kind)
	}
}

func TestInvokeUpdateCustomerStatusWritesLogLine(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	inv, logPath := newTestInvoker(t, WithClock(func() time.Time { return at }))

	res := inv.Invoke(context.Background(), ToolUpdateCustomerStatus, map[string]any{
		"customer_id": "CUST_001",
		"action":      "cancelled",
	})
	if res.Failed() {
		t.Fatalf("unexpected failure: %+v", res)
	}
	update, ok := res.Result.(*contractx.StatusUpdate)
	if !ok {
		t.Fatalf("unexpected result type %T", res.Result)
	}
	if update.CustomerID != "CUST_001" || update.Action != "cancelled" {
		t.Fatalf("unexpected update: %+v", update)
	}
	if !update.Timestamp.Equal(at) {
		t.Fatalf("unexpected timestamp: %v", update.Timestamp)
	}

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read status log: %v", err)
	}
	want := "[2026-03-14 09:30:00] Customer: CUST_001 | Action: cancelled\n"
	if string(raw) != want {
		t.Fatalf("unexpected log content:\n got %q\nwant %q", raw, want)
	}
}

type errDirectory struct{ err error }

func (d errDirectory) LookupByEmail(context.Context, string) (*contractx.CustomerProfile, error) {
	return nil, d.err
}

type errStatusWriter struct{ err error }

func (w errStatusWriter) Append(context.Context, string, string, time.Time) error {
	return w.err
}

func newFaultyInvoker(t *testing.T, dir CustomerDirectory, status StatusWriter) *Invoker {
	t.Helper()

	rules, err := LoadDefaultOfferRules()
	if err != nil {
		t.Fatalf("LoadDefaultOfferRules() error = %v", err)
	}
	inv, err := NewInvoker(dir, rules, status)
	if err != nil {
		t.Fatalf("NewInvoker() error = %v", err)
	}
	return inv
}

func TestInvokeDeadlineExceededReportsTimeout(t *testing.T) {
	t.Parallel()

	inv := newFaultyInvoker(t,
		errDirectory{err: context.DeadlineExceeded},
		errStatusWriter{err: context.DeadlineExceeded},
	)

	res := inv.Invoke(context.Background(), ToolGetCustomerData, map[string]any{"email": "sarah.chen@email.com"})
	if !res.Failed() || res.Kind != contractx.ErrorKindTimeout {
		t.Fatalf("expected timeout for customer lookup, got %+v", res)
	}

	res = inv.Invoke(context.Background(), ToolUpdateCustomerStatus, map[string]any{
		"customer_id": "CUST_001",
		"action":      "cancelled",
	})
	if !res.Failed() || res.Kind != contractx.ErrorKindTimeout {
		t.Fatalf("expected timeout for status update, got %+v", res)
	}
}

func TestInvokeCollaboratorFaultReportsInternal(t *testing.T) {
	t.Parallel()

	connErr := errors.New("pg: connection refused")
	inv := newFaultyInvoker(t, errDirectory{err: connErr}, errStatusWriter{err: connErr})

	res := inv.Invoke(context.Background(), ToolGetCustomerData, map[string]any{"email": "sarah.chen@email.com"})
	if !res.Failed() || res.Kind != contractx.ErrorKindInternal {
		t.Fatalf("directory fault should not read as a missing customer, got %+v", res)
	}

	res = inv.Invoke(context.Background(), ToolUpdateCustomerStatus, map[string]any{
		"customer_id": "CUST_001",
		"action":      "cancelled",
	})
	if !res.Failed() || res.Kind != contractx.ErrorKindInternal {
		t.Fatalf("status writer fault should report internal, got %+v", res)
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	t.Parallel()

	inv, _ := newTestInvoker(t)
	res := inv.Invoke(context.Background(), "send_marketing_email", map[string]any{})
	if !res.Failed() || res.Kind != contractx.ErrorKindUnknownTool {
		t.Fatalf("expected unknown_tool, got %+v", res)
	}
	if !strings.Contains(res.Error, "send_marketing_email") {
		t.Fatalf("error should name the tool: %q", res.Error)
	}
}
