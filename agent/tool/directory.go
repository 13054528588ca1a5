package tool

import (
	"context"
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	contractx "github.com/techflow/careflow/agent/contract"
)

//go:embed data/customers.csv
var fixtureFS embed.FS

// CSVDirectory is an in-memory customer directory loaded from a CSV table,
// keyed by lower-cased email. Read-only after construction, so concurrent
// lookups need no locking.
type CSVDirectory struct {
	byEmail map[string]contractx.CustomerProfile
}

// NewEmbeddedDirectory loads the bundled customer fixture.
func NewEmbeddedDirectory() (*CSVDirectory, error) {
	f, err := fixtureFS.Open("data/customers.csv")
	if err != nil {
		return nil, fmt.Errorf("open embedded customers: %w", err)
	}
	defer f.Close()
	return NewCSVDirectory(f)
}

// NewCSVDirectory parses a customer table. The first row must be a header;
// unknown columns are ignored so the fixture can grow without code changes.
func NewCSVDirectory(r io.Reader) (*CSVDirectory, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read customers header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"customer_id", "email", "name", "tier"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("customers table is missing column %q", required)
		}
	}

	dir := &CSVDirectory{byEmail: make(map[string]contractx.CustomerProfile)}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read customers line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		profile := contractx.CustomerProfile{
			CustomerID:         field("customer_id"),
			Email:              strings.ToLower(field("email")),
			Name:               field("name"),
			Phone:              field("phone"),
			PlanType:           field("plan_type"),
			MonthlyCharge:      parseFloat(field("monthly_charge")),
			Status:             field("status"),
			TotalSpent:         parseFloat(field("total_spent")),
			SupportTickets:     parseInt(field("support_tickets_count")),
			AccountHealthScore: parseInt(field("account_health_score")),
			TenureMonths:       parseInt(field("tenure_months")),
			Tier:               strings.ToLower(field("tier")),
			Device:             field("device"),
		}
		if profile.Email == "" {
			continue
		}
		dir.byEmail[profile.Email] = profile
	}
	return dir, nil
}

func (d *CSVDirectory) LookupByEmail(_ context.Context, email string) (*contractx.CustomerProfile, error) {
	profile, ok := d.byEmail[strings.TrimSpace(strings.ToLower(email))]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	out := profile
	return &out, nil
}

// Size reports the number of loaded customers.
func (d *CSVDirectory) Size() int { return len(d.byEmail) }

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

var _ CustomerDirectory = (*CSVDirectory)(nil)
