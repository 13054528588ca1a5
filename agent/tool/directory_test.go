package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedDirectoryLookup(t *testing.T) {
	t.Parallel()

	dir, err := NewEmbeddedDirectory()
	if err != nil {
		t.Fatalf("NewEmbeddedDirectory() error = %v", err)
	}
	if dir.Size() == 0 {
		t.Fatal("embedded directory is empty")
	}

	profile, err := dir.LookupByEmail(context.Background(), "Sarah.Chen@Email.com")
	if err != nil {
		t.Fatalf("LookupByEmail() error = %v", err)
	}
	if profile.CustomerID != "CUST_001" {
		t.Fatalf("unexpected customer id: %q", profile.CustomerID)
	}
	if profile.Tier != "premium" {
		t.Fatalf("unexpected tier: %q", profile.Tier)
	}
	if profile.MonthlyCharge != 12.99 {
		t.Fatalf("unexpected monthly charge: %v", profile.MonthlyCharge)
	}
}

func TestDirectoryLookupNotFound(t *testing.T) {
	t.Parallel()

	dir, err := NewEmbeddedDirectory()
	if err != nil {
		t.Fatalf("NewEmbeddedDirectory() error = %v", err)
	}
	if _, err := dir.LookupByEmail(context.Background(), "missing@example.com"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestDirectoryLookupReturnsCopy(t *testing.T) {
	t.Parallel()

	dir, err := NewEmbeddedDirectory()
	if err != nil {
		t.Fatalf("NewEmbeddedDirectory() error = %v", err)
	}
	first, err := dir.LookupByEmail(context.Background(), "sarah.chen@email.com")
	if err != nil {
		t.Fatalf("LookupByEmail() error = %v", err)
	}
	first.Tier = "mutated"

	second, err := dir.LookupByEmail(context.Background(), "sarah.chen@email.com")
	if err != nil {
		t.Fatalf("LookupByEmail() error = %v", err)
	}
	if second.Tier != "premium" {
		t.Fatal("lookup leaked a shared profile")
	}
}

func TestNewCSVDirectoryMissingColumn(t *testing.T) {
	t.Parallel()

	raw := "customer_id,email,name\nCUST_100,x@example.com,X"
	if _, err := NewCSVDirectory(strings.NewReader(raw)); err == nil {
		t.Fatal("expected error for missing tier column")
	}
}

func TestNewCSVDirectoryIgnoresUnknownColumns(t *testing.T) {
	t.Parallel()

	raw := "customer_id,email,name,tier,favorite_color\nCUST_100,x@example.com,X,regular,blue"
	dir, err := NewCSVDirectory(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("NewCSVDirectory() error = %v", err)
	}
	profile, err := dir.LookupByEmail(context.Background(), "x@example.com")
	if err != nil {
		t.Fatalf("LookupByEmail() error = %v", err)
	}
	if profile.Tier != "regular" {
		t.Fatalf("unexpected tier: %q", profile.Tier)
	}
}
