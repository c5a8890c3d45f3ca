package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/testutil"
)

func TestAuthenticateUser_NewUser(t *testing.T) {
	ledger := testutil.NewMockLedger()
	service := NewAuthService(ledger.Users())

	auth0ID := "auth0|12345"
	email := "test@example.com"
	name := "Test User"

	result, err := service.AuthenticateUser(auth0ID, email, &name)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.IsNewUser {
		t.Error("Expected IsNewUser to be true for new user")
	}
	if result.User.Auth0ID != auth0ID {
		t.Errorf("Expected auth0ID %s, got %s", auth0ID, result.User.Auth0ID)
	}
	if result.User.Username != name {
		t.Errorf("Expected username %s, got %s", name, result.User.Username)
	}

	if got := ledger.CategoryCount(result.User.ID); got != len(domain.DefaultCategories) {
		t.Errorf("Expected %d default categories, got %d", len(domain.DefaultCategories), got)
	}

	categories, _ := ledger.Categories().ListWithStats(result.User.ID)
	var income, expense int
	for _, c := range categories {
		switch c.Type {
		case domain.CategoryTypeIncome:
			income++
		case domain.CategoryTypeExpense:
			expense++
		}
	}
	if income != 3 || expense != 6 {
		t.Errorf("Expected 3 income and 6 expense categories, got %d/%d", income, expense)
	}
}

func TestAuthenticateUser_ExistingUser(t *testing.T) {
	ledger := testutil.NewMockLedger()
	users := ledger.Users()
	service := NewAuthService(users)
	existing := ledger.AddUser("auth0|existing", "existing", "existing@example.com")

	result, err := service.AuthenticateUser("auth0|existing", "existing@example.com", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.IsNewUser {
		t.Error("Expected IsNewUser to be false for existing user")
	}
	if result.User.ID != existing.ID {
		t.Errorf("Expected user ID %d, got %d", existing.ID, result.User.ID)
	}
	if users.CreateCalls != 0 {
		t.Error("Expected no create for an existing user")
	}
	if ledger.CategoryCount(existing.ID) != 0 {
		t.Error("Expected no categories to be seeded again")
	}
}

func TestAuthenticateUser_UsernameFromEmail(t *testing.T) {
	service := NewAuthService(testutil.NewMockLedger().Users())
	blank := "   "

	result, err := service.AuthenticateUser("auth0|1", "jane.doe@example.com", &blank)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.User.Username != "jane.doe" {
		t.Errorf("Expected username jane.doe, got %s", result.User.Username)
	}
}

func TestAuthenticateUser_EmptyAuth0ID(t *testing.T) {
	service := NewAuthService(testutil.NewMockLedger().Users())

	if _, err := service.AuthenticateUser("", "a@example.com", nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticateUser_CreateFailure(t *testing.T) {
	ledger := testutil.NewMockLedger()
	users := ledger.Users()
	users.CreateErr = errors.New("database down")
	service := NewAuthService(users)

	if _, err := service.AuthenticateUser("auth0|x", "x@example.com", nil); err == nil {
		t.Fatal("Expected error, got nil")
	}
	if ledger.CategoryCount(1) != 0 {
		t.Error("Expected no categories without a user")
	}
}

func TestGetUserIDByAuth0ID(t *testing.T) {
	ledger := testutil.NewMockLedger()
	service := NewAuthService(ledger.Users())
	user := ledger.AddUser("auth0|abc", "abc", "abc@example.com")

	id, err := service.GetUserIDByAuth0ID("auth0|abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id != user.ID {
		t.Errorf("Expected %d, got %d", user.ID, id)
	}

	if _, err := service.GetUserIDByAuth0ID("auth0|missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUsernameFor(t *testing.T) {
	long := strings.Repeat("é", 60)
	blank := "   "
	named := "  Ada Lovelace "

	cases := []struct {
		name  string
		email string
		given *string
		want  string
	}{
		{"profile name wins", "ada@example.com", &named, "Ada Lovelace"},
		{"blank name falls back to email", "ada@example.com", &blank, "ada"},
		{"nil name", "grace@example.com", nil, "grace"},
		{"no at sign", "nobody", nil, "nobody"},
		{"capped at 50 runes", "x@example.com", &long, strings.Repeat("é", 50)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := usernameFor(tc.email, tc.given); got != tc.want {
				t.Errorf("usernameFor() = %q, want %q", got, tc.want)
			}
		})
	}
}
