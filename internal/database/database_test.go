package database

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := New(context.Background(), filepath.Join(t.TempDir(), "accounts.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return d
}

func TestCreateAndGetUser(t *testing.T) {
	d := newTestDB(t)

	if err := d.CreateUser("Alice@Example.com", "hunter22", false); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := d.GetUser("alice@example.com")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased alice@example.com", u.Email)
	}
	if u.Admin {
		t.Error("user must not be admin")
	}
	if !u.Active {
		t.Error("new user must be active")
	}

	if err := d.CreateUser("alice@example.com", "other", false); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate CreateUser = %v, want ErrUserExists", err)
	}
	if _, err := d.GetUser("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser(unknown) = %v, want ErrUserNotFound", err)
	}
}

func TestValidateCredentials(t *testing.T) {
	d := newTestDB(t)
	if err := d.CreateUser("alice@example.com", "correct horse", true); err != nil {
		t.Fatal(err)
	}

	u, err := d.ValidateCredentials("alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("ValidateCredentials: %v", err)
	}
	if !u.Admin {
		t.Error("admin flag lost through validation")
	}

	if _, err := d.ValidateCredentials("alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := d.ValidateCredentials("ghost@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email = %v, want ErrInvalidCredentials", err)
	}

	if err := d.SetActive("alice@example.com", false); err != nil {
		t.Fatal(err)
	}
	if _, err := d.ValidateCredentials("alice@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("disabled account = %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdatePasswordRevokesSessions(t *testing.T) {
	d := newTestDB(t)
	if err := d.CreateUser("alice@example.com", "old", false); err != nil {
		t.Fatal(err)
	}
	u, err := d.GetUser("alice@example.com")
	if err != nil {
		t.Fatal(err)
	}
	s, err := d.CreateSession(u.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.UpdatePassword("alice@example.com", "new"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	if _, err := d.ValidateSession(s.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("session after password change = %v, want ErrInvalidSession", err)
	}
	if _, err := d.ValidateCredentials("alice@example.com", "new"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if err := d.UpdatePassword("ghost@example.com", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdatePassword(unknown) = %v, want ErrUserNotFound", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	d := newTestDB(t)
	if err := d.CreateUser("alice@example.com", "pw", false); err != nil {
		t.Fatal(err)
	}
	u, err := d.GetUser("alice@example.com")
	if err != nil {
		t.Fatal(err)
	}

	s, err := d.CreateSession(u.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.Token == "" {
		t.Fatal("session token must be returned on creation")
	}

	got, err := d.ValidateSession(s.Token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("session resolves to %q", got.Email)
	}

	if _, err := d.ValidateSession("not-hex!"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("malformed token = %v, want ErrInvalidSession", err)
	}
	if _, err := d.ValidateSession("deadbeef"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("unknown token = %v, want ErrInvalidSession", err)
	}

	if err := d.DeleteSession(s.Token); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := d.ValidateSession(s.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("deleted session = %v, want ErrInvalidSession", err)
	}
}

func TestCleanExpiredSessions(t *testing.T) {
	d := newTestDB(t)
	if err := d.CreateUser("alice@example.com", "pw", false); err != nil {
		t.Fatal(err)
	}
	u, err := d.GetUser("alice@example.com")
	if err != nil {
		t.Fatal(err)
	}
	s, err := d.CreateSession(u.ID)
	if err != nil {
		t.Fatal(err)
	}

	// Force the session into the past.
	ctx := context.Background()
	if _, err := d.db.ExecContext(ctx,
		"UPDATE sessions SET expires_at = ?", time.Now().Add(-time.Hour).Unix()); err != nil {
		t.Fatal(err)
	}

	if err := d.CleanExpiredSessions(); err != nil {
		t.Fatalf("CleanExpiredSessions: %v", err)
	}

	var n int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("sessions remaining = %d, want 0", n)
	}
	if _, err := d.ValidateSession(s.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expired session = %v, want ErrInvalidSession", err)
	}
}

func TestGroups(t *testing.T) {
	d := newTestDB(t)
	if err := d.CreateUser("alice@example.com", "pw", false); err != nil {
		t.Fatal(err)
	}
	u, err := d.GetUser("alice@example.com")
	if err != nil {
		t.Fatal(err)
	}

	for _, g := range []string{"family", "friends", "family"} {
		if err := d.AddUserToGroup("alice@example.com", g); err != nil {
			t.Fatalf("AddUserToGroup(%s): %v", g, err)
		}
	}

	groups, err := d.UserGroups(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"family", "friends"}; !reflect.DeepEqual(groups, want) {
		t.Errorf("groups = %v, want %v", groups, want)
	}

	if err := d.RemoveUserFromGroup("alice@example.com", "friends"); err != nil {
		t.Fatalf("RemoveUserFromGroup: %v", err)
	}
	if err := d.RemoveUserFromGroup("alice@example.com", "friends"); err == nil {
		t.Error("removing non-membership must fail")
	}

	groups, err = d.UserGroups(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"family"}; !reflect.DeepEqual(groups, want) {
		t.Errorf("groups = %v, want %v", groups, want)
	}

	all, err := d.ListGroups()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"family", "friends"}; !reflect.DeepEqual(all, want) {
		t.Errorf("ListGroups = %v, want %v", all, want)
	}
}
