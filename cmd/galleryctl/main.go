// Command galleryctl manages gallery accounts from the terminal: creating
// users, resetting passwords, granting the admin role, and editing group
// membership. It operates directly on the accounts database, so run it on
// the host that owns DATABASE_DIR.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"photo-gallery/internal/database"
)

const defaultDatabaseDir = "/database"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	dbPath := filepath.Join(databaseDir, "gallery.db")

	db, err := database.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	ok := false
	switch command {
	case "add-user":
		ok = addUser(db, args, false)
	case "add-admin":
		ok = addUser(db, args, true)
	case "passwd":
		ok = resetPassword(db, args)
	case "grant-admin":
		ok = setAdmin(db, args, true)
	case "revoke-admin":
		ok = setAdmin(db, args, false)
	case "disable":
		ok = setActive(db, args, false)
	case "enable":
		ok = setActive(db, args, true)
	case "join":
		ok = groupChange(db, args, db.AddUserToGroup)
	case "leave":
		ok = groupChange(db, args, db.RemoveUserFromGroup)
	case "users":
		ok = listUsers(db)
	case "groups":
		ok = listGroups(db)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n", command)
		printUsage()
	}
	if !ok {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Photo Gallery Account Management")
	fmt.Println("")
	fmt.Println("Usage: galleryctl <command> [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  add-user <email>       - Create an account (prompts for password)")
	fmt.Println("  add-admin <email>      - Create an administrator account")
	fmt.Println("  passwd <email>         - Reset an account's password")
	fmt.Println("  grant-admin <email>    - Grant the administrator role")
	fmt.Println("  revoke-admin <email>   - Revoke the administrator role")
	fmt.Println("  disable <email>        - Disable an account")
	fmt.Println("  enable <email>         - Re-enable an account")
	fmt.Println("  join <email> <group>   - Add an account to a group")
	fmt.Println("  leave <email> <group>  - Remove an account from a group")
	fmt.Println("  users                  - List accounts")
	fmt.Println("  groups                 - List groups")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
}

func requireEmail(args []string) (string, bool) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one email argument")
		return "", false
	}
	return args[0], true
}

// promptPassword reads a password twice with echo off.
func promptPassword() (string, bool) {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return "", false
	}

	fmt.Print("Confirm Password: ")
	confirm, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return "", false
	}

	if !bytes.Equal(password, confirm) {
		fmt.Fprintln(os.Stderr, "Error: Passwords do not match")
		return "", false
	}
	if len(password) < 8 {
		fmt.Fprintln(os.Stderr, "Error: Password must be at least 8 characters")
		return "", false
	}
	return string(password), true
}

func addUser(db *database.Database, args []string, admin bool) bool {
	email, ok := requireEmail(args)
	if !ok {
		return false
	}
	password, ok := promptPassword()
	if !ok {
		return false
	}

	if err := db.CreateUser(email, password, admin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	role := "user"
	if admin {
		role = "administrator"
	}
	fmt.Printf("Created %s %s\n", role, email)
	return true
}

func resetPassword(db *database.Database, args []string) bool {
	email, ok := requireEmail(args)
	if !ok {
		return false
	}
	password, ok := promptPassword()
	if !ok {
		return false
	}

	if err := db.UpdatePassword(email, password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	fmt.Println("Password updated. Existing sessions for this account were invalidated.")
	return true
}

func setAdmin(db *database.Database, args []string, admin bool) bool {
	email, ok := requireEmail(args)
	if !ok {
		return false
	}
	if err := db.SetAdmin(email, admin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	if admin {
		fmt.Printf("%s is now an administrator\n", email)
	} else {
		fmt.Printf("%s is no longer an administrator\n", email)
	}
	return true
}

func setActive(db *database.Database, args []string, active bool) bool {
	email, ok := requireEmail(args)
	if !ok {
		return false
	}
	if err := db.SetActive(email, active); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	if active {
		fmt.Printf("%s enabled\n", email)
	} else {
		fmt.Printf("%s disabled\n", email)
	}
	return true
}

func groupChange(db *database.Database, args []string, apply func(string, string) error) bool {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected <email> <group>")
		return false
	}
	if err := apply(args[0], args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	fmt.Println("OK")
	return true
}

func listUsers(db *database.Database) bool {
	users, err := db.ListUsers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	if len(users) == 0 {
		fmt.Println("No accounts. Create one with: galleryctl add-admin <email>")
		return true
	}
	for _, u := range users {
		flags := ""
		if u.Admin {
			flags += " [admin]"
		}
		if !u.Active {
			flags += " [disabled]"
		}
		groups, err := db.UserGroups(u.ID)
		if err == nil && len(groups) > 0 {
			flags += fmt.Sprintf(" groups=%v", groups)
		}
		fmt.Printf("%s%s\n", u.Email, flags)
	}
	return true
}

func listGroups(db *database.Database) bool {
	groups, err := db.ListGroups()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	if len(groups) == 0 {
		fmt.Println("No groups. Accounts join groups with: galleryctl join <email> <group>")
		return true
	}
	for _, g := range groups {
		fmt.Println(g)
	}
	return true
}
