package database

import (
	"context"
	"fmt"
	"time"
)

// AddUserToGroup puts an account in a group, creating the group on first
// use. Album manifests reference groups by this name.
func (d *Database) AddUserToGroup(email, group string) (err error) {
	start := time.Now()
	defer func() { recordQuery("add_user_to_group", start, err) }()

	u, err := d.GetUser(email)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if _, err = d.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO groups (name) VALUES (?)", group); err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_groups (user_id, group_id)
		 SELECT ?, id FROM groups WHERE name = ?`,
		u.ID, group,
	)
	return err
}

// RemoveUserFromGroup takes an account out of a group.
func (d *Database) RemoveUserFromGroup(email, group string) (err error) {
	start := time.Now()
	defer func() { recordQuery("remove_user_from_group", start, err) }()

	u, err := d.GetUser(email)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		`DELETE FROM user_groups
		 WHERE user_id = ? AND group_id = (SELECT id FROM groups WHERE name = ?)`,
		u.ID, group,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%s is not in group %q", u.Email, group)
	}
	return nil
}

// UserGroups returns the group names an account belongs to, sorted.
func (d *Database) UserGroups(userID int64) (groups []string, err error) {
	start := time.Now()
	defer func() { recordQuery("user_groups", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT g.name FROM groups g
		 JOIN user_groups ug ON ug.group_id = g.id
		 WHERE ug.user_id = ? ORDER BY g.name`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		groups = append(groups, name)
	}
	return groups, rows.Err()
}

// ListGroups returns every group name, sorted.
func (d *Database) ListGroups() (groups []string, err error) {
	start := time.Now()
	defer func() { recordQuery("list_groups", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT name FROM groups ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		groups = append(groups, name)
	}
	return groups, rows.Err()
}
