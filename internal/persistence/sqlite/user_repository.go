package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/roombook/internal/persistence"
)

// UserRepository implements persistence.UserRepository on SQLite.
type UserRepository struct {
	store *Store
}

// NewUserRepository binds a repository to the store.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

const userColumns = `id, username, password_hash, nick_name, email, head_pic, phone, is_admin, is_frozen, create_time, update_time`

// CreateUser inserts a new account and returns it with the assigned id.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if strings.TrimSpace(user.Username) == "" || user.PasswordHash == "" {
		return persistence.User{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if user.CreateTime.IsZero() {
		user.CreateTime = now
	}
	user.UpdateTime = user.CreateTime

	result, err := r.store.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, nick_name, email, head_pic, phone, is_admin, is_frozen, create_time, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.NickName,
		user.Email,
		user.HeadPic,
		user.Phone,
		user.IsAdmin,
		user.IsFrozen,
		formatTime(user.CreateTime),
		formatTime(user.UpdateTime),
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.User{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	user.ID = id

	if err := r.replaceRoleLinks(ctx, user.ID, user.Roles); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

// UpdateUser overwrites the mutable profile fields of an account.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID == 0 {
		return persistence.ErrNotFound
	}
	user.UpdateTime = time.Now().UTC()

	result, err := r.store.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, nick_name = ?, email = ?, head_pic = ?, phone = ?, is_admin = ?, is_frozen = ?, update_time = ?
		WHERE id = ?`,
		user.PasswordHash,
		user.NickName,
		user.Email,
		user.HeadPic,
		user.Phone,
		user.IsAdmin,
		user.IsFrozen,
		formatTime(user.UpdateTime),
		user.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves an account with its roles and permissions joined in.
func (r *UserRepository) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByUsername retrieves an account by its unique username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// FindAdminUser returns any account with the admin flag set.
func (r *UserRepository) FindAdminUser(ctx context.Context) (persistence.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE is_admin = 1 ORDER BY id LIMIT 1`)
}

// FreezeUser flags the account as frozen.
func (r *UserRepository) FreezeUser(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE users SET is_frozen = 1, update_time = ? WHERE id = ?`,
		formatTime(time.Now()), id,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListUsers returns one page of accounts plus the unpaged total count.
func (r *UserRepository) ListUsers(ctx context.Context, filter persistence.UserFilter, skip, take int) ([]persistence.User, int64, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if filter.Username != "" {
		where = append(where, "username LIKE ?")
		args = append(args, likePattern(filter.Username))
	}
	if filter.NickName != "" {
		where = append(where, "nick_name LIKE ?")
		args = append(args, likePattern(filter.NickName))
	}
	if filter.Email != "" {
		where = append(where, "email LIKE ?")
		args = append(args, likePattern(filter.Email))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + clause + ` ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.store.db.QueryContext(ctx, query, append(args, take, skip)...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	users := make([]persistence.User, 0, take)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return users, total, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (persistence.User, error) {
	user, err := scanUser(r.store.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return persistence.User{}, err
	}

	roles, err := r.loadRoles(ctx, user.ID)
	if err != nil {
		return persistence.User{}, err
	}
	user.Roles = roles
	return user, nil
}

// loadRoles fetches the role and permission graph for a user, preserving
// role-link order so permission aggregation stays reproducible.
func (r *UserRepository) loadRoles(ctx context.Context, userID int64) ([]persistence.Role, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT r.id, r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.id`,
		userID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var roles []persistence.Role
	for rows.Next() {
		var role persistence.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, mapError(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range roles {
		perms, err := r.loadPermissions(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = perms
	}
	return roles, nil
}

func (r *UserRepository) loadPermissions(ctx context.Context, roleID int64) ([]persistence.Permission, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT p.id, p.code, p.description
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = ?
		ORDER BY p.id`,
		roleID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var perms []persistence.Permission
	for rows.Next() {
		var perm persistence.Permission
		if err := rows.Scan(&perm.ID, &perm.Code, &perm.Description); err != nil {
			return nil, mapError(err)
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return perms, nil
}

func (r *UserRepository) replaceRoleLinks(ctx context.Context, userID int64, roles []persistence.Role) error {
	if len(roles) == 0 {
		return nil
	}
	if _, err := r.store.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, userID); err != nil {
		return mapError(err)
	}
	for _, role := range roles {
		if _, err := r.store.db.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, role.ID,
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                   persistence.User
		createTime, updateTime string
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.NickName,
		&user.Email,
		&user.HeadPic,
		&user.Phone,
		&user.IsAdmin,
		&user.IsFrozen,
		&createTime,
		&updateTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, mapError(err)
	}

	if user.CreateTime, err = parseTime(createTime); err != nil {
		return persistence.User{}, err
	}
	if user.UpdateTime, err = parseTime(updateTime); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}
