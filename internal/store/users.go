package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"asset-tracker-api/internal/models"
)

const userCols = `user_id, first_name, last_name, username, email, password_hash,
	start_date, end_date, is_active, is_admin, created_date, last_modified_date`

func scanUser(sc rowScanner) (*models.User, error) {
	var u models.User
	err := sc.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.PasswordHash,
		&u.StartDate, &u.EndDate, &u.IsActive, &u.IsAdmin, &u.CreatedDate, &u.LastModifiedDate,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE user_id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns the user with the given username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, notFound("user", 0)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// UserFilter narrows ListUsers. Search matches first name, last name,
// username, and email, case-insensitively.
type UserFilter struct {
	IsActive *bool
	Search   string
	Skip     int
	Limit    int
}

// ListUsers returns users ordered by last name then first name.
func (s *Store) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	clauses := []string{}
	args := []any{}
	arg := 1

	if f.IsActive != nil {
		clauses = append(clauses, fmt.Sprintf("is_active = $%d", arg))
		args = append(args, *f.IsActive)
		arg++
	}
	if f.Search != "" {
		clauses = append(clauses, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR username ILIKE $%d OR email ILIKE $%d)",
			arg, arg, arg, arg))
		args = append(args, "%"+f.Search+"%")
		arg++
	}

	sqlStr := `SELECT ` + userCols + ` FROM users`
	if len(clauses) > 0 {
		sqlStr += " WHERE " + strings.Join(clauses, " AND ")
	}
	skip, limit := normalizePage(f.Skip, f.Limit)
	sqlStr += fmt.Sprintf(" ORDER BY last_name, first_name LIMIT %d OFFSET %d", limit, skip)

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) usernameTaken(ctx context.Context, q querier, username string, excludeID int64) (bool, error) {
	var taken bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND user_id <> $2)`,
		username, excludeID).Scan(&taken)
	return taken, err
}

func (s *Store) emailTaken(ctx context.Context, q querier, email string, excludeID int64) (bool, error) {
	var taken bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND user_id <> $2)`,
		email, excludeID).Scan(&taken)
	return taken, err
}

// CreateUser inserts a user after checking username and email uniqueness.
// passwordHash is already hashed by the caller; nil leaves it unset.
func (s *Store) CreateUser(ctx context.Context, req models.CreateUserRequest, passwordHash *string) (*models.User, error) {
	if taken, err := s.usernameTaken(ctx, s.db, req.Username, 0); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if taken {
		return nil, conflict("Username already registered")
	}
	if taken, err := s.emailTaken(ctx, s.db, req.Email, 0); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if taken {
		return nil, conflict("Email already registered")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	isAdmin := false
	if req.IsAdmin != nil {
		isAdmin = *req.IsAdmin
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, username, email, password_hash, start_date, end_date, is_active, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+userCols,
		req.FirstName, req.LastName, req.Username, req.Email, passwordHash,
		req.StartDate, req.EndDate, isActive, isAdmin)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Username or email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdateUser applies the supplied fields only. Username and email uniqueness
// is re-checked excluding the user's own row, so updating a user to its own
// current value is not a conflict.
func (s *Store) UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest, passwordHash *string) (*models.User, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}

	sets := make([]setClause, 0, 9)
	if req.FirstName.Set {
		if !req.FirstName.Valid {
			return nil, conflict("first_name cannot be null")
		}
		sets = append(sets, setClause{"first_name", req.FirstName.Value})
	}
	if req.LastName.Set {
		if !req.LastName.Valid {
			return nil, conflict("last_name cannot be null")
		}
		sets = append(sets, setClause{"last_name", req.LastName.Value})
	}
	if req.Username.Set {
		if !req.Username.Valid {
			return nil, conflict("username cannot be null")
		}
		if taken, err := s.usernameTaken(ctx, s.db, req.Username.Value, id); err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		} else if taken {
			return nil, conflict("Username already registered")
		}
		sets = append(sets, setClause{"username", req.Username.Value})
	}
	if req.Email.Set {
		if !req.Email.Valid {
			return nil, conflict("email cannot be null")
		}
		if taken, err := s.emailTaken(ctx, s.db, req.Email.Value, id); err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		} else if taken {
			return nil, conflict("Email already registered")
		}
		sets = append(sets, setClause{"email", req.Email.Value})
	}
	if passwordHash != nil {
		sets = append(sets, setClause{"password_hash", *passwordHash})
	}
	if req.StartDate.Set {
		sets = append(sets, setClause{"start_date", argOf(req.StartDate)})
	}
	if req.EndDate.Set {
		sets = append(sets, setClause{"end_date", argOf(req.EndDate)})
	}
	if req.IsActive.Set && req.IsActive.Valid {
		sets = append(sets, setClause{"is_active", req.IsActive.Value})
	}
	if req.IsAdmin.Set && req.IsAdmin.Valid {
		sets = append(sets, setClause{"is_admin", req.IsAdmin.Value})
	}

	if len(sets) == 0 {
		return s.GetUser(ctx, id)
	}

	sqlStr := "UPDATE users SET "
	args := make([]any, 0, len(sets)+1)
	for i, set := range sets {
		if i > 0 {
			sqlStr += ", "
		}
		sqlStr += fmt.Sprintf("%s = $%d", set.col, i+1)
		args = append(args, set.val)
	}
	sqlStr += fmt.Sprintf(" WHERE user_id = $%d RETURNING %s", len(args)+1, userCols)
	args = append(args, id)

	u, err := scanUser(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err == sql.ErrNoRows {
		return nil, notFound("user", id)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Username or email already registered")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// GetUserDetail returns the user plus their currently open assignments.
func (s *Store) GetUserDetail(ctx context.Context, id int64) (*models.UserDetail, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT assignment_id, checkout_date, expected_return_date, actual_return_date
		FROM device_assignments
		WHERE user_id = $1 AND actual_return_date IS NULL
		ORDER BY checkout_date DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("user active assignments: %w", err)
	}
	defer rows.Close()

	detail := &models.UserDetail{User: *u, ActiveAssignments: []models.AssignmentBrief{}}
	for rows.Next() {
		var b models.AssignmentBrief
		if err := rows.Scan(&b.ID, &b.CheckoutDate, &b.ExpectedReturnDate, &b.ActualReturnDate); err != nil {
			return nil, fmt.Errorf("scan assignment brief: %w", err)
		}
		detail.ActiveAssignments = append(detail.ActiveAssignments, b)
	}
	return detail, rows.Err()
}
