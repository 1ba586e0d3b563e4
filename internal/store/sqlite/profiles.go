package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/store"
)

// profileColumns is the ordered list of columns selected in profile queries.
// Must match the scan order in scanProfile.
const profileColumns = `user_id, username, full_name, avatar_url, bio, created_at, updated_at`

// scanProfile scans a sql.Row (or sql.Rows via its Scan method) into a domain.Profile.
func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.Profile, error) {
	var p domain.Profile

	var (
		username  sql.NullString
		fullName  sql.NullString
		avatarURL sql.NullString
		bio       sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.UserID,
		&username,
		&fullName,
		&avatarURL,
		&bio,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Username = username.String
	p.FullName = fullName.String
	p.AvatarURL = avatarURL.String
	p.Bio = bio.String

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

// GetProfile retrieves the profile for a user.
// Returns store.ErrProfileNotFound if the profile does not exist.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProfileNotFound
	}
	return p, err
}

// GetProfilesByIDs retrieves profiles for multiple user IDs.
// Returns a map from user ID to profile. Missing profiles are omitted from the map.
func (s *Store) GetProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	profiles := make(map[string]*domain.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id IN (%s)`,
		profileColumns, placeholders(len(userIDs)))

	rows, err := s.db.QueryContext(ctx, query, stringArgs(userIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles[p.UserID] = p
	}
	return profiles, rows.Err()
}

// SaveProfile creates or updates a profile.
// Returns store.ErrUsernameTaken if another user holds the username.
func (s *Store) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, username, full_name, avatar_url, bio, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			full_name = excluded.full_name,
			avatar_url = excluded.avatar_url,
			bio = excluded.bio,
			updated_at = excluded.updated_at`,
		profile.UserID,
		nullString(profile.Username),
		nullString(profile.FullName),
		nullString(profile.AvatarURL),
		nullString(profile.Bio),
		formatTime(profile.CreatedAt),
		formatTime(profile.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrUsernameTaken
	}
	if isForeignKeyViolation(err) {
		return store.ErrUserNotFound
	}
	return err
}

// GetDisplayNames resolves display names for users, falling back from full name
// to username to the email's local part.
func (s *Store) GetDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}

	query := fmt.Sprintf(`
		SELECT u.id, u.email, p.username, p.full_name
		FROM users u LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.id IN (%s)`, placeholders(len(userIDs)))

	rows, err := s.db.QueryContext(ctx, query, stringArgs(userIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, email          string
			username, fullName sql.NullString
		)
		if err := rows.Scan(&id, &email, &username, &fullName); err != nil {
			return nil, err
		}
		p := &domain.Profile{Username: username.String, FullName: fullName.String}
		names[id] = p.DisplayName(email)
	}
	return names, rows.Err()
}
