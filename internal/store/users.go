package store

import (
	"github.com/gocql/gocql"

	"example.com/feedapp/internal/models"
)

// --- User operations ---

// CreateUser persists a new user. Email uniqueness is claimed first
// through a CAS insert into users_by_email, so a losing concurrent
// signup gets ErrEmailTaken instead of overwriting the winner.
func (s *Store) CreateUser(user models.User) error {
	result := make(map[string]interface{})
	applied, err := s.Session.Query(`
		INSERT INTO users_by_email (email, user_id)
		VALUES (?, ?) IF NOT EXISTS`,
		user.Email, user.ID,
	).MapScanCAS(result)
	if err != nil {
		logg.Error("store", "Failed to claim email entry", err)
		return err
	}
	if !applied {
		return ErrEmailTaken
	}

	err = s.Session.Query(`
		INSERT INTO users (user_id, email, password_hash, name, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Status, user.Created,
	).Exec()
	if err != nil {
		logg.Error("store", "Failed to create user in main table", err)
		return err
	}

	logg.Info("store", "User created successfully (email anonymized)")
	return nil
}

// GetUserByEmail returns the user registered under email, or nil when
// no such registration exists.
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	var id string
	err := s.Session.Query(
		`SELECT user_id FROM users_by_email WHERE email = ?`,
		email,
	).Scan(&id)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, nil
		}
		logg.Error("store", "Failed to query user by email", err)
		return nil, err
	}
	return s.GetUserByID(id)
}

// GetUserByID returns the user record, or nil when it does not exist.
func (s *Store) GetUserByID(id string) (*models.User, error) {
	var u models.User
	err := s.Session.Query(`
		SELECT user_id, email, password_hash, name, status, posts, created_at
		FROM users WHERE user_id = ?`,
		id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Status, &u.Posts, &u.Created)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, nil
		}
		logg.Error("store", "Failed to query user by id", err)
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateUserStatus(id, status string) error {
	if err := s.Session.Query(
		`UPDATE users SET status = ? WHERE user_id = ?`,
		status, id,
	).Exec(); err != nil {
		logg.Error("store", "Failed to update user status", err)
		return err
	}

	logg.Info("store", "User status updated (user id anonymized)")
	return nil
}

// AddPostToUser appends a post reference to the user's post set.
func (s *Store) AddPostToUser(userID, postID string) error {
	if err := s.Session.Query(
		`UPDATE users SET posts = posts + ? WHERE user_id = ?`,
		[]string{postID}, userID,
	).Exec(); err != nil {
		logg.Error("store", "Failed to add post to user", err)
		return err
	}
	return nil
}

// RemovePostFromUser removes a post reference from the user's post set.
func (s *Store) RemovePostFromUser(userID, postID string) error {
	if err := s.Session.Query(
		`UPDATE users SET posts = posts - ? WHERE user_id = ?`,
		[]string{postID}, userID,
	).Exec(); err != nil {
		logg.Error("store", "Failed to remove post from user", err)
		return err
	}
	return nil
}
