package store

import (
	"github.com/gocql/gocql"

	"example.com/feedapp/internal/models"
)

// feedBucket keys the single feed partition. All posts share one
// partition so the created_at clustering order gives the feed its
// reverse-chronological read order.
const feedBucket = "all"

// --- Post operations ---

// CreatePost persists the post record and its feed index row.
func (s *Store) CreatePost(post models.Post) error {
	if err := s.Session.Query(`
		INSERT INTO posts (post_id, title, content, image_url, creator_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Title, post.Content, post.ImageURL, post.CreatorID, post.Created, post.Updated,
	).Exec(); err != nil {
		logg.Error("store", "Failed to add post", err)
		return err
	}

	if err := s.Session.Query(`
		INSERT INTO feed (bucket, created_at, post_id)
		VALUES (?, ?, ?)`,
		feedBucket, post.Created, post.ID,
	).Exec(); err != nil {
		logg.Error("store", "Failed to index post in feed", err)
		return err
	}

	logg.Info("store", "Post added to posts table (post content anonymized)")
	return nil
}

// GetPost returns the post record, or nil when it does not exist.
func (s *Store) GetPost(id string) (*models.Post, error) {
	var p models.Post
	err := s.Session.Query(`
		SELECT post_id, title, content, image_url, creator_id, created_at, updated_at
		FROM posts WHERE post_id = ?`,
		id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.ImageURL, &p.CreatorID, &p.Created, &p.Updated)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, nil
		}
		logg.Error("store", "Failed to query post", err)
		return nil, err
	}
	return &p, nil
}

// UpdatePost rewrites the mutable post columns. The creator reference
// and the feed index row (keyed by created_at) never change.
func (s *Store) UpdatePost(post models.Post) error {
	if err := s.Session.Query(`
		UPDATE posts SET title = ?, content = ?, image_url = ?, updated_at = ?
		WHERE post_id = ?`,
		post.Title, post.Content, post.ImageURL, post.Updated, post.ID,
	).Exec(); err != nil {
		logg.Error("store", "Failed to update post", err)
		return err
	}

	logg.Info("store", "Post updated (post content anonymized)")
	return nil
}

// DeletePost removes the post record and its feed index row. The full
// post is required because the feed row is keyed by creation time.
func (s *Store) DeletePost(post models.Post) error {
	if err := s.Session.Query(
		`DELETE FROM posts WHERE post_id = ?`,
		post.ID,
	).Exec(); err != nil {
		logg.Error("store", "Failed to delete post", err)
		return err
	}

	if err := s.Session.Query(
		`DELETE FROM feed WHERE bucket = ? AND created_at = ? AND post_id = ?`,
		feedBucket, post.Created, post.ID,
	).Exec(); err != nil {
		logg.Error("store", "Failed to remove post from feed", err)
		return err
	}

	logg.Info("store", "Post deleted (post id anonymized)")
	return nil
}

// ListPosts returns one page of posts, newest first, plus the total
// post count. Pages are 1-indexed; skip/limit arithmetic is
// skip = (page-1)*perPage. Cassandra has no OFFSET, so the skip is
// applied while walking the clustered feed partition.
func (s *Store) ListPosts(page, perPage int) ([]models.Post, int, error) {
	var total int
	if err := s.Session.Query(`SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		logg.Error("store", "Failed to count posts", err)
		return nil, 0, err
	}

	iter := s.Session.Query(
		`SELECT post_id FROM feed WHERE bucket = ?`,
		feedBucket,
	).Iter()

	skip := (page - 1) * perPage
	var ids []string
	var id string
	for iter.Scan(&id) {
		if skip > 0 {
			skip--
			continue
		}
		if len(ids) == perPage {
			break
		}
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to read feed page", err)
		return nil, 0, err
	}

	var posts []models.Post
	for _, id := range ids {
		p, err := s.GetPost(id)
		if err != nil {
			return nil, 0, err
		}
		if p == nil {
			continue
		}
		posts = append(posts, *p)
	}

	logg.Info("store", "Feed page retrieved successfully")
	return posts, total, nil
}
