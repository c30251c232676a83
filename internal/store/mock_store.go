package store

import (
	"errors"
	"sync"

	"example.com/feedapp/internal/models"
)

// MockStore simulates the Cassandra store for testing.
type MockStore struct {
	mu         sync.Mutex
	Users      map[string]models.User // keyed by user id
	EmailIndex map[string]string      // email -> user id
	PostsByID  map[string]models.Post
	order      []string // post ids in insertion order
	ShouldFail bool     // flag to simulate failures
}

// NewMock initializes a new mock store
func NewMock() *MockStore {
	return &MockStore{
		Users:      make(map[string]models.User),
		EmailIndex: make(map[string]string),
		PostsByID:  make(map[string]models.Post),
	}
}

func (m *MockStore) Close() {}

func (m *MockStore) CreateUser(user models.User) error {
	if m.ShouldFail {
		return errors.New("mock: create user failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.EmailIndex[user.Email]; exists {
		return ErrEmailTaken
	}
	m.EmailIndex[user.Email] = user.ID
	m.Users[user.ID] = user
	return nil
}

func (m *MockStore) GetUserByEmail(email string) (*models.User, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get user by email failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.EmailIndex[email]
	if !ok {
		return nil, nil
	}
	u := m.Users[id]
	return &u, nil
}

func (m *MockStore) GetUserByID(id string) (*models.User, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get user by id failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MockStore) UpdateUserStatus(id, status string) error {
	if m.ShouldFail {
		return errors.New("mock: update status failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil
	}
	u.Status = status
	m.Users[id] = u
	return nil
}

func (m *MockStore) AddPostToUser(userID, postID string) error {
	if m.ShouldFail {
		return errors.New("mock: add post to user failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return nil
	}
	u.Posts = append(u.Posts, postID)
	m.Users[userID] = u
	return nil
}

func (m *MockStore) RemovePostFromUser(userID, postID string) error {
	if m.ShouldFail {
		return errors.New("mock: remove post from user failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return nil
	}
	kept := u.Posts[:0]
	for _, id := range u.Posts {
		if id != postID {
			kept = append(kept, id)
		}
	}
	u.Posts = kept
	m.Users[userID] = u
	return nil
}

func (m *MockStore) CreatePost(post models.Post) error {
	if m.ShouldFail {
		return errors.New("mock: create post failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsByID[post.ID] = post
	m.order = append(m.order, post.ID)
	return nil
}

func (m *MockStore) GetPost(id string) (*models.Post, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get post failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.PostsByID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MockStore) UpdatePost(post models.Post) error {
	if m.ShouldFail {
		return errors.New("mock: update post failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.PostsByID[post.ID]
	if !ok {
		return nil
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.ImageURL = post.ImageURL
	stored.Updated = post.Updated
	m.PostsByID[post.ID] = stored
	return nil
}

func (m *MockStore) DeletePost(post models.Post) error {
	if m.ShouldFail {
		return errors.New("mock: delete post failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.PostsByID, post.ID)
	kept := m.order[:0]
	for _, id := range m.order {
		if id != post.ID {
			kept = append(kept, id)
		}
	}
	m.order = kept
	return nil
}

// ListPosts pages through posts newest first, mirroring the feed
// partition's created_at DESC clustering order.
func (m *MockStore) ListPosts(page, perPage int) ([]models.Post, int, error) {
	if m.ShouldFail {
		return nil, 0, errors.New("mock: list posts failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// newest first; insertion order breaks creation-time ties
	ids := make([]string, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		ids = append(ids, m.order[i])
	}

	total := len(ids)
	skip := (page - 1) * perPage
	if skip >= total {
		return nil, total, nil
	}
	ids = ids[skip:]
	if len(ids) > perPage {
		ids = ids[:perPage]
	}

	posts := make([]models.Post, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, m.PostsByID[id])
	}
	return posts, total, nil
}

// ---------------------------------------------
// MockStoreFail always returns errors for negative tests
type MockStoreFail struct{}

func (m *MockStoreFail) Close() {}

func (m *MockStoreFail) CreateUser(user models.User) error {
	return errors.New("mock store create user failed")
}

func (m *MockStoreFail) GetUserByEmail(email string) (*models.User, error) {
	return nil, errors.New("mock store get user by email failed")
}

func (m *MockStoreFail) GetUserByID(id string) (*models.User, error) {
	return nil, errors.New("mock store get user by id failed")
}

func (m *MockStoreFail) UpdateUserStatus(id, status string) error {
	return errors.New("mock store update status failed")
}

func (m *MockStoreFail) AddPostToUser(userID, postID string) error {
	return errors.New("mock store add post to user failed")
}

func (m *MockStoreFail) RemovePostFromUser(userID, postID string) error {
	return errors.New("mock store remove post from user failed")
}

func (m *MockStoreFail) CreatePost(post models.Post) error {
	return errors.New("mock store create post failed")
}

func (m *MockStoreFail) GetPost(id string) (*models.Post, error) {
	return nil, errors.New("mock store get post failed")
}

func (m *MockStoreFail) UpdatePost(post models.Post) error {
	return errors.New("mock store update post failed")
}

func (m *MockStoreFail) DeletePost(post models.Post) error {
	return errors.New("mock store delete post failed")
}

func (m *MockStoreFail) ListPosts(page, perPage int) ([]models.Post, int, error) {
	return nil, 0, errors.New("mock store list posts failed")
}
