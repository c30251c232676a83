package models

import "time"

// Creator is the minimal author summary attached to posts and
// broadcast events.
type Creator struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Posts        []string  `json:"posts"`
	Created      time.Time `json:"createdAt"`
}

// DefaultStatus is assigned to every user at signup.
const DefaultStatus = "I am new"

type Post struct {
	ID      string `json:"_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// ImageURL is a path under the image directory, served at /images/.
	ImageURL string `json:"imageUrl"`
	// CreatorID is the denormalized owner reference; authorization always
	// compares this value, never the populated Creator object.
	CreatorID string    `json:"-"`
	Creator   *Creator  `json:"creator,omitempty"`
	Created   time.Time `json:"createdAt"`
	Updated   time.Time `json:"updatedAt"`
}

// MutationEvent is the message fanned out to connected clients after a
// successful feed mutation. Post carries the full post for create and
// update, and only the post id for delete.
type MutationEvent struct {
	Action string `json:"action"`
	Post   any    `json:"post"`
}

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)
