package models

// Idea is a project idea owned by the collaboration app
type Idea struct {
	ID          int64  `db:"id"`
	OwnerID     int64  `db:"owner_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
}

// Profile is the public display data of a member
type Profile struct {
	UserID      int64  `db:"user_id"`
	DisplayName string `db:"display_name"`
	AvatarURL   string `db:"avatar_url"`
}
