package models

import (
	"time"
)

// Community is a post on the community board. Path is the board the post belongs to.
type Community struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"not null;index" json:"userId"`
	User         User            `gorm:"foreignKey:UserID" json:"user"`
	Path         string          `gorm:"not null;size:64;index" json:"path"`
	Title        string          `gorm:"not null" json:"title"`
	Content      string          `gorm:"type:text;not null" json:"content"`
	View         int             `gorm:"not null;default:0" json:"view"`
	LikeCount    int             `gorm:"not null;default:0" json:"likeCount"`
	CommentCount int             `gorm:"not null;default:0" json:"commentCount"`
	Comments     []Comment       `gorm:"foreignKey:CommunityID" json:"comments,omitempty"`
	Likes        []CommunityLike `gorm:"foreignKey:CommunityID" json:"communityLikes,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Record flattens the post into the field map consumed by the listing normalizer.
func (c *Community) Record() map[string]any {
	return map[string]any{
		"id":           c.ID,
		"path":         c.Path,
		"title":        c.Title,
		"content":      c.Content,
		"view":         c.View,
		"likeCount":    c.LikeCount,
		"commentCount": c.CommentCount,
		"nickname":     c.User.Nickname,
		"createdAt":    c.CreatedAt,
	}
}

// Comment represents a comment on a community post.
type Comment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CommunityID uint          `gorm:"not null;index" json:"communityId"`
	UserID      uint          `gorm:"not null" json:"userId"`
	User        User          `gorm:"foreignKey:UserID" json:"user"`
	Comment     string        `gorm:"type:text;not null" json:"comment"`
	Likes       []CommentLike `gorm:"foreignKey:CommentID" json:"commentLikes,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// CommunityLike represents a user's like on a community post.
// The combination of UserID and CommunityID must be unique.
type CommunityLike struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_community" json:"userId"`
	CommunityID uint      `gorm:"not null;uniqueIndex:idx_user_community" json:"communityId"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommentLike represents a user's like on a comment.
// The combination of UserID and CommentID must be unique.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_comment" json:"userId"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_user_comment" json:"commentId"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}
