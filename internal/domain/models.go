// Package domain defines the persistence models for users and messages.
// These types are mapped with GORM for the relational store and serialized
// as JSON documents by the document store, so both backends share one shape.
package domain

import (
	"strings"
	"time"
)

// User is the single local profile that authors messages.
//
// Fields:
//   - ID: allocator-assigned integer, never reused.
//   - Name / About / Subtitle / ProfileImage: profile attributes; ProfileImage
//     is a URI.
//   - LastSeen: refreshed on every profile mutation.
//   - CreatedAt / UpdatedAt: store-managed timestamps.
type User struct {
	ID           int64     `json:"id"            gorm:"primaryKey;autoIncrement:false"`
	Name         string    `json:"name"          gorm:"type:text;not null"`
	About        string    `json:"about"         gorm:"type:text"`
	Subtitle     string    `json:"subtitle"      gorm:"type:text"`
	ProfileImage string    `json:"profile_image" gorm:"type:text"`
	LastSeen     time.Time `json:"last_seen"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Message is one persisted chat message.
//
// Timestamp is the ISO-8601 send time computed once by the sender and never
// changed. CreatedAt is assigned by the store on insert and drives ordering.
// UserID references users.id but is not an enforced constraint: messages
// outlive their sender and are then listed with empty sender fields.
type Message struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement:false"`
	Text      string    `json:"text"       gorm:"type:text;not null"`
	Timestamp string    `json:"timestamp"  gorm:"type:text;not null"`
	Status    Status    `json:"status"     gorm:"type:varchar(16);not null;default:'sent';check:status IN ('sent','saved','delivered','read')"`
	UserID    int64     `json:"user_id"    gorm:"index:idx_messages_user"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_messages_created"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// MessageView is a message joined with its sender. Sender fields are nil when
// the referenced user no longer exists.
type MessageView struct {
	Message
	SenderName         *string `json:"sender_name"`
	SenderProfileImage *string `json:"sender_profile_image"`
}

// UserPatch lists the profile fields to change. Nil fields are left as is.
type UserPatch struct {
	Name         *string `json:"name,omitempty"`
	About        *string `json:"about,omitempty"`
	Subtitle     *string `json:"subtitle,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.About == nil && p.Subtitle == nil && p.ProfileImage == nil
}

// Apply merges the set fields into u and refreshes LastSeen/UpdatedAt to now.
func (p UserPatch) Apply(u *User, now time.Time) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.About != nil {
		u.About = *p.About
	}
	if p.Subtitle != nil {
		u.Subtitle = *p.Subtitle
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
	u.LastSeen = now
	u.UpdatedAt = now
}

// Kind names an id sequence of the allocator.
type Kind string

const (
	KindUser    Kind = "user"
	KindMessage Kind = "message"
)

// Counter is the durable last-issued id of one Kind.
type Counter struct {
	Kind   Kind  `gorm:"type:varchar(16);primaryKey"`
	LastID int64 `gorm:"not null;default:0"`
}

// TableName returns the database table name for Counter.
func (Counter) TableName() string { return "counters" }

// Stats summarizes the messages collection for conditional responses.
type Stats struct {
	Count       int64
	LastChanged *time.Time
}
