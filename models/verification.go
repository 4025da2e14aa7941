package models

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Verification status values. A verification starts pending and is moved to
// verified or rejected by an admin review. A rejected task is retried by
// submitting a brand-new verification, never by reopening the old record.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

const (
	TaskTwitter   = "twitter"
	TaskFacebook  = "facebook"
	TaskInstagram = "instagram"
	TaskYoutube   = "youtube"
	TaskTelegram  = "telegram"
)

// KnownTasks is the fixed set of built-in social tasks. Custom labels are
// allowed and pass through NormalizeTask as slugs.
var KnownTasks = []string{TaskTwitter, TaskFacebook, TaskInstagram, TaskYoutube, TaskTelegram}

// Verification is one screenshot proof submission and its review outcome.
type Verification struct {
	ID            string     `json:"verificationId" gorm:"primaryKey"`
	UserAddress   string     `json:"userAddress" gorm:"index;not null"`
	Task          string     `json:"task" gorm:"index;not null"`
	ScreenshotURL string     `json:"screenshotUrl" gorm:"not null"` // blob store reference, immutable once set
	Status        string     `json:"status" gorm:"index;default:'pending'"`
	ReviewedBy    string     `json:"reviewedBy,omitempty"`
	ReviewNotes   string     `json:"reviewNotes,omitempty"`
	SubmittedAt   time.Time  `json:"submittedAt"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"` // nil exactly while status is pending
}

// IsKnownTask reports whether task is one of the built-in social tasks.
func IsKnownTask(task string) bool {
	for _, t := range KnownTasks {
		if t == task {
			return true
		}
	}
	return false
}

// NormalizeTask lowercases built-in task names and slugifies custom labels so
// arbitrary input ("Discord Server!") stays a stable map key ("discord-server").
func NormalizeTask(task string) string {
	task = strings.ToLower(strings.TrimSpace(task))
	if IsKnownTask(task) {
		return task
	}
	return slug.Make(task)
}

// ValidStatusTransition reports whether a review may set the given status.
func ValidStatusTransition(status string) bool {
	return status == StatusVerified || status == StatusRejected
}
