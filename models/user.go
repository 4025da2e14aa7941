package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TaskMap maps a task name to its completion flag. Stored as a JSON column so
// the same model works on Postgres and the in-memory test database.
type TaskMap map[string]bool

// Value implements the driver.Valuer interface
func (m TaskMap) Value() (driver.Value, error) {
	if m == nil {
		m = TaskMap{}
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *TaskMap) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = TaskMap{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type for TaskMap: %T", value)
	}
}

// DefaultTaskMap returns a map with every built-in task marked incomplete.
func DefaultTaskMap() TaskMap {
	m := make(TaskMap, len(KnownTasks))
	for _, t := range KnownTasks {
		m[t] = false
	}
	return m
}

// User is one end-user identity, keyed by the client-supplied address.
type User struct {
	UserAddress      string       `json:"userAddress" gorm:"primaryKey"`
	ReferralCode     string       `json:"referralCode,omitempty"`
	IsActive         bool         `json:"isActive" gorm:"default:true"`
	RegistrationDate time.Time    `json:"registrationDate"`
	TasksCompleted   TaskMap      `json:"tasksCompleted" gorm:"type:json"`
	DailyClaims      []DailyClaim `json:"dailyClaims" gorm:"foreignKey:UserAddress;references:UserAddress"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// DailyClaim is one entry in a user's append-only reward-claim history.
// The (user, day) pair is unique: one claim per UTC day.
type DailyClaim struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserAddress string    `json:"userAddress" gorm:"not null;uniqueIndex:idx_user_claim_day"`
	ClaimDate   string    `json:"claimDate" gorm:"not null;uniqueIndex:idx_user_claim_day"` // YYYY-MM-DD, UTC
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
}
