package task

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

const (
	SourceSchedule = "schedule"
	SourceManual   = "manual"
	SourceCLI      = "cli"
)

// Job is the run record of one expiry scan.
type Job struct {
	ID          string         `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	TaskName    string         `gorm:"column:task_name;index;type:varchar(100);not null" json:"task_name"`
	Status      string         `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"` // pending|running|success|failed
	ErrorMsg    string         `gorm:"column:error_msg;type:text" json:"error_msg,omitempty"`
	Processed   int            `gorm:"column:processed" json:"processed"`
	Notified    int            `gorm:"column:notified" json:"notified"`
	StartedAt   *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
}

func (Job) TableName() string { return "scan_jobs" }

// ScanPayload travels with the asynq task.
type ScanPayload struct {
	Source string `json:"source"`
	Date   string `json:"date"`
}
