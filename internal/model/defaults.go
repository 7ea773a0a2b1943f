package model

// Statuses and kinds. Validation tags in the handlers mirror these lists.
const (
	ApplicationDraft      = "Draft"
	ApplicationInProgress = "In Progress"
	ApplicationSubmitted  = "Submitted"
	ApplicationAwarded    = "Awarded"
	ApplicationRejected   = "Rejected"

	ComplianceUpcoming   = "Upcoming"
	ComplianceInProgress = "In Progress"
	ComplianceCompleted  = "Completed"
	ComplianceOverdue    = "Overdue"

	PracticeActive    = "active"
	PracticeCompleted = "completed"

	NotificationInfo     = "info"
	NotificationDeadline = "deadline"
	NotificationSystem   = "system"

	DocumentOther = "other"

	ThemeSystem = "system"
)

// ResourceDefaults collects every value a handler fills in when the client
// leaves a field out, so the defaults can be audited and tested in one place.
type ResourceDefaults struct {
	ApplicationStatus string
	ComplianceStatus  string
	DocumentKind      string
	NotificationKind  string
	PracticeStatus    string

	EmailNotifications   bool
	DeadlineReminderDays int
	Theme                string

	Page     int
	Limit    int
	MaxLimit int
}

// Defaults is the process-wide default table.
var Defaults = ResourceDefaults{
	ApplicationStatus: ApplicationDraft,
	ComplianceStatus:  ComplianceUpcoming,
	DocumentKind:      DocumentOther,
	NotificationKind:  NotificationInfo,
	PracticeStatus:    PracticeActive,

	EmailNotifications:   true,
	DeadlineReminderDays: 7,
	Theme:                ThemeSystem,

	Page:     1,
	Limit:    20,
	MaxLimit: 100,
}
