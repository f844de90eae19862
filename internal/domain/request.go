package domain

import "time"

// Category enumerates supported design request categories.
type Category string

const (
	CategoryBanner     Category = "banner"
	CategoryPoster     Category = "poster"
	CategoryDetailPage Category = "detail_page"
	CategoryIcon       Category = "icon"
	CategoryOther      Category = "other"
)

// KnownCategories lists every valid category value in declaration order.
var KnownCategories = []Category{
	CategoryBanner,
	CategoryPoster,
	CategoryDetailPage,
	CategoryIcon,
	CategoryOther,
}

// IsValidCategory reports whether the given label is a known category.
func IsValidCategory(v string) bool {
	for _, c := range KnownCategories {
		if string(c) == v {
			return true
		}
	}
	return false
}

// Status enumerates request lifecycle states.
type Status string

const (
	StatusPending     Status = "pending"
	StatusInProgress  Status = "in_progress"
	StatusUnderReview Status = "under_review"
	StatusRevising    Status = "revising"
	StatusCompleted   Status = "completed"
)

// Request is a durable design request record, created once a draft is
// submitted. Its status only moves along the lifecycle transition graph.
type Request struct {
	ID             int64
	Title          string
	Category       Category
	Dimensions     string
	Deadline       string
	CopyText       string
	ReferenceURIs  []string
	Notes          string
	RequesterID    int64
	AssigneeID     *int64
	EstimatedHours *float64
	Status         Status
	ConversationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AuditAction enumerates time-log audit actions. Business operations map
// onto these: submit-for-review records pause, request-revision records
// resume. The mapping is deliberate; there are no hidden states behind it.
type AuditAction string

const (
	AuditStart    AuditAction = "start"
	AuditPause    AuditAction = "pause"
	AuditResume   AuditAction = "resume"
	AuditComplete AuditAction = "complete"
)

// TimeLogEntry is one append-only row of a request's time-accounting trail.
// Entries are never updated or deleted after insertion.
type TimeLogEntry struct {
	ID               int64
	RequestID        int64
	Action           AuditAction
	Timestamp        time.Time
	AccumulatedHours float64
}

// GuidanceSnippet is a short design-guidance excerpt from the specification
// knowledge base, scoped to a category.
type GuidanceSnippet struct {
	ID       int64
	Category Category
	Content  string
	Source   string
}
