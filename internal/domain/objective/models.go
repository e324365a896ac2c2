package objective

import "okr/internal/tablestore"

// Objective lifecycle. An objective is editable while draft, locked once
// submitted, and terminal in approved or rejected.
const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Objective categories. The store treats the column as free text, so
// unknown values survive round trips; these are the ones the API
// accepts on input.
const (
	TypeBusiness    = "business"
	TypeCompetency  = "competency"
	TypeDevelopment = "development"
)

type Objective struct {
	RecordID    string  `json:"recordId"`
	ObjectiveID string  `json:"objectiveId"`
	UserID      string  `json:"userId"`
	UserName    string  `json:"userName"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Weight      float64 `json:"weight"`
	Target      string  `json:"target"`
	Priority    string  `json:"priority"`
	DueDate     string  `json:"dueDate,omitempty"`
	ParentID    string  `json:"parentId,omitempty"`
	PeriodID    string  `json:"periodId"`
	PeriodName  string  `json:"periodName"`
	Status      string  `json:"status"`

	ApproverID      string `json:"approverId,omitempty"`
	ApproverName    string `json:"approverName,omitempty"`
	ApproverComment string `json:"approverComment,omitempty"`

	SubmittedAt string `json:"submittedAt,omitempty"`
	DecidedAt   string `json:"decidedAt,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

const (
	fieldObjectiveID = "Objective ID"
	fieldUserID      = "User ID"
	fieldUserName    = "User Name"
	fieldTitle       = "Title"
	fieldDescription = "Description"
	fieldType        = "Type"
	fieldWeight      = "Weight"
	fieldTarget      = "Target"
	fieldPriority    = "Priority"
	fieldDueDate     = "Due Date"
	fieldParentID    = "Parent ID"
	fieldPeriodID    = "Period ID"
	fieldPeriodName  = "Period Name"
	fieldStatus      = "Status"

	fieldApproverID      = "Approver ID"
	fieldApproverName    = "Approver Name"
	fieldApproverComment = "Approver Comment"

	fieldSubmittedAt = "Submitted At"
	fieldDecidedAt   = "Decided At"
	fieldCreatedAt   = "Created At"
	fieldUpdatedAt   = "Updated At"
)

func fieldsOf(o Objective) map[string]any {
	return map[string]any{
		fieldObjectiveID:     o.ObjectiveID,
		fieldUserID:          o.UserID,
		fieldUserName:        o.UserName,
		fieldTitle:           o.Title,
		fieldDescription:     o.Description,
		fieldType:            o.Type,
		fieldWeight:          o.Weight,
		fieldTarget:          o.Target,
		fieldPriority:        o.Priority,
		fieldDueDate:         o.DueDate,
		fieldParentID:        o.ParentID,
		fieldPeriodID:        o.PeriodID,
		fieldPeriodName:      o.PeriodName,
		fieldStatus:          o.Status,
		fieldApproverID:      o.ApproverID,
		fieldApproverName:    o.ApproverName,
		fieldApproverComment: o.ApproverComment,
		fieldSubmittedAt:     o.SubmittedAt,
		fieldDecidedAt:       o.DecidedAt,
		fieldCreatedAt:       o.CreatedAt,
		fieldUpdatedAt:       o.UpdatedAt,
	}
}

func fromRecord(rec tablestore.Record) Objective {
	return Objective{
		RecordID:        rec.ID,
		ObjectiveID:     rec.String(fieldObjectiveID),
		UserID:          rec.String(fieldUserID),
		UserName:        rec.String(fieldUserName),
		Title:           rec.String(fieldTitle),
		Description:     rec.String(fieldDescription),
		Type:            rec.String(fieldType),
		Weight:          rec.Float(fieldWeight),
		Target:          rec.String(fieldTarget),
		Priority:        rec.String(fieldPriority),
		DueDate:         rec.String(fieldDueDate),
		ParentID:        rec.String(fieldParentID),
		PeriodID:        rec.String(fieldPeriodID),
		PeriodName:      rec.String(fieldPeriodName),
		Status:          rec.String(fieldStatus),
		ApproverID:      rec.String(fieldApproverID),
		ApproverName:    rec.String(fieldApproverName),
		ApproverComment: rec.String(fieldApproverComment),
		SubmittedAt:     rec.String(fieldSubmittedAt),
		DecidedAt:       rec.String(fieldDecidedAt),
		CreatedAt:       rec.String(fieldCreatedAt),
		UpdatedAt:       rec.String(fieldUpdatedAt),
	}
}

func fromRecords(records []tablestore.Record) []Objective {
	out := make([]Objective, len(records))
	for i, rec := range records {
		out[i] = fromRecord(rec)
	}
	return out
}
