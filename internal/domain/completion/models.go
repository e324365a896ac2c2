package completion

import "okr/internal/tablestore"

// Completion lifecycle. A self-assessment is editable while draft,
// locked once submitted, scored by the supervisor, then archived.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusScored    = "scored"
	StatusArchived  = "archived"
)

type Completion struct {
	RecordID       string  `json:"recordId"`
	CompletionID   string  `json:"completionId"`
	ObjectiveID    string  `json:"objectiveId"`
	UserID         string  `json:"userId"`
	UserName       string  `json:"userName"`
	PeriodID       string  `json:"periodId"`
	PeriodName     string  `json:"periodName"`
	Summary        string  `json:"summary"`
	ActualValue    string  `json:"actualValue"`
	CompletionRate float64 `json:"completionRate"`
	SelfScore      float64 `json:"selfScore"`
	Evidence       string  `json:"evidence"`
	Status         string  `json:"status"`

	SupervisorScore  float64 `json:"supervisorScore"`
	CalibrationScore float64 `json:"calibrationScore"`
	ScorerID         string  `json:"scorerId,omitempty"`
	ScorerName       string  `json:"scorerName,omitempty"`
	ScorerComment    string  `json:"scorerComment,omitempty"`

	SubmittedAt string `json:"submittedAt,omitempty"`
	ScoredAt    string `json:"scoredAt,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

const (
	fieldCompletionID   = "Completion ID"
	fieldObjectiveID    = "Objective ID"
	fieldUserID         = "User ID"
	fieldUserName       = "User Name"
	fieldPeriodID       = "Period ID"
	fieldPeriodName     = "Period Name"
	fieldSummary        = "Summary"
	fieldActualValue    = "Actual Value"
	fieldCompletionRate = "Completion Rate"
	fieldSelfScore      = "Self Score"
	fieldEvidence       = "Evidence"
	fieldStatus         = "Status"

	fieldSupervisorScore  = "Supervisor Score"
	fieldCalibrationScore = "Calibration Score"
	fieldScorerID         = "Scorer ID"
	fieldScorerName       = "Scorer Name"
	fieldScorerComment    = "Scorer Comment"

	fieldSubmittedAt = "Submitted At"
	fieldScoredAt    = "Scored At"
	fieldCreatedAt   = "Created At"
	fieldUpdatedAt   = "Updated At"
)

func fieldsOf(c Completion) map[string]any {
	return map[string]any{
		fieldCompletionID:     c.CompletionID,
		fieldObjectiveID:      c.ObjectiveID,
		fieldUserID:           c.UserID,
		fieldUserName:         c.UserName,
		fieldPeriodID:         c.PeriodID,
		fieldPeriodName:       c.PeriodName,
		fieldSummary:          c.Summary,
		fieldActualValue:      c.ActualValue,
		fieldCompletionRate:   c.CompletionRate,
		fieldSelfScore:        c.SelfScore,
		fieldEvidence:         c.Evidence,
		fieldStatus:           c.Status,
		fieldSupervisorScore:  c.SupervisorScore,
		fieldCalibrationScore: c.CalibrationScore,
		fieldScorerID:         c.ScorerID,
		fieldScorerName:       c.ScorerName,
		fieldScorerComment:    c.ScorerComment,
		fieldSubmittedAt:      c.SubmittedAt,
		fieldScoredAt:         c.ScoredAt,
		fieldCreatedAt:        c.CreatedAt,
		fieldUpdatedAt:        c.UpdatedAt,
	}
}

func fromRecord(rec tablestore.Record) Completion {
	return Completion{
		RecordID:         rec.ID,
		CompletionID:     rec.String(fieldCompletionID),
		ObjectiveID:      rec.String(fieldObjectiveID),
		UserID:           rec.String(fieldUserID),
		UserName:         rec.String(fieldUserName),
		PeriodID:         rec.String(fieldPeriodID),
		PeriodName:       rec.String(fieldPeriodName),
		Summary:          rec.String(fieldSummary),
		ActualValue:      rec.String(fieldActualValue),
		CompletionRate:   rec.Float(fieldCompletionRate),
		SelfScore:        rec.Float(fieldSelfScore),
		Evidence:         rec.String(fieldEvidence),
		Status:           rec.String(fieldStatus),
		SupervisorScore:  rec.Float(fieldSupervisorScore),
		CalibrationScore: rec.Float(fieldCalibrationScore),
		ScorerID:         rec.String(fieldScorerID),
		ScorerName:       rec.String(fieldScorerName),
		ScorerComment:    rec.String(fieldScorerComment),
		SubmittedAt:      rec.String(fieldSubmittedAt),
		ScoredAt:         rec.String(fieldScoredAt),
		CreatedAt:        rec.String(fieldCreatedAt),
		UpdatedAt:        rec.String(fieldUpdatedAt),
	}
}

func fromRecords(records []tablestore.Record) []Completion {
	out := make([]Completion, len(records))
	for i, rec := range records {
		out[i] = fromRecord(rec)
	}
	return out
}
