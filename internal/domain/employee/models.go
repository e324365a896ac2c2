package employee

import "okr/internal/tablestore"

// Role is the closed set of roles the system understands. Authorization
// is driven by the capability table in the auth domain, never by ad-hoc
// string comparison.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// ParseRole maps a stored role value onto the closed set, defaulting to
// the least-privileged role for unknown values.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleSupervisor:
		return RoleSupervisor
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleEmployee
	}
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Employee struct {
	RecordID     string `json:"recordId"`
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	Position     string `json:"position"`
	SupervisorID string `json:"supervisorId"`
	Role         Role   `json:"role"`
	Status       string `json:"status"`
	EntryDate    string `json:"entryDate"`
	CreatedAt    string `json:"createdAt"`
}

// Store column names. The mapping between the typed record and the
// remote field map lives here and nowhere else.
const (
	fieldUserID       = "User ID"
	fieldName         = "Name"
	fieldEmail        = "Email"
	fieldDepartment   = "Department"
	fieldPosition     = "Position"
	fieldSupervisorID = "Supervisor ID"
	fieldRole         = "Role"
	fieldStatus       = "Status"
	fieldEntryDate    = "Entry Date"
	fieldCreatedAt    = "Created At"
)

func fieldsOf(e Employee) map[string]any {
	return map[string]any{
		fieldUserID:       e.UserID,
		fieldName:         e.Name,
		fieldEmail:        e.Email,
		fieldDepartment:   e.Department,
		fieldPosition:     e.Position,
		fieldSupervisorID: e.SupervisorID,
		fieldRole:         string(e.Role),
		fieldStatus:       e.Status,
		fieldEntryDate:    e.EntryDate,
		fieldCreatedAt:    e.CreatedAt,
	}
}

func fromRecord(rec tablestore.Record) Employee {
	return Employee{
		RecordID:     rec.ID,
		UserID:       rec.String(fieldUserID),
		Name:         rec.String(fieldName),
		Email:        rec.String(fieldEmail),
		Department:   rec.String(fieldDepartment),
		Position:     rec.String(fieldPosition),
		SupervisorID: rec.String(fieldSupervisorID),
		Role:         ParseRole(rec.String(fieldRole)),
		Status:       rec.String(fieldStatus),
		EntryDate:    rec.String(fieldEntryDate),
		CreatedAt:    rec.String(fieldCreatedAt),
	}
}
