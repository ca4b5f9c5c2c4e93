package task

type Task struct {
	ID            string   `json:"id" db:"id"`
	Date          string   `json:"date" db:"date"`
	EntityName    string   `json:"entityName" db:"entity_name"`
	TaskType      TaskType `json:"taskType" db:"task_type"`
	Time          string   `json:"time" db:"time"`
	ContactPerson string   `json:"contactPerson" db:"contact_person"`
	Note          string   `json:"note,omitempty" db:"note"`
	Status        Status   `json:"status" db:"status"`
	CreatedAt     string   `json:"createdAt,omitempty" db:"created_at"`
}

// Draft - данные формы для создания задачи, без id и createdAt
type Draft struct {
	Date          string   `json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	EntityName    string   `json:"entityName" yaml:"entityName" validate:"required"`
	TaskType      TaskType `json:"taskType" yaml:"taskType" validate:"required,tasktype"`
	Time          string   `json:"time" yaml:"time" validate:"required,hhmm"`
	ContactPerson string   `json:"contactPerson" yaml:"contactPerson" validate:"required"`
	Note          string   `json:"note,omitempty" yaml:"note,omitempty"`
	Status        Status   `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,taskstatus"`
}

type TaskType string
type Status string

const (
	TypeCall      TaskType = "Call"
	TypeEmail     TaskType = "Email"
	TypeMeeting   TaskType = "Meeting"
	TypeFollowUp  TaskType = "Follow-up"
	TypeSiteVisit TaskType = "Site Visit"
	TypeDemo      TaskType = "Demo"
	TypeProposal  TaskType = "Proposal"
	TypeContract  TaskType = "Contract"
	TypeOther     TaskType = "Other"
)

const StatusOpen Status = "open"
const StatusClosed Status = "closed"

var TaskTypes = []TaskType{
	TypeCall,
	TypeEmail,
	TypeMeeting,
	TypeFollowUp,
	TypeSiteVisit,
	TypeDemo,
	TypeProposal,
	TypeContract,
	TypeOther,
}

var Statuses = []Status{StatusOpen, StatusClosed}

func (t TaskType) Valid() bool {
	for _, known := range TaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Toggle переключает open <-> closed
func (s Status) Toggle() Status {
	if s == StatusClosed {
		return StatusOpen
	}
	return StatusClosed
}

// ToTask собирает запись из черновика; статус по умолчанию open
func (d Draft) ToTask(id, createdAt string) Task {
	status := d.Status
	if status == "" {
		status = StatusOpen
	}
	return Task{
		ID:            id,
		Date:          d.Date,
		EntityName:    d.EntityName,
		TaskType:      d.TaskType,
		Time:          d.Time,
		ContactPerson: d.ContactPerson,
		Note:          d.Note,
		Status:        status,
		CreatedAt:     createdAt,
	}
}

// FromTask - обратное преобразование, нужно при переносе локальных данных
func FromTask(t Task) Draft {
	return Draft{
		Date:          t.Date,
		EntityName:    t.EntityName,
		TaskType:      t.TaskType,
		Time:          t.Time,
		ContactPerson: t.ContactPerson,
		Note:          t.Note,
		Status:        t.Status,
	}
}
