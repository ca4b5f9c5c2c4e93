package task

// Patch - частичное обновление: применяются только заданные (не nil) поля
type Patch struct {
	Date          *string   `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EntityName    *string   `json:"entityName,omitempty" validate:"omitempty,min=1"`
	TaskType      *TaskType `json:"taskType,omitempty" validate:"omitempty,tasktype"`
	Time          *string   `json:"time,omitempty" validate:"omitempty,hhmm"`
	ContactPerson *string   `json:"contactPerson,omitempty" validate:"omitempty,min=1"`
	Note          *string   `json:"note,omitempty"`
	Status        *Status   `json:"status,omitempty" validate:"omitempty,taskstatus"`
}

type PatchOption func(*Patch)

func NewPatch(options ...PatchOption) Patch {
	var p Patch
	for _, opt := range options {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

func WithDate(date string) PatchOption {
	return func(p *Patch) {
		p.Date = &date
	}
}

func WithEntityName(name string) PatchOption {
	return func(p *Patch) {
		p.EntityName = &name
	}
}

func WithTaskType(taskType TaskType) PatchOption {
	return func(p *Patch) {
		p.TaskType = &taskType
	}
}

func WithTime(clock string) PatchOption {
	return func(p *Patch) {
		p.Time = &clock
	}
}

func WithContactPerson(contact string) PatchOption {
	return func(p *Patch) {
		p.ContactPerson = &contact
	}
}

func WithNote(note string) PatchOption {
	return func(p *Patch) {
		p.Note = &note
	}
}

func WithStatus(status Status) PatchOption {
	if status == "" {
		return nil
	}
	return func(p *Patch) {
		p.Status = &status
	}
}

func (p Patch) IsEmpty() bool {
	return p.Date == nil && p.EntityName == nil && p.TaskType == nil && p.Time == nil &&
		p.ContactPerson == nil && p.Note == nil && p.Status == nil
}

// Apply сливает заданные поля в задачу
func (p Patch) Apply(t *Task) {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.EntityName != nil {
		t.EntityName = *p.EntityName
	}
	if p.TaskType != nil {
		t.TaskType = *p.TaskType
	}
	if p.Time != nil {
		t.Time = *p.Time
	}
	if p.ContactPerson != nil {
		t.ContactPerson = *p.ContactPerson
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// Columns возвращает пары колонка/значение для SQL-хранилищ в фиксированном порядке
func (p Patch) Columns() ([]string, []any) {
	var cols []string
	var vals []any
	add := func(col string, v any) {
		cols = append(cols, col)
		vals = append(vals, v)
	}
	if p.Date != nil {
		add("date", *p.Date)
	}
	if p.EntityName != nil {
		add("entity_name", *p.EntityName)
	}
	if p.TaskType != nil {
		add("task_type", string(*p.TaskType))
	}
	if p.Time != nil {
		add("time", *p.Time)
	}
	if p.ContactPerson != nil {
		add("contact_person", *p.ContactPerson)
	}
	if p.Note != nil {
		add("note", *p.Note)
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	return cols, vals
}
