package query

import (
	"sync"

	"taskMaster/internal/models/task"
)

// View строит отображаемый список: Apply, затем SortTasks. Последний результат
// запоминается и отдаётся повторно, пока не изменились срез задач (по идентичности),
// фильтр и сортировка (по значению). Переданный срез владелец больше не меняет.
type View struct {
	mu           sync.Mutex
	locale       string
	computations int

	valid  bool
	tasks  []task.Task
	filter Filter
	sort   Sort
	result []task.Task
}

func NewView(locale string) *View {
	if locale == "" {
		locale = "en"
	}
	return &View{locale: locale}
}

// Derive возвращает отфильтрованный и отсортированный список
func (v *View) Derive(tasks []task.Task, f Filter, s Sort) []task.Task {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.valid && sameSlice(v.tasks, tasks) && v.filter.Equal(f) && v.sort == s {
		return v.result
	}

	filtered := Apply(tasks, f)
	result := SortTasks(filtered, s, NewCollator(v.locale))

	v.valid = true
	v.tasks = tasks
	v.filter = f
	v.sort = s
	v.result = result
	v.computations++
	return result
}

// Computations - сколько раз Derive действительно пересчитывал список
func (v *View) Computations() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.computations
}

// Derive - View.Derive без запоминания
func Derive(tasks []task.Task, f Filter, s Sort, locale string) []task.Task {
	return SortTasks(Apply(tasks, f), s, NewCollator(locale))
}

func sameSlice(a, b []task.Task) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}
