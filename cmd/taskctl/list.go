package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"taskMaster/internal/handlers"
	"taskMaster/internal/handlers/dto"
	"taskMaster/internal/models/task"
	"taskMaster/internal/query"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// флаги list повторяют параметры GET /tasks
var listFlags = []struct {
	flag  string
	param string
	usage string
}{
	{"entity", "entityName", "подстрока названия организации"},
	{"contact", "contactPerson", "подстрока контактного лица"},
	{"note", "note", "подстрока заметки"},
	{"type", "taskType", "тип задачи или all"},
	{"status", "status", "open, closed или all"},
	{"from", "dateFrom", "дата с (YYYY-MM-DD)"},
	{"to", "dateTo", "дата по (YYYY-MM-DD)"},
	{"sort", "sort", "поле сортировки или none"},
	{"dir", "dir", "asc или desc"},
	{"toggle", "toggle", "переключить сортировку по полю, как клик по заголовку"},
}

func listCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Показать задачи с фильтром и сортировкой",
		Example: `  taskctl list
  taskctl list --status open --sort entityName
  taskctl list --from 2024-07-15 --toggle date --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := url.Values{}
			for _, f := range listFlags {
				if cmd.Flags().Changed(f.flag) {
					v, _ := cmd.Flags().GetString(f.flag)
					values.Set(f.param, v)
				}
			}

			filter, err := handlers.ParseFilter(values)
			if err != nil {
				return err
			}
			sort, err := handlers.ParseSort(values)
			if err != nil {
				return err
			}

			a, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			tasks, err := a.Service().View(cmd.Context(), filter, sort)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), dto.NewViewResponse(tasks, filter, sort))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable(tasks, sort))
			return err
		},
	}

	for _, f := range listFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	return cmd
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#374151", Dark: "#E5E7EB"})
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	closedStyle = cellStyle.Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"})
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var columns = []struct {
	title string
	field query.Field
}{
	{"Date", query.FieldDate},
	{"Entity", query.FieldEntityName},
	{"Type", query.FieldTaskType},
	{"Time", query.FieldTime},
	{"Contact", query.FieldContactPerson},
	{"Status", query.FieldStatus},
	{"Note", query.FieldNote},
	{"ID", query.FieldNone},
}

// renderTable рисует задачи таблицей; у колонки сортировки стрелка направления
func renderTable(tasks []task.Task, sort query.Sort) string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.title
		if c.field != query.FieldNone && c.field == sort.Field {
			if sort.Direction == query.Asc {
				headers[i] += " ↑"
			} else {
				headers[i] += " ↓"
			}
		}
	}

	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		rows[i] = []string{t.Date, t.EntityName, string(t.TaskType), t.Time, t.ContactPerson, string(t.Status), t.Note, t.ID}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(tasks) && tasks[row].Status == task.StatusClosed {
				return closedStyle
			}
			return cellStyle
		})

	return fmt.Sprintf("%s\n%d task(s)", tbl.Render(), len(tasks))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
