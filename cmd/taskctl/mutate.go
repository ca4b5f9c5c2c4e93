package main

import (
	"context"
	"fmt"

	"taskMaster/internal/models/task"
	"taskMaster/internal/repository"

	"github.com/spf13/cobra"
)

type taskFlags struct {
	date     string
	entity   string
	taskType string
	time     string
	contact  string
	note     string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "дата (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.entity, "entity", "", "организация")
	cmd.Flags().StringVar(&f.taskType, "type", "", "тип задачи (Call, Email, Meeting, ...)")
	cmd.Flags().StringVar(&f.time, "time", "", "время (HH:mm)")
	cmd.Flags().StringVar(&f.contact, "contact", "", "контактное лицо")
	cmd.Flags().StringVar(&f.note, "note", "", "заметка")
}

func (f *taskFlags) draft() task.Draft {
	return task.Draft{
		Date:          f.date,
		EntityName:    f.entity,
		TaskType:      task.TaskType(f.taskType),
		Time:          f.time,
		ContactPerson: f.contact,
		Note:          f.note,
		Status:        task.StatusOpen,
	}
}

// patch берёт только явно переданные флаги: --note "" очищает заметку
func (f *taskFlags) patch(cmd *cobra.Command) []task.PatchOption {
	var opts []task.PatchOption
	changed := cmd.Flags().Changed
	if changed("date") {
		opts = append(opts, task.WithDate(f.date))
	}
	if changed("entity") {
		opts = append(opts, task.WithEntityName(f.entity))
	}
	if changed("type") {
		opts = append(opts, task.WithTaskType(task.TaskType(f.taskType)))
	}
	if changed("time") {
		opts = append(opts, task.WithTime(f.time))
	}
	if changed("contact") {
		opts = append(opts, task.WithContactPerson(f.contact))
	}
	if changed("note") {
		opts = append(opts, task.WithNote(f.note))
	}
	return opts
}

func addCmd(opts *options) *cobra.Command {
	flags := &taskFlags{}

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Создать задачу (статус всегда open)",
		Example: `  taskctl add --date 2024-07-15 --entity "Acme Corp" --type Call --time 10:00 --contact "John Doe"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := flags.draft()
			if err := draft.Validate(); err != nil {
				return err
			}

			a, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.Service().CreateTask(cmd.Context(), draft)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"id": id})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Task Created: %s\n", id)
			return err
		},
	}

	flags.register(cmd)
	for _, name := range []string{"date", "entity", "type", "time", "contact"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func editCmd(opts *options) *cobra.Command {
	flags := &taskFlags{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Изменить поля задачи",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patchOpts := flags.patch(cmd)
			if len(patchOpts) == 0 {
				return fmt.Errorf("нечего менять: укажите хотя бы один флаг")
			}
			if err := task.NewPatch(patchOpts...).Validate(); err != nil {
				return err
			}

			a, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Service().UpdateTask(cmd.Context(), args[0], patchOpts...); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Task Updated: %s\n", args[0])
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "status <id> <open|closed|toggle>",
		Short:     "Сменить статус задачи",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"open", "closed", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, target := args[0], args[1]
			if target != "toggle" && !task.Status(target).Valid() {
				return &task.ValidationError{Field: "status", Reason: "ожидается open, closed или toggle"}
			}

			a, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			status := task.Status(target)
			if target == "toggle" {
				current, err := findTask(cmd, a.Service().Tasks, id)
				if err != nil {
					return err
				}
				status = current.Status.Toggle()
			}

			if err := a.Service().SetStatus(cmd.Context(), id, status); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Task marked as %s.\n", status)
			return err
		},
	}
}

func deleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Удалить задачу",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Service().DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Task Deleted: %s\n", args[0])
			return err
		},
	}
}

func migrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Перенести стартовые задачи в пустое хранилище",
		Long: `Запускает координатор миграции вручную.

Перенос выполняется один раз: после успеха в локальном хранилище
сохраняется флаг, и повторные запуски ничего не пишут.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Service().Migrate(cmd.Context())
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if res.Skipped {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Migration skipped (state: %s)\n", res.State)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d tasks have been moved to the store.\n", res.Inserted)
			return err
		},
	}
}

func findTask(cmd *cobra.Command, list func(context.Context) ([]task.Task, error), id string) (task.Task, error) {
	tasks, err := list(cmd.Context())
	if err != nil {
		return task.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, fmt.Errorf("задача %s: %w", id, repository.ErrNotFound)
}
