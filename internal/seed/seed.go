package seed

import (
	"context"
	"fmt"
	"os"

	"taskMaster/internal/logger"
	"taskMaster/internal/models/task"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Defaults - стартовый набор задач, которым заполняется пустое хранилище
type Defaults struct{}

func Default() Defaults {
	return Defaults{}
}

func (Defaults) Name() string {
	return "default"
}

func (Defaults) Load(ctx context.Context) ([]task.Draft, error) {
	return []task.Draft{
		{
			Date:          "2024-07-15",
			EntityName:    "Acme Corp",
			TaskType:      task.TypeCall,
			Time:          "10:00",
			ContactPerson: "John Doe",
			Note:          "Initial discussion about new project.",
			Status:        task.StatusOpen,
		},
		{
			Date:          "2024-07-16",
			EntityName:    "Beta Solutions",
			TaskType:      task.TypeEmail,
			Time:          "14:30",
			ContactPerson: "Jane Smith",
			Note:          "Send follow-up email with proposal.",
			Status:        task.StatusOpen,
		},
		{
			Date:          "2024-07-14",
			EntityName:    "Gamma Inc",
			TaskType:      task.TypeMeeting,
			Time:          "11:00",
			ContactPerson: "Robert Brown",
			Note:          "Client onboarding meeting completed.",
			Status:        task.StatusClosed,
		},
	}, nil
}

// File читает набор задач из YAML:
//
//	tasks:
//	  - date: "2024-07-15"
//	    entityName: Acme Corp
//	    ...
type File struct {
	Path string
}

type fileContent struct {
	Tasks []task.Draft `yaml:"tasks"`
}

func (f File) Name() string {
	return "file:" + f.Path
}

// Load проверяет каждую запись: битый файл не должен частично попасть в хранилище
func (f File) Load(ctx context.Context) ([]task.Draft, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		logger.Error("Seed: Не удалось прочитать файл", err, zap.String("path", f.Path))
		return nil, fmt.Errorf("чтение %s: %w", f.Path, err)
	}

	var content fileContent
	if err := yaml.Unmarshal(data, &content); err != nil {
		logger.Error("Seed: Не удалось разобрать YAML", err, zap.String("path", f.Path))
		return nil, fmt.Errorf("разбор %s: %w", f.Path, err)
	}

	for i, d := range content.Tasks {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("запись %d в %s: %w", i+1, f.Path, err)
		}
	}

	logger.Info("Seed: Загружен набор задач", zap.String("path", f.Path), zap.Int("count", len(content.Tasks)))
	return content.Tasks, nil
}
