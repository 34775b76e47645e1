package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

type seedFile struct {
	Quizzes []seedQuiz `yaml:"quizzes"`
}

type seedQuiz struct {
	Title     string         `yaml:"title"`
	Questions []seedQuestion `yaml:"questions"`
}

type seedQuestion struct {
	Text    string       `yaml:"text"`
	Type    string       `yaml:"qtype"`
	Order   int          `yaml:"order"`
	Choices []seedChoice `yaml:"choices"`
}

type seedChoice struct {
	Text      string `yaml:"text"`
	IsCorrect bool   `yaml:"is_correct"`
}

// NewSeedCmd imports quizzes from a YAML file into the configured store.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import quizzes from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/quizzes.yaml", "YAML file with quizzes to import")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return errNoPostgres
	}
	quizzes, err := readSeedFile(file)
	if err != nil {
		return err
	}

	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	for _, q := range quizzes {
		imported, err := svc.authoring.ImportQuiz(ctx, q)
		if err != nil {
			return err
		}
		log.Info().Int64("quiz_id", imported.ID).Str("title", imported.Title).Int("questions", len(imported.Questions)).Msg("quiz imported")
	}
	return nil
}

func readSeedFile(path string) ([]domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	quizzes := make([]domain.Quiz, 0, len(f.Quizzes))
	for _, sq := range f.Quizzes {
		quiz := domain.Quiz{Title: sq.Title}
		for _, sqn := range sq.Questions {
			question := domain.Question{Text: sqn.Text, Type: domain.QuestionType(sqn.Type), Order: sqn.Order}
			if question.Type == "" {
				question.Type = domain.QuestionMCQ
			}
			for _, sc := range sqn.Choices {
				question.Choices = append(question.Choices, domain.Choice{Text: sc.Text, IsCorrect: sc.IsCorrect})
			}
			quiz.Questions = append(quiz.Questions, question)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}
