package domain

// QuizSummary is the list view of a quiz.
type QuizSummary struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
}

// AuthoringQuiz exposes the full quiz including which choices are correct.
type AuthoringQuiz struct {
	ID        int64               `json:"id"`
	Title     string              `json:"title"`
	Questions []AuthoringQuestion `json:"questions"`
}

type AuthoringQuestion struct {
	ID      int64             `json:"id"`
	Text    string            `json:"text"`
	Type    QuestionType      `json:"qtype"`
	Order   int               `json:"order"`
	Choices []AuthoringChoice `json:"choices"`
}

type AuthoringChoice struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// PublicQuiz is served to quiz takers. Its choice type has no correctness field,
// so the flag cannot be serialized by accident.
type PublicQuiz struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	QuestionCount int              `json:"question_count"`
	Questions     []PublicQuestion `json:"questions"`
}

type PublicQuestion struct {
	ID      int64          `json:"id"`
	Text    string         `json:"text"`
	Type    QuestionType   `json:"qtype"`
	Order   int            `json:"order"`
	Choices []PublicChoice `json:"choices"`
}

type PublicChoice struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// AuthoringView projects a quiz for administrators.
func AuthoringView(q Quiz) AuthoringQuiz {
	out := AuthoringQuiz{ID: q.ID, Title: q.Title, Questions: make([]AuthoringQuestion, 0, len(q.Questions))}
	for _, question := range q.Questions {
		out.Questions = append(out.Questions, AuthoringQuestionView(question))
	}
	return out
}

func AuthoringQuestionView(q Question) AuthoringQuestion {
	choices := make([]AuthoringChoice, 0, len(q.Choices))
	for _, c := range q.Choices {
		choices = append(choices, AuthoringChoiceView(c))
	}
	return AuthoringQuestion{ID: q.ID, Text: q.Text, Type: q.Type, Order: q.Order, Choices: choices}
}

func AuthoringChoiceView(c Choice) AuthoringChoice {
	return AuthoringChoice{ID: c.ID, Text: c.Text, IsCorrect: c.IsCorrect}
}

// PublicView projects a quiz for quiz takers.
func PublicView(q Quiz) PublicQuiz {
	out := PublicQuiz{
		ID:            q.ID,
		Title:         q.Title,
		QuestionCount: len(q.Questions),
		Questions:     make([]PublicQuestion, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		choices := make([]PublicChoice, 0, len(question.Choices))
		for _, c := range question.Choices {
			choices = append(choices, PublicChoice{ID: c.ID, Text: c.Text})
		}
		out.Questions = append(out.Questions, PublicQuestion{
			ID:      question.ID,
			Text:    question.Text,
			Type:    question.Type,
			Order:   question.Order,
			Choices: choices,
		})
	}
	return out
}
