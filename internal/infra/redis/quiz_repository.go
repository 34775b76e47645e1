package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

// QuizLoader fetches a quiz aggregate from the backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// QuizRepository caches quiz aggregates in Redis and falls back to a loader on cache miss.
// Each quiz is stored as JSON under quiz:{quizID}, so instances sharing the Redis
// also share invalidations.
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		ttl := r.ttlWithJitter()
		if ttl <= 0 {
			return quiz, nil
		}
		data, err := json.Marshal(cacheEntryFrom(quiz))
		if err != nil {
			return quiz, nil
		}
		if err := r.client.Set(ctx, r.key(quizID), data, ttl).Err(); err != nil {
			log.Warn().Err(err).Int64("quiz_id", quizID).Msg("quiz cache write failed")
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate removes the cached copy; failures only delay freshness until the TTL runs out.
func (r *QuizRepository) Invalidate(ctx context.Context, quizID int64) {
	if err := r.client.Del(ctx, r.key(quizID)).Err(); err != nil {
		log.Warn().Err(err).Int64("quiz_id", quizID).Msg("quiz cache invalidation failed")
	}
	r.sf.Forget(strconv.FormatInt(quizID, 10))
}

func (r *QuizRepository) cached(ctx context.Context, quizID int64) (domain.Quiz, bool) {
	data, err := r.client.Get(ctx, r.key(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Int64("quiz_id", quizID).Msg("quiz cache read failed")
		}
		return domain.Quiz{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.Quiz{}, false
	}
	return entry.quiz(), true
}

func (r *QuizRepository) key(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10)
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// cacheEntry mirrors domain.Quiz with every field serialized, including the
// parent references the API views leave out.
type cacheEntry struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Questions []cacheQuestion `json:"questions"`
}

type cacheQuestion struct {
	ID      int64               `json:"id"`
	Text    string              `json:"text"`
	Type    domain.QuestionType `json:"type"`
	Order   int                 `json:"order"`
	Choices []cacheChoice       `json:"choices"`
}

type cacheChoice struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

func cacheEntryFrom(q domain.Quiz) cacheEntry {
	entry := cacheEntry{ID: q.ID, Title: q.Title, Questions: make([]cacheQuestion, 0, len(q.Questions))}
	for _, question := range q.Questions {
		cq := cacheQuestion{ID: question.ID, Text: question.Text, Type: question.Type, Order: question.Order}
		for _, c := range question.Choices {
			cq.Choices = append(cq.Choices, cacheChoice{ID: c.ID, Text: c.Text, IsCorrect: c.IsCorrect})
		}
		entry.Questions = append(entry.Questions, cq)
	}
	return entry
}

func (e cacheEntry) quiz() domain.Quiz {
	quiz := domain.Quiz{ID: e.ID, Title: e.Title, Questions: make([]domain.Question, 0, len(e.Questions))}
	for _, cq := range e.Questions {
		question := domain.Question{ID: cq.ID, QuizID: e.ID, Text: cq.Text, Type: cq.Type, Order: cq.Order}
		for _, c := range cq.Choices {
			question.Choices = append(question.Choices, domain.Choice{ID: c.ID, QuestionID: cq.ID, Text: c.Text, IsCorrect: c.IsCorrect})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}
