package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ulemsee/internal/models"
)

const (
	MaxQuestionLength = 2000

	rateLimitBackoff = 1 * time.Second
)

type historyRepository interface {
	Create(ctx context.Context, entry *models.HistoryEntry) (int, error)
}

// EventPublisher receives history change notifications.
type EventPublisher interface {
	Publish(ctx context.Context, event models.HistoryEvent)
}

// AnswerService asks the primary model and, for rate limits, timeouts and
// network failures, the fallback model once. Every answered question is
// appended to the history store.
type AnswerService struct {
	completer     Completer
	initErr       error
	primaryModel  string
	fallbackModel string
	history       historyRepository
	events        EventPublisher

	rateLimitBackoff time.Duration
	sleep            func(ctx context.Context, d time.Duration) error
	now              func() time.Time
}

// NewAnswerService builds the service. initErr records why no completer could
// be built (usually a missing credential); questions then fail closed with it.
func NewAnswerService(completer Completer, initErr error, primaryModel, fallbackModel string, history historyRepository, events EventPublisher) *AnswerService {
	return &AnswerService{
		completer:        completer,
		initErr:          initErr,
		primaryModel:     primaryModel,
		fallbackModel:    fallbackModel,
		history:          history,
		events:           events,
		rateLimitBackoff: rateLimitBackoff,
		sleep:            sleepContext,
		now:              time.Now,
	}
}

// Available reports whether an upstream completer is configured.
func (s *AnswerService) Available() bool {
	return s.completer != nil
}

// ValidateQuestion trims the question and enforces the 1-2000 character bounds.
func ValidateQuestion(question string) (string, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return "", &ValidationError{Fields: map[string]string{"question": "Question cannot be empty or just whitespace"}}
	}
	if utf8.RuneCountInString(q) > MaxQuestionLength {
		return "", &ValidationError{Fields: map[string]string{"question": "Question must be at most 2000 characters"}}
	}
	return q, nil
}

func (s *AnswerService) Answer(ctx context.Context, question string) (*models.QuestionResponse, error) {
	q, err := ValidateQuestion(question)
	if err != nil {
		return nil, err
	}

	if s.completer == nil {
		msg := "Ule Msee's AI service is not configured"
		if s.initErr != nil {
			msg = s.initErr.Error()
		}
		return nil, &InternalError{Message: msg}
	}

	log.Printf("New question for Ule Msee: %s", truncate(q, 100))

	start := s.now()
	candidates := []string{s.primaryModel, s.fallbackModel}

	for attempt, model := range candidates {
		log.Printf("Asking Ule Msee (attempt %d, model %s)", attempt+1, model)

		text, err := s.completer.Complete(ctx, model, q)
		if err == nil {
			elapsed := s.now().Sub(start).Seconds()
			log.Printf("✓ Ule Msee responded in %.2fs using %s", elapsed, model)

			s.record(ctx, q, text, model)
			return &models.QuestionResponse{
				Response:     text,
				ModelUsed:    model,
				ResponseTime: elapsed,
			}, nil
		}

		last := attempt == len(candidates)-1
		retry, terminal := s.classify(err, last)
		if terminal != nil {
			log.Printf("✗ Ule Msee attempt %d failed: %v", attempt+1, err)
			return nil, terminal
		}

		log.Printf("Attempt %d with %s failed (%v), trying fallback model", attempt+1, model, err)
		if retry == retryAfterBackoff {
			if err := s.sleep(ctx, s.rateLimitBackoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, &InternalError{Message: "Ule Msee is temporarily unavailable after multiple attempts"}
}

type retryMode int

const (
	retryNow retryMode = iota
	retryAfterBackoff
)

// classify decides what happens after a failed attempt. A non-nil terminal
// error ends the request; otherwise the fallback model is tried.
func (s *AnswerService) classify(err error, last bool) (retryMode, error) {
	var upstream *UpstreamError
	var timeout *UpstreamTimeoutError
	var network *NetworkError

	switch {
	case errors.As(err, &upstream):
		switch upstream.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return 0, &UpstreamAuthError{Status: upstream.Status, Message: "Ule Msee's AI service rejected the API credentials"}
		case http.StatusTooManyRequests:
			if last {
				return 0, &RateLimitError{Message: "Ule Msee is receiving too many requests. Please wait a moment and try again."}
			}
			return retryAfterBackoff, nil
		default:
			return 0, upstream
		}
	case errors.As(err, &timeout):
		if last {
			return 0, timeout
		}
		return retryNow, nil
	case errors.As(err, &network):
		if last {
			return 0, network
		}
		return retryNow, nil
	default:
		return 0, err
	}
}

func (s *AnswerService) record(ctx context.Context, question, response, model string) {
	entry := &models.HistoryEntry{
		ID:        uuid.New().String(),
		Question:  question,
		Response:  response,
		Timestamp: s.now().UTC(),
		ModelUsed: model,
	}

	// Recorded even when the caller has already gone away.
	evicted, err := s.history.Create(context.WithoutCancel(ctx), entry)
	if err != nil {
		log.Printf("failed to save history entry: %v", err)
		return
	}
	if evicted > 0 {
		log.Printf("History full, evicted %d oldest item(s)", evicted)
	}

	if s.events != nil {
		s.events.Publish(context.WithoutCancel(ctx), models.HistoryEvent{Type: models.HistoryAdded, Payload: entry})
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
