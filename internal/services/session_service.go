package services

import (
	"context"
	"crypto/subtle"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/studycards/backend/internal/apperrors"
	"github.com/studycards/backend/internal/auth"
	"github.com/studycards/backend/internal/calendar"
	"github.com/studycards/backend/internal/mastery"
	"github.com/studycards/backend/internal/metrics"
	"github.com/studycards/backend/internal/models"
	"go.uber.org/zap"
)

type sessionService struct {
	tx       Transactor
	accounts AccountRepository
	sessions StudySessionRepository
	daily    DailyProgressRepository
	cards    CardProgressRepository
	rules    Rules
	metrics  *metrics.Metrics
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newToken func() string
}

// NewSessionService creates a new service for the study session lifecycle
func NewSessionService(
	tx Transactor,
	accounts AccountRepository,
	sessions StudySessionRepository,
	daily DailyProgressRepository,
	cards CardProgressRepository,
	rules Rules,
	m *metrics.Metrics,
	logger *zap.Logger,
) *sessionService {
	return &sessionService{
		tx:       tx,
		accounts: accounts,
		sessions: sessions,
		daily:    daily,
		cards:    cards,
		rules:    rules,
		metrics:  m,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		newToken: auth.NewGuestToken,
	}
}

// StartSession creates an in-progress session for the owner
//
// A guest owner without a token gets a freshly minted one. The token is always returned to
// guests so the client can keep correlating its sessions.
//
// If an account owner has no account yet, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
func (s *sessionService) StartSession(ctx context.Context, owner models.SessionOwner, request models.StartSessionRequest) (*models.StartSessionResult, error) {
	if err := validateStruct(s.validate, request); err != nil {
		return nil, err
	}
	if owner.UserID < 0 {
		return nil, validationUserID()
	}

	session := &models.StudySession{
		DeckID:    request.DeckID,
		Status:    models.SessionStatusInProgress,
		StartedAt: s.now().UTC(),
	}

	result := &models.StartSessionResult{}
	if owner.IsGuest() {
		token := owner.GuestToken
		if token == "" {
			token = s.newToken()
		} else if err := auth.ValidateGuestToken(token); err != nil {
			return nil, apperrors.Validation("%s", err.Error())
		}
		hash := auth.HashGuestToken(token)
		session.IsGuest = true
		session.GuestTokenHash = &hash
		result.GuestToken = token
	} else {
		userID := owner.UserID
		session.UserID = &userID
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if session.UserID != nil {
			if _, err := s.accounts.GetByID(ctx, *session.UserID); err != nil {
				return err
			}
		}
		return s.sessions.Create(ctx, session)
	})
	if err != nil {
		s.metrics.TxFailures.WithLabelValues("start_session").Inc()
		s.logger.Warn("session start failed", zap.Int("user_id", owner.UserID), zap.Error(err))
		return nil, err
	}

	result.SessionID = session.ID
	s.logger.Debug("session started",
		zap.Int64("session_id", session.ID),
		zap.Bool("guest", session.IsGuest),
		zap.Int("deck_id", session.DeckID),
	)
	return result, nil
}

// RecordSessionCompletion applies the terminal completion event of a session
//
// The session row is locked and written exactly once. For account-owned sessions the answers
// are folded into card progress, the day's progress row and the account counters in the same
// transaction. Guest sessions only get their terminal write; their effect reaches an account
// at migration.
//
// A session that already reached a terminal state is left untouched and "Applied" is false.
//
// If the session does not exist or does not belong to the owner, an error wrapping
// apperrors.ErrNotFound will be returned together with "nil" value.
func (s *sessionService) RecordSessionCompletion(ctx context.Context, owner models.SessionOwner, sessionID int64, completion models.SessionCompletion) (*models.CompletionResult, error) {
	if sessionID <= 0 {
		return nil, apperrors.Validation("session id must be positive")
	}
	if err := validateStruct(s.validate, completion); err != nil {
		return nil, err
	}

	correct := 0
	for _, answer := range completion.Answers {
		if answer.Correct {
			correct++
		}
	}
	answers := len(completion.Answers)

	result := &models.CompletionResult{SessionID: sessionID}
	ownerKind := "guest"
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		session, err := s.sessions.GetByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if !ownedBy(session, owner) {
			return apperrors.NotFound("session")
		}
		if session.UserID != nil {
			ownerKind = "account"
		}
		if session.Status != models.SessionStatusInProgress {
			result.SessionXP = session.SessionXP
			return nil
		}

		completedAt := s.now().UTC()
		session.Status = models.SessionStatusCompleted
		session.CompletedAt = &completedAt
		session.DurationSeconds = completion.DurationSeconds
		session.CorrectCount = correct
		session.IncorrectCount = answers - correct
		session.SessionXP = s.rules.SessionXP(correct, answers)

		applied, err := s.sessions.Complete(ctx, session)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}
		result.Applied = true
		result.SessionXP = session.SessionXP

		if session.UserID == nil {
			return nil
		}

		learned, err := s.foldAnswers(ctx, *session.UserID, completion.Answers)
		if err != nil {
			return err
		}
		result.CardsLearned = learned

		return s.foldIntoAccount(ctx, session, learned)
	})

	s.metrics.SessionCompletions.WithLabelValues(ownerKind, strconv.FormatBool(err == nil && result.Applied)).Inc()
	if err != nil {
		s.metrics.TxFailures.WithLabelValues("complete_session").Inc()
		s.logger.Warn("session completion failed", zap.Int64("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("session completion",
		zap.Int64("session_id", sessionID),
		zap.Bool("applied", result.Applied),
		zap.Int("session_xp", result.SessionXP),
		zap.Int("cards_learned", result.CardsLearned),
	)
	return result, nil
}

// foldAnswers applies every answer to the user's card progress in answer order and returns
// the number of distinct cards that became mastered.
func (s *sessionService) foldAnswers(ctx context.Context, userID int, answers []models.AnswerOutcome) (int, error) {
	if len(answers) == 0 {
		return 0, nil
	}

	cardIDs := make([]int, 0, len(answers))
	for _, answer := range answers {
		cardIDs = append(cardIDs, answer.CardID)
	}
	slices.Sort(cardIDs)
	cardIDs = slices.Compact(cardIDs)

	locked, err := s.cards.LockForUser(ctx, userID, cardIDs)
	if err != nil {
		return 0, err
	}

	progress := make(map[int]models.CardProgress, len(locked))
	for _, p := range locked {
		progress[p.CardID] = p
	}

	learned := make(map[int]bool)
	for _, answer := range answers {
		current, ok := progress[answer.CardID]
		if !ok {
			current = models.CardProgress{UserID: userID, CardID: answer.CardID, Status: models.CardStatusNew}
		}
		next, mastered := mastery.Apply(s.rules.Policy, current, answer.Correct)
		if mastered {
			learned[answer.CardID] = true
		}
		progress[answer.CardID] = next
	}

	updated := make([]models.CardProgress, 0, len(cardIDs))
	for _, id := range cardIDs {
		updated = append(updated, progress[id])
	}
	if err := s.cards.UpdateBatch(ctx, updated); err != nil {
		return 0, err
	}
	return len(learned), nil
}

// foldIntoAccount adds a completed session to the day's progress row and the account counters
func (s *sessionService) foldIntoAccount(ctx context.Context, session *models.StudySession, learned int) error {
	userID := *session.UserID
	answers := session.CorrectCount + session.IncorrectCount

	day := &models.DailyProgress{
		UserID:           userID,
		Date:             calendar.Of(session.StartedAt, s.rules.Location),
		CardsStudied:     answers,
		CardsLearned:     learned,
		TimeSpentMinutes: session.Minutes(),
		XPEarned:         session.SessionXP,
	}
	if err := s.daily.AddDelta(ctx, day); err != nil {
		return err
	}

	account, err := s.accounts.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return err
	}
	s.rules.applyDelta(account, models.CounterDelta{
		XP:             session.SessionXP,
		Minutes:        session.Minutes(),
		CardsLearned:   learned,
		DecksCompleted: 1,
		CorrectAnswers: session.CorrectCount,
		Answers:        answers,
	})
	return s.accounts.UpdateCounters(ctx, account)
}

// AbandonSession moves an in-progress session to abandoned without touching any counter
//
// Please reference RecordSessionCompletion method for ownership and error values.
func (s *sessionService) AbandonSession(ctx context.Context, owner models.SessionOwner, sessionID int64, request models.AbandonRequest) (*models.AbandonResult, error) {
	if sessionID <= 0 {
		return nil, apperrors.Validation("session id must be positive")
	}
	if err := validateStruct(s.validate, request); err != nil {
		return nil, err
	}

	result := &models.AbandonResult{SessionID: sessionID}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		session, err := s.sessions.GetByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if !ownedBy(session, owner) {
			return apperrors.NotFound("session")
		}
		if session.Status != models.SessionStatusInProgress {
			return nil
		}

		applied, err := s.sessions.Abandon(ctx, sessionID, request.DurationSeconds, s.now().UTC())
		if err != nil {
			return err
		}
		result.Applied = applied
		return nil
	})
	if err != nil {
		s.metrics.TxFailures.WithLabelValues("abandon_session").Inc()
		s.logger.Warn("session abandon failed", zap.Int64("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	s.logger.Debug("session abandon", zap.Int64("session_id", sessionID), zap.Bool("applied", result.Applied))
	return result, nil
}

// ownedBy reports whether owner may act on session. A migrated session stays reachable with
// the guest token it was started with.
func ownedBy(session *models.StudySession, owner models.SessionOwner) bool {
	if owner.UserID > 0 && session.UserID != nil && *session.UserID == owner.UserID {
		return true
	}
	if owner.GuestToken == "" || session.GuestTokenHash == nil {
		return false
	}
	hash := auth.HashGuestToken(owner.GuestToken)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(*session.GuestTokenHash)) == 1
}
