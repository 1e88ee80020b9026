// Package policy определяет правила жизненного цикла соревнования:
// уровень соревнования по подписке организатора и состояние по расписанию.
// Все функции чистые и детерминированы при заданном текущем времени.
package policy

import (
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/sportsit/internal/models"
)

var (
	// ErrInvalidSubscription подписка организатора не соответствует ни одному уровню соревнования.
	ErrInvalidSubscription = errors.New("invalid member subscription")
	// ErrInvalidSchedule в расписании соревнования отсутствует дата или нарушен порядок дат.
	ErrInvalidSchedule = errors.New("invalid competition schedule")
)

// Policy правила жизненного цикла соревнования.
type Policy interface {
	CompetitionType(host *models.Member) (models.CompetitionType, error)
	CompetitionState(competition *models.Competition, now time.Time) (models.CompetitionState, error)
}

// V1 основная реализация Policy.
type V1 struct{}

// CompetitionType реализует Policy.
func (V1) CompetitionType(host *models.Member) (models.CompetitionType, error) {
	return ResolveCompetitionType(host)
}

// CompetitionState реализует Policy.
func (V1) CompetitionState(competition *models.Competition, now time.Time) (models.CompetitionState, error) {
	return ResolveCompetitionState(competition, now)
}

// ResolveCompetitionType сопоставляет подписку организатора уровню соревнования.
func ResolveCompetitionType(host *models.Member) (models.CompetitionType, error) {
	const op = "policy.ResolveCompetitionType"
	if host == nil {
		return "", fmt.Errorf("%s: %w: host is nil", op, ErrInvalidSubscription)
	}

	switch host.Subscription {
	case models.SubscribeFree, models.SubscribeBasicHost:
		return models.CompetitionTypeFree, nil
	case models.SubscribePremiumHost:
		return models.CompetitionTypePremium, nil
	case models.SubscribeVIPHost:
		return models.CompetitionTypeVIP, nil
	default:
		return "", fmt.Errorf("%s: %w: member %d, role %s, subscription %q",
			op, ErrInvalidSubscription, host.UID, host.Role, host.Subscription)
	}
}

// ResolveCompetitionState вычисляет состояние по полуинтервалам
// [recruitingStart, recruitingEnd) и [recruitingEnd, startDate).
// Граничный момент относится к более позднему состоянию.
func ResolveCompetitionState(competition *models.Competition, now time.Time) (models.CompetitionState, error) {
	const op = "policy.ResolveCompetitionState"
	if competition == nil {
		return "", fmt.Errorf("%s: %w: competition is nil", op, ErrInvalidSchedule)
	}
	rs, re, sd := competition.RecruitingStart, competition.RecruitingEnd, competition.StartDate
	if rs == nil || re == nil || sd == nil {
		return "", fmt.Errorf("%s: %w: competition %d has missing dates", op, ErrInvalidSchedule, competition.ID)
	}

	switch {
	case now.Before(*rs):
		return models.CompetitionStatePlanning, nil
	case now.Before(*re):
		return models.CompetitionStateRecruiting, nil
	case now.Before(*sd):
		return models.CompetitionStateRecruitingEnd, nil
	default:
		return models.CompetitionStateInProgress, nil
	}
}

// ValidateSchedule проверяет, что все даты заданы и recruitingStart <= recruitingEnd <= startDate.
func ValidateSchedule(recruitingStart, recruitingEnd, startDate *time.Time) error {
	const op = "policy.ValidateSchedule"
	if recruitingStart == nil || recruitingEnd == nil || startDate == nil {
		return fmt.Errorf("%s: %w: missing dates", op, ErrInvalidSchedule)
	}
	if recruitingEnd.Before(*recruitingStart) {
		return fmt.Errorf("%s: %w: recruiting end is before recruiting start", op, ErrInvalidSchedule)
	}
	if startDate.Before(*recruitingEnd) {
		return fmt.Errorf("%s: %w: start date is before recruiting end", op, ErrInvalidSchedule)
	}
	return nil
}
