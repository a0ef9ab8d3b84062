package service

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/schedule"
)

// CancellationMode правило бесплатной отмены подтверждённой тренировки
type CancellationMode string

const (
	// CancelBeforeDay отмена возможна до наступления календарного дня тренировки
	CancelBeforeDay CancellationMode = "calendar"
	// CancelWithNotice отмена возможна, если до начала осталось не меньше Notice
	CancelWithNotice CancellationMode = "notice"
)

type CancellationPolicy struct {
	Mode   CancellationMode
	Notice time.Duration
}

// DefaultCancellationPolicy отмена не позднее, чем накануне
func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{Mode: CancelBeforeDay, Notice: 24 * time.Hour}
}

// ParseCancellationPolicy собирает политику из настроек
func ParseCancellationPolicy(mode string, notice time.Duration) (CancellationPolicy, error) {
	switch CancellationMode(mode) {
	case "", CancelBeforeDay:
		return CancellationPolicy{Mode: CancelBeforeDay, Notice: notice}, nil
	case CancelWithNotice:
		if notice <= 0 {
			return CancellationPolicy{}, fmt.Errorf("cancellation notice must be positive, got %s", notice)
		}
		return CancellationPolicy{Mode: CancelWithNotice, Notice: notice}, nil
	default:
		return CancellationPolicy{}, fmt.Errorf("unknown cancellation mode %q", mode)
	}
}

// Allows проверяет, можно ли отменить тренировку, начинающуюся в start
func (p CancellationPolicy) Allows(start, now time.Time, loc *time.Location) bool {
	switch p.Mode {
	case CancelWithNotice:
		return start.Sub(now) >= p.Notice
	default:
		return schedule.StartOfDay(start, loc).After(schedule.StartOfDay(now, loc))
	}
}
