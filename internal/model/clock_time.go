package model

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// ClockTime локальное время суток в минутах от полуночи
type ClockTime int

// NewClockTime собирает время суток из часов и минут
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ClockOf возвращает время суток момента t в его локации
func ClockOf(t time.Time) ClockTime {
	return NewClockTime(t.Hour(), t.Minute())
}

// ParseClockTime разбирает строку формата "15:04"
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	return ClockOf(t), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

// Add сдвигает время суток на d, не переходя через полночь
func (c ClockTime) Add(d time.Duration) ClockTime {
	return c + ClockTime(d/time.Minute)
}

// On привязывает время суток к календарной дате в указанной зоне
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
