package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/vinkenoogm/ks-bear/internal/database"
)

// store handles all database operations for the bear tracker.
type store struct {
	db *database.DB
}

// Category is the bear trap an event was held at. The set is closed.
type Category string

const (
	Trap1 Category = "Trap 1"
	Trap2 Category = "Trap 2"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{Trap1, Trap2}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == Trap1 || c == Trap2
}

// ParseCategory accepts the exact label ("Trap 1") or a short alias ("1", "trap1", "trap 2").
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch key {
	case "trap1", "1":
		return Trap1, nil
	case "trap2", "2":
		return Trap2, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
}

const dateLayout = "2006-01-02"

// Date is a calendar day with no time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Player is a registered roster member.
type Player struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Event is one bear encounter for one trap on one day.
type Event struct {
	ID       int64    `json:"id"`
	Date     Date     `json:"date"`
	Category Category `json:"category"`
}

// SheetRow is one line of an event's damage sheet.
type SheetRow struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Damage   int64  `json:"damage"`
}

// DamageRow is a damage value submitted for one player.
type DamageRow struct {
	PlayerID int64 `json:"player_id"`
	Damage   int64 `json:"damage"`
}

// PlayerStat is a player's leaderboard line.
type PlayerStat struct {
	Rank                 int     `json:"rank"`
	PlayerID             int64   `json:"player_id"`
	Name                 string  `json:"name"`
	TotalDamage          int64   `json:"total_damage"`
	EventsAttended       int     `json:"events_attended"`
	AttendanceRate       float64 `json:"attendance_rate"`
	AvgDamageWhenPresent int64   `json:"avg_damage_when_present"`
}

// Leaderboard is a ranked leaderboard together with the window it covers.
type Leaderboard struct {
	Category    Category     `json:"category"`
	WindowStart *Date        `json:"window_start,omitempty"`
	TotalEvents int          `json:"total_events"`
	Entries     []PlayerStat `json:"entries"`
}
