package model

import (
	"strings"
	"time"
)

// Proficiency levels offered by the student form. An empty level means
// "not specified".
var StudentLevels = []string{
	"Начальный",
	"Средний",
	"Продвинутый",
	"Подготовка к ОГЭ",
	"Подготовка к ЕГЭ",
}

// StudentColors is the palette new students are coloured from.
var StudentColors = []string{
	"#ef4444", "#f97316", "#f59e0b", "#eab308",
	"#84cc16", "#22c55e", "#10b981", "#14b8a6",
	"#06b6d4", "#0ea5e9", "#3b82f6", "#6366f1",
	"#8b5cf6", "#a855f7", "#d946ef", "#ec4899",
}

// UnknownStudentName is shown wherever a lesson references a student that
// no longer exists.
const UnknownStudentName = "Неизвестный"

// Student is a person the tutor teaches.
type Student struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Phone    string   `json:"phone"`
	Email    string   `json:"email"`
	Subjects []string `json:"subjects"`
	Level    string   `json:"level"`

	// DefaultPrice overrides Settings.DefaultPrice for this student's lessons.
	DefaultPrice *int64 `json:"defaultPrice,omitempty"`

	Color     string    `json:"color"`
	Goals     string    `json:"goals"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields a student cannot be saved without.
func (s Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return NewValidationError("name", "student name must not be empty")
	}
	if s.DefaultPrice != nil && *s.DefaultPrice < 0 {
		return NewValidationError("defaultPrice", "price must not be negative")
	}
	return nil
}

// StudentPatch is a partial update. Nil fields are left unchanged.
type StudentPatch struct {
	Name         *string
	Phone        *string
	Email        *string
	Subjects     *[]string
	Level        *string
	DefaultPrice **int64
	Color        *string
	Goals        *string
	Notes        *string
}

// Validate checks the fields the patch sets.
func (p StudentPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("name", "student name must not be empty")
	}
	if p.DefaultPrice != nil && *p.DefaultPrice != nil && **p.DefaultPrice < 0 {
		return NewValidationError("defaultPrice", "price must not be negative")
	}
	return nil
}

// NextFreeColor returns the first palette colour no student uses yet, or
// the first palette colour when all are taken.
func NextFreeColor(students []Student) string {
	used := make(map[string]bool, len(students))
	for _, s := range students {
		used[strings.ToLower(s.Color)] = true
	}
	for _, c := range StudentColors {
		if !used[c] {
			return c
		}
	}
	return StudentColors[0]
}

// ColorTakenBy returns the student other than exceptID that already uses
// color. Colour uniqueness is advisory only.
func ColorTakenBy(students []Student, color string, exceptID int64) (Student, bool) {
	for _, s := range students {
		if s.ID != exceptID && s.Color != "" && strings.EqualFold(s.Color, color) {
			return s, true
		}
	}
	return Student{}, false
}

// StudentDirectory resolves student ids to records, falling back to a
// placeholder for ids that no longer exist.
type StudentDirectory map[int64]Student

// NewStudentDirectory indexes students by id.
func NewStudentDirectory(students []Student) StudentDirectory {
	dir := make(StudentDirectory, len(students))
	for _, s := range students {
		dir[s.ID] = s
	}
	return dir
}

// Name returns the student's name or UnknownStudentName.
func (d StudentDirectory) Name(id int64) string {
	if s, ok := d[id]; ok && s.Name != "" {
		return s.Name
	}
	return UnknownStudentName
}

// Color returns the student's colour, or "" when unknown.
func (d StudentDirectory) Color(id int64) string {
	return d[id].Color
}
