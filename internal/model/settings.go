package model

import (
	"slices"
	"strings"
)

// SettingsID is the fixed identity of the settings singleton.
const SettingsID = 1

// DefaultEventColor is used when neither the student nor the subject has a colour.
const DefaultEventColor = "#6366f1"

// Subject is something the tutor teaches.
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// WorkingHours is the daily window shown on the calendar.
type WorkingHours struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Settings is the single user-editable configuration record.
type Settings struct {
	ID                    int          `json:"id"`
	DefaultLessonDuration int          `json:"defaultLessonDuration"`
	DefaultPrice          int64        `json:"defaultPrice"`
	WorkingHours          WorkingHours `json:"workingHours"`
	Subjects              []Subject    `json:"subjects"`

	// Topics is the per-subject autocomplete dictionary.
	Topics map[string][]string `json:"topics"`

	Theme      string      `json:"theme"`
	UserName   string      `json:"userName,omitempty"`
	TaxRegime  TaxRegime   `json:"taxSystem"`
	TaxRecords []TaxRecord `json:"taxRecords"`
}

// DefaultSettings returns the settings inserted on first run.
func DefaultSettings() Settings {
	return Settings{
		ID:                    SettingsID,
		DefaultLessonDuration: 60,
		DefaultPrice:          1500,
		WorkingHours: WorkingHours{
			Start: TimeOfDay{Hour: 9},
			End:   TimeOfDay{Hour: 21},
		},
		Subjects: []Subject{
			{ID: "russian", Name: "Русский язык", Color: "#ef4444"},
			{ID: "literature", Name: "Литература", Color: "#8b5cf6"},
			{ID: "english", Name: "Английский язык", Color: "#3b82f6"},
			{ID: "spanish", Name: "Испанский язык", Color: "#f59e0b"},
		},
		Topics: map[string][]string{
			"russian":    {"Грамматика", "Орфография", "Пунктуация", "Сочинение", "ЕГЭ подготовка", "ОГЭ подготовка"},
			"literature": {"Русская классика", "Зарубежная литература", "Анализ текста", "Сочинение"},
			"english":    {"Грамматика", "Разговорный", "Бизнес-английский", "IELTS", "TOEFL", "Школьная программа"},
			"spanish":    {"Грамматика", "Разговорный", "DELE подготовка", "Бизнес"},
		},
		Theme:      "light",
		TaxRegime:  RegimePatent,
		TaxRecords: []TaxRecord{},
	}
}

// SubjectByID returns the subject with the given id. Unknown ids resolve
// to a placeholder named after the id itself.
func (s *Settings) SubjectByID(id string) (Subject, bool) {
	for _, sub := range s.Subjects {
		if sub.ID == id {
			return sub, true
		}
	}
	return Subject{ID: id, Name: id, Color: DefaultEventColor}, false
}

// TaxRecordFor returns the record for year or a zero-valued record.
func (s *Settings) TaxRecordFor(year int) TaxRecord {
	for _, r := range s.TaxRecords {
		if r.Year == year {
			return r
		}
	}
	return TaxRecord{Year: year}
}

// SettingsPatch is a partial update. Nil fields are left unchanged.
type SettingsPatch struct {
	DefaultLessonDuration *int
	DefaultPrice          *int64
	WorkingHours          *WorkingHours
	Subjects              *[]Subject
	Topics                *map[string][]string
	Theme                 *string
	UserName              *string
	TaxRegime             *TaxRegime
	TaxRecords            *[]TaxRecord
}

// Validate checks the fields the patch sets.
func (p SettingsPatch) Validate() error {
	if p.DefaultLessonDuration != nil && *p.DefaultLessonDuration <= 0 {
		return NewValidationError("defaultLessonDuration", "duration must be positive")
	}
	if p.DefaultPrice != nil && *p.DefaultPrice < 0 {
		return NewValidationError("defaultPrice", "price must not be negative")
	}
	if p.Subjects != nil {
		seen := make(map[string]bool, len(*p.Subjects))
		for _, sub := range *p.Subjects {
			if strings.TrimSpace(sub.ID) == "" {
				return NewValidationError("subjects", "subject id must not be empty")
			}
			if seen[sub.ID] {
				return NewValidationError("subjects", "duplicate subject id "+sub.ID)
			}
			seen[sub.ID] = true
		}
	}
	if p.TaxRecords != nil {
		seen := make(map[int]bool, len(*p.TaxRecords))
		for _, r := range *p.TaxRecords {
			if seen[r.Year] {
				return NewValidationError("taxRecords", "duplicate tax record year")
			}
			seen[r.Year] = true
		}
	}
	return nil
}

// Apply copies the fields the patch sets onto s.
func (s *Settings) Apply(p SettingsPatch) {
	if p.DefaultLessonDuration != nil {
		s.DefaultLessonDuration = *p.DefaultLessonDuration
	}
	if p.DefaultPrice != nil {
		s.DefaultPrice = *p.DefaultPrice
	}
	if p.WorkingHours != nil {
		s.WorkingHours = *p.WorkingHours
	}
	if p.Subjects != nil {
		s.Subjects = slices.Clone(*p.Subjects)
	}
	if p.Topics != nil {
		s.Topics = *p.Topics
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.UserName != nil {
		s.UserName = *p.UserName
	}
	if p.TaxRegime != nil {
		s.TaxRegime = *p.TaxRegime
	}
	if p.TaxRecords != nil {
		s.TaxRecords = slices.Clone(*p.TaxRecords)
	}
}

// AddSubject returns a patch appending sub. Subject ids stay unique.
func (s *Settings) AddSubject(sub Subject) (SettingsPatch, error) {
	sub.ID = strings.TrimSpace(sub.ID)
	if sub.ID == "" || strings.TrimSpace(sub.Name) == "" {
		return SettingsPatch{}, NewValidationError("subject", "id and name are required")
	}
	if _, ok := s.SubjectByID(sub.ID); ok {
		return SettingsPatch{}, NewValidationError("subject", "subject "+sub.ID+" already exists")
	}
	subjects := append(slices.Clone(s.Subjects), sub)
	return SettingsPatch{Subjects: &subjects}, nil
}

// RemoveSubject returns a patch dropping the subject. Students and lessons
// that reference it are left untouched.
func (s *Settings) RemoveSubject(id string) SettingsPatch {
	subjects := slices.DeleteFunc(slices.Clone(s.Subjects), func(sub Subject) bool {
		return sub.ID == id
	})
	return SettingsPatch{Subjects: &subjects}
}

// AddTopic returns a patch adding topic to the subject's dictionary. The
// second result is false when there is nothing to add.
func (s *Settings) AddTopic(subjectID, topic string) (SettingsPatch, bool) {
	topic = strings.TrimSpace(topic)
	if topic == "" || subjectID == "" {
		return SettingsPatch{}, false
	}
	if slices.Contains(s.Topics[subjectID], topic) {
		return SettingsPatch{}, false
	}
	topics := s.cloneTopics()
	topics[subjectID] = append(topics[subjectID], topic)
	return SettingsPatch{Topics: &topics}, true
}

// RemoveTopic returns a patch removing topic from the subject's dictionary.
func (s *Settings) RemoveTopic(subjectID, topic string) SettingsPatch {
	topics := s.cloneTopics()
	topics[subjectID] = slices.DeleteFunc(topics[subjectID], func(t string) bool {
		return t == topic
	})
	return SettingsPatch{Topics: &topics}
}

// SuggestTopics returns the subject's known topics containing query,
// case-insensitively, in dictionary order.
func (s *Settings) SuggestTopics(subjectID, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []string
	for _, t := range s.Topics[subjectID] {
		if strings.Contains(strings.ToLower(t), q) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Settings) cloneTopics() map[string][]string {
	topics := make(map[string][]string, len(s.Topics)+1)
	for k, v := range s.Topics {
		topics[k] = slices.Clone(v)
	}
	return topics
}
