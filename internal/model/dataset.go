package model

// Dataset is the complete contents of the store: every student, every
// lesson and the settings record.
type Dataset struct {
	Students []Student `json:"students"`
	Lessons  []Lesson  `json:"lessons"`
	Settings *Settings `json:"settings"`
}
