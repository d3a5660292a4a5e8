package settingsview

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/nhle/tutor-scheduler/internal/model"
)

var (
	hexColor  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	subjectID = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// formBindings lives on the heap so huh field pointers survive model copies.
type formBindings struct {
	userName  string
	duration  string
	price     string
	workStart string
	workEnd   string
	regime    model.TaxRegime
	theme     string

	subjectID    string
	subjectName  string
	subjectColor string

	topicSubject string
	topic        string

	taxYear       string
	patentCost    string
	insuranceCost string
	taxRate       string
}

func (fb *formBindings) loadGeneral(s *model.Settings) {
	fb.userName = s.UserName
	fb.duration = strconv.Itoa(s.DefaultLessonDuration)
	fb.price = strconv.FormatInt(s.DefaultPrice, 10)
	fb.workStart = s.WorkingHours.Start.String()
	fb.workEnd = s.WorkingHours.End.String()
	fb.regime = s.TaxRegime
	if fb.regime == "" {
		fb.regime = model.RegimePatent
	}
	fb.theme = s.Theme
	if fb.theme != "dark" {
		fb.theme = "light"
	}
}

func (fb *formBindings) loadSubject(sub model.Subject) {
	fb.subjectID = sub.ID
	fb.subjectName = sub.Name
	fb.subjectColor = sub.Color
}

func (fb *formBindings) loadTax(r model.TaxRecord) {
	fb.taxYear = strconv.Itoa(r.Year)
	fb.patentCost = strconv.FormatInt(r.PatentCost, 10)
	fb.insuranceCost = strconv.FormatInt(r.InsuranceCost, 10)
	fb.taxRate = formatRate(r.TaxRate)
}

func (fb *formBindings) generalPatch() (model.SettingsPatch, error) {
	duration, err := strconv.Atoi(strings.TrimSpace(fb.duration))
	if err != nil {
		return model.SettingsPatch{}, model.NewValidationError("defaultLessonDuration", "длительность в минутах")
	}
	price, err := parseAmount(fb.price)
	if err != nil {
		return model.SettingsPatch{}, err
	}
	start, err := model.ParseTimeOfDay(fb.workStart)
	if err != nil {
		return model.SettingsPatch{}, err
	}
	end, err := model.ParseTimeOfDay(fb.workEnd)
	if err != nil {
		return model.SettingsPatch{}, err
	}
	if end.Minutes() <= start.Minutes() {
		return model.SettingsPatch{}, model.NewValidationError("workingHours", "конец рабочего дня раньше начала")
	}

	hours := model.WorkingHours{Start: start, End: end}
	name := strings.TrimSpace(fb.userName)
	regime := fb.regime
	theme := fb.theme
	return model.SettingsPatch{
		DefaultLessonDuration: &duration,
		DefaultPrice:          &price,
		WorkingHours:          &hours,
		UserName:              &name,
		TaxRegime:             &regime,
		Theme:                 &theme,
	}, nil
}

func (fb *formBindings) subject() model.Subject {
	return model.Subject{
		ID:    strings.TrimSpace(fb.subjectID),
		Name:  strings.TrimSpace(fb.subjectName),
		Color: strings.ToLower(strings.TrimSpace(fb.subjectColor)),
	}
}

func (fb *formBindings) taxRecord() (model.TaxRecord, error) {
	year, err := strconv.Atoi(strings.TrimSpace(fb.taxYear))
	if err != nil {
		return model.TaxRecord{}, model.NewValidationError("year", "год числом")
	}
	patent, err := parseAmount(fb.patentCost)
	if err != nil {
		return model.TaxRecord{}, err
	}
	insurance, err := parseAmount(fb.insuranceCost)
	if err != nil {
		return model.TaxRecord{}, err
	}
	rate, err := parseRate(fb.taxRate)
	if err != nil {
		return model.TaxRecord{}, err
	}
	return model.TaxRecord{Year: year, PatentCost: patent, InsuranceCost: insurance, TaxRate: rate}, nil
}

func (m *Model) buildForm() *huh.Form {
	fb := m.fb
	var group *huh.Group

	switch m.kind {
	case formGeneral:
		regimeOptions := make([]huh.Option[model.TaxRegime], len(regimes))
		for i, r := range regimes {
			regimeOptions[i] = huh.NewOption(r.Label(), r)
		}
		group = huh.NewGroup(
			huh.NewInput().
				Title("Ваше имя").
				Value(&fb.userName),
			huh.NewInput().
				Title("Длительность занятия, мин").
				Value(&fb.duration).
				Validate(validatePositive),
			huh.NewInput().
				Title("Стоимость занятия, ₽").
				Value(&fb.price).
				Validate(validateAmount),
			huh.NewInput().
				Title("Начало рабочего дня").
				Placeholder("09:00").
				Value(&fb.workStart).
				Validate(validateTime),
			huh.NewInput().
				Title("Конец рабочего дня").
				Placeholder("21:00").
				Value(&fb.workEnd).
				Validate(validateTime),
			huh.NewSelect[model.TaxRegime]().
				Title("Налоговый режим").
				Options(regimeOptions...).
				Value(&fb.regime),
			huh.NewSelect[string]().
				Title("Тема оформления").
				Options(
					huh.NewOption("Светлая", "light"),
					huh.NewOption("Тёмная", "dark"),
				).
				Value(&fb.theme),
		)

	case formSubject:
		idInput := huh.NewInput().
			Title("Идентификатор").
			Description("Латиница, например chemistry").
			Value(&fb.subjectID).
			Validate(validateSubjectID)
		fields := []huh.Field{
			huh.NewInput().
				Title("Название").
				Value(&fb.subjectName).
				Validate(validateRequired),
			huh.NewInput().
				Title("Цвет").
				Placeholder("#6366f1").
				Value(&fb.subjectColor).
				Validate(validateColor),
		}
		if !m.editing {
			fields = append([]huh.Field{idInput}, fields...)
		}
		group = huh.NewGroup(fields...)

	case formTopic:
		options := make([]huh.Option[string], len(m.settings.Subjects))
		for i, sub := range m.settings.Subjects {
			options[i] = huh.NewOption(sub.Name, sub.ID)
		}
		group = huh.NewGroup(
			huh.NewSelect[string]().
				Title("Предмет").
				Options(options...).
				Value(&fb.topicSubject),
			huh.NewInput().
				Title("Тема").
				Value(&fb.topic).
				Validate(validateRequired),
		)

	case formTax:
		group = huh.NewGroup(
			huh.NewInput().
				Title("Год").
				Value(&fb.taxYear).
				Validate(validateYear),
			huh.NewInput().
				Title("Стоимость патента, ₽").
				Description("Для ПСН").
				Value(&fb.patentCost).
				Validate(validateAmount),
			huh.NewInput().
				Title("Страховые взносы, ₽").
				Value(&fb.insuranceCost).
				Validate(validateAmount),
			huh.NewInput().
				Title("Ставка, %").
				Description("Для УСН и НПД").
				Value(&fb.taxRate).
				Validate(validateRate),
		)
	}

	return huh.NewForm(group).WithWidth(m.formWidth()).WithShowHelp(true)
}

func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, model.NewValidationError("amount", "неотрицательное целое число")
	}
	return n, nil
}

func parseRate(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r < 0 || r > 100 {
		return 0, model.NewValidationError("taxRate", "ставка от 0 до 100")
	}
	return r, nil
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("обязательное поле")
	}
	return nil
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("положительное целое число")
	}
	return nil
}

func validateAmount(s string) error {
	if _, err := parseAmount(s); err != nil {
		return fmt.Errorf("неотрицательное целое число")
	}
	return nil
}

func validateRate(s string) error {
	if _, err := parseRate(s); err != nil {
		return fmt.Errorf("ставка от 0 до 100")
	}
	return nil
}

func validateYear(s string) error {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y < 2000 || y > 2100 {
		return fmt.Errorf("год от 2000 до 2100")
	}
	return nil
}

func validateTime(s string) error {
	if _, err := model.ParseTimeOfDay(s); err != nil {
		return fmt.Errorf("время в формате ЧЧ:ММ")
	}
	return nil
}

func validateColor(s string) error {
	if !hexColor.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("цвет в формате #rrggbb")
	}
	return nil
}

func validateSubjectID(s string) error {
	if !subjectID.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("латинские буквы, цифры, - и _")
	}
	return nil
}
