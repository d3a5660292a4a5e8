// Package report renders period statistics and the year's financials as
// an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/stats"
)

// Sheet names, in workbook order.
const (
	SheetSummary  = "Сводка"
	SheetSubjects = "Предметы"
	SheetStudents = "Ученики"
	SheetTopics   = "Темы"
	SheetTaxes    = "Налоги"
)

// Input is everything a workbook is built from.
type Input struct {
	Preset   stats.Preset
	Stats    *stats.PeriodStats
	Year     stats.YearSummary
	Settings *model.Settings

	TopTopics   int
	TopStudents int

	GeneratedAt time.Time
}

// Writer builds statistics workbooks.
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a Writer.
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// FileName returns the default workbook name for preset at now.
func FileName(preset stats.Preset, now time.Time) string {
	return fmt.Sprintf("tutor-scheduler-%s-%s.xlsx", preset, now.Format("2006-01-02"))
}

type styles struct {
	header int
	money  int
	hours  int
}

// Write renders in as a workbook to w.
func (wr *Writer) Write(w io.Writer, in Input) error {
	if in.Stats == nil || in.Settings == nil {
		return model.NewValidationError("report", "statistics and settings are required")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("creating sheet %s: %w", SheetSummary, err)
	}
	for _, name := range []string{SheetSubjects, SheetStudents, SheetTopics, SheetTaxes} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   "Статистика: " + in.Preset.Label(),
		Creator: "tutor-scheduler",
		Created: in.GeneratedAt.UTC().Format(time.RFC3339),
	})

	steps := []func(*excelize.File, styles, Input) error{
		writeSummary,
		writeSubjects,
		writeStudents,
		writeTopics,
		writeTaxes,
	}
	for _, step := range steps {
		if err := step(f, st, in); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	wr.logger.Info("report written",
		zap.String("period", string(in.Preset)),
		zap.Int("lessons", in.Stats.TotalLessons),
	)
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return st, fmt.Errorf("creating header style: %w", err)
	}

	moneyFmt := `#,##0 "₽"`
	st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return st, fmt.Errorf("creating money style: %w", err)
	}

	hoursFmt := "0.0"
	st.hours, err = f.NewStyle(&excelize.Style{CustomNumFmt: &hoursFmt})
	if err != nil {
		return st, fmt.Errorf("creating hours style: %w", err)
	}
	return st, nil
}

// table writes a header row followed by rows, styling the columns listed
// in money and hours.
type table struct {
	sheet  string
	header []any
	rows   [][]any
	widths []float64
	money  []int
	hours  []int
}

func (t table) write(f *excelize.File, st styles) error {
	if err := f.SetSheetRow(t.sheet, "A1", &t.header); err != nil {
		return fmt.Errorf("writing %s header: %w", t.sheet, err)
	}
	last := cell(len(t.header)-1, 1)
	if err := f.SetCellStyle(t.sheet, "A1", last, st.header); err != nil {
		return fmt.Errorf("styling %s header: %w", t.sheet, err)
	}

	for i, row := range t.rows {
		if err := f.SetSheetRow(t.sheet, cell(0, i+2), &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", t.sheet, i+2, err)
		}
	}

	if len(t.rows) > 0 {
		lastRow := len(t.rows) + 1
		for _, col := range t.money {
			_ = f.SetCellStyle(t.sheet, cell(col, 2), cell(col, lastRow), st.money)
		}
		for _, col := range t.hours {
			_ = f.SetCellStyle(t.sheet, cell(col, 2), cell(col, lastRow), st.hours)
		}
	}

	for i, width := range t.widths {
		name := colName(i)
		_ = f.SetColWidth(t.sheet, name, name, width)
	}
	_ = f.SetPanes(t.sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return nil
}

func writeSummary(f *excelize.File, st styles, in Input) error {
	ps := in.Stats
	t := table{
		sheet:  SheetSummary,
		header: []any{"Показатель", "Значение"},
		rows: [][]any{
			{"Период", in.Preset.Label()},
			{"С", ps.Start.String()},
			{"По", ps.End.String()},
			{"Проведено занятий", ps.TotalLessons},
			{"Часов", ps.TotalHours},
			{"Заработано", ps.TotalEarnings},
			{"Оплачено", ps.PaidAmount},
			{"Не оплачено", ps.UnpaidAmount},
		},
		widths: []float64{24, 18},
	}
	if err := t.write(f, st); err != nil {
		return err
	}
	_ = f.SetCellStyle(SheetSummary, "B6", "B6", st.hours)
	return f.SetCellStyle(SheetSummary, "B7", "B9", st.money)
}

func writeSubjects(f *excelize.File, st styles, in Input) error {
	t := table{
		sheet:  SheetSubjects,
		header: []any{"Предмет", "Занятий", "Часов", "Заработано"},
		widths: []float64{24, 10, 10, 16},
		hours:  []int{2},
		money:  []int{3},
	}
	for _, s := range in.Stats.SubjectsByEarnings() {
		sub, _ := in.Settings.SubjectByID(s.SubjectID)
		t.rows = append(t.rows, []any{sub.Name, s.Count, s.Hours, s.Earnings})
	}
	return t.write(f, st)
}

func writeStudents(f *excelize.File, st styles, in Input) error {
	t := table{
		sheet:  SheetStudents,
		header: []any{"Ученик", "Занятий", "Часов", "Заработано"},
		widths: []float64{28, 10, 10, 16},
		hours:  []int{2},
		money:  []int{3},
	}
	for _, s := range in.Stats.TopStudents(in.TopStudents) {
		t.rows = append(t.rows, []any{s.Name, s.Count, s.Hours, s.Earnings})
	}
	return t.write(f, st)
}

func writeTopics(f *excelize.File, st styles, in Input) error {
	t := table{
		sheet:  SheetTopics,
		header: []any{"Тема", "Предмет", "Занятий"},
		widths: []float64{28, 24, 10},
	}
	for _, topic := range in.Stats.TopTopics(in.TopTopics) {
		sub, _ := in.Settings.SubjectByID(topic.SubjectID)
		t.rows = append(t.rows, []any{topic.Topic, sub.Name, topic.Count})
	}
	return t.write(f, st)
}

func writeTaxes(f *excelize.File, st styles, in Input) error {
	y := in.Year
	t := table{
		sheet:  SheetTaxes,
		header: []any{"Показатель", "Значение"},
		rows: [][]any{
			{"Год", y.Year},
			{"Режим", in.Settings.TaxRegime.Label()},
			{"Описание", y.Burden.Description},
			{"Проведено занятий", y.LessonsCount},
			{"Заработано", y.TotalEarnings},
			{"Оплачено", y.PaidAmount},
			{"Не оплачено", y.UnpaidAmount},
			{"Налог", y.Burden.TaxAmount},
			{"Страховые взносы", y.Burden.Insurance},
			{"Итого налоговая нагрузка", y.Burden.Total},
			{"Чистый доход", y.NetIncome},
		},
		widths: []float64{28, 24},
	}
	if err := t.write(f, st); err != nil {
		return err
	}
	return f.SetCellStyle(SheetTaxes, "B6", "B12", st.money)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
