package plural

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize_ReferenceTable(t *testing.T) {
	cases := map[int]string{
		0:   "занятий",
		1:   "занятие",
		2:   "занятия",
		3:   "занятия",
		4:   "занятия",
		5:   "занятий",
		10:  "занятий",
		11:  "занятий",
		12:  "занятий",
		14:  "занятий",
		15:  "занятий",
		21:  "занятие",
		22:  "занятия",
		25:  "занятий",
		100: "занятий",
		101: "занятие",
		111: "занятий",
		112: "занятий",
	}

	for n, want := range cases {
		assert.Equal(t, want, Pluralize(n, Lessons), "n=%d", n)
		assert.Equal(t, want, Pluralize(-n, Lessons), "n=%d", -n)
	}
}

func TestPluralize_OtherForms(t *testing.T) {
	assert.Equal(t, "час", Pluralize(1, Hours))
	assert.Equal(t, "часа", Pluralize(23, Hours))
	assert.Equal(t, "учеников", Pluralize(13, Students))
	assert.Equal(t, "раз", Pluralize(7, Times))
	assert.Equal(t, "раза", Pluralize(2, Times))
}

func TestWithNumber(t *testing.T) {
	assert.Equal(t, "5 занятий", WithNumber(5, Lessons))
	assert.Equal(t, "21 ученик", WithNumber(21, Students))
	assert.Equal(t, "0 часов", WithNumber(0, Hours))
}

func TestFormatMoney(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^1[\s\x{00a0}\x{202f}]500 ₽$`), FormatMoney(1500))
	assert.Equal(t, "0 ₽", FormatMoney(0))
	assert.Equal(t, "999 ₽", FormatMoney(999))
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "1,5 ч", FormatHours(1.5))
	assert.Equal(t, "2 ч", FormatHours(2))
	assert.Equal(t, "0,8 ч", FormatHours(0.75))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45 мин", FormatDuration(45))
	assert.Equal(t, "1 ч", FormatDuration(60))
	assert.Equal(t, "1 ч 30 мин", FormatDuration(90))
}
