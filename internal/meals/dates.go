package meals

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// KST is the school's time zone.
var KST = time.FixedZone("KST", 9*60*60)

var relativeDays = []struct {
	word   string
	offset int
}{
	{"오늘", 0},
	{"내일", 1},
	{"어제", -1},
	{"모레", 2},
	{"글피", 3},
}

var weekdayNames = []struct {
	word string
	day  time.Weekday
}{
	{"월요일", time.Monday},
	{"화요일", time.Tuesday},
	{"수요일", time.Wednesday},
	{"목요일", time.Thursday},
	{"금요일", time.Friday},
	{"토요일", time.Saturday},
	{"일요일", time.Sunday},
}

// "5월 20일", "5월20일", "5/20"
var explicitDate = regexp.MustCompile(`(\d{1,2})\s*(?:월|/)\s*(\d{1,2})\s*일?`)

// ExtractDate finds the day a message asks about, relative to today.
// Relative words win over explicit dates, which win over weekday names.
// It reports false when the message names no usable date.
func ExtractDate(message string, today time.Time) (time.Time, bool) {
	today = startOfDay(today)
	msg := strings.ToLower(message)

	for _, r := range relativeDays {
		if strings.Contains(msg, r.word) {
			return today.AddDate(0, 0, r.offset), true
		}
	}

	if m := explicitDate.FindStringSubmatch(msg); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if d, ok := validDate(today.Year(), month, day, today.Location()); ok {
			return d, true
		}
	}

	for _, w := range weekdayNames {
		if strings.Contains(msg, w.word) {
			return weekStart(today).AddDate(0, 0, mondayOffset(w.day)), true
		}
	}

	return time.Time{}, false
}

// validDate rejects dates time.Date would silently normalize, such as 2/30.
func validDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// weekStart returns the Monday of t's week.
func weekStart(t time.Time) time.Time {
	return t.AddDate(0, 0, -mondayOffset(t.Weekday()))
}

// mondayOffset counts days from Monday, so Sunday is 6.
func mondayOffset(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

var koreanWeekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// koreanDate renders "5월 20일 (화요일)".
func koreanDate(t time.Time) string {
	return strconv.Itoa(int(t.Month())) + "월 " + strconv.Itoa(t.Day()) + "일 (" + koreanWeekdays[t.Weekday()] + "요일)"
}
