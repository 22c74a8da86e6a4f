package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"

	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
	"habit-tracker/internal/tracking"
)

const (
	cbTogglePrefix  = "toggle:"
	cbPinPrefix     = "pin:"
	cbEditPrefix    = "edit:"
	cbDeletePrefix  = "delete:"
	cbConfirmPrefix = "confirm:"
	cbCancelPrefix  = "cancel:"
	cbDayPrefix     = "day:"
	cbFiltersPrefix = "filters"
	cbFilterPrefix  = "filter:"
	cbWeekdayPrefix = "wd:"
)

var weekdayNames = map[string]model.Weekday{
	"пн": model.Monday, "пон": model.Monday, "понедельник": model.Monday, "mon": model.Monday,
	"вт": model.Tuesday, "вто": model.Tuesday, "вторник": model.Tuesday, "tue": model.Tuesday,
	"ср": model.Wednesday, "сре": model.Wednesday, "среда": model.Wednesday, "wed": model.Wednesday,
	"чт": model.Thursday, "чет": model.Thursday, "четверг": model.Thursday, "thu": model.Thursday,
	"пт": model.Friday, "пят": model.Friday, "пятница": model.Friday, "fri": model.Friday,
	"сб": model.Saturday, "суб": model.Saturday, "суббота": model.Saturday, "sat": model.Saturday,
	"вс": model.Sunday, "вос": model.Sunday, "воскресенье": model.Sunday, "sun": model.Sunday,
}

// parseWeekdays reads "пн, ср, пт" or "каждый день".
func parseWeekdays(text string) (model.WeekdaySet, error) {
	value := strings.ToLower(strings.TrimSpace(text))
	if value == "каждый день" || value == "ежедневно" || value == "все" {
		return model.EveryDay(), nil
	}
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	var set model.WeekdaySet
	for _, f := range fields {
		d, ok := weekdayNames[f]
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", f)
		}
		set = set.With(d)
	}
	if set.IsEmpty() {
		return 0, errors.New("no weekdays")
	}
	return set, nil
}

// parseDate accepts YYYY-MM-DD, DD.MM.YYYY, "сегодня" and "завтра".
func parseDate(cal tracking.Calendar, text string, now time.Time) (time.Time, error) {
	value := strings.ToLower(strings.TrimSpace(text))
	switch value {
	case "сегодня", "today":
		return cal.StartOfDay(now), nil
	case "завтра", "tomorrow":
		return cal.AddDays(now, 1), nil
	case "вчера", "yesterday":
		return cal.AddDays(now, -1), nil
	}
	if d, err := cal.ParseDay(value); err == nil {
		return d, nil
	}
	d, err := time.ParseInLocation("02.01.2006", value, cal.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", text, err)
	}
	return d, nil
}

func toggleData(id, day string) string {
	return cbTogglePrefix + id + ":" + day
}

// parseToggleData splits "toggle:<uuid>:<yyyy-mm-dd>".
func parseToggleData(cal tracking.Calendar, data string) (uuid.UUID, time.Time, error) {
	raw := strings.TrimPrefix(data, cbTogglePrefix)
	idx := strings.LastIndex(raw, ":")
	if idx < 0 {
		return uuid.Nil, time.Time{}, fmt.Errorf("malformed toggle data %q", data)
	}
	id, err := uuid.Parse(raw[:idx])
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("parse tracker id: %w", err)
	}
	day, err := cal.ParseDay(raw[idx+1:])
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("parse day: %w", err)
	}
	return id, day, nil
}

func parseID(data, prefix string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimPrefix(data, prefix))
}

func renderBoard(res tracking.Result) string {
	var b strings.Builder
	b.WriteString(boardHeader(res.Date, res.Filter, res.Search))
	for _, group := range res.Categories {
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", escape(group.Title)))
		for _, t := range group.Trackers {
			mark := "⬜"
			if res.Completed[t.ID] {
				mark = "✅"
			}
			line := fmt.Sprintf("%s %s %s · %s", mark, t.Emoji, escape(t.Title), service.FormatDays(res.Counts[t.ID]))
			if t.Kind() == model.KindEvent {
				line += " · событие"
			}
			b.WriteString(line + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func boardHeader(date time.Time, filter model.FilterType, search string) string {
	var b strings.Builder
	wd := model.WeekdayOf(date.Weekday())
	b.WriteString(fmt.Sprintf("📅 <b>%s, %s</b> · %s\n", wd.Short(), date.Format("02.01.2006"), filter.Title()))
	if s := strings.TrimSpace(search); s != "" {
		b.WriteString(fmt.Sprintf("🔎 «%s»\n", escape(s)))
	}
	return b.String()
}

func emptyStateText(state tracking.EmptyState) string {
	if state == tracking.EmptyNoData {
		return "Что будем отслеживать?\nДобавь привычку через /newhabit или событие через /newevent."
	}
	return "Ничего не найдено.\nПопробуй другой день, фильтр или поиск."
}

func shortTitle(title string, maxLen int) string {
	clean := strings.Join(strings.Fields(title), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
