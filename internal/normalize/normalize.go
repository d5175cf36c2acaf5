package normalize

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/TobiSchelling/bizpulse/internal/source"
)

const (
	maxTitleRunes = 100
	urgentMarker  = "urgent"
)

// Weekdays lists the day-of-week bucket keys, Monday first.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// internalThreadTypes are thread kinds the customer never sees.
var internalThreadTypes = map[string]struct{}{
	"note":     {},
	"lineitem": {},
}

// PostMetric is the analysis-ready projection of a post.
type PostMetric struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	WordCount          int     `json:"word_count"`
	DaysSincePublished int     `json:"days_since_published"`
	Categories         int     `json:"categories"`
	Tags               int     `json:"tags"`
	PublishDate        string  `json:"publish_date"`
	ContentScore       float64 `json:"content_score"`
}

// TicketIsUrgent reports whether the subject or any tag mentions "urgent".
func TicketIsUrgent(t source.TicketRecord) bool {
	if strings.Contains(strings.ToLower(t.Subject), urgentMarker) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), urgentMarker) {
			return true
		}
	}
	return false
}

// TicketResponseHours returns the hours between the initial message and the
// first reply. Internal notes are not replies. ok is false when the ticket
// has fewer than two customer-facing threads.
func TicketResponseHours(t source.TicketRecord) (hours float64, ok bool) {
	threads := CustomerThreads(t.Threads)
	if len(threads) < 2 {
		return 0, false
	}
	return threads[1].CreatedAt.Sub(threads[0].CreatedAt).Hours(), true
}

// CustomerThreads returns the customer-facing threads ordered by creation time.
func CustomerThreads(threads []source.ThreadEvent) []source.ThreadEvent {
	out := make([]source.ThreadEvent, 0, len(threads))
	for _, th := range threads {
		if _, internal := internalThreadTypes[strings.ToLower(th.Type)]; internal {
			continue
		}
		out = append(out, th)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ResponseHours collects the response times of every ticket that has one.
func ResponseHours(tickets []source.TicketRecord) []float64 {
	var hours []float64
	for _, t := range tickets {
		if h, ok := TicketResponseHours(t); ok {
			hours = append(hours, h)
		}
	}
	return hours
}

// CountUrgent returns the number of urgent tickets.
func CountUrgent(tickets []source.TicketRecord) int {
	var n int
	for _, t := range tickets {
		if TicketIsUrgent(t) {
			n++
		}
	}
	return n
}

// DayOfWeekBucket counts tickets by the weekday they were created on.
// All seven weekday keys are always present.
func DayOfWeekBucket(tickets []source.TicketRecord) map[string]int {
	counts := make(map[string]int, len(Weekdays))
	for _, day := range Weekdays {
		counts[day] = 0
	}
	for _, t := range tickets {
		counts[strings.ToLower(t.CreatedAt.Weekday().String())]++
	}
	return counts
}

// PostMetrics projects a post into its analysis metrics as of now.
func PostMetrics(post source.PostRecord, now time.Time) PostMetric {
	words := WordCount(post.Content)
	publishDate := post.PublishDate
	if publishDate == "" && !post.Date.IsZero() {
		publishDate = post.Date.Format(time.RFC3339)
	}

	return PostMetric{
		ID:                 post.ID,
		Title:              TruncateTitle(post.Title),
		WordCount:          words,
		DaysSincePublished: daysBetween(post.Date, now),
		Categories:         len(post.Categories),
		Tags:               len(post.Tags),
		PublishDate:        publishDate,
		ContentScore:       float64(words)/100 + float64(len(post.Categories))*2,
	}
}

// TruncateTitle shortens titles longer than 100 characters and appends "...".
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleRunes {
		return title
	}
	return string(runes[:maxTitleRunes]) + "..."
}

// WordCount counts whitespace-separated words in the text content of body.
func WordCount(body string) int {
	return len(strings.Fields(StripHTML(body)))
}

func daysBetween(from, to time.Time) int {
	if from.IsZero() {
		return 0
	}
	return int(math.Floor(to.Sub(from).Hours() / 24))
}
