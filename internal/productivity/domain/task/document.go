package task

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
)

// Document is the stored shape of a task.
type Document map[string]any

// MalformedField records a stored value that could not be read.
// The field degrades to its zero value instead of failing the load.
type MalformedField struct {
	Field Field
	Value any
}

func (m MalformedField) Error() string {
	return fmt.Sprintf("malformed task field %s: %v", m.Field, m.Value)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FromDocument normalizes a stored document into a task. Documents store
// reminder cadences either as "intervals" or the older singular "interval",
// and the scheduled date either as "scheduledFor" or "dueDate". Timestamps
// may be RFC 3339 strings, unix milliseconds or {seconds, nanoseconds}
// objects. ok is false only when the document has no id.
func FromDocument(doc Document) (t *Task, malformed []MalformedField, ok bool) {
	id := stringValue(doc[string(FieldID)])
	if id == "" {
		return nil, nil, false
	}

	r := &docReader{doc: doc}
	s := Snapshot{
		ID:              id,
		UserID:          stringValue(doc[string(FieldUserID)]),
		Text:            strings.TrimSpace(stringValue(doc[string(FieldText)])),
		Priority:        r.priority(),
		Intervals:       r.intervals(),
		CreatedAt:       r.timeValue(FieldCreatedAt),
		UpdatedAt:       r.timeValue(FieldUpdatedAt),
		RescheduleCount: r.count(FieldRescheduleCount),
		Subtasks:        r.subtasks(),
		Completed:       r.boolValue(FieldCompleted),
		NotificationID:  stringValue(doc[string(FieldNotificationID)]),
		TimerActive:     r.boolValue(FieldTimerActive),
		Version:         r.count(FieldVersion),
	}
	if _, present := doc[string(FieldScheduledFor)]; present {
		s.ScheduledFor = r.optionalTime(FieldScheduledFor)
	} else {
		s.ScheduledFor = r.optionalTime(FieldDueDate)
	}
	s.CompletedAt = r.optionalTime(FieldCompletedAt)
	s.NextReminderAt = r.optionalTime(FieldNextReminderAt)

	return Rehydrate(s), r.malformed, true
}

// ToDocument converts a task to its stored shape.
func ToDocument(t *Task) Document {
	s := t.Snapshot()
	intervals := make([]int, len(s.Intervals))
	for i, iv := range s.Intervals {
		intervals[i] = iv.Minutes()
	}
	subtasks := make([]any, len(s.Subtasks))
	for i, st := range s.Subtasks {
		micro := make([]any, len(st.Microtasks))
		for j, m := range st.Microtasks {
			micro[j] = map[string]any{"id": m.ID, "text": m.Text}
		}
		subtasks[i] = map[string]any{"id": st.ID, "text": st.Text, "microtasks": micro}
	}

	doc := Document{
		string(FieldID):              s.ID,
		string(FieldUserID):          s.UserID,
		string(FieldText):            s.Text,
		string(FieldPriority):        s.Priority.String(),
		string(FieldIntervals):       intervals,
		string(FieldScheduledFor):    formatTime(s.ScheduledFor),
		string(FieldCreatedAt):       formatTime(&s.CreatedAt),
		string(FieldUpdatedAt):       formatTime(&s.UpdatedAt),
		string(FieldRescheduleCount): s.RescheduleCount,
		string(FieldSubtasks):        subtasks,
		string(FieldCompleted):       s.Completed,
		string(FieldCompletedAt):     formatTime(s.CompletedAt),
		string(FieldNotificationID):  s.NotificationID,
		string(FieldNextReminderAt):  formatTime(s.NextReminderAt),
		string(FieldTimerActive):     s.TimerActive,
		string(FieldVersion):         s.Version,
	}
	return doc
}

// Fields projects a document onto the given fields.
func (d Document) Fields(fields ...Field) Document {
	out := make(Document, len(fields))
	for _, f := range fields {
		out[string(f)] = d[string(f)]
	}
	return out
}

func formatTime(ts *time.Time) any {
	if ts == nil || ts.IsZero() {
		return nil
	}
	return ts.UTC().Format(time.RFC3339Nano)
}

type docReader struct {
	doc       Document
	malformed []MalformedField
}

func (r *docReader) fail(field Field, value any) {
	r.malformed = append(r.malformed, MalformedField{Field: field, Value: value})
}

func (r *docReader) priority() value_objects.Priority {
	raw, present := r.doc[string(FieldPriority)]
	if !present || raw == nil {
		return value_objects.PriorityLowest
	}
	if n, ok := numberValue(raw); ok {
		p := value_objects.Priority(int(n))
		if p.IsValid() && n == math.Trunc(n) {
			return p
		}
		r.fail(FieldPriority, raw)
		return value_objects.PriorityLowest
	}
	p, err := value_objects.ParsePriority(stringValue(raw))
	if err != nil {
		r.fail(FieldPriority, raw)
	}
	return p
}

func (r *docReader) intervals() []value_objects.ReminderInterval {
	var out []value_objects.ReminderInterval
	if raw, ok := r.doc[string(FieldIntervals)].([]any); ok {
		out = r.collectIntervals(raw)
	} else if raw, ok := r.doc[string(FieldIntervals)].([]int); ok {
		for _, n := range raw {
			if iv, err := value_objects.NewReminderInterval(n); err == nil {
				out = append(out, iv)
			} else {
				r.fail(FieldIntervals, n)
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	if raw, present := r.doc[string(FieldInterval)]; present && raw != nil {
		out = r.collectIntervals([]any{raw})
	}
	return out
}

func (r *docReader) collectIntervals(raw []any) []value_objects.ReminderInterval {
	out := make([]value_objects.ReminderInterval, 0, len(raw))
	for _, v := range raw {
		n, ok := numberValue(v)
		if !ok {
			r.fail(FieldIntervals, v)
			continue
		}
		iv, err := value_objects.NewReminderInterval(int(n))
		if err != nil || n != math.Trunc(n) {
			r.fail(FieldIntervals, v)
			continue
		}
		out = append(out, iv)
	}
	return out
}

func (r *docReader) count(field Field) int {
	raw, present := r.doc[string(field)]
	if !present || raw == nil {
		return 0
	}
	n, ok := numberValue(raw)
	if !ok || n < 0 || n > math.MaxInt32 {
		r.fail(field, raw)
		return 0
	}
	return int(n)
}

func (r *docReader) boolValue(field Field) bool {
	switch v := r.doc[string(field)].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			r.fail(field, v)
		}
		return b
	case nil:
		return false
	default:
		r.fail(field, v)
		return false
	}
}

func (r *docReader) timeValue(field Field) time.Time {
	if ts := r.optionalTime(field); ts != nil {
		return *ts
	}
	return time.Time{}
}

func (r *docReader) optionalTime(field Field) *time.Time {
	raw, present := r.doc[string(field)]
	if !present || raw == nil || raw == "" {
		return nil
	}
	ts, ok := parseTime(raw)
	if !ok {
		r.fail(field, raw)
		return nil
	}
	return &ts
}

func (r *docReader) subtasks() []Subtask {
	raw, ok := r.doc[string(FieldSubtasks)].([]any)
	if !ok {
		return nil
	}
	out := make([]Subtask, 0, len(raw))
	for i, v := range raw {
		switch st := v.(type) {
		case string:
			out = append(out, Subtask{ID: strconv.Itoa(i), Text: st})
		case map[string]any:
			sub := Subtask{ID: stringValue(st["id"]), Text: stringValue(st["text"])}
			if sub.ID == "" {
				sub.ID = strconv.Itoa(i)
			}
			if micro, ok := st["microtasks"].([]any); ok {
				for j, m := range micro {
					mm, ok := m.(map[string]any)
					if !ok {
						continue
					}
					mt := Microtask{ID: stringValue(mm["id"]), Text: stringValue(mm["text"])}
					if mt.ID == "" {
						mt.ID = strconv.Itoa(j)
					}
					sub.Microtasks = append(sub.Microtasks, mt)
				}
			}
			out = append(out, sub)
		default:
			r.fail(FieldSubtasks, v)
		}
	}
	return out
}

func parseTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return ts, true
			}
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return fromMillis(n)
		}
		return time.Time{}, false
	case map[string]any:
		secs, ok := numberValue(firstPresent(v, "seconds", "_seconds"))
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := numberValue(firstPresent(v, "nanoseconds", "_nanoseconds"))
		if !finite(secs) || !finite(nanos) {
			return time.Time{}, false
		}
		return time.Unix(int64(secs), int64(nanos)).UTC(), true
	default:
		if n, ok := numberValue(raw); ok {
			return fromMillis(n)
		}
		return time.Time{}, false
	}
}

func fromMillis(n float64) (time.Time, bool) {
	if !finite(n) || n <= 0 || n > 1e15 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(n)).UTC(), true
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func numberValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), finite(float64(v))
	case float64:
		return v, finite(v)
	case json.Number:
		f, err := v.Float64()
		return f, err == nil && finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && finite(f)
	default:
		return 0, false
	}
}

func stringValue(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
