package report

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/value"
)

// Report collects the messages of one validation call.
//
// Messages below the log level are dropped but still raise the current
// level. Messages at or above the exception threshold are not recorded;
// Log returns an *AbortError for them instead. A Report is not safe for
// concurrent use.
type Report struct {
	logLevel  Level
	threshold Level
	current   Level
	fatal     bool
	messages  []Message
}

// New returns an empty report. The current level starts at Debug.
func New(logLevel, threshold Level) *Report {
	return &Report{logLevel: logLevel, threshold: threshold, current: Debug}
}

// Aborted returns a report holding only the message that ended a call.
func Aborted(logLevel, threshold Level, msg Message) *Report {
	r := New(logLevel, threshold)
	r.current = msg.Level
	r.fatal = msg.Level >= Fatal
	r.messages = []Message{msg}
	return r
}

func (r *Report) LogLevel() Level  { return r.logLevel }
func (r *Report) Threshold() Level { return r.threshold }

// CurrentLevel is the highest level seen so far, recorded or not.
func (r *Report) CurrentLevel() Level { return r.current }

// Log adds msg to the report.
func (r *Report) Log(msg Message) error {
	if msg.Level >= r.threshold {
		return &AbortError{Message: msg, Err: ErrThreshold}
	}
	if msg.Level > r.current {
		r.current = msg.Level
	}
	if msg.Level >= Fatal {
		r.fatal = true
	}
	if msg.Level >= r.logLevel {
		r.messages = append(r.messages, msg)
	}
	return nil
}

// Sub returns an empty report for evaluating a schema branch in isolation.
// It shares the log level; only fatal messages raise.
func (r *Report) Sub() *Report {
	threshold := Fatal
	if r.threshold > Fatal {
		threshold = r.threshold
	}
	return New(r.logLevel, threshold)
}

// IsSuccess reports whether no message reached the Error level.
func (r *Report) IsSuccess() bool { return r.current < Error }

// HasFatal reports whether a fatal message was logged.
func (r *Report) HasFatal() bool { return r.fatal }

// Messages returns the recorded messages in logging order.
func (r *Report) Messages() []Message { return slices.Clone(r.messages) }

// Len returns the number of recorded messages.
func (r *Report) Len() int { return len(r.messages) }

// AsValue converts the recorded messages to a JSON array value, the form
// nested reports take inside combinator messages.
func (r *Report) AsValue() value.Value {
	elems := make([]value.Value, 0, len(r.messages))
	for _, m := range r.messages {
		data, err := json.Marshal(m)
		if err != nil {
			continue
		}
		v, err := value.ParseJSON(data)
		if err != nil {
			continue
		}
		elems = append(elems, v)
	}
	return value.Array(elems...)
}

// Group holds the messages raised against one instance node.
type Group struct {
	Pointer  jsonptr.Pointer `json:"pointer"`
	Messages []Message       `json:"messages"`
}

// Grouped returns the messages grouped by instance pointer, in pointer
// order. Messages inside a group keep logging order.
func (r *Report) Grouped() []Group {
	var groups []Group
	index := make(map[jsonptr.Pointer]int)
	for _, m := range r.messages {
		i, ok := index[m.Pointer]
		if !ok {
			i = len(groups)
			index[m.Pointer] = i
			groups = append(groups, Group{Pointer: m.Pointer})
		}
		groups[i].Messages = append(groups[i].Messages, m)
	}
	slices.SortStableFunc(groups, func(a, b Group) int {
		return cmp.Compare(a.Pointer, b.Pointer)
	})
	return groups
}

// MarshalJSON writes {"valid": bool, "messages": [...]}.
func (r *Report) MarshalJSON() ([]byte, error) {
	messages := r.messages
	if messages == nil {
		messages = []Message{}
	}
	return json.Marshal(struct {
		Valid    bool      `json:"valid"`
		Level    Level     `json:"level"`
		Messages []Message `json:"messages"`
	}{r.IsSuccess(), r.current, messages})
}
