package classifier

import "fmt"

// Intent is the coarse category a message is routed to.
type Intent int

const (
	Fallback Intent = iota
	Schedule
	Question
	Greeting
)

// Priority is the order in which keyword sets are tested. Fallback is
// never tested; it is what remains when nothing matched.
var Priority = []Intent{Schedule, Question, Greeting}

func (i Intent) String() string {
	switch i {
	case Fallback:
		return "fallback"
	case Schedule:
		return "schedule"
	case Question:
		return "question"
	case Greeting:
		return "greeting"
	default:
		panic(fmt.Sprintf("classifier: unknown intent %d", int(i)))
	}
}

// ParseIntent maps a config key back to its Intent.
func ParseIntent(s string) (Intent, error) {
	switch s {
	case "fallback":
		return Fallback, nil
	case "schedule":
		return Schedule, nil
	case "question":
		return Question, nil
	case "greeting":
		return Greeting, nil
	}
	return Fallback, fmt.Errorf("unknown intent %q", s)
}
