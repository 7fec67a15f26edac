package cmdparser

import "strings"

// Command is one parsed in-world text command: a name and its
// whitespace-separated arguments, e.g. "/tp 10 64 0" -> {Name: "tp",
// Args: ["10","64","0"]}.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits chat text beginning with "/" into a Command. Not
// a command (no leading slash, or empty after trimming) returns
// ok=false so the caller treats the text as ordinary chat instead.
func ParseCommand(text string) (Command, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(trimmed, "/"))
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

// Response is one line of feedback to a command, tagged with the
// prefix spec §6 assigns the TCP console for the same three kinds —
// in-world commands reuse it so both surfaces read consistently.
type Response struct {
	Kind ResponseKind
	Text string
}

type ResponseKind uint8

const (
	ToSender ResponseKind = iota // " > "
	ToError                      // " ! "
	Broadcast                    // " @ "
)

func (r Response) Prefixed() string {
	switch r.Kind {
	case ToError:
		return " ! " + r.Text
	case Broadcast:
		return " @ " + r.Text
	default:
		return " > " + r.Text
	}
}

// Handler executes one parsed command against game state, dispatched
// by name the same way the teacher's GameHandler.HandleMessage
// switches on message type.
type Handler func(sender string, cmd Command) []Response

// Registry maps command names to handlers, with an Unknown fallback
// for anything unregistered.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(name string, h Handler) {
	r.handlers[strings.ToLower(name)] = h
}

func (r *Registry) Dispatch(sender string, cmd Command) []Response {
	h, ok := r.handlers[cmd.Name]
	if !ok {
		return []Response{{Kind: ToError, Text: "unknown command: " + cmd.Name}}
	}
	return h(sender, cmd)
}
