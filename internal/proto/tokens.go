package proto

import (
	"strconv"
	"strings"
)

// Literal wire tokens. The stream carries no envelope; message boundaries are
// transport read boundaries.
const (
	// NamePrefix starts the client handshake line: NAME:<name>.
	NamePrefix = "NAME:"
	// ModePrefix starts the server acceptance token: MODE:MESSAGING or MODE:VOICE.
	ModePrefix = "MODE:"
	// Reject is sent to a peer whose handshake failed or whose admission was denied.
	Reject = "REJECT"
	// UsersPrefix starts the voice-mode participant roster line.
	UsersPrefix = "[USERS] "
	// LeaveCommand ends a session when sent by a client (case-insensitive).
	LeaveCommand = "leave"
)

// LeaveSniffMax is the payload size below which a voice chunk is probed for
// the leave command before being treated as opaque audio.
const LeaveSniffMax = 64

// Participant is one roster entry in a [USERS] line.
type Participant struct {
	ID   int
	Name string
}

// ParseHandshake extracts the display name from a NAME:<name> handshake
// payload. It reports false for anything that is not a well-formed handshake,
// including an empty name.
func ParseHandshake(raw []byte) (string, bool) {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, NamePrefix) {
		return "", false
	}
	name := strings.TrimSpace(s[len(NamePrefix):])
	if name == "" {
		return "", false
	}
	return name, true
}

// ModeToken builds the acceptance token for a mode string.
func ModeToken(mode string) string { return ModePrefix + mode }

// IsLeave reports whether a payload is the leave command, ignoring case and
// surrounding whitespace.
func IsLeave(payload []byte) bool {
	return strings.EqualFold(strings.TrimSpace(string(payload)), LeaveCommand)
}

// FormatUsers renders the voice-mode roster line: [USERS] <id>|<name>,<id>|<name>,...
func FormatUsers(parts []Participant) string {
	var b strings.Builder
	b.WriteString(UsersPrefix)
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(p.ID))
		b.WriteByte('|')
		b.WriteString(p.Name)
	}
	return b.String()
}
