package proto

import "testing"

func TestParseHandshake(t *testing.T) {
	cases := []struct {
		in   string
		name string
		ok   bool
	}{
		{"NAME:alice", "alice", true},
		{"NAME: bob ", "bob", true},
		{"NAME:carol\n", "carol", true},
		{"NAME:", "", false},
		{"NAME:   ", "", false},
		{"HELLO:alice", "", false},
		{"name:alice", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		name, ok := ParseHandshake([]byte(c.in))
		if ok != c.ok || name != c.name {
			t.Errorf("ParseHandshake(%q) = %q, %v; want %q, %v", c.in, name, ok, c.name, c.ok)
		}
	}
}

func TestIsLeave(t *testing.T) {
	for _, in := range []string{"leave", "LEAVE", "Leave", " leave \n"} {
		if !IsLeave([]byte(in)) {
			t.Errorf("IsLeave(%q) = false, want true", in)
		}
	}
	for _, in := range []string{"leaves", "leave now", "", "hello"} {
		if IsLeave([]byte(in)) {
			t.Errorf("IsLeave(%q) = true, want false", in)
		}
	}
}

func TestModeToken(t *testing.T) {
	if got := ModeToken("MESSAGING"); got != "MODE:MESSAGING" {
		t.Errorf("ModeToken = %q", got)
	}
}

func TestFormatUsers(t *testing.T) {
	if got := FormatUsers(nil); got != "[USERS] " {
		t.Errorf("empty roster = %q", got)
	}
	parts := []Participant{{ID: 1, Name: "alice"}, {ID: 3, Name: "bob"}}
	want := "[USERS] 1|alice,3|bob"
	if got := FormatUsers(parts); got != want {
		t.Errorf("FormatUsers = %q, want %q", got, want)
	}
}
