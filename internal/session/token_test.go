package session

import (
	"errors"
	"testing"
	"time"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef")

	tok, err := tm.New("sess-1", time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sid, err := tm.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sid != "sess-1" {
		t.Fatalf("sid=%q", sid)
	}
}

func TestTokenMaker_Rejects(t *testing.T) {
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef")
	other := NewTokenMaker("ffffffffffffffffffffffffffffffff")

	foreign, err := other.New("sess-1", time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	tm.now = func() time.Time { return start }
	expired, err := tm.New("sess-2", time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tm.now = func() time.Time { return start.Add(2 * time.Minute) }

	empty, err := tm.New("", time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := map[string]string{
		"garbage":       "not.a.token",
		"wrong secret":  foreign,
		"expired":       expired,
		"no session id": empty,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := tm.Parse(tok); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err=%v", err)
			}
		})
	}
}
