package state

import (
	"sync"
	"time"
)

// DefaultLogSize is the number of entries kept by a rolling log.
const DefaultLogSize = 10

// Entry is one received controller line, stamped on receipt.
type Entry struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// String formats the entry as "[15:04:05] message".
func (e Entry) String() string {
	return "[" + e.At.Format("15:04:05") + "] " + e.Message
}

// Log keeps the most recent entries, newest first.
type Log struct {
	mu      sync.RWMutex
	size    int
	entries []Entry
}

// NewLog returns a log holding at most size entries (DefaultLogSize if size < 1).
func NewLog(size int) *Log {
	if size < 1 {
		size = DefaultLogSize
	}
	return &Log{size: size, entries: make([]Entry, 0, size)}
}

// Add records message received at at.
func (l *Log) Add(at time.Time, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) < l.size {
		l.entries = append(l.entries, Entry{})
	}
	copy(l.entries[1:], l.entries)
	l.entries[0] = Entry{At: at, Message: message}
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lines returns the formatted entries, newest first.
func (l *Log) Lines() []string {
	entries := l.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines
}
