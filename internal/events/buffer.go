package events

import (
	"log"
	"strings"
	"sync"
)

// Buffer holds fired messages until the connection server sends them. The sampler appends while
// the server snapshots and commits, so every access goes through the lock. Entries carry a
// sequence number so a commit only removes what was actually sent.
type Buffer struct {
	lock    sync.Mutex
	entries []entry
	nextSeq uint64
	max     int
}

type entry struct {
	seq uint64
	msg string
}

// NewBuffer creates a buffer holding at most max pending messages. When full the oldest pending
// message is dropped. max <= 0 means unbounded.
func NewBuffer(max int) *Buffer {
	return &Buffer{
		max:     max,
		nextSeq: 1,
	}
}

// Add appends msg unless an identical message is already pending.
func (b *Buffer) Add(msg string) bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	for i := range b.entries {
		if b.entries[i].msg == msg {
			return false
		}
	}
	b.append(msg)
	return true
}

// AddUnlessPrefixed appends msg unless a pending message already starts with prefix.
func (b *Buffer) AddUnlessPrefixed(prefix, msg string) bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	for i := range b.entries {
		if strings.HasPrefix(b.entries[i].msg, prefix) {
			return false
		}
	}
	b.append(msg)
	return true
}

func (b *Buffer) append(msg string) {
	if b.max > 0 && len(b.entries) >= b.max {
		log.Printf("warning: event buffer full, dropping %q\n", b.entries[0].msg)
		b.entries = b.entries[1:]
	}
	b.entries = append(b.entries, entry{seq: b.nextSeq, msg: msg})
	b.nextSeq++
}

// Pending returns every pending message concatenated in fired order, and the sequence to pass to
// Commit once the text has been delivered. through is 0 when nothing is pending.
func (b *Buffer) Pending() (text string, through uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if len(b.entries) == 0 {
		return "", 0
	}

	var builder strings.Builder
	for i := range b.entries {
		builder.WriteString(b.entries[i].msg)
	}
	return builder.String(), b.entries[len(b.entries)-1].seq
}

// Commit removes every message up to and including sequence through.
func (b *Buffer) Commit(through uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	i := 0
	for i < len(b.entries) && b.entries[i].seq <= through {
		i++
	}
	b.entries = b.entries[i:]
}

func (b *Buffer) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.entries)
}

func (b *Buffer) Clear() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.entries = nil
}
