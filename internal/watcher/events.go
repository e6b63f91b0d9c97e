package watcher

import (
	"strings"
	"time"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventWrite  EventType = "write"
)

type FileEvent struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// Filter decides which outbox files get shipped.
type Filter struct {
	IgnoreSuffixes []string
}

// DefaultFilter skips editor droppings and partially written files.
func DefaultFilter() Filter {
	return Filter{
		IgnoreSuffixes: []string{".tmp", ".swp", ".part", ".DS_Store", "~"},
	}
}

func (f Filter) ShouldProcess(path string) bool {
	for _, suffix := range f.IgnoreSuffixes {
		if strings.HasSuffix(path, suffix) {
			return false
		}
	}
	return true
}
