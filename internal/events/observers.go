package events

import (
	"log"
)

// LoggingObserver logs all events for debugging purposes.
// Useful for development and troubleshooting.
type LoggingObserver struct {
	name    string
	verbose bool
}

// NewLoggingObserver creates a new observer that logs events.
func NewLoggingObserver(verbose bool) *LoggingObserver {
	return &LoggingObserver{
		name:    "LoggingObserver",
		verbose: verbose,
	}
}

// OnEvent logs the event details.
func (o *LoggingObserver) OnEvent(event Event) error {
	if o.verbose {
		log.Printf("[%s] %s: %+v", o.name, event.Type, event.Data)
	} else {
		log.Printf("[%s] %s", o.name, event.Type)
	}
	return nil
}

// GetName returns the observer's name.
func (o *LoggingObserver) GetName() string {
	return o.name
}

// ShouldHandle returns true for all event types.
func (o *LoggingObserver) ShouldHandle(eventType string) bool {
	return true
}
