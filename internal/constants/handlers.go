// Web and event delivery constants.
package constants

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)

// Attendance event queue constants
const (
	// DefaultEventQueue is the AMQP queue attendance events are published to
	DefaultEventQueue = "attendance.events"
)
