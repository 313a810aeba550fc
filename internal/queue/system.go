package queue

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces globally unique task identifiers. It is injected into
// the queue so tests can substitute a deterministic sequence.
type IDGenerator interface {
	NewID() string
}

// Clock supplies the current time. Injected for deterministic testing; the
// queue never reads the wall clock directly.
type Clock interface {
	Now() time.Time
}

// NodeInfo reports the identity of the current cluster node, stamped on
// activity records. The second return value is false when the node name is
// unknown (e.g. single-node deployments without cluster configuration).
type NodeInfo interface {
	NodeName() (string, bool)
}

// UUIDGenerator is the production IDGenerator backed by random UUIDs.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SystemClock is the production Clock backed by the system wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// StaticNodeInfo is a NodeInfo with a fixed, possibly empty, node name.
type StaticNodeInfo struct {
	name string
}

// NewStaticNodeInfo creates a NodeInfo reporting the given name. An empty
// name means the node identity is unknown.
func NewStaticNodeInfo(name string) StaticNodeInfo {
	return StaticNodeInfo{name: name}
}

// NodeName returns the configured node name and whether it is known.
func (n StaticNodeInfo) NodeName() (string, bool) {
	return n.name, n.name != ""
}
