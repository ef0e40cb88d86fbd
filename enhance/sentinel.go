package enhance

import (
	"encoding/binary"

	"github.com/chazu/weft/classfile"
)

// ---------------------------------------------------------------------------
// Sentinel attribute
// ---------------------------------------------------------------------------
//
// Every successfully enhanced class is stamped with a class-level attribute
// so later runs recognize it without re-deriving anything from its methods.
// The payload is a format version followed by the pool index of the strategy
// name:
//
//	u2 version
//	u2 strategy name (Utf8 index)
//
// The JVM ignores attributes it does not know, so the stamp is invisible to
// class loading.

// SentinelAttr names the attribute stamped on enhanced classes.
const SentinelAttr = "WeftEnhanced"

// sentinelVersion is written into every stamp. Readers treat the version as
// advisory: the strategy name stays at the same offset in later revisions.
const sentinelVersion uint16 = 1

// IsEnhanced reports whether the class carries the sentinel attribute.
func IsEnhanced(c *classfile.Class) bool {
	return c.Attr(SentinelAttr) != nil
}

// EnhancedBy returns the strategy name recorded in the sentinel, or false
// when the class is unenhanced or the stamp is unreadable.
func EnhancedBy(c *classfile.Class) (string, bool) {
	a := c.Attr(SentinelAttr)
	if a == nil || len(a.Payload) < 4 {
		return "", false
	}
	name, err := c.Pool.Utf8(binary.BigEndian.Uint16(a.Payload[2:]))
	if err != nil {
		return "", false
	}
	return name, true
}

// stampSentinel appends the sentinel attribute recording the strategy that
// enhanced the class.
func stampSentinel(c *classfile.Class, strategy string) error {
	nameIdx, err := c.Pool.AddUtf8(SentinelAttr)
	if err != nil {
		return err
	}
	stratIdx, err := c.Pool.AddUtf8(strategy)
	if err != nil {
		return err
	}
	payload := make([]byte, 4)
	binary.BigEndian.PutUint16(payload, sentinelVersion)
	binary.BigEndian.PutUint16(payload[2:], stratIdx)
	c.AddAttr(&classfile.Attribute{NameIndex: nameIdx, Payload: payload})
	return nil
}
