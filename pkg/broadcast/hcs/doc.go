// Package hcs records batch events on a Hedera Consensus Service topic,
// giving subscribers an ordered, timestamped audit trail they can read from
// any mirror node.
//
// Events are plain JSON. When compression is enabled, events that would not
// fit in a single 1024-byte chunk are brotli-compressed and wrapped as
// {"c":"data:application/json;base64,..."}; DecodeMessage understands both
// forms. Replay reads a topic back through the mirror node.
package hcs
