// SPDX-License-Identifier: Unlicense OR MIT

// Package event contains the identity of event consumers.
package event

// Tag is the stable identifier for an event consumer.
// For a widget w, the tag is typically &w. Tags must be
// comparable and are only used as map keys; the nil Tag
// means no consumer.
type Tag interface{}
