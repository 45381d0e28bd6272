// SPDX-License-Identifier: Unlicense OR MIT

/*
Package input implements touch routing and gesture recognition
for the consumers of a display.

The [Router] is the single entry point between the platform and
the widgets of a user interface. The platform feeds it raw
[touchflow.org/io/touch.Event]s together with the consumer the
touch was hit tested to; the Router locks each contact to that
consumer, classifies the stream into [touchflow.org/gesture.Event]s
and answers which consumer owns a touch, a gesture or a location.

Consumers that acknowledge touches asynchronously queue them with
[Router.QueueTouchEventForGesture] and release them one at a time
with [Router.AdvanceTouchQueue]. A consumer that captures input
calls [Router.CancelNonCapturedTouches] to cancel every other
consumer's contacts until they are pressed again.

A Router is not safe for concurrent use. All methods are expected
to be called from the goroutine that dispatches input; none of
them block.
*/
package input
