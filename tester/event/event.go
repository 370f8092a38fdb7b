/*
 * RamTest - Simulated time event scheduler.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package event provides a delta list scheduler over simulated
// microseconds. Events hold the time remaining after the event before
// them, so advancing the clock only touches the head of the list.
package event

type Callback = func(iarg int)

type Event struct {
	time int // Microseconds after the previous event
	tag  int // Owner tag, used with iarg to cancel
	cb   Callback
	iarg int
	prev *Event
	next *Event
}

// Queue is one scheduler instance. Callers own their queue; callbacks
// run on the caller's context during Advance.
type Queue struct {
	head *Event
	tail *Event
}

// AddEvent schedules a callback time microseconds from now. A zero time
// runs the callback immediately.
func (q *Queue) AddEvent(tag int, cb Callback, time int, iarg int) {
	if time == 0 {
		cb(iarg)
		return
	}

	ev := &Event{tag: tag, cb: cb, time: time, iarg: iarg}

	evptr := q.head
	if evptr == nil {
		q.head = ev
		q.tail = ev
		return
	}

	// Scan for place to install it
	for evptr != nil {
		// Event before next event
		if ev.time <= evptr.time {
			evptr.time -= ev.time
			ev.prev = evptr.prev
			ev.next = evptr
			evptr.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				q.head = ev
			}
			return
		}
		// Make new event relative to head of list
		ev.time -= evptr.time
		evptr = evptr.next
	}

	// Put it on tail of list
	ev.prev = q.tail
	q.tail.next = ev
	q.tail = ev
}

// CancelEvent removes the pending event matching tag and iarg.
func (q *Queue) CancelEvent(tag int, iarg int) {
	for evptr := q.head; evptr != nil; evptr = evptr.next {
		if evptr.tag != tag || evptr.iarg != iarg {
			continue
		}
		nxt := evptr.next
		if nxt != nil {
			// Give remaining time to the next event
			nxt.time += evptr.time
			nxt.prev = evptr.prev
		} else {
			q.tail = evptr.prev
		}
		if evptr.prev != nil {
			evptr.prev.next = nxt
		} else {
			q.head = nxt
		}
		return
	}
}

// Advance moves simulated time forward, firing any events that come due.
func (q *Queue) Advance(t int) {
	evptr := q.head
	if evptr == nil {
		return
	}
	evptr.time -= t
	for evptr != nil && evptr.time <= 0 {
		carry := evptr.time
		q.head = evptr.next
		if q.head != nil {
			q.head.prev = nil
			// Pass leftover time to the next event
			q.head.time += carry
		} else {
			q.tail = nil
		}
		evptr.cb(evptr.iarg)
		evptr = q.head
	}
}

// Empty reports whether anything is still scheduled.
func (q *Queue) Empty() bool {
	return q.head == nil
}
