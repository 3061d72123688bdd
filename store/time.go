package store

import (
	"time"

	"github.com/snstore/snstore/layout"
)

// updatePollDelay is the sleep between timestamp polls in WaitForUpdate.
const updatePollDelay = 50 * time.Microsecond

// SetUpdateTime stamps the node's update time with ms, or with the current
// clock when ms is zero. On a container every descendant scalar is stamped.
func (r Ref) SetUpdateTime(ms int64) {
	if ms == 0 {
		ms = r.st.now()
	}
	walkScalars(r.node, func(n *layout.Node) {
		r.st.seg.SetUint64At(n.TimeOffset, uint64(ms))
	})
}

// Touch stamps the node's update time with the current clock without
// writing the value.
func (r Ref) Touch() {
	r.SetUpdateTime(0)
}

// UpdateTime returns the node's last update in monotonic milliseconds. For
// a container it is the latest update of any descendant scalar. The second
// result is false when nothing has ever been written.
func (r Ref) UpdateTime() (int64, bool) {
	latest := r.st.latestTime(r.node)

	return latest, latest != 0
}

func (s *Store) latestTime(n *layout.Node) int64 {
	var latest int64
	walkScalars(n, func(sc *layout.Node) {
		if ts := int64(s.seg.Uint64At(sc.TimeOffset)); ts > latest {
			latest = ts
		}
	})

	return latest
}

// WaitForUpdate polls until the node carries an update time newer than
// startMS, or until the timeout expires. A zero startMS means "newer than
// now". Returns whether a fresher write was observed. This is a polling
// primitive; writers do not signal readers.
func (r Ref) WaitForUpdate(startMS int64, timeout time.Duration) bool {
	now := r.st.now()
	if startMS == 0 {
		startMS = now
	}
	deadline := now + timeout.Milliseconds()

	for {
		if r.st.latestTime(r.node) > startMS {
			return true
		}
		if r.st.now() >= deadline {
			return false
		}
		time.Sleep(updatePollDelay)
	}
}

func walkScalars(n *layout.Node, fn func(*layout.Node)) {
	if n.IsScalar() {
		fn(n)
		return
	}
	for _, c := range n.Children {
		walkScalars(c, fn)
	}
}
