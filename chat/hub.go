// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package chat

import (
	"sync"

	ms "github.com/cmacro/moguchat"
	"github.com/gobwas/pool/pbytes"
)

// Hub is the connection registry and broadcast fan-out point. A session
// appears in the hub iff it has completed the handshake, submitted its
// display name and has not yet been closed.
//
// Admit, Remove, Broadcast and CloseAll are mutually exclusive: one mutex
// serializes membership changes and deliveries, so a broadcast never sees a
// partially updated member set and every recipient observes broadcasts in
// the same serialized order. Sessions never iterate the member set
// themselves; they ask the hub to deliver.
type Hub struct {
	log ms.Logger

	mu      sync.Mutex
	members map[*Session]string
}

func NewHub(log ms.Logger) *Hub {
	return &Hub{
		log:     log,
		members: make(map[*Session]string),
	}
}

// Admit registers the session under its display name and announces the join
// to every member, the new one included.
func (h *Hub) Admit(s *Session, name string) {
	h.mu.Lock()
	h.members[s] = name
	failed := h.broadcastLocked(name+" joined the chat", nil)
	h.mu.Unlock()
	h.closeFailed(failed)
	h.log.Info("admitted", name)
}

// Remove unregisters the session and announces the leave to the remaining
// members. Removing an absent session is a no-op, so the close paths may
// call it unconditionally.
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	name, ok := h.members[s]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.members, s)
	failed := h.broadcastLocked(name+" has left the chat", nil)
	h.mu.Unlock()
	h.closeFailed(failed)
	h.log.Info("removed", name)
}

// Broadcast delivers text to every member except exclude. A write failure on
// one member triggers that member's close path without aborting delivery to
// the rest.
func (h *Hub) Broadcast(text string, exclude *Session) {
	h.mu.Lock()
	failed := h.broadcastLocked(text, exclude)
	h.mu.Unlock()
	h.closeFailed(failed)
}

// broadcastLocked encodes one unmasked text frame (server role) and writes
// it to every member but exclude. It returns the members whose write failed;
// the caller kills those after releasing the lock, since their close paths
// re-enter the hub.
func (h *Hub) broadcastLocked(text string, exclude *Session) (failed []*Session) {
	if len(h.members) == 0 {
		return nil
	}
	bts := pbytes.GetCap(ms.MaxHeaderSize + len(text))
	defer pbytes.Put(bts)
	bts, err := ms.AppendFrame(bts[:0], ms.StateServerSide.PrepareFrame(ms.NewTextFrame(strToBytes(text))))
	if err != nil {
		h.log.Error("compile broadcast frame", err)
		return nil
	}
	for s := range h.members {
		if s == exclude {
			continue
		}
		if err := s.writeRaw(bts); err != nil {
			h.log.Warn("broadcast write", h.members[s], err)
			failed = append(failed, s)
		}
	}
	return failed
}

func (h *Hub) closeFailed(failed []*Session) {
	for _, s := range failed {
		s.kill()
	}
}

// Name reports the display name the session was admitted under.
func (h *Hub) Name(s *Session) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	name, ok := h.members[s]
	return name, ok
}

// Len reports the current number of members.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.members)
}

// CloseAll kicks every member onto its local close path. Used on server
// shutdown; each session then removes itself and says goodbye.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	snapshot := make([]*Session, 0, len(h.members))
	for s := range h.members {
		snapshot = append(snapshot, s)
	}
	h.mu.Unlock()
	for _, s := range snapshot {
		s.kill()
	}
}
