package client

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/minelink/minelink/pkg/proto"
)

// Unlimited registers a handler without an invocation budget.
const Unlimited = -1

// HandlerFunc is a packet handler callback. The packet is the decoded
// value; handlers registered for the same type run in registration order.
type HandlerFunc func(p proto.Packet)

type handlerEntry struct {
	remaining int // -1 is unlimited; decremented per invocation, skipped at 0
	fn        HandlerFunc
}

// handlerRegistry maps packet types to their ordered handler lists.
// Handlers may register further handlers from within a callback.
type handlerRegistry struct {
	log logr.Logger

	mu       sync.Mutex
	handlers map[proto.PacketType][]*handlerEntry
}

func newHandlerRegistry(log logr.Logger) *handlerRegistry {
	return &handlerRegistry{
		log:      log,
		handlers: map[proto.PacketType][]*handlerEntry{},
	}
}

// register appends a handler for the packet type of prototype with the
// given invocation budget (Unlimited for no budget).
func (h *handlerRegistry) register(prototype proto.Packet, times int, fn HandlerFunc) {
	if times == 0 {
		return
	}
	t := proto.TypeOf(prototype)
	h.mu.Lock()
	h.handlers[t] = append(h.handlers[t], &handlerEntry{remaining: times, fn: fn})
	h.mu.Unlock()
}

// fire invokes every live handler registered for p's type, in registration
// order, decrementing budgets durably. Exhausted entries are collected
// afterwards. A panicking handler is recovered and logged; the packet
// counts as delivered.
func (h *handlerRegistry) fire(p proto.Packet) {
	t := proto.TypeOf(p)

	h.mu.Lock()
	list := h.handlers[t]
	run := make([]HandlerFunc, 0, len(list))
	for _, entry := range list {
		if entry.remaining == 0 {
			continue
		}
		if entry.remaining > 0 {
			entry.remaining--
		}
		run = append(run, entry.fn)
	}
	h.mu.Unlock()

	for _, fn := range run {
		h.invoke(fn, p)
	}

	h.collect(t)
}

func (h *handlerRegistry) invoke(fn HandlerFunc, p proto.Packet) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error(nil, "recovered panic from a packet handler",
				"packetType", proto.TypeOf(p), "panic", r)
		}
	}()
	fn(p)
}

// collect drops exhausted entries of the type's handler list.
func (h *handlerRegistry) collect(t proto.PacketType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.handlers[t]
	live := list[:0]
	for _, entry := range list {
		if entry.remaining != 0 {
			live = append(live, entry)
		}
	}
	if len(live) == 0 {
		delete(h.handlers, t)
		return
	}
	h.handlers[t] = live
}
