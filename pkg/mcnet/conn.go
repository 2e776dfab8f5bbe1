// Package mcnet manages the TCP connection of a protocol engine client:
// the frame codec pair, the send queue and the two connection workers.
package mcnet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/gammazero/deque"
	"github.com/go-logr/logr"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/codec"
	"github.com/minelink/minelink/pkg/proto/state"
	"github.com/minelink/minelink/pkg/util/errs"
)

// ErrClosedConn indicates a connection is already closed.
var ErrClosedConn = errors.New("connection is closed")

// PacketHandler handles a received packet, known or unknown. It runs on
// the receive worker; a panic is recovered and logged, the packet counts
// as delivered.
type PacketHandler func(*proto.PacketContext)

// Conn is a client connection to a server. It owns the socket, the frame
// codec pair and the FIFO send queue, and runs exactly two workers: the
// receive loop and the send loop. The connection is unusable after Close
// and must be recreated.
type Conn struct {
	c   net.Conn    // underlying connection
	log logr.Logger // connection's own logger

	dec      *codec.Decoder
	enc      *codec.Encoder
	writeBuf *bufio.Writer

	ctx       context.Context // canceled when the connection closes
	cancelCtx context.CancelFunc
	closeOnce sync.Once   // the socket is released exactly once
	knownStop atomic.Bool // silences the error of a deliberate close

	mu       sync.Mutex // Protects following fields
	notEmpty *sync.Cond
	queue    *deque.Deque[sendEntry]
	handler  PacketHandler
}

// A send queue entry: the packet and an optional completion callback.
// The callback runs on the send worker after the bytes were handed to the
// socket and before the next entry is consumed; it must not block.
type sendEntry struct {
	packet proto.Packet
	onSent func()
}

// Dial opens a TCP connection to addr and wraps it into a Conn.
// The connection starts in the Handshake phase with compression disabled.
func Dial(ctx context.Context, addr string, log logr.Logger) (*Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", addr, err)
	}
	return NewConn(ctx, c, log), nil
}

// NewConn wraps an established connection.
func NewConn(ctx context.Context, base net.Conn, log logr.Logger) *Conn {
	ctx, cancel := context.WithCancel(ctx)
	writeBuf := bufio.NewWriter(base)
	c := &Conn{
		c:         base,
		log:       log.WithName("conn"),
		dec:       codec.NewDecoder(bufio.NewReader(base), proto.ClientBound, log.V(1)),
		enc:       codec.NewEncoder(writeBuf, proto.ServerBound, log.V(1)),
		writeBuf:  writeBuf,
		ctx:       ctx,
		cancelCtx: cancel,
		queue:     new(deque.Deque[sendEntry]),
	}
	c.notEmpty = sync.NewCond(&c.mu)
	return c
}

// Context returns the context of the connection, canceled on close.
func (c *Conn) Context() context.Context { return c.ctx }

// Closed reports whether the connection is closed.
func (c *Conn) Closed() bool { return c.ctx.Err() != nil }

// RemoteAddr returns the remote address of the connection.
func (c *Conn) RemoteAddr() net.Addr { return c.c.RemoteAddr() }

// SetHandler sets the receive callback. Must be set before Run.
func (c *Conn) SetHandler(h PacketHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// SetState switches the phase registry of both codec halves.
func (c *Conn) SetState(registry *state.Registry) {
	c.dec.SetState(registry)
	c.enc.SetState(registry)
}

// SetCompressionThreshold enables the compressed frame shape on both
// codec halves. A packet.SetCompression must have been received before.
func (c *Conn) SetCompressionThreshold(threshold, level int) error {
	c.log.V(1).Info("update compression", "threshold", threshold)
	c.dec.SetCompressionThreshold(threshold)
	return c.enc.SetCompression(threshold, level)
}

// Send enqueues the packet for the send worker. Entries of one goroutine
// are delivered in Send order. The optional onSent callback runs on the
// send worker after the bytes were handed to the socket and before the
// next entry is consumed.
func (c *Conn) Send(p proto.Packet, onSent func()) error {
	if c.Closed() {
		return ErrClosedConn
	}
	c.mu.Lock()
	c.queue.PushBack(sendEntry{packet: p, onSent: onSent})
	c.mu.Unlock()
	c.notEmpty.Signal()
	return nil
}

// Run runs the receive and send workers until the connection closes or a
// worker fails. It always closes the connection before returning; both
// workers have terminated by then.
func (c *Conn) Run() error {
	var g errgroup.Group
	g.Go(c.readLoop)
	g.Go(c.sendLoop)
	err := g.Wait()
	if c.knownStop.Load() {
		return nil
	}
	return err
}

// readLoop is the receive worker: blocking frame decode, then dispatch to
// the handler. A handler panic is recovered and the loop continues.
func (c *Conn) readLoop() error {
	defer c.close()
	for !c.Closed() {
		pc, err := c.dec.Decode()
		if err != nil {
			if c.Closed() {
				return nil
			}
			var opErr *net.OpError
			if errors.As(err, &opErr) && errs.IsConnClosedErr(opErr.Err) {
				return nil
			}
			return fmt.Errorf("error reading next packet: %w", err)
		}
		c.handlePacket(pc)
	}
	return nil
}

func (c *Conn) handlePacket(pc *proto.PacketContext) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()
	if handler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error(nil, "recovered panic in packet handler", "panic", r, "packetID", pc.PacketID)
		}
	}()
	handler(pc)
}

// sendLoop is the send worker: pop the front entry, encode and flush it,
// then run its completion callback.
func (c *Conn) sendLoop() error {
	defer c.close()
	for {
		entry, ok := c.nextEntry()
		if !ok {
			return nil
		}
		if _, err := c.enc.WritePacket(entry.packet); err != nil {
			return fmt.Errorf("error writing packet %T: %w", entry.packet, err)
		}
		// Flush in sync with the encoder, or we may get an io.ErrShortWrite
		// when flushing while the encoder is already writing.
		if err := c.enc.Sync(c.writeBuf.Flush); err != nil {
			return fmt.Errorf("error flushing packet %T: %w", entry.packet, err)
		}
		if entry.onSent != nil {
			entry.onSent()
		}
	}
}

// nextEntry blocks until the queue has an entry or the connection closed.
func (c *Conn) nextEntry() (sendEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.queue.Len() == 0 {
		if c.Closed() {
			return sendEntry{}, false
		}
		c.notEmpty.Wait()
	}
	if c.Closed() {
		return sendEntry{}, false
	}
	return c.queue.PopFront(), true
}

// Close closes the connection deliberately; Run returns nil afterwards.
// It is okay to call Close multiple times.
func (c *Conn) Close() error {
	c.knownStop.Store(true)
	return c.close()
}

func (c *Conn) close() (err error) {
	alreadyClosed := true
	c.closeOnce.Do(func() {
		alreadyClosed = false
		c.cancelCtx()
		err = c.c.Close()
		// Wake the send worker under the lock so a concurrent
		// nextEntry cannot miss the closed state.
		c.mu.Lock()
		c.notEmpty.Broadcast()
		c.mu.Unlock()
	})
	if alreadyClosed {
		err = ErrClosedConn
	}
	return err
}
