package link

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"reflect"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/mandelview/viewport"
)

// ViewMessage is sent by the render window whenever the view changes, and
// by the control window to jump to a typed-in view.
type ViewMessage struct {
	View viewport.View
	// FPS is the render window's frame rate; zero when sent by the control window.
	FPS float64
}

// SettingsMessage changes what is drawn without moving the view.
type SettingsMessage struct {
	Iterations int32
	Program    int
	Seed       mgl64.Vec2
}

type Command int

const (
	CommandReset Command = iota + 1
	CommandSave
)

func (c Command) String() string {
	switch c {
	case CommandReset:
		return "reset"
	case CommandSave:
		return "save"
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

type CommandMessage struct {
	Command Command
}

func init() {
	gob.Register(&ViewMessage{})
	gob.Register(&SettingsMessage{})
	gob.Register(&CommandMessage{})
}

const outboxSize = 32

// Conn exchanges gob encoded messages over a net.Conn.
// Post never blocks; messages that don't fit in the outbox are dropped.
type Conn struct {
	conn   net.Conn
	enc    *gob.Encoder
	dec    *gob.Decoder
	outbox chan interface{}
}

// NewConn wraps conn. conn is closed when ctx is done.
func NewConn(ctx context.Context, conn net.Conn) *Conn {
	c := &Conn{
		conn:   conn,
		enc:    gob.NewEncoder(conn),
		dec:    gob.NewDecoder(conn),
		outbox: make(chan interface{}, outboxSize),
	}
	context.AfterFunc(ctx, func() {
		conn.Close()
	})
	return c
}

// Post queues msg for SendLoop.
func (c *Conn) Post(msg interface{}) bool {
	select {
	case c.outbox <- msg:
		return true
	default:
		log.Printf("link: outbox full, dropped %v", reflect.TypeOf(msg))
		return false
	}
}

// SendLoop writes posted messages until ctx is done or the connection fails.
func (c *Conn) SendLoop(ctx context.Context) error {
	for {
		select {
		case msg := <-c.outbox:
			if err := c.enc.Encode(&msg); err != nil {
				if ctx.Err() != nil || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
					return nil
				}
				return fmt.Errorf("sending %v: %w", reflect.TypeOf(msg), err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// ReceiveLoop hands every message read to handle. It returns nil when the
// other end hangs up or ctx is done.
func (c *Conn) ReceiveLoop(ctx context.Context, handle func(msg interface{})) error {
	for {
		var v interface{}
		err := c.dec.Decode(&v)
		if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("receiving: %w", err)
		}

		switch v.(type) {
		case *ViewMessage, *SettingsMessage, *CommandMessage:
			handle(v)
		default:
			log.Println("unknown message received", reflect.TypeOf(v))
		}
	}
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
