package link

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/observability"
	"github.com/danmuck/rangephy/internal/protocol"
	"github.com/danmuck/rangephy/internal/protocol/frame"
)

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// Sender frames descriptors onto w. It is safe for concurrent use.
type Sender struct {
	mu     sync.Mutex
	w      io.Writer
	cfg    Config
	nextID uint64
}

func NewSender(w io.Writer, cfg Config) *Sender {
	return &Sender{w: w, cfg: cfg, nextID: 1}
}

// Send validates and writes d, returning the frame message id it was sent under.
func (s *Sender) Send(ctx context.Context, d *block.Descriptor) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := d.Validate(); err != nil {
		observability.RecordLinkFrame("send", 0, false)
		return 0, err
	}
	payload, err := protocol.Marshal(d)
	if err != nil {
		observability.RecordLinkFrame("send", 0, false)
		return 0, err
	}
	var flags uint32
	if d.Control.LastInSubframe {
		flags |= frame.FlagLastInSubframe
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	if dl, ok := s.w.(writeDeadliner); ok && s.cfg.WriteTimeout > 0 {
		_ = dl.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	err = frame.WriteFrame(s.w, frame.Frame{
		Header: frame.Header{
			MessageID:   id,
			MessageType: frame.MsgTransportBlock,
			Flags:       flags,
		},
		Payload: payload,
	}, s.cfg.Frame)
	if err != nil {
		observability.RecordLinkFrame("send", len(payload), false)
		log.Error().Err(err).Uint64("message_id", id).Msg("link send failed")
		return 0, err
	}
	s.nextID++
	observability.RecordLinkFrame("send", len(payload), true)
	log.Debug().
		Uint64("message_id", id).
		Uint8("sequence", d.Control.SequenceNumber).
		Uint32("subframe", d.Control.SubframeNumber).
		Int("bytes", len(payload)).
		Msg("link sent transport block")
	return id, nil
}

// Received is one descriptor together with the frame header it arrived in.
type Received struct {
	Header     frame.Header
	Descriptor *block.Descriptor
}

// Receiver rebuilds descriptors from a framed stream. One goroutine reads at a time.
type Receiver struct {
	r   io.Reader
	cfg Config
}

func NewReceiver(r io.Reader, cfg Config) *Receiver {
	return &Receiver{r: r, cfg: cfg}
}

// Receive blocks for the next descriptor. It returns io.EOF when the stream
// closes between frames. When the reader supports read deadlines, cancelling
// ctx unblocks a pending read.
func (rc *Receiver) Receive(ctx context.Context) (Received, error) {
	if err := ctx.Err(); err != nil {
		return Received{}, err
	}
	if dl, ok := rc.r.(readDeadliner); ok {
		if rc.cfg.ReadTimeout > 0 {
			_ = dl.SetReadDeadline(time.Now().Add(rc.cfg.ReadTimeout))
		} else {
			_ = dl.SetReadDeadline(time.Time{})
		}
		stop := context.AfterFunc(ctx, func() {
			_ = dl.SetReadDeadline(time.Unix(1, 0))
		})
		defer stop()
	}

	f, err := frame.ReadFrame(rc.r, rc.cfg.Frame)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Received{}, ctxErr
		}
		if !errors.Is(err, io.EOF) {
			observability.RecordLinkFrame("receive", 0, false)
		}
		return Received{}, err
	}
	if err := frame.Expect(f, frame.MsgTransportBlock); err != nil {
		observability.RecordLinkFrame("receive", len(f.Payload), false)
		return Received{}, err
	}
	d, err := decodePayload(f.Payload, rc.cfg.Codec)
	if err != nil {
		observability.RecordLinkFrame("receive", len(f.Payload), false)
		log.Warn().Err(err).Uint64("message_id", f.Header.MessageID).Msg("link dropped malformed transport block")
		return Received{}, err
	}
	observability.RecordLinkFrame("receive", len(f.Payload), true)
	return Received{Header: f.Header, Descriptor: d}, nil
}

func decodePayload(payload []byte, limits protocol.Limits) (*block.Descriptor, error) {
	r := bytes.NewReader(payload)
	d, err := protocol.Decode(r, limits)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d", protocol.ErrTrailingBytes, r.Len())
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
