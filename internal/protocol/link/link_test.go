package link

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/mcs"
	"github.com/danmuck/rangephy/internal/protocol"
	"github.com/danmuck/rangephy/internal/protocol/frame"
	"github.com/danmuck/rangephy/internal/testutil/testlog"
)

func sampleDescriptor(seq uint8, last bool) *block.Descriptor {
	d := block.NewDescriptorWith(2,
		block.Control{SequenceNumber: seq, SubframeNumber: 7, LastInSubframe: last, FirstInSubframe: seq == 0},
		block.Allocation{TargetUEID: 3, FirstRB: 4, NumRB: 10},
		block.Mimo{Scheme: block.MimoDiversity, NumTxAntennas: 2},
		block.MCS{Modulation: mcs.QAM16, NumInfoBits: 320, NumCodedBits: 640},
	)
	d.MACData = []byte{0xde, 0xad, 0xbe, 0xef}
	d.Symbols = []complex64{complex(1, -1), complex(0.5, 0.25)}
	return d
}

func TestSendReceiveOverBuffer(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	cfg := DefaultConfig()
	s := NewSender(&buf, cfg)

	first := sampleDescriptor(0, false)
	second := sampleDescriptor(1, true)
	id1, err := s.Send(context.Background(), first)
	require.NoError(t, err)
	id2, err := s.Send(context.Background(), second)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id1)
	require.Equal(t, uint64(2), id2)

	r := NewReceiver(&buf, cfg)
	got, err := r.Receive(context.Background())
	require.NoError(t, err)
	require.Equal(t, id1, got.Header.MessageID)
	require.Zero(t, got.Header.Flags&frame.FlagLastInSubframe)
	if diff := cmp.Diff(first, got.Descriptor); diff != "" {
		t.Fatalf("first descriptor mismatch (-want +got):\n%s", diff)
	}

	got, err = r.Receive(context.Background())
	require.NoError(t, err)
	require.Equal(t, frame.FlagLastInSubframe, got.Header.Flags&frame.FlagLastInSubframe)
	if diff := cmp.Diff(second, got.Descriptor); diff != "" {
		t.Fatalf("second descriptor mismatch (-want +got):\n%s", diff)
	}

	_, err = r.Receive(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestSendRejectsInvalidDescriptor(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	s := NewSender(&buf, DefaultConfig())

	d := sampleDescriptor(0, false)
	d.NumerologyID = 9
	_, err := s.Send(context.Background(), d)
	require.Error(t, err)
	require.Zero(t, buf.Len())

	_, err = s.Send(context.Background(), nil)
	require.ErrorIs(t, err, block.ErrNilDescriptor)
}

func TestSendHonorsCancelledContext(t *testing.T) {
	var buf bytes.Buffer
	s := NewSender(&buf, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Send(ctx, sampleDescriptor(0, false))
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, buf.Len())
}

func TestReceiveRejectsWrongMessageType(t *testing.T) {
	testlog.Start(t)
	payload, err := protocol.Marshal(sampleDescriptor(0, false))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, frame.WriteFrame(&buf, frame.Frame{
		Header:  frame.Header{MessageID: 1, MessageType: 99},
		Payload: payload,
	}, frame.DefaultLimits()))

	_, err = NewReceiver(&buf, DefaultConfig()).Receive(context.Background())
	require.ErrorIs(t, err, frame.ErrMessageTypeMismatch)
}

func TestReceiveRejectsTrailingPayloadBytes(t *testing.T) {
	testlog.Start(t)
	payload, err := protocol.Marshal(sampleDescriptor(0, false))
	require.NoError(t, err)
	payload = append(payload, 0x00)

	var buf bytes.Buffer
	require.NoError(t, frame.WriteFrame(&buf, frame.Frame{
		Header:  frame.Header{MessageID: 1, MessageType: frame.MsgTransportBlock},
		Payload: payload,
	}, frame.DefaultLimits()))

	_, err = NewReceiver(&buf, DefaultConfig()).Receive(context.Background())
	require.ErrorIs(t, err, protocol.ErrTrailingBytes)
}

func TestReceiveRejectsInvalidAllocation(t *testing.T) {
	testlog.Start(t)
	d := sampleDescriptor(0, false)
	d.Allocation = block.Allocation{FirstRB: 130, NumRB: 10}
	payload, err := protocol.Marshal(d)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, frame.WriteFrame(&buf, frame.Frame{
		Header:  frame.Header{MessageID: 1, MessageType: frame.MsgTransportBlock},
		Payload: payload,
	}, frame.DefaultLimits()))

	_, err = NewReceiver(&buf, DefaultConfig()).Receive(context.Background())
	require.ErrorIs(t, err, block.ErrInvalidAllocation)
}

func TestSendReceiveOverPipe(t *testing.T) {
	testlog.Start(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cfg := DefaultConfig()
	want := sampleDescriptor(5, true)
	errCh := make(chan error, 1)
	go func() {
		_, err := NewSender(client, cfg).Send(context.Background(), want)
		errCh <- err
	}()

	got, err := NewReceiver(server, cfg).Receive(context.Background())
	require.NoError(t, err)
	require.NoError(t, <-errCh)
	if diff := cmp.Diff(want, got.Descriptor); diff != "" {
		t.Fatalf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestReceiveUnblocksOnCancel(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := NewReceiver(server, DefaultConfig()).Receive(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("receive did not return after cancel")
	}
}

func TestReceiveAfterCancelWithFreshContext(t *testing.T) {
	testlog.Start(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cfg := DefaultConfig()
	cfg.ReadTimeout = 0
	rc := NewReceiver(server, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := rc.Receive(ctx)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("receive did not return after cancel")
	}

	want := sampleDescriptor(9, true)
	errCh := make(chan error, 1)
	go func() {
		_, err := NewSender(client, cfg).Send(context.Background(), want)
		errCh <- err
	}()

	got, err := rc.Receive(context.Background())
	require.NoError(t, err)
	require.NoError(t, <-errCh)
	if diff := cmp.Diff(want, got.Descriptor); diff != "" {
		t.Fatalf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestDialGivesUpAfterMaxAttempts(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := DefaultConfig()
	cfg.MaxDialAttempts = 3
	cfg.DialTimeout = 100 * time.Millisecond
	cfg.Backoff = BackoffConfig{InitialDelay: 5 * time.Millisecond, Multiplier: 1, MaxDelay: 5 * time.Millisecond}

	_, err = Dial(context.Background(), "tcp", addr, cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "after 3 attempts")
}

func TestDialConnects(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		if c, err := ln.Accept(); err == nil {
			_ = c.Close()
		}
	}()

	conn, err := Dial(context.Background(), "tcp", ln.Addr().String(), DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}

func TestBackoffDelay(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2, MaxDelay: time.Second}
	require.Equal(t, 100*time.Millisecond, cfg.Delay(1, nil))
	require.Equal(t, 200*time.Millisecond, cfg.Delay(2, nil))
	require.Equal(t, 400*time.Millisecond, cfg.Delay(3, nil))
	require.Equal(t, time.Second, cfg.Delay(10, nil))

	flat := BackoffConfig{InitialDelay: 50 * time.Millisecond, Multiplier: 0.5}
	require.Equal(t, 50*time.Millisecond, flat.Delay(4, nil))

	cfg.Jitter = true
	rng := rand.New(rand.NewSource(1))
	for attempt := 1; attempt < 6; attempt++ {
		d := cfg.Delay(attempt, rng)
		require.GreaterOrEqual(t, d, 50*time.Millisecond)
		require.Less(t, d, 1500*time.Millisecond)
	}

	require.Zero(t, BackoffConfig{}.Delay(3, nil))
}
