package main

import (
	"context"
	"math"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/mcs"
	"github.com/danmuck/rangephy/internal/protocol/link"
	"github.com/danmuck/rangephy/internal/tbtrace"
	"github.com/danmuck/rangephy/internal/testutil/testlog"
)

func TestReceiverRecordsBlocksUntilCancelled(t *testing.T) {
	testlog.Start(t)
	rec, err := tbtrace.Open(filepath.Join(t.TempDir(), "trace.sqlite3"))
	require.NoError(t, err)
	defer rec.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &receiver{cfg: link.DefaultConfig(), record: rec}
	done := make(chan error, 1)
	go func() { done <- r.serve(ctx, ln) }()

	conn, err := link.Dial(ctx, "tcp", ln.Addr().String(), link.DefaultConfig())
	require.NoError(t, err)
	sender := link.NewSender(conn, link.DefaultConfig())
	for seq := uint8(0); seq < 3; seq++ {
		d := block.NewDescriptorWith(1,
			block.Control{SequenceNumber: seq, LastInSubframe: seq == 2},
			block.Allocation{TargetUEID: 1, NumRB: 4},
			block.DefaultMimo(),
			block.MCS{Modulation: mcs.QAM64},
		)
		_, err := sender.Send(ctx, d)
		require.NoError(t, err)
	}
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		entries, err := rec.List()
		return err == nil && len(entries) == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancel")
	}

	entries, err := rec.List()
	require.NoError(t, err)
	require.Equal(t, uint8(2), entries[2].Sequence)
	require.Equal(t, mcs.QAM64, entries[2].Modulation)
}

func TestReceiverKeepsConnectionAfterCapacityOverflow(t *testing.T) {
	testlog.Start(t)
	rec, err := tbtrace.Open(filepath.Join(t.TempDir(), "trace.sqlite3"))
	require.NoError(t, err)
	defer rec.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &receiver{cfg: link.DefaultConfig(), record: rec}
	done := make(chan error, 1)
	go func() { done <- r.serve(ctx, ln) }()

	conn, err := link.Dial(ctx, "tcp", ln.Addr().String(), link.DefaultConfig())
	require.NoError(t, err)
	defer conn.Close()
	sender := link.NewSender(conn, link.DefaultConfig())

	huge := block.NewDescriptorWith(0,
		block.Control{SequenceNumber: 7},
		block.Allocation{TargetUEID: 1, NumRB: 2},
		block.Mimo{Scheme: block.MimoMultiplexing, NumTxAntennas: math.MaxUint64},
		block.MCS{Modulation: mcs.QPSK},
	)
	_, err = sender.Send(ctx, huge)
	require.NoError(t, err)

	ok := block.NewDescriptorWith(0,
		block.Control{SequenceNumber: 8, LastInSubframe: true},
		block.Allocation{TargetUEID: 1, NumRB: 2},
		block.DefaultMimo(),
		block.MCS{Modulation: mcs.QPSK},
	)
	_, err = sender.Send(ctx, ok)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		entries, err := rec.List()
		return err == nil && len(entries) == 1
	}, 2*time.Second, 10*time.Millisecond)
	entries, err := rec.List()
	require.NoError(t, err)
	require.Equal(t, uint8(8), entries[0].Sequence)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
