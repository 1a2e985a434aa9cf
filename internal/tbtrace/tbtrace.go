// Package tbtrace records received transport blocks into a SQLite database.
package tbtrace

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/capacity"
	"github.com/danmuck/rangephy/internal/mcs"
)

var ErrClosed = errors.New("tbtrace: recorder closed")

const createTableSQL = `CREATE TABLE IF NOT EXISTS transport_blocks (
	id TEXT PRIMARY KEY,
	received_at INTEGER NOT NULL,
	numerology INTEGER NOT NULL,
	sequence INTEGER NOT NULL,
	subframe INTEGER NOT NULL,
	target_ue INTEGER NOT NULL,
	first_rb INTEGER NOT NULL,
	num_rb INTEGER NOT NULL,
	scheme INTEGER NOT NULL,
	antennas INTEGER NOT NULL,
	modulation INTEGER NOT NULL,
	info_bits INTEGER NOT NULL,
	coded_bits INTEGER NOT NULL,
	snr REAL NOT NULL,
	rank INTEGER NOT NULL,
	mac_len INTEGER NOT NULL,
	re_capacity INTEGER NOT NULL,
	bit_capacity INTEGER NOT NULL
);`

const insertSQL = `INSERT INTO transport_blocks VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectSQL = `SELECT id, received_at, numerology, sequence, subframe, target_ue, first_rb, num_rb,
	scheme, antennas, modulation, info_bits, coded_bits, snr, rank, mac_len, re_capacity, bit_capacity
	FROM transport_blocks ORDER BY received_at, id`

// Entry is one recorded transport block.
type Entry struct {
	ID          string
	ReceivedAt  time.Time
	Numerology  uint32
	Sequence    uint8
	Subframe    uint32
	TargetUE    uint8
	FirstRB     uint8
	NumRB       uint8
	Scheme      block.MimoScheme
	Antennas    uint64
	Modulation  mcs.Modulation
	InfoBits    uint64
	CodedBits   uint64
	SNR         float32
	Rank        uint8
	MACLen      int
	RECapacity  uint64
	BitCapacity uint64
}

// Recorder appends entries to the transport_blocks table. It is safe for
// concurrent use.
type Recorder struct {
	mu     sync.Mutex
	db     *sql.DB
	insert *sql.Stmt
	path   string
	now    func() time.Time
}

// Open creates or reuses the SQLite database at path. An empty path picks a
// fresh file named after a new xid in the working directory.
func Open(path string) (*Recorder, error) {
	if path == "" {
		path = "rangephy_trace_" + xid.New().String() + ".sqlite3"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("tbtrace: open %s: %w", path, err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tbtrace: create table: %w", err)
	}
	stmt, err := db.Prepare(insertSQL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tbtrace: prepare insert: %w", err)
	}
	return &Recorder{db: db, insert: stmt, path: path, now: time.Now}, nil
}

func (r *Recorder) Path() string {
	return r.path
}

// Record stores d together with its computed RE and bit capacity.
func (r *Recorder) Record(d *block.Descriptor) (Entry, error) {
	if d == nil {
		return Entry{}, block.ErrNilDescriptor
	}
	numRE, err := capacity.DescriptorResourceElements(d)
	if err != nil {
		return Entry{}, err
	}
	numBits, err := capacity.BitsFromRE(numRE, d.MCS.Modulation)
	if err != nil {
		return Entry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return Entry{}, ErrClosed
	}

	e := Entry{
		ID:          xid.New().String(),
		ReceivedAt:  r.now().UTC(),
		Numerology:  d.NumerologyID,
		Sequence:    d.Control.SequenceNumber,
		Subframe:    d.Control.SubframeNumber,
		TargetUE:    d.Allocation.TargetUEID,
		FirstRB:     d.Allocation.FirstRB,
		NumRB:       d.Allocation.NumRB,
		Scheme:      d.Mimo.Scheme,
		Antennas:    d.Mimo.NumTxAntennas,
		Modulation:  d.MCS.Modulation,
		InfoBits:    d.MCS.NumInfoBits,
		CodedBits:   d.MCS.NumCodedBits,
		SNR:         d.SNRAvg,
		Rank:        d.RankIndicator,
		MACLen:      len(d.MACData),
		RECapacity:  numRE,
		BitCapacity: numBits,
	}
	_, err = r.insert.Exec(
		e.ID, e.ReceivedAt.UnixNano(), e.Numerology, e.Sequence, e.Subframe,
		e.TargetUE, e.FirstRB, e.NumRB, uint32(e.Scheme), int64(e.Antennas),
		uint32(e.Modulation), int64(e.InfoBits), int64(e.CodedBits), float64(e.SNR),
		e.Rank, e.MACLen, int64(e.RECapacity), int64(e.BitCapacity),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("tbtrace: insert: %w", err)
	}
	return e, nil
}

// List returns every recorded entry in arrival order.
func (r *Recorder) List() ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil, ErrClosed
	}

	rows, err := r.db.Query(selectSQL)
	if err != nil {
		return nil, fmt.Errorf("tbtrace: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                             Entry
			receivedAt                    int64
			scheme, modulation            uint32
			antennas, infoBits, codedBits int64
			reCapacity, bitCapacity       int64
			snr                           float64
		)
		if err := rows.Scan(
			&e.ID, &receivedAt, &e.Numerology, &e.Sequence, &e.Subframe,
			&e.TargetUE, &e.FirstRB, &e.NumRB, &scheme, &antennas,
			&modulation, &infoBits, &codedBits, &snr,
			&e.Rank, &e.MACLen, &reCapacity, &bitCapacity,
		); err != nil {
			return nil, fmt.Errorf("tbtrace: scan: %w", err)
		}
		e.ReceivedAt = time.Unix(0, receivedAt).UTC()
		e.Scheme = block.MimoScheme(scheme)
		e.Antennas = uint64(antennas)
		e.Modulation = mcs.Modulation(modulation)
		e.InfoBits = uint64(infoBits)
		e.CodedBits = uint64(codedBits)
		e.SNR = float32(snr)
		e.RECapacity = uint64(reCapacity)
		e.BitCapacity = uint64(bitCapacity)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tbtrace: rows: %w", err)
	}
	return out, nil
}

// Close releases the database. Further calls return ErrClosed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	_ = r.insert.Close()
	err := r.db.Close()
	r.db = nil
	return err
}
