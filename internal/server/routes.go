package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/capacity"
	"github.com/danmuck/rangephy/internal/mcs"
	"github.com/danmuck/rangephy/internal/numerology"
	"github.com/danmuck/rangephy/internal/observability"
	"github.com/danmuck/rangephy/internal/protocol"
)

func (s *Server) RegisterRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})
	if s.metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := r.Group("/v1")
	v1.GET("/numerologies", s.listNumerologies)
	v1.GET("/numerologies/:id", s.getNumerology)
	v1.GET("/mcs", s.mcsForSNR)
	v1.GET("/mcs/:index", s.getMCS)
	v1.POST("/capacity", s.postCapacity)
	v1.POST("/required-rbs", s.postRequiredRBs)
	v1.POST("/blocks/encode", s.postEncode)
	v1.POST("/blocks/decode", s.postDecode)
}

type numerologyView struct {
	ID                 uint32  `json:"id"`
	Subcarriers        uint32  `json:"subcarriers"`
	Subsymbols         uint32  `json:"subsymbols"`
	CyclicPrefix       uint32  `json:"cyclic_prefix"`
	CyclicSuffix       uint32  `json:"cyclic_suffix"`
	Windowing          uint32  `json:"windowing"`
	ActiveSubcarriers  uint32  `json:"active_subcarriers"`
	RollOff            float32 `json:"roll_off"`
	SubcarriersPerRB   uint32  `json:"subcarriers_per_rb"`
	SymbolsPerSubframe uint32  `json:"symbols_per_subframe"`
	PilotDT            uint32  `json:"pilot_dt"`
	PilotDF            uint32  `json:"pilot_df"`
	DCIQAM             uint32  `json:"dci_qam"`
	REsPerRB           uint64  `json:"res_per_rb"`
	DataREsPerRB       uint64  `json:"data_res_per_rb"`
	SubframeSamples    uint64  `json:"subframe_samples"`
	SubframeMicros     int64   `json:"subframe_us"`
}

func viewNumerology(p numerology.Profile) numerologyView {
	return numerologyView{
		ID:                 p.ID,
		Subcarriers:        p.K,
		Subsymbols:         p.M,
		CyclicPrefix:       p.NCP,
		CyclicSuffix:       p.NCS,
		Windowing:          p.NW,
		ActiveSubcarriers:  p.KOn,
		RollOff:            p.A,
		SubcarriersPerRB:   p.SubcarriersPerRB,
		SymbolsPerSubframe: p.SymbolsPerSubframe,
		PilotDT:            p.PilotDT,
		PilotDF:            p.PilotDF,
		DCIQAM:             p.NumDCIQAM,
		REsPerRB:           p.REsPerRB(),
		DataREsPerRB:       p.DataREsPerRB(),
		SubframeSamples:    p.SubframeSamples(),
		SubframeMicros:     p.SubframeDuration().Microseconds(),
	}
}

type mcsView struct {
	Index         int      `json:"index"`
	Modulation    string   `json:"modulation"`
	BitsPerSymbol uint64   `json:"bits_per_symbol"`
	CodeRate      float32  `json:"coderate"`
	MinSNR        *float32 `json:"min_snr,omitempty"`
}

func viewMCS(e mcs.Entry) mcsView {
	v := mcsView{
		Index:         e.Index,
		Modulation:    e.Modulation.String(),
		BitsPerSymbol: e.Modulation.BitsPerSymbol(),
		CodeRate:      e.CodeRate,
	}
	if e.Index > 0 {
		snr := mcs.SNRThresholds()[e.Index-1]
		v.MinSNR = &snr
	}
	return v
}

func (s *Server) listNumerologies(c *gin.Context) {
	profiles := numerology.All()
	out := make([]numerologyView, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, viewNumerology(p))
	}
	c.JSON(http.StatusOK, gin.H{"numerologies": out})
}

func (s *Server) getNumerology(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, fmt.Errorf("numerology id: %w", err))
		return
	}
	p, err := numerology.Lookup(uint32(id))
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, viewNumerology(p))
}

func (s *Server) getMCS(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, fmt.Errorf("mcs index: %w", err))
		return
	}
	entry, err := mcs.Lookup(index)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, viewMCS(entry))
}

func (s *Server) mcsForSNR(c *gin.Context) {
	raw := c.Query("snr")
	if raw == "" {
		table := mcs.Table()
		out := make([]mcsView, 0, len(table))
		for _, e := range table {
			out = append(out, viewMCS(e))
		}
		c.JSON(http.StatusOK, gin.H{"mcs": out})
		return
	}
	snr, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		badRequest(c, fmt.Errorf("snr: %w", err))
		return
	}
	if math.IsNaN(snr) || math.IsInf(snr, 0) {
		badRequest(c, fmt.Errorf("snr: %q is not finite", raw))
		return
	}
	entry, err := mcs.Lookup(mcs.ForSNR(float32(snr)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snr": snr, "mcs": viewMCS(entry)})
}

// rateSelection picks modulation and code rate either from an MCS index or explicitly.
type rateSelection struct {
	Modulation string  `json:"modulation"`
	MCSIndex   *int    `json:"mcs_index"`
	CodeRate   float32 `json:"coderate"`
}

func (r rateSelection) resolve() (mcs.Modulation, float32, error) {
	if r.MCSIndex != nil {
		entry, err := mcs.Lookup(*r.MCSIndex)
		if err != nil {
			return 0, 0, err
		}
		return entry.Modulation, entry.CodeRate, nil
	}
	mod, err := mcs.ParseModulation(r.Modulation)
	if err != nil {
		return 0, 0, err
	}
	return mod, r.CodeRate, nil
}

type capacityRequest struct {
	rateSelection
	Numerology *uint32           `json:"numerology"`
	Allocation *block.Allocation `json:"allocation"`
	Mimo       *block.Mimo       `json:"mimo"`
}

type capacityResponse struct {
	capacity.Summary
	Numerology  uint32  `json:"numerology"`
	Modulation  string  `json:"modulation"`
	CodeRate    float32 `json:"coderate"`
	MaxInfoBits uint64  `json:"max_info_bits"`
}

func (s *Server) postCapacity(c *gin.Context) {
	var req capacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	mod, rate, err := req.resolve()
	if err != nil {
		s.capacityFailed(c, "capacity", err)
		return
	}
	d := block.NewDescriptor()
	d.NumerologyID = s.numerologyOr(req.Numerology)
	d.MCS.Modulation = mod
	if req.Allocation != nil {
		d.Allocation = *req.Allocation
	}
	if req.Mimo != nil {
		d.Mimo = *req.Mimo
	}
	if err := d.Validate(); err != nil {
		s.capacityFailed(c, "capacity", err)
		return
	}
	summary, err := capacity.Summarize(rate, d)
	if err != nil {
		s.capacityFailed(c, "capacity", err)
		return
	}
	observability.RecordCapacityQuery("capacity", true)
	c.JSON(http.StatusOK, capacityResponse{
		Summary:     summary,
		Numerology:  d.NumerologyID,
		Modulation:  mod.String(),
		CodeRate:    rate,
		MaxInfoBits: capacity.ApplyRate(summary.Bits, rate),
	})
}

type requiredRBsRequest struct {
	rateSelection
	Numerology *uint32     `json:"numerology"`
	Mimo       *block.Mimo `json:"mimo"`
	InfoBits   uint64      `json:"info_bits"`
}

func (s *Server) postRequiredRBs(c *gin.Context) {
	var req requiredRBsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	mod, rate, err := req.resolve()
	if err != nil {
		s.capacityFailed(c, "required_rbs", err)
		return
	}
	mimo := block.DefaultMimo()
	if req.Mimo != nil {
		mimo = *req.Mimo
	}
	if err := mimo.Validate(); err != nil {
		s.capacityFailed(c, "required_rbs", err)
		return
	}
	numID := s.numerologyOr(req.Numerology)
	rbs, err := capacity.RequiredRBs(numID, mimo, mod, rate, req.InfoBits)
	if err != nil {
		s.capacityFailed(c, "required_rbs", err)
		return
	}
	observability.RecordCapacityQuery("required_rbs", true)
	c.JSON(http.StatusOK, gin.H{
		"numerology":   numID,
		"modulation":   mod.String(),
		"coderate":     rate,
		"info_bits":    req.InfoBits,
		"required_rbs": rbs,
		"fits_band":    rbs <= numerology.MaxRB,
	})
}

func (s *Server) postEncode(c *gin.Context) {
	d := block.NewDescriptor()
	d.NumerologyID = s.DefaultNumerology
	if err := c.ShouldBindJSON(d); err != nil {
		badRequest(c, err)
		return
	}
	if err := d.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	encoded, err := protocol.Marshal(d)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"encoded": base64.StdEncoding.EncodeToString(encoded),
		"len":     len(encoded),
	})
}

type decodeRequest struct {
	Encoded string `json:"encoded"`
}

func (s *Server) postDecode(c *gin.Context) {
	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.Encoded)
	if err != nil {
		badRequest(c, fmt.Errorf("encoded: %w", err))
		return
	}
	d, err := protocol.Unmarshal(raw)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := d.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	view, err := json.Marshal(d)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"descriptor": json.RawMessage(view),
		"symbols": gin.H{
			"data":    len(d.Symbols),
			"mimo":    []int{len(d.MimoSymbols[0]), len(d.MimoSymbols[1])},
			"control": []int{len(d.ControlSymbols[0]), len(d.ControlSymbols[1])},
		},
	})
}

func (s *Server) numerologyOr(id *uint32) uint32 {
	if id == nil {
		return s.DefaultNumerology
	}
	return *id
}

func (s *Server) capacityFailed(c *gin.Context, operation string, err error) {
	observability.RecordCapacityQuery(operation, false)
	badRequest(c, err)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
