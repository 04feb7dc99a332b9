package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StockMetrics exports counters for the movement ledger.
type StockMetrics struct {
	movements *prometheus.CounterVec
	clamps    prometheus.Counter
	lowStock  *prometheus.GaugeVec
}

// NewStockMetrics registers the stock metrics on the provided registerer.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Stock movements recorded, by movement type.",
	}, []string{"type"})
	clamps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_clamped_to_zero_total",
		Help: "Removals that exceeded the available balance and were clamped to zero.",
	})
	lowStock := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stock_low_items",
		Help: "Balances at or below their alert threshold, by branch.",
	}, []string{"branch"})
	reg.MustRegister(movements, clamps, lowStock)
	return &StockMetrics{
		movements: movements,
		clamps:    clamps,
		lowStock:  lowStock,
	}
}

// IncMovement counts one recorded movement of the given type.
func (s *StockMetrics) IncMovement(movementType string) {
	if s == nil || s.movements == nil {
		return
	}
	s.movements.WithLabelValues(normalizeLabel(movementType)).Inc()
}

// IncClamp counts one removal clamped at zero.
func (s *StockMetrics) IncClamp() {
	if s == nil || s.clamps == nil {
		return
	}
	s.clamps.Inc()
}

// SetLowStock records the low-stock item count observed for a branch.
func (s *StockMetrics) SetLowStock(branchID string, count float64) {
	if s == nil || s.lowStock == nil {
		return
	}
	s.lowStock.WithLabelValues(normalizeLabel(branchID)).Set(count)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
