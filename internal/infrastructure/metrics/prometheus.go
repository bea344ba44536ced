package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-dte/internal/application/billing"
	"github.com/jhoicas/facturacion-dte/internal/application/inventory"
)

const namespace = "dte"

// Nombres completos de las series (para consultas y tests).
const (
	MetricInvoicesIssued = namespace + "_invoices_issued_total"
	MetricInvoicedAmount = namespace + "_invoiced_amount_usd_total"
	MetricInvoicesVoided = namespace + "_invoices_voided_total"
	MetricInvoicesFailed = namespace + "_invoice_failures_total"
	MetricTxDuration     = namespace + "_tx_duration_seconds"
	MetricStockMovements = namespace + "_stock_movements_total"
)

// Prometheus implementa las métricas de facturación e inventario sobre un registro propio.
type Prometheus struct {
	registry       *prometheus.Registry
	invoicesIssued *prometheus.CounterVec
	invoicedAmount *prometheus.CounterVec
	invoicesVoided *prometheus.CounterVec
	failures       *prometheus.CounterVec
	txDuration     *prometheus.HistogramVec
	stockMovements *prometheus.CounterVec
}

// NewPrometheus crea y registra los colectores. withRuntime agrega métricas de Go y del proceso.
func NewPrometheus(withRuntime bool) *Prometheus {
	reg := prometheus.NewRegistry()
	m := &Prometheus{
		registry: reg,
		invoicesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricInvoicesIssued,
			Help: "Facturas emitidas por tipo de documento.",
		}, []string{"type"}),
		invoicedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricInvoicedAmount,
			Help: "Monto total facturado en USD por tipo de documento.",
		}, []string{"type"}),
		invoicesVoided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricInvoicesVoided,
			Help: "Facturas anuladas por tipo de documento.",
		}, []string{"type"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricInvoicesFailed,
			Help: "Operaciones de facturación fallidas por operación y motivo.",
		}, []string{"operation", "reason"}),
		txDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricTxDuration,
			Help:    "Duración de las transacciones de facturación.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		stockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricStockMovements,
			Help: "Movimientos de kardex registrados manualmente por dirección.",
		}, []string{"direction"}),
	}
	reg.MustRegister(m.invoicesIssued, m.invoicedAmount, m.invoicesVoided, m.failures, m.txDuration, m.stockMovements)
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return m
}

// Registry expone el registro (tests y exportadores adicionales).
func (m *Prometheus) Registry() *prometheus.Registry { return m.registry }

// Handler sirve el formato de exposición de Prometheus.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Prometheus) InvoiceIssued(invoiceType string, total decimal.Decimal) {
	m.invoicesIssued.WithLabelValues(invoiceType).Inc()
	m.invoicedAmount.WithLabelValues(invoiceType).Add(total.InexactFloat64())
}

func (m *Prometheus) InvoiceVoided(invoiceType string) {
	m.invoicesVoided.WithLabelValues(invoiceType).Inc()
}

func (m *Prometheus) InvoiceFailed(operation, reason string) {
	m.failures.WithLabelValues(operation, reason).Inc()
}

func (m *Prometheus) ObserveTx(operation string, d time.Duration) {
	m.txDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Prometheus) StockMovementRecorded(direction string) {
	m.stockMovements.WithLabelValues(direction).Inc()
}

var (
	_ billing.Metrics   = (*Prometheus)(nil)
	_ inventory.Metrics = (*Prometheus)(nil)
)
