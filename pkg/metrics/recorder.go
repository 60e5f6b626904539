package metrics

import (
	"strings"
	"sync"
)

// ReadStats acumula os totais de uma execução de leitura: páginas buscadas,
// retries de fetch e unidades de capacidade consumidas.
type ReadStats struct {
	Pages         int64
	Retries       int64
	CapacityUnits float64
}

// Recorder é um Provider decorador: agrega em memória as métricas de leitura
// do dyndb enquanto repassa tudo ao provider de destino. Seguro para uso
// concorrente (scan por segmentos).
type Recorder struct {
	mu    sync.Mutex
	stats ReadStats
	next  Provider
}

// NewRecorder embrulha o provider informado (ou Noop, se nil).
func NewRecorder(next Provider) *Recorder {
	if next == nil {
		next = Noop()
	}
	return &Recorder{next: next}
}

func (r *Recorder) Count(name string, value float64, tags []string) error {
	r.mu.Lock()
	switch {
	case strings.HasSuffix(name, ".page.fetched"):
		r.stats.Pages += int64(value)
	case strings.HasSuffix(name, ".fetch.retries"):
		r.stats.Retries += int64(value)
	}
	r.mu.Unlock()
	return r.next.Count(name, value, tags)
}

func (r *Recorder) Gauge(name string, value float64, tags []string) error {
	return r.next.Gauge(name, value, tags)
}

func (r *Recorder) Histogram(name string, value float64, tags []string) error {
	r.mu.Lock()
	if strings.HasSuffix(name, ".consumed_capacity") {
		r.stats.CapacityUnits += value
	}
	r.mu.Unlock()
	return r.next.Histogram(name, value, tags)
}

// Snapshot devolve uma cópia dos totais acumulados até aqui.
func (r *Recorder) Snapshot() ReadStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
