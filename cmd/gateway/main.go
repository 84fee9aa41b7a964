// Command gateway is a runnable demonstration harness: it wires an
// Exchange, registers a configurable number of synthetic TradingTools
// running a random-walk algo, and exposes /healthz and /metrics for
// operators. It exists only to give the library something to run; the
// matching engine itself has no CLI, config file, or wire protocol of its
// own.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mkrzyzan/exengine/internal/event"
	"github.com/mkrzyzan/exengine/internal/exchange"
	"github.com/mkrzyzan/exengine/internal/ring"
	"github.com/mkrzyzan/exengine/internal/tradingtool"
)

var (
	numTraders = flag.Int("traders", 8, "number of synthetic TradingTools to run")
	instrument = flag.String("instrument", "X", "single-byte instrument symbol traders submit against")
	addr       = flag.String("addr", ":8090", "listen address for /healthz and /metrics")
)

var (
	submissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exengine_gateway_submissions_total",
		Help: "Orders submitted by synthetic trading tools.",
	})
	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exengine_gateway_events_total",
		Help: "Events delivered to synthetic trading tools, by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(submissionsTotal, eventsTotal)
}

func main() {
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("gateway: building logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	runID := uuid.New()
	sugar.Infow("gateway: starting", "run_id", runID, "traders", *numTraders, "instrument", *instrument)

	instr := event.Instrument((*instrument)[0])
	x := exchange.New(exchange.WithLogger(sugar))

	tools := make([]*tradingtool.Tool, 0, *numTraders)
	for i := 0; i < *numTraders; i++ {
		id := event.TraderID(i + 1)
		producer, consumer := ring.New[event.Event](256)
		x.RegisterClient(id, producer)
		tools = append(tools, newRandomWalker(id, x, consumer, instr, sugar))
	}

	x.Start()
	for _, tool := range tools {
		tool.Start()
	}
	sugar.Infow("gateway: exchange and trading tools started", "run_id", runID)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	sugar.Infow("gateway: listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		sugar.Fatalw("gateway: http server exited", "err", err)
	}
}

// newRandomWalker wires a TradingTool whose algo submits a small random
// follow-up order after every Exec it receives, and whose init submits one
// opening order. It exercises the pipeline end to end; it has no bearing on
// matching semantics.
func newRandomWalker(id event.TraderID, sub tradingtool.Submitter, in *ring.Consumer[event.Event], instr event.Instrument, logger *zap.SugaredLogger) *tradingtool.Tool {
	rng := rand.New(rand.NewSource(int64(id) + time.Now().UnixNano()))

	init := func(t *tradingtool.Tool) {
		submissionsTotal.Inc()
		t.Submit(randomOrder(rng, t.ID, instr))
	}
	algo := func(t *tradingtool.Tool, ev event.Event) {
		logger.Debugw("gateway: trader received event", "trader", t.ID, "kind", ev.Kind.String())
		eventsTotal.WithLabelValues(ev.Kind.String()).Inc()
		if ev.Kind == event.Exec {
			submissionsTotal.Inc()
			t.Submit(randomOrder(rng, t.ID, instr))
		}
	}

	return tradingtool.New(id, sub, in, init, algo)
}

func randomOrder(rng *rand.Rand, id event.TraderID, instr event.Instrument) event.InputOrder {
	side := event.Buy
	if rng.Intn(2) == 1 {
		side = event.Sell
	}
	return event.InputOrder{
		Instrument: instr,
		Trader:     id,
		Qty:        uint16(1 + rng.Intn(50)),
		Side:       side,
	}
}
