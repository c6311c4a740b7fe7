// Package mockservice is a stand-in for the Sanderling memory reading
// service. It speaks the volatile process api and serves an agency window
// whose signature counts drift between readings.
package mockservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"sigwatch/internal/components/telemetry"
	"sigwatch/internal/sanderling"
	"sigwatch/internal/signatures"
)

const (
	report_request = "request"
	report_listen  = "listen"
)

var Process = sanderling.GameClientProcess{
	ProcessID:        4242,
	MainWindowID:     "0x10aef2",
	MainWindowTitle:  "EVE - Mock Pilot",
	MainWindowZIndex: 0,
}

const UIRootAddress = "0x2a4f6d0"

type Options struct {
	// SetupSteps is how many process listings answer setup not complete.
	SetupSteps int
	// SearchSteps is how many ui root searches stay in progress.
	SearchSteps int
	// ClosedEvery makes every n-th text reading show a closed agency
	// window, 0 never closes it.
	ClosedEvery int
	Seed        int64
}

type system struct {
	name  string
	color string
	jumps int
	sigs  int
}

type Service struct {
	opts Options
	tel  telemetry.API

	mu       sync.Mutex
	rng      *rand.Rand
	listings int
	searches int
	readings int
	systems  []*system
}

func New(opts Options, tel telemetry.API) *Service {
	return &Service{
		opts: opts,
		tel:  telemetry.NewScopedAPI("mock_service", tel),
		rng:  rand.New(rand.NewSource(opts.Seed)),
		systems: []*system{
			{name: "Jita", color: "0xff4cffcc", jumps: 0, sigs: 3},
			{name: "Perimeter", color: "0xff4cffcc", jumps: 1, sigs: 5},
			{name: "Amarr", color: "0xff00ff00", jumps: 9, sigs: 2},
			{name: "J100000", color: "0xffff0000", jumps: 4, sigs: 5},
			{name: "Thera", color: "0xffff0000", jumps: 12, sigs: 41},
		},
	}
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, err := sanderling.DecodeRequest(body)
	if err != nil {
		s.tel.ReportWarning(report_request, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.tel.ReportDebug(report_request, req.Op)

	res, err := s.handle(req)
	if err != nil {
		res, err = sanderling.EncodeException(err.Error())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("content-type", "application/json")
	w.Write(res)
}

func (s *Service) handle(req sanderling.Request) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Op {
	case sanderling.OpListGameClientProcesses:
		s.listings++
		if s.listings <= s.opts.SetupSteps {
			return sanderling.EncodeSetupNotComplete(), nil
		}
		return sanderling.EncodeCompleted(sanderling.ListGameClientProcessesPayload{
			Processes: []sanderling.GameClientProcess{Process},
		})

	case sanderling.OpSearchUIRootAddress:
		var args []sanderling.SearchUIRootAddressArgs
		err := json.Unmarshal(req.Args, &args)
		if err != nil || len(args) != 1 {
			return nil, fmt.Errorf("bad SearchUIRootAddress arguments")
		}
		if args[0].ProcessID != Process.ProcessID {
			return nil, fmt.Errorf("no process with id %d", args[0].ProcessID)
		}
		s.searches++
		stage := sanderling.SearchStage{InProgress: &sanderling.SearchInProgress{
			SearchBeginTimeMilliseconds: 0,
			CurrentTimeMilliseconds:     int64(s.searches) * 1000,
		}}
		if s.searches > s.opts.SearchSteps {
			stage = sanderling.SearchStage{Completed: &sanderling.SearchCompleted{UIRootAddress: UIRootAddress}}
		}
		return sanderling.EncodeCompleted(sanderling.SearchUIRootAddressPayload{
			Response: sanderling.SearchUIRootAddressResult{ProcessID: Process.ProcessID, Stage: stage},
		})

	case sanderling.OpReadFromWindow:
		var args []sanderling.ReadFromWindowArgs
		err := json.Unmarshal(req.Args, &args)
		if err != nil || len(args) != 1 {
			return nil, fmt.Errorf("bad ReadFromWindow arguments")
		}
		if args[0].WindowID != Process.MainWindowID || args[0].UIRootAddress != UIRootAddress {
			return nil, fmt.Errorf("no window %s under root %s", args[0].WindowID, args[0].UIRootAddress)
		}
		s.readings++
		if args[0].ParseText == "True" {
			return sanderling.EncodeCompletedInline(s.agencyTokens())
		}
		return sanderling.EncodeCompleted(sanderling.ReadFromWindowPayload{
			Completed: &sanderling.WindowReading{
				ProcessID:                             Process.ProcessID,
				WindowClientRectOffset:                sanderling.WindowClientRectOffset{X: 8, Y: 31},
				ReadingID:                             fmt.Sprintf("reading-%d", s.readings),
				MemoryReadingSerialRepresentationJSON: `{"pythonObjectTypeName":"UIRoot","children":[]}`,
			},
		})

	default:
		return nil, fmt.Errorf("unknown operation %s", req.Op)
	}
}

// agencyTokens drifts the signature counts and renders the agency window
// the way the parsed text reading flattens it.
func (s *Service) agencyTokens() []string {
	if s.opts.ClosedEvery > 0 && s.readings%s.opts.ClosedEvery == 0 {
		return []string{"Overview", "Drones", "Local"}
	}

	for _, sys := range s.systems {
		sys.sigs += s.rng.Intn(3) - 1
		if sys.sigs < 0 {
			sys.sigs = 0
		}
	}

	tokens := []string{"Agency", "Exploration", signatures.StartMarker}
	for _, sys := range s.systems {
		tokens = append(tokens,
			fmt.Sprintf("%s <color=%s>", sys.name, sys.color),
			fmt.Sprintf("%d jumps", sys.jumps),
			fmt.Sprintf("%d Signatures in system", sys.sigs),
		)
	}
	return append(tokens, signatures.EndMarker, "Combat Anomalies")
}

// Listen serves the mock on port until ctx is done.
func (s *Service) Listen(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/api/", s)

	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.tel.ReportDebug(report_listen, telemetry.KV{Key: "port", Value: port})
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
