package handshake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sigwatch/internal/components/telemetry"
	"sigwatch/internal/sanderling"

	"github.com/stretchr/testify/require"
)

type processResult struct {
	res sanderling.Envelope[[]sanderling.GameClientProcess]
	err error
}

type searchResult struct {
	res sanderling.Envelope[string]
	err error
}

// scriptedAPI answers with the scripted results in order and repeats a
// setup not complete response once a script runs out.
type scriptedAPI struct {
	mu         sync.Mutex
	processes  []processResult
	searches   []searchResult
	listCalls  int
	searchPids []int
}

func (s *scriptedAPI) ListGameClientProcesses(ctx context.Context) (sanderling.Envelope[[]sanderling.GameClientProcess], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if len(s.processes) == 0 {
		return sanderling.Envelope[[]sanderling.GameClientProcess]{Kind: sanderling.KindSetupNotComplete}, nil
	}
	next := s.processes[0]
	s.processes = s.processes[1:]
	return next.res, next.err
}

func (s *scriptedAPI) SearchUIRootAddress(ctx context.Context, processId int) (sanderling.Envelope[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchPids = append(s.searchPids, processId)
	if len(s.searches) == 0 {
		return sanderling.Envelope[string]{Kind: sanderling.KindInProgress}, nil
	}
	next := s.searches[0]
	s.searches = s.searches[1:]
	return next.res, next.err
}

func setupNotComplete(n int) []processResult {
	out := make([]processResult, n)
	for i := range out {
		out[i].res.Kind = sanderling.KindSetupNotComplete
	}
	return out
}

func processList(processes ...sanderling.GameClientProcess) processResult {
	return processResult{res: sanderling.Completed(processes)}
}

func newTestLocator(api API) (*Locator, *telemetry.Recorder) {
	tel := telemetry.NewRecorder()
	return NewLocator(api, Options{PollInterval: time.Millisecond, MaxIterations: 100}, tel), tel
}

func TestWaitForProcessPollsUntilFound(t *testing.T) {
	first := sanderling.GameClientProcess{ProcessID: 4242, MainWindowID: "0x1"}
	second := sanderling.GameClientProcess{ProcessID: 5353, MainWindowID: "0x2"}

	for _, n := range []int{0, 1, 5, 99} {
		api := &scriptedAPI{processes: append(setupNotComplete(n), processList(first, second))}
		locator, _ := newTestLocator(api)

		process, err := locator.WaitForProcess(context.Background())
		require.NoError(t, err)
		require.Equal(t, first, process)
		require.Equal(t, n+1, api.listCalls)
	}
}

func TestWaitForProcessTimesOut(t *testing.T) {
	api := &scriptedAPI{processes: setupNotComplete(101)}
	locator, tel := newTestLocator(api)

	_, err := locator.WaitForProcess(context.Background())
	require.ErrorIs(t, err, ErrHandshakeTimeout)
	require.Equal(t, 100, api.listCalls)
	require.NotEmpty(t, tel.Find("warning", report_wait_for_process))
}

func TestWaitForProcessNoClientFound(t *testing.T) {
	api := &scriptedAPI{processes: []processResult{processList()}}
	locator, _ := newTestLocator(api)

	_, err := locator.WaitForProcess(context.Background())
	require.ErrorIs(t, err, ErrNoClientFound)
	require.Equal(t, 1, api.listCalls)
}

func TestWaitForProcessRetriesTransientErrors(t *testing.T) {
	api := &scriptedAPI{processes: []processResult{
		{err: sanderling.ErrTransport},
		{err: sanderling.ErrDecode},
		processList(sanderling.GameClientProcess{ProcessID: 1}),
	}}
	locator, _ := newTestLocator(api)

	process, err := locator.WaitForProcess(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, process.ProcessID)
	require.Equal(t, 3, api.listCalls)
}

func TestWaitForProcessCancelled(t *testing.T) {
	api := &scriptedAPI{}
	tel := telemetry.NewRecorder()
	locator := NewLocator(api, Options{PollInterval: time.Millisecond, MaxIterations: 1_000_000}, tel)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := locator.WaitForProcess(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForUIRootAddress(t *testing.T) {
	api := &scriptedAPI{searches: []searchResult{
		{res: sanderling.Envelope[string]{Kind: sanderling.KindInProgress}},
		{err: sanderling.ErrTransport},
		{res: sanderling.Envelope[string]{Kind: sanderling.KindSetupNotComplete}},
		{res: sanderling.Completed("0x7ff")},
	}}
	locator, _ := newTestLocator(api)

	address, err := locator.WaitForUIRootAddress(context.Background(), 4242)
	require.NoError(t, err)
	require.Equal(t, "0x7ff", address)
	require.Equal(t, []int{4242, 4242, 4242, 4242}, api.searchPids)
}

func TestWaitForUIRootAddressTimesOut(t *testing.T) {
	api := &scriptedAPI{}
	locator, _ := newTestLocator(api)

	_, err := locator.WaitForUIRootAddress(context.Background(), 4242)
	require.ErrorIs(t, err, ErrHandshakeTimeout)
	require.Len(t, api.searchPids, 100)
}

func TestConnect(t *testing.T) {
	api := &scriptedAPI{
		processes: append(setupNotComplete(2), processList(sanderling.GameClientProcess{ProcessID: 4242, MainWindowID: "0x1"})),
		searches:  []searchResult{{res: sanderling.Completed("0x7ff")}},
	}
	locator, _ := newTestLocator(api)

	handle, err := locator.Connect(context.Background())
	require.NoError(t, err)
	require.Equal(t, sanderling.ConnectionHandle{
		ProcessID:     4242,
		MainWindowID:  "0x1",
		UIRootAddress: "0x7ff",
	}, handle)
	require.Equal(t, []int{4242}, api.searchPids)
}

func TestConnectPropagatesErrors(t *testing.T) {
	api := &scriptedAPI{processes: []processResult{processList()}}
	locator, _ := newTestLocator(api)

	_, err := locator.Connect(context.Background())
	require.True(t, errors.Is(err, ErrNoClientFound))
	require.Empty(t, api.searchPids)

	// a second call starts from scratch
	api.processes = []processResult{processList(sanderling.GameClientProcess{ProcessID: 9})}
	api.searches = []searchResult{{res: sanderling.Completed("0x1")}}
	handle, err := locator.Connect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 9, handle.ProcessID)
}
