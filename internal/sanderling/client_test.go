package sanderling

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"sigwatch/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

// fakeService answers every request with the next scripted response.
type fakeService struct {
	t         *testing.T
	mu        sync.Mutex
	responses [][]byte
	status    int
	requests  []Request
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	require.Equal(f.t, http.MethodPost, r.Method)
	body, err := io.ReadAll(r.Body)
	require.NoError(f.t, err)
	req, err := DecodeRequest(body)
	require.NoError(f.t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	if len(f.responses) == 0 {
		w.Write(EncodeSetupNotComplete())
		return
	}
	w.Write(f.responses[0])
	f.responses = f.responses[1:]
}

func newTestClient(t *testing.T, service *fakeService) (*Client, *telemetry.Recorder) {
	service.t = t
	server := httptest.NewServer(service)
	t.Cleanup(server.Close)

	tel := telemetry.NewRecorder()
	client := NewClient(ClientOptions{URL: server.URL + "/api/", Timeout: 5 * time.Second}, tel)
	return client, tel
}

func mustEncode(t *testing.T, payload any) []byte {
	t.Helper()
	body, err := EncodeCompleted(payload)
	require.NoError(t, err)
	return body
}

func TestListGameClientProcesses(t *testing.T) {
	service := &fakeService{responses: [][]byte{
		EncodeSetupNotComplete(),
		mustEncode(t, ListGameClientProcessesPayload{Processes: []GameClientProcess{{ProcessID: 7, MainWindowID: "w"}}}),
		mustEncode(t, ListGameClientProcessesPayload{Processes: []GameClientProcess{}}),
	}}
	client, _ := newTestClient(t, service)
	ctx := context.Background()

	res, err := client.ListGameClientProcesses(ctx)
	require.NoError(t, err)
	require.Equal(t, KindSetupNotComplete, res.Kind)

	res, err = client.ListGameClientProcesses(ctx)
	require.NoError(t, err)
	require.Equal(t, Completed([]GameClientProcess{{ProcessID: 7, MainWindowID: "w"}}), res)

	res, err = client.ListGameClientProcesses(ctx)
	require.NoError(t, err)
	require.Equal(t, KindCompleted, res.Kind)
	require.Empty(t, res.Value)

	require.Len(t, service.requests, 3)
	require.Equal(t, OpListGameClientProcesses, service.requests[0].Op)
	require.JSONEq(t, `[]`, string(service.requests[0].Args))
}

func TestSearchUIRootAddress(t *testing.T) {
	stage := func(s SearchStage) []byte {
		return mustEncode(t, SearchUIRootAddressPayload{Response: SearchUIRootAddressResult{ProcessID: 7, Stage: s}})
	}
	service := &fakeService{responses: [][]byte{
		stage(SearchStage{InProgress: &SearchInProgress{SearchBeginTimeMilliseconds: 1}}),
		stage(SearchStage{Completed: &SearchCompleted{}}),
		stage(SearchStage{Completed: &SearchCompleted{UIRootAddress: "0x7ff"}}),
		stage(SearchStage{}),
	}}
	client, _ := newTestClient(t, service)
	ctx := context.Background()

	res, err := client.SearchUIRootAddress(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, KindInProgress, res.Kind)

	res, err = client.SearchUIRootAddress(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, KindInProgress, res.Kind)

	res, err = client.SearchUIRootAddress(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, Completed("0x7ff"), res)

	_, err = client.SearchUIRootAddress(ctx, 7)
	require.ErrorIs(t, err, ErrDecode)

	var args []SearchUIRootAddressArgs
	require.NoError(t, json.Unmarshal(service.requests[0].Args, &args))
	require.Equal(t, []SearchUIRootAddressArgs{{ProcessID: 7}}, args)
}

func TestReadWindowText(t *testing.T) {
	tokens := []string{"Showing 30 results", "Solar1 <color=0xff>", "3 jumps", "5 Signatures in system", "Signatures in system"}
	inline, err := EncodeCompletedInline(tokens)
	require.NoError(t, err)

	service := &fakeService{responses: [][]byte{mustEncode(t, tokens), inline}}
	client, _ := newTestClient(t, service)
	ctx := context.Background()

	for range 2 {
		res, err := client.ReadWindowText(ctx, "0x1", "0x7ff")
		require.NoError(t, err)
		require.Equal(t, tokens, res)
	}

	var args []ReadFromWindowArgs
	require.NoError(t, json.Unmarshal(service.requests[0].Args, &args))
	require.Equal(t, []ReadFromWindowArgs{{WindowID: "0x1", UIRootAddress: "0x7ff", ParseText: "True"}}, args)

	_, err = client.ReadWindowText(ctx, "0x1", "0x7ff")
	require.ErrorIs(t, err, ErrSetupNotComplete)
}

func TestReadWindow(t *testing.T) {
	reading := WindowReading{
		ProcessID:                             7,
		WindowClientRectOffset:                WindowClientRectOffset{X: 8, Y: 31},
		ReadingID:                             "reading-1",
		MemoryReadingSerialRepresentationJSON: `{"children":[]}`,
	}
	service := &fakeService{responses: [][]byte{
		mustEncode(t, ReadFromWindowPayload{Completed: &reading}),
		mustEncode(t, ReadFromWindowPayload{}),
	}}
	client, _ := newTestClient(t, service)
	ctx := context.Background()

	res, err := client.ReadWindow(ctx, "0x1", "0x7ff")
	require.NoError(t, err)
	require.Equal(t, reading, res)

	var args []ReadFromWindowArgs
	require.NoError(t, json.Unmarshal(service.requests[0].Args, &args))
	require.Equal(t, "False", args[0].ParseText)

	_, err = client.ReadWindow(ctx, "0x1", "0x7ff")
	require.ErrorIs(t, err, ErrDecode)
}

func TestTransportFailures(t *testing.T) {
	service := &fakeService{status: http.StatusBadGateway}
	client, tel := newTestClient(t, service)

	_, err := client.ListGameClientProcesses(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	require.NotEmpty(t, tel.Find("warning", report_client_list_processes))

	unreachable := NewClient(ClientOptions{URL: "http://127.0.0.1:1/api/", Timeout: time.Second}, tel)
	_, err = unreachable.ReadWindowText(context.Background(), "0x1", "0x7ff")
	require.ErrorIs(t, err, ErrTransport)
}

func TestDecodeFailuresAreReported(t *testing.T) {
	service := &fakeService{responses: [][]byte{[]byte(`{"unexpected":true}`)}}
	client, tel := newTestClient(t, service)

	_, err := client.ListGameClientProcesses(context.Background())
	require.ErrorIs(t, err, ErrDecode)
	require.Len(t, tel.Find("broken", report_client_list_processes), 1)
}

func TestCancelledContext(t *testing.T) {
	service := &fakeService{}
	client, _ := newTestClient(t, service)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ListGameClientProcesses(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
