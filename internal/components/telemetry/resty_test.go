package telemetry

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-test", "yes")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "resty")
	tel := NewRecorder()
	output, err := NewFilesystemOutput(dir, tel)
	require.NoError(t, err)

	client := resty.New()
	InstrumentResty(client, tel, output)

	for range 2 {
		_, err = client.R().SetBody([]byte(`{"ping":1}`)).Post(server.URL)
		require.NoError(t, err)
	}

	require.Len(t, tel.Find("debug", report_resty_request), 2)
	require.Len(t, tel.Find("debug", report_resty_response), 2)

	contents, err := os.ReadFile(filepath.Join(dir, "2"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "POST "+server.URL)
	require.Contains(t, string(contents), `{"ping":1}`)
	require.Contains(t, string(contents), "X-Test: yes")
	require.Contains(t, string(contents), `{"ok":true}`)
}

func TestInstrumentRestyErrors(t *testing.T) {
	tel := NewRecorder()
	client := resty.New()
	InstrumentResty(client, tel, nil)

	_, err := client.R().Post("http://127.0.0.1:1/")
	require.Error(t, err)
	require.Len(t, tel.Find("warning", report_resty_response), 1)
}
