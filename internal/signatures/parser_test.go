package signatures

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func window(records ...string) []string {
	tokens := []string{"Agency", "Signatures", StartMarker}
	tokens = append(tokens, records...)
	return append(tokens, EndMarker, "Combat Anomalies")
}

func requireEntries(t *testing.T, snapshot Snapshot, names []string, entries map[string]Entry) {
	t.Helper()
	require.Equal(t, names, snapshot.Names())
	for name, expected := range entries {
		actual, ok := snapshot.Get(name)
		require.True(t, ok, name)
		require.Equal(t, expected, actual, name)
	}
}

func TestParseSingleRecord(t *testing.T) {
	snapshot, err := Parse([]string{
		"Showing 30 results",
		"Solar1 <color=0xff0000>",
		"5 jumps",
		"3 Signatures in system",
		"Signatures in system",
	})
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.Len())
	require.Equal(t, 0, snapshot.Dropped())
	requireEntries(t, snapshot, []string{"Solar1"}, map[string]Entry{
		"Solar1": {Jumps: 5, Sigs: 3},
	})
}

func TestParseDropsMalformedRecords(t *testing.T) {
	snapshot, err := Parse(window(
		"Jita <color=0xffffffff>", "2 jumps", "4 Signatures in system",
		"Broken <color=0xff>", "abc jumps", "1 Signatures in system",
		"Amarr <color=0xff>", "7 jumps", "none Signatures in system",
		"Negative <color=0xff>", "-1 jumps", "1 Signatures in system",
		"J100000 <color=0xff00ff00>", "1 jump", "5 Signatures in system",
	))
	require.NoError(t, err)
	require.Equal(t, 3, snapshot.Dropped())
	requireEntries(t, snapshot, []string{"Jita", "J100000"}, map[string]Entry{
		"Jita":    {Jumps: 2, Sigs: 4},
		"J100000": {Jumps: 1, Sigs: 5},
	})
}

func TestParseIncompleteTail(t *testing.T) {
	snapshot, err := Parse(window(
		"Jita <color=0xff>", "2 jumps", "4 Signatures in system",
		"Perimeter <color=0xff>", "3 jumps",
	))
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.Dropped())
	requireEntries(t, snapshot, []string{"Jita"}, nil)
}

func TestParseDuplicatesOverwrite(t *testing.T) {
	snapshot, err := Parse(window(
		"Jita <color=0xff>", "2 jumps", "4 Signatures in system",
		"Amarr <color=0xff>", "9 jumps", "1 Signatures in system",
		"Jita <color=0x00>", "3 jumps", "6 Signatures in system",
	))
	require.NoError(t, err)
	requireEntries(t, snapshot, []string{"Jita", "Amarr"}, map[string]Entry{
		"Jita":  {Jumps: 3, Sigs: 6},
		"Amarr": {Jumps: 9, Sigs: 1},
	})
}

func TestParseNameWithoutMarkup(t *testing.T) {
	snapshot, err := Parse(window("Dodixie", "0 jumps", "0 Signatures in system"))
	require.NoError(t, err)
	requireEntries(t, snapshot, []string{"Dodixie"}, map[string]Entry{"Dodixie": {}})
}

func TestParseWindowNotReady(t *testing.T) {
	testCases := []struct {
		name   string
		tokens []string
	}{
		{name: "empty", tokens: nil},
		{name: "no start marker", tokens: []string{"Jita <color=0xff>", "2 jumps", "4 Signatures in system", EndMarker}},
		{name: "no end marker", tokens: []string{StartMarker, "Jita <color=0xff>", "2 jumps", "4 Signatures in system"}},
		{name: "end marker only before start", tokens: []string{EndMarker, StartMarker, "Jita <color=0xff>"}},
		{name: "start marker is last", tokens: []string{EndMarker, StartMarker}},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(test.tokens)
			require.ErrorIs(t, err, ErrWindowNotReady)
		})
	}
}

func TestParseEmptyRegion(t *testing.T) {
	snapshot, err := Parse(window())
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.Len())
}

func TestLeadingInt(t *testing.T) {
	testCases := []struct {
		text     string
		expected int
		ok       bool
	}{
		{text: "5", expected: 5, ok: true},
		{text: "  12", expected: 12, ok: true},
		{text: "1 jump", expected: 1, ok: true},
		{text: "3.7", expected: 3, ok: true},
		{text: "+4", expected: 4, ok: true},
		{text: "-2", expected: -2, ok: true},
		{text: "", ok: false},
		{text: "abc", ok: false},
		{text: "-", ok: false},
		{text: "99999999999999999999", ok: false},
	}

	for _, test := range testCases {
		n, ok := leadingInt(test.text)
		require.Equal(t, test.ok, ok, test.text)
		if test.ok {
			require.Equal(t, test.expected, n, test.text)
		}
	}
}
