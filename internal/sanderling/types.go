package sanderling

// ConnectionHandle is everything needed to read a window of a running game
// client. It is only valid for the client process it was made for.
type ConnectionHandle struct {
	ProcessID     int
	MainWindowID  string
	UIRootAddress string
}

type GameClientProcess struct {
	ProcessID        int    `json:"processId"`
	MainWindowID     string `json:"mainWindowId"`
	MainWindowTitle  string `json:"mainWindowTitle"`
	MainWindowZIndex int    `json:"mainWindowZIndex"`
}

// The payload types below are the documents carried inside a completed
// response for each operation.

type ListGameClientProcessesPayload struct {
	Processes []GameClientProcess `json:"ListGameClientProcessesResponse"`
}

type SearchInProgress struct {
	SearchBeginTimeMilliseconds int64 `json:"searchBeginTimeMilliseconds"`
	CurrentTimeMilliseconds     int64 `json:"currentTimeMilliseconds"`
}

type SearchCompleted struct {
	UIRootAddress string `json:"uiRootAddress"`
}

// SearchStage has exactly one of its fields set.
type SearchStage struct {
	InProgress *SearchInProgress `json:"SearchUIRootAddressInProgress,omitempty"`
	Completed  *SearchCompleted  `json:"SearchUIRootAddressCompleted,omitempty"`
}

type SearchUIRootAddressResult struct {
	ProcessID int         `json:"processId"`
	Stage     SearchStage `json:"stage"`
}

type SearchUIRootAddressPayload struct {
	Response SearchUIRootAddressResult `json:"SearchUIRootAddressResponse"`
}

type WindowClientRectOffset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WindowReading is a structured, unparsed reading of a window.
type WindowReading struct {
	ProcessID                             int                    `json:"processId"`
	WindowClientRectOffset                WindowClientRectOffset `json:"windowClientRectOffset"`
	ReadingID                             string                 `json:"readingId"`
	MemoryReadingSerialRepresentationJSON string                 `json:"memoryReadingSerialRepresentationJson"`
}

type ReadFromWindowPayload struct {
	Completed *WindowReading `json:"Completed,omitempty"`
}
