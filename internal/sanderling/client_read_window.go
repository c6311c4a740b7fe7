package sanderling

import (
	"context"
	"fmt"
)

const report_client_read_window = "client.read-from-window"

func readFromWindowArgs(windowId, uiRootAddress string, parse bool) []ReadFromWindowArgs {
	return []ReadFromWindowArgs{{
		WindowID:      windowId,
		UIRootAddress: uiRootAddress,
		ParseText:     parseTextFlag(parse),
	}}
}

func expectCompleted(kind Kind) error {
	switch kind {
	case KindCompleted:
		return nil
	case KindSetupNotComplete:
		return ErrSetupNotComplete
	default:
		return fmt.Errorf("%w: unexpected %s response", ErrDecode, kind)
	}
}

// ReadWindowText reads the window with the text flattened into tokens in
// on-screen order.
func (c *Client) ReadWindowText(ctx context.Context, windowId, uiRootAddress string) ([]string, error) {
	res, err := call[[]string](
		ctx, c,
		report_client_read_window,
		OpReadFromWindow,
		readFromWindowArgs(windowId, uiRootAddress, true),
	)
	if err != nil {
		return nil, err
	}
	err = expectCompleted(res.Kind)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// ReadWindow reads the window as a structured reading.
func (c *Client) ReadWindow(ctx context.Context, windowId, uiRootAddress string) (WindowReading, error) {
	res, err := call[ReadFromWindowPayload](
		ctx, c,
		report_client_read_window,
		OpReadFromWindow,
		readFromWindowArgs(windowId, uiRootAddress, false),
	)
	if err != nil {
		return WindowReading{}, err
	}
	err = expectCompleted(res.Kind)
	if err != nil {
		return WindowReading{}, err
	}
	if res.Value.Completed == nil {
		return WindowReading{}, fmt.Errorf("%w: reading is not completed", ErrDecode)
	}
	return *res.Value.Completed, nil
}
