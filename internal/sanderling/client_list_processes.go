package sanderling

import "context"

const report_client_list_processes = "client.list-processes"

// ListGameClientProcesses lists the game client processes the service can
// see. A completed envelope may carry an empty list.
func (c *Client) ListGameClientProcesses(ctx context.Context) (Envelope[[]GameClientProcess], error) {
	res, err := call[ListGameClientProcessesPayload](
		ctx, c,
		report_client_list_processes,
		OpListGameClientProcesses,
		[]any{},
	)
	if err != nil {
		return Envelope[[]GameClientProcess]{}, err
	}
	if res.Kind != KindCompleted {
		return Envelope[[]GameClientProcess]{Kind: res.Kind}, nil
	}
	return Completed(res.Value.Processes), nil
}
