package sanderling

import (
	"context"
	"fmt"
)

const report_client_search_ui_root = "client.search-ui-root-address"

// SearchUIRootAddress asks the service for the progress of the ui root
// search of a process. The search is started by the first call, a completed
// envelope carries the non-empty root address.
func (c *Client) SearchUIRootAddress(ctx context.Context, processId int) (Envelope[string], error) {
	res, err := call[SearchUIRootAddressPayload](
		ctx, c,
		report_client_search_ui_root,
		OpSearchUIRootAddress,
		[]SearchUIRootAddressArgs{{ProcessID: processId}},
	)
	if err != nil {
		return Envelope[string]{}, err
	}
	if res.Kind != KindCompleted {
		return Envelope[string]{Kind: res.Kind}, nil
	}
	return stageEnvelope(res.Value.Response.Stage)
}

func stageEnvelope(stage SearchStage) (Envelope[string], error) {
	switch {
	case stage.Completed != nil && stage.Completed.UIRootAddress != "":
		return Completed(stage.Completed.UIRootAddress), nil
	// a completed search without an address is not usable yet
	case stage.Completed != nil, stage.InProgress != nil:
		return Envelope[string]{Kind: KindInProgress}, nil
	default:
		return Envelope[string]{}, fmt.Errorf("%w: search stage is neither in progress nor completed", ErrDecode)
	}
}
