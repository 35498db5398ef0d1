package rpc

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/goap/goap"
)

// Client calls a remote PlannerService.
type Client struct {
	plan *connect.Client[structpb.Struct, structpb.Struct]
}

// NewClient returns a client for the service at baseURL
// (e.g. "http://localhost:8080").
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		plan: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+PlannerServicePlanProcedure, opts...),
	}
}

// Plan sends p to the server. When the server stopped the search early, the
// returned error is a *connect.Error and the response, if the server sent
// one, holds the best plan it found.
func (c *Client) Plan(ctx context.Context, p goap.Problem) (*PlanResponse, error) {
	req, err := EncodeProblem(p)
	if err != nil {
		return nil, err
	}

	res, err := c.plan.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return partialResult(err), err
	}
	return DecodeResult(res.Msg)
}

func partialResult(err error) *PlanResponse {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return nil
	}
	for _, detail := range cerr.Details() {
		msg, derr := detail.Value()
		if derr != nil {
			continue
		}
		st, ok := msg.(*structpb.Struct)
		if !ok {
			continue
		}
		if resp, derr := DecodeResult(st); derr == nil {
			return resp
		}
	}
	return nil
}
