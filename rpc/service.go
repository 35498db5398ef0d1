// Package rpc exposes a goap planner as a Connect service.
//
// Requests and responses are google.protobuf.Struct messages, so the service
// needs no generated code and answers plain JSON as well as protobuf:
//
//	curl -H 'Content-Type: application/json' \
//	    -d '{"goal": {"hasAxe": true}, "actions": [{"name": "buyAxe", "effects": {"hasAxe": true}}]}' \
//	    http://localhost:8080/goap.v1.PlannerService/Plan
package rpc

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/goap/goap"
)

const (
	PlannerServiceName = "goap.v1.PlannerService"

	PlannerServicePlanProcedure = "/" + PlannerServiceName + "/Plan"
)

// Planner is the part of *goap.Planner the service needs.
type Planner interface {
	Plan(ctx context.Context, actions []*goap.Action, current, goal *goap.State) (*goap.Result, error)
}

// NewHandler builds the service handler and returns the path it should be
// mounted on.
//
//	mux.Handle(rpc.NewHandler(planner))
//
// A search that stops early fails with ResourceExhausted, Canceled or
// DeadlineExceeded and carries the partial result as an error detail.
func NewHandler(planner Planner, opts ...connect.HandlerOption) (string, http.Handler) {
	s := &service{planner: planner}
	plan := connect.NewUnaryHandler(PlannerServicePlanProcedure, s.plan, opts...)

	return "/" + PlannerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PlannerServicePlanProcedure:
			plan.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type service struct {
	planner Planner
}

func (s *service) plan(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	p, err := DecodeProblem(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	result, err := s.planner.Plan(ctx, p.Actions, p.Current, p.Goal)
	if err != nil {
		cerr := connect.NewError(codeOf(err), err)
		if result != nil {
			if detail, derr := connect.NewErrorDetail(EncodeResult(result)); derr == nil {
				cerr.AddDetail(detail)
			}
		}
		return nil, cerr
	}

	return connect.NewResponse(EncodeResult(result)), nil
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, goap.ErrNodeLimit):
		return connect.CodeResourceExhausted
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}
