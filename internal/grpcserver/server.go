// Package grpcserver implements the JobService gRPC server.
//
// It delegates all business logic to tracker.Service and handles
// only the gRPC transport concerns: metadata extraction, error mapping,
// and conversion between the domain model and Struct messages.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"jobtracker/tracker-service/internal/auth"
	"jobtracker/tracker-service/internal/tracker"
)

// SessionTokenMetadata carries a raw session token when the caller is not a
// trusted gateway.
const SessionTokenMetadata = "x-session-token"

// Server implements JobServiceServer.
type Server struct {
	svc         *tracker.Service
	sessions    *auth.SessionResolver
	trustHeader bool
}

var _ JobServiceServer = (*Server)(nil)

// NewServer constructs a gRPC Server backed by the given tracker.Service.
// sessions may be nil; trustHeader enables x-user-id metadata.
func NewServer(svc *tracker.Service, sessions *auth.SessionResolver, trustHeader bool) *Server {
	return &Server{svc: svc, sessions: sessions, trustHeader: trustHeader}
}

// Register creates a grpc.Server with logging and registers s on it.
func Register(s *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(logUnary))
	gs := grpc.NewServer(opts...)
	gs.RegisterService(&ServiceDesc, s)
	return gs
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// ListJobs returns {"jobs": [...]} for the caller.
func (s *Server) ListJobs(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	apps, err := s.svc.List(ctx, userID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"jobs": apps})
}

// CreateJob takes the REST create body and returns the new job.
func (s *Server) CreateJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	var in tracker.CreateInput
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	app, err := s.svc.Create(ctx, userID, in)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(app)
}

// UpdateJob takes {"id": ..., "patch": {...}} where patch follows the REST
// partial update rules.
func (s *Server) UpdateJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	id := req.GetFields()["id"].GetStringValue()
	var in tracker.UpdateInput
	if patch := req.GetFields()["patch"].GetStructValue(); patch != nil {
		if err := fromStruct(patch, &in); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}
	app, err := s.svc.Update(ctx, userID, id, in)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(app)
}

// DeleteJob takes {"id": ...} and returns {"ok": true}.
func (s *Server) DeleteJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.svc.Delete(ctx, userID, req.GetFields()["id"].GetStringValue()); err != nil {
		return nil, toGRPCError(err)
	}
	return structpb.NewStruct(map[string]any{"ok": true})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx extracts the caller from gRPC metadata: the x-user-id value
// forwarded by a trusted gateway, or a session token.
func (s *Server) userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	if s.trustHeader {
		if vals := md.Get(auth.UserIDHeader); len(vals) > 0 && vals[0] != "" {
			return vals[0], nil
		}
	}
	if s.sessions != nil {
		if vals := md.Get(SessionTokenMetadata); len(vals) > 0 {
			uid, err := s.sessions.Lookup(ctx, vals[0])
			if err != nil {
				log.WithField("component", "grpc").WithError(err).Error("session lookup failed")
				return "", status.Error(codes.Internal, "internal server error")
			}
			if uid != "" {
				return uid, nil
			}
		}
	}
	return "", status.Error(codes.Unauthenticated, "Unauthorized")
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	if errors.Is(err, tracker.ErrUnauthenticated) {
		return status.Error(codes.Unauthenticated, "Unauthorized")
	}
	if errors.Is(err, tracker.ErrNotFound) {
		return status.Error(codes.NotFound, "Job not found")
	}
	var ve *tracker.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Msg)
	}
	log.WithField("component", "grpc").WithError(err).Error("rpc failed")
	return status.Error(codes.Internal, "internal server error")
}

// toStruct converts v through its JSON form so gRPC clients see the same
// field names as REST clients.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.WithFields(log.Fields{
		"component": "grpc",
		"method":    info.FullMethod,
		"code":      status.Code(err).String(),
		"duration":  time.Since(start).String(),
	}).Info("rpc")
	return resp, err
}
