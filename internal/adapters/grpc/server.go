package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/application"
	"github.com/carerelay/carerelay/internal/domain"
)

type PairingInternalService interface {
	ValidatePairing(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDailyState(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type PairingInternalServer struct {
	service *application.Service
}

func NewPairingInternalServer(service *application.Service) *PairingInternalServer {
	return &PairingInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc PairingInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "carerelay.pairing.v1.PairingInternalService",
		HandlerType: (*PairingInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ValidatePairing",
				Handler:    validatePairingHandler(svc),
			},
			{
				MethodName: "GetDailyState",
				Handler:    getDailyStateHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "carerelay/proto/pairing/v1/pairing_internal.proto",
	}, svc)
}

func pairingIDFromRequest(req *structpb.Struct) (uuid.UUID, error) {
	raw := req.GetFields()["pairing_id"]
	if raw == nil || raw.GetStringValue() == "" {
		return uuid.Nil, status.Error(codes.InvalidArgument, "missing pairing_id")
	}
	pairingID, err := uuid.Parse(raw.GetStringValue())
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "invalid pairing_id")
	}
	return pairingID, nil
}

func (s *PairingInternalServer) ValidatePairing(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pairingID, err := pairingIDFromRequest(req)
	if err != nil {
		return nil, err
	}

	pairing, _, err := s.service.PairingSnapshot(ctx, pairingID)
	if err != nil {
		return nil, status.Error(codes.NotFound, "pairing not found")
	}

	resp, err := structpb.NewStruct(map[string]any{
		"valid":          pairing.Status == domain.PairingActive,
		"pairing_id":     pairing.PairingID.String(),
		"caregiver_id":   pairing.CaregiverID.String(),
		"dependent_ref":  pairing.DependentRef,
		"community_code": pairing.CommunityCode,
		"status":         string(pairing.Status),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *PairingInternalServer) GetDailyState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pairingID, err := pairingIDFromRequest(req)
	if err != nil {
		return nil, err
	}

	_, today, err := s.service.PairingSnapshot(ctx, pairingID)
	if err != nil {
		return nil, status.Error(codes.NotFound, "pairing not found")
	}

	fields := map[string]any{
		"pairing_id": pairingID.String(),
		"has_status": today != nil,
	}
	if today != nil {
		fields["status_date"] = today.StatusDate
		fields["state"] = string(today.State)
		fields["help_flag"] = today.HelpFlag
	}
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func validatePairingHandler(svc PairingInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.ValidatePairing(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/carerelay.pairing.v1.PairingInternalService/ValidatePairing",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.ValidatePairing(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func getDailyStateHandler(svc PairingInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.GetDailyState(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/carerelay.pairing.v1.PairingInternalService/GetDailyState",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.GetDailyState(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
