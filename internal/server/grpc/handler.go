package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	pb "github.com/dmitrijs2005/fragkeeper/internal/proto"
	"github.com/dmitrijs2005/fragkeeper/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Upload(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	info, err := s.objects.Upload(ctx, userID, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return infoToStruct(info)
}

func (s *GRPCServer) Download(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "object id required")
	}

	plaintext, err := s.objects.Download(ctx, userID, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.Bytes(plaintext), nil
}

func (s *GRPCServer) Stat(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "object id required")
	}

	info, err := s.objects.Stat(ctx, userID, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return infoToStruct(info)
}

func infoToStruct(info *services.ObjectInfo) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]any{
		pb.FieldObjectID:      info.ObjectID,
		pb.FieldCreatedAt:     info.CreatedAt.UTC().Format(time.RFC3339),
		pb.FieldFragmentCount: info.FragmentCount,
		pb.FieldSize:          info.Size,
		pb.FieldKeyMode:       info.KeyMode,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// toStatus maps service errors to gRPC status codes. Unknown and foreign
// objects share one code and message.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrAccessDenied):
		return status.Error(codes.NotFound, "object not found")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrAccessTokenExpired):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.FailedPrecondition, "object token expired")
	case errors.Is(err, common.ErrIntegrity):
		return status.Error(codes.DataLoss, "integrity check failed")
	case errors.Is(err, common.ErrMissingFragment),
		errors.Is(err, common.ErrDuplicateFragment),
		errors.Is(err, common.ErrUnexpectedFragment):
		return status.Error(codes.DataLoss, "fragment set incomplete or inconsistent")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		s.logger.Error(ctx, "internal error", "req_id", requestIDFromContext(ctx), "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
