package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	pb "github.com/dmitrijs2005/fragkeeper/internal/proto"
	"github.com/dmitrijs2005/fragkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	reqIDKey  ctxKey = "reqID"
	callKey   ctxKey = "call"
)

// callInfo is set by the logging interceptor and filled in by the
// interceptors that run inside it.
type callInfo struct {
	userID string
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey).(string)
	return id
}

// accessTokenInterceptor authenticates every ObjectService call with the
// access_token metadata value. Other services (health) pass through.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if !strings.HasPrefix(info.FullMethod, "/"+pb.ServiceName+"/") {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if errors.Is(err, common.ErrAccessTokenExpired) {
		return nil, status.Error(codes.Unauthenticated, "token expired")
	}
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	if ci, ok := ctx.Value(callKey).(*callInfo); ok {
		ci.userID = userID
	}
	ctx = context.WithValue(ctx, userIDKey, userID)
	return handler(ctx, req)
}

// loggingInterceptor tags the call with a request id and logs its outcome.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	reqID, err := common.MakeRandHexString(8)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	ci := &callInfo{}
	ctx = context.WithValue(ctx, reqIDKey, reqID)
	ctx = context.WithValue(ctx, callKey, ci)
	start := time.Now()

	resp, err := handler(ctx, req)

	args := []any{
		"req_id", reqID,
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	}
	if ci.userID != "" {
		args = append(args, "user_id", ci.userID)
	}
	if err != nil {
		s.logger.Warn(ctx, "request failed", args...)
	} else {
		s.logger.Debug(ctx, "request served", args...)
	}
	return resp, err
}
