// Package proto defines the fragkeeper.v1.ObjectService gRPC contract over
// protobuf well-known types, with the server registration and client stub.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "fragkeeper.v1.ObjectService"

// Full method names.
const (
	ObjectService_Upload_FullMethodName   = "/" + ServiceName + "/Upload"
	ObjectService_Download_FullMethodName = "/" + ServiceName + "/Download"
	ObjectService_Stat_FullMethodName     = "/" + ServiceName + "/Stat"
)

// Response fields of Upload and Stat.
const (
	FieldObjectID      = "object_id"
	FieldCreatedAt     = "created_at"
	FieldFragmentCount = "fragment_count"
	FieldSize          = "size"
	FieldKeyMode       = "key_mode"
)

// ObjectServiceServer is implemented by the server.
//
//	Upload(BytesValue plaintext) returns (Struct object info)
//	Download(StringValue object id) returns (BytesValue plaintext)
//	Stat(StringValue object id) returns (Struct object info)
type ObjectServiceServer interface {
	Upload(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	Download(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Stat(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterObjectServiceServer(s grpc.ServiceRegistrar, srv ObjectServiceServer) {
	s.RegisterService(&ObjectService_ServiceDesc, srv)
}

func _ObjectService_Upload_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ObjectServiceServer).Upload(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ObjectService_Upload_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ObjectServiceServer).Upload(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _ObjectService_Download_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ObjectServiceServer).Download(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ObjectService_Download_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ObjectServiceServer).Download(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _ObjectService_Stat_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ObjectServiceServer).Stat(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ObjectService_Stat_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ObjectServiceServer).Stat(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var ObjectService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ObjectServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Upload", Handler: _ObjectService_Upload_Handler},
		{MethodName: "Download", Handler: _ObjectService_Download_Handler},
		{MethodName: "Stat", Handler: _ObjectService_Stat_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fragkeeper/v1/object.proto",
}

// ObjectServiceClient is the client API for ObjectService.
type ObjectServiceClient interface {
	Upload(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Download(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Stat(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type objectServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewObjectServiceClient(cc grpc.ClientConnInterface) ObjectServiceClient {
	return &objectServiceClient{cc}
}

func (c *objectServiceClient) Upload(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ObjectService_Upload_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *objectServiceClient) Download(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, ObjectService_Download_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *objectServiceClient) Stat(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ObjectService_Stat_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
