package v1

import (
	"context"

	"google.golang.org/grpc"
)

// LinkServiceDesc описание shortlinks.v1.LinkService для grpc.Server.RegisterService.
var LinkServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LinkServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Create", Handler: unaryHandler("Create", LinkServiceServer.Create)},
		{MethodName: "Get", Handler: unaryHandler("Get", LinkServiceServer.Get)},
		{MethodName: "List", Handler: unaryHandler("List", LinkServiceServer.List)},
		{MethodName: "Delete", Handler: unaryHandler("Delete", LinkServiceServer.Delete)},
		{MethodName: "Resolve", Handler: unaryHandler("Resolve", LinkServiceServer.Resolve)},
	},
	Streams: []grpc.StreamDesc{},
}

// FullMethod возвращает полное имя метода для grpc.ClientConn.Invoke.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(LinkServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(LinkServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
