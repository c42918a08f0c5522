package friends

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "friends.v1.FriendsService"

// FriendsServer is the server API of friends.v1.FriendsService. Every
// method takes and returns a google.protobuf.Struct.
type FriendsServer interface {
	GetRecommendations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordMood(context.Context, *structpb.Struct) (*structpb.Struct, error)

	SendFriendRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RespondFriendRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelFriendRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFriendRequests(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFriends(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveFriend(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)

	SendMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetConversation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListConversations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUnreadCount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(FriendsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FriendsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FriendsServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FullMethod returns the gRPC path of method, e.g.
// "/friends.v1.FriendsService/ListFriends".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ServiceDesc describes friends.v1.FriendsService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FriendsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetRecommendations", FriendsServer.GetRecommendations),
		unary("RecordMood", FriendsServer.RecordMood),
		unary("SendFriendRequest", FriendsServer.SendFriendRequest),
		unary("RespondFriendRequest", FriendsServer.RespondFriendRequest),
		unary("CancelFriendRequest", FriendsServer.CancelFriendRequest),
		unary("ListFriendRequests", FriendsServer.ListFriendRequests),
		unary("ListFriends", FriendsServer.ListFriends),
		unary("RemoveFriend", FriendsServer.RemoveFriend),
		unary("SearchUsers", FriendsServer.SearchUsers),
		unary("SendMessage", FriendsServer.SendMessage),
		unary("GetConversation", FriendsServer.GetConversation),
		unary("ListConversations", FriendsServer.ListConversations),
		unary("GetUnreadCount", FriendsServer.GetUnreadCount),
		unary("DeleteMessage", FriendsServer.DeleteMessage),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterFriendsServer attaches srv to s.
func RegisterFriendsServer(s grpc.ServiceRegistrar, srv FriendsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls FriendsService methods by name.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req.
func (c *Client) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
