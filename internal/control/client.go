package control

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client talks to a running messenger over its control socket.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the control socket at socketPath.
func Dial(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial control socket: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Status returns the client's state summary.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod("Status"), &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// ListChats returns the loaded chats.
func (c *Client) ListChats(ctx context.Context) ([]map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod("ListChats"), &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	var chats []map[string]any
	for _, v := range out.GetFields()["chats"].GetListValue().GetValues() {
		chats = append(chats, v.GetStructValue().AsMap())
	}
	return chats, nil
}

// SelectChannel switches the active channel.
func (c *Client) SelectChannel(ctx context.Context, id string) (map[string]any, error) {
	return c.invokeStruct(ctx, "SelectChannel", map[string]any{"id": id})
}

// Send sends text to the active channel.
func (c *Client) Send(ctx context.Context, text string) (map[string]any, error) {
	return c.invokeStruct(ctx, "Send", map[string]any{"text": text})
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.conn.Invoke(ctx, fullMethod("Logout"), &emptypb.Empty{}, new(emptypb.Empty))
}

func (c *Client) invokeStruct(ctx context.Context, method string, fields map[string]any) (map[string]any, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(method), in, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
