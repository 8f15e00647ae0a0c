package grpcserver

import (
	"context"
	"time"

	"iris-go/internal/haptic"
	"iris-go/pkg/models"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client клиент gRPC сервиса препятствий
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient создает клиент поверх соединения
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Evaluate отправляет кадр на оценку
func (c *Client) Evaluate(ctx context.Context, frame models.FrameRequest) (*models.FrameResponse, error) {
	in, err := toStruct(frame)
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, evaluateMethod, in, out); err != nil {
		return nil, err
	}

	var resp models.FrameResponse
	if err := fromStruct(out, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PulseStream поток импульсов от сервера
type PulseStream struct {
	stream grpc.ClientStream
}

// Recv ждет следующий импульс
func (p *PulseStream) Recv() (haptic.Pulse, error) {
	msg := new(structpb.Struct)
	if err := p.stream.RecvMsg(msg); err != nil {
		return haptic.Pulse{}, err
	}

	fields := msg.GetFields()
	return haptic.Pulse{
		Obstacle: fields["obstacle"].GetStringValue(),
		Duration: time.Duration(fields["duration_ms"].GetNumberValue()) * time.Millisecond,
		At:       time.UnixMilli(int64(fields["at_ms"].GetNumberValue())),
	}, nil
}

// Alerts подписывается на импульсы. Поток закрывается отменой ctx.
func (c *Client) Alerts(ctx context.Context) (*PulseStream, error) {
	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], alertsMethod)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&structpb.Struct{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &PulseStream{stream: stream}, nil
}
