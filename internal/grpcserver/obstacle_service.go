// Package grpcserver отдает оценку кадров и поток тактильных импульсов по gRPC.
//
// Сообщения передаются как google.protobuf.Struct, поэтому сервису не нужен
// сгенерированный код.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"iris-go/internal/haptic"
	"iris-go/internal/service"
	"iris-go/pkg/models"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName полное имя gRPC сервиса
const ServiceName = "iris.v1.ObstacleService"

const (
	evaluateMethod = "/" + ServiceName + "/Evaluate"
	alertsMethod   = "/" + ServiceName + "/Alerts"
)

// alertBuffer размер буфера импульсов одного подписчика
const alertBuffer = 8

// ObstacleService серверная часть gRPC сервиса
type ObstacleService interface {
	Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Alerts(req *structpb.Struct, stream grpc.ServerStream) error
}

// ServiceDesc описание gRPC сервиса для grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ObstacleService)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Evaluate",
			Handler:    evaluateHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Alerts",
			Handler:       alertsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "iris/v1/obstacle.proto",
}

func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ObstacleService).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: evaluateMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ObstacleService).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func alertsHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ObstacleService).Alerts(in, stream)
}

// Server реализация ObstacleService
type Server struct {
	analyzer *service.FrameAnalyzer
	pulses   *haptic.Broadcaster
	logger   *logrus.Logger
}

// NewServer создает gRPC сервис препятствий
func NewServer(analyzer *service.FrameAnalyzer, pulses *haptic.Broadcaster, logger *logrus.Logger) *Server {
	return &Server{
		analyzer: analyzer,
		pulses:   pulses,
		logger:   logger,
	}
}

// Register регистрирует сервис на gRPC сервере
func (s *Server) Register(registrar grpc.ServiceRegistrar) {
	registrar.RegisterService(&ServiceDesc, s)
}

// Evaluate оценивает один кадр
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var frame models.FrameRequest
	if err := fromStruct(req, &frame); err != nil {
		s.logger.Errorf("Ошибка разбора кадра gRPC: %v", err)
		return nil, status.Error(codes.InvalidArgument, "invalid frame")
	}

	resp, err := s.analyzer.AnalyzeFrame(ctx, frame, service.SourceGRPC)
	if errors.Is(err, service.ErrFutureTimestamp) {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err != nil {
		return nil, status.FromContextError(err).Err()
	}

	out, err := toStruct(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// Alerts передает клиенту тактильные импульсы, пока он не отключится
func (s *Server) Alerts(_ *structpb.Struct, stream grpc.ServerStream) error {
	pulses, cancel := s.pulses.Subscribe(alertBuffer)
	defer cancel()

	s.logger.Info("Клиент подписался на импульсы")
	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Клиент отписался от импульсов")
			return nil
		case pulse, ok := <-pulses:
			if !ok {
				return nil
			}
			msg, err := structpb.NewStruct(map[string]interface{}{
				"obstacle":    pulse.Obstacle,
				"duration_ms": float64(pulse.Duration.Milliseconds()),
				"at_ms":       float64(pulse.At.UnixMilli()),
			})
			if err != nil {
				return status.Errorf(codes.Internal, "encode pulse: %v", err)
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
		}
	}
}

// toStruct кодирует значение в google.protobuf.Struct через JSON
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

// fromStruct декодирует google.protobuf.Struct в значение через JSON
func fromStruct(s *structpb.Struct, v interface{}) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal struct: %w", err)
	}
	return nil
}
