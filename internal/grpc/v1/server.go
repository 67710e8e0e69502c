package v1

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Totarae/shortlinks/internal/model"
	"github.com/Totarae/shortlinks/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName полное имя gRPC-сервиса.
const ServiceName = "shortlinks.v1.LinkService"

// LinkService операции над ссылками, которые обслуживает gRPC-сервер.
type LinkService interface {
	Create(ctx context.Context, longURL, code string) (*model.Link, error)
	List(ctx context.Context) ([]*model.Link, error)
	Get(ctx context.Context, code string) (*model.Link, error)
	Delete(ctx context.Context, code string) (*model.Link, error)
	Redirect(ctx context.Context, code string) (string, error)
}

// LinkServiceServer серверная часть shortlinks.v1.LinkService.
type LinkServiceServer interface {
	Create(context.Context, *CreateLinkRequest) (*Link, error)
	Get(context.Context, *CodeRequest) (*Link, error)
	List(context.Context, *ListLinksRequest) (*ListLinksResponse, error)
	Delete(context.Context, *CodeRequest) (*Link, error)
	Resolve(context.Context, *CodeRequest) (*ResolveResponse, error)
}

// GRPCServer реализует LinkServiceServer поверх сервиса ссылок.
type GRPCServer struct {
	Links   LinkService
	BaseURL string
}

// NewGRPCServer создаёт реализацию сервиса.
func NewGRPCServer(links LinkService, baseURL string) *GRPCServer {
	return &GRPCServer{Links: links, BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// NewServer создаёт grpc.Server с LinkService и стандартным health-сервисом.
func NewServer(links LinkService, baseURL string, logger *zap.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(LoggingInterceptor(logger)))
	srv.RegisterService(&LinkServiceDesc, NewGRPCServer(links, baseURL))

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

func (s *GRPCServer) Create(ctx context.Context, req *CreateLinkRequest) (*Link, error) {
	link, err := s.Links.Create(ctx, req.LongURL, req.Code)
	if err != nil {
		return nil, toStatus(err)
	}
	return toLink(link, s.BaseURL), nil
}

func (s *GRPCServer) Get(ctx context.Context, req *CodeRequest) (*Link, error) {
	if req.Code == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}
	link, err := s.Links.Get(ctx, req.Code)
	if err != nil {
		return nil, toStatus(err)
	}
	return toLink(link, s.BaseURL), nil
}

func (s *GRPCServer) List(ctx context.Context, _ *ListLinksRequest) (*ListLinksResponse, error) {
	links, err := s.Links.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &ListLinksResponse{Links: make([]*Link, 0, len(links))}
	for _, l := range links {
		resp.Links = append(resp.Links, toLink(l, s.BaseURL))
	}
	return resp, nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *CodeRequest) (*Link, error) {
	if req.Code == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}
	link, err := s.Links.Delete(ctx, req.Code)
	if err != nil {
		return nil, toStatus(err)
	}
	return toLink(link, s.BaseURL), nil
}

// Resolve учитывает переход так же, как GET /{code}.
func (s *GRPCServer) Resolve(ctx context.Context, req *CodeRequest) (*ResolveResponse, error) {
	if req.Code == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}
	longURL, err := s.Links.Redirect(ctx, req.Code)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ResolveResponse{LongURL: longURL}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrConflict):
		return status.Error(codes.AlreadyExists, "code already exists")
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, "link not found")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// LoggingInterceptor пишет одну запись журнала на каждый unary-вызов.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("gRPC Request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
