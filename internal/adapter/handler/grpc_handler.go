package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/core/service"
	"github.com/rl1809/mestakip/internal/port"
)

// JSONCodecName is the content-subtype clients select with
// grpc.CallContentSubtype to talk to InventoryService.
const JSONCodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type GetItemRequest struct {
	ID   int64  `json:"id,omitempty"`
	Slug string `json:"slug,omitempty"`
}

type SearchItemsRequest struct {
	Term string `json:"term"`
}

type SearchItemsResponse struct {
	Items []domain.ItemSearchResult `json:"items"`
}

type PlaceSaleResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Sale    *domain.Sale `json:"sale,omitempty"`
}

// InventoryServer is the contract served as inventory.InventoryService.
type InventoryServer interface {
	GetItem(context.Context, *GetItemRequest) (*domain.Item, error)
	SearchItems(context.Context, *SearchItemsRequest) (*SearchItemsResponse, error)
	PlaceSale(context.Context, *service.CheckoutRequest) (*PlaceSaleResponse, error)
}

func unaryHandler[Req any](call func(InventoryServer, context.Context, *Req) (any, error), method string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InventoryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/inventory.InventoryService/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(InventoryServer), ctx, req.(*Req))
		})
	}
}

var InventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: "inventory.InventoryService",
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetItem",
			Handler: unaryHandler(func(s InventoryServer, ctx context.Context, in *GetItemRequest) (any, error) {
				return s.GetItem(ctx, in)
			}, "GetItem"),
		},
		{
			MethodName: "SearchItems",
			Handler: unaryHandler(func(s InventoryServer, ctx context.Context, in *SearchItemsRequest) (any, error) {
				return s.SearchItems(ctx, in)
			}, "SearchItems"),
		},
		{
			MethodName: "PlaceSale",
			Handler: unaryHandler(func(s InventoryServer, ctx context.Context, in *service.CheckoutRequest) (any, error) {
				return s.PlaceSale(ctx, in)
			}, "PlaceSale"),
		},
	},
	Metadata: "inventory.proto",
}

type GRPCHandler struct {
	accounts AccountUseCase
	catalog  CatalogUseCase
	sales    SaleUseCase
	tokens   port.TokenIssuer
	log      *logrus.Logger
}

func NewGRPCHandler(uc UseCases, tokens port.TokenIssuer, log *logrus.Logger) *GRPCHandler {
	return &GRPCHandler{
		accounts: uc.Accounts,
		catalog:  uc.Catalog,
		sales:    uc.Sales,
		tokens:   tokens,
		log:      log,
	}
}

// Register mounts the service on s.
func (h *GRPCHandler) Register(s *grpc.Server) {
	s.RegisterService(&InventoryServiceDesc, h)
}

type grpcActorKey struct{}

// UnaryAuth resolves the bearer token in the "authorization" metadata the
// same way the HTTP middleware does.
func (h *GRPCHandler) UnaryAuth() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "authorization metadata required")
		}
		token, ok := strings.CutPrefix(values[0], "Bearer ")
		if !ok || token == "" {
			return nil, status.Error(codes.Unauthenticated, "invalid authorization metadata")
		}
		userID, err := h.tokens.Verify(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		user, err := h.accounts.GetUser(ctx, userID)
		if err != nil || !user.IsActive || user.Status == domain.ProfileInactive {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		return next(context.WithValue(ctx, grpcActorKey{}, *user), req)
	}
}

func grpcActor(ctx context.Context) domain.User {
	user, _ := ctx.Value(grpcActorKey{}).(domain.User)
	return user
}

func (h *GRPCHandler) GetItem(ctx context.Context, req *GetItemRequest) (*domain.Item, error) {
	h.log.Infof("gRPC Handler: Received GetItem request: ID=%d Slug=%q", req.ID, req.Slug)
	var (
		item *domain.Item
		err  error
	)
	switch {
	case req.Slug != "":
		item, err = h.catalog.GetItem(ctx, grpcActor(ctx), req.Slug)
	case req.ID > 0:
		item, err = h.catalog.GetItemByID(ctx, grpcActor(ctx), req.ID)
	default:
		return nil, status.Error(codes.InvalidArgument, "item id or slug is required")
	}
	if err != nil {
		h.log.Warnf("gRPC Handler: GetItem error: %v", err)
		return nil, mapErrorToGrpcStatus(err)
	}
	return item, nil
}

func (h *GRPCHandler) SearchItems(ctx context.Context, req *SearchItemsRequest) (*SearchItemsResponse, error) {
	items, err := h.catalog.SearchItems(ctx, grpcActor(ctx), req.Term)
	if err != nil {
		h.log.Warnf("gRPC Handler: SearchItems error: %v", err)
		return nil, mapErrorToGrpcStatus(err)
	}
	return &SearchItemsResponse{Items: items}, nil
}

// PlaceSale reports sold-out and duplicate requests in the response body
// rather than as RPC errors.
func (h *GRPCHandler) PlaceSale(ctx context.Context, req *service.CheckoutRequest) (*PlaceSaleResponse, error) {
	sale, err := h.sales.Checkout(ctx, grpcActor(ctx), *req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRequest) {
			return &PlaceSaleResponse{Success: false, Message: "duplicate request"}, nil
		}
		if errors.Is(err, service.ErrInsufficientStock) {
			return &PlaceSaleResponse{Success: false, Message: "sold out"}, nil
		}
		h.log.Warnf("gRPC Handler: PlaceSale error: %v", err)
		return nil, mapErrorToGrpcStatus(err)
	}
	return &PlaceSaleResponse{Success: true, Message: "sale accepted", Sale: sale}, nil
}

func mapErrorToGrpcStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrShuttingDown):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
