package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"productshot/config"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ImageServiceName = "productshot.v1.ImageService"
	GenerateMethod   = "/" + ImageServiceName + "/Generate"
)

// RPCClient reaches a generation worker over gRPC. Request and response
// travel as google.protobuf.Struct carrying the same JSON shape the HTTP
// service uses, and failures land in the same taxonomy.
type RPCClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	log     *log.Logger
}

func NewRPCClient(rpc config.RpcConfig, gen config.GenerationConfig, opts ...grpc.DialOption) (*RPCClient, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(fmt.Sprint(rpc.Peer, ":", rpc.Port), dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("error creating rpc client: %w", err)
	}
	return NewRPCClientConn(conn, gen.Timeout()), nil
}

// NewRPCClientConn wraps an existing connection. The client owns conn from
// then on and closes it in Close.
func NewRPCClientConn(conn *grpc.ClientConn, timeout time.Duration) *RPCClient {
	if timeout <= 0 {
		timeout = config.DefaultTimeoutMs * time.Millisecond
	}
	return &RPCClient{
		conn:    conn,
		timeout: timeout,
		log:     log.With("component", "generation", "transport", "grpc"),
	}
}

func (c *RPCClient) Generate(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, unknownError(err)
	}
	in := &structpb.Struct{}
	if err := protojson.Unmarshal(payload, in); err != nil {
		return nil, unknownError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, GenerateMethod, in, out); err != nil {
		gerr := classifyRPC(ctx, err)
		c.log.Warn("generation failed", "code", gerr.Code(), "dur", time.Since(start).String(), "err", err)
		return nil, gerr
	}

	raw, err := protojson.Marshal(out)
	if err != nil {
		return nil, unknownError(err)
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, unknownError(err)
	}

	c.log.Info("generation completed", "images", len(resp.Images), "success", resp.Success, "dur", time.Since(start).String())
	return &resp, nil
}

func (c *RPCClient) Close() error {
	return c.conn.Close()
}

func classifyRPC(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return timeoutError(err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return unknownError(err)
	}
	switch st.Code() {
	case codes.DeadlineExceeded:
		return timeoutError(err)
	case codes.Unavailable:
		return networkError(err)
	case codes.Canceled:
		return unknownError(err)
	}
	code := httpStatusFromCode(st.Code())
	return httpError(code, st.Message(), st.Code().String())
}

// httpStatusFromCode follows the usual gRPC to HTTP status mapping.
func httpStatusFromCode(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
