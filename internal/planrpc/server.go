package planrpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/funvibe/matchcore/internal/backend"
	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/planstore"
	"github.com/funvibe/matchcore/internal/wire"
)

// DefaultFile names units submitted without a file name.
const DefaultFile = "<rpc>"

// Server answers PlanService calls by running the lowering pipeline on the
// submitted source.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *planstore.Store
	schema *schema
	grpc   *grpc.Server
}

// Option configures a Server.
type Option func(*Server)

// WithStore records every request's run in st.
func WithStore(st *planstore.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithServerOptions passes opts to the underlying grpc.Server.
func WithServerOptions(opts ...grpc.ServerOption) Option {
	return func(s *Server) { s.grpc = grpc.NewServer(opts...) }
}

func NewServer(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	sch, err := loadSchema()
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, logger: logger, schema: sch}
	for _, opt := range opts {
		opt(s)
	}
	if s.grpc == nil {
		s.grpc = grpc.NewServer()
	}
	s.grpc.RegisterService(s.serviceDesc(), s)
	return s, nil
}

func (s *Server) serviceDesc() *grpc.ServiceDesc {
	sd := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*interface{})(nil),
		Metadata:    s.schema.file.GetName(),
	}
	for _, md := range []*desc.MethodDescriptor{s.schema.lower, s.schema.check} {
		md := md
		sd.Methods = append(sd.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				h := srv.(*Server)
				in := dynamic.NewMessage(md.GetInputType())
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return h.handle(ctx, md, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPath(md)}
				return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
					return h.handle(ctx, md, req.(*dynamic.Message))
				})
			},
		})
	}
	return sd
}

func (s *Server) handle(ctx context.Context, md *desc.MethodDescriptor, in *dynamic.Message) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	file := stringField(in, "file")
	if file == "" {
		file = DefaultFile
	}
	pctx := s.lower(file, stringField(in, "source"))
	report := pctx.Report()

	out := dynamic.NewMessage(md.GetOutputType())
	out.SetFieldByName("run_id", pctx.RunID)
	if err := addDiagnostics(out, "diagnostics", report); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	switch md.GetName() {
	case "Check":
		out.SetFieldByName("ok", diagnostics.Count(report, diagnostics.SeverityError) == 0)
	case "Lower":
		plans := pctx.Plans()
		data, err := wire.EncodePlans(wire.NewPlanSet(file, pctx.RunID, plans), boolField(in, "indent"))
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		out.SetFieldByName("plans_json", string(data))
		smd := out.GetMessageDescriptor().FindFieldByName("plans").GetMessageType()
		for i := range plans {
			sm, err := summaryMessage(smd, &plans[i])
			if err != nil {
				return nil, status.Error(codes.Internal, err.Error())
			}
			out.AddRepeatedFieldByName("plans", sm)
		}
	default:
		return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", md.GetName())
	}

	s.logger.Info("plan request",
		slog.String("method", md.GetName()),
		slog.String("file", file),
		slog.String("run", pctx.RunID),
		slog.Int("plans", len(pctx.Plans())),
		slog.Int("diagnostics", len(report)))
	return out, nil
}

func (s *Server) lower(file, source string) *pipeline.PipelineContext {
	var extra []pipeline.Processor
	if s.store != nil {
		extra = append(extra, &planstore.StoreProcessor{Store: s.store})
	}
	return backend.NewPipeline(extra...).Run(pipeline.NewContext(file, source, s.cfg))
}

// Serve accepts connections on lis until Stop or GracefulStop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("plan service listening", slog.String("addr", lis.Addr().String()))
	if err := s.grpc.Serve(lis); err != nil {
		return fmt.Errorf("serving plan service: %w", err)
	}
	return nil
}

// ListenAndServe listens on the configured address.
func (s *Server) ListenAndServe() error {
	lis, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(lis)
}

func (s *Server) GracefulStop() { s.grpc.GracefulStop() }

func (s *Server) Stop() { s.grpc.Stop() }
