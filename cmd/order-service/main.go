// @title           EverCart Order Service
// @version         1.0
// @description     Checkout orders and payment verification for the EverCart storefront.
// @BasePath        /
// @securityDefinitions.apikey AdminToken
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/currency"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/evercart/internal/config"
	"github.com/MikeMC777/evercart/internal/order"
	"github.com/MikeMC777/evercart/internal/payment"
)

const serviceName = "evercart.order.v1.OrderService"

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cur, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		return fmt.Errorf("PAYMENT_CURRENCY: %w", err)
	}

	repo, closeStore, err := openStore(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer closeStore()

	gw, secret := newGateway(cfg)
	orders := order.NewService(repo, cur.String())
	payments := payment.NewService(repo, gw, secret, cur)

	srv := &http.Server{
		Addr: cfg.OrderSvcAddr,
		Handler: newRouter(routerDeps{
			orders:         orders,
			payments:       payments,
			adminTokenHash: cfg.AdminTokenHash,
			corsOrigins:    cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("order-service listening on %s", cfg.OrderSvcAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		log.Printf("order-service health (gRPC) on %s", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})

	if cfg.StalePaymentAfter > 0 {
		sweeper := order.NewSweeper(repo, cfg.StalePaymentAfter, cfg.SweepInterval)
		g.Go(func() error { return sweeper.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		healthSrv.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		log.Printf("order-service stopped")
		return err
	})

	return g.Wait()
}

// openStore connects to Postgres when a DSN is configured and falls back to the
// in-memory store otherwise.
func openStore(ctx context.Context, dsn string) (order.Repository, func(), error) {
	if dsn == "" {
		log.Printf("[order] POSTGRES_DSN not set, orders are kept in memory")
		return order.NewMemRepo(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := order.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return order.NewPGRepo(pool), pool.Close, nil
}

// newGateway returns the gateway and the secret that signs its callbacks.
func newGateway(cfg config.Config) (payment.Gateway, string) {
	if cfg.DemoPayments() {
		return payment.DemoGateway{}, cfg.RazorpayKeySecret
	}
	return payment.NewRazorpay(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.GatewayTimeout),
		cfg.RazorpayKeySecret
}
