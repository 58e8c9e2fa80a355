package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/currency"

	"github.com/MikeMC777/evercart/internal/checkout"
	"github.com/MikeMC777/evercart/internal/order"
	"github.com/MikeMC777/evercart/internal/payment"
)

func main() {
	app := &cli.App{
		Name:  "checkout-sim",
		Usage: "Drive a full EverCart checkout against an order-service or in-process",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "order-service URL; empty runs the services in-process with demo payments",
				EnvVars: []string{"EVERCART_URL"},
			},
			&cli.StringFlag{
				Name:  "owner",
				Usage: "owner account id (random when empty)",
			},
			&cli.StringFlag{
				Name:  "method",
				Usage: "payment method: online or cod",
				Value: string(order.MethodOnline),
			},
			&cli.IntFlag{
				Name:  "items",
				Usage: "number of random products in the cart",
				Value: 2,
			},
			&cli.StringFlag{
				Name:    "secret",
				Usage:   "gateway secret used to sign simulated callbacks",
				EnvVars: []string{"RAZORPAY_KEY_SECRET"},
			},
			&cli.BoolFlag{
				Name:  "dismiss",
				Usage: "close the gateway window on the first attempt, then retry",
			},
			&cli.StringFlag{
				Name:  "decline",
				Usage: "decline the first attempt with this reason, then retry",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "HTTP timeout for order-service calls",
				Value: 10 * time.Second,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := newAPI(c)
	owner := c.String("owner")
	if owner == "" {
		owner = uuid.NewString()
	}

	cart := checkout.NewCart()
	unsubscribe := cart.Subscribe(func(items []order.LineItem) {
		fmt.Printf("cart: %d line(s)\n", len(items))
	})
	defer unsubscribe()
	for range c.Int("items") {
		if err := cart.Add(randomItem()); err != nil {
			return err
		}
	}
	fmt.Printf("cart subtotal: %s\n", cart.Subtotal().StringFixed(2))

	ui := &firstAttempt{
		first: checkout.SimulatedUI{Dismiss: c.Bool("dismiss"), Decline: c.String("decline")},
		then:  checkout.SimulatedUI{Secret: c.String("secret")},
	}
	co := checkout.NewOrchestrator(api, ui, cart, owner)
	defer co.Close()
	co.OnChange(func(st checkout.State) {
		fmt.Printf("step: %s %s\n", st.Step, st.Message)
	})

	if err := co.SelectAddress(randomAddress()); err != nil {
		return err
	}
	if err := co.SelectPaymentMethod(c.String("method")); err != nil {
		return err
	}

	st, err := co.Confirm(ctx)
	if err != nil {
		return err
	}
	if st.Step == checkout.StepError && st.CanRetry && (c.Bool("dismiss") || c.String("decline") != "") {
		if st, err = co.Retry(ctx); err != nil {
			return err
		}
	}
	if st.Step != checkout.StepSuccess {
		return cli.Exit(fmt.Sprintf("checkout failed: %s", st.Message), 1)
	}

	fmt.Printf("order %s placed", st.OrderNumber)
	if st.PaymentID != "" {
		fmt.Printf(", payment %s", st.PaymentID)
	}
	fmt.Println()
	return nil
}

func newAPI(c *cli.Context) checkout.API {
	if url := c.String("base-url"); url != "" {
		return checkout.NewClient(url, c.Duration("timeout"))
	}
	repo := order.NewMemRepo()
	return checkout.Local{
		Orders:   order.NewService(repo, currency.INR.String()),
		Payments: payment.NewService(repo, payment.DemoGateway{}, "", currency.INR),
	}
}

// firstAttempt uses one UI for the first payment attempt and another afterwards.
type firstAttempt struct {
	first, then checkout.GatewayUI
	used        bool
}

func (f *firstAttempt) Pay(ctx context.Context, intent *payment.Intent) (*checkout.Callback, error) {
	if f.used {
		return f.then.Pay(ctx, intent)
	}
	f.used = true
	return f.first.Pay(ctx, intent)
}

func randomItem() order.LineItem {
	return order.LineItem{
		ProductID: uuid.NewString(),
		Name:      gofakeit.ProductName(),
		Brand:     gofakeit.Company(),
		UnitPrice: decimal.NewFromFloat(gofakeit.Price(50, 2000)).Round(2),
		Quantity:  gofakeit.IntRange(1, 3),
	}
}

func randomAddress() order.ShippingAddress {
	return order.ShippingAddress{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     gofakeit.Email(),
		Phone:     gofakeit.Phone(),
		Address:   gofakeit.Street(),
		City:      gofakeit.City(),
		State:     gofakeit.State(),
		ZipCode:   gofakeit.Zip(),
	}
}
