package payment

import (
	"context"
	"errors"

	"pingparcel/metrics"
	"pingparcel/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// IntentGateway requests charge authorizations from the payment processor.
type IntentGateway interface {
	CreatePaymentIntent(ctx context.Context, amountInCents int64) (string, error)
}

// intentCreator is the part of the Stripe client the gateway needs.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeIntentGateway creates USD card PaymentIntents and hands back their
// client secret. Failures are returned once and never retried.
type StripeIntentGateway struct {
	Client intentCreator
}

// NewStripeIntentGateway returns a gateway authenticated with key. With an
// empty key every call fails with ExternalServiceError.
func NewStripeIntentGateway(key string) *StripeIntentGateway {
	if key == "" {
		return &StripeIntentGateway{}
	}
	return &StripeIntentGateway{
		Client: &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: key},
	}
}

func (g *StripeIntentGateway) CreatePaymentIntent(ctx context.Context, amountInCents int64) (string, error) {
	if amountInCents <= 0 {
		return "", utils.NewInvalidArgument("amountInCents must be a positive integer")
	}
	if g.Client == nil {
		metrics.PaymentIntentsTotal.WithLabelValues("error").Inc()
		return "", utils.NewExternalServiceError("payment processor is not configured", nil)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountInCents),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := g.Client.New(params)
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("error").Inc()
		msg := err.Error()
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			msg = stripeErr.Msg
		}
		return "", utils.NewExternalServiceError(msg, err)
	}

	metrics.PaymentIntentsTotal.WithLabelValues("ok").Inc()
	return pi.ClientSecret, nil
}
