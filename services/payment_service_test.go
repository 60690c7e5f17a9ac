package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hotel-pms/models"
)

func TestDerivePaymentStatus(t *testing.T) {
	cases := []struct {
		name        string
		paid, total float64
		want        string
	}{
		{"nothing settled", 0, 1000000, models.PaymentStatusUnpaid},
		{"deposit", 400000, 1000000, models.PaymentStatusPartially},
		{"second installment still short", 600000, 1000000, models.PaymentStatusPartially},
		{"settled in full", 1000000, 1000000, models.PaymentStatusPaid},
		{"overpaid", 1200000, 1000000, models.PaymentStatusPaid},
		{"free booking with no payments", 0, 0, models.PaymentStatusUnpaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, derivePaymentStatus(tc.paid, tc.total))
		})
	}
}

func TestGatewaySignature(t *testing.T) {
	svc := &PaymentService{GatewaySecret: "test-secret"}

	sig := svc.sign("ref-123", 1500)
	assert.Len(t, sig, 64) // hex sha256
	assert.Equal(t, sig, svc.sign("ref-123", 1500))

	// Any change to the signed fields changes the signature.
	assert.NotEqual(t, sig, svc.sign("ref-124", 1500))
	assert.NotEqual(t, sig, svc.sign("ref-123", 1500.5))

	other := &PaymentService{GatewaySecret: "other-secret"}
	assert.NotEqual(t, sig, other.sign("ref-123", 1500))
}

func TestResultSignatureBindsOutcome(t *testing.T) {
	svc := &PaymentService{GatewaySecret: "test-secret"}

	success := svc.signResult("ref-123", 1500, true)
	failed := svc.signResult("ref-123", 1500, false)
	assert.Len(t, success, 64)
	assert.NotEqual(t, success, failed)

	// The intent signature covers reference|amount only; it must never pass
	// as a settlement signature for either outcome.
	intent := svc.sign("ref-123", 1500)
	assert.NotEqual(t, intent, success)
	assert.NotEqual(t, intent, failed)
}
