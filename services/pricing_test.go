package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestStayNights(t *testing.T) {
	in := datePtr(2026, 1, 10)
	out := datePtr(2026, 1, 13)
	assert.Equal(t, 3, StayNights(in, out))

	// Same-day in/out still bills one night.
	assert.Equal(t, 1, StayNights(in, in))

	// Missing dates fall back to a single night.
	assert.Equal(t, 1, StayNights(nil, out))
	assert.Equal(t, 1, StayNights(in, nil))

	// Partial days round up.
	late := time.Date(2026, 1, 12, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, StayNights(in, &late))
}

func TestLineNightsPrefersActualDates(t *testing.T) {
	line := models.RoomLine{
		ExpectedCheckIn:  datePtr(2026, 1, 10),
		ExpectedCheckOut: datePtr(2026, 1, 12),
		ActualCheckIn:    datePtr(2026, 1, 10),
		ActualCheckOut:   datePtr(2026, 1, 14),
	}
	assert.Equal(t, 4, LineNights(line))

	// Actual check-in alone does not switch the basis.
	line.ActualCheckOut = nil
	assert.Equal(t, 2, LineNights(line))
}

func TestResolveNightlyPrice(t *testing.T) {
	rt := models.RoomType{
		Capacity:        2,
		PricePerNight:   1200,
		ExtraBedAllowed: true,
		ExtraBedPrice:   300,
	}

	price, extra := ResolveNightlyPrice(rt, 2)
	assert.Equal(t, 1200.0, price)
	assert.False(t, extra)

	price, extra = ResolveNightlyPrice(rt, 3)
	assert.Equal(t, 1500.0, price)
	assert.True(t, extra)

	// Types without extra beds never surcharge.
	rt.ExtraBedAllowed = false
	price, extra = ResolveNightlyPrice(rt, 3)
	assert.Equal(t, 1200.0, price)
	assert.False(t, extra)

	// Three adults in a two-capacity type with an extra bed.
	suite := models.RoomType{
		Capacity:        2,
		PricePerNight:   500000,
		ExtraBedAllowed: true,
		ExtraBedPrice:   100000,
	}
	price, extra = ResolveNightlyPrice(suite, 3)
	assert.Equal(t, 600000.0, price)
	assert.True(t, extra)
}

func TestServiceCostByCategory(t *testing.T) {
	cases := []struct {
		name     string
		category models.ServiceCategory
		unit     float64
		qty      int
		nights   int
		persons  int
		want     float64
	}{
		{"per unit multiplies quantity", models.ServicePerUnit, 60, 3, 2, 2, 180},
		{"minibar multiplies quantity", models.ServiceMinibar, 30, 4, 2, 2, 120},
		{"per duration multiplies nights", models.ServicePerDuration, 150, 1, 3, 2, 450},
		{"per person multiplies persons", models.ServicePerPerson, 180, 1, 2, 4, 720},
		{"fixed ignores everything", models.ServiceFixed, 500, 9, 5, 5, 500},
		{"transportation is fixed", models.ServiceTransportation, 800, 2, 5, 5, 800},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line := models.ServiceLine{Category: tc.category, UnitPrice: tc.unit, Quantity: tc.qty}
			assert.Equal(t, tc.want, ServiceCost(line, tc.nights, tc.persons))
		})
	}

	// Zero quantity is treated as one, not zero.
	line := models.ServiceLine{Category: models.ServicePerUnit, UnitPrice: 60, Quantity: 0}
	assert.Equal(t, 60.0, ServiceCost(line, 1, 1))
}

func TestPriceBooking(t *testing.T) {
	roomLineID := uint(1)
	booking := models.Booking{
		RoomLines: []models.RoomLine{
			{
				Adults:           3,
				NightlyPrice:     1500, // 1200 base + 300 extra bed, frozen
				ExpectedCheckIn:  datePtr(2026, 2, 1),
				ExpectedCheckOut: datePtr(2026, 2, 3),
				ServiceLines: []models.ServiceLine{
					{Category: models.ServiceMinibar, UnitPrice: 50, Quantity: 2},
				},
			},
			{
				Adults:           2,
				NightlyPrice:     900,
				ExpectedCheckIn:  datePtr(2026, 2, 1),
				ExpectedCheckOut: datePtr(2026, 2, 4),
			},
		},
		ServiceLines: []models.ServiceLine{
			{Category: models.ServiceTransportation, UnitPrice: 800},
			// Room-scoped line preloaded on the booking too; must not double.
			{RoomLineID: &roomLineID, Category: models.ServiceMinibar, UnitPrice: 50, Quantity: 2},
		},
	}

	got := PriceBooking(booking)
	require.Equal(t, 1500.0*2+900*3, got.RoomTotal)
	require.Equal(t, 100.0+800, got.ServicesTotal)
	assert.Equal(t, got.RoomTotal+got.ServicesTotal, got.Total)

	// Pure and idempotent.
	assert.Equal(t, got, PriceBooking(booking))
}

func TestPriceBookingEmpty(t *testing.T) {
	got := PriceBooking(models.Booking{})
	assert.Zero(t, got.RoomTotal)
	assert.Zero(t, got.ServicesTotal)
	assert.Zero(t, got.Total)
}
