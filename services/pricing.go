package services

import (
	"math"
	"time"

	"hotel-pms/models"
)

// PriceBreakdown is the monetary total of a stay.
type PriceBreakdown struct {
	RoomTotal     float64 `json:"roomTotal"`
	ServicesTotal float64 `json:"servicesTotal"`
	Total         float64 `json:"total"`
}

// StayNights counts billable nights between two timestamps, never less than
// one. A missing date on either side also bills a single night, so a same-day
// in/out can never produce a zero charge.
func StayNights(checkIn, checkOut *time.Time) int {
	if checkIn == nil || checkOut == nil {
		return 1
	}
	n := int(math.Ceil(checkOut.Sub(*checkIn).Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}

// LineNights prefers actual dates when both are present, expected dates
// otherwise — the same preference the conflict detector applies, never mixed.
func LineNights(line models.RoomLine) int {
	if line.ActualCheckIn != nil && line.ActualCheckOut != nil {
		return StayNights(line.ActualCheckIn, line.ActualCheckOut)
	}
	return StayNights(line.ExpectedCheckIn, line.ExpectedCheckOut)
}

// ResolveNightlyPrice returns the rate to freeze onto a room line: the type's
// base rate, plus the extra-bed surcharge when the adult count exceeds base
// capacity and the type allows an extra bed.
func ResolveNightlyPrice(rt models.RoomType, adults int) (price float64, extraBed bool) {
	price = rt.PricePerNight
	if adults > rt.Capacity && rt.ExtraBedAllowed {
		price += rt.ExtraBedPrice
		extraBed = true
	}
	return price, extraBed
}

// ServiceCost prices one service line under its category. nights is the stay
// length of the room it is attached to (or the whole booking for booking-level
// services); persons is that room's adults+children.
func ServiceCost(line models.ServiceLine, nights, persons int) float64 {
	qty := line.Quantity
	if qty < 1 {
		qty = 1
	}
	if nights < 1 {
		nights = 1
	}
	switch line.Category {
	case models.ServicePerDuration:
		return line.UnitPrice * float64(nights)
	case models.ServicePerPerson:
		return line.UnitPrice * float64(persons)
	case models.ServiceFixed, models.ServiceTransportation:
		return line.UnitPrice
	case models.ServicePerUnit, models.ServiceMinibar:
		return line.UnitPrice * float64(qty)
	default:
		return line.UnitPrice * float64(qty)
	}
}

// PriceBooking derives room total, services total and grand total for a
// booking aggregate. Pure: it reads only its argument and treats missing
// sub-fields as zero.
func PriceBooking(b models.Booking) PriceBreakdown {
	var out PriceBreakdown

	stayNights := 1
	persons := 0
	for _, line := range b.RoomLines {
		nights := LineNights(line)
		if nights > stayNights {
			stayNights = nights
		}
		persons += line.Adults + line.Children

		out.RoomTotal += line.NightlyPrice * float64(nights)
		for _, sl := range line.ServiceLines {
			out.ServicesTotal += ServiceCost(sl, nights, line.Adults+line.Children)
		}
	}

	// Booking-level services: room-scoped lines are priced with their room
	// above, so skip them here even if the caller preloaded both collections.
	for _, sl := range b.ServiceLines {
		if sl.RoomLineID != nil {
			continue
		}
		out.ServicesTotal += ServiceCost(sl, stayNights, persons)
	}

	out.Total = out.RoomTotal + out.ServicesTotal
	return out
}
