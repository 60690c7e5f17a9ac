package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type servicePayload struct {
	ServiceID uint `json:"serviceId" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type roomLinePayload struct {
	RoomTypeID uint   `json:"roomTypeId" binding:"required"`
	RoomID     *uint  `json:"roomId"`
	CheckIn    string `json:"checkIn" binding:"required"`
	CheckOut   string `json:"checkOut" binding:"required"`

	Adults   int `json:"adults"`
	Children int `json:"children"`

	MainGuestName     string                `json:"mainGuestName"`
	MainGuestPhone    string                `json:"mainGuestPhone"`
	MainGuestIDNumber string                `json:"mainGuestIdNumber"`
	ExtraGuests       []services.GuestInput `json:"extraGuests"`

	Services []servicePayload `json:"services"`
}

type createBookingPayload struct {
	CustomerID uint   `json:"customerId" binding:"required"`
	Note       string `json:"note"`

	RoomLines []roomLinePayload `json:"roomLines" binding:"required,min=1,dive"`
	Services  []servicePayload  `json:"services"`
}

type updateLinePayload struct {
	LineID     uint    `json:"lineId" binding:"required"`
	CheckIn    *string `json:"checkIn"`
	CheckOut   *string `json:"checkOut"`
	RoomTypeID *uint   `json:"roomTypeId"`
	RoomID     *uint   `json:"roomId"`
	Adults     *int    `json:"adults"`
	Children   *int    `json:"children"`

	Services *[]servicePayload `json:"services"`
}

type updateBookingPayload struct {
	Note     *string             `json:"note"`
	Services *[]servicePayload   `json:"services"`
	Lines    []updateLinePayload `json:"lines"`
}

type checkOutPayload struct {
	// Empty means "all rooms still checked in".
	LineIDs []uint `json:"lineIds"`
}

type assignRoomPayload struct {
	RoomID uint `json:"roomId" binding:"required"`
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	Bookings *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{Bookings: svc}
}

func serviceInputs(payloads []servicePayload) []services.ServiceInput {
	out := make([]services.ServiceInput, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, services.ServiceInput{ServiceID: p.ServiceID, Quantity: p.Quantity})
	}
	return out
}

func (bc *BookingController) buildCreateInput(c *gin.Context, hold bool) (services.CreateBookingInput, bool) {
	var payload createBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return services.CreateBookingInput{}, false
	}

	input := services.CreateBookingInput{
		CustomerID: payload.CustomerID,
		Hold:       hold,
		Note:       payload.Note,
		Services:   serviceInputs(payload.Services),
	}
	for _, rl := range payload.RoomLines {
		checkIn, err := parseDate(rl.CheckIn)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid checkIn date: "+rl.CheckIn)
			return input, false
		}
		checkOut, err := parseDate(rl.CheckOut)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid checkOut date: "+rl.CheckOut)
			return input, false
		}
		input.RoomLines = append(input.RoomLines, services.RoomLineInput{
			RoomTypeID:        rl.RoomTypeID,
			RoomID:            rl.RoomID,
			CheckIn:           checkIn,
			CheckOut:          checkOut,
			Adults:            rl.Adults,
			Children:          rl.Children,
			MainGuestName:     rl.MainGuestName,
			MainGuestPhone:    rl.MainGuestPhone,
			MainGuestIDNumber: rl.MainGuestIDNumber,
			ExtraGuests:       rl.ExtraGuests,
			Services:          serviceInputs(rl.Services),
		})
	}
	return input, true
}

// CreateBooking creates a confirmed (booked) reservation.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	input, ok := bc.buildCreateInput(c, false)
	if !ok {
		return
	}
	booking, err := bc.Bookings.Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// CreateHold creates a pending booking that reserves capacity for the hold
// TTL (online-payment flows).
func (bc *BookingController) CreateHold(c *gin.Context) {
	input, ok := bc.buildCreateInput(c, true)
	if !ok {
		return
	}
	booking, err := bc.Bookings.Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

func (bc *BookingController) ListBookings(c *gin.Context) {
	list, err := bc.Bookings.List(c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (bc *BookingController) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Bookings.GetBooking(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload updateBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	input := services.UpdateBookingInput{Note: payload.Note}
	if payload.Services != nil {
		svcs := serviceInputs(*payload.Services)
		input.Services = &svcs
	}
	for _, lp := range payload.Lines {
		lu := services.RoomLineUpdate{
			LineID:     lp.LineID,
			RoomTypeID: lp.RoomTypeID,
			RoomID:     lp.RoomID,
			Adults:     lp.Adults,
			Children:   lp.Children,
		}
		if lp.CheckIn != nil {
			t, err := parseDate(*lp.CheckIn)
			if err != nil {
				utils.JSONError(c, http.StatusBadRequest, "invalid checkIn date: "+*lp.CheckIn)
				return
			}
			lu.CheckIn = &t
		}
		if lp.CheckOut != nil {
			t, err := parseDate(*lp.CheckOut)
			if err != nil {
				utils.JSONError(c, http.StatusBadRequest, "invalid checkOut date: "+*lp.CheckOut)
				return
			}
			lu.CheckOut = &t
		}
		if lp.Services != nil {
			svcs := serviceInputs(*lp.Services)
			lu.Services = &svcs
		}
		input.Lines = append(input.Lines, lu)
	}

	booking, err := bc.Bookings.Update(id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Bookings.Cancel(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// ConfirmBooking promotes a pending hold to booked, re-checking capacity.
// Normally triggered by the gateway settlement; exposed as an endpoint so
// staff can confirm desk-paid holds or recover a missed gateway callback.
func (bc *BookingController) ConfirmBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Bookings.Confirm(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) CheckIn(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Bookings.CheckIn(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) CheckOut(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload checkOutPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	booking, receipt, err := bc.Bookings.CheckOut(id, payload.LineIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"booking": booking, "receipt": receipt})
}

func (bc *BookingController) AssignRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseIDParam(c, "lineId")
	if !ok {
		return
	}
	var payload assignRoomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	booking, err := bc.Bookings.AssignRoom(id, lineID, payload.RoomID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// Receipt streams the printable checkout receipt.
func (bc *BookingController) Receipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	receipt, err := bc.Bookings.BuildReceiptFor(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	pdf, filename, err := services.RenderReceiptPDF(receipt)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
