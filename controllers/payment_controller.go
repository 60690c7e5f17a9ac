package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type recordPaymentPayload struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	MoneyReceived float64 `json:"moneyReceived"`
	Method        string  `json:"method"`
}

type paymentIntentPayload struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(svc *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: svc}
}

// RecordPayment settles a desk payment (cash or card) against a booking.
func (pc *PaymentController) RecordPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload recordPaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := pc.Payments.RecordCashPayment(id, payload.Amount, payload.MoneyReceived, payload.Method)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, payment)
}

// CreateIntent registers a pending gateway payment and returns the signed
// redirect parameters.
func (pc *PaymentController) CreateIntent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload paymentIntentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	intent, err := pc.Payments.CreatePaymentIntent(id, payload.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, intent)
}

// GatewayReturn is the asynchronous settlement callback from the online
// gateway. Signature-verified and idempotent.
func (pc *PaymentController) GatewayReturn(c *gin.Context) {
	reference := c.Query("reference")
	signature := c.Query("signature")
	if reference == "" || signature == "" {
		utils.JSONError(c, http.StatusBadRequest, "reference and signature are required")
		return
	}
	success := c.Query("result") == "success"

	payment, err := pc.Payments.HandleGatewayReturn(reference, success, signature)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payment)
}

func (pc *PaymentController) ListPayments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	payments, err := pc.Payments.ListByBooking(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payments)
}
