package handler

import (
	"strconv"
	"time"

	"rental-payment-service/internal/adapter/http/dto"
	"rental-payment-service/internal/adapter/http/middleware"
	"rental-payment-service/internal/core/domain"
	"rental-payment-service/internal/core/ports"
	"rental-payment-service/internal/metrics"
	"rental-payment-service/pkg/apperror"
	"rental-payment-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// PaymentHandler handles the payment API endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// callerID pulls the authenticated user's ID from the context.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// TopUp handles POST /api/v1/payment/topup.
func (h *PaymentHandler) TopUp(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.paymentSvc.TopUp(c.Request.Context(), userID, amount)
	if err != nil {
		metrics.TransactionsFailed.WithLabelValues("topup").Inc()
		response.Error(c, err)
		return
	}

	metrics.TransactionsTotal.WithLabelValues(string(txn.Type)).Inc()
	response.Created(c, toTransactionResponse(txn))
}

// Pay handles POST /api/v1/payment/pay.
func (h *PaymentHandler) Pay(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	rentalID, err := uuid.Parse(req.RentalID)
	if err != nil {
		response.Error(c, apperror.Validation("rental_id must be a valid UUID"))
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.paymentSvc.PayForRental(c.Request.Context(), userID, rentalID, amount)
	if err != nil {
		metrics.TransactionsFailed.WithLabelValues("payment").Inc()
		response.Error(c, err)
		return
	}

	metrics.TransactionsTotal.WithLabelValues(string(txn.Type)).Inc()
	response.Created(c, toTransactionResponse(txn))
}

// GetBalance handles GET /api/v1/payment/balance.
func (h *PaymentHandler) GetBalance(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.paymentSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		UserID:    balance.UserID.String(),
		Amount:    domain.FormatAmount(balance.Amount),
		UpdatedAt: balance.UpdatedAt.Format(time.RFC3339),
	})
}

// GetHistory handles GET /api/v1/payment/history.
// Query params: start_date, end_date (YYYY-MM-DD), type, page, page_size.
func (h *PaymentHandler) GetHistory(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	req := ports.HistoryRequest{UserID: userID}

	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			response.Error(c, apperror.Validation("start_date must be formatted as YYYY-MM-DD"))
			return
		}
		req.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			response.Error(c, apperror.Validation("end_date must be formatted as YYYY-MM-DD"))
			return
		}
		req.EndDate = &t
	}
	if raw := c.Query("type"); raw != "" {
		txType, ok := domain.ParseTransactionType(raw)
		if !ok {
			response.Error(c, apperror.Validation("type must be one of TOPUP, PAYMENT, WITHDRAWAL, REFUND"))
			return
		}
		req.Type = &txType
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			response.Error(c, apperror.Validation("page must be a positive integer"))
			return
		}
		req.Page = page
	}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			response.Error(c, apperror.Validation("page_size must be a positive integer"))
			return
		}
		req.PageSize = size
	}

	txns, total, err := h.paymentSvc.GetHistory(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Echo the paging the service actually applied, not the raw request.
	page, pageSize := req.NormalizedPaging()

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// toTransactionResponse converts domain.Transaction to its DTO.
func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:        t.ID.String(),
		UserID:    t.UserID.String(),
		Type:      string(t.Type),
		Amount:    domain.FormatAmount(t.Amount),
		Status:    string(t.Status),
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	if t.RelatedRentalID != nil {
		s := t.RelatedRentalID.String()
		resp.RentalID = &s
	}
	if t.PayerUserID != nil {
		s := t.PayerUserID.String()
		resp.PayerUserID = &s
	}
	if t.PayeeUserID != nil {
		s := t.PayeeUserID.String()
		resp.PayeeUserID = &s
	}
	return resp
}
