package handler

import (
	"net/http"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/service"
	"hospital-resource-booking/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BalanceHandler struct {
	balanceService *service.BalanceService
}

func NewBalanceHandler(balanceService *service.BalanceService) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
	}
}

// Get returns the authenticated user's current balance
func (h *BalanceHandler) Get(c *gin.Context) {
	userID, _ := currentUser(c)

	balance, err := h.balanceService.GetBalance(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user_id": userID,
		"balance": balance,
	})
}

// Transactions returns the user's ledger entries, oldest first
func (h *BalanceHandler) Transactions(c *gin.Context) {
	userID, _ := currentUser(c)
	limit, offset := paginationParams(c)

	entries, err := h.balanceService.GetTransactions(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"transactions": entries,
		"count":        len(entries),
	})
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// Deposit credits the user's balance
func (h *BalanceHandler) Deposit(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userID, _ := currentUser(c)
	change, err := h.balanceService.Credit(userID, req.Amount, models.TxAdjustment, nil, &userID, "balance deposit")
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, change)
}

// Withdraw debits the user's balance
func (h *BalanceHandler) Withdraw(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userID, _ := currentUser(c)
	change, err := h.balanceService.Debit(userID, req.Amount, models.TxWithdrawal, nil, &userID, "balance withdrawal")
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, change)
}
