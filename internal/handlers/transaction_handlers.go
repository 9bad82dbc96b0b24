package handlers

import (
	"net/http"

	"agroledger/internal/common"
	"agroledger/internal/models"
	"agroledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// TransactionHandlers handles purchases, sales and expenses
type TransactionHandlers struct {
	transactionService services.TransactionService
}

func NewTransactionHandlers(transactionService services.TransactionService) *TransactionHandlers {
	return &TransactionHandlers{transactionService: transactionService}
}

// CreateTransactionRequest represents the transaction creation payload
type CreateTransactionRequest struct {
	Type          string           `json:"type" validate:"required,oneof=purchase sale expense"`
	Date          string           `json:"date" validate:"required"`
	InvoiceNumber *string          `json:"invoice_number"`
	PartyID       *uuid.UUID       `json:"party_id"`
	CropID        *uuid.UUID       `json:"crop_id"`
	Quantity      *decimal.Decimal `json:"quantity"`
	Rate          *decimal.Decimal `json:"rate"`
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	PaymentMode   string           `json:"payment_mode" validate:"omitempty,oneof=cash credit bank_transfer cheque"`
	PaymentStatus string           `json:"payment_status" validate:"omitempty,oneof=pending completed"`
	Quality       *string          `json:"quality"`
	Notes         *string          `json:"notes"`
	Category      *string          `json:"category"`
}

// CreateTransaction records a transaction and applies its stock and ledger effects
// @Summary Create transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body CreateTransactionRequest true "Transaction"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} common.ErrorResponse
// @Security BearerAuth
// @Router /transactions [post]
func (h *TransactionHandlers) CreateTransaction(c echo.Context) error {
	var req CreateTransactionRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	date, err := common.ParseDate(req.Date, "date")
	if err != nil {
		return apiError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", map[string]string{"date": err.Error()})
	}

	txn := &models.Transaction{
		Type:          models.TransactionType(req.Type),
		Date:          date,
		InvoiceNumber: req.InvoiceNumber,
		PartyID:       req.PartyID,
		CropID:        req.CropID,
		Quantity:      req.Quantity,
		Rate:          req.Rate,
		Amount:        *req.Amount,
		PaymentMode:   models.PaymentMode(req.PaymentMode),
		PaymentStatus: models.PaymentStatus(req.PaymentStatus),
		Quality:       req.Quality,
		Notes:         req.Notes,
		Category:      req.Category,
	}

	created, err := h.transactionService.Create(c.Request().Context(), txn)
	if err != nil {
		return handleError(err, "Transaction")
	}
	return c.JSON(http.StatusCreated, created)
}

// ListTransactions lists active transactions, optionally filtered by type, party or crop
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Param type query string false "purchase, sale or expense"
// @Param partyId query string false "Party ID"
// @Param cropId query string false "Crop ID"
// @Success 200 {array} models.TransactionView
// @Security BearerAuth
// @Router /transactions [get]
func (h *TransactionHandlers) ListTransactions(c echo.Context) error {
	var filter models.TransactionFilter
	if t := c.QueryParam("type"); t != "" {
		txnType := models.TransactionType(t)
		filter.Type = &txnType
	}
	partyID, err := common.OptionalUUID(c.QueryParam("partyId"), "partyId")
	if err != nil {
		return apiError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", map[string]string{"partyId": err.Error()})
	}
	cropID, err := common.OptionalUUID(c.QueryParam("cropId"), "cropId")
	if err != nil {
		return apiError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", map[string]string{"cropId": err.Error()})
	}
	filter.PartyID, filter.CropID = partyID, cropID

	txns, err := h.transactionService.List(c.Request().Context(), filter)
	if err != nil {
		return handleError(err, "Transaction")
	}
	if txns == nil {
		txns = []*models.TransactionView{}
	}
	return c.JSON(http.StatusOK, txns)
}

func (h *TransactionHandlers) ListDeletedTransactions(c echo.Context) error {
	txns, err := h.transactionService.ListDeleted(c.Request().Context())
	if err != nil {
		return handleError(err, "Transaction")
	}
	if txns == nil {
		txns = []*models.TransactionView{}
	}
	return c.JSON(http.StatusOK, txns)
}

func (h *TransactionHandlers) GetTransaction(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	txn, err := h.transactionService.GetByID(c.Request().Context(), id)
	if err != nil {
		return handleError(err, "Transaction")
	}
	return c.JSON(http.StatusOK, txn)
}

// UpdateTransaction applies a partial update. Sending null for party_id,
// crop_id, quantity or rate clears the field.
// @Summary Update transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Security BearerAuth
// @Router /transactions/{id} [put]
func (h *TransactionHandlers) UpdateTransaction(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	body, err := decodePatch(c)
	if err != nil {
		return err
	}

	errs := map[string]string{}
	patch := &models.TransactionPatch{
		Date:          body.dateField("date", errs),
		InvoiceNumber: body.stringField("invoice_number", errs),
		Amount:        body.decimalField("amount", errs),
		Quality:       body.stringField("quality", errs),
		Notes:         body.stringField("notes", errs),
		Category:      body.stringField("category", errs),
	}
	if t := body.stringField("type", errs); t != nil {
		txnType := models.TransactionType(*t)
		patch.Type = &txnType
	}
	if m := body.stringField("payment_mode", errs); m != nil {
		mode := models.PaymentMode(*m)
		patch.PaymentMode = &mode
	}
	if s := body.stringField("payment_status", errs); s != nil {
		status := models.PaymentStatus(*s)
		patch.PaymentStatus = &status
	}
	if body.has("party_id") {
		patch.PartyID = models.UUIDUpdate{Set: true, Value: body.uuidField("party_id", errs)}
	}
	if body.has("crop_id") {
		patch.CropID = models.UUIDUpdate{Set: true, Value: body.uuidField("crop_id", errs)}
	}
	if body.has("quantity") {
		patch.Quantity = models.DecimalUpdate{Set: true, Value: body.decimalField("quantity", errs)}
	}
	if body.has("rate") {
		patch.Rate = models.DecimalUpdate{Set: true, Value: body.decimalField("rate", errs)}
	}
	if err := patchError(errs); err != nil {
		return err
	}

	updated, err := h.transactionService.Update(c.Request().Context(), id, patch)
	if err != nil {
		return handleError(err, "Transaction")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteTransaction moves a transaction to the trash
func (h *TransactionHandlers) DeleteTransaction(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.transactionService.Delete(c.Request().Context(), id); err != nil {
		return handleError(err, "Transaction")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Transaction moved to trash"})
}

func (h *TransactionHandlers) RestoreTransaction(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.transactionService.Restore(c.Request().Context(), id); err != nil {
		return handleError(err, "Transaction")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Transaction restored"})
}

func (h *TransactionHandlers) PermanentlyDeleteTransaction(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.transactionService.PermanentlyDelete(c.Request().Context(), id); err != nil {
		return handleError(err, "Transaction")
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadAttachment stores a scanned bill for the transaction
// @Summary Upload transaction attachment
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Transaction ID"
// @Param file formData file true "Attachment"
// @Success 201 {object} map[string]string
// @Failure 503 {object} common.ErrorResponse
// @Security BearerAuth
// @Router /transactions/{id}/attachment [post]
func (h *TransactionHandlers) UploadAttachment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return apiError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", map[string]string{"file": "file is required"})
	}
	src, err := file.Open()
	if err != nil {
		return apiError(http.StatusBadRequest, "CLIENT_ERROR", "Failed to read uploaded file", nil)
	}
	defer src.Close()

	contentType := file.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := h.transactionService.UploadAttachment(c.Request().Context(), id, file.Filename, contentType, src, file.Size)
	if err != nil {
		return handleError(err, "Transaction")
	}
	return c.JSON(http.StatusCreated, map[string]string{"attachment_key": key})
}

func (h *TransactionHandlers) GetAttachment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	url, err := h.transactionService.GetAttachmentURL(c.Request().Context(), id)
	if err != nil {
		return handleError(err, "Attachment")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
