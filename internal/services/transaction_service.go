package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"agroledger/internal/bookkeeping"
	"agroledger/internal/caching"
	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrAttachmentsDisabled = errors.New("attachment storage is not configured")

const attachmentURLExpiry = 15 * time.Minute

type TransactionService interface {
	Create(ctx context.Context, txn *models.Transaction) (*models.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.TransactionPatch) (*models.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	PermanentlyDelete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, filter models.TransactionFilter) ([]*models.TransactionView, error)
	ListDeleted(ctx context.Context) ([]*models.TransactionView, error)
	UploadAttachment(ctx context.Context, id uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
	GetAttachmentURL(ctx context.Context, id uuid.UUID) (string, error)
}

type transactionService struct {
	store    repositories.TxStore
	cacheSvc caching.CacheService
	minio    MinioService
	bucket   string
}

// NewTransactionService wires the transaction lifecycle. minio may be nil,
// in which case attachment operations return ErrAttachmentsDisabled.
func NewTransactionService(store repositories.TxStore, cacheSvc caching.CacheService, minio MinioService, bucket string) TransactionService {
	return &transactionService{store: store, cacheSvc: cacheSvc, minio: minio, bucket: bucket}
}

func validateTransaction(t *models.Transaction) error {
	errs := fieldErrors{}
	switch t.Type {
	case models.TransactionTypePurchase, models.TransactionTypeSale, models.TransactionTypeExpense:
	default:
		errs.add("type", "type must be one of: purchase, sale, expense")
	}
	if t.Date.IsZero() {
		errs.add("date", "date is required")
	}
	if !t.Amount.IsPositive() {
		errs.add("amount", "amount must be positive")
	}
	switch t.PaymentMode {
	case models.PaymentModeCash, models.PaymentModeCredit, models.PaymentModeBankTransfer, models.PaymentModeCheque:
	default:
		errs.add("payment_mode", "payment_mode must be one of: cash, credit, bank_transfer, cheque")
	}
	switch t.PaymentStatus {
	case models.PaymentStatusPending, models.PaymentStatusCompleted:
	default:
		errs.add("payment_status", "payment_status must be one of: pending, completed")
	}

	if t.Type == models.TransactionTypePurchase || t.Type == models.TransactionTypeSale {
		if (t.Quantity == nil) != (t.Rate == nil) {
			errs.add("quantity", "quantity and rate must be provided together")
		}
		if t.Quantity != nil {
			if !t.Quantity.IsPositive() {
				errs.add("quantity", "quantity must be positive")
			}
			if t.CropID == nil {
				errs.add("crop_id", "crop_id is required when quantity is set")
			}
		}
		if t.Rate != nil && t.Rate.IsNegative() {
			errs.add("rate", "rate cannot be negative")
		}
	}
	return errs.err()
}

func applyTransactionDefaults(t *models.Transaction) {
	if t.PaymentMode == "" {
		t.PaymentMode = models.PaymentModeCash
	}
	if t.PaymentStatus == "" {
		t.PaymentStatus = models.PaymentStatusPending
	}
}

func (s *transactionService) invalidate(ctx context.Context) {
	if err := s.cacheSvc.InvalidateBookkeeping(ctx); err != nil {
		log.Printf("Failed to invalidate cache after transaction change: %v", err)
	}
}

func (s *transactionService) Create(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	applyTransactionDefaults(txn)
	if err := validateTransaction(txn); err != nil {
		return nil, err
	}

	txn.ID = uuid.New()
	txn.Status = models.TransactionStatusActive

	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		if txn.Type == models.TransactionTypeSale && txn.MovesStock() {
			if err := validateSale(ctx, repos, *txn.CropID, *txn.Quantity, decimal.Zero); err != nil {
				return err
			}
		}
		if err := repos.Transactions.Create(ctx, txn); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		if err := restateInventory(ctx, repos, nil, txn); err != nil {
			return err
		}
		return appendFromTransaction(ctx, repos, txn)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return txn, nil
}

func (s *transactionService) Update(ctx context.Context, id uuid.UUID, patch *models.TransactionPatch) (*models.Transaction, error) {
	var updated models.Transaction
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		old, err := repos.Transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if old.Status != models.TransactionStatusActive {
			return fmt.Errorf("%w: cannot update a %s transaction", ErrInvalidTransition, old.Status)
		}

		updated = old.Merge(patch)
		if err := validateTransaction(&updated); err != nil {
			return err
		}

		if updated.Type == models.TransactionTypeSale && updated.MovesStock() {
			adjustment := decimal.Zero
			if old.MovesStock() && *old.CropID == *updated.CropID {
				adjustment = bookkeeping.SaleAdjustment(
					old.Type == models.TransactionTypeSale,
					old.Type == models.TransactionTypePurchase,
					old.QuantityOrZero(),
				)
			}
			if err := validateSale(ctx, repos, *updated.CropID, *updated.Quantity, adjustment); err != nil {
				return err
			}
		}

		if err := repos.Transactions.Update(ctx, &updated); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		if err := restateInventory(ctx, repos, old, &updated); err != nil {
			return err
		}

		touched, err := repos.Ledger.DeleteByTransactionID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to remove ledger entries: %w", err)
		}
		if err := appendFromTransaction(ctx, repos, &updated); err != nil {
			return err
		}
		touched = append(touched, partyIDOrNil(old.PartyID), partyIDOrNil(updated.PartyID))
		return recalculateParties(ctx, repos, touched...)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return &updated, nil
}

// Delete moves an active transaction to the trash and undoes its stock and ledger effects
func (s *transactionService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		txn, err := repos.Transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := txn.Status.TransitionTo(models.TransactionStatusTrashed); err != nil {
			return err
		}
		if err := repos.Transactions.SetStatus(ctx, id, models.TransactionStatusTrashed); err != nil {
			return fmt.Errorf("failed to trash transaction: %w", err)
		}
		if err := restateInventory(ctx, repos, txn, nil); err != nil {
			return err
		}
		touched, err := repos.Ledger.DeleteByTransactionID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to remove ledger entries: %w", err)
		}
		touched = append(touched, partyIDOrNil(txn.PartyID))
		return recalculateParties(ctx, repos, touched...)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// Restore only flips the status back to active. Stock and ledger effects
// removed by Delete are not re-applied.
func (s *transactionService) Restore(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		txn, err := repos.Transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := txn.Status.TransitionTo(models.TransactionStatusActive); err != nil {
			return err
		}
		return repos.Transactions.SetStatus(ctx, id, models.TransactionStatusActive)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// PermanentlyDelete removes a trashed transaction. Its effects were already
// undone when it was trashed, so nothing is reversed here.
func (s *transactionService) PermanentlyDelete(ctx context.Context, id uuid.UUID) error {
	var attachmentKey *string
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		txn, err := repos.Transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := txn.Status.TransitionTo(models.TransactionStatusPurged); err != nil {
			return err
		}
		attachmentKey = txn.AttachmentKey
		return repos.Transactions.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if attachmentKey != nil && s.minio != nil {
		if err := s.minio.Remove(ctx, s.bucket, *attachmentKey); err != nil {
			log.Printf("Failed to remove attachment %s for transaction %s: %v", *attachmentKey, id, err)
		}
	}
	s.invalidate(ctx)
	return nil
}

func (s *transactionService) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.store.Repos().Transactions.GetByID(ctx, id)
}

func (s *transactionService) List(ctx context.Context, filter models.TransactionFilter) ([]*models.TransactionView, error) {
	return s.store.Repos().Transactions.List(ctx, filter)
}

func (s *transactionService) ListDeleted(ctx context.Context) ([]*models.TransactionView, error) {
	return s.store.Repos().Transactions.ListDeleted(ctx)
}

func (s *transactionService) UploadAttachment(ctx context.Context, id uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	if s.minio == nil {
		return "", ErrAttachmentsDisabled
	}

	txn, err := s.store.Repos().Transactions.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("transactions/%s/%s", txn.ID, path.Base(filename))
	if err := s.minio.Upload(ctx, s.bucket, key, reader, size, contentType); err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}
	if err := s.store.Repos().Transactions.SetAttachment(ctx, id, key); err != nil {
		return "", err
	}

	if txn.AttachmentKey != nil && *txn.AttachmentKey != key {
		if err := s.minio.Remove(ctx, s.bucket, *txn.AttachmentKey); err != nil {
			log.Printf("Failed to remove replaced attachment %s: %v", *txn.AttachmentKey, err)
		}
	}
	return key, nil
}

func (s *transactionService) GetAttachmentURL(ctx context.Context, id uuid.UUID) (string, error) {
	if s.minio == nil {
		return "", ErrAttachmentsDisabled
	}

	txn, err := s.store.Repos().Transactions.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if txn.AttachmentKey == nil {
		return "", repositories.ErrNotFound
	}
	return s.minio.GetPresignedURL(ctx, s.bucket, *txn.AttachmentKey, attachmentURLExpiry)
}
