package mapping

import (
	"github.com/galexy/pennyledger/internal/core/domain"
	"github.com/galexy/pennyledger/internal/models"
)

// ToModelTransaction converts a domain transaction to its persistence model.
func ToModelTransaction(t domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:         t.TransactionID,
		AccountID:             t.AccountID,
		Amount:                t.Amount,
		EffectiveDate:         t.EffectiveDate,
		PostedDate:            t.PostedDate,
		Status:                string(t.Status),
		Source:                string(t.Source),
		PayeeID:               strPtrOrNil(t.PayeeID),
		Memo:                  strPtrOrNil(t.Memo),
		CheckNumber:           strPtrOrNil(t.CheckNumber),
		MirrorOfTransactionID: t.MirrorOfTransactionID,
		ImportID:              t.ImportID,
		Version:               t.Version,
		CreatedAt:             t.CreatedAt,
		CreatedBy:             t.CreatedBy,
		LastUpdatedAt:         t.LastUpdatedAt,
		LastUpdatedBy:         t.LastUpdatedBy,
	}
}

// ToModelSplits converts the split set of a domain transaction, preserving
// display order via the position column.
func ToModelSplits(t domain.Transaction) []models.Split {
	splits := make([]models.Split, len(t.Splits))
	for i, s := range t.Splits {
		splits[i] = models.Split{
			SplitID:             s.SplitID,
			TransactionID:       t.TransactionID,
			Amount:              s.Amount,
			CategoryID:          strPtrOrNil(s.CategoryID),
			TransferAccountID:   strPtrOrNil(s.TransferAccountID),
			Memo:                strPtrOrNil(s.Memo),
			MirrorTransactionID: strPtrOrNil(s.MirrorTransactionID),
			Position:            i,
		}
	}
	return splits
}

// ToDomainTransaction rehydrates a domain transaction from its persistence
// models. Splits must already be ordered by position.
func ToDomainTransaction(m models.Transaction, splits []models.Split) domain.Transaction {
	domainSplits := make([]domain.SplitLine, len(splits))
	for i, s := range splits {
		domainSplits[i] = domain.SplitLine{
			SplitID:             s.SplitID,
			Amount:              s.Amount,
			CategoryID:          strOrEmpty(s.CategoryID),
			TransferAccountID:   strOrEmpty(s.TransferAccountID),
			Memo:                strOrEmpty(s.Memo),
			MirrorTransactionID: strOrEmpty(s.MirrorTransactionID),
		}
	}
	return domain.Transaction{
		TransactionID:         m.TransactionID,
		AccountID:             m.AccountID,
		Amount:                m.Amount,
		Splits:                domainSplits,
		EffectiveDate:         m.EffectiveDate,
		PostedDate:            m.PostedDate,
		Status:                domain.TransactionStatus(m.Status),
		Source:                domain.TransactionSource(m.Source),
		PayeeID:               strOrEmpty(m.PayeeID),
		Memo:                  strOrEmpty(m.Memo),
		CheckNumber:           strOrEmpty(m.CheckNumber),
		MirrorOfTransactionID: m.MirrorOfTransactionID,
		ImportID:              m.ImportID,
		Version:               m.Version,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}
