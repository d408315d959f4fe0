package repository

import (
	"context"

	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// txState carries the open transaction plus hooks to run once it commits.
type txState struct {
	tx          *gorm.DB
	afterCommit []func()
}

// TransactionManager manages database transactions via context injection.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	state := &txState{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		txCtx := context.WithValue(ctx, txKey, state)
		return fn(txCtx)
	})
	if err != nil {
		return err
	}
	// The transaction is durably committed; only now run deferred hooks
	// (event publications and the like). Hooks run in registration order.
	for _, hook := range state.afterCommit {
		hook()
	}
	return nil
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey).(*txState); ok {
		return state.tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}

// AfterCommit defers fn until the enclosing transaction commits. Outside a
// transaction the write is already durable, so fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	if state, ok := ctx.Value(txKey).(*txState); ok {
		state.afterCommit = append(state.afterCommit, fn)
		return
	}
	fn()
}
