package postgres

import (
	"context"
	"fmt"

	"fakturo/internal/core/workspace"
)

// MustGetTxManager returns *postgres.TxManager from context.
// It is meant for infrastructure code that needs GetQuerier()/GetTx().
//
// Domain code should depend only on internal/core/tx.Manager.
func MustGetTxManager(ctx context.Context) *TxManager {
	txm := workspace.MustGetTxManager(ctx)
	postgresTxm, ok := txm.(*TxManager)
	if !ok || postgresTxm == nil {
		panic(fmt.Sprintf("TxManager in context has unexpected type: %T", txm))
	}
	return postgresTxm
}
