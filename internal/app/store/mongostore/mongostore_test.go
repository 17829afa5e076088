package mongostore_test

import (
	"testing"

	"github.com/dalemusser/inkwell/internal/app/store"
	"github.com/dalemusser/inkwell/internal/app/store/mongostore"
	"github.com/dalemusser/inkwell/internal/app/store/storetest"
	"github.com/dalemusser/inkwell/internal/app/system/indexes"
	"github.com/dalemusser/inkwell/internal/testutil"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		db := testutil.SetupTestDB(t)
		ctx, cancel := testutil.TestContext()
		defer cancel()
		if err := indexes.EnsureAll(ctx, db); err != nil {
			t.Fatalf("EnsureAll failed: %v", err)
		}
		return mongostore.New(db)
	})
}

func TestPing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := mongostore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := st.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
