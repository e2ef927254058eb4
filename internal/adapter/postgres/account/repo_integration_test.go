//go:build integration

package account_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	postgres "github.com/heartmarshall/folio/internal/adapter/postgres"
	"github.com/heartmarshall/folio/internal/adapter/postgres/account"
	"github.com/heartmarshall/folio/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/ledger"
)

func TestRepo_RoundTrip(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := account.New(pool)
	ctx := context.Background()

	addr, _ := address.MustDerive(address.PlatformProgram, address.Seed("roundtrip"), uniqueSeed())
	acc := domain.Account{Address: addr, Owner: address.PlatformProgram, Kind: domain.KindBook, Data: []byte{1, 2}}

	if err := repo.Create(ctx, acc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, acc); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("second Create error = %v, want ErrAlreadyExists", err)
	}

	acc.Data = []byte{3}
	if err := repo.Update(ctx, acc); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(ctx, addr)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Version != 2 || string(got.Data) != string([]byte{3}) {
		t.Fatalf("Get = version %d data %v", got.Version, got.Data)
	}

	retyped := acc
	retyped.Kind = domain.KindChapter
	if err := repo.Update(ctx, retyped); !errors.Is(err, domain.ErrKindChanged) {
		t.Fatalf("retyped Update error = %v, want ErrKindChanged", err)
	}

	acc.Owner = address.MinterProgram
	if err := repo.Update(ctx, acc); !errors.Is(err, domain.ErrAuthorityMismatch) {
		t.Fatalf("foreign Update error = %v, want ErrAuthorityMismatch", err)
	}
}

func TestRepo_RollbackDiscardsWrites(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := account.New(pool)
	tm := postgres.NewTxManager(pool)
	ctx := context.Background()

	addr, _ := address.MustDerive(address.PlatformProgram, address.Seed("rollback"), uniqueSeed())
	sentinel := errors.New("abort")

	err := tm.RunInTx(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, domain.Account{Address: addr, Owner: address.PlatformProgram, Kind: domain.KindBook, Data: []byte{}}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("RunInTx error = %v, want sentinel", err)
	}
	if _, err := repo.Get(ctx, addr); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get after rollback error = %v, want ErrNotFound", err)
	}
}

func TestRepo_ConcurrentCountersDoNotLoseUpdates(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := account.New(pool)
	tm := postgres.NewTxManager(pool)
	accounts := ledger.NewAccounts(repo, address.PlatformProgram)
	ctx := context.Background()

	addr, _ := address.MustDerive(address.PlatformProgram, address.Seed("counter"), uniqueSeed())
	if err := accounts.Init(ctx, addr, domain.PlatformAccount{}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tm.RunInTx(ctx, func(ctx context.Context) error {
				var p domain.PlatformAccount
				if err := accounts.Load(ctx, addr, &p); err != nil {
					return err
				}
				p.Counter++
				return accounts.Save(ctx, addr, p)
			})
			if err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	var p domain.PlatformAccount
	if err := accounts.Load(ctx, addr, &p); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Counter != workers {
		t.Fatalf("counter = %d, want %d", p.Counter, workers)
	}
}

func uniqueSeed() []byte {
	id := uuid.New()
	return id[:]
}
