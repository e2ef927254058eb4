package domain

import (
	"time"

	"github.com/heartmarshall/folio/internal/address"
)

// Account is a stored record as the account store sees it: an address, the
// program allowed to write it, and an encoded payload.
type Account struct {
	Address   address.Address
	Owner     address.Address
	Kind      Kind
	Version   int64
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record is implemented by every typed payload stored in an Account.
type Record interface {
	Kind() Kind
}
