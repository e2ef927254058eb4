package marketplace

import (
	"fmt"

	"github.com/heartmarshall/folio/internal/domain"
)

// InitializeInput holds the parameters for creating a marketplace.
type InitializeInput struct {
	Name string
	Fee  uint16
}

// Validate rejects names outside 1..32 bytes.
func (i InitializeInput) Validate() error {
	return validateName(i.Name)
}

func validateName(name string) error {
	if name == "" || len(name) > domain.MaxMarketplaceNameLen {
		return fmt.Errorf("name of %d bytes: %w", len(name), domain.ErrNameTooLong)
	}
	return nil
}
