package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/telemetry"
)

// TipWriter transfers Amount from the signer to a writer and credits the
// writer's royalties. The presented account must be the writer's own
// canonically derived writer account.
func (s *Service) TipWriter(ctx context.Context, in TipWriterInput) (err error) {
	ctx, span := telemetry.Start(ctx, "platform.TipWriter")
	defer func() { telemetry.End(span, err) }()

	wallet, inv, err := s.signer(ctx)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var writer domain.UserAccount
		err := s.accounts.Load(ctx, in.WriterAccount, &writer)
		if isNotFound(err) {
			return fmt.Errorf("account %s: %w", in.WriterAccount, domain.ErrWriterAccountNotFound)
		}
		if err != nil {
			return err
		}
		if !address.IsCanonical(address.PlatformProgram, in.WriterAccount, writer.Bump, userSeeds(writer.Wallet, writer.Role)...) {
			return fmt.Errorf("account %s: %w", in.WriterAccount, domain.ErrInvalidDerivation)
		}
		if writer.Role != domain.RoleWriter {
			return fmt.Errorf("account %s is %s: %w", in.WriterAccount, writer.Role, domain.ErrInvalidWriterRole)
		}
		if writer.Wallet != in.Writer {
			return fmt.Errorf("account %s belongs to %s: %w", in.WriterAccount, writer.Wallet, domain.ErrWriterAccountNotFound)
		}

		total, ok := domain.CheckedAdd(writer.TotalRoyalties, in.Amount)
		if !ok {
			return fmt.Errorf("total royalties: %w", domain.ErrArithmeticOverflow)
		}
		writer.TotalRoyalties = total

		if err := s.system.Transfer(ctx, inv, wallet, in.Writer, in.Amount); err != nil {
			return fmt.Errorf("transfer tip: %w", err)
		}
		return s.accounts.Save(ctx, in.WriterAccount, writer)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "writer tipped",
		slog.String("from", wallet.String()),
		slog.String("to", in.Writer.String()),
		slog.Uint64("amount", in.Amount),
	)
	return nil
}
