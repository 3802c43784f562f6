package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kwachapos/fiscalgate/internal/authority"
	"github.com/kwachapos/fiscalgate/internal/clock"
	invoicedomain "github.com/kwachapos/fiscalgate/internal/invoice/domain"
	"github.com/kwachapos/fiscalgate/internal/invoice/number"
	"github.com/kwachapos/fiscalgate/internal/observability/metrics"
	offlinedomain "github.com/kwachapos/fiscalgate/internal/offline/domain"
	productdomain "github.com/kwachapos/fiscalgate/internal/product/domain"
	salesdomain "github.com/kwachapos/fiscalgate/internal/sales/domain"
	"github.com/kwachapos/fiscalgate/internal/signing"
	taxdomain "github.com/kwachapos/fiscalgate/internal/tax/domain"
	taxservice "github.com/kwachapos/fiscalgate/internal/tax/service"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const offlineRemark = "Transaction saved offline"

// AuthorityClient is the slice of the remote authority the sale flow
// needs.
type AuthorityClient interface {
	SubmitSale(ctx context.Context, terminal *terminaldomain.Terminal, doc *invoicedomain.Document) (authority.SubmitOutcome, error)
}

type Params struct {
	fx.In

	Terminals   terminaldomain.Repository
	TerminalSvc terminaldomain.Service
	Products    productdomain.Repository
	TaxRates    taxdomain.Repository
	Offline     offlinedomain.Repository
	Authority   AuthorityClient
	Clock       clock.Clock
	GenID       *snowflake.Node
	Log         *zap.Logger
}

type service struct {
	terminals   terminaldomain.Repository
	terminalSvc terminaldomain.Service
	products    productdomain.Repository
	taxRates    taxdomain.Repository
	offline     offlinedomain.Repository
	authority   AuthorityClient
	clock       clock.Clock
	genID       *snowflake.Node
	log         *zap.Logger
}

func NewService(p Params) salesdomain.Service {
	return &service{
		terminals:   p.Terminals,
		terminalSvc: p.TerminalSvc,
		products:    p.Products,
		taxRates:    p.TaxRates,
		offline:     p.Offline,
		authority:   p.Authority,
		clock:       p.Clock,
		genID:       p.GenID,
		log:         p.Log.Named("sales"),
	}
}

// SubmitSale validates and prices the sale, claims the next invoice
// number, and submits the document to the authority. A submission
// timeout does not fail the sale: the signed invoice is queued offline
// and a degraded success is returned.
func (s *service) SubmitSale(ctx context.Context, req salesdomain.SaleRequest) (*salesdomain.SaleResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	terminal, err := s.terminals.FindByDeviceID(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if terminal.TaxpayerID == 0 {
		return nil, terminaldomain.ErrMissingTaxpayer
	}
	if err := s.terminalSvc.EnsureSellable(ctx, terminal); err != nil {
		return nil, err
	}

	lines, breakdown, err := s.priceLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	counter, err := s.terminals.NextTransactionCount(ctx, terminal.ID)
	if err != nil {
		return nil, err
	}
	invoiceNumber, err := number.Invoice(terminal.TaxpayerID, terminal.Position, now, counter)
	if err != nil {
		return nil, err
	}

	doc := s.buildDocument(terminal, req, invoiceNumber, now, lines, breakdown)

	// Once the attempt is on the wire the outcome must be recorded,
	// confirmed or queued offline, even if the POS hangs up. The
	// authority client's own timeout still bounds the call.
	ctx = context.WithoutCancel(ctx)
	outcome, err := s.authority.SubmitSale(ctx, terminal, doc)
	if err != nil {
		metrics.Gateway().IncSubmission(metrics.SubmissionModeOnline, metrics.OutcomeLabelTransport)
		return nil, err
	}

	switch outcome.Kind {
	case authority.OutcomeTimeout:
		metrics.Gateway().IncSubmission(metrics.SubmissionModeOnline, metrics.OutcomeLabelTimeout)
		return s.acceptOffline(ctx, terminal, doc, invoiceNumber, breakdown)

	case authority.OutcomeRejected:
		metrics.Gateway().IncSubmission(metrics.SubmissionModeOnline, metrics.OutcomeLabelRejected)
		s.log.Warn("sale rejected by authority",
			zap.String("invoice_number", invoiceNumber),
			zap.Int64("status_code", outcome.StatusCode),
			zap.String("remark", outcome.Remark),
		)
		return nil, fmt.Errorf("%w: %s", salesdomain.ErrRejected, outcome.Remark)
	}

	metrics.Gateway().IncSubmission(metrics.SubmissionModeOnline, metrics.OutcomeLabelConfirmed)

	if outcome.ShouldBlockTerminal {
		reason, blockErr := s.terminalSvc.BlockFromAuthority(ctx, terminal)
		if blockErr != nil {
			return nil, blockErr
		}
		return nil, fmt.Errorf("%w: %s", terminaldomain.ErrBlocked, reason)
	}

	s.log.Info("sale confirmed",
		zap.String("invoice_number", invoiceNumber),
		zap.String("terminal_id", terminal.TerminalID),
	)
	return &salesdomain.SaleResponse{
		InvoiceNumber:              invoiceNumber,
		InvoiceDateTime:            doc.InvoiceHeader.InvoiceDateTime,
		Remark:                     outcome.Remark,
		ValidationURL:              outcome.ValidationURL,
		InvoiceTotal:               breakdown.InvoiceTotal(),
		TotalVAT:                   breakdown.TotalVAT(),
		ShouldDownloadLatestConfig: outcome.ShouldDownloadLatestConfig,
	}, nil
}

func validateRequest(req salesdomain.SaleRequest) error {
	if req.DeviceID == "" {
		return terminaldomain.ErrUnknownDevice
	}
	if !req.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", salesdomain.ErrInvalidPaymentMethod, req.PaymentMethod)
	}
	if len(req.Lines) == 0 {
		return salesdomain.ErrNoLineItems
	}
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: %q", salesdomain.ErrInvalidQuantity, line.ProductCode)
		}
		if line.Discount < 0 {
			return taxdomain.ErrInvalidAmount
		}
	}
	return nil
}

// priceLines resolves each requested line against the product catalog and
// tax rate registry and computes the rounded amounts.
func (s *service) priceLines(ctx context.Context, reqLines []salesdomain.SaleLine) ([]invoicedomain.LineItem, *taxservice.Breakdown, error) {
	lines := make([]invoicedomain.LineItem, 0, len(reqLines))
	breakdown := taxservice.NewBreakdown()

	for i, line := range reqLines {
		product, err := s.products.FindByCode(ctx, line.ProductCode)
		if err != nil {
			if errors.Is(err, productdomain.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: %q", salesdomain.ErrUnknownProduct, line.ProductCode)
			}
			return nil, nil, err
		}

		rateID := line.TaxRateID
		if rateID == "" {
			rateID = product.TaxRateID
		}
		rate, err := s.taxRates.FindByRateID(ctx, rateID)
		if err != nil {
			if errors.Is(err, taxdomain.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: %q", salesdomain.ErrUnknownTaxRate, rateID)
			}
			return nil, nil, err
		}

		amounts, err := taxservice.ComputeLine(product.UnitPrice, line.Quantity, line.Discount, rate.Rate)
		if err != nil {
			return nil, nil, fmt.Errorf("line %q: %w", line.ProductCode, err)
		}
		breakdown.Add(rate, amounts)

		lines = append(lines, invoicedomain.LineItem{
			ID:          int64(i + 1),
			ProductCode: product.Code,
			Description: product.Name,
			UnitPrice:   product.UnitPrice,
			Quantity:    line.Quantity,
			Discount:    line.Discount,
			Total:       amounts.Amount,
			TotalVAT:    amounts.TaxAmount,
			TaxRateID:   rate.RateID,
			IsProduct:   !product.IsService,
		})
	}
	return lines, breakdown, nil
}

func (s *service) buildDocument(
	terminal *terminaldomain.Terminal,
	req salesdomain.SaleRequest,
	invoiceNumber string,
	now time.Time,
	lines []invoicedomain.LineItem,
	breakdown *taxservice.Breakdown,
) *invoicedomain.Document {
	rows := breakdown.Rows()
	taxRows := make([]invoicedomain.TaxBreakdownRow, 0, len(rows))
	for _, row := range rows {
		taxRows = append(taxRows, invoicedomain.TaxBreakdownRow{
			RateID:        row.RateID,
			TaxableAmount: row.TaxableAmount,
			TaxAmount:     row.TaxAmount,
		})
	}

	return &invoicedomain.Document{
		InvoiceHeader: invoicedomain.Header{
			InvoiceNumber:          invoiceNumber,
			InvoiceDateTime:        invoicedomain.FormatTimestamp(now),
			SellerTIN:              strconv.FormatInt(terminal.TaxpayerID, 10),
			BuyerTIN:               req.BuyerTIN,
			BuyerName:              req.BuyerName,
			BuyerAuthorizationCode: req.BuyerAuthorizationCode,
			SiteID:                 terminal.SiteID,
			GlobalConfigVersion:    terminal.GlobalConfigVersion,
			TaxpayerConfigVersion:  terminal.TaxpayerConfigVersion,
			TerminalConfigVersion:  terminal.TerminalConfigVersion,
			IsReliefSupply:         req.IsReliefSupply,
			PaymentMethod:          string(req.PaymentMethod),
		},
		InvoiceLineItems: lines,
		InvoiceSummary: invoicedomain.Summary{
			TaxBreakDown: taxRows,
			TotalVAT:     breakdown.TotalVAT(),
			InvoiceTotal: breakdown.InvoiceTotal(),
		},
	}
}

// acceptOffline signs the invoice locally, queues it for resubmission,
// and synthesizes a degraded success. The stored payload already carries
// the offline signature so the later resubmission replays it verbatim.
func (s *service) acceptOffline(
	ctx context.Context,
	terminal *terminaldomain.Terminal,
	doc *invoicedomain.Document,
	invoiceNumber string,
	breakdown *taxservice.Breakdown,
) (*salesdomain.SaleResponse, error) {
	signature := signing.OfflineInvoice(invoiceNumber, len(doc.InvoiceLineItems), doc.InvoiceHeader.InvoiceDateTime, terminal.SecretKey)
	doc.InvoiceSummary.OfflineSignature = signature

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode offline invoice: %w", err)
	}

	txn := &offlinedomain.OfflineTransaction{
		ID:            s.genID.Generate(),
		TenantID:      terminal.TenantID,
		TerminalID:    terminal.ID,
		InvoiceNumber: invoiceNumber,
		Payload:       payload,
	}
	if err := s.offline.Create(ctx, txn); err != nil {
		return nil, err
	}
	metrics.Gateway().IncOfflineQueued()
	if backlog, countErr := s.offline.CountUnsubmitted(ctx); countErr == nil {
		metrics.Gateway().SetOfflineBacklog(backlog)
	}

	s.log.Warn("sale accepted offline",
		zap.String("invoice_number", invoiceNumber),
		zap.String("terminal_id", terminal.TerminalID),
	)
	return &salesdomain.SaleResponse{
		InvoiceNumber:    invoiceNumber,
		InvoiceDateTime:  doc.InvoiceHeader.InvoiceDateTime,
		Remark:           offlineRemark,
		OfflineSignature: signature,
		Offline:          true,
		InvoiceTotal:     breakdown.InvoiceTotal(),
		TotalVAT:         breakdown.TotalVAT(),
	}, nil
}
