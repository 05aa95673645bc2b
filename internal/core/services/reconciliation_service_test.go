package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/apperrors"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	portssvc "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/services"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/services"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock repositories ---

type MockSuggestedMatchRepository struct {
	mock.Mock
}

func (m *MockSuggestedMatchRepository) FindSuggestedMatchByID(ctx context.Context, suggestedMatchID string) (*domain.SuggestedMatch, error) {
	args := m.Called(ctx, suggestedMatchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SuggestedMatch), args.Error(1)
}

func (m *MockSuggestedMatchRepository) DeleteSuggestedMatch(ctx context.Context, suggestedMatchID string) error {
	args := m.Called(ctx, suggestedMatchID)
	return args.Error(0)
}

type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) SumApprovedMatches(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMatchRepository) FindApprovedMatchesByTransaction(ctx context.Context, transactionID string) ([]domain.ReconciliationMatch, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationMatch), args.Error(1)
}

func (m *MockMatchRepository) SaveMatch(ctx context.Context, match domain.ReconciliationMatch) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchRepository) ApplyMatch(ctx context.Context, matchID string, actingUserID string) error {
	args := m.Called(ctx, matchID, actingUserID)
	return args.Error(0)
}

func (m *MockMatchRepository) DeleteMatch(ctx context.Context, matchID string) error {
	args := m.Called(ctx, matchID)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankTransaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateTransactionMatchState(ctx context.Context, transactionID string, status domain.TransactionStatus, matchedInvoiceIDs []string, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, transactionID, status, matchedInvoiceIDs, updatedByUserID, updatedAt)
	return args.Error(0)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

type MockFundingService struct {
	mock.Mock
}

func (m *MockFundingService) ProcessInvoicePayment(ctx context.Context, invoice domain.Invoice, actingUserID string) error {
	args := m.Called(ctx, invoice, actingUserID)
	return args.Error(0)
}

var _ portssvc.FundingSvcFacade = (*MockFundingService)(nil)

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Emit(ctx context.Context, action string, entityType string, entityID string, metadata map[string]any, actingUserID string) {
	m.Called(ctx, action, entityType, entityID, metadata, actingUserID)
}

var _ portssvc.AuditSvcFacade = (*MockAuditService)(nil)

// --- Test Suite Setup ---

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockSuggested   *MockSuggestedMatchRepository
	mockMatches     *MockMatchRepository
	mockTxns        *MockTransactionRepository
	mockInvoices    *MockInvoiceRepository
	mockFunding     *MockFundingService
	mockAudit       *MockAuditService
	service         portssvc.ReconciliationSvcFacade
	ctx             context.Context
	actingUserID    string
	suggestedID     string
	transactionID   string
	invoiceID       string
}

func (s *ReconciliationServiceTestSuite) SetupTest() {
	s.mockSuggested = new(MockSuggestedMatchRepository)
	s.mockMatches = new(MockMatchRepository)
	s.mockTxns = new(MockTransactionRepository)
	s.mockInvoices = new(MockInvoiceRepository)
	s.mockFunding = new(MockFundingService)
	s.mockAudit = new(MockAuditService)
	s.service = services.NewReconciliationService(
		s.mockSuggested, s.mockMatches, s.mockTxns, s.mockInvoices, s.mockFunding, s.mockAudit)
	s.ctx = context.Background()
	s.actingUserID = uuid.NewString()
	s.suggestedID = uuid.NewString()
	s.transactionID = uuid.NewString()
	s.invoiceID = uuid.NewString()
}

func (s *ReconciliationServiceTestSuite) suggestedMatch() *domain.SuggestedMatch {
	return &domain.SuggestedMatch{
		SuggestedMatchID: s.suggestedID,
		TransactionID:    s.transactionID,
		InvoiceID:        s.invoiceID,
		MatchReason:      "amount and counterparty match",
	}
}

func (s *ReconciliationServiceTestSuite) transaction(amount string) *domain.BankTransaction {
	return &domain.BankTransaction{
		TransactionID: s.transactionID,
		Amount:        dec(amount),
		CurrencyCode:  "USD",
		Status:        domain.TransactionUnmatched,
	}
}

func (s *ReconciliationServiceTestSuite) invoice(total, paid string, status domain.InvoiceStatus) *domain.Invoice {
	return &domain.Invoice{
		InvoiceID:    s.invoiceID,
		Total:        dec(total),
		PaidAmount:   dec(paid),
		CurrencyCode: "USD",
		Status:       status,
	}
}

// expectResolve wires the happy-path resolution reads.
func (s *ReconciliationServiceTestSuite) expectResolve(txn *domain.BankTransaction, inv *domain.Invoice, prior string) {
	s.mockSuggested.On("FindSuggestedMatchByID", s.ctx, s.suggestedID).Return(s.suggestedMatch(), nil).Once()
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(txn, nil).Once()
	s.mockInvoices.On("FindInvoiceByID", s.ctx, s.invoiceID).Return(inv, nil).Once()
	s.mockMatches.On("SumApprovedMatches", s.ctx, s.transactionID).Return(dec(prior), nil).Once()
}

// --- Test Cases ---

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_ExactMatchSuccess() {
	s.expectResolve(s.transaction("1000"), s.invoice("1000", "0", domain.InvoiceOpen), "0")

	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(nil).Once()
	s.mockMatches.On("ApplyMatch", s.ctx, mock.AnythingOfType("string"), s.actingUserID).Return(nil).Once()

	// Post-apply refetch returns the store-updated state.
	refreshedInvoice := s.invoice("1000", "1000", domain.InvoicePaid)
	approved := []domain.ReconciliationMatch{{
		MatchID:       uuid.NewString(),
		TransactionID: s.transactionID,
		InvoiceID:     s.invoiceID,
		MatchedAmount: dec("1000"),
		Status:        domain.MatchApproved,
	}}
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(s.transaction("1000"), nil).Once()
	s.mockInvoices.On("FindInvoiceByID", s.ctx, s.invoiceID).Return(refreshedInvoice, nil).Once()
	s.mockMatches.On("FindApprovedMatchesByTransaction", s.ctx, s.transactionID).Return(approved, nil).Once()

	s.mockTxns.On("UpdateTransactionMatchState", s.ctx, s.transactionID, domain.TransactionMatched, []string{s.invoiceID}, s.actingUserID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	s.mockSuggested.On("DeleteSuggestedMatch", s.ctx, s.suggestedID).Return(nil).Once()
	s.mockFunding.On("ProcessInvoicePayment", s.ctx, *refreshedInvoice, s.actingUserID).Return(nil).Once()
	s.mockAudit.On("Emit", s.ctx, "invoice_match_applied", "invoice", s.invoiceID, mock.Anything, s.actingUserID).Once()
	s.mockAudit.On("Emit", s.ctx, "transaction_match_applied", "bank_transaction", s.transactionID, mock.Anything, s.actingUserID).Once()

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().NoError(err)
	s.Require().NotNil(resp)
	s.True(resp.Success)
	s.NotEmpty(resp.MatchID)
	s.True(dec("1000").Equal(resp.AppliedAmount))
	s.True(dec("1000").Equal(resp.TotalMatchedAmount))
	s.Equal(string(domain.TransactionMatched), resp.BankTransaction.Status)
	s.Equal([]string{s.invoiceID}, resp.BankTransaction.MatchedInvoiceIDs)
	s.Equal(string(domain.InvoicePaid), resp.Invoice.Status)
	s.Empty(resp.Warnings)

	s.mockSuggested.AssertExpectations(s.T())
	s.mockMatches.AssertExpectations(s.T())
	s.mockTxns.AssertExpectations(s.T())
	s.mockFunding.AssertExpectations(s.T())
	s.mockAudit.AssertExpectations(s.T())
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_SuggestionNotFound() {
	s.mockSuggested.On("FindSuggestedMatchByID", s.ctx, s.suggestedID).Return(nil, apperrors.ErrNotFound).Once()

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.mockMatches.AssertNotCalled(s.T(), "SaveMatch", mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_CurrencyMismatch() {
	inv := s.invoice("1000", "0", domain.InvoiceOpen)
	inv.CurrencyCode = "EUR"
	s.mockSuggested.On("FindSuggestedMatchByID", s.ctx, s.suggestedID).Return(s.suggestedMatch(), nil).Once()
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(s.transaction("1000"), nil).Once()
	s.mockInvoices.On("FindInvoiceByID", s.ctx, s.invoiceID).Return(inv, nil).Once()

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, services.ErrCurrencyMismatch)
	s.mockMatches.AssertNotCalled(s.T(), "SumApprovedMatches", mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_MissingCurrencyDefaultsToUSD() {
	txn := s.transaction("1000")
	txn.CurrencyCode = ""
	s.expectResolve(txn, s.invoice("1000", "0", domain.InvoiceOpen), "0")

	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(nil).Once()
	s.mockMatches.On("ApplyMatch", s.ctx, mock.AnythingOfType("string"), s.actingUserID).Return(nil).Once()
	refreshedInvoice := s.invoice("1000", "1000", domain.InvoicePaid)
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(txn, nil).Once()
	s.mockInvoices.On("FindInvoiceByID", s.ctx, s.invoiceID).Return(refreshedInvoice, nil).Once()
	s.mockMatches.On("FindApprovedMatchesByTransaction", s.ctx, s.transactionID).Return([]domain.ReconciliationMatch{{
		TransactionID: s.transactionID, InvoiceID: s.invoiceID, MatchedAmount: dec("1000"), Status: domain.MatchApproved,
	}}, nil).Once()
	s.mockTxns.On("UpdateTransactionMatchState", s.ctx, s.transactionID, domain.TransactionMatched, []string{s.invoiceID}, s.actingUserID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	s.mockSuggested.On("DeleteSuggestedMatch", s.ctx, s.suggestedID).Return(nil).Once()
	s.mockFunding.On("ProcessInvoicePayment", s.ctx, *refreshedInvoice, s.actingUserID).Return(nil).Once()
	s.mockAudit.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().NoError(err)
	s.True(resp.Success)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_TransactionFullyAllocated() {
	s.expectResolve(s.transaction("1000"), s.invoice("500", "0", domain.InvoiceOpen), "1000")

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, services.ErrTransactionFullyAllocated)
	s.mockMatches.AssertNotCalled(s.T(), "SaveMatch", mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_InvoiceFullyPaid() {
	s.expectResolve(s.transaction("1000"), s.invoice("500", "500", domain.InvoicePaid), "0")

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, services.ErrInvoiceFullyPaid)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_DuplicateSuggestion() {
	s.expectResolve(s.transaction("1000"), s.invoice("1000", "0", domain.InvoiceOpen), "0")
	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(apperrors.ErrDuplicate).Once()

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.mockMatches.AssertNotCalled(s.T(), "ApplyMatch", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_InsertFailure() {
	s.expectResolve(s.transaction("1000"), s.invoice("1000", "0", domain.InvoiceOpen), "0")
	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(fmt.Errorf("connection reset")).Once()

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, services.ErrPersistence)
	s.mockMatches.AssertNotCalled(s.T(), "ApplyMatch", mock.Anything, mock.Anything, mock.Anything)
	s.mockMatches.AssertNotCalled(s.T(), "DeleteMatch", mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_ApplyFailureTriggersCompensatingDelete() {
	s.expectResolve(s.transaction("1000"), s.invoice("1000", "0", domain.InvoiceOpen), "0")

	var savedMatchID string
	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).
		Run(func(args mock.Arguments) {
			savedMatchID = args.Get(1).(domain.ReconciliationMatch).MatchID
		}).Return(nil).Once()
	s.mockMatches.On("ApplyMatch", s.ctx, mock.AnythingOfType("string"), s.actingUserID).Return(fmt.Errorf("remainder re-check failed")).Once()
	s.mockMatches.On("DeleteMatch", s.ctx, mock.AnythingOfType("string")).Return(nil).Once()

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, services.ErrApplyFailed)
	s.mockMatches.AssertCalled(s.T(), "DeleteMatch", s.ctx, savedMatchID)
	s.mockFunding.AssertNotCalled(s.T(), "ProcessInvoicePayment", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_PostApplyFetchFailureIsNotRolledBack() {
	s.expectResolve(s.transaction("1000"), s.invoice("1000", "0", domain.InvoiceOpen), "0")

	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(nil).Once()
	s.mockMatches.On("ApplyMatch", s.ctx, mock.AnythingOfType("string"), s.actingUserID).Return(nil).Once()
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(nil, fmt.Errorf("connection reset")).Once()

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, services.ErrPostApplyFetchFailed)
	// The apply succeeded, so the match must not be compensated away.
	s.mockMatches.AssertNotCalled(s.T(), "DeleteMatch", mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_FinalizeFailureIsAWarning() {
	s.expectResolve(s.transaction("1000"), s.invoice("1000", "0", domain.InvoiceOpen), "0")

	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(nil).Once()
	s.mockMatches.On("ApplyMatch", s.ctx, mock.AnythingOfType("string"), s.actingUserID).Return(nil).Once()
	refreshedInvoice := s.invoice("1000", "1000", domain.InvoicePaid)
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(s.transaction("1000"), nil).Once()
	s.mockInvoices.On("FindInvoiceByID", s.ctx, s.invoiceID).Return(refreshedInvoice, nil).Once()
	s.mockMatches.On("FindApprovedMatchesByTransaction", s.ctx, s.transactionID).Return([]domain.ReconciliationMatch{{
		TransactionID: s.transactionID, InvoiceID: s.invoiceID, MatchedAmount: dec("1000"), Status: domain.MatchApproved,
	}}, nil).Once()
	s.mockTxns.On("UpdateTransactionMatchState", s.ctx, s.transactionID, domain.TransactionMatched, []string{s.invoiceID}, s.actingUserID, mock.AnythingOfType("time.Time")).Return(fmt.Errorf("write timeout")).Once()
	s.mockSuggested.On("DeleteSuggestedMatch", s.ctx, s.suggestedID).Return(nil).Once()
	s.mockFunding.On("ProcessInvoicePayment", s.ctx, *refreshedInvoice, s.actingUserID).Return(nil).Once()
	s.mockAudit.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().NoError(err)
	s.Require().NotNil(resp)
	s.True(resp.Success)
	s.Len(resp.Warnings, 1)
	s.Contains(resp.Warnings[0], "transaction state")
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_SuggestionCleanupFailureIsAWarning() {
	s.expectResolve(s.transaction("1000"), s.invoice("1000", "0", domain.InvoiceOpen), "0")

	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(nil).Once()
	s.mockMatches.On("ApplyMatch", s.ctx, mock.AnythingOfType("string"), s.actingUserID).Return(nil).Once()
	refreshedInvoice := s.invoice("1000", "1000", domain.InvoicePaid)
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(s.transaction("1000"), nil).Once()
	s.mockInvoices.On("FindInvoiceByID", s.ctx, s.invoiceID).Return(refreshedInvoice, nil).Once()
	s.mockMatches.On("FindApprovedMatchesByTransaction", s.ctx, s.transactionID).Return([]domain.ReconciliationMatch{{
		TransactionID: s.transactionID, InvoiceID: s.invoiceID, MatchedAmount: dec("1000"), Status: domain.MatchApproved,
	}}, nil).Once()
	s.mockTxns.On("UpdateTransactionMatchState", s.ctx, s.transactionID, domain.TransactionMatched, []string{s.invoiceID}, s.actingUserID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	s.mockSuggested.On("DeleteSuggestedMatch", s.ctx, s.suggestedID).Return(fmt.Errorf("write timeout")).Once()
	s.mockFunding.On("ProcessInvoicePayment", s.ctx, *refreshedInvoice, s.actingUserID).Return(nil).Once()
	s.mockAudit.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().NoError(err)
	s.Require().NotNil(resp)
	s.True(resp.Success)
	s.Len(resp.Warnings, 1)
	s.Contains(resp.Warnings[0], "suggestion")
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_FundingCascadeFailureIsFatal() {
	s.expectResolve(s.transaction("1000"), s.invoice("1000", "0", domain.InvoiceOpen), "0")

	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(nil).Once()
	s.mockMatches.On("ApplyMatch", s.ctx, mock.AnythingOfType("string"), s.actingUserID).Return(nil).Once()
	refreshedInvoice := s.invoice("1000", "1000", domain.InvoicePaid)
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(s.transaction("1000"), nil).Once()
	s.mockInvoices.On("FindInvoiceByID", s.ctx, s.invoiceID).Return(refreshedInvoice, nil).Once()
	s.mockMatches.On("FindApprovedMatchesByTransaction", s.ctx, s.transactionID).Return([]domain.ReconciliationMatch{{
		TransactionID: s.transactionID, InvoiceID: s.invoiceID, MatchedAmount: dec("1000"), Status: domain.MatchApproved,
	}}, nil).Once()
	s.mockTxns.On("UpdateTransactionMatchState", s.ctx, s.transactionID, domain.TransactionMatched, []string{s.invoiceID}, s.actingUserID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	s.mockSuggested.On("DeleteSuggestedMatch", s.ctx, s.suggestedID).Return(nil).Once()
	s.mockFunding.On("ProcessInvoicePayment", s.ctx, *refreshedInvoice, s.actingUserID).Return(services.ErrFundingCascadeFailed).Once()

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, services.ErrFundingCascadeFailed)
	s.mockAudit.AssertNotCalled(s.T(), "Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_PartialAllocationLeavesTransactionPartiallyMatched() {
	s.expectResolve(s.transaction("1500"), s.invoice("1000", "0", domain.InvoiceOpen), "0")

	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).
		Run(func(args mock.Arguments) {
			match := args.Get(1).(domain.ReconciliationMatch)
			s.True(dec("1000").Equal(match.MatchedAmount))
			s.Equal(domain.MatchSplit, match.MatchType)
			s.Equal(domain.MatchSuggested, match.Status)
		}).Return(nil).Once()
	s.mockMatches.On("ApplyMatch", s.ctx, mock.AnythingOfType("string"), s.actingUserID).Return(nil).Once()
	refreshedInvoice := s.invoice("1000", "1000", domain.InvoicePaid)
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(s.transaction("1500"), nil).Once()
	s.mockInvoices.On("FindInvoiceByID", s.ctx, s.invoiceID).Return(refreshedInvoice, nil).Once()
	s.mockMatches.On("FindApprovedMatchesByTransaction", s.ctx, s.transactionID).Return([]domain.ReconciliationMatch{{
		TransactionID: s.transactionID, InvoiceID: s.invoiceID, MatchedAmount: dec("1000"), Status: domain.MatchApproved,
	}}, nil).Once()
	s.mockTxns.On("UpdateTransactionMatchState", s.ctx, s.transactionID, domain.TransactionPartiallyMatched, []string{s.invoiceID}, s.actingUserID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	s.mockSuggested.On("DeleteSuggestedMatch", s.ctx, s.suggestedID).Return(nil).Once()
	s.mockFunding.On("ProcessInvoicePayment", s.ctx, *refreshedInvoice, s.actingUserID).Return(nil).Once()
	s.mockAudit.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().NoError(err)
	s.Equal(string(domain.TransactionPartiallyMatched), resp.BankTransaction.Status)
}

func (s *ReconciliationServiceTestSuite) TestAcceptMatch_UnchangedStateSkipsTransactionWrite() {
	// Transaction already carries the final state; no update should be issued.
	s.expectResolve(s.transaction("1500"), s.invoice("1000", "0", domain.InvoiceOpen), "0")

	s.mockMatches.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(nil).Once()
	s.mockMatches.On("ApplyMatch", s.ctx, mock.AnythingOfType("string"), s.actingUserID).Return(nil).Once()

	refreshedTxn := s.transaction("1500")
	refreshedTxn.Status = domain.TransactionPartiallyMatched
	refreshedTxn.MatchedInvoiceIDs = []string{s.invoiceID}
	refreshedInvoice := s.invoice("1000", "1000", domain.InvoicePaid)
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(refreshedTxn, nil).Once()
	s.mockInvoices.On("FindInvoiceByID", s.ctx, s.invoiceID).Return(refreshedInvoice, nil).Once()
	s.mockMatches.On("FindApprovedMatchesByTransaction", s.ctx, s.transactionID).Return([]domain.ReconciliationMatch{{
		TransactionID: s.transactionID, InvoiceID: s.invoiceID, MatchedAmount: dec("1000"), Status: domain.MatchApproved,
	}}, nil).Once()
	s.mockSuggested.On("DeleteSuggestedMatch", s.ctx, s.suggestedID).Return(nil).Once()
	s.mockFunding.On("ProcessInvoicePayment", s.ctx, *refreshedInvoice, s.actingUserID).Return(nil).Once()
	s.mockAudit.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	resp, err := s.service.AcceptMatch(s.ctx, dto.AcceptMatchRequest{SuggestedMatchID: s.suggestedID}, s.actingUserID)

	s.Require().NoError(err)
	s.True(resp.Success)
	s.mockTxns.AssertNotCalled(s.T(), "UpdateTransactionMatchState", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestGetTransactionWithMatches_Success() {
	txn := s.transaction("1000")
	matches := []domain.ReconciliationMatch{{MatchID: uuid.NewString(), TransactionID: s.transactionID}}
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(txn, nil).Once()
	s.mockMatches.On("FindApprovedMatchesByTransaction", s.ctx, s.transactionID).Return(matches, nil).Once()

	gotTxn, gotMatches, err := s.service.GetTransactionWithMatches(s.ctx, s.transactionID)

	s.Require().NoError(err)
	s.Equal(txn, gotTxn)
	s.Equal(matches, gotMatches)
}

func (s *ReconciliationServiceTestSuite) TestGetTransactionWithMatches_NotFound() {
	s.mockTxns.On("FindTransactionByID", s.ctx, s.transactionID).Return(nil, apperrors.ErrNotFound).Once()

	_, _, err := s.service.GetTransactionWithMatches(s.ctx, s.transactionID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ReconciliationServiceTestSuite) TestGetInvoice_NotFound() {
	s.mockInvoices.On("FindInvoiceByID", s.ctx, s.invoiceID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.GetInvoice(s.ctx, s.invoiceID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
