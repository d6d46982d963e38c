package service

import (
	"context"
	"fmt"
	"time"

	"github.com/noscite/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Document number prefixes
const (
	PrefixOpportunity = "OPP"
	PrefixOrder       = "ORD"
	PrefixProject     = "PRJ"
)

// NumberSequenceService generates unique, formatted document numbers.
// Each prefix keeps its own counter per calendar year.
//
// Format: {PREFIX}-{YEAR}-{SEQUENCE}
// Example: OPP-2026-0001, ORD-2026-0042
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// Generate allocates the next number for a prefix in its own transaction.
func (s *NumberSequenceService) Generate(ctx context.Context, prefix string) (string, error) {
	year := time.Now().Year()

	nextSeq, err := s.repo.GetNextNumber(ctx, prefix, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("prefix", prefix),
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate %s number: %w", prefix, err)
	}

	number := formatNumber(prefix, year, nextSeq)

	s.logger.Info("generated number",
		zap.String("number", number),
		zap.String("prefix", prefix),
		zap.Int("year", year),
		zap.Int("sequence", nextSeq))

	return number, nil
}

// GenerateTx allocates the next number inside an existing transaction so the
// allocation commits or rolls back together with the document it numbers.
func (s *NumberSequenceService) GenerateTx(tx *gorm.DB, prefix string) (string, error) {
	year := time.Now().Year()

	nextSeq, err := s.repo.GetNextNumberTx(tx, prefix, year)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s number: %w", prefix, err)
	}

	return formatNumber(prefix, year, nextSeq), nil
}

// GetCurrentSequence returns the current counter value without incrementing it.
// Returns 0 if no sequence exists for the prefix/year.
func (s *NumberSequenceService) GetCurrentSequence(ctx context.Context, prefix string, year int) (int, error) {
	return s.repo.GetCurrentSequence(ctx, prefix, year)
}

func formatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
