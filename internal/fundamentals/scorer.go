package fundamentals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Statement is one reporting period's headline figures. Fields are
// pointers: filings frequently omit line items, and a missing value must
// not be mistaken for zero.
type Statement struct {
	Symbol     string
	ReportDate time.Time
	Period     string // "FY", "Q1".."Q4"
	Revenue    *float64
	NetIncome  *float64
	EPS        *float64
}

// StatementSource provides the recent statements for a symbol, most useful
// when backed by the filings table. The scorer needs at least two.
type StatementSource interface {
	RecentStatements(ctx context.Context, symbol string, limit int) ([]Statement, error)
}

// Scorer turns a company's recent statements into a 0-100 health score
// around the neutral base of 50. Fewer than two statements is not an
// error; it scores neutral.
type Scorer struct {
	source StatementSource
	logger zerolog.Logger
}

func NewScorer(source StatementSource, logger zerolog.Logger) *Scorer {
	return &Scorer{
		source: source,
		logger: logger.With().Str("component", "fundamental_scorer").Logger(),
	}
}

// Score fetches the latest statements and scores them.
func (s *Scorer) Score(ctx context.Context, symbol string) (float64, error) {
	statements, err := s.source.RecentStatements(ctx, symbol, 8)
	if err != nil {
		return 0, fmt.Errorf("fundamentals for %s: %w", symbol, err)
	}
	score, reasons := ScoreStatements(statements)
	s.logger.Debug().Str("symbol", symbol).Float64("score", score).Strs("reasons", reasons).Msg("fundamentals scored")
	return score, nil
}

// ScoreStatements is the pure scoring rule: revenue growth above 10%
// earns +15 and shrinkage -15; positive net income +10, negative -10;
// EPS growth above 10% +10. Missing line items contribute nothing.
func ScoreStatements(statements []Statement) (float64, []string) {
	if len(statements) < 2 {
		return 50, []string{"insufficient filings"}
	}

	sorted := make([]Statement, len(statements))
	copy(sorted, statements)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ReportDate.After(sorted[j].ReportDate)
	})
	current, prev := sorted[0], sorted[1]

	score := 50.0
	var reasons []string

	if current.Revenue != nil && prev.Revenue != nil && *prev.Revenue != 0 {
		growth := (*current.Revenue - *prev.Revenue) / *prev.Revenue
		if growth > 0.10 {
			score += 15
			reasons = append(reasons, fmt.Sprintf("revenue growth %.1f%%", growth*100))
		} else if growth < 0 {
			score -= 15
			reasons = append(reasons, fmt.Sprintf("revenue decline %.1f%%", growth*100))
		}
	}

	if current.NetIncome != nil {
		if *current.NetIncome > 0 {
			score += 10
			reasons = append(reasons, "profitable")
		} else if *current.NetIncome < 0 {
			score -= 10
			reasons = append(reasons, "operating at a loss")
		}
	}

	if current.EPS != nil && prev.EPS != nil && *prev.EPS > 0 {
		epsGrowth := (*current.EPS - *prev.EPS) / *prev.EPS
		if epsGrowth > 0.10 {
			score += 10
			reasons = append(reasons, fmt.Sprintf("EPS growth %.1f%%", epsGrowth*100))
		}
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	return score, reasons
}
