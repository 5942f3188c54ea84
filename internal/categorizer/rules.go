package categorizer

import (
	"fmt"
	"strings"

	"finanseer/internal/models"
	"finanseer/internal/store"
	"finanseer/internal/textutils"

	"github.com/sirupsen/logrus"
)

// ApplyResult reports the outcome of a rule application pass. Matched counts
// transactions a rule matched during evaluation; Committed counts the
// assignments durably persisted. The two differ on dry runs (Committed is
// zero) and on commit failure (Matched is preserved, Committed is zero and
// the pass returns a PersistenceError), so callers can always tell an
// evaluated match from a persisted one.
type ApplyResult struct {
	Matched   int
	Committed int
}

// ApplyRules evaluates all rules against all uncategorized transactions.
// Rules run in ascending priority order and the first match wins for each
// transaction. With dryRun set, matching runs identically but nothing is
// persisted. The pass is idempotent: matched transactions leave the
// uncategorized set, so a second run with unchanged data matches zero.
func (s *Service) ApplyRules(dryRun bool) (ApplyResult, error) {
	var result ApplyResult

	rules, err := s.store.RulesByPriority()
	if err != nil {
		return result, err
	}
	if len(rules) == 0 {
		log.Info("No rules defined, nothing to apply")
		return result, nil
	}

	transactions, err := s.store.FindUncategorized(store.SortByDate)
	if err != nil {
		return result, err
	}
	if len(transactions) == 0 {
		log.Info("No uncategorized transactions, nothing to apply")
		return result, nil
	}

	log.WithFields(logrus.Fields{
		"rules":        len(rules),
		"transactions": len(transactions),
		"dry_run":      dryRun,
	}).Info("Applying categorization rules")

	var assignments []store.Assignment
	for _, t := range transactions {
		for _, rule := range rules {
			matched, err := ruleMatches(rule, t)
			if err != nil {
				return result, err
			}
			if !matched {
				continue
			}

			log.WithFields(logrus.Fields{
				"transaction": fmt.Sprintf("%.8s", t.ID),
				"rule_id":     rule.ID,
				"type":        rule.Type,
				"pattern":     rule.Pattern,
			}).Debug("Rule matched transaction")

			result.Matched++
			assignments = append(assignments, store.Assignment{
				TransactionID: t.ID,
				SubcategoryID: rule.SubcategoryID,
			})
			break
		}
	}

	if dryRun {
		log.WithField("matched", result.Matched).Info("Dry run complete, no changes persisted")
		return result, nil
	}

	committed, err := s.store.BulkSetSubcategory(assignments)
	if err != nil {
		log.WithError(err).Error("Failed to persist rule assignments")
		return result, err
	}
	result.Committed = int(committed)

	log.WithFields(logrus.Fields{
		"matched":   result.Matched,
		"committed": result.Committed,
	}).Info("Rule application complete")
	return result, nil
}

// ruleMatches evaluates one rule against one transaction. The switch is
// exhaustive over models.RuleType; an unknown type stored outside the
// application is an error, not a silent non-match.
func ruleMatches(rule models.Rule, t models.Transaction) (bool, error) {
	switch rule.Type {
	case models.RuleTypeIBAN:
		if t.CounterpartyIBAN == "" {
			return false, nil
		}
		return t.CounterpartyIBAN == rule.Pattern, nil

	case models.RuleTypeCounterpartyName:
		if t.CounterpartyName == "" {
			return false, nil
		}
		return strings.Contains(
			strings.ToLower(t.CounterpartyName),
			strings.ToLower(rule.Pattern),
		), nil

	case models.RuleTypeDescriptionContains:
		if t.DescriptionRaw == "" {
			return false, nil
		}
		normalized := textutils.Normalize(t.DescriptionRaw)
		return strings.Contains(normalized, strings.ToLower(rule.Pattern)), nil

	default:
		return false, fmt.Errorf("unknown rule type %q (rule %d)", rule.Type, rule.ID)
	}
}
