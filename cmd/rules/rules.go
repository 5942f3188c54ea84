// Package rules handles the rule management commands: adding rules,
// loading them from a YAML file, and applying them to the uncategorized
// backlog.
package rules

import (
	"fmt"
	"os"

	"finanseer/cmd/root"
	"finanseer/internal/categorizer"
	"finanseer/internal/models"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	ruleType   string
	pattern    string
	categoryID int64
	priority   int

	dryRun bool

	rulesFile string
)

// Cmd is the parent command for rule management
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage and apply categorization rules",
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new categorization rule",
	RunE:  addFunc,
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply all rules to uncategorized transactions",
	Long: `Evaluate every rule, in ascending priority order, against every
uncategorized transaction. The first matching rule wins per transaction.
All resulting assignments are committed as one batch; with --dry-run the
matching runs identically but nothing is persisted.`,
	RunE: applyFunc,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a batch of rules from a YAML file",
	RunE:  loadFunc,
}

func init() {
	addCmd.Flags().StringVar(&ruleType, "type", "", "Rule type: iban, counterparty_name or description_contains")
	addCmd.Flags().StringVar(&pattern, "pattern", "", "The pattern to match (e.g., an IBAN or a keyword)")
	addCmd.Flags().Int64Var(&categoryID, "category-id", 0, "The numeric ID of the subcategory to assign")
	addCmd.Flags().IntVar(&priority, "priority", models.DefaultRulePriority, "The priority of the rule (lower is evaluated first)")
	_ = addCmd.MarkFlagRequired("type")
	_ = addCmd.MarkFlagRequired("pattern")
	_ = addCmd.MarkFlagRequired("category-id")

	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate rule application without saving changes")

	loadCmd.Flags().StringVarP(&rulesFile, "file", "f", "rules.yaml", "YAML file with rule definitions")

	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(applyCmd)
	Cmd.AddCommand(loadCmd)
}

func addFunc(cmd *cobra.Command, args []string) error {
	if !models.ValidRuleType(ruleType) {
		return fmt.Errorf("invalid rule type %q: must be iban, counterparty_name or description_contains", ruleType)
	}

	recordStore, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = recordStore.Close() }()

	service := categorizer.NewService(recordStore)
	id, err := service.AddRule(models.Rule{
		Type:          models.RuleType(ruleType),
		Pattern:       pattern,
		Priority:      priority,
		SubcategoryID: categoryID,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Added rule %d: %s %q -> subcategory %d (priority %d)\n",
		id, ruleType, pattern, categoryID, priority)
	return nil
}

func applyFunc(cmd *cobra.Command, args []string) error {
	recordStore, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = recordStore.Close() }()

	service := categorizer.NewService(recordStore)
	result, err := service.ApplyRules(dryRun)
	if err != nil {
		return fmt.Errorf("rule application failed after matching %d transactions: %w", result.Matched, err)
	}

	if dryRun {
		cmd.Printf("[Dry Run] Completed. %d transactions would be categorized.\n", result.Matched)
	} else {
		cmd.Printf("Rule application complete. %d transactions were categorized.\n", result.Committed)
	}
	return nil
}

// ruleFile is the YAML shape accepted by `rules load`. Priority is a
// pointer so an omitted priority gets the default while an explicit 0
// stays 0.
type ruleFile struct {
	Rules []struct {
		Type       string `yaml:"type"`
		Pattern    string `yaml:"pattern"`
		CategoryID int64  `yaml:"category_id"`
		Priority   *int   `yaml:"priority"`
	} `yaml:"rules"`
}

func loadFunc(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(rulesFile)
	if err != nil {
		return fmt.Errorf("error reading rules file: %w", err)
	}

	var parsed ruleFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("error parsing rules file %s: %w", rulesFile, err)
	}

	recordStore, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = recordStore.Close() }()

	service := categorizer.NewService(recordStore)
	added := 0
	for i, r := range parsed.Rules {
		if !models.ValidRuleType(r.Type) {
			return fmt.Errorf("rule %d in %s: invalid type %q", i+1, rulesFile, r.Type)
		}
		if r.Pattern == "" {
			return fmt.Errorf("rule %d in %s: pattern must not be empty", i+1, rulesFile)
		}

		rulePriority := models.DefaultRulePriority
		if r.Priority != nil {
			rulePriority = *r.Priority
		}

		if _, err := service.AddRule(models.Rule{
			Type:          models.RuleType(r.Type),
			Pattern:       r.Pattern,
			Priority:      rulePriority,
			SubcategoryID: r.CategoryID,
		}); err != nil {
			return fmt.Errorf("rule %d in %s: %w", i+1, rulesFile, err)
		}
		added++
	}

	cmd.Printf("Loaded %d rules from %s\n", added, rulesFile)
	return nil
}
