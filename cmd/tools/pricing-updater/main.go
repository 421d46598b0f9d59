// cmd/tools/pricing-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"cost-analysis-engine/pkg/pricing"
)

var registryPath string

const perMillion = 1e6

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{addCmd, updateCmd, validateCmd, listCmd} {
		fs.StringVar(&registryPath, "path", "configs/pricing.json", "Path to pricing registry file")
	}

	// Add command flags
	idAdd := addCmd.String("id", "", "Model ID (e.g., openai/gpt-4o)")
	displayName := addCmd.String("displayName", "", "Display name")
	provider := addCmd.String("provider", "", "Model provider (e.g., openai)")
	prompt := addCmd.Float64("prompt", 0, "Prompt price in USD per million tokens")
	completion := addCmd.Float64("completion", 0, "Completion price in USD per million tokens")
	free := addCmd.Bool("free", false, "Free-tier model")
	aliases := addCmd.String("aliases", "", "Comma-separated aliases")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Model ID to update")
	field := updateCmd.String("field", "", "Field to update (prompt, completion, free, displayName, provider, aliases)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *provider == "" {
			fmt.Println("Error: id and provider are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		model := pricing.Model{
			ID:                     *idAdd,
			DisplayName:            *displayName,
			Provider:               *provider,
			PromptCostPerToken:     *prompt / perMillion,
			CompletionCostPerToken: *completion / perMillion,
			FreeTier:               *free,
			Aliases:                splitList(*aliases),
		}
		if err := addModel(model); err != nil {
			fmt.Printf("Error adding model: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added model: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" {
			fmt.Println("Error: id and field are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateModel(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating model: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated model %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := pricing.LoadRegistry(registryPath)
		if err == nil {
			err = reg.Validate()
		}
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d models.\n", len(reg.Models))

	case "list":
		listCmd.Parse(os.Args[2:])
		reg, err := pricing.LoadRegistry(registryPath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		printModels(reg)

	case "help":
		fallthrough
	default:
		help()
	}
}

func addModel(model pricing.Model) error {
	reg, err := pricing.LoadRegistry(registryPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &pricing.Registry{Version: "1.0.0", Currency: "USD"}
	}

	if _, exists := reg.Find(model.ID); exists {
		return fmt.Errorf("model with ID %s already exists", model.ID)
	}
	reg.Upsert(model)
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return pricing.SaveRegistry(reg, registryPath)
}

func updateModel(id, field, value string) error {
	reg, err := pricing.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	m, ok := reg.Find(id)
	if !ok {
		return fmt.Errorf("model with ID %s not found", id)
	}
	if err := setField(&m, field, value); err != nil {
		return err
	}
	reg.Upsert(m)
	if err := reg.Validate(); err != nil {
		return err
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return pricing.SaveRegistry(reg, registryPath)
}

func setField(m *pricing.Model, field, value string) error {
	switch field {
	case "prompt", "completion":
		perM, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", value, err)
		}
		if field == "prompt" {
			m.PromptCostPerToken = perM / perMillion
		} else {
			m.CompletionCostPerToken = perM / perMillion
		}
	case "free":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid free value %q: %w", value, err)
		}
		m.FreeTier = b
	case "displayName":
		m.DisplayName = value
	case "provider":
		m.Provider = value
	case "aliases":
		m.Aliases = splitList(value)
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printModels(reg *pricing.Registry) {
	list := append([]pricing.Model(nil), reg.Models...)
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	fmt.Printf("Pricing registry %s (updated %s)\n", reg.Version, reg.LastUpdated)
	for _, m := range list {
		tier := ""
		if m.FreeTier {
			tier = " [free]"
		}
		fmt.Printf("  %-45s prompt $%.2f/M  completion $%.2f/M%s\n",
			m.ID, m.PromptCostPerToken*perMillion, m.CompletionCostPerToken*perMillion, tier)
	}
}

func help() {
	fmt.Print(`
Usage: pricing-updater <command> [flags]

Commands:
  add      Add a model to the pricing registry
  update   Update one field of an existing model
  validate Validate the registry file
  list     Print every model and its prices
  help     Show this help message

Prices are given in USD per million tokens and stored per token.

Examples:
  pricing-updater add -id openai/gpt-4o -provider openai -prompt 2.5 -completion 10 -aliases gpt-4o
  pricing-updater update -id gpt-4o -field completion -value 12
  pricing-updater validate -path configs/pricing.json

Use 'pricing-updater <command> -h' for more information about a command.
` + "\n")
}
