package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"tcsgo-engine/internal/model"
)

// Catalog holds the external read-only tables: case definitions, the alias
// table and the price table. Loaded once at startup; Reload swaps the whole
// set atomically from the caller's point of view (single-writer model).
type Catalog struct {
	cases   map[string]*model.CaseDefinition
	aliases model.AliasTable
	prices  model.PriceTable
}

// Paths names the files a catalog loads from.
type Paths struct {
	CaseOddsDir string
	AliasesPath string
	PricesPath  string
}

// Load reads all tables. Any unreadable or unparsable table is an error;
// these files are deployment artifacts, not user data.
func Load(paths Paths) (*Catalog, error) {
	c := &Catalog{cases: make(map[string]*model.CaseDefinition)}

	if err := readJSON(paths.AliasesPath, &c.aliases); err != nil {
		return nil, fmt.Errorf("failed to load alias table: %w", err)
	}
	if err := readJSON(paths.PricesPath, &c.prices); err != nil {
		return nil, fmt.Errorf("failed to load price table: %w", err)
	}

	files, err := listCaseFiles(paths.CaseOddsDir)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		var def model.CaseDefinition
		if err := readJSON(file, &def); err != nil {
			return nil, fmt.Errorf("failed to load case definition %s: %w", file, err)
		}
		if def.Case.ID == "" {
			return nil, fmt.Errorf("case definition %s has no case id", file)
		}
		c.cases[def.Case.ID] = &def
	}

	log.Printf("[Catalog] loaded %d cases, %d aliases, %d variant prices",
		len(c.cases), len(c.aliases.Aliases), len(c.prices.ItemVariantPrices))
	return c, nil
}

// Case returns a case definition by id.
func (c *Catalog) Case(caseID string) (*model.CaseDefinition, bool) {
	def, ok := c.cases[caseID]
	return def, ok
}

// ResolveAlias maps a chat alias (or a bare caseId) to its case entry.
func (c *Catalog) ResolveAlias(alias string) (model.CaseAlias, bool) {
	key := strings.ToLower(strings.TrimSpace(alias))
	if entry, ok := c.aliases.Aliases[key]; ok {
		return entry, true
	}
	// A full caseId always works even without an alias entry.
	if def, ok := c.cases[key]; ok {
		return model.CaseAlias{CaseID: def.Case.ID, DisplayName: def.Case.Name}, true
	}
	return model.CaseAlias{}, false
}

// Prices returns the loaded price table.
func (c *Catalog) Prices() *model.PriceTable {
	return &c.prices
}

// listCaseFiles prefers an index.json manifest, falling back to every .json
// file in the directory.
func listCaseFiles(dir string) ([]string, error) {
	indexPath := filepath.Join(dir, "index.json")
	if _, err := os.Stat(indexPath); err == nil {
		var index struct {
			Cases []struct {
				Filename string `json:"filename"`
			} `json:"cases"`
		}
		if err := readJSON(indexPath, &index); err == nil {
			var files []string
			for _, entry := range index.Cases {
				if strings.HasSuffix(strings.ToLower(entry.Filename), ".json") {
					files = append(files, filepath.Join(dir, entry.Filename))
				}
			}
			if len(files) > 0 {
				return files, nil
			}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read case-odds dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".json") || strings.EqualFold(name, "index.json") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}
