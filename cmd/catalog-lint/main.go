// catalog-lint reports achievement catalog entries whose requirement
// text does not parse. With -file it checks a catalog JSON file instead
// of the configured database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"habitxp/achievements"
	"habitxp/config"
	"habitxp/database"
	"habitxp/models"
)

type catalogFile struct {
	Achievements []models.Achievement `json:"conquistas"`
}

func main() {
	file := flag.String("file", "", "catalog JSON file to check instead of the database")
	flag.Parse()

	rows, source, err := loadCatalog(*file)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Printf("%s: no achievements found\n", source)
		return
	}

	exitCode := 0
	defs, invalid := achievements.BuildCatalog(rows)
	for _, bad := range invalid {
		fmt.Printf("%s: conquista %d %q: %q: %v\n", source, bad.ID, bad.Name, bad.Text, bad.Err)
		exitCode = 1
	}
	for _, def := range defs {
		if def.Requirement.N <= 0 {
			fmt.Printf("%s: conquista %d %q: threshold %d is always satisfied\n", source, def.ID, def.Name, def.Requirement.N)
		}
	}
	if exitCode == 0 {
		fmt.Printf("%s: OK (%d achievements)\n", source, len(defs))
	}
	os.Exit(exitCode)
}

func loadCatalog(path string) ([]models.Achievement, string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, path, fmt.Errorf("cannot read %s: %w", path, err)
		}
		var f catalogFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, path, fmt.Errorf("cannot parse %s: %w", path, err)
		}
		return f.Achievements, path, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, "database", err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, "database", err
	}
	var rows []models.Achievement
	if err := db.Order("id_conquista ASC").Find(&rows).Error; err != nil {
		return nil, "database", fmt.Errorf("cannot load conquistas: %w", err)
	}
	return rows, cfg.Database.Driver, nil
}
